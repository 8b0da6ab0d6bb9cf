package commands

import (
	"fmt"
	"os"
	"testing"
	"timesales-scraper/lib/scrapers/stockwatch"

	"github.com/stretchr/testify/require"
)

func chtmp(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestReadAppConfigDefaults(t *testing.T) {
	chtmp(t)

	cfg, err := readAppConfig()
	require.NoError(t, err)
	require.Equal(t, "https://www.stockwatch.com/", cfg.Stockwatch.HomeURL)
	require.Equal(t, "republic-technologies-inc", cfg.CSE.Slugs["DOCT"])
	require.Equal(t, 1, cfg.PaceMinSeconds)
	require.Equal(t, 3, cfg.PaceMaxSeconds)
}

func TestReadAppConfigFalseOverridesDefaults(t *testing.T) {
	chtmp(t)

	contents := `{
		cse: {debug_capture: false, browser: {headless: false}},
		stockwatch: {browser: {headless: false}},
	}`
	require.NoError(t, os.WriteFile("scraper.json5", []byte(contents), 0o644))

	cfg, err := readAppConfig()
	require.NoError(t, err)

	require.NotNil(t, cfg.CSE.DebugCapture)
	require.False(t, *cfg.CSE.DebugCapture)
	require.NotNil(t, cfg.CSE.Browser.Headless)
	require.False(t, *cfg.CSE.Browser.Headless)
	require.NotNil(t, cfg.Stockwatch.Browser.Headless)
	require.False(t, *cfg.Stockwatch.Browser.Headless)

	// untouched settings keep their compiled-in defaults
	require.Equal(t, "https://www.stockwatch.com/", cfg.Stockwatch.HomeURL)
	require.Equal(t, 30, cfg.Stockwatch.TableTimeoutSeconds)
	require.Equal(t, 1, cfg.PaceMinSeconds)
}

func TestFatalScrapeError(t *testing.T) {
	require.True(t, fatalScrapeError(stockwatch.ErrBadDate))
	require.True(t, fatalScrapeError(fmt.Errorf("%w: %q", stockwatch.ErrBadDate, "2024-11-15")))

	// venue-side failures complete the run instead of exiting non-zero
	require.False(t, fatalScrapeError(stockwatch.ErrLoginFailed))
	require.False(t, fatalScrapeError(stockwatch.ErrSymbolSearchFailed))
	require.False(t, fatalScrapeError(stockwatch.ErrNavigationFailed))
	require.False(t, fatalScrapeError(stockwatch.ErrDateSubmitFailed))
	require.False(t, fatalScrapeError(fmt.Errorf("browser crashed")))
}
