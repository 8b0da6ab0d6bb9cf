package commands

import (
	"context"
	"fmt"
	"os"
	"timesales-scraper/internal/notify"
	"timesales-scraper/lib/configutil"
	"timesales-scraper/lib/scrapers/cse"
	"timesales-scraper/lib/scrapers/stockwatch"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "timesales-cli",
	Short: "timesales-cli collects time and sales data for CSE-listed symbols.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Config is the optional on-disk override for venue and delivery
// settings. Everything has a working default so most runs need no
// config file at all.
type Config struct {
	CSE        cse.Config        `json:"cse"`
	Stockwatch stockwatch.Config `json:"stockwatch"`
	SMTP       notify.SMTPConfig `json:"smtp"`
	// jittered pause bounds between backfill days, in seconds
	PaceMinSeconds int `json:"pace_min_seconds"`
	PaceMaxSeconds int `json:"pace_max_seconds"`
}

func defaultAppConfig() Config {
	return Config{
		CSE:            cse.DefaultConfig(),
		Stockwatch:     stockwatch.DefaultConfig(),
		PaceMinSeconds: 1,
		PaceMaxSeconds: 3,
	}
}

func readAppConfig() (Config, error) {
	return configutil.ReadConfigOr("scraper.json5", defaultAppConfig())
}
