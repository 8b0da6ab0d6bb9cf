package stockwatch

import (
	"os"
	"testing"
	"timesales-scraper/lib/telemetry"
)

func TestMain(m *testing.M) {
	cleanup := telemetry.SetupForTesting("scrapers/stockwatch")
	code := m.Run()
	cleanup()
	os.Exit(code)
}
