package commands

import (
	"log/slog"
	"os"
	"time"
	"timesales-scraper/internal/backfill"
	"timesales-scraper/internal/notify"
	"timesales-scraper/internal/store"
	"timesales-scraper/lib/scrapers/cse"
	"timesales-scraper/lib/scrapers/stockwatch"
	"timesales-scraper/lib/secrets"
	"timesales-scraper/lib/serviceutil"
	"timesales-scraper/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	backfillSymbol  *string
	backfillDays    *int
	backfillStart   *string
	backfillEnd     *string
	backfillSkipCSE *bool
	backfillNotify  *bool
	backfillSecrets *string
	backfillTrades  *string
	backfillDepth   *string
	backfillCSV     *string
)

func init() {
	backfillSymbol = backfillCmd.Flags().String("symbol", "DOCT", "The ticker symbol to backfill.")
	backfillDays = backfillCmd.Flags().Int("days", 30, "Trailing window ending today, ignored when --start-date is set.")
	backfillStart = backfillCmd.Flags().String("start-date", "", "First trading day in yyyymmdd form.")
	backfillEnd = backfillCmd.Flags().String("end-date", "", "Last trading day in yyyymmdd form (defaults to today).")
	backfillSkipCSE = backfillCmd.Flags().Bool("skip-cse", false, "Skip the depth display refresh after the trades pass.")
	backfillNotify = backfillCmd.Flags().Bool("notify", false, "Mail the run summary using the smtp config section.")
	backfillSecrets = backfillCmd.Flags().String("secrets", secrets.DefaultFile, "Path to the Stockwatch credentials file.")
	backfillTrades = backfillCmd.Flags().String("trades-file", "trades.json", "Output file for per-day trades.")
	backfillDepth = backfillCmd.Flags().String("depth-file", "depth_chart.json", "Output file for depth display rows.")
	backfillCSV = backfillCmd.Flags().String("csv-file", "depth_chart.csv", "CSV mirror of the depth display rows.")
	rootCmd.AddCommand(backfillCmd)
}

var backfillCmd = &cobra.Command{
	Use:   "backfill [--days 30 | --start-date yyyymmdd [--end-date yyyymmdd]]",
	Short: "Scrapes a range of trading days, appending after each day.",
	Example: `  timesales-cli backfill --days 30
  timesales-cli backfill --start-date 20240101 --end-date 20240131
  timesales-cli backfill --days 90 --skip-cse --notify`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readAppConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		end := *backfillEnd
		if end == "" {
			end = time.Now().Format("20060102")
		}
		start := *backfillStart
		if start == "" {
			endDay, err := time.Parse("20060102", end)
			if err != nil {
				serviceutil.Fatal("invalid end date "+end, err)
			}
			start = backfill.StartFromDays(endDay, *backfillDays)
		}

		creds, err := secrets.Load(*backfillSecrets)
		if err != nil {
			serviceutil.Fatal("failed to load stockwatch credentials", err)
		}
		client := stockwatch.NewClient(cfg.Stockwatch, creds)

		telemetry.InstrumentPerfStats(cmd.Context())

		summary, err := backfill.Run(cmd.Context(), backfill.Options{
			Symbol:     *backfillSymbol,
			Start:      start,
			End:        end,
			TradesFile: *backfillTrades,
			Scraper:    client,
			PaceMin:    time.Duration(cfg.PaceMinSeconds) * time.Second,
			PaceMax:    time.Duration(cfg.PaceMaxSeconds) * time.Second,
		})
		if err != nil {
			serviceutil.Fatal("backfill failed", err)
		}

		if !*backfillSkipCSE {
			refreshDepth(cmd, cfg)
		}

		backfill.RenderSummary(os.Stdout, summary)

		if *backfillNotify {
			sendSummary(cfg, summary)
		}
	},
}

// refreshDepth replaces the depth files with the current depth
// display. The depth display only shows today, so a range run just
// refreshes the snapshot instead of appending stale copies.
func refreshDepth(cmd *cobra.Command, cfg Config) {
	client, err := cse.NewClient(cfg.CSE)
	if err != nil {
		slog.Error("failed to initialize cse client", "err", err)
		return
	}
	rows := client.ScrapeDepth(cmd.Context(), *backfillSymbol)
	if len(rows) == 0 {
		slog.Info("depth display had no rows, keeping existing files")
		return
	}
	err = store.OverwriteJSON(rows, *backfillDepth)
	if err != nil {
		slog.Error("failed to write depth rows", "err", err)
	}
	err = store.WriteDepthCSV(rows, *backfillCSV, false)
	if err != nil {
		slog.Error("failed to write depth csv", "err", err)
	}
}

func sendSummary(cfg Config, summary backfill.Summary) {
	if !cfg.SMTP.Enabled() {
		slog.Warn("notify requested but smtp config is incomplete, skipping")
		return
	}
	subject := "Backfill summary: " + summary.Symbol + " " + summary.Start + " to " + summary.End
	err := notify.SendReport(cfg.SMTP, subject, backfill.PlainSummary(summary))
	if err != nil {
		slog.Error("failed to send summary mail", "err", err)
		return
	}
	slog.Info("summary mail sent", "to", cfg.SMTP.To)
}
