package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"timesales-scraper/internal/brokers"
	"timesales-scraper/internal/store"
	"timesales-scraper/lib/scrapers/cse"
	"timesales-scraper/lib/scrapers/stockwatch"
	"timesales-scraper/lib/secrets"
	"timesales-scraper/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	scrapeSymbol  *string
	scrapeSource  *string
	scrapeDate    *string
	scrapeSecrets *string
	tradesFile    *string
	depthFile     *string
	depthCSVFile  *string
)

func init() {
	scrapeSymbol = scrapeCmd.Flags().String("symbol", "DOCT", "The ticker symbol to scrape.")
	scrapeSource = scrapeCmd.Flags().String("source", "cse", "Venue to scrape: cse or stockwatch.")
	scrapeDate = scrapeCmd.Flags().String("date", "", "Trading day in yyyymmdd form (stockwatch only, defaults to today).")
	scrapeSecrets = scrapeCmd.Flags().String("secrets", secrets.DefaultFile, "Path to the Stockwatch credentials file.")
	tradesFile = scrapeCmd.Flags().String("trades-file", "trades.json", "Output file for per-day trades.")
	depthFile = scrapeCmd.Flags().String("depth-file", "depth_chart.json", "Output file for depth display rows.")
	depthCSVFile = scrapeCmd.Flags().String("csv-file", "depth_chart.csv", "CSV mirror of the depth display rows.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--symbol DOCT] [--source cse|stockwatch] [--date yyyymmdd]",
	Short: "Scrapes one venue once and appends the results to disk.",
	Example: `  timesales-cli scrape
  timesales-cli scrape --source stockwatch --date 20240115`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readAppConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		switch strings.ToLower(*scrapeSource) {
		case "cse":
			scrapeCSE(cmd, cfg)
		case "stockwatch":
			scrapeStockwatch(cmd, cfg)
		default:
			serviceutil.Fatal("failed to select venue", fmt.Errorf("unknown source %q", *scrapeSource))
		}
	},
}

func scrapeCSE(cmd *cobra.Command, cfg Config) {
	client, err := cse.NewClient(cfg.CSE)
	if err != nil {
		serviceutil.Fatal("failed to initialize cse client", err)
	}

	t1 := time.Now()
	rows := client.ScrapeDepth(cmd.Context(), *scrapeSymbol)
	slog.Info("depth scrape finished",
		"symbol", *scrapeSymbol, "rows", len(rows), "seconds", time.Since(t1).Seconds())

	if len(rows) == 0 {
		return
	}
	err = store.AppendJSON(rows, *depthFile)
	if err != nil {
		slog.Error("failed to write depth rows", "file", *depthFile, "err", err)
	}
	err = store.WriteDepthCSV(rows, *depthCSVFile, true)
	if err != nil {
		slog.Error("failed to write depth csv", "file", *depthCSVFile, "err", err)
	}

	var codes []string
	for _, row := range rows {
		codes = append(codes, row.BuyerBroker, row.SellerBroker)
	}
	logBrokerActivity(codes)
}

func scrapeStockwatch(cmd *cobra.Command, cfg Config) {
	creds, err := secrets.Load(*scrapeSecrets)
	if err != nil {
		serviceutil.Fatal("failed to load stockwatch credentials", err)
	}
	client := stockwatch.NewClient(cfg.Stockwatch, creds)

	t1 := time.Now()
	trades, err := client.ScrapeDay(cmd.Context(), *scrapeSymbol, *scrapeDate)
	if err != nil {
		if fatalScrapeError(err) {
			serviceutil.Fatal("invalid scrape arguments", err)
		}
		// a venue-side failure completes the run with nothing to save
		slog.Error("stockwatch scrape failed", "symbol", *scrapeSymbol, "date", *scrapeDate, "err", err)
		return
	}
	slog.Info("trades scrape finished",
		"symbol", *scrapeSymbol, "trades", len(trades), "seconds", time.Since(t1).Seconds())

	if len(trades) == 0 {
		slog.Info("no trades found for date", "date", *scrapeDate)
		return
	}
	err = store.AppendJSON(trades, *tradesFile)
	if err != nil {
		slog.Error("failed to write trades", "file", *tradesFile, "err", err)
	}

	var codes []string
	for _, trade := range trades {
		codes = append(codes, trade.Buyer, trade.Seller)
	}
	logBrokerActivity(codes)
}

// fatalScrapeError reports whether a scrape failure should exit the
// process non-zero. Only argument errors qualify; venue-side failures
// (login, navigation, missing table) are logged and the run completes
// with exit 0.
func fatalScrapeError(err error) bool {
	return errors.Is(err, stockwatch.ErrBadDate)
}

// logBrokerActivity reports which brokerage houses appeared in the
// scraped rows, annotated with their names where known.
func logBrokerActivity(codes []string) {
	seen := map[string]bool{}
	for _, code := range codes {
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		slog.Info("broker active", "broker", brokers.Annotate(code))
	}
}
