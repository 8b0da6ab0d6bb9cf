// Package backfill drives the historical scrape: one Stockwatch day
// at a time, oldest first, appending after every successful day so an
// interrupted run keeps everything already written.
package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"timesales-scraper/internal/records"
	"timesales-scraper/internal/store"
	"timesales-scraper/lib/scrapers/stockwatch"

	random "github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("internal/backfill")

// DayScraper is what the driver needs from the Stockwatch client.
type DayScraper interface {
	ScrapeDay(ctx context.Context, symbol, date string) ([]records.Trade, error)
}

type FailedDate struct {
	Date   string
	Reason string
}

type Summary struct {
	Symbol      string
	Start       string
	End         string
	TotalDates  int
	Successful  []string
	Failed      []FailedDate
	TotalTrades int
}

// DateRange generates the inclusive yyyymmdd list from start to end,
// oldest first.
func DateRange(start, end string) ([]string, error) {
	startDay, err := time.Parse("20060102", start)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", stockwatch.ErrBadDate, start)
	}
	endDay, err := time.Parse("20060102", end)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", stockwatch.ErrBadDate, end)
	}
	if startDay.After(endDay) {
		return nil, fmt.Errorf("%w: start %s is after end %s", stockwatch.ErrBadDate, start, end)
	}

	var dates []string
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		dates = append(dates, day.Format("20060102"))
	}
	return dates, nil
}

// StartFromDays computes the start date for a trailing window of
// `days` ending at `end`, inclusive of both endpoints.
func StartFromDays(end time.Time, days int) string {
	return end.AddDate(0, 0, -(days - 1)).Format("20060102")
}

type Options struct {
	Symbol     string
	Start      string
	End        string
	TradesFile string
	Scraper    DayScraper
	// bounds for the jittered pause between days; the portal is
	// single-session and paced at human scale
	PaceMin time.Duration
	PaceMax time.Duration
}

// Run iterates the date range, scraping and appending per day.
// Per-day errors are recorded and the loop continues; an empty day is
// a success (weekend or holiday).
func Run(ctx context.Context, opts Options) (Summary, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	dates, err := DateRange(opts.Start, opts.End)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Symbol:     opts.Symbol,
		Start:      opts.Start,
		End:        opts.End,
		TotalDates: len(dates),
	}

	for i, date := range dates {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		slog.InfoContext(ctx, "processing day",
			"symbol", opts.Symbol, "date", date, "progress", fmt.Sprintf("%d/%d", i+1, len(dates)))

		trades, err := opts.Scraper.ScrapeDay(ctx, opts.Symbol, date)
		if err != nil {
			summary.Failed = append(summary.Failed, FailedDate{Date: date, Reason: err.Error()})
			slog.ErrorContext(ctx, "day failed", "date", date, "err", err)
			continue
		}

		if len(trades) > 0 {
			err = store.AppendJSON(trades, opts.TradesFile)
			if err != nil {
				// best-effort durability: log and keep going
				slog.ErrorContext(ctx, "failed to write trades", "date", date, "err", err)
			}
			summary.TotalTrades += len(trades)
		} else {
			slog.InfoContext(ctx, "no trades found (weekend/holiday?)", "date", date)
		}
		summary.Successful = append(summary.Successful, date)

		if i < len(dates)-1 {
			pause(ctx, opts.PaceMin, opts.PaceMax)
		}
	}
	return summary, nil
}

// pause sleeps a jittered duration between days.
func pause(ctx context.Context, min, max time.Duration) {
	if max <= 0 || max < min {
		return
	}
	d := min
	if max > min {
		jitter, err := random.IntRange(0, int(max-min))
		if err == nil {
			d = min + time.Duration(jitter)
		}
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
