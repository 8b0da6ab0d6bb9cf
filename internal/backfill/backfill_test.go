package backfill

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"timesales-scraper/internal/records"
	"timesales-scraper/lib/scrapers/stockwatch"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDateRange(t *testing.T) {
	dates, err := DateRange("20241230", "20250102")
	require.NoError(t, err)
	require.Equal(t, []string{"20241230", "20241231", "20250101", "20250102"}, dates)
}

func TestDateRangeSingleDay(t *testing.T) {
	dates, err := DateRange("20241115", "20241115")
	require.NoError(t, err)
	require.Equal(t, []string{"20241115"}, dates)
}

func TestDateRangeErrors(t *testing.T) {
	_, err := DateRange("2024-12-30", "20250102")
	require.ErrorIs(t, err, stockwatch.ErrBadDate)

	_, err = DateRange("20241230", "banana")
	require.ErrorIs(t, err, stockwatch.ErrBadDate)

	_, err = DateRange("20250102", "20241230")
	require.ErrorIs(t, err, stockwatch.ErrBadDate)
}

func TestStartFromDays(t *testing.T) {
	end := time.Date(2024, time.November, 15, 12, 0, 0, 0, time.UTC)
	require.Equal(t, "20241017", StartFromDays(end, 30))
	require.Equal(t, "20241115", StartFromDays(end, 1))
}

type fakeScraper struct {
	trades map[string][]records.Trade
	errs   map[string]error
	calls  []string
}

func (s *fakeScraper) ScrapeDay(ctx context.Context, symbol, date string) ([]records.Trade, error) {
	s.calls = append(s.calls, date)
	if err := s.errs[date]; err != nil {
		return nil, err
	}
	return s.trades[date], nil
}

func dayTrades(date string, n int) []records.Trade {
	out := make([]records.Trade, n)
	for i := range out {
		price := 1.50
		out[i] = records.Trade{
			Symbol: "DOCT",
			Date:   date,
			TimeET: fmt.Sprintf("09:30:%02d", i),
			Price:  &price,
		}
	}
	return out
}

func TestRunPartialFailure(t *testing.T) {
	scraper := &fakeScraper{
		trades: map[string][]records.Trade{
			"20241230": dayTrades("20241230", 5),
			"20250102": dayTrades("20250102", 7),
		},
		errs: map[string]error{
			"20241231": stockwatch.ErrLoginFailed,
		},
	}
	tradesFile := filepath.Join(t.TempDir(), "trades.json")

	summary, err := Run(context.Background(), Options{
		Symbol:     "DOCT",
		Start:      "20241230",
		End:        "20250102",
		TradesFile: tradesFile,
		Scraper:    scraper,
	})
	require.NoError(t, err)

	want := Summary{
		Symbol:      "DOCT",
		Start:       "20241230",
		End:         "20250102",
		TotalDates:  4,
		Successful:  []string{"20241230", "20250101", "20250102"},
		Failed:      []FailedDate{{Date: "20241231", Reason: "LoginFailed"}},
		TotalTrades: 12,
	}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Fatal(diff)
	}

	// every day was attempted, oldest first
	require.Equal(t, []string{"20241230", "20241231", "20250101", "20250102"}, scraper.calls)

	contents, err := os.ReadFile(tradesFile)
	require.NoError(t, err)
	var written []records.Trade
	require.NoError(t, json.Unmarshal(contents, &written))
	require.Len(t, written, 12)
	// chronological order across days
	require.Equal(t, "20241230", written[0].Date)
	require.Equal(t, "20241230", written[4].Date)
	require.Equal(t, "20250102", written[5].Date)
	require.Equal(t, "20250102", written[11].Date)
}

func TestRunEmptyDayIsSuccess(t *testing.T) {
	scraper := &fakeScraper{}
	tradesFile := filepath.Join(t.TempDir(), "trades.json")

	summary, err := Run(context.Background(), Options{
		Symbol:     "DOCT",
		Start:      "20241116",
		End:        "20241117",
		TradesFile: tradesFile,
		Scraper:    scraper,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"20241116", "20241117"}, summary.Successful)
	require.Empty(t, summary.Failed)
	require.Equal(t, 0, summary.TotalTrades)

	// nothing was scraped, so nothing was written
	_, err = os.Stat(tradesFile)
	require.True(t, os.IsNotExist(err))
}

func TestRunBadRange(t *testing.T) {
	_, err := Run(context.Background(), Options{Start: "nope", End: "20241117"})
	require.ErrorIs(t, err, stockwatch.ErrBadDate)
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scraper := &fakeScraper{}
	summary, err := Run(ctx, Options{
		Symbol:  "DOCT",
		Start:   "20241116",
		End:     "20241120",
		Scraper: scraper,
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, summary.Successful)
	require.Empty(t, scraper.calls)
}

func TestPlainSummary(t *testing.T) {
	s := Summary{
		Symbol: "DOCT", Start: "20241230", End: "20250102",
		TotalDates: 4, Successful: []string{"a", "b", "c"},
		Failed:      []FailedDate{{Date: "20241231", Reason: "LoginFailed"}},
		TotalTrades: 12,
	}
	text := PlainSummary(s)
	require.Contains(t, text, "DOCT")
	require.Contains(t, text, "20241231: LoginFailed")
	require.Contains(t, text, "trades: 12")
}

func TestRenderSummary(t *testing.T) {
	var out strings.Builder
	RenderSummary(&out, Summary{
		Symbol: "DOCT", Start: "20241230", End: "20250102",
		TotalDates:  4,
		Failed:      []FailedDate{{Date: "20241231", Reason: "LoginFailed"}},
		TotalTrades: 12,
	})
	require.Contains(t, out.String(), "DOCT")
	require.Contains(t, out.String(), "LoginFailed")
}
