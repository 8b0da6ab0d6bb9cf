// Package cse scrapes the "Depth Display" table off a CSE listing
// page. The page needs no authentication, so a plain instrumented GET
// is tried first and the headless browser is only spun up when the
// static markup lacks the table. Everything here is best-effort: any
// failure degrades to an empty result with a diagnostic.
package cse

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"
	"timesales-scraper/internal/records"
	"timesales-scraper/lib/browser"
	"timesales-scraper/lib/tabular"
	"timesales-scraper/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/cse")

type Config struct {
	ListingBaseURL string             `json:"listing_base_url"`
	Slugs          map[string]string  `json:"slugs"`
	Locate         tabular.LocateSpec `json:"locate"`
	Browser        browser.Options    `json:"browser"`
	// write the captured table html next to the outputs for
	// inspection when markup shifts; nil means enabled
	DebugCapture *bool `json:"debug_capture"`
}

func (c Config) debugCapture() bool {
	return c.DebugCapture == nil || *c.DebugCapture
}

// DefaultConfig carries the known slug mapping and the table locate
// fallback chain: anchor heading, section scan, then structural
// fingerprint.
func DefaultConfig() Config {
	return Config{
		ListingBaseURL: "https://thecse.com/listings/",
		Slugs: map[string]string{
			"DOCT": "republic-technologies-inc",
		},
		Locate: tabular.LocateSpec{
			Strategies: []tabular.Strategy{
				{Kind: tabular.ByAnchorHeading, Phrase: "depth display"},
				{Kind: tabular.BySectionScan, Phrase: "depth display"},
				{Kind: tabular.ByFingerprint, Markers: []string{"bid broker", "ask broker"}},
			},
		},
	}
}

type Client struct {
	cfg  Config
	http *resty.Client
}

func NewClient(cfg Config) (*Client, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/cse/http")

	return &Client{cfg: cfg, http: client}, nil
}

// ListingURL resolves a ticker to its listing page, falling back to
// the lowercased symbol as slug.
func (c *Client) ListingURL(symbol string) string {
	slug, ok := c.cfg.Slugs[strings.ToUpper(symbol)]
	if !ok {
		slug = strings.ToLower(symbol)
	}
	return c.cfg.ListingBaseURL + slug + "/"
}

// ScrapeDepth returns the current depth rows for a symbol. It never
// returns an error: the venue is best-effort and failures degrade to
// an empty list with a diagnostic on the log.
func (c *Client) ScrapeDepth(ctx context.Context, symbol string) []records.DepthRow {
	ctx, span := tracer.Start(ctx, "ScrapeDepth")
	defer span.End()

	url := c.ListingURL(symbol)
	slog.InfoContext(ctx, "loading listing page", "symbol", symbol, "url", url)

	tableHTML, err := c.fetchStatic(ctx, url)
	if err != nil {
		slog.WarnContext(ctx, "static fetch missed the depth table, falling back to browser",
			"symbol", symbol, "err", err)
		tableHTML, err = c.fetchRendered(ctx, url)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "depth table not found")
		fmt.Fprintf(os.Stderr, "depth display table not found for %s: %v\n", symbol, err)
		return nil
	}

	if c.cfg.debugCapture() {
		debugFile := fmt.Sprintf("%s_debug_table.html", strings.ToLower(symbol))
		writeErr := os.WriteFile(debugFile, []byte(tableHTML), 0o644)
		if writeErr != nil {
			slog.WarnContext(ctx, "failed to write debug capture", "err", writeErr)
		}
	}

	rows, err := ParseDepthHTML(tableHTML, time.Now().Format("2006-01-02"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "depth table parse failed")
		fmt.Fprintf(os.Stderr, "failed to parse depth table for %s: %v\n", symbol, err)
		return nil
	}
	slog.InfoContext(ctx, "extracted depth rows", "symbol", symbol, "n", len(rows))
	return rows
}

func (c *Client) fetchStatic(ctx context.Context, url string) (string, error) {
	res, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", err
	}
	return c.locateTable(bytes.NewReader(res.Body()))
}

func (c *Client) fetchRendered(ctx context.Context, url string) (string, error) {
	session, release, err := browser.NewSession(ctx, c.cfg.Browser)
	if err != nil {
		return "", err
	}
	defer release()

	err = session.Navigate(ctx, url, 2*time.Second)
	if err != nil {
		return "", err
	}
	content, err := session.PageContent(ctx)
	if err != nil {
		return "", err
	}
	return c.locateTable(strings.NewReader(content))
}

func (c *Client) locateTable(page io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return "", err
	}
	table, err := tabular.FindTable(doc, c.cfg.Locate)
	if err != nil {
		return "", err
	}
	html, err := goquery.OuterHtml(table)
	if err != nil {
		return "", err
	}
	return html, nil
}
