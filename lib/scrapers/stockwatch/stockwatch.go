// Package stockwatch pulls per-day time-and-sales rows out of the
// Stockwatch portal. One ScrapeDay call owns one authenticated
// browser session: home -> login -> symbol search -> trades page ->
// date submit -> table capture.
package stockwatch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"timesales-scraper/internal/records"
	"timesales-scraper/lib/browser"
	"timesales-scraper/lib/htmlutil"
	"timesales-scraper/lib/secrets"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/stockwatch")

var (
	ErrBadDate            = fmt.Errorf("date must be in yyyymmdd format")
	ErrLoginFailed        = fmt.Errorf("LoginFailed")
	ErrSymbolSearchFailed = fmt.Errorf("SymbolSearchFailed")
	ErrNavigationFailed   = fmt.Errorf("NavigationFailed")
	ErrDateSubmitFailed   = fmt.Errorf("DateSubmitFailed")
)

// text fragments whose presence in the post-login page mean the login
// definitely failed
var loginErrorIndicators = []string{
	"invalid", "incorrect", "error", "failed", "wrong", "trouble logging",
}

// fragments meaning the venue has no rows for the requested day
var noDataIndicators = []string{"no trades", "no data"}

type Selectors struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	LoginButton string `json:"login_button"`
	SymbolInput string `json:"symbol_input"`
	SymbolGo    string `json:"symbol_go"`
	DateInput   string `json:"date_input"`
	DateSubmit  string `json:"date_submit"`
	TradesTable string `json:"trades_table"`
	// clicked when no anchor text matches MoreTradesText
	MoreTradesFallback string `json:"more_trades_fallback"`
}

type Config struct {
	HomeURL        string          `json:"home_url"`
	Selectors      Selectors       `json:"selectors"`
	MoreTradesText string          `json:"more_trades_text"`
	Browser        browser.Options `json:"browser"`
	// ceiling for the results table to become visible
	TableTimeoutSeconds int `json:"table_timeout_seconds"`
}

// DefaultConfig carries the portal's stable element ids.
func DefaultConfig() Config {
	return Config{
		HomeURL: "https://www.stockwatch.com/",
		Selectors: Selectors{
			Username:           "#PowerUserName",
			Password:           "#PowerPassword",
			LoginButton:        "#Login",
			SymbolInput:        "#TextSymbol2",
			SymbolGo:           "#GoButton2",
			DateInput:          "#MainContent_TradesDate",
			DateSubmit:         "#MainContent_TradesSubmit",
			TradesTable:        "#MainContent_TradeList_Table1_Table1",
			MoreTradesFallback: `a[href*="Trades"]`,
		},
		MoreTradesText:      "more trades",
		TableTimeoutSeconds: 30,
	}
}

type Client struct {
	cfg   Config
	creds secrets.Credentials
}

func NewClient(cfg Config, creds secrets.Credentials) *Client {
	return &Client{cfg: cfg, creds: creds}
}

// ValidateDate checks the yyyymmdd shape used across the venue.
func ValidateDate(date string) error {
	_, err := time.Parse("20060102", date)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrBadDate, date)
	}
	return nil
}

func (c *Client) tableTimeout() time.Duration {
	if c.cfg.TableTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.cfg.TableTimeoutSeconds) * time.Second
}

// ScrapeDay returns the decorated trade rows for one symbol and day.
// Date defaults to today when empty. Browser and navigation errors
// propagate; the caller decides whether a day is skippable.
func (c *Client) ScrapeDay(ctx context.Context, symbol, date string) ([]records.Trade, error) {
	ctx, span := tracer.Start(ctx, "ScrapeDay")
	defer span.End()

	if date == "" {
		date = time.Now().Format("20060102")
	}
	err := ValidateDate(date)
	if err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(symbol)

	session, release, err := browser.NewSession(ctx, c.cfg.Browser)
	if err != nil {
		return nil, err
	}
	defer release()

	err = c.login(ctx, session)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	err = c.searchSymbol(ctx, session, symbol)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrSymbolSearchFailed, err)
	}
	err = c.openTradesPage(ctx, session)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrNavigationFailed, err)
	}
	err = c.submitDate(ctx, session, date)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrDateSubmitFailed, err)
	}

	tableHTML, empty, err := c.awaitTable(ctx, session, symbol, date)
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, nil
	}

	trades, err := ParseTradesHTML(tableHTML, symbol, date)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse trades table", "symbol", symbol, "date", date, "err", err)
		return nil, nil
	}
	slog.InfoContext(ctx, "extracted trades", "symbol", symbol, "date", date, "n", len(trades))
	return trades, nil
}

// login submits credentials on the portal home page. Success is
// judged optimistically: only a definite error indicator fails the
// run, the results table later on is the authoritative signal.
func (c *Client) login(ctx context.Context, session *browser.Session) error {
	ctx, span := tracer.Start(ctx, "login")
	defer span.End()

	sel := c.cfg.Selectors
	err := session.Navigate(ctx, c.cfg.HomeURL, 3*time.Second)
	if err != nil {
		return err
	}
	err = session.Fill(ctx, sel.Username, c.creds.Username)
	if err != nil {
		return err
	}
	err = session.Fill(ctx, sel.Password, c.creds.Password)
	if err != nil {
		return err
	}
	err = session.Click(ctx, sel.LoginButton)
	if err != nil {
		return err
	}
	err = session.Sleep(ctx, 3*time.Second)
	if err != nil {
		return err
	}

	content, err := session.PageContent(ctx)
	if err != nil {
		return err
	}
	if indicator, failed := LoginFailureIndicator(content); failed {
		span.SetStatus(codes.Error, "login error indicator present")
		return fmt.Errorf("%w: page contains %q", ErrLoginFailed, indicator)
	}

	location, err := session.Location(ctx)
	if err == nil && strings.Contains(strings.ToLower(location), "login") {
		slog.WarnContext(ctx, "login status unclear, continuing", "url", location)
	}
	return nil
}

// LoginFailureIndicator scans a page body for the known login error
// fragments.
func LoginFailureIndicator(content string) (string, bool) {
	lowered := strings.ToLower(content)
	for _, indicator := range loginErrorIndicators {
		if strings.Contains(lowered, indicator) {
			return indicator, true
		}
	}
	return "", false
}

// NoDataIndicator scans a page body for the fragments meaning the
// venue has no rows for the requested day.
func NoDataIndicator(content string) (string, bool) {
	lowered := strings.ToLower(content)
	for _, indicator := range noDataIndicators {
		if strings.Contains(lowered, indicator) {
			return indicator, true
		}
	}
	return "", false
}

func (c *Client) searchSymbol(ctx context.Context, session *browser.Session, symbol string) error {
	ctx, span := tracer.Start(ctx, "searchSymbol")
	defer span.End()

	sel := c.cfg.Selectors
	err := session.Navigate(ctx, c.cfg.HomeURL, 3*time.Second)
	if err != nil {
		return err
	}
	err = session.Fill(ctx, sel.SymbolInput, symbol)
	if err != nil {
		return err
	}
	err = session.Click(ctx, sel.SymbolGo)
	if err != nil {
		return err
	}
	return session.Sleep(ctx, 2*time.Second)
}

// openTradesPage follows the "More trades" affordance on the symbol
// page: first an anchor matched by text, then the href fallback
// selector.
func (c *Client) openTradesPage(ctx context.Context, session *browser.Session) error {
	ctx, span := tracer.Start(ctx, "openTradesPage")
	defer span.End()

	content, err := session.PageContent(ctx)
	if err != nil {
		return err
	}
	location, err := session.Location(ctx)
	if err != nil {
		return err
	}

	href, found := FindMoreTradesHref(content, location, c.cfg.MoreTradesText)
	if found {
		err = session.Navigate(ctx, href, 2*time.Second)
		if err == nil {
			return nil
		}
		slog.WarnContext(ctx, "more-trades anchor navigation failed, trying fallback", "err", err)
	}

	err = session.Click(ctx, c.cfg.Selectors.MoreTradesFallback)
	if err != nil {
		return err
	}
	return session.Sleep(ctx, 2*time.Second)
}

// FindMoreTradesHref locates the trades-page anchor by its text and
// resolves the href against the current page url.
func FindMoreTradesHref(content, pageURL, anchorText string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", false
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	want := strings.ToLower(anchorText)
	var href string
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := strings.ToLower(htmlutil.NormalizeText(a.Text()))
		if !strings.Contains(text, want) {
			return true
		}
		raw := a.AttrOr("href", "")
		if raw == "" {
			return true
		}
		href = raw
		if base != nil {
			ref, err := url.Parse(raw)
			if err == nil {
				href = base.ResolveReference(ref).String()
			}
		}
		return false
	})
	return href, href != ""
}

func (c *Client) submitDate(ctx context.Context, session *browser.Session, date string) error {
	ctx, span := tracer.Start(ctx, "submitDate")
	defer span.End()

	sel := c.cfg.Selectors
	err := session.Fill(ctx, sel.DateInput, date)
	if err != nil {
		return err
	}
	// Enter closes the calendar popup the date input opens
	err = session.Press(ctx, sel.DateInput, "Enter")
	if err != nil {
		return err
	}
	err = session.Sleep(ctx, time.Second)
	if err != nil {
		return err
	}
	return session.Click(ctx, sel.DateSubmit)
}

// awaitTable waits for the results table and captures its outer HTML.
// A day with no trades reports empty=true instead of an error; an
// unexplained timeout attempts one last direct capture.
func (c *Client) awaitTable(ctx context.Context, session *browser.Session, symbol, date string) (html string, empty bool, err error) {
	ctx, span := tracer.Start(ctx, "awaitTable")
	defer span.End()

	tableSel := c.cfg.Selectors.TradesTable
	err = session.WaitVisible(ctx, tableSel, c.tableTimeout())
	if err != nil {
		content, contentErr := session.PageContent(ctx)
		if contentErr == nil {
			if _, none := NoDataIndicator(content); none {
				slog.InfoContext(ctx, "no trades for day", "symbol", symbol, "date", date)
				return "", true, nil
			}
		}
		slog.WarnContext(ctx, "trades table never became visible, attempting direct capture",
			"symbol", symbol, "date", date)
	} else {
		err = session.Sleep(ctx, 3*time.Second)
		if err != nil {
			return "", false, err
		}
	}

	html, err = session.OuterHTML(ctx, tableSel)
	if err != nil {
		slog.ErrorContext(ctx, "could not capture trades table", "symbol", symbol, "date", date, "err", err)
		return "", true, nil
	}
	return html, false, nil
}
