package stockwatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDate(t *testing.T) {
	require.NoError(t, ValidateDate("20241115"))
	require.NoError(t, ValidateDate("20240229"))

	cases := []string{"2024-11-15", "20241340", "november", "", "2024115"}
	for _, date := range cases {
		require.ErrorIs(t, ValidateDate(date), ErrBadDate, "date %q", date)
	}
}

func TestLoginFailureIndicator(t *testing.T) {
	cases := []struct {
		body      string
		indicator string
		failed    bool
	}{
		{"<p>Invalid username or password</p>", "invalid", true},
		{"Your password is INCORRECT", "incorrect", true},
		{"Login failed, try again", "failed", true},
		{"Having trouble logging in?", "trouble logging", true},
		{"Welcome back, trader", "", false},
	}
	for _, test := range cases {
		indicator, failed := LoginFailureIndicator(test.body)
		require.Equal(t, test.failed, failed, "body %q", test.body)
		require.Equal(t, test.indicator, indicator, "body %q", test.body)
	}
}

func TestNoDataIndicator(t *testing.T) {
	cases := []struct {
		body      string
		indicator string
		empty     bool
	}{
		{"<p>No trades for this date.</p>", "no trades", true},
		{"NO DATA available for the selected day", "no data", true},
		{"<table id='MainContent_TradeList_Table1_Table1'></table>", "", false},
		{"", "", false},
	}
	for _, test := range cases {
		indicator, empty := NoDataIndicator(test.body)
		require.Equal(t, test.empty, empty, "body %q", test.body)
		require.Equal(t, test.indicator, indicator, "body %q", test.body)
	}
}

func TestFindMoreTradesHref(t *testing.T) {
	content := `
		<a href="/quote.aspx?symbol=DOCT">Quote</a>
		<a href="Trades.aspx?symbol=DOCT">More  trades &raquo;</a>`

	href, found := FindMoreTradesHref(content, "https://www.stockwatch.com/sw/", "more trades")
	require.True(t, found)
	require.Equal(t, "https://www.stockwatch.com/sw/Trades.aspx?symbol=DOCT", href)
}

func TestFindMoreTradesHrefAbsolute(t *testing.T) {
	content := `<a href="https://www.stockwatch.com/Trades.aspx?symbol=DOCT">More trades</a>`
	href, found := FindMoreTradesHref(content, "https://www.stockwatch.com/", "more trades")
	require.True(t, found)
	require.Equal(t, "https://www.stockwatch.com/Trades.aspx?symbol=DOCT", href)
}

func TestFindMoreTradesHrefMissing(t *testing.T) {
	_, found := FindMoreTradesHref(`<a href="/quote">Quote</a>`, "https://example.com/", "more trades")
	require.False(t, found)

	// anchor matched but carries no href
	_, found = FindMoreTradesHref(`<a>More trades</a>`, "https://example.com/", "more trades")
	require.False(t, found)
}

func TestDefaultConfigSelectors(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "#PowerUserName", cfg.Selectors.Username)
	require.Equal(t, "#MainContent_TradeList_Table1_Table1", cfg.Selectors.TradesTable)
	require.Equal(t, 30, cfg.TableTimeoutSeconds)
}
