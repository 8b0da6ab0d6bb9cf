package stockwatch

import (
	"testing"
	"timesales-scraper/internal/records"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }
func i(v int64) *int64     { return &v }

const tradesTable = `<table id="MainContent_TradeList_Table1_Table1">
	<thead><tr>
		<th>Time (ET)</th><th>Exchange</th><th>Price</th><th>Change</th>
		<th>Volume</th><th>Buyer</th><th>Seller</th><th>Markers</th>
	</tr></thead>
	<tbody>
		<tr><td>09:30:01</td><td>CSE</td><td>$1.50</td><td>+0.02</td><td>1,000</td><td>085</td><td>080</td><td>K</td></tr>
		<tr><td>10:15:44</td><td>CSE</td><td>1.48</td><td>-0.02</td><td>500</td><td>080</td><td>085</td><td></td></tr>
		<tr><td>15:59:59</td><td>CSE</td><td>1.52</td><td>+0.04</td><td>2,500</td><td>085</td><td>085</td><td>E</td></tr>
	</tbody>
</table>`

func TestParseTradesDecoration(t *testing.T) {
	trades, err := ParseTradesHTML(tradesTable, "doct", "20241115")
	require.NoError(t, err)
	require.Len(t, trades, 3)

	for _, trade := range trades {
		require.Equal(t, "DOCT", trade.Symbol)
		require.Equal(t, "20241115", trade.Date)
	}

	want := records.Trade{
		Symbol:   "DOCT",
		Date:     "20241115",
		TimeET:   "09:30:01",
		Exchange: "CSE",
		Price:    f(1.50),
		Change:   f(0.02),
		Volume:   i(1000),
		Buyer:    "085",
		Seller:   "080",
		Markers:  "K",
	}
	if diff := cmp.Diff(want, trades[0]); diff != "" {
		t.Fatal(diff)
	}
}

func TestParseTradesReorderedColumns(t *testing.T) {
	// the venue shuffles columns between releases; identity must come
	// from header text
	html := `<table>
		<tr><th>Volume</th><th>Price</th><th>Time (ET)</th></tr>
		<tr><td>500</td><td>1.48</td><td>10:15:44</td></tr>
	</table>`
	trades, err := ParseTradesHTML(html, "DOCT", "20241115")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	require.Equal(t, i(500), trades[0].Volume)
	require.Equal(t, f(1.48), trades[0].Price)
	require.Equal(t, "10:15:44", trades[0].TimeET)
}

func TestParseTradesChangeDoesNotStealExchange(t *testing.T) {
	html := `<table>
		<tr><th>Exchange</th><th>Change</th><th>Price</th></tr>
		<tr><td>CSE</td><td>+0.02</td><td>1.50</td></tr>
	</table>`
	trades, err := ParseTradesHTML(html, "DOCT", "20241115")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	require.Equal(t, "CSE", trades[0].Exchange)
	require.Equal(t, f(0.02), trades[0].Change)
}

func TestParseTradesDropsRowsWithoutNumbers(t *testing.T) {
	html := `<table>
		<tr><th>Time (ET)</th><th>Price</th><th>Volume</th></tr>
		<tr><td>09:30:01</td><td>N/A</td><td>N/A</td></tr>
		<tr><td>10:15:44</td><td>1.48</td><td>N/A</td></tr>
	</table>`
	trades, err := ParseTradesHTML(html, "DOCT", "20241115")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	require.Equal(t, f(1.48), trades[0].Price)
	require.Nil(t, trades[0].Volume)
}

func TestParseTradesSkipsShortRows(t *testing.T) {
	html := `<table>
		<tr><th>Time (ET)</th><th>Price</th><th>Volume</th></tr>
		<tr><td colspan="3">Loading...</td></tr>
		<tr><td>09:30:01</td><td>1.50</td><td>500</td></tr>
	</table>`
	trades, err := ParseTradesHTML(html, "DOCT", "20241115")
	require.NoError(t, err)
	require.Len(t, trades, 1)
}

func TestParseTradesNoTable(t *testing.T) {
	_, err := ParseTradesHTML(`<div>session expired</div>`, "DOCT", "20241115")
	require.Error(t, err)
}
