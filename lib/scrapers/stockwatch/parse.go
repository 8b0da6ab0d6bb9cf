package stockwatch

import (
	"fmt"
	"strings"
	"timesales-scraper/internal/records"
	"timesales-scraper/lib/tabular"

	"github.com/PuerkitoBio/goquery"
)

// header predicates for the trades table. The venue reorders columns
// between releases so identity comes from header text, never
// position. Exchange keeps its historical "ex" substring fallback
// after the exact token test; change must not steal the Exchange
// column.
func fieldSpecs() []tabular.FieldSpec {
	return []tabular.FieldSpec{
		{Field: "time_et", Match: tabular.ContainsAll("time", "et")},
		{Field: "exchange", Match: tabular.HasToken("exchange")},
		{Field: "exchange", Match: tabular.All(
			tabular.Contains("ex"),
			tabular.ContainsNone("time"),
		)},
		{Field: "change", Match: tabular.All(
			tabular.Contains("change"),
			tabular.ContainsNone("exchange"),
		)},
		{Field: "price", Match: tabular.Contains("price")},
		{Field: "volume", Match: tabular.Contains("volume")},
		{Field: "buyer", Match: tabular.Contains("buyer")},
		{Field: "seller", Match: tabular.Contains("seller")},
		{Field: "markers", Match: tabular.Contains("marker")},
	}
}

// ParseTradesHTML extracts trade records from a captured trades-table
// fragment and decorates each with the requested symbol and day. A
// row survives only if it carries a price or a volume; rows that fail
// to parse are dropped individually.
func ParseTradesHTML(html, symbol, date string) ([]records.Trade, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("captured fragment contains no table")
	}

	raw, err := tabular.ExtractRaw(table)
	if err != nil {
		return nil, err
	}
	columns := tabular.MapColumns(raw.Headers, fieldSpecs())

	var trades []records.Trade
	for _, cells := range raw.Rows {
		if len(cells) < 3 {
			continue
		}
		trade := records.Trade{
			Symbol: strings.ToUpper(symbol),
			Date:   date,
		}
		if v, ok := columns.Cell(cells, "time_et"); ok {
			trade.TimeET = v
		}
		if v, ok := columns.Cell(cells, "exchange"); ok {
			trade.Exchange = v
		}
		if v, ok := columns.Cell(cells, "price"); ok {
			trade.Price = tabular.ParsePrice(v)
		}
		if v, ok := columns.Cell(cells, "change"); ok {
			trade.Change = tabular.ParseChange(v)
		}
		if v, ok := columns.Cell(cells, "volume"); ok {
			trade.Volume = tabular.ParseVolume(v)
		}
		if v, ok := columns.Cell(cells, "buyer"); ok {
			trade.Buyer = v
		}
		if v, ok := columns.Cell(cells, "seller"); ok {
			trade.Seller = v
		}
		if v, ok := columns.Cell(cells, "markers"); ok {
			trade.Markers = v
		}

		if trade.Price == nil && trade.Volume == nil {
			continue
		}
		trades = append(trades, trade)
	}
	return trades, nil
}
