package cse

import (
	"fmt"
	"strings"
	"timesales-scraper/internal/records"
	"timesales-scraper/lib/tabular"

	"github.com/PuerkitoBio/goquery"
)

// header predicates for the depth table. Bid/ask columns double as
// the generic price and volume when no dedicated column exists; bid
// wins over ask because its predicate is listed first and the mapper
// never overwrites a claimed field.
func fieldSpecs() []tabular.FieldSpec {
	return []tabular.FieldSpec{
		{Field: "timestamp", Match: tabular.Contains("time")},
		{Field: "buyer", Match: tabular.Contains("bid broker")},
		{Field: "seller", Match: tabular.Contains("ask broker")},
		{Field: "buyer", Match: tabular.ContainsAll("buyer", "broker")},
		{Field: "seller", Match: tabular.ContainsAll("seller", "broker")},
		{Field: "bid_price", Match: tabular.Contains("bid price")},
		{Field: "ask_price", Match: tabular.Contains("ask price")},
		{Field: "price", Match: tabular.All(
			tabular.Contains("price"),
			tabular.ContainsNone("bid", "ask"),
		)},
		{Field: "price", Match: tabular.Contains("bid price")},
		{Field: "price", Match: tabular.Contains("ask price")},
		{Field: "bid_size", Match: tabular.Contains("bid size")},
		{Field: "ask_size", Match: tabular.Contains("ask size")},
		{Field: "volume", Match: tabular.All(
			tabular.Any(tabular.Contains("volume"), tabular.Contains("size")),
			tabular.ContainsNone("bid", "ask"),
		)},
		{Field: "volume", Match: tabular.Contains("bid size")},
		{Field: "volume", Match: tabular.Contains("ask size")},
		{Field: "trade_id", Match: tabular.ContainsAll("trade", "id")},
	}
}

// ParseDepthHTML extracts depth rows from the captured table. The
// depth-display flavor (bid and ask both present among the headers)
// additionally emits the per-side price and size fields. Timestamp is
// the scrape date for every row; the venue exposes no per-row time.
func ParseDepthHTML(html, scrapeDate string) ([]records.DepthRow, error) {
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

	joined := strings.ToLower(strings.Join(raw.Headers, " "))
	depthFlavor := strings.Contains(joined, "bid") && strings.Contains(joined, "ask")

	columns := tabular.MapColumns(raw.Headers, fieldSpecs())
	if len(columns) == 0 {
		columns = tabular.DefaultPositional()
	}

	var rows []records.DepthRow
	for _, cells := range raw.Rows {
		if len(cells) < 3 {
			continue
		}
		row := records.DepthRow{Timestamp: scrapeDate}
		if v, ok := columns.Cell(cells, "price"); ok {
			row.Price = tabular.ParsePrice(v)
		}
		if v, ok := columns.Cell(cells, "volume"); ok {
			row.Volume = tabular.ParseVolume(v)
		}
		if v, ok := columns.Cell(cells, "buyer"); ok {
			row.BuyerBroker = v
		}
		if v, ok := columns.Cell(cells, "seller"); ok {
			row.SellerBroker = v
		}
		if v, ok := columns.Cell(cells, "trade_id"); ok {
			row.TradeID = v
		}
		if depthFlavor {
			if v, ok := columns.Cell(cells, "bid_price"); ok {
				row.BidPrice = tabular.ParsePrice(v)
			}
			if v, ok := columns.Cell(cells, "ask_price"); ok {
				row.AskPrice = tabular.ParsePrice(v)
			}
			if v, ok := columns.Cell(cells, "bid_size"); ok {
				row.BidSize = tabular.ParseVolume(v)
			}
			if v, ok := columns.Cell(cells, "ask_size"); ok {
				row.AskSize = tabular.ParseVolume(v)
			}
		}

		if row.BuyerBroker == "" && row.SellerBroker == "" && row.Price == nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
