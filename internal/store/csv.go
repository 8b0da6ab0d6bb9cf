package store

import (
	"encoding/csv"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"timesales-scraper/internal/records"
)

var preferredColumns = []string{
	"timestamp", "price", "volume", "buyer_broker", "seller_broker", "trade_id",
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func depthCell(row records.DepthRow, column string) string {
	switch column {
	case "timestamp":
		return row.Timestamp
	case "price":
		return formatFloat(row.Price)
	case "volume":
		return formatInt(row.Volume)
	case "buyer_broker":
		return row.BuyerBroker
	case "seller_broker":
		return row.SellerBroker
	case "trade_id":
		return row.TradeID
	case "bid_price":
		return formatFloat(row.BidPrice)
	case "ask_price":
		return formatFloat(row.AskPrice)
	case "bid_size":
		return formatInt(row.BidSize)
	case "ask_size":
		return formatInt(row.AskSize)
	}
	return ""
}

// observedColumns builds the csv header: the preferred prefix, then
// any other field present on at least one row, in sorted order.
func observedColumns(rows []records.DepthRow) []string {
	present := map[string]bool{
		"timestamp":     true,
		"price":         true,
		"volume":        true,
		"buyer_broker":  true,
		"seller_broker": true,
	}
	for _, row := range rows {
		if row.TradeID != "" {
			present["trade_id"] = true
		}
		if row.BidPrice != nil {
			present["bid_price"] = true
		}
		if row.AskPrice != nil {
			present["ask_price"] = true
		}
		if row.BidSize != nil {
			present["bid_size"] = true
		}
		if row.AskSize != nil {
			present["ask_size"] = true
		}
	}

	var out []string
	for _, c := range preferredColumns {
		if present[c] {
			out = append(out, c)
			delete(present, c)
		}
	}
	var rest []string
	for c := range present {
		rest = append(rest, c)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// WriteDepthCSV appends depth rows to a csv file; the header is
// written only when the file is new or appendMode is off.
func WriteDepthCSV(rows []records.DepthRow, filename string, appendMode bool) error {
	if len(rows) == 0 {
		slog.Info("no depth rows to write to csv", "file", filename)
		return nil
	}

	_, statErr := os.Stat(filename)
	fileExists := statErr == nil && appendMode

	flags := os.O_CREATE | os.O_WRONLY
	if fileExists {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(filename, flags, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	columns := observedColumns(rows)
	w := csv.NewWriter(f)
	if !fileExists {
		err = w.Write(columns)
		if err != nil {
			return err
		}
	}
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = depthCell(row, c)
		}
		err = w.Write(cells)
		if err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
