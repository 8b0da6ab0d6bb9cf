// Package dedup rewrites a dataset file keeping only the first
// occurrence of each identity tuple. It operates on raw JSON elements
// so unknown fields and key order survive the rewrite, which also
// makes the pass idempotent byte-for-byte.
package dedup

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"timesales-scraper/internal/store"
)

// Kind selects the identity tuple builder for a dataset file.
type Kind string

const (
	KindTrades    Kind = "trades"
	KindDepthRows Kind = "depth"
)

func getString(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

// numField keeps null distinct from an absent field (which counts as
// zero) so records differing only in explicit nulls stay separate.
func numField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return "0"
	}
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%v", v)
}

// tradeKey mirrors the trade identity tuple:
// (date, time_et, exchange, price, volume, buyer, seller)
func tradeKey(m map[string]any) string {
	return strings.Join([]string{
		getString(m, "date"),
		getString(m, "time_et"),
		getString(m, "exchange"),
		numField(m, "price"),
		numField(m, "volume"),
		getString(m, "buyer"),
		getString(m, "seller"),
	}, "\x1f")
}

// depthKey mirrors the depth row identity tuple: (timestamp, price,
// volume, buyer_broker, seller_broker, bid_price, ask_price,
// bid_size, ask_size)
func depthKey(m map[string]any) string {
	return strings.Join([]string{
		getString(m, "timestamp"),
		numField(m, "price"),
		numField(m, "volume"),
		getString(m, "buyer_broker"),
		getString(m, "seller_broker"),
		numField(m, "bid_price"),
		numField(m, "ask_price"),
		numField(m, "bid_size"),
		numField(m, "ask_size"),
	}, "\x1f")
}

func keyBuilder(kind Kind) func(map[string]any) string {
	if kind == KindDepthRows {
		return depthKey
	}
	return tradeKey
}

// Run deduplicates one dataset file in place, preserving first-seen
// order, and returns the number of records removed. The file is only
// rewritten when at least one duplicate was dropped. A missing file
// removes nothing and is not an error.
func Run(filename string, kind Kind) (int, error) {
	elements, err := store.ReadArray(filename)
	if err != nil {
		slog.Warn("dataset is not a readable JSON array, skipping", "file", filename, "err", err)
		return 0, nil
	}
	if elements == nil {
		return 0, nil
	}

	build := keyBuilder(kind)
	seen := map[string]bool{}
	var unique []json.RawMessage
	for _, element := range elements {
		var m map[string]any
		err := json.Unmarshal(element, &m)
		if err != nil {
			// non-object entries are kept as-is
			unique = append(unique, element)
			continue
		}
		key := build(m)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, element)
	}

	removed := len(elements) - len(unique)
	if removed == 0 {
		return 0, nil
	}

	err = store.WriteArray(unique, filename)
	if err != nil {
		return 0, err
	}
	slog.Info("removed duplicates", "file", filename, "removed", removed,
		"before", len(elements), "after", len(unique))
	return removed, nil
}
