// Package records holds the on-disk record shapes shared by the
// scrapers, the store and the deduplicator.
package records

// Trade is one execution pulled from the Stockwatch per-day trades
// table. Price, Change and Volume stay nil when the venue renders a
// non-numeric cell; the record itself is still kept.
type Trade struct {
	Symbol   string   `json:"symbol"`
	Date     string   `json:"date"`
	TimeET   string   `json:"time_et,omitempty"`
	Exchange string   `json:"exchange,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Change   *float64 `json:"change,omitempty"`
	Volume   *int64   `json:"volume,omitempty"`
	Buyer    string   `json:"buyer,omitempty"`
	Seller   string   `json:"seller,omitempty"`
	Markers  string   `json:"markers,omitempty"`
}

// DepthRow is one line of the CSE "Depth Display" table. Timestamp is
// the scrape date (YYYY-MM-DD), not a trade time: the venue does not
// expose per-row times, so consumers joining this against Trade data
// on time will be misaligned.
type DepthRow struct {
	Timestamp    string   `json:"timestamp"`
	Price        *float64 `json:"price"`
	Volume       *int64   `json:"volume"`
	BuyerBroker  string   `json:"buyer_broker"`
	SellerBroker string   `json:"seller_broker"`
	TradeID      string   `json:"trade_id,omitempty"`
	BidPrice     *float64 `json:"bid_price,omitempty"`
	AskPrice     *float64 `json:"ask_price,omitempty"`
	BidSize      *int64   `json:"bid_size,omitempty"`
	AskSize      *int64   `json:"ask_size,omitempty"`
}
