package entity

// PriceQuote is one resolved market price with its 24h movement.
type PriceQuote struct {
	USD          float64 `json:"usd"`
	USD24hChange float64 `json:"usd_24h_change"`
}

// SimplePriceResponse is the market-data API's bulk price response:
// coin identifier -> quote.
type SimplePriceResponse map[string]PriceQuote

// SearchCoin is one hit from the market-data search endpoint.
type SearchCoin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// SearchResponse wraps the market-data search endpoint response. Coins are
// ordered by relevance; the first entry is the best-effort match.
type SearchResponse struct {
	Coins []SearchCoin `json:"coins"`
}
