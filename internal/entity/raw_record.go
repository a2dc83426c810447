package entity

// RawBalanceRecord is one balance entry as returned by the upstream indexing
// provider. The provider's responses are not uniform across API versions:
// fields may be absent, zero or duplicated between Balance and
// BalanceFormatted, so records must be normalized before use.
type RawBalanceRecord struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	TokenAddress     *string `json:"token_address"`
	Balance          string  `json:"balance"`
	BalanceFormatted string  `json:"balance_formatted"`
	Decimals         *uint8  `json:"decimals"`
	USDPrice         float64 `json:"usd_price"`
	USDValue         float64 `json:"usd_value"`
	USDPrice24hrPct  float64 `json:"usd_price_24hr_percent_change"`
	USDValue24hrUSD  float64 `json:"usd_value_24hr_usd_change"`
	NativeToken      bool    `json:"native_token"`
	PossibleSpam     bool    `json:"possible_spam"`
	VerifiedContract bool    `json:"verified_contract"`
	Logo             string  `json:"logo"`
}

// ClassifiedRecords is the output of token classification: the wallet's
// native-currency record (if any), preset-token records and everything else.
// Spam-flagged records outside the preset list are dropped entirely.
type ClassifiedRecords struct {
	Native *RawBalanceRecord
	Preset []RawBalanceRecord
	Hidden []RawBalanceRecord
}
