package utils

import (
	"math/big"
	"strconv"
	"strings"
)

// DefaultTokenDecimals is assumed when the provider omits the decimals field.
const DefaultTokenDecimals uint8 = 18

// ParseRawBalance converts a raw integer balance string to a decimal value
// by dividing by 10^decimals. Malformed input yields 0.
func ParseRawBalance(raw string, decimals uint8) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return 0
	}

	amountFloat := new(big.Float).SetInt(amount)
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value, _ := new(big.Float).Quo(amountFloat, divisor).Float64()
	return value
}

// ParseRecordBalance resolves a record's decimal balance: the provider's
// pre-formatted string is preferred, otherwise the raw integer balance is
// scaled by the record's decimals (18 when unspecified).
func ParseRecordBalance(formatted, raw string, decimals *uint8) float64 {
	if formatted != "" {
		if v, err := strconv.ParseFloat(strings.TrimSpace(formatted), 64); err == nil {
			return v
		}
	}
	dec := DefaultTokenDecimals
	if decimals != nil {
		dec = *decimals
	}
	return ParseRawBalance(raw, dec)
}

// BatchStrings splits a slice of strings into batches of at most batchSize.
func BatchStrings(items []string, batchSize int) [][]string {
	if batchSize <= 0 {
		batchSize = len(items)
	}
	if len(items) == 0 {
		return [][]string{}
	}

	var batches [][]string
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}
