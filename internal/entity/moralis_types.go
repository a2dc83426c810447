package entity

import jsoniter "github.com/json-iterator/go"

// MoralisEnvelope covers the wrapped response shapes the balance provider has
// shipped across API versions. Result is kept raw because it may be either a
// record array or another nested envelope; the client probes each known shape
// in priority order.
type MoralisEnvelope struct {
	Result jsoniter.RawMessage `json:"result"`
	Raw    *MoralisInnerResult `json:"raw"`
	Status string              `json:"status,omitempty"`
	Page   int                 `json:"page,omitempty"`
}

// MoralisInnerResult is the inner envelope observed on older provider
// responses (raw.result).
type MoralisInnerResult struct {
	Result []RawBalanceRecord `json:"result"`
}

// MoralisNativeBalance is the provider's plain native-balance response: the
// balance as an integer string in the chain's smallest unit.
type MoralisNativeBalance struct {
	Balance string `json:"balance"`
}

// MoralisError is the provider's error payload, returned alongside non-2xx
// status codes.
type MoralisError struct {
	Message string `json:"message"`
}
