package client

import (
	"testing"

	"go.uber.org/zap"
)

func testMoralisClient() *moralisClientImpl {
	return &moralisClientImpl{logger: zap.NewNop()}
}

func TestNormalizeBalanceResponseShapes(t *testing.T) {
	record := `{"symbol":"USDC","token_address":"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48","balance_formatted":"100","decimals":6}`

	tests := []struct {
		name string
		body string
		want int
	}{
		{"wrapped result array", `{"result":[` + record + `]}`, 1},
		{"nested result.result", `{"result":{"result":[` + record + `,` + record + `]}}`, 2},
		{"raw.result", `{"raw":{"result":[` + record + `]}}`, 1},
		{"bare array", `[` + record + `]`, 1},
		{"empty result array", `{"result":[]}`, 0},
		{"empty object", `{}`, 0},
		{"garbage", `"not a balance response"`, 0},
		{"truncated body", `{"result":[` + record, 0},
	}

	c := testMoralisClient()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := c.normalizeBalanceResponse([]byte(tt.body), "http://test")
			if records == nil {
				t.Fatal("normalization must never return nil")
			}
			if len(records) != tt.want {
				t.Errorf("got %d records, want %d", len(records), tt.want)
			}
			for _, rec := range records {
				if rec.Symbol != "USDC" {
					t.Errorf("record fields lost during normalization: %+v", rec)
				}
			}
		})
	}
}

func TestChainHexID(t *testing.T) {
	tests := []struct {
		chainID int64
		want    string
	}{
		{1, "0x1"},
		{56, "0x38"},
		{137, "0x89"},
		{42161, "0xa4b1"},
	}

	for _, tt := range tests {
		if got := chainHexID(tt.chainID); got != tt.want {
			t.Errorf("chainHexID(%d) = %q, want %q", tt.chainID, got, tt.want)
		}
	}
}
