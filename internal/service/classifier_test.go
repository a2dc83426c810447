package service

import (
	"testing"

	"portfolio_tracker/internal/entity"
)

const usdcAddress = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"

func testChainConfig() entity.ChainConfig {
	return entity.ChainConfig{
		ChainID:        1,
		Name:           "Ethereum",
		NativeSymbol:   "ETH",
		NativeDecimals: 18,
		PresetTokens: []entity.TokenDescriptor{
			{Address: usdcAddress, Symbol: "USDC", Name: "USD Coin", Decimals: 6},
		},
	}
}

func strPtr(s string) *string { return &s }
func decPtr(d uint8) *uint8   { return &d }

func TestClassifyNativeDetection(t *testing.T) {
	tests := []struct {
		name   string
		record entity.RawBalanceRecord
	}{
		{
			"native flag set",
			entity.RawBalanceRecord{Symbol: "ETH", NativeToken: true, BalanceFormatted: "1"},
		},
		{
			"native sentinel address",
			entity.RawBalanceRecord{Symbol: "ETH", TokenAddress: strPtr("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"), BalanceFormatted: "1"},
		},
		{
			"no contract address",
			entity.RawBalanceRecord{Symbol: "ETH", TokenAddress: nil, BalanceFormatted: "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Classify([]entity.RawBalanceRecord{tt.record}, testChainConfig())
			if out.Native == nil {
				t.Fatal("expected record to classify as native")
			}
			if len(out.Preset) != 0 || len(out.Hidden) != 0 {
				t.Error("native record leaked into preset or hidden sets")
			}
		})
	}
}

func TestClassifyPresetMatchIsCaseInsensitive(t *testing.T) {
	records := []entity.RawBalanceRecord{
		{
			Symbol:           "USDC",
			TokenAddress:     strPtr("0xA0B86991C6218B36C1D19D4A2E9EB0CE3606EB48"),
			BalanceFormatted: "100",
			Decimals:         decPtr(6),
		},
	}

	out := Classify(records, testChainConfig())
	if len(out.Preset) != 1 {
		t.Fatalf("expected 1 preset record, got %d", len(out.Preset))
	}
	if len(out.Hidden) != 0 {
		t.Errorf("expected no hidden records, got %d", len(out.Hidden))
	}
}

func TestClassifyZeroBalanceDroppedUnlessPreset(t *testing.T) {
	records := []entity.RawBalanceRecord{
		{Symbol: "USDC", TokenAddress: strPtr(usdcAddress), BalanceFormatted: "0", Decimals: decPtr(6)},
		{Symbol: "JUNK", TokenAddress: strPtr("0x1111111111111111111111111111111111111111"), BalanceFormatted: "0"},
	}

	out := Classify(records, testChainConfig())
	if len(out.Preset) != 1 {
		t.Errorf("expected zero-balance preset token to be kept, got %d preset records", len(out.Preset))
	}
	if len(out.Hidden) != 0 {
		t.Errorf("expected zero-balance non-preset token to be dropped, got %d hidden records", len(out.Hidden))
	}
}

func TestClassifySpamDroppedUnlessTrusted(t *testing.T) {
	records := []entity.RawBalanceRecord{
		// Spam with a positive balance, not preset: dropped entirely.
		{Symbol: "SCAM", TokenAddress: strPtr("0x2222222222222222222222222222222222222222"), BalanceFormatted: "1000", PossibleSpam: true},
		// Spam but preset: the registry's trust wins.
		{Symbol: "USDC", TokenAddress: strPtr(usdcAddress), BalanceFormatted: "5", Decimals: decPtr(6), PossibleSpam: true},
		// Spam but native: never dropped.
		{Symbol: "ETH", NativeToken: true, BalanceFormatted: "1", PossibleSpam: true},
	}

	out := Classify(records, testChainConfig())
	if out.Native == nil {
		t.Error("expected spam-flagged native record to survive")
	}
	if len(out.Preset) != 1 {
		t.Errorf("expected spam-flagged preset record to survive, got %d preset records", len(out.Preset))
	}
	if len(out.Hidden) != 0 {
		t.Errorf("expected spam record to be excluded from hidden set, got %d", len(out.Hidden))
	}
}

func TestClassifyHiddenTokens(t *testing.T) {
	records := []entity.RawBalanceRecord{
		{Symbol: "OBSCURE", TokenAddress: strPtr("0x3333333333333333333333333333333333333333"), Balance: "1000000000000000000"},
	}

	out := Classify(records, testChainConfig())
	if len(out.Hidden) != 1 {
		t.Fatalf("expected 1 hidden record, got %d", len(out.Hidden))
	}
	if out.Native != nil || len(out.Preset) != 0 {
		t.Error("hidden record leaked into native or preset sets")
	}
}

func TestClassifyFirstNativeWins(t *testing.T) {
	records := []entity.RawBalanceRecord{
		{Symbol: "ETH", NativeToken: true, BalanceFormatted: "1"},
		{Symbol: "ETH2", NativeToken: true, BalanceFormatted: "2"},
	}

	out := Classify(records, testChainConfig())
	if out.Native == nil || out.Native.Symbol != "ETH" {
		t.Error("expected the first native record to win")
	}
}
