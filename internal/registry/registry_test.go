package registry

import (
	"testing"

	"portfolio_tracker/internal/entity"

	"go.uber.org/zap"
)

func TestLookupKnownChain(t *testing.T) {
	r := NewChainRegistry(nil, zap.NewNop())

	cc, err := r.Lookup(1)
	if err != nil {
		t.Fatalf("Lookup(1) failed: %v", err)
	}
	if cc.NativeSymbol != "ETH" {
		t.Errorf("expected native symbol ETH, got %s", cc.NativeSymbol)
	}
	if len(cc.PresetTokens) == 0 {
		t.Error("expected preset tokens for Ethereum")
	}
}

func TestLookupUnknownChainReturnsConfigError(t *testing.T) {
	r := NewChainRegistry(nil, zap.NewNop())

	_, err := r.Lookup(999999)
	if err == nil {
		t.Fatal("expected error for unknown chain")
	}
	if !entity.IsConfigError(err) {
		t.Errorf("expected ConfigError, got %T: %v", err, err)
	}
}

func TestConfiguredChainReplacesBuiltIn(t *testing.T) {
	configured := []entity.ChainConfig{
		{
			ChainID:      1,
			Name:         "Ethereum Custom",
			NativeSymbol: "ETH",
			PresetTokens: []entity.TokenDescriptor{
				{Address: "0xDAC17F958D2EE523A2206206994597C13D831EC7", Symbol: "USDT", Decimals: 6},
			},
		},
	}
	r := NewChainRegistry(configured, zap.NewNop())

	cc, err := r.Lookup(1)
	if err != nil {
		t.Fatalf("Lookup(1) failed: %v", err)
	}
	if cc.Name != "Ethereum Custom" {
		t.Errorf("expected configured chain to replace built-in, got name %s", cc.Name)
	}
	if len(cc.PresetTokens) != 1 {
		t.Fatalf("expected 1 preset token, got %d", len(cc.PresetTokens))
	}
	if cc.PresetTokens[0].Address != "0xdac17f958d2ee523a2206206994597c13d831ec7" {
		t.Errorf("expected lower-cased preset address, got %s", cc.PresetTokens[0].Address)
	}
	if cc.NativeDecimals != 18 {
		t.Errorf("expected native decimals to default to 18, got %d", cc.NativeDecimals)
	}
}

func TestListChainsOrdered(t *testing.T) {
	r := NewChainRegistry(nil, zap.NewNop())

	chains := r.ListChains()
	if len(chains) < 2 {
		t.Fatalf("expected several built-in chains, got %d", len(chains))
	}
	for i := 1; i < len(chains); i++ {
		if chains[i-1].ChainID >= chains[i].ChainID {
			t.Errorf("chains not ordered by chainID: %d before %d", chains[i-1].ChainID, chains[i].ChainID)
		}
	}
}

func TestPresetTokensUnknownChain(t *testing.T) {
	r := NewChainRegistry(nil, zap.NewNop())

	if _, err := r.PresetTokens(424242); !entity.IsConfigError(err) {
		t.Errorf("expected ConfigError for unknown chain, got %v", err)
	}
}
