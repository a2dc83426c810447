package registry

import (
	"sort"
	"strings"

	"portfolio_tracker/internal/entity"

	"go.uber.org/zap"
)

// ChainRegistry is the static chainID -> ChainConfig mapping. Built once at
// startup and never mutated afterwards.
type ChainRegistry struct {
	chains map[int64]entity.ChainConfig
	logger *zap.Logger
}

// NewChainRegistry builds a registry from the built-in chain set merged with
// the configured chains. A configured chain with a known chainID replaces the
// built-in entry wholesale. All preset token addresses are lower-cased on
// load so downstream lookups never need case handling.
func NewChainRegistry(configured []entity.ChainConfig, logger *zap.Logger) *ChainRegistry {
	chains := make(map[int64]entity.ChainConfig)
	for _, cc := range defaultChains() {
		chains[cc.ChainID] = normalize(cc)
	}
	for _, cc := range configured {
		chains[cc.ChainID] = normalize(cc)
	}

	r := &ChainRegistry{
		chains: chains,
		logger: logger.Named("ChainRegistry"),
	}
	r.logger.Info("Chain registry built", zap.Int("chainCount", len(chains)))
	return r
}

// Lookup returns the configuration for the given chain, or a ConfigError if
// the chain is not registered.
func (r *ChainRegistry) Lookup(chainID int64) (entity.ChainConfig, error) {
	cc, ok := r.chains[chainID]
	if !ok {
		return entity.ChainConfig{}, &entity.ConfigError{ChainID: chainID}
	}
	return cc, nil
}

// ListChains returns every registered chain, ordered by chainID for
// deterministic output.
func (r *ChainRegistry) ListChains() []entity.ChainConfig {
	out := make([]entity.ChainConfig, 0, len(r.chains))
	for _, cc := range r.chains {
		out = append(out, cc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out
}

// PresetTokens returns the curated token list for the given chain.
func (r *ChainRegistry) PresetTokens(chainID int64) ([]entity.TokenDescriptor, error) {
	cc, err := r.Lookup(chainID)
	if err != nil {
		return nil, err
	}
	return cc.PresetTokens, nil
}

func normalize(cc entity.ChainConfig) entity.ChainConfig {
	tokens := make([]entity.TokenDescriptor, len(cc.PresetTokens))
	for i, t := range cc.PresetTokens {
		t.Address = strings.ToLower(t.Address)
		if t.Decimals == 0 {
			t.Decimals = 18
		}
		tokens[i] = t
	}
	cc.PresetTokens = tokens
	if cc.NativeDecimals == 0 {
		cc.NativeDecimals = 18
	}
	return cc
}

// defaultChains is the built-in chain set used when the config file does not
// override a chain.
func defaultChains() []entity.ChainConfig {
	return []entity.ChainConfig{
		{
			ChainID:        1,
			Name:           "Ethereum",
			NativeSymbol:   "ETH",
			NativeName:     "Ether",
			NativeDecimals: 18,
			PresetTokens: []entity.TokenDescriptor{
				{Address: "0xdac17f958d2ee523a2206206994597c13d831ec7", Symbol: "USDT", Name: "Tether USD", Decimals: 6},
				{Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", Symbol: "USDC", Name: "USD Coin", Decimals: 6},
				{Address: "0x6b175474e89094c44da98b954eedeac495271d0f", Symbol: "DAI", Name: "Dai Stablecoin", Decimals: 18},
				{Address: "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599", Symbol: "WBTC", Name: "Wrapped BTC", Decimals: 8},
				{Address: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18},
			},
		},
		{
			ChainID:        56,
			Name:           "BNB Smart Chain",
			NativeSymbol:   "BNB",
			NativeName:     "BNB",
			NativeDecimals: 18,
			PresetTokens: []entity.TokenDescriptor{
				{Address: "0x55d398326f99059ff775485246999027b3197955", Symbol: "USDT", Name: "Tether USD", Decimals: 18},
				{Address: "0x8ac76a51cc950d9822d68b83fe1ad97b32cd580d", Symbol: "USDC", Name: "USD Coin", Decimals: 18},
				{Address: "0x2170ed0880ac9a755fd29b2688956bd959f933f8", Symbol: "ETH", Name: "Ethereum Token", Decimals: 18},
			},
		},
		{
			ChainID:        137,
			Name:           "Polygon",
			NativeSymbol:   "POL",
			NativeName:     "Polygon Ecosystem Token",
			NativeDecimals: 18,
			PresetTokens: []entity.TokenDescriptor{
				{Address: "0xc2132d05d31c914a87c6611c10748aeb04b58e8f", Symbol: "USDT", Name: "Tether USD", Decimals: 6},
				{Address: "0x3c499c542cef5e3811e1192ce70d8cc03d5c3359", Symbol: "USDC", Name: "USD Coin", Decimals: 6},
				{Address: "0x7ceb23fd6bc0add59e62ac25578270cff1b9f619", Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18},
			},
		},
		{
			ChainID:        42161,
			Name:           "Arbitrum One",
			NativeSymbol:   "ETH",
			NativeName:     "Ether",
			NativeDecimals: 18,
			PresetTokens: []entity.TokenDescriptor{
				{Address: "0xfd086bc7cd5c481dcc9c85ebe478a1c0b69fcbb9", Symbol: "USDT", Name: "Tether USD", Decimals: 6},
				{Address: "0xaf88d065e77c8cc2239327c5edb3a432268e5831", Symbol: "USDC", Name: "USD Coin", Decimals: 6},
				{Address: "0x82af49447d8a07e3bd95bd0d56f35241523fbab1", Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18},
			},
		},
	}
}
