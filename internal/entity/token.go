package entity

// NativeSentinelAddress is the pseudo-address upstream providers use for the
// chain's base currency. Comparison must be case-insensitive.
const NativeSentinelAddress = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"

// NativeContractAddress is the canonical address stored on a ProcessedToken
// that represents the chain's native currency.
const NativeContractAddress = "native"

// TokenDescriptor identifies a curated ("preset") token for a chain.
// Address is stored lower-cased.
type TokenDescriptor struct {
	Address  string `json:"address" yaml:"address"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Name     string `json:"name" yaml:"name"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

// ChainConfig holds the static metadata for one supported chain: native
// currency info plus the ordered preset token list. Immutable after load.
type ChainConfig struct {
	ChainID        int64             `json:"chainId" yaml:"chainId"`
	Name           string            `json:"name" yaml:"name"`
	NativeSymbol   string            `json:"nativeSymbol" yaml:"nativeSymbol"`
	NativeName     string            `json:"nativeName" yaml:"nativeName"`
	NativeDecimals uint8             `json:"nativeDecimals" yaml:"nativeDecimals"`
	RPCEndpoint    string            `json:"-" yaml:"rpcEndpoint"`
	PresetTokens   []TokenDescriptor `json:"presetTokens" yaml:"presetTokens"`
}

// ProcessedToken is one classified, priced holding inside a snapshot.
// ValueUSD is always BalanceDecimal * PriceUSD.
type ProcessedToken struct {
	ID               string  `json:"id"` // contractAddress-chainID
	ContractAddress  string  `json:"contractAddress"`
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Decimals         uint8   `json:"decimals"`
	BalanceDecimal   float64 `json:"balance"`
	RawBalance       string  `json:"rawBalance,omitempty"`
	PriceUSD         float64 `json:"priceUSD"`
	ValueUSD         float64 `json:"valueUSD"`
	Change24hPercent float64 `json:"change24hPercent"`
	Change24hUSD     float64 `json:"change24hUSD"`
	IsNative         bool    `json:"isNative"`
	IsPreset         bool    `json:"isPreset"`
	PossibleSpam     bool    `json:"possibleSpam"`
	VerifiedContract bool    `json:"verifiedContract"`
	LogoURL          string  `json:"logoURL,omitempty"`
}

// PortfolioSnapshot is the aggregated, priced and ordered view of one
// wallet's holdings on one chain. Tokens are sorted by ValueUSD descending,
// ties broken by BalanceDecimal descending.
type PortfolioSnapshot struct {
	WalletAddress  string           `json:"walletAddress"`
	ChainID        int64            `json:"chainId"`
	ChainName      string           `json:"chainName"`
	Tokens         []ProcessedToken `json:"tokens"`
	TotalValueUSD  float64          `json:"totalValueUSD"`
	TotalChange24h float64          `json:"totalChange24hUSD"`
}

// NativeBalance is the priced native-currency balance of a wallet.
type NativeBalance struct {
	Symbol   string  `json:"symbol"`
	Balance  float64 `json:"balance"`
	PriceUSD float64 `json:"priceUSD"`
	ValueUSD float64 `json:"valueUSD"`
}

// MultiChainPortfolio aggregates snapshots for one wallet across several
// chains with a grand total.
type MultiChainPortfolio struct {
	WalletAddress      string              `json:"walletAddress"`
	Portfolios         []PortfolioSnapshot `json:"portfolios"`
	GrandTotalValueUSD float64             `json:"grandTotalValueUSD"`
}

// CacheStats reports snapshot cache usage counters.
type CacheStats struct {
	Entries    int     `json:"entries"`
	Hits       uint64  `json:"hits"`
	Misses     uint64  `json:"misses"`
	TTLSeconds float64 `json:"ttlSeconds"`
}
