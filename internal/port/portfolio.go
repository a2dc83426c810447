package port

import (
	"context"

	"portfolio_tracker/internal/entity"
)

// PortfolioService is the engine's public surface, consumed by the HTTP
// layer. All provider failures are absorbed into empty-but-valid snapshots;
// only validation and configuration errors surface to the caller.
type PortfolioService interface {
	GetWalletPortfolio(ctx context.Context, walletAddress string, chainID int64, includeHidden bool) (*entity.PortfolioSnapshot, error)
	GetMultiChainPortfolio(ctx context.Context, walletAddress string, includeHidden bool) (*entity.MultiChainPortfolio, error)
	GetNativeBalance(ctx context.Context, walletAddress string, chainID int64) (*entity.NativeBalance, error)
	InvalidateWallet(walletAddress string) int
	CacheStats() entity.CacheStats
	ListSupportedChains() []entity.ChainConfig
	ListPresetTokens(chainID int64) ([]entity.TokenDescriptor, error)
}
