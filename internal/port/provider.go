package port

import (
	"context"
	"math/big"

	"portfolio_tracker/internal/entity"
)

// BalanceProvider is the upstream indexing provider the engine pulls
// balance+price records from. Implementations must normalize the provider's
// response shapes into RawBalanceRecord slices and must not mutate shared
// state beyond the network call itself.
type BalanceProvider interface {
	// FetchRawBalances returns every balance record the provider knows for
	// the wallet on the given chain. An unrecognized response shape yields
	// an empty slice, not an error.
	FetchRawBalances(ctx context.Context, walletAddress string, chainID int64) ([]entity.RawBalanceRecord, error)

	// FetchNativeBalance returns the wallet's native balance as an integer
	// string in the chain's smallest unit. Used when the price-enriched
	// endpoint returned nothing for the native token.
	FetchNativeBalance(ctx context.Context, walletAddress string, chainID int64) (string, error)
}

// NativeBalanceClient queries a chain node directly for the native balance.
// This is the last-resort path when the indexing provider is unavailable.
type NativeBalanceClient interface {
	GetNativeBalance(ctx context.Context, walletAddress string) (*big.Int, error)
}

// NativeClientProvider hands out node clients per chain. Returns an error
// for chains without a configured RPC endpoint.
type NativeClientProvider interface {
	GetClient(chainID int64) (NativeBalanceClient, error)
}
