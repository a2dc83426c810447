package port

import (
	"context"

	"portfolio_tracker/internal/entity"
)

// PriceClient talks to the external market-data API.
type PriceClient interface {
	// GetSimplePrices returns USD quotes with 24h change for a list of known
	// coin identifiers.
	GetSimplePrices(ctx context.Context, ids []string) (entity.SimplePriceResponse, error)

	// SearchCoinID resolves an arbitrary symbol to the best-effort coin
	// identifier. Returns an empty string when nothing matches.
	SearchCoinID(ctx context.Context, symbol string) (string, error)
}

// PriceService resolves a trustworthy USD price per token through a tiered
// fallback chain and owns the symbol-price cache.
type PriceService interface {
	// ResolvePrice returns a usable USD price for the symbol, or 0 when every
	// tier failed. A 0 result means "unresolved", never "worthless".
	ResolvePrice(ctx context.Context, symbol string, providerPrice, providerValue, balance float64) float64

	// RefreshFallbackTable re-fetches the well-known symbol price table from
	// the market-data API, replacing it wholesale on success.
	RefreshFallbackTable(ctx context.Context) error

	// Start launches the periodic background refresh; Stop tears it down.
	Start(ctx context.Context)
	Stop()
}
