package service

import (
	"context"
	"errors"
	"testing"

	"portfolio_tracker/internal/config"
	"portfolio_tracker/internal/entity"
	"portfolio_tracker/internal/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePriceClient struct {
	prices      entity.SimplePriceResponse
	pricesErr   error
	searchID    string
	searchErr   error
	simpleCalls int
	searchCalls int
}

func (f *fakePriceClient) GetSimplePrices(_ context.Context, _ []string) (entity.SimplePriceResponse, error) {
	f.simpleCalls++
	if f.pricesErr != nil {
		return nil, f.pricesErr
	}
	return f.prices, nil
}

func (f *fakePriceClient) SearchCoinID(_ context.Context, _ string) (string, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return "", f.searchErr
	}
	return f.searchID, nil
}

func newTestPriceService(t *testing.T, client port.PriceClient) port.PriceService {
	t.Helper()
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	return NewPriceService(zap.NewNop(), cfg, client)
}

func TestResolvePriceProviderQuote(t *testing.T) {
	svc := newTestPriceService(t, &fakePriceClient{searchErr: errors.New("should not be called")})

	price := svc.ResolvePrice(context.Background(), "ETH", 2500, 0, 0)
	assert.Equal(t, 2500.0, price)
}

func TestResolvePriceRejectsImplausibleQuote(t *testing.T) {
	svc := newTestPriceService(t, &fakePriceClient{pricesErr: errors.New("down"), searchErr: errors.New("down")})

	// An absurd provider price falls through to the static fallback table.
	price := svc.ResolvePrice(context.Background(), "ETH", 2_000_000, 0, 0)
	assert.Equal(t, 3000.0, price, "expected the built-in fallback price for ETH")

	// So does a negative one.
	svc2 := newTestPriceService(t, &fakePriceClient{pricesErr: errors.New("down"), searchErr: errors.New("down")})
	price = svc2.ResolvePrice(context.Background(), "USDC", -5, 0, 0)
	assert.Equal(t, 1.0, price)
}

func TestResolvePriceDerivedFromValue(t *testing.T) {
	svc := newTestPriceService(t, &fakePriceClient{pricesErr: errors.New("down"), searchErr: errors.New("down")})

	price := svc.ResolvePrice(context.Background(), "FOO", 0, 50, 100)
	assert.Equal(t, 0.5, price)
}

func TestResolvePriceCachedResolution(t *testing.T) {
	client := &fakePriceClient{pricesErr: errors.New("down"), searchErr: errors.New("down")}
	svc := newTestPriceService(t, client)

	// First call resolves via the derived tier and caches the result.
	first := svc.ResolvePrice(context.Background(), "FOO", 0, 50, 100)
	require.Equal(t, 0.5, first)

	// A later call with no usable provider data hits the cache.
	second := svc.ResolvePrice(context.Background(), "FOO", 0, 0, 0)
	assert.Equal(t, first, second, "expected deterministic resolution within one cache state")
}

func TestResolvePriceStaticFallback(t *testing.T) {
	// Provider price and value both zero, but the fallback table knows the
	// symbol.
	svc := newTestPriceService(t, &fakePriceClient{pricesErr: errors.New("down"), searchErr: errors.New("down")})

	price := svc.ResolvePrice(context.Background(), "DAI", 0, 0, 42)
	assert.Equal(t, 1.0, price)
}

func TestResolvePriceOnDemandLookup(t *testing.T) {
	client := &fakePriceClient{
		searchID: "rare-coin",
		prices:   entity.SimplePriceResponse{"rare-coin": {USD: 0.07}},
	}
	svc := newTestPriceService(t, client)

	price := svc.ResolvePrice(context.Background(), "RARE", 0, 0, 0)
	require.Equal(t, 0.07, price)
	require.Equal(t, 1, client.searchCalls)
	require.Equal(t, 1, client.simpleCalls)

	// The on-demand result is cached: no second round trip.
	price = svc.ResolvePrice(context.Background(), "RARE", 0, 0, 0)
	assert.Equal(t, 0.07, price)
	assert.Equal(t, 1, client.searchCalls)
	assert.Equal(t, 1, client.simpleCalls)
}

func TestResolvePriceAllTiersFail(t *testing.T) {
	svc := newTestPriceService(t, &fakePriceClient{pricesErr: errors.New("down"), searchErr: errors.New("down")})

	price := svc.ResolvePrice(context.Background(), "UNKNOWN", 0, 0, 0)
	assert.Equal(t, 0.0, price, "unresolved price must be 0, never an error")
}

func TestRefreshFallbackTableSwap(t *testing.T) {
	client := &fakePriceClient{
		prices: entity.SimplePriceResponse{
			"ethereum": {USD: 3500},
		},
	}
	svc := newTestPriceService(t, client)

	require.NoError(t, svc.RefreshFallbackTable(context.Background()))

	price := svc.ResolvePrice(context.Background(), "ETH", 0, 0, 0)
	assert.Equal(t, 3500.0, price, "expected refreshed fallback price")

	// Entries the refresh did not cover are carried forward.
	price = svc.ResolvePrice(context.Background(), "BTC", 0, 0, 0)
	assert.Equal(t, 60000.0, price)
}

func TestRefreshFallbackTableFailureKeepsTable(t *testing.T) {
	client := &fakePriceClient{pricesErr: errors.New("api down"), searchErr: errors.New("api down")}
	svc := newTestPriceService(t, client)

	require.Error(t, svc.RefreshFallbackTable(context.Background()))

	price := svc.ResolvePrice(context.Background(), "ETH", 0, 0, 0)
	assert.Equal(t, 3000.0, price, "expected the previous table to survive a failed refresh")
}
