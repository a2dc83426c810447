package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"portfolio_tracker/internal/config"
	"portfolio_tracker/internal/port"
	"portfolio_tracker/pkg/metrics"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// maxUsablePrice caps what the resolver accepts as a plausible USD price.
// Anything at or above it (or at or below zero) is treated as garbage data.
const maxUsablePrice = 1_000_000

// onDemandCacheTTL bounds how long an on-demand search-then-price result is
// reused. Deliberately shorter than the main cache TTL: these are arbitrary
// symbols with no curation behind them.
const onDemandCacheTTL = 2 * time.Minute

// wellKnownCoinIDs maps curated symbols to their market-data API identifiers
// for the periodic fallback-table refresh.
var wellKnownCoinIDs = map[string]string{
	"ETH":   "ethereum",
	"WETH":  "weth",
	"BTC":   "bitcoin",
	"WBTC":  "wrapped-bitcoin",
	"BNB":   "binancecoin",
	"MATIC": "matic-network",
	"POL":   "polygon-ecosystem-token",
	"AVAX":  "avalanche-2",
	"USDT":  "tether",
	"USDC":  "usd-coin",
	"DAI":   "dai",
}

// priceServiceImpl implements the port.PriceService interface.
type priceServiceImpl struct {
	logger        *zap.Logger
	cfg           *config.Config
	priceClient   port.PriceClient
	pricesCache   *cache.Cache // upper-cased symbol -> float64 price
	lookupTimeout time.Duration

	fallbackMu    sync.RWMutex
	fallbackTable map[string]float64 // swapped wholesale by the refresher

	refreshCancel context.CancelFunc
	refreshDone   chan struct{}
}

// NewPriceService creates a new instance of PriceService. The initial
// fallback table comes from configuration and stays in effect until the
// first successful refresh.
func NewPriceService(logger *zap.Logger, cfg *config.Config, priceClient port.PriceClient) port.PriceService {
	table := make(map[string]float64, len(cfg.PriceService.FallbackPrices))
	for sym, price := range cfg.PriceService.FallbackPrices {
		table[strings.ToUpper(sym)] = price
	}

	return &priceServiceImpl{
		logger:        logger.Named("PriceService"),
		cfg:           cfg,
		priceClient:   priceClient,
		pricesCache:   cache.New(time.Duration(cfg.PriceService.CacheTTLMinutes)*time.Minute, 10*time.Minute),
		lookupTimeout: time.Duration(cfg.PriceService.LookupTimeoutMillis) * time.Millisecond,
		fallbackTable: table,
	}
}

// ResolvePrice implements the port.PriceService interface. Tiers, each tried
// only when the prior yielded nothing usable:
//
//  1. the provider-quoted price
//  2. providerValue / balance
//  3. a cached, unexpired externally-fetched price for the symbol
//  4. the periodically refreshed fallback table
//  5. an on-demand search-then-price lookup
//
// Every successful resolution is written back to the symbol cache. When all
// tiers fail the result is 0, which callers must read as "unresolved".
func (s *priceServiceImpl) ResolvePrice(ctx context.Context, symbol string, providerPrice, providerValue, balance float64) float64 {
	key := strings.ToUpper(strings.TrimSpace(symbol))

	if usablePrice(providerPrice) {
		s.pricesCache.Set(key, providerPrice, cache.DefaultExpiration)
		return providerPrice
	}

	if providerValue > 0 && balance > 0 {
		derived := providerValue / balance
		if usablePrice(derived) {
			s.pricesCache.Set(key, derived, cache.DefaultExpiration)
			return derived
		}
	}

	if cached, found := s.pricesCache.Get(key); found {
		if price, ok := cached.(float64); ok && usablePrice(price) {
			return price
		}
	}

	s.fallbackMu.RLock()
	fallback, hasFallback := s.fallbackTable[key]
	s.fallbackMu.RUnlock()
	if hasFallback && usablePrice(fallback) {
		s.pricesCache.Set(key, fallback, cache.DefaultExpiration)
		return fallback
	}

	if price, ok := s.lookupOnDemand(ctx, key); ok {
		return price
	}

	s.logger.Debug("Price unresolved after all tiers", zap.String("symbol", key))
	metrics.PriceResolutionFailures.Inc()
	return 0
}

// lookupOnDemand chains the market-data search endpoint into a simple-price
// call for one symbol. Failures are absorbed: the lookup has its own timeout
// and a miss simply resolves to nothing.
func (s *priceServiceImpl) lookupOnDemand(ctx context.Context, symbol string) (float64, bool) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	coinID, err := s.priceClient.SearchCoinID(lookupCtx, symbol)
	if err != nil {
		s.logger.Warn("On-demand symbol search failed", zap.String("symbol", symbol), zap.Error(err))
		return 0, false
	}
	if coinID == "" {
		return 0, false
	}

	quotes, err := s.priceClient.GetSimplePrices(lookupCtx, []string{coinID})
	if err != nil {
		s.logger.Warn("On-demand price lookup failed",
			zap.String("symbol", symbol),
			zap.String("coinID", coinID),
			zap.Error(err))
		return 0, false
	}

	quote, found := quotes[coinID]
	if !found || !usablePrice(quote.USD) {
		return 0, false
	}

	s.pricesCache.Set(symbol, quote.USD, onDemandCacheTTL)
	s.logger.Debug("Resolved price via on-demand lookup",
		zap.String("symbol", symbol),
		zap.String("coinID", coinID),
		zap.Float64("price", quote.USD))
	return quote.USD, true
}

// RefreshFallbackTable implements the port.PriceService interface. On success
// the table is replaced wholesale, so concurrent readers observe either the
// old or the new table, never a mix.
func (s *priceServiceImpl) RefreshFallbackTable(ctx context.Context) error {
	refreshCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	ids := make([]string, 0, len(wellKnownCoinIDs))
	idToSymbol := make(map[string]string, len(wellKnownCoinIDs))
	for sym, id := range wellKnownCoinIDs {
		ids = append(ids, id)
		idToSymbol[id] = sym
	}

	quotes, err := s.priceClient.GetSimplePrices(refreshCtx, ids)
	if err != nil {
		s.logger.Warn("Fallback table refresh failed, keeping previous table", zap.Error(err))
		return err
	}
	if len(quotes) == 0 {
		s.logger.Warn("Fallback table refresh returned no quotes, keeping previous table")
		return nil
	}

	newTable := make(map[string]float64, len(quotes))
	for id, quote := range quotes {
		sym, known := idToSymbol[id]
		if !known || !usablePrice(quote.USD) {
			continue
		}
		newTable[sym] = quote.USD
	}

	// Carry forward entries the refresh did not cover so a partial response
	// never shrinks the table.
	s.fallbackMu.Lock()
	for sym, price := range s.fallbackTable {
		if _, ok := newTable[sym]; !ok {
			newTable[sym] = price
		}
	}
	s.fallbackTable = newTable
	s.fallbackMu.Unlock()

	s.logger.Info("Fallback price table refreshed", zap.Int("entryCount", len(newTable)))
	return nil
}

// Start implements the port.PriceService interface. The refresher runs on its
// own fixed interval, fully decoupled from request handling.
func (s *priceServiceImpl) Start(ctx context.Context) {
	refreshCtx, cancel := context.WithCancel(ctx)
	s.refreshCancel = cancel
	s.refreshDone = make(chan struct{})

	interval := time.Duration(s.cfg.PriceService.RefreshIntervalSeconds) * time.Second

	go func() {
		defer close(s.refreshDone)

		if err := s.RefreshFallbackTable(refreshCtx); err != nil {
			s.logger.Warn("Initial fallback table refresh failed", zap.Error(err))
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-ticker.C:
				if err := s.RefreshFallbackTable(refreshCtx); err != nil {
					s.logger.Warn("Periodic fallback table refresh failed", zap.Error(err))
				}
			}
		}
	}()

	s.logger.Info("Background price refresher started", zap.Duration("interval", interval))
}

// Stop implements the port.PriceService interface.
func (s *priceServiceImpl) Stop() {
	if s.refreshCancel == nil {
		return
	}
	s.refreshCancel()
	<-s.refreshDone
	s.logger.Info("Background price refresher stopped")
}

func usablePrice(p float64) bool {
	return p > 0 && p < maxUsablePrice
}
