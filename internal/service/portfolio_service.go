package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"portfolio_tracker/internal/config"
	"portfolio_tracker/internal/entity"
	"portfolio_tracker/internal/pkg/utils"
	"portfolio_tracker/internal/port"
	"portfolio_tracker/internal/registry"
	"portfolio_tracker/internal/repository"
	"portfolio_tracker/pkg/metrics"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentChainFetches = 4

// portfolioServiceImpl implements the port.PortfolioService interface.
type portfolioServiceImpl struct {
	cache         *repository.SnapshotCache
	provider      port.BalanceProvider
	nativeClients port.NativeClientProvider
	priceSvc      port.PriceService
	registry      *registry.ChainRegistry
	cfg           *config.Config
	logger        *zap.Logger
}

// NewPortfolioService creates a new instance of PortfolioService.
// nativeClients may be nil when no chain has an RPC endpoint configured; the
// node fallback for native balances is then skipped.
func NewPortfolioService(
	cache *repository.SnapshotCache,
	provider port.BalanceProvider,
	nativeClients port.NativeClientProvider,
	priceSvc port.PriceService,
	reg *registry.ChainRegistry,
	cfg *config.Config,
	logger *zap.Logger,
) port.PortfolioService {
	return &portfolioServiceImpl{
		cache:         cache,
		provider:      provider,
		nativeClients: nativeClients,
		priceSvc:      priceSvc,
		registry:      reg,
		cfg:           cfg,
		logger:        logger.Named("PortfolioService"),
	}
}

// GetWalletPortfolio implements the port.PortfolioService interface. Provider
// failures degrade to an empty-but-valid snapshot; only validation and
// configuration errors surface to the caller.
func (s *portfolioServiceImpl) GetWalletPortfolio(ctx context.Context, walletAddress string, chainID int64, includeHidden bool) (*entity.PortfolioSnapshot, error) {
	if !common.IsHexAddress(walletAddress) {
		return nil, entity.NewValidationError("walletAddress", fmt.Sprintf("%q is not a hex address", walletAddress))
	}

	chainCfg, err := s.registry.Lookup(chainID)
	if err != nil {
		return nil, err
	}

	if cached, found := s.cache.Get(walletAddress, chainID); found {
		s.logger.Debug("Snapshot cache hit",
			zap.String("walletAddress", walletAddress),
			zap.Int64("chainID", chainID))
		return viewSnapshot(cached, includeHidden), nil
	}

	records, err := s.provider.FetchRawBalances(ctx, walletAddress, chainID)
	if err != nil {
		s.recordProviderFailure(err, walletAddress, chainID)
		// Degraded snapshots are not cached so the next request retries the
		// provider as soon as it recovers.
		return emptySnapshot(walletAddress, chainCfg), nil
	}

	classified := Classify(records, chainCfg)
	snapshot := s.aggregate(ctx, walletAddress, classified, chainCfg)
	s.cache.Put(walletAddress, chainID, snapshot)

	s.logger.Info("Portfolio aggregated",
		zap.String("walletAddress", walletAddress),
		zap.Int64("chainID", chainID),
		zap.Int("tokenCount", len(snapshot.Tokens)),
		zap.Float64("totalValueUSD", snapshot.TotalValueUSD))
	return viewSnapshot(snapshot, includeHidden), nil
}

// GetMultiChainPortfolio fans out across every registered chain and sums the
// per-chain totals.
func (s *portfolioServiceImpl) GetMultiChainPortfolio(ctx context.Context, walletAddress string, includeHidden bool) (*entity.MultiChainPortfolio, error) {
	if !common.IsHexAddress(walletAddress) {
		return nil, entity.NewValidationError("walletAddress", fmt.Sprintf("%q is not a hex address", walletAddress))
	}

	chains := s.registry.ListChains()
	result := &entity.MultiChainPortfolio{
		WalletAddress: walletAddress,
		Portfolios:    make([]entity.PortfolioSnapshot, 0, len(chains)),
	}

	var mu sync.Mutex
	eg, childCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentChainFetches)

	for _, chainCfg := range chains {
		cc := chainCfg
		eg.Go(func() error {
			snapshot, err := s.GetWalletPortfolio(childCtx, walletAddress, cc.ChainID, includeHidden)
			if err != nil {
				s.logger.Error("Failed to fetch portfolio for chain",
					zap.String("walletAddress", walletAddress),
					zap.Int64("chainID", cc.ChainID),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			result.Portfolios = append(result.Portfolios, *snapshot)
			result.GrandTotalValueUSD += snapshot.TotalValueUSD
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		s.logger.Error("Error processing multi-chain portfolio", zap.Error(err))
	}

	sort.Slice(result.Portfolios, func(i, j int) bool {
		return result.Portfolios[i].ChainID < result.Portfolios[j].ChainID
	})
	return result, nil
}

// GetNativeBalance implements the port.PortfolioService interface. The
// provider is tried first; if it fails and the chain has a node endpoint,
// the balance is read from the chain directly.
func (s *portfolioServiceImpl) GetNativeBalance(ctx context.Context, walletAddress string, chainID int64) (*entity.NativeBalance, error) {
	if !common.IsHexAddress(walletAddress) {
		return nil, entity.NewValidationError("walletAddress", fmt.Sprintf("%q is not a hex address", walletAddress))
	}

	chainCfg, err := s.registry.Lookup(chainID)
	if err != nil {
		return nil, err
	}

	rawBalance, err := s.provider.FetchNativeBalance(ctx, walletAddress, chainID)
	if err != nil {
		s.recordProviderFailure(err, walletAddress, chainID)
		rawBalance = s.nativeBalanceFromNode(ctx, walletAddress, chainID)
	}

	balance := utils.ParseRawBalance(rawBalance, chainCfg.NativeDecimals)
	price := s.priceSvc.ResolvePrice(ctx, chainCfg.NativeSymbol, 0, 0, balance)

	return &entity.NativeBalance{
		Symbol:   chainCfg.NativeSymbol,
		Balance:  balance,
		PriceUSD: price,
		ValueUSD: balance * price,
	}, nil
}

// InvalidateWallet implements the port.PortfolioService interface.
func (s *portfolioServiceImpl) InvalidateWallet(walletAddress string) int {
	removed := s.cache.Invalidate(walletAddress)
	s.logger.Info("Wallet cache invalidated",
		zap.String("walletAddress", walletAddress),
		zap.Int("entriesRemoved", removed))
	return removed
}

// CacheStats implements the port.PortfolioService interface.
func (s *portfolioServiceImpl) CacheStats() entity.CacheStats {
	return s.cache.Stats()
}

// ListSupportedChains implements the port.PortfolioService interface.
func (s *portfolioServiceImpl) ListSupportedChains() []entity.ChainConfig {
	return s.registry.ListChains()
}

// ListPresetTokens implements the port.PortfolioService interface.
func (s *portfolioServiceImpl) ListPresetTokens(chainID int64) ([]entity.TokenDescriptor, error) {
	return s.registry.PresetTokens(chainID)
}

// aggregate turns classified records into a finalized snapshot: one
// ProcessedToken per record via price resolution, native first, preset
// descriptors missing from the provider response added at zero balance, the
// whole list ordered by value then balance descending.
func (s *portfolioServiceImpl) aggregate(ctx context.Context, walletAddress string, classified entity.ClassifiedRecords, chainCfg entity.ChainConfig) *entity.PortfolioSnapshot {
	tokens := make([]entity.ProcessedToken, 0, 1+len(classified.Preset)+len(classified.Hidden))

	tokens = append(tokens, s.buildNativeToken(ctx, walletAddress, classified.Native, chainCfg))

	seen := make(map[string]struct{}, len(classified.Preset))
	for _, rec := range classified.Preset {
		token := s.buildToken(ctx, rec, chainCfg, true)
		seen[token.ContractAddress] = struct{}{}
		tokens = append(tokens, token)
	}

	// Preset tokens always render, even when the provider returned nothing
	// for them, so the UI can offer them for deposit.
	for _, desc := range chainCfg.PresetTokens {
		if _, ok := seen[desc.Address]; ok {
			continue
		}
		tokens = append(tokens, entity.ProcessedToken{
			ID:              fmt.Sprintf("%s-%d", desc.Address, chainCfg.ChainID),
			ContractAddress: desc.Address,
			Symbol:          desc.Symbol,
			Name:            desc.Name,
			Decimals:        desc.Decimals,
			IsPreset:        true,
		})
	}

	for _, rec := range classified.Hidden {
		tokens = append(tokens, s.buildToken(ctx, rec, chainCfg, false))
	}

	sortTokens(tokens)

	snapshot := &entity.PortfolioSnapshot{
		WalletAddress: walletAddress,
		ChainID:       chainCfg.ChainID,
		ChainName:     chainCfg.Name,
		Tokens:        tokens,
	}
	for _, t := range tokens {
		snapshot.TotalValueUSD += t.ValueUSD
		snapshot.TotalChange24h += t.Change24hUSD
	}
	return snapshot
}

func (s *portfolioServiceImpl) buildToken(ctx context.Context, rec entity.RawBalanceRecord, chainCfg entity.ChainConfig, isPreset bool) entity.ProcessedToken {
	addr := strings.ToLower(derefAddress(rec.TokenAddress))
	decimals := utils.DefaultTokenDecimals
	if rec.Decimals != nil {
		decimals = *rec.Decimals
	}

	balance := utils.ParseRecordBalance(rec.BalanceFormatted, rec.Balance, rec.Decimals)
	price := s.priceSvc.ResolvePrice(ctx, rec.Symbol, rec.USDPrice, rec.USDValue, balance)

	return entity.ProcessedToken{
		ID:               fmt.Sprintf("%s-%d", addr, chainCfg.ChainID),
		ContractAddress:  addr,
		Symbol:           rec.Symbol,
		Name:             rec.Name,
		Decimals:         decimals,
		BalanceDecimal:   balance,
		RawBalance:       rec.Balance,
		PriceUSD:         price,
		ValueUSD:         balance * price,
		Change24hPercent: rec.USDPrice24hrPct,
		Change24hUSD:     rec.USDValue24hrUSD,
		IsPreset:         isPreset,
		PossibleSpam:     rec.PossibleSpam,
		VerifiedContract: rec.VerifiedContract,
		LogoURL:          rec.Logo,
	}
}

// buildNativeToken builds the native-currency entry. When the provider's
// record list had no native entry, the plain native-balance endpoint is
// tried, then the chain node. The native token renders even at zero balance.
func (s *portfolioServiceImpl) buildNativeToken(ctx context.Context, walletAddress string, rec *entity.RawBalanceRecord, chainCfg entity.ChainConfig) entity.ProcessedToken {
	token := entity.ProcessedToken{
		ID:              fmt.Sprintf("%s-%d", entity.NativeContractAddress, chainCfg.ChainID),
		ContractAddress: entity.NativeContractAddress,
		Symbol:          chainCfg.NativeSymbol,
		Name:            chainCfg.NativeName,
		Decimals:        chainCfg.NativeDecimals,
		IsNative:        true,
	}

	if rec != nil {
		if rec.Symbol != "" {
			token.Symbol = rec.Symbol
		}
		if rec.Name != "" {
			token.Name = rec.Name
		}
		token.RawBalance = rec.Balance
		token.BalanceDecimal = utils.ParseRecordBalance(rec.BalanceFormatted, rec.Balance, rec.Decimals)
		token.Change24hPercent = rec.USDPrice24hrPct
		token.Change24hUSD = rec.USDValue24hrUSD
		token.VerifiedContract = rec.VerifiedContract
		token.LogoURL = rec.Logo
		token.PriceUSD = s.priceSvc.ResolvePrice(ctx, token.Symbol, rec.USDPrice, rec.USDValue, token.BalanceDecimal)
	} else {
		raw, err := s.provider.FetchNativeBalance(ctx, walletAddress, chainCfg.ChainID)
		if err != nil {
			s.logger.Warn("Native balance unavailable from provider, trying chain node",
				zap.String("walletAddress", walletAddress),
				zap.Int64("chainID", chainCfg.ChainID),
				zap.Error(err))
			raw = s.nativeBalanceFromNode(ctx, walletAddress, chainCfg.ChainID)
		}
		token.RawBalance = raw
		token.BalanceDecimal = utils.ParseRawBalance(raw, chainCfg.NativeDecimals)
		token.PriceUSD = s.priceSvc.ResolvePrice(ctx, token.Symbol, 0, 0, token.BalanceDecimal)
	}

	token.ValueUSD = token.BalanceDecimal * token.PriceUSD
	return token
}

// nativeBalanceFromNode reads the native balance straight from the chain
// node. Failures are absorbed: a wallet whose balance cannot be read anywhere
// shows zero rather than erroring.
func (s *portfolioServiceImpl) nativeBalanceFromNode(ctx context.Context, walletAddress string, chainID int64) string {
	if s.nativeClients == nil {
		return "0"
	}
	nodeClient, err := s.nativeClients.GetClient(chainID)
	if err != nil {
		s.logger.Debug("No node client for chain", zap.Int64("chainID", chainID), zap.Error(err))
		return "0"
	}
	balance, err := nodeClient.GetNativeBalance(ctx, walletAddress)
	if err != nil {
		s.logger.Warn("Node native balance fetch failed",
			zap.String("walletAddress", walletAddress),
			zap.Int64("chainID", chainID),
			zap.Error(err))
		return "0"
	}
	return balance.String()
}

func (s *portfolioServiceImpl) recordProviderFailure(err error, walletAddress string, chainID int64) {
	class := "other"
	switch {
	case errors.Is(err, entity.ErrProviderAuth):
		class = "auth"
	case errors.Is(err, entity.ErrProviderRateLimited):
		class = "rate_limit"
	case errors.Is(err, entity.ErrProviderUnavailable):
		class = "unavailable"
	}
	metrics.ProviderFailures.WithLabelValues(class).Inc()
	s.logger.Warn("Balance provider failure, degrading to empty snapshot",
		zap.String("walletAddress", walletAddress),
		zap.Int64("chainID", chainID),
		zap.String("class", class),
		zap.Error(err))
}

// viewSnapshot projects a cached full snapshot onto the requested view. The
// cache always holds the complete token set; the preset-only view filters
// hidden tokens and recomputes totals over what remains.
func viewSnapshot(full *entity.PortfolioSnapshot, includeHidden bool) *entity.PortfolioSnapshot {
	if includeHidden {
		return full
	}

	view := &entity.PortfolioSnapshot{
		WalletAddress: full.WalletAddress,
		ChainID:       full.ChainID,
		ChainName:     full.ChainName,
		Tokens:        make([]entity.ProcessedToken, 0, len(full.Tokens)),
	}
	for _, t := range full.Tokens {
		if !t.IsNative && !t.IsPreset {
			continue
		}
		view.Tokens = append(view.Tokens, t)
		view.TotalValueUSD += t.ValueUSD
		view.TotalChange24h += t.Change24hUSD
	}
	return view
}

func emptySnapshot(walletAddress string, chainCfg entity.ChainConfig) *entity.PortfolioSnapshot {
	return &entity.PortfolioSnapshot{
		WalletAddress: walletAddress,
		ChainID:       chainCfg.ChainID,
		ChainName:     chainCfg.Name,
		Tokens:        []entity.ProcessedToken{},
	}
}

// sortTokens orders by USD value descending, ties broken by balance
// descending, for deterministic display and stable pagination.
func sortTokens(tokens []entity.ProcessedToken) {
	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].ValueUSD != tokens[j].ValueUSD {
			return tokens[i].ValueUSD > tokens[j].ValueUSD
		}
		return tokens[i].BalanceDecimal > tokens[j].BalanceDecimal
	})
}
