package client

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"portfolio_tracker/internal/port"
	"portfolio_tracker/internal/registry"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

const defaultConnectionTimeout = 10 * time.Second

// evmClient implements port.NativeBalanceClient over a JSON-RPC node
// connection. It is the last-resort path for native balances when the
// indexing provider cannot serve them.
type evmClient struct {
	ethClient      *ethclient.Client
	rpcCallTimeout time.Duration
}

// NewEVMClient dials the given RPC endpoint and returns a node client.
func NewEVMClient(rpcURL string, rpcCallTimeout time.Duration) (port.NativeBalanceClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectionTimeout)
	defer cancel()

	ec, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}
	return &evmClient{ethClient: ec, rpcCallTimeout: rpcCallTimeout}, nil
}

// GetNativeBalance fetches the wallet's native balance in wei at the latest
// block.
func (c *evmClient) GetNativeBalance(ctx context.Context, walletAddress string) (*big.Int, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	balance, err := c.ethClient.BalanceAt(callCtx, common.HexToAddress(walletAddress), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get native balance for %s: %w", walletAddress, err)
	}
	return balance, nil
}

// evmClientProvider hands out node clients per chain, caching connections so
// repeated requests do not redial.
type evmClientProvider struct {
	registry       *registry.ChainRegistry
	clients        map[int64]port.NativeBalanceClient
	mu             sync.Mutex
	rpcCallTimeout time.Duration
	logger         *zap.Logger
}

// NewEVMClientProvider creates a provider backed by the chain registry's RPC
// endpoints.
func NewEVMClientProvider(reg *registry.ChainRegistry, rpcCallTimeout time.Duration, logger *zap.Logger) port.NativeClientProvider {
	return &evmClientProvider{
		registry:       reg,
		clients:        make(map[int64]port.NativeBalanceClient),
		rpcCallTimeout: rpcCallTimeout,
		logger:         logger.Named("EVMClientProvider"),
	}
}

// GetClient retrieves (or lazily dials) the node client for a chain.
func (p *evmClientProvider) GetClient(chainID int64) (port.NativeBalanceClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[chainID]; exists {
		return client, nil
	}

	cc, err := p.registry.Lookup(chainID)
	if err != nil {
		return nil, err
	}
	if cc.RPCEndpoint == "" {
		return nil, fmt.Errorf("chain %d (%s) has no RPC endpoint configured", chainID, cc.Name)
	}

	p.logger.Info("Creating new EVM client", zap.Int64("chainID", chainID), zap.String("chainName", cc.Name))
	newClient, err := NewEVMClient(cc.RPCEndpoint, p.rpcCallTimeout)
	if err != nil {
		p.logger.Error("Failed to create EVM client", zap.Int64("chainID", chainID), zap.Error(err))
		return nil, err
	}

	p.clients[chainID] = newClient
	return newClient, nil
}
