package client

import (
	"fmt"
	"strings"
	"time"

	"context"

	"portfolio_tracker/internal/entity"
	"portfolio_tracker/internal/port"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// moralisClientImpl implements port.BalanceProvider against the Moralis
// wallet API.
type moralisClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewMoralisClient creates a new balance provider client.
func NewMoralisClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) port.BalanceProvider {
	return &moralisClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.Named("MoralisClient"),
	}
}

// FetchRawBalances implements the port.BalanceProvider interface. The
// provider has shipped several envelope shapes across API versions; every
// known shape is probed in priority order and an unrecognized body
// normalizes to an empty slice rather than an error.
func (c *moralisClientImpl) FetchRawBalances(ctx context.Context, walletAddress string, chainID int64) ([]entity.RawBalanceRecord, error) {
	requestURL := fmt.Sprintf("%s/wallets/%s/tokens?chain=%s", c.baseURL, walletAddress, chainHexID(chainID))

	body, err := c.doGet(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	return c.normalizeBalanceResponse(body, requestURL), nil
}

// FetchNativeBalance implements the port.BalanceProvider interface. The
// balance is returned as an integer string in the chain's smallest unit.
func (c *moralisClientImpl) FetchNativeBalance(ctx context.Context, walletAddress string, chainID int64) (string, error) {
	requestURL := fmt.Sprintf("%s/%s/balance?chain=%s", c.baseURL, walletAddress, chainHexID(chainID))

	body, err := c.doGet(ctx, requestURL)
	if err != nil {
		return "", err
	}

	var nb entity.MoralisNativeBalance
	if err := json.Unmarshal(body, &nb); err != nil {
		c.logger.Error("Failed to unmarshal native balance response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", body),
			zap.Error(err))
		return "", fmt.Errorf("failed to unmarshal native balance response: %w", entity.ErrProviderUnavailable)
	}
	if nb.Balance == "" {
		nb.Balance = "0"
	}
	return nb.Balance, nil
}

func (c *moralisClientImpl) doGet(ctx context.Context, requestURL string) ([]byte, error) {
	c.logger.Debug("Requesting balance provider", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request to balance provider", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("request to %s failed: %v: %w", requestURL, err, entity.ErrProviderUnavailable)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute request to balance provider (with default timeout)", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("request to %s failed: %v: %w", requestURL, err, entity.ErrProviderUnavailable)
		}
	}

	statusCode := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)

	switch {
	case statusCode == fasthttp.StatusOK:
		return body, nil
	case statusCode == fasthttp.StatusUnauthorized || statusCode == fasthttp.StatusForbidden:
		c.logger.Error("Balance provider rejected credentials",
			zap.String("url", requestURL),
			zap.Int("statusCode", statusCode))
		return nil, fmt.Errorf("status %d from %s: %w", statusCode, requestURL, entity.ErrProviderAuth)
	case statusCode == fasthttp.StatusTooManyRequests:
		c.logger.Warn("Balance provider rate limit exceeded",
			zap.String("url", requestURL),
			zap.Int("statusCode", statusCode))
		return nil, fmt.Errorf("status %d from %s: %w", statusCode, requestURL, entity.ErrProviderRateLimited)
	default:
		c.logger.Error("Balance provider request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", statusCode),
			zap.ByteString("responseBody", body))
		return nil, fmt.Errorf("status %d from %s: %w", statusCode, requestURL, entity.ErrProviderUnavailable)
	}
}

// normalizeBalanceResponse probes the known envelope shapes in priority
// order: wrapped result array, doubly nested result, raw.result, bare array.
func (c *moralisClientImpl) normalizeBalanceResponse(body []byte, requestURL string) []entity.RawBalanceRecord {
	var envelope entity.MoralisEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		if len(envelope.Result) > 0 {
			var records []entity.RawBalanceRecord
			if err := json.Unmarshal(envelope.Result, &records); err == nil {
				c.logger.Debug("Normalized provider response (wrapped result array)",
					zap.Int("recordCount", len(records)))
				return records
			}

			var inner entity.MoralisInnerResult
			if err := json.Unmarshal(envelope.Result, &inner); err == nil && inner.Result != nil {
				c.logger.Debug("Normalized provider response (nested result.result)",
					zap.Int("recordCount", len(inner.Result)))
				return inner.Result
			}
		}
		if envelope.Raw != nil && envelope.Raw.Result != nil {
			c.logger.Debug("Normalized provider response (raw.result)",
				zap.Int("recordCount", len(envelope.Raw.Result)))
			return envelope.Raw.Result
		}
	}

	var direct []entity.RawBalanceRecord
	if err := json.Unmarshal(body, &direct); err == nil {
		c.logger.Debug("Normalized provider response (bare array)",
			zap.Int("recordCount", len(direct)))
		return direct
	}

	c.logger.Warn("Unrecognized provider response shape, normalizing to empty record list",
		zap.String("url", requestURL),
		zap.ByteString("responseBody", body))
	return []entity.RawBalanceRecord{}
}

// chainHexID converts an internal chainID to the provider's hex chain
// encoding, e.g. 1 -> "0x1", 137 -> "0x89".
func chainHexID(chainID int64) string {
	return fmt.Sprintf("0x%x", chainID)
}
