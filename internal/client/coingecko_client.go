package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"portfolio_tracker/internal/entity"
	"portfolio_tracker/internal/port"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// coinGeckoClientImpl implements port.PriceClient against the CoinGecko API.
type coinGeckoClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewCoinGeckoClient creates a new market-data client.
func NewCoinGeckoClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) port.PriceClient {
	return &coinGeckoClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.Named("CoinGeckoClient"),
	}
}

// GetSimplePrices implements the port.PriceClient interface.
func (c *coinGeckoClientImpl) GetSimplePrices(ctx context.Context, ids []string) (entity.SimplePriceResponse, error) {
	if len(ids) == 0 {
		return entity.SimplePriceResponse{}, nil
	}

	requestURL := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_24hr_change=true",
		c.baseURL, url.QueryEscape(strings.Join(ids, ",")))

	body, err := c.doGet(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var prices entity.SimplePriceResponse
	if err := json.Unmarshal(body, &prices); err != nil {
		c.logger.Error("Failed to unmarshal simple price response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", body),
			zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal simple price response: %w", err)
	}

	c.logger.Debug("Fetched simple prices", zap.Int("requested", len(ids)), zap.Int("returned", len(prices)))
	return prices, nil
}

// SearchCoinID implements the port.PriceClient interface. The search endpoint
// orders hits by relevance; an exact symbol match is preferred over the first
// hit when present.
func (c *coinGeckoClientImpl) SearchCoinID(ctx context.Context, symbol string) (string, error) {
	requestURL := fmt.Sprintf("%s/search?query=%s", c.baseURL, url.QueryEscape(symbol))

	body, err := c.doGet(ctx, requestURL)
	if err != nil {
		return "", err
	}

	var result entity.SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Error("Failed to unmarshal search response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", body),
			zap.Error(err))
		return "", fmt.Errorf("failed to unmarshal search response: %w", err)
	}

	if len(result.Coins) == 0 {
		c.logger.Debug("No search hits for symbol", zap.String("symbol", symbol))
		return "", nil
	}

	for _, coin := range result.Coins {
		if strings.EqualFold(coin.Symbol, symbol) {
			return coin.ID, nil
		}
	}
	return result.Coins[0].ID, nil
}

func (c *coinGeckoClientImpl) doGet(ctx context.Context, requestURL string) ([]byte, error) {
	c.logger.Debug("Requesting market-data API", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request to market-data API", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute request to market-data API (with default timeout)", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("Market-data API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", resp.Body()))
		return nil, fmt.Errorf("market-data API request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	return append([]byte(nil), resp.Body()...), nil
}
