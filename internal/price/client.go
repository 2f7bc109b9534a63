package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrRateLimited marks a 429 response; the only retryable request failure.
var ErrRateLimited = errors.New("price api rate limit exceeded")

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// Client queries the historical price API. All requests go through the
// shared limiter first.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *Limiter
}

func NewClient(baseURL string, limiter *Limiter) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: limiter,
	}
}

// CoinID resolves the API's coin identifier from a platform name and token
// contract address.
func (c *Client) CoinID(ctx context.Context, platform, tokenAddress string) (string, error) {
	endpoint := fmt.Sprintf("%s/coins/%s/contract/%s", c.baseURL, platform, url.PathEscape(tokenAddress))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}

	var result struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parse coin info: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("coin id missing in response for %s on %s", tokenAddress, platform)
	}
	return result.ID, nil
}

// PriceOnDate returns the USD unit price of a coin on a calendar day. The
// second return value is false when the API has no data for that day.
func (c *Client) PriceOnDate(ctx context.Context, coinID string, date time.Time) (float64, bool, error) {
	endpoint := fmt.Sprintf("%s/coins/%s/history?date=%s&localization=false",
		c.baseURL, url.PathEscape(coinID), date.UTC().Format("02-01-2006"))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}

	var result struct {
		MarketData *struct {
			CurrentPrice map[string]float64 `json:"current_price"`
		} `json:"market_data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, false, fmt.Errorf("parse price history: %w", err)
	}
	if result.MarketData == nil {
		return 0, false, nil
	}
	price, ok := result.MarketData.CurrentPrice["usd"]
	if !ok {
		return 0, false, nil
	}
	return price, true, nil
}

var errNotFound = errors.New("price api: not found")

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusNotFound:
		return nil, errNotFound
	default:
		return nil, fmt.Errorf("price api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
