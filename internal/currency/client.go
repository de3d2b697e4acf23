package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	frankfurterBaseURL = "https://api.frankfurter.dev/v1"
	cacheTTL           = 1 * time.Hour
)

// ErrUnsupportedCurrency is returned when no rate exists for the requested pair
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// ExchangeRates represents the response from Frankfurter API
type ExchangeRates struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// Client handles currency conversion using Frankfurter API
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
	cache      map[string]*cachedRates
	cacheMu    sync.RWMutex
}

type cachedRates struct {
	rates     *ExchangeRates
	expiresAt time.Time
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another Frankfurter-compatible API
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithClock overrides the time source used for cache expiry
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new currency client
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: frankfurterBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now:   time.Now,
		cache: make(map[string]*cachedRates),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetLatestRates fetches the latest exchange rates for a base currency
func (c *Client) GetLatestRates(ctx context.Context, baseCurrency string) (*ExchangeRates, error) {
	baseCurrency = strings.ToUpper(baseCurrency)
	cacheKey := fmt.Sprintf("latest_%s", baseCurrency)

	// Check cache
	c.cacheMu.RLock()
	if cached, ok := c.cache[cacheKey]; ok && c.now().Before(cached.expiresAt) {
		c.cacheMu.RUnlock()
		return cached.rates, nil
	}
	c.cacheMu.RUnlock()

	// Fetch from API
	endpoint := fmt.Sprintf("%s/latest?base=%s", c.baseURL, url.QueryEscape(baseCurrency))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, baseCurrency)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var rates ExchangeRates
	if err := json.NewDecoder(resp.Body).Decode(&rates); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// Cache the result
	c.cacheMu.Lock()
	c.cache[cacheKey] = &cachedRates{
		rates:     &rates,
		expiresAt: c.now().Add(cacheTTL),
	}
	c.cacheMu.Unlock()

	return &rates, nil
}

// Rate returns how many units of toCurrency one unit of fromCurrency buys
func (c *Client) Rate(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error) {
	fromCurrency = strings.ToUpper(fromCurrency)
	toCurrency = strings.ToUpper(toCurrency)
	if fromCurrency == toCurrency {
		return decimal.NewFromInt(1), nil
	}

	rates, err := c.GetLatestRates(ctx, fromCurrency)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get exchange rates: %w", err)
	}

	rate, ok := rates.Rates[toCurrency]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rate from %s to %s", ErrUnsupportedCurrency, fromCurrency, toCurrency)
	}

	return decimal.NewFromFloat(rate), nil
}

// Convert converts an amount from one currency to another, rounded to cents
func (c *Client) Convert(ctx context.Context, amount float64, fromCurrency, toCurrency string) (float64, error) {
	rate, err := c.Rate(ctx, fromCurrency, toCurrency)
	if err != nil {
		return 0, err
	}

	converted, _ := decimal.NewFromFloat(amount).Mul(rate).Round(2).Float64()
	return converted, nil
}

// GetSupportedCurrencies returns a list of supported currencies
func (c *Client) GetSupportedCurrencies(ctx context.Context) ([]string, error) {
	rates, err := c.GetLatestRates(ctx, "EUR")
	if err != nil {
		return nil, err
	}

	currencies := make([]string, 0, len(rates.Rates)+1)
	currencies = append(currencies, "EUR") // Add base currency
	for currency := range rates.Rates {
		currencies = append(currencies, currency)
	}

	return currencies, nil
}
