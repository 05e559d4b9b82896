package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"sashboard/internal/logging"
	"sashboard/internal/pnl"
)

const (
	defaultBaseURL = "https://fapi.binance.com"
	recvWindowMS   = 6000
	apiKeyHeader   = "X-MBX-APIKEY"
)

// Config configures the futures REST client.
type Config struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	HTTPClient *http.Client
	// Limiter throttles requests below the exchange request-weight limits.
	// Nil gets a conservative default.
	Limiter *rate.Limiter
	Logger  *logging.Logger
}

// Client is a minimal Binance UM Futures REST client covering the three
// endpoints the dashboard needs: exchange info, account trades, ticker price.
type Client struct {
	baseURL   string
	apiKey    string
	apiSecret string
	http      *http.Client
	limiter   *rate.Limiter
	logger    *logging.Logger
	now       func() time.Time
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(8), 16)
	}
	return &Client{
		baseURL:   baseURL,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		http:      httpClient,
		limiter:   limiter,
		logger:    cfg.Logger,
		now:       time.Now,
	}
}

// PerpetualSymbols returns the USDC-quoted perpetual contract symbols.
func (c *Client) PerpetualSymbols(ctx context.Context) ([]string, error) {
	var info exchangeInfoResponse
	if err := c.get(ctx, "/fapi/v1/exchangeInfo", nil, false, &info); err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.ContractType == "PERPETUAL" && strings.HasSuffix(s.Symbol, "USDC") {
			symbols = append(symbols, s.Symbol)
		}
	}
	return symbols, nil
}

// AccountTrades returns the account's trades for one symbol since start.
func (c *Client) AccountTrades(ctx context.Context, symbol string, start time.Time) ([]Trade, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	var trades []Trade
	if err := c.get(ctx, "/fapi/v1/userTrades", query, true, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// TickerPrice returns the latest price for a symbol.
func (c *Client) TickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	var ticker tickerPriceResponse
	if err := c.get(ctx, "/fapi/v1/ticker/price", query, false, &ticker); err != nil {
		return decimal.Zero, err
	}
	price, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price %q: %w", ticker.Price, err)
	}
	return price, nil
}

// TradesSince fans out over every USDC perpetual and collects account trades
// since start. A symbol that fails is logged and skipped so one bad contract
// does not lose the whole report.
func (c *Client) TradesSince(ctx context.Context, start time.Time) ([]pnl.Trade, error) {
	symbols, err := c.PerpetualSymbols(ctx)
	if err != nil {
		return nil, err
	}

	var trades []pnl.Trade
	for _, symbol := range symbols {
		raw, err := c.AccountTrades(ctx, symbol, start)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.warn("fetch trades failed", map[string]string{
				"symbol": symbol,
				"error":  err.Error(),
			})
			continue
		}
		for _, t := range raw {
			converted, err := t.ToPnl()
			if err != nil {
				c.warn("skip malformed trade", map[string]string{
					"symbol": symbol,
					"error":  err.Error(),
				})
				continue
			}
			trades = append(trades, converted)
		}
	}
	return trades, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, signed bool, out any) error {
	if c == nil {
		return errors.New("binance client unavailable")
	}
	if signed && (c.apiKey == "" || c.apiSecret == "") {
		return errors.New("API_KEY and API_SECRET are required for account endpoints")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if query == nil {
		query = url.Values{}
	}
	encoded := query.Encode()
	if signed {
		query.Set("recvWindow", strconv.Itoa(recvWindowMS))
		query.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
		encoded = query.Encode()
		// The signature covers the exact encoded payload and goes last.
		encoded += "&signature=" + sign(encoded, c.apiSecret)
	}

	requestURL := c.baseURL + path
	if encoded != "" {
		requestURL += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return err
	}
	if signed {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{HTTPStatus: resp.StatusCode}
		if json.Unmarshal(body, apiErr) != nil || apiErr.Msg == "" {
			apiErr.Msg = strings.TrimSpace(string(body))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) warn(message string, fields map[string]string) {
	if c.logger != nil {
		c.logger.Warn(message, fields)
	}
}
