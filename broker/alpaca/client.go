// Package alpaca implements the brokerage and market-data boundaries
// against the Alpaca trading API.
package alpaca

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alexroth/tradebot/broker"
	"github.com/alexroth/tradebot/market"
)

const (
	// PaperURL is the paper-trading environment.
	PaperURL = "https://paper-api.alpaca.markets"
	// LiveURL is the live trading environment.
	LiveURL = "https://api.alpaca.markets"
	// DataURL serves historical market data for both environments.
	DataURL = "https://data.alpaca.markets"
)

// Client talks to the Alpaca REST API. It implements broker.Broker and
// broker.BarSource.
type Client struct {
	baseURL    string
	dataURL    string
	key        string
	secret     string
	feed       string
	httpClient *http.Client
}

// NewClient returns a client for the paper or live environment.
func NewClient(key, secret string, paper bool) *Client {
	baseURL := LiveURL
	if paper {
		baseURL = PaperURL
	}

	return &Client{
		baseURL: baseURL,
		dataURL: DataURL,
		key:     key,
		secret:  secret,
		feed:    "iex",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetFeed selects the market-data feed ("iex" or "sip").
func (c *Client) SetFeed(feed string) { c.feed = feed }

func (c *Client) do(ctx context.Context, method, rawURL string, body, out any) (int, error) {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("alpaca: marshal request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, rdr)
	if err != nil {
		return 0, fmt.Errorf("alpaca: build request: %w", err)
	}
	req.Header.Set("APCA-API-KEY-ID", c.key)
	req.Header.Set("APCA-API-SECRET-KEY", c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("alpaca: %s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("alpaca: %s %s: status %d: %s", method, req.URL.Path, resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("alpaca: decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

type accountResponse struct {
	AccountNumber string `json:"account_number"`
	Currency      string `json:"currency"`
	Cash          string `json:"cash"`
}

func (c *Client) GetAccount(ctx context.Context) (broker.Account, error) {
	var out accountResponse
	if _, err := c.do(ctx, http.MethodGet, c.baseURL+"/v2/account", nil, &out); err != nil {
		return broker.Account{}, err
	}

	cash, err := strconv.ParseFloat(out.Cash, 64)
	if err != nil {
		return broker.Account{}, fmt.Errorf("alpaca: bad cash value %q: %w", out.Cash, err)
	}

	return broker.Account{
		ID:       out.AccountNumber,
		Currency: out.Currency,
		Cash:     cash,
	}, nil
}

type positionResponse struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	AvgEntryPrice string `json:"avg_entry_price"`
}

func (p positionResponse) snapshot() (broker.PositionSnapshot, error) {
	qty, err := strconv.ParseFloat(p.Qty, 64)
	if err != nil {
		return broker.PositionSnapshot{}, fmt.Errorf("alpaca: bad qty %q: %w", p.Qty, err)
	}
	avg, err := strconv.ParseFloat(p.AvgEntryPrice, 64)
	if err != nil {
		return broker.PositionSnapshot{}, fmt.Errorf("alpaca: bad avg_entry_price %q: %w", p.AvgEntryPrice, err)
	}
	return broker.PositionSnapshot{Symbol: p.Symbol, Qty: qty, AvgEntryPrice: avg}, nil
}

func (c *Client) GetPosition(ctx context.Context, symbol string) (broker.PositionSnapshot, error) {
	var out positionResponse
	status, err := c.do(ctx, http.MethodGet, c.baseURL+"/v2/positions/"+url.PathEscape(symbol), nil, &out)
	if status == http.StatusNotFound {
		return broker.PositionSnapshot{}, broker.ErrNoPosition
	}
	if err != nil {
		return broker.PositionSnapshot{}, err
	}
	return out.snapshot()
}

func (c *Client) GetAllPositions(ctx context.Context) ([]broker.PositionSnapshot, error) {
	var out []positionResponse
	if _, err := c.do(ctx, http.MethodGet, c.baseURL+"/v2/positions", nil, &out); err != nil {
		return nil, err
	}

	snaps := make([]broker.PositionSnapshot, 0, len(out))
	for _, p := range out {
		snap, err := p.snapshot()
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

type orderRequest struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	TimeInForce   string `json:"time_in_force"`
	ClientOrderID string `json:"client_order_id,omitempty"`
}

type orderResponse struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (c *Client) SubmitMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderAck, error) {
	if req.Qty <= 0 {
		return broker.OrderAck{}, fmt.Errorf("alpaca: non-positive qty %d", req.Qty)
	}

	body := orderRequest{
		Symbol:        req.Symbol,
		Qty:           strconv.FormatInt(req.Qty, 10),
		Side:          string(req.Side),
		Type:          "market",
		TimeInForce:   "gtc",
		ClientOrderID: req.ClientOrderID,
	}

	var out orderResponse
	status, err := c.do(ctx, http.MethodPost, c.baseURL+"/v2/orders", body, &out)
	if status == http.StatusForbidden || status == http.StatusUnprocessableEntity {
		return broker.OrderAck{}, fmt.Errorf("%w: %v", broker.ErrOrderRejected, err)
	}
	if err != nil {
		return broker.OrderAck{}, err
	}

	return broker.OrderAck{
		OrderID:  out.ID,
		Symbol:   req.Symbol,
		Qty:      req.Qty,
		Side:     req.Side,
		Accepted: out.SubmittedAt,
	}, nil
}

type clockResponse struct {
	IsOpen    bool      `json:"is_open"`
	NextOpen  time.Time `json:"next_open"`
	NextClose time.Time `json:"next_close"`
}

func (c *Client) GetClock(ctx context.Context) (broker.Clock, error) {
	var out clockResponse
	if _, err := c.do(ctx, http.MethodGet, c.baseURL+"/v2/clock", nil, &out); err != nil {
		return broker.Clock{}, err
	}
	return broker.Clock{
		IsOpen:    out.IsOpen,
		NextOpen:  out.NextOpen,
		NextClose: out.NextClose,
	}, nil
}

type barData struct {
	Time   time.Time `json:"t"`
	Open   float64   `json:"o"`
	High   float64   `json:"h"`
	Low    float64   `json:"l"`
	Close  float64   `json:"c"`
	Volume float64   `json:"v"`
}

type barsResponse struct {
	Bars []barData `json:"bars"`
}

// GetRecentBars fetches bars for the lookback window ending now, oldest
// first. The interval is rendered as an Alpaca timeframe such as "5Min".
func (c *Client) GetRecentBars(ctx context.Context, symbol string, lookback, interval time.Duration) ([]market.Bar, error) {
	end := time.Now().UTC()
	start := end.Add(-lookback)

	q := url.Values{}
	q.Set("timeframe", timeframe(interval))
	q.Set("start", start.Format(time.RFC3339))
	q.Set("end", end.Format(time.RFC3339))
	q.Set("feed", c.feed)

	u := fmt.Sprintf("%s/v2/stocks/%s/bars?%s", c.dataURL, url.PathEscape(symbol), q.Encode())

	var out barsResponse
	if _, err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}

	bars := make([]market.Bar, 0, len(out.Bars))
	for _, b := range out.Bars {
		bars = append(bars, market.Bar{
			Time:   b.Time,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	return bars, nil
}

func timeframe(interval time.Duration) string {
	switch {
	case interval >= 24*time.Hour:
		return "1Day"
	case interval >= time.Hour:
		return fmt.Sprintf("%dHour", int(interval.Hours()))
	case interval >= time.Minute:
		return fmt.Sprintf("%dMin", int(interval.Minutes()))
	default:
		return "1Min"
	}
}
