package yahoo

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"MarketBrief/internal/domain/models"
	domsvc "MarketBrief/internal/domain/service"
	"MarketBrief/pkg/cache"
	xhttp "MarketBrief/pkg/http"
	xlogger "MarketBrief/pkg/logger"
	"MarketBrief/pkg/metrics"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Client fetches quote snapshots from the Yahoo Finance chart endpoint.
// No credential required.
type Client struct {
	baseURL  string
	client   *xhttp.Client
	cache    cache.Service
	cacheTTL time.Duration
	logger   *xlogger.Logger
	recorder *metrics.Recorder
}

type Option func(*Client)

// WithCache enables snapshot caching with the given TTL.
func WithCache(c cache.Service, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

// WithRecorder enables per-symbol metrics.
func WithRecorder(r *metrics.Recorder) Option {
	return func(cl *Client) {
		cl.recorder = r
	}
}

func New(baseURL string, timeout time.Duration, logger *xlogger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// chartResponse mirrors the subset of the chart payload we consume.
type chartResponse struct {
	Chart struct {
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
		Result []struct {
			Meta struct {
				Currency           string   `json:"currency"`
				MarketState        string   `json:"marketState"`
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				PreviousClose      *float64 `json:"previousClose"`
				ChartPreviousClose *float64 `json:"chartPreviousClose"`
				FiftyTwoWeekHigh   *float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow    *float64 `json:"fiftyTwoWeekLow"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// FetchQuotes returns one entry per requested symbol. Symbols are fetched
// concurrently; each goroutine writes a disjoint key.
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) (map[string]*models.TickerQuote, error) {
	quotes := make(map[string]*models.TickerQuote, len(symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			q := c.fetchOne(ctx, symbol)
			mu.Lock()
			quotes[symbol] = q
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	success := 0
	for _, q := range quotes {
		if q.Valid() {
			success++
		}
	}
	c.logger.Info("market data fetch completed",
		xlogger.Int("success", success),
		xlogger.Int("requested", len(symbols)),
	)

	return quotes, nil
}

func (c *Client) fetchOne(ctx context.Context, symbol string) *models.TickerQuote {
	if c.cache != nil {
		var cached models.TickerQuote
		if err := c.cache.Get(ctx, "quote:"+symbol, &cached); err == nil && cached.Valid() {
			return &cached
		}
	}

	q, err := c.requestQuote(ctx, symbol)
	if err != nil {
		c.logger.Warn("quote fetch failed",
			xlogger.String("symbol", symbol),
			xlogger.Error(err),
		)
		if c.recorder != nil {
			c.recorder.RecordQuoteFetch(symbol, false)
		}
		return &models.TickerQuote{
			Symbol: symbol,
			Error:  fmt.Sprintf("Failed to fetch data: %v", err),
		}
	}

	if c.recorder != nil {
		c.recorder.RecordQuoteFetch(symbol, true)
		c.recorder.RecordQuote(symbol, q.Price, q.ChangePercent)
	}
	if c.cache != nil {
		_ = c.cache.Set(ctx, "quote:"+symbol, q, c.cacheTTL)
	}
	return q
}

func (c *Client) requestQuote(ctx context.Context, symbol string) (*models.TickerQuote, error) {
	var resp chartResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, symbol),
		Headers: map[string]string{"User-Agent": userAgent},
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("api error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, errors.New("no chart data in response")
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, errors.New("missing quote or meta data")
	}
	bars := result.Indicators.Quote[0]
	if len(result.Timestamp) == 0 {
		return nil, errors.New("no timestamp data available")
	}

	// Most recent bar with a non-null close; intraday tails are often null.
	last := len(result.Timestamp) - 1
	for last >= 0 && (last >= len(bars.Close) || bars.Close[last] == nil) {
		last--
	}
	if last < 0 {
		return nil, errors.New("no valid price data found")
	}

	meta := result.Meta
	closePrice := *bars.Close[last]
	openPrice := barValue(bars.Open, last, closePrice)

	price := closePrice
	if meta.RegularMarketPrice != nil {
		price = *meta.RegularMarketPrice
	}

	previousClose := openPrice
	if meta.PreviousClose != nil {
		previousClose = *meta.PreviousClose
	} else if meta.ChartPreviousClose != nil {
		previousClose = *meta.ChartPreviousClose
	}

	change := price - previousClose
	changePercent := 0.0
	if previousClose != 0 {
		changePercent = math.Round(change/previousClose*100*100) / 100
	}

	var volume int64
	if last < len(bars.Volume) && bars.Volume[last] != nil {
		volume = *bars.Volume[last]
	}

	currency := meta.Currency
	if currency == "" {
		currency = "USD"
	}
	marketState := meta.MarketState
	if marketState == "" {
		marketState = "REGULAR"
	}

	return &models.TickerQuote{
		Symbol:           symbol,
		Price:            price,
		Open:             openPrice,
		High:             barValue(bars.High, last, closePrice),
		Low:              barValue(bars.Low, last, closePrice),
		Volume:           volume,
		Change:           change,
		ChangePercent:    changePercent,
		RSI:              approximateRSI(symbol),
		Date:             time.Unix(result.Timestamp[last], 0).UTC().Format("2006-01-02"),
		Currency:         currency,
		MarketState:      marketState,
		FiftyTwoWeekHigh: meta.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  meta.FiftyTwoWeekLow,
	}, nil
}

func barValue(vals []*float64, idx int, fallback float64) float64 {
	if idx < len(vals) && vals[idx] != nil {
		return *vals[idx]
	}
	return fallback
}

// approximateRSI maps a stable per-symbol hash into [35,65]. It is a
// labeled placeholder, not a computed indicator.
func approximateRSI(symbol string) float64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return float64(50 + int(h.Sum32()%30) - 15)
}

var _ domsvc.QuoteProvider = (*Client)(nil)
