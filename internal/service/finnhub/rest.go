// Package finnhub provides market data from the Finnhub API: daily
// candle history and real-time quotes over REST, plus a last-trade
// WebSocket stream.
package finnhub

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	domsvc "StockSage/internal/domain/service"
	"StockSage/internal/service/metrics"
	"StockSage/internal/service/ratelimit"
	apphttp "StockSage/pkg/http"
	applogger "StockSage/pkg/logger"
)

const (
	defaultBaseURL = "https://finnhub.io/api/v1"
	restLimitKey   = "finnhub-rest"
)

// RestConfig controls the REST data provider.
type RestConfig struct {
	APIKey  string
	BaseURL string
	// Requests per minute allowed against the upstream API.
	RequestsPerMinute float64
}

// RestClient implements HistoryProvider and QuoteProvider over the
// Finnhub REST API.
type RestClient struct {
	cfg     RestConfig
	http    *apphttp.Client
	limiter *ratelimit.Limiter
	log     *applogger.Logger
	now     func() time.Time
}

func NewRestClient(cfg RestConfig, httpClient *apphttp.Client, limiter *ratelimit.Limiter, log *applogger.Logger) *RestClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	return &RestClient{cfg: cfg, http: httpClient, limiter: limiter, log: log, now: time.Now}
}

var (
	_ domsvc.HistoryProvider = (*RestClient)(nil)
	_ domsvc.QuoteProvider   = (*RestClient)(nil)
)

type candleResponse struct {
	Status string    `json:"s"`
	Times  []int64   `json:"t"`
	Opens  []float64 `json:"o"`
	Highs  []float64 `json:"h"`
	Lows   []float64 `json:"l"`
	Closes []float64 `json:"c"`
	Vols   []float64 `json:"v"`
}

// FetchHistory fetches daily candles for the timeframe. A "no_data"
// status yields an empty series, not an error.
func (c *RestClient) FetchHistory(ctx context.Context, symbol string, tf domrepo.Timeframe) (*models.Series, error) {
	if err := c.throttle(); err != nil {
		return nil, err
	}
	to := c.now()
	from := to.Add(-tf.Lookback())

	var resp candleResponse
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: apphttp.MethodGet,
		URL:    c.cfg.BaseURL + "/stock/candle",
		QueryParams: map[string][]string{
			"symbol":     {symbol},
			"resolution": {"D"},
			"from":       {strconv.FormatInt(from.Unix(), 10)},
			"to":         {strconv.FormatInt(to.Unix(), 10)},
			"token":      {c.cfg.APIKey},
		},
	}, &resp)
	if err != nil {
		metrics.DataFetches.WithLabelValues("finnhub", "error").Inc()
		return nil, fmt.Errorf("fetch history %s: %w: %v", symbol, models.ErrExternalService, err)
	}

	series := &models.Series{Symbol: symbol}
	if resp.Status == "no_data" {
		metrics.DataFetches.WithLabelValues("finnhub", "no_data").Inc()
		return series, nil
	}
	if resp.Status != "ok" {
		metrics.DataFetches.WithLabelValues("finnhub", "error").Inc()
		return nil, fmt.Errorf("fetch history %s: %w: status %q", symbol, models.ErrExternalService, resp.Status)
	}

	n := len(resp.Times)
	if len(resp.Opens) != n || len(resp.Highs) != n || len(resp.Lows) != n ||
		len(resp.Closes) != n || len(resp.Vols) != n {
		metrics.DataFetches.WithLabelValues("finnhub", "error").Inc()
		return nil, fmt.Errorf("fetch history %s: %w: ragged candle columns", symbol, models.ErrExternalService)
	}

	series.Bars = make([]models.Bar, 0, n)
	for i := 0; i < n; i++ {
		series.Bars = append(series.Bars, models.Bar{
			Date:   time.Unix(resp.Times[i], 0).UTC(),
			Open:   resp.Opens[i],
			High:   resp.Highs[i],
			Low:    resp.Lows[i],
			Close:  resp.Closes[i],
			Volume: resp.Vols[i],
		})
	}
	series.Normalize()

	metrics.DataFetches.WithLabelValues("finnhub", "ok").Inc()
	c.log.Debug("history fetched",
		applogger.String("symbol", symbol),
		applogger.String("timeframe", string(tf)),
		applogger.Int("bars", series.Len()),
	)
	return series, nil
}

type quoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// FetchQuote fetches the current quote snapshot. Finnhub returns zeros
// for unknown symbols; that surfaces as ErrDataUnavailable.
func (c *RestClient) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if err := c.throttle(); err != nil {
		return nil, err
	}
	var resp quoteResponse
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: apphttp.MethodGet,
		URL:    c.cfg.BaseURL + "/quote",
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"token":  {c.cfg.APIKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch quote %s: %w: %v", symbol, models.ErrExternalService, err)
	}
	if resp.Current == 0 && resp.Timestamp == 0 {
		return nil, fmt.Errorf("fetch quote %s: %w", symbol, models.ErrDataUnavailable)
	}
	return &models.Quote{
		Symbol:        symbol,
		LastPrice:     resp.Current,
		Open:          resp.Open,
		High:          resp.High,
		Low:           resp.Low,
		PrevClose:     resp.PrevClose,
		Change:        resp.Change,
		ChangePercent: resp.ChangePercent,
		Timestamp:     time.Unix(resp.Timestamp, 0).UTC(),
		Source:        "finnhub",
	}, nil
}

func (c *RestClient) throttle() error {
	if !c.limiter.Allow(restLimitKey, c.cfg.RequestsPerMinute, c.cfg.RequestsPerMinute/60) {
		return fmt.Errorf("finnhub: %w: rate limited", models.ErrExternalService)
	}
	return nil
}
