// Package advisor asks an OpenRouter-hosted language model for a
// best-effort directional opinion on a stock. The opinion is advisory
// only: any failure or unparseable answer degrades to an error, never
// to a fabricated direction.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"StockSage/internal/domain/models"
	domsvc "StockSage/internal/domain/service"
	icache "StockSage/internal/service/cache"
	"StockSage/internal/service/metrics"
	"StockSage/internal/service/ratelimit"
	apphttp "StockSage/pkg/http"
	applogger "StockSage/pkg/logger"
)

const (
	defaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	rateLimitKey    = "openrouter"
	opinionTTL      = 10 * time.Minute
)

// Config controls the OpenRouter client.
type Config struct {
	APIKey   string
	Model    string
	Endpoint string
	// Requests per minute allowed against the upstream API.
	RequestsPerMinute float64
}

// Client calls the OpenRouter chat-completions API and parses the free-
// text answer into a directional opinion.
type Client struct {
	cfg     Config
	http    *apphttp.Client
	limiter *ratelimit.Limiter
	cache   icache.BytesCache
	log     *applogger.Logger
}

func NewClient(cfg Config, httpClient *apphttp.Client, limiter *ratelimit.Limiter, log *applogger.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 20
	}
	return &Client{cfg: cfg, http: httpClient, limiter: limiter, cache: icache.NewTTLCache(), log: log}
}

// SetCache replaces the default in-memory opinion cache.
func (c *Client) SetCache(cache icache.BytesCache) { c.cache = cache }

var _ domsvc.AdvisoryProvider = (*Client)(nil)

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate asks the model for an up/down call on the next trading day.
func (c *Client) Generate(ctx context.Context, symbol string, series *models.Series, signals *models.TechnicalSignals) (*models.AdvisoryOpinion, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("advisory: %w: no API key configured", models.ErrExternalService)
	}

	cacheKey := "advisory:" + symbol
	if b, ok, err := c.cache.GetBytes(cacheKey); err == nil && ok {
		var cached models.AdvisoryOpinion
		if err := json.Unmarshal(b, &cached); err == nil {
			return &cached, nil
		}
	}

	if !c.limiter.Allow(rateLimitKey, c.cfg.RequestsPerMinute, c.cfg.RequestsPerMinute/60) {
		metrics.AdvisoryRequests.WithLabelValues("throttled").Inc()
		return nil, fmt.Errorf("advisory: %w: rate limited", models.ErrExternalService)
	}

	var resp chatResponse
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: apphttp.MethodPost,
		URL:    c.cfg.Endpoint,
		Headers: map[string]string{
			"Authorization": "Bearer " + c.cfg.APIKey,
			"Content-Type":  "application/json",
		},
		Body: chatRequest{
			Model:    c.cfg.Model,
			Messages: []chatMessage{{Role: "user", Content: buildPrompt(symbol, series, signals)}},
		},
	}, &resp)
	if err != nil {
		metrics.AdvisoryRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("advisory: %w: %v", models.ErrExternalService, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		metrics.AdvisoryRequests.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("advisory: %w: empty completion", models.ErrExternalService)
	}

	opinion := parseOpinion(resp.Choices[0].Message.Content)
	metrics.AdvisoryRequests.WithLabelValues("ok").Inc()
	if b, err := json.Marshal(opinion); err == nil {
		_ = c.cache.SetBytes(cacheKey, b, opinionTTL)
	}
	c.log.Debug("advisory opinion",
		applogger.String("symbol", symbol),
		applogger.String("direction", string(opinion.Direction)),
		applogger.Any("confidence", opinion.Confidence),
	)
	return opinion, nil
}

// buildPrompt summarizes the last five closes and the current indicator
// flags into a single user message.
func buildPrompt(symbol string, series *models.Series, signals *models.TechnicalSignals) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following data for %s, predict whether the stock price will go up or down in the next trading day, and provide a confidence level (0-100%%) and reasoning:\n\nHistorical Data (Last 5 days):\n", symbol)

	bars := series.Bars
	if len(bars) > 5 {
		bars = bars[len(bars)-5:]
	}
	for _, bar := range bars {
		fmt.Fprintf(&b, "\n%s: %g", bar.Date.Format("2006-01-02"), bar.Close)
	}

	b.WriteString("\n\nTechnical Indicators:")
	if ma := signals.MovingAverages; ma != nil {
		fmt.Fprintf(&b, "\nPrice above 20-day MA: %v", ma.PriceAboveSMA20)
		fmt.Fprintf(&b, "\nPrice above 50-day MA: %v", ma.PriceAboveSMA50)
		if ma.PriceAboveSMA200 != nil {
			fmt.Fprintf(&b, "\nPrice above 200-day MA: %v", *ma.PriceAboveSMA200)
		}
		fmt.Fprintf(&b, "\nGolden Cross: %v", ma.GoldenCross)
		fmt.Fprintf(&b, "\nDeath Cross: %v", ma.DeathCross)
	}
	if rsi := signals.RSI; rsi != nil {
		fmt.Fprintf(&b, "\nRSI: %.2f", rsi.Value)
		fmt.Fprintf(&b, "\nRSI Overbought: %v", rsi.Overbought)
		fmt.Fprintf(&b, "\nRSI Oversold: %v", rsi.Oversold)
	}
	if macd := signals.MACD; macd != nil {
		fmt.Fprintf(&b, "\nMACD above Signal: %v", macd.AboveSignal)
		fmt.Fprintf(&b, "\nMACD Positive: %v", macd.Positive)
	}

	b.WriteString("\n\nBased on this data, predict the stock movement (UP or DOWN), confidence level (0-100%), and provide a brief explanation.")
	return b.String()
}

var confidenceRe = regexp.MustCompile(`(\d+)\s*%`)

// parseOpinion extracts direction and confidence from the free-text
// completion. Direction keywords take the first match in bullish,
// bearish order; the first percentage found is the confidence.
func parseOpinion(text string) *models.AdvisoryOpinion {
	opinion := &models.AdvisoryOpinion{
		Direction:   models.DirectionUnknown,
		Explanation: text,
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "up") || strings.Contains(lower, "increase") || strings.Contains(lower, "rise"):
		opinion.Direction = models.DirectionUp
	case strings.Contains(lower, "down") || strings.Contains(lower, "decrease") || strings.Contains(lower, "fall"):
		opinion.Direction = models.DirectionDown
	}

	if m := confidenceRe.FindStringSubmatch(text); m != nil {
		if pct, err := strconv.Atoi(m[1]); err == nil {
			opinion.Confidence = float64(pct) / 100
		} else {
			opinion.Confidence = 0.5
		}
	}
	return opinion
}
