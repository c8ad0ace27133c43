package advisor

import (
	"strings"
	"testing"
	"time"

	"StockSage/internal/domain/models"
)

func TestParseOpinionBullish(t *testing.T) {
	text := "The stock is likely to go UP tomorrow. Confidence: 75%. Momentum supports the move."
	op := parseOpinion(text)
	if op.Direction != models.DirectionUp {
		t.Fatalf("expected up, got %q", op.Direction)
	}
	if op.Confidence != 0.75 {
		t.Fatalf("expected 0.75, got %v", op.Confidence)
	}
	if op.Explanation != text {
		t.Fatalf("explanation must carry the full completion")
	}
}

func TestParseOpinionBearish(t *testing.T) {
	op := parseOpinion("Price should fall over the next session, 60% confidence.")
	if op.Direction != models.DirectionDown {
		t.Fatalf("expected down, got %q", op.Direction)
	}
	if op.Confidence != 0.60 {
		t.Fatalf("expected 0.60, got %v", op.Confidence)
	}
}

func TestParseOpinionBullishKeywordWins(t *testing.T) {
	// Both directions mentioned: the bullish keyword set is checked first.
	op := parseOpinion("Could go up or down, leaning toward a 55% chance.")
	if op.Direction != models.DirectionUp {
		t.Fatalf("expected up on ambiguous text, got %q", op.Direction)
	}
}

func TestParseOpinionNoSignal(t *testing.T) {
	op := parseOpinion("Sideways churn expected; no clear read.")
	if op.Direction != models.DirectionUnknown {
		t.Fatalf("expected unknown, got %q", op.Direction)
	}
	if op.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %v", op.Confidence)
	}
}

func TestParseOpinionFirstPercentage(t *testing.T) {
	op := parseOpinion("The price will rise. Confidence: 80%. Downside risk around 20%.")
	if op.Confidence != 0.80 {
		t.Fatalf("first percentage wins, got %v", op.Confidence)
	}
}

func TestBuildPromptWindow(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, 6)
	for i := range bars {
		bars[i] = models.Bar{Date: start.AddDate(0, 0, i), Close: 100 + float64(i)}
	}
	series := &models.Series{Symbol: "INFY.NS", Bars: bars}
	signals := &models.TechnicalSignals{
		MovingAverages: &models.MovingAverages{PriceAboveSMA20: true, GoldenCross: true},
		RSI:            &models.RSISignals{Value: 61.5},
	}

	prompt := buildPrompt("INFY.NS", series, signals)
	if !strings.Contains(prompt, "INFY.NS") {
		t.Fatalf("prompt missing symbol")
	}
	if strings.Contains(prompt, "2024-03-01") {
		t.Fatalf("prompt must only carry the last five closes")
	}
	if !strings.Contains(prompt, "2024-03-06: 105") {
		t.Fatalf("prompt missing latest close:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Golden Cross: true") {
		t.Fatalf("prompt missing indicator flags:\n%s", prompt)
	}
	if !strings.Contains(prompt, "RSI: 61.50") {
		t.Fatalf("prompt missing RSI value:\n%s", prompt)
	}
}
