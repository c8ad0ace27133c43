package repository

import "time"

// Timeframe is the requested history lookback window.
type Timeframe string

const (
	TF1d Timeframe = "1d"
	TF1w Timeframe = "1w"
	TF1m Timeframe = "1m"
	TF3m Timeframe = "3m"
	TF6m Timeframe = "6m"
	TF1y Timeframe = "1y"
	TF2y Timeframe = "2y"
	TF5y Timeframe = "5y"
)

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF1d, TF1w, TF1m, TF3m, TF6m, TF1y, TF2y, TF5y:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TF1y }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}

// Lookback returns the wall-clock window covered by the timeframe.
func (tf Timeframe) Lookback() time.Duration {
	switch tf {
	case TF1d:
		return 24 * time.Hour
	case TF1w:
		return 7 * 24 * time.Hour
	case TF1m:
		return 30 * 24 * time.Hour
	case TF3m:
		return 90 * 24 * time.Hour
	case TF6m:
		return 180 * 24 * time.Hour
	case TF1y:
		return 365 * 24 * time.Hour
	case TF2y:
		return 2 * 365 * 24 * time.Hour
	case TF5y:
		return 5 * 365 * 24 * time.Hour
	default:
		return 365 * 24 * time.Hour
	}
}
