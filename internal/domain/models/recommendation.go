package models

// Verdict is the final trading call.
type Verdict string

const (
	VerdictStrongBuy  Verdict = "STRONG BUY"
	VerdictBuy        Verdict = "BUY"
	VerdictHold       Verdict = "HOLD"
	VerdictSell       Verdict = "SELL"
	VerdictStrongSell Verdict = "STRONG SELL"
)

// Recommendation is the fused verdict with a 0-100 confidence and up to
// five reason strings, ordered most significant first. Stateless; derived
// fresh from a signal snapshot and a prediction.
type Recommendation struct {
	Verdict    Verdict  `json:"verdict"`
	Confidence int      `json:"confidence"`
	Reasons    []string `json:"reasons"`
}
