package models

// Direction of the expected next-day move.
type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionUnknown Direction = "unknown"
)

// PredictionSource tags which pipeline produced the primary prediction.
// A prediction is exactly one of: a model prediction, an advisory-only
// prediction (model failed but the advisor answered), or no prediction.
type PredictionSource string

const (
	SourceModel    PredictionSource = "model"
	SourceAdvisory PredictionSource = "advisory"
	SourceNone     PredictionSource = "none"
)

// AdvisoryOpinion is the best-effort external directional judgment.
type AdvisoryOpinion struct {
	Direction   Direction `json:"direction"`
	Confidence  float64   `json:"confidence"`
	Explanation string    `json:"explanation"`
}

// CombinedView merges the model and advisory opinions when both exist.
type CombinedView struct {
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"`
}

// Prediction is the statistical prediction result for one symbol.
// Direction/Confidence/PredictedReturn describe the primary source named
// by Source; Advisory and Combined are present only when the advisory
// opinion was requested and usable. Failures never surface as errors past
// this type: Source stays SourceNone (or SourceAdvisory on fallback) with
// the failure text in Err.
type Prediction struct {
	Source          PredictionSource `json:"source"`
	Direction       Direction        `json:"direction"`
	Confidence      float64          `json:"confidence"`
	PredictedReturn float64          `json:"predicted_return"` // percent

	Advisory *AdvisoryOpinion `json:"advisory,omitempty"`
	Combined *CombinedView    `json:"combined,omitempty"`
	Sources  []string         `json:"sources,omitempty"`

	Err string `json:"error,omitempty"`
}

// NoPrediction builds the well-formed unknown result carrying errText.
func NoPrediction(errText string) *Prediction {
	return &Prediction{
		Source:     SourceNone,
		Direction:  DirectionUnknown,
		Confidence: 0,
		Err:        errText,
	}
}

// TrainReport summarizes a completed training run.
type TrainReport struct {
	Symbol            string   `json:"symbol"`
	DirectionAccuracy float64  `json:"direction_accuracy"`
	DataPoints        int      `json:"data_points"`
	Features          []string `json:"features"`
	TrainedAt         string   `json:"training_date"`
}
