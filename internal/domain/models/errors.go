package models

import "errors"

// Sentinel errors for the analysis pipeline. Handlers and usecases match
// these with errors.Is; everything else is treated as internal.
var (
	// ErrDataUnavailable: the source series is empty or missing.
	ErrDataUnavailable = errors.New("no data available")

	// ErrInsufficientData: fewer than the minimum usable feature rows
	// remain after the fill/drop pass, so training cannot proceed.
	ErrInsufficientData = errors.New("insufficient data for training")

	// ErrFeatureComputation: input columns are malformed (non-finite
	// prices or volumes).
	ErrFeatureComputation = errors.New("feature computation failed")

	// ErrArtifactMismatch: persisted model artifacts come from different
	// training runs and must not be combined.
	ErrArtifactMismatch = errors.New("model artifact mismatch")

	// ErrExternalService: an advisory or real-time provider call failed.
	ErrExternalService = errors.New("external service error")
)
