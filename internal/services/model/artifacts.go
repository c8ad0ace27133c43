package model

import (
	"encoding/json"
	"fmt"
	"time"

	domrepo "StockSage/internal/domain/repository"
	"StockSage/internal/domain/models"
)

// Bundle couples the four artifacts of one training run. Every artifact
// carries the run ID; decoding refuses bundles whose IDs disagree, so a
// scaler or feature list from one run can never be combined with a model
// from another.
type Bundle struct {
	RunID      string
	Direction  *LogisticClassifier
	Return     *ReturnRegressor
	Scaler     *MinMaxScaler
	FeatureSet []string
}

type directionArtifact struct {
	RunID string `json:"run_id"`
	LogisticClassifier
}

type returnArtifact struct {
	RunID string `json:"run_id"`
	ReturnRegressor
}

type scalerArtifact struct {
	RunID string `json:"run_id"`
	MinMaxScaler
}

type featureListArtifact struct {
	RunID string   `json:"run_id"`
	Names []string `json:"features"`
}

// newRunID tags a training run. Uniqueness matters only per symbol and
// wall-clock nanoseconds are plenty for that.
func newRunID(symbol string, now time.Time) string {
	return fmt.Sprintf("%s-%d", symbol, now.UnixNano())
}

// Encode serializes the bundle into the four store payloads.
func (b *Bundle) Encode() (map[domrepo.ArtifactKind][]byte, error) {
	parts := map[domrepo.ArtifactKind]interface{}{
		domrepo.ArtifactDirectionModel: directionArtifact{RunID: b.RunID, LogisticClassifier: *b.Direction},
		domrepo.ArtifactReturnModel:    returnArtifact{RunID: b.RunID, ReturnRegressor: *b.Return},
		domrepo.ArtifactScaler:         scalerArtifact{RunID: b.RunID, MinMaxScaler: *b.Scaler},
		domrepo.ArtifactFeatureList:    featureListArtifact{RunID: b.RunID, Names: b.FeatureSet},
	}
	out := make(map[domrepo.ArtifactKind][]byte, len(parts))
	for kind, v := range parts {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", kind, err)
		}
		out[kind] = raw
	}
	return out, nil
}

// DecodeBundle rebuilds a bundle from the store payloads, verifying all
// four artifacts come from the same training run.
func DecodeBundle(raw map[domrepo.ArtifactKind][]byte) (*Bundle, error) {
	for _, kind := range domrepo.AllArtifactKinds {
		if _, ok := raw[kind]; !ok {
			return nil, fmt.Errorf("decode bundle: missing %s: %w", kind, models.ErrArtifactMismatch)
		}
	}

	var dir directionArtifact
	if err := json.Unmarshal(raw[domrepo.ArtifactDirectionModel], &dir); err != nil {
		return nil, fmt.Errorf("decode direction model: %w", err)
	}
	var ret returnArtifact
	if err := json.Unmarshal(raw[domrepo.ArtifactReturnModel], &ret); err != nil {
		return nil, fmt.Errorf("decode return model: %w", err)
	}
	var sc scalerArtifact
	if err := json.Unmarshal(raw[domrepo.ArtifactScaler], &sc); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	var fl featureListArtifact
	if err := json.Unmarshal(raw[domrepo.ArtifactFeatureList], &fl); err != nil {
		return nil, fmt.Errorf("decode feature list: %w", err)
	}

	if dir.RunID == "" || dir.RunID != ret.RunID || dir.RunID != sc.RunID || dir.RunID != fl.RunID {
		return nil, fmt.Errorf("decode bundle: artifacts from different runs: %w", models.ErrArtifactMismatch)
	}
	if len(sc.Min) != len(fl.Names) || len(dir.Weights) != len(fl.Names) || len(ret.Weights) != len(fl.Names) {
		return nil, fmt.Errorf("decode bundle: artifact widths disagree: %w", models.ErrArtifactMismatch)
	}

	return &Bundle{
		RunID:      dir.RunID,
		Direction:  &dir.LogisticClassifier,
		Return:     &ret.ReturnRegressor,
		Scaler:     &sc.MinMaxScaler,
		FeatureSet: fl.Names,
	}, nil
}
