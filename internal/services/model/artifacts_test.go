package model

import (
	"errors"
	"testing"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
)

func testBundle(runID string) *Bundle {
	return &Bundle{
		RunID:      runID,
		Direction:  &LogisticClassifier{Weights: []float64{0.1, -0.2}, Bias: 0.05},
		Return:     &ReturnRegressor{Weights: []float64{0.3, 0.4}, Bias: -0.01},
		Scaler:     &MinMaxScaler{Min: []float64{0, -1}, Max: []float64{1, 1}},
		FeatureSet: []string{"return_1d", "momentum_5d"},
	}
}

func TestBundleRoundTrip(t *testing.T) {
	b := testBundle("INFY.NS-1")
	raw, err := b.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, kind := range domrepo.AllArtifactKinds {
		if _, ok := raw[kind]; !ok {
			t.Fatalf("missing encoded %s", kind)
		}
	}
	got, err := DecodeBundle(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID != b.RunID {
		t.Fatalf("run ID %q, want %q", got.RunID, b.RunID)
	}
	if got.Direction.Bias != b.Direction.Bias || got.Return.Bias != b.Return.Bias {
		t.Fatalf("model coefficients lost in round trip")
	}
	if len(got.FeatureSet) != 2 || got.FeatureSet[0] != "return_1d" {
		t.Fatalf("unexpected feature set %v", got.FeatureSet)
	}
}

func TestDecodeBundleMissingKind(t *testing.T) {
	raw, err := testBundle("INFY.NS-1").Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	delete(raw, domrepo.ArtifactScaler)
	if _, err := DecodeBundle(raw); !errors.Is(err, models.ErrArtifactMismatch) {
		t.Fatalf("expected ErrArtifactMismatch, got %v", err)
	}
}

func TestDecodeBundleMixedRuns(t *testing.T) {
	a, err := testBundle("INFY.NS-1").Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := testBundle("INFY.NS-2").Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	a[domrepo.ArtifactScaler] = b[domrepo.ArtifactScaler]
	if _, err := DecodeBundle(a); !errors.Is(err, models.ErrArtifactMismatch) {
		t.Fatalf("expected ErrArtifactMismatch for mixed runs, got %v", err)
	}
}

func TestDecodeBundleWidthMismatch(t *testing.T) {
	b := testBundle("INFY.NS-1")
	b.FeatureSet = []string{"return_1d", "momentum_5d", "extra"}
	raw, err := b.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeBundle(raw); !errors.Is(err, models.ErrArtifactMismatch) {
		t.Fatalf("expected ErrArtifactMismatch for width drift, got %v", err)
	}
}
