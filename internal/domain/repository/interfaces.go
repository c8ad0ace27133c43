package repository

import (
	"context"
	"time"

	"StockSage/internal/domain/models"
)

// ArtifactKind names one of the four per-symbol model artifacts.
type ArtifactKind string

const (
	ArtifactDirectionModel ArtifactKind = "direction_model"
	ArtifactReturnModel    ArtifactKind = "return_model"
	ArtifactScaler         ArtifactKind = "scaler"
	ArtifactFeatureList    ArtifactKind = "feature_list"
)

// AllArtifactKinds lists every artifact kind a training run produces.
var AllArtifactKinds = []ArtifactKind{
	ArtifactDirectionModel,
	ArtifactReturnModel,
	ArtifactScaler,
	ArtifactFeatureList,
}

// ArtifactStore persists trained model artifacts keyed by (symbol, kind).
// WriteAll replaces all four artifacts of a symbol together; partial
// bundles must never become visible to readers.
type ArtifactStore interface {
	Exists(ctx context.Context, symbol string) (bool, error)
	WriteAll(ctx context.Context, symbol string, artifacts map[ArtifactKind][]byte) error
	ReadAll(ctx context.Context, symbol string) (map[ArtifactKind][]byte, error)
}

// BarStore caches fetched daily bars so repeated analysis requests do not
// refetch from the upstream provider.
type BarStore interface {
	Init(ctx context.Context) error
	GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error)
	PutBars(ctx context.Context, symbol string, bars []models.Bar) error
	Health(ctx context.Context) error
	Close() error
}

// EventPublisher emits completed recommendations to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload interface{}) error
	Close() error
}
