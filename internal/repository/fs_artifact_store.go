package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	applogger "StockSage/pkg/logger"
)

// FSArtifactStore implements ArtifactStore on the local filesystem.
// Each symbol owns one directory holding the four artifact files. A
// bundle is staged into a temporary directory and swapped in with a
// rename, so readers never observe a half-written run.
type FSArtifactStore struct {
	root string
	l    *applogger.Logger
}

func NewFSArtifactStore(root string, l *applogger.Logger) (*FSArtifactStore, error) {
	if root == "" {
		root = "model_files"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("artifact root: %w", err)
	}
	return &FSArtifactStore{root: root, l: l}, nil
}

var _ domrepo.ArtifactStore = (*FSArtifactStore)(nil)

func (s *FSArtifactStore) Exists(ctx context.Context, symbol string) (bool, error) {
	dir := s.symbolDir(symbol)
	for _, kind := range domrepo.AllArtifactKinds {
		if _, err := os.Stat(filepath.Join(dir, fileName(kind))); err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, fmt.Errorf("stat artifact %s/%s: %w", symbol, kind, err)
		}
	}
	return true, nil
}

func (s *FSArtifactStore) WriteAll(ctx context.Context, symbol string, artifacts map[domrepo.ArtifactKind][]byte) error {
	for _, kind := range domrepo.AllArtifactKinds {
		if _, ok := artifacts[kind]; !ok {
			return fmt.Errorf("write artifacts %s: missing %s: %w", symbol, kind, models.ErrArtifactMismatch)
		}
	}

	dir := s.symbolDir(symbol)
	staging, err := os.MkdirTemp(s.root, "."+filepath.Base(dir)+"-*")
	if err != nil {
		return fmt.Errorf("stage artifacts %s: %w", symbol, err)
	}
	defer os.RemoveAll(staging)

	for kind, data := range artifacts {
		if err := os.WriteFile(filepath.Join(staging, fileName(kind)), data, 0o644); err != nil {
			return fmt.Errorf("write artifact %s/%s: %w", symbol, kind, err)
		}
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("replace artifacts %s: %w", symbol, err)
	}
	if err := os.Rename(staging, dir); err != nil {
		return fmt.Errorf("commit artifacts %s: %w", symbol, err)
	}
	if s.l != nil {
		s.l.Info("artifacts written",
			applogger.String("symbol", symbol),
			applogger.String("dir", dir),
		)
	}
	return nil
}

func (s *FSArtifactStore) ReadAll(ctx context.Context, symbol string) (map[domrepo.ArtifactKind][]byte, error) {
	dir := s.symbolDir(symbol)
	out := make(map[domrepo.ArtifactKind][]byte, len(domrepo.AllArtifactKinds))
	for _, kind := range domrepo.AllArtifactKinds {
		data, err := os.ReadFile(filepath.Join(dir, fileName(kind)))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("read artifacts %s: missing %s: %w", symbol, kind, models.ErrArtifactMismatch)
			}
			return nil, fmt.Errorf("read artifact %s/%s: %w", symbol, kind, err)
		}
		out[kind] = data
	}
	return out, nil
}

func (s *FSArtifactStore) symbolDir(symbol string) string {
	return filepath.Join(s.root, sanitizeSymbol(symbol))
}

func fileName(kind domrepo.ArtifactKind) string {
	return string(kind) + ".json"
}

// sanitizeSymbol makes a symbol safe as a directory name. Exchange
// suffixes like "RELIANCE.NS" keep the dot; path separators do not
// survive.
func sanitizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, symbol)
}
