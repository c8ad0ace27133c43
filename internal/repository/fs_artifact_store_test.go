package repository

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
)

func fullBundle(tag string) map[domrepo.ArtifactKind][]byte {
	out := make(map[domrepo.ArtifactKind][]byte, len(domrepo.AllArtifactKinds))
	for _, kind := range domrepo.AllArtifactKinds {
		out[kind] = []byte(`{"run_id":"` + tag + `","kind":"` + string(kind) + `"}`)
	}
	return out
}

func TestFSArtifactStoreLifecycle(t *testing.T) {
	store, err := NewFSArtifactStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	ok, err := store.Exists(ctx, "RELIANCE.NS")
	if err != nil || ok {
		t.Fatalf("fresh store: exists=%v err=%v", ok, err)
	}

	want := fullBundle("run-1")
	if err := store.WriteAll(ctx, "RELIANCE.NS", want); err != nil {
		t.Fatalf("write: %v", err)
	}
	ok, err = store.Exists(ctx, "RELIANCE.NS")
	if err != nil || !ok {
		t.Fatalf("after write: exists=%v err=%v", ok, err)
	}

	got, err := store.ReadAll(ctx, "RELIANCE.NS")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, kind := range domrepo.AllArtifactKinds {
		if !bytes.Equal(got[kind], want[kind]) {
			t.Fatalf("%s: got %s, want %s", kind, got[kind], want[kind])
		}
	}
}

func TestFSArtifactStoreReplacesPreviousRun(t *testing.T) {
	store, err := NewFSArtifactStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := store.WriteAll(ctx, "TCS.NS", fullBundle("run-1")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	want := fullBundle("run-2")
	if err := store.WriteAll(ctx, "TCS.NS", want); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := store.ReadAll(ctx, "TCS.NS")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got[domrepo.ArtifactScaler], want[domrepo.ArtifactScaler]) {
		t.Fatalf("expected run-2 artifacts, got %s", got[domrepo.ArtifactScaler])
	}
}

func TestFSArtifactStoreRejectsPartialBundle(t *testing.T) {
	store, err := NewFSArtifactStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	partial := fullBundle("run-1")
	delete(partial, domrepo.ArtifactFeatureList)
	err = store.WriteAll(context.Background(), "TCS.NS", partial)
	if !errors.Is(err, models.ErrArtifactMismatch) {
		t.Fatalf("expected ErrArtifactMismatch, got %v", err)
	}
}

func TestFSArtifactStoreReadMissing(t *testing.T) {
	store, err := NewFSArtifactStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	_, err = store.ReadAll(context.Background(), "UNKNOWN")
	if !errors.Is(err, models.ErrArtifactMismatch) {
		t.Fatalf("expected ErrArtifactMismatch on missing symbol, got %v", err)
	}
}

func TestSanitizeSymbol(t *testing.T) {
	cases := map[string]string{
		"reliance.ns": "RELIANCE.NS",
		" TCS.NS ":    "TCS.NS",
		"a/b\\c":      "A_B_C",
		"BRK-B":       "BRK-B",
	}
	for in, want := range cases {
		if got := sanitizeSymbol(in); got != want {
			t.Fatalf("sanitizeSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}
