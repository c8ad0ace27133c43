package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	applogger "StockSage/pkg/logger"
)

type stubUpstream struct {
	series *models.Series
	err    error
	calls  int
}

func (u *stubUpstream) FetchHistory(context.Context, string, domrepo.Timeframe) (*models.Series, error) {
	u.calls++
	return u.series, u.err
}

type stubBarStore struct {
	bars    []models.Bar
	getErr  error
	putErr  error
	puts    int
	lastPut []models.Bar
}

func (s *stubBarStore) Init(context.Context) error { return nil }

func (s *stubBarStore) GetBars(context.Context, string, time.Time, time.Time) ([]models.Bar, error) {
	return s.bars, s.getErr
}

func (s *stubBarStore) PutBars(_ context.Context, _ string, bars []models.Bar) error {
	s.puts++
	s.lastPut = bars
	return s.putErr
}

func (s *stubBarStore) Health(context.Context) error { return nil }

func (s *stubBarStore) Close() error { return nil }

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// barsEnding builds n consecutive daily bars whose newest bar lands on
// end's calendar day.
func barsEnding(n int, end time.Time) []models.Bar {
	out := make([]models.Bar, n)
	for i := range out {
		day := end.AddDate(0, 0, i-n+1)
		out[i] = models.Bar{
			Date:   time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Open:   100,
			High:   101,
			Low:    99,
			Close:  100.5,
			Volume: 1000,
		}
	}
	return out
}

func newCached(upstream *stubUpstream, store *stubBarStore, now time.Time, t *testing.T) *CachedProvider {
	p := NewCachedProvider(upstream, store, testLogger(t))
	p.now = func() time.Time { return now }
	return p
}

func TestFetchHistoryServedFromCache(t *testing.T) {
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	upstream := &stubUpstream{err: errors.New("should not be called")}
	store := &stubBarStore{bars: barsEnding(22, now)}
	p := newCached(upstream, store, now, t)

	series, err := p.FetchHistory(context.Background(), "RELIANCE.NS", domrepo.TF1m)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if series.Len() != 22 {
		t.Fatalf("expected 22 cached bars, got %d", series.Len())
	}
	if upstream.calls != 0 {
		t.Fatalf("covered fresh cache must not reach upstream")
	}
}

func TestFetchHistoryStaleCacheRefetches(t *testing.T) {
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	upstream := &stubUpstream{series: &models.Series{Symbol: "RELIANCE.NS", Bars: barsEnding(22, now)}}
	store := &stubBarStore{bars: barsEnding(22, now.AddDate(0, 0, -5))}
	p := newCached(upstream, store, now, t)

	series, err := p.FetchHistory(context.Background(), "RELIANCE.NS", domrepo.TF1m)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if upstream.calls != 1 {
		t.Fatalf("stale cache must refetch, got %d calls", upstream.calls)
	}
	if store.puts != 1 || len(store.lastPut) != series.Len() {
		t.Fatalf("fresh bars must be written back, puts=%d", store.puts)
	}
}

func TestFetchHistorySparseCacheRefetches(t *testing.T) {
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	upstream := &stubUpstream{series: &models.Series{Symbol: "RELIANCE.NS", Bars: barsEnding(22, now)}}
	// Five bars cover far less than the one-month window.
	store := &stubBarStore{bars: barsEnding(5, now)}
	p := newCached(upstream, store, now, t)

	if _, err := p.FetchHistory(context.Background(), "RELIANCE.NS", domrepo.TF1m); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if upstream.calls != 1 {
		t.Fatalf("undercovered cache must refetch, got %d calls", upstream.calls)
	}
}

func TestFetchHistoryCacheReadFailureFallsThrough(t *testing.T) {
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	upstream := &stubUpstream{series: &models.Series{Symbol: "RELIANCE.NS", Bars: barsEnding(22, now)}}
	store := &stubBarStore{getErr: errors.New("connection refused")}
	p := newCached(upstream, store, now, t)

	series, err := p.FetchHistory(context.Background(), "RELIANCE.NS", domrepo.TF1m)
	if err != nil {
		t.Fatalf("cache failure must not fail the fetch: %v", err)
	}
	if series.Empty() || upstream.calls != 1 {
		t.Fatalf("expected upstream result, calls=%d", upstream.calls)
	}
}

func TestFetchHistoryCacheWriteFailureIgnored(t *testing.T) {
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	upstream := &stubUpstream{series: &models.Series{Symbol: "RELIANCE.NS", Bars: barsEnding(22, now)}}
	store := &stubBarStore{putErr: errors.New("disk full")}
	p := newCached(upstream, store, now, t)

	series, err := p.FetchHistory(context.Background(), "RELIANCE.NS", domrepo.TF1m)
	if err != nil {
		t.Fatalf("write-back failure must not fail the fetch: %v", err)
	}
	if series.Len() != 22 {
		t.Fatalf("unexpected series length %d", series.Len())
	}
}

func TestFetchHistoryEmptyUpstreamNotCached(t *testing.T) {
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	upstream := &stubUpstream{series: &models.Series{Symbol: "RELIANCE.NS"}}
	store := &stubBarStore{}
	p := newCached(upstream, store, now, t)

	series, err := p.FetchHistory(context.Background(), "RELIANCE.NS", domrepo.TF1m)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !series.Empty() {
		t.Fatalf("expected empty series")
	}
	if store.puts != 0 {
		t.Fatalf("empty series must not be written back")
	}
}
