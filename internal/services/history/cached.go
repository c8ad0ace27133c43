// Package history layers a bar cache over the upstream history
// provider so repeated analyses of the same symbol do not hit the
// external API.
package history

import (
	"context"
	"time"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	domsvc "StockSage/internal/domain/service"
	"StockSage/internal/service/metrics"
	applogger "StockSage/pkg/logger"
	xutil "StockSage/pkg/util"
)

// minCoverage is the fraction of the requested window's trading days
// the cache must hold before it is served without an upstream fetch.
const minCoverage = 0.6

// CachedProvider is a read-through HistoryProvider. Cache reads that
// fail fall through to the upstream provider; cache writes are
// best-effort and never fail the request.
type CachedProvider struct {
	upstream domsvc.HistoryProvider
	store    domrepo.BarStore
	log      *applogger.Logger
	now      func() time.Time
}

func NewCachedProvider(upstream domsvc.HistoryProvider, store domrepo.BarStore, log *applogger.Logger) *CachedProvider {
	return &CachedProvider{upstream: upstream, store: store, log: log, now: time.Now}
}

var _ domsvc.HistoryProvider = (*CachedProvider)(nil)

func (p *CachedProvider) FetchHistory(ctx context.Context, symbol string, tf domrepo.Timeframe) (*models.Series, error) {
	to := p.now()
	from, to := xutil.AlignFromTo(to.Add(-tf.Lookback()), to, string(tf))

	if cached := p.fromCache(ctx, symbol, from, to, tf); cached != nil {
		return cached, nil
	}

	series, err := p.upstream.FetchHistory(ctx, symbol, tf)
	if err != nil {
		return nil, err
	}
	if !series.Empty() {
		if err := p.store.PutBars(ctx, symbol, series.Bars); err != nil {
			p.log.Warn("bar cache write failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
	}
	return series, nil
}

func (p *CachedProvider) fromCache(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) *models.Series {
	bars, err := p.store.GetBars(ctx, symbol, from, to)
	if err != nil {
		p.log.Warn("bar cache read failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil
	}
	if len(bars) == 0 || !fresh(bars, p.now()) || !covers(bars, tf) {
		return nil
	}
	metrics.DataFetches.WithLabelValues("cache", "ok").Inc()
	series := &models.Series{Symbol: symbol, Bars: bars}
	series.Normalize()
	return series
}

// fresh requires the newest cached bar to be from the current or the
// previous calendar day, so intraday refreshes still reach upstream at
// most once per day per symbol.
func fresh(bars []models.Bar, now time.Time) bool {
	newest := bars[len(bars)-1].Date
	return now.Sub(newest) < 48*time.Hour
}

// covers checks the cache holds a reasonable share of the window's
// trading days (roughly 5 of every 7 calendar days).
func covers(bars []models.Bar, tf domrepo.Timeframe) bool {
	tradingDays := float64(tf.Lookback()/(24*time.Hour)) * 5 / 7
	return float64(len(bars)) >= tradingDays*minCoverage
}
