// Package repository provides the persistence implementations: a
// ClickHouse daily-bar cache and a filesystem model-artifact store.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	pkgch "StockSage/pkg/clickhouse"
	applogger "StockSage/pkg/logger"
)

const barsTable = "stocksage.daily_bars"

var barSchema = []string{
	`CREATE DATABASE IF NOT EXISTS stocksage`,
	`CREATE TABLE IF NOT EXISTS stocksage.daily_bars (
        day     Date,
        symbol  String,
        open    Float64,
        high    Float64,
        low     Float64,
        close   Float64,
        vol     Float64
    ) ENGINE = ReplacingMergeTree
    ORDER BY (symbol, day)`,
}

// CHBarStore implements BarStore backed by ClickHouse. Re-inserting a
// (symbol, day) pair replaces the previous row, so refreshed fetches
// converge instead of duplicating.
type CHBarStore struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client) *CHBarStore {
	return &CHBarStore{ch: ch, db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) { s.l = l }

var _ domrepo.BarStore = (*CHBarStore)(nil)

// Init ensures the database and table exist (idempotent).
func (s *CHBarStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, barSchema)
}

func (s *CHBarStore) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	start := time.Now()
	const q = `
        SELECT day, open, high, low, close, vol
        FROM ` + barsTable + ` FINAL
        WHERE symbol = ? AND day >= ? AND day <= ?
        ORDER BY day ASC
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_bars query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.Bar, 0, 512)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_bars scan error",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse get_bars ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHBarStore) PutBars(ctx context.Context, symbol string, bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put bars begin: %w", err)
	}
	const q = `INSERT INTO ` + barsTable + ` (day, symbol, open, high, low, close, vol) VALUES (?, ?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("put bars prepare: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, b.Date, symbol, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			_ = tx.Rollback()
			if s.l != nil {
				s.l.Error("clickhouse put_bars exec error",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("put bars exec: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put bars commit: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse put_bars ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(bars)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHBarStore) Health(ctx context.Context) error { return s.ch.Health(ctx) }

func (s *CHBarStore) Close() error { return s.ch.Close() }
