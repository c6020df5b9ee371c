// Package metrics records AI helper usage and reports process health.
package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"menu-planner/internal/shared"
)

// Call is one recorded AI helper call.
type Call struct {
	Helper           string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Latency          time.Duration
	At               time.Time
}

// CallFromMeta turns helper call metadata into a Call stamped now.
func CallFromMeta(meta shared.CallMeta) Call {
	return Call{
		Helper:           meta.Helper,
		Model:            meta.Usage.Model,
		PromptTokens:     meta.Usage.PromptTokens,
		CompletionTokens: meta.Usage.CompletionTokens,
		Latency:          meta.Latency,
		At:               time.Now().UTC(),
	}
}

// Store keeps AI call records in SQLite.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record stores one call. A zero At means now.
func (s *Store) Record(ctx context.Context, c Call) error {
	at := c.At
	if at.IsZero() {
		at = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_calls (helper, model, prompt_tokens, completion_tokens, latency_ms, called_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.Helper, c.Model, c.PromptTokens, c.CompletionTokens, c.Latency.Milliseconds(), at.UTC())
	if err != nil {
		return fmt.Errorf("failed to record ai call: %w", err)
	}
	return nil
}

// RecordUsage stores the usage of a helper call. Calls that report no
// tokens are skipped.
func (s *Store) RecordUsage(ctx context.Context, meta shared.CallMeta) error {
	if meta.Usage.Empty() {
		return nil
	}
	return s.Record(ctx, CallFromMeta(meta))
}

// DailyUsage sums one UTC day of calls.
type DailyUsage struct {
	Date             string `json:"date"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	Calls            int    `json:"calls"`
}

// Tokens is prompt plus completion tokens.
func (d DailyUsage) Tokens() int { return d.PromptTokens + d.CompletionTokens }

// GetDailyUsage sums the calls of the last days, newest day first. Days
// without calls are absent.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(called_at, 1, 10) AS day,
			COALESCE(SUM(prompt_tokens), 0), COALESCE(SUM(completion_tokens), 0), COUNT(*)
		FROM ai_calls
		WHERE called_at >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	out := []DailyUsage{}
	for rows.Next() {
		var d DailyUsage
		if err := rows.Scan(&d.Date, &d.PromptTokens, &d.CompletionTokens, &d.Calls); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily usage: %w", err)
	}
	return out, nil
}

// Cleanup deletes calls older than olderThanDays and reports how many
// rows went.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(ctx, `DELETE FROM ai_calls WHERE called_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up ai calls: %w", err)
	}
	return res.RowsAffected()
}
