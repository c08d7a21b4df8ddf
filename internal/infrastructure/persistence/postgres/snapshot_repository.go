package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/application/dto"
	"github.com/dreschagin/system-diagnostics/internal/application/port"
	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
	_ "github.com/lib/pq"
)

// SnapshotRepository persists cycle history and the alert log in PostgreSQL.
// Implements port.SnapshotRepository.
type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{
		db: db,
	}
}

// EnsureSchema creates the history tables if they do not exist. Called once
// at startup; real deployments can manage the schema externally and skip it.
func (r *SnapshotRepository) EnsureSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS system_snapshots (
			id          UUID PRIMARY KEY,
			captured_at TIMESTAMPTZ NOT NULL,
			diagnostics JSONB NOT NULL,
			analysis    JSONB NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_system_snapshots_captured_at
			ON system_snapshots (captured_at DESC);

		CREATE TABLE IF NOT EXISTS alert_log (
			id             UUID PRIMARY KEY,
			channel        TEXT NOT NULL,
			category       TEXT NOT NULL,
			severity       TEXT NOT NULL,
			message        TEXT NOT NULL,
			dedup_key      TEXT NOT NULL,
			sent_at        TIMESTAMPTZ NOT NULL,
			delivery_error TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_alert_log_sent_at
			ON alert_log (sent_at DESC);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveCycle appends one evaluated snapshot. The payloads are stored as the
// same JSON shape the API serves, so history rows replay directly.
func (r *SnapshotRepository) SaveCycle(ctx context.Context, snapshot *entity.Snapshot, result *entity.AnalysisResult) error {
	view := dto.FromCycle(snapshot, result)

	diagnostics, err := json.Marshal(view.Diagnostics)
	if err != nil {
		return fmt.Errorf("failed to marshal diagnostics: %w", err)
	}
	analysis, err := json.Marshal(view.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `
		INSERT INTO system_snapshots (id, captured_at, diagnostics, analysis)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, snapshot.ID(), snapshot.Timestamp(), diagnostics, analysis); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// SaveAlerts appends alert records in one transaction.
func (r *SnapshotRepository) SaveAlerts(ctx context.Context, records []entity.AlertRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO alert_log (id, channel, category, severity, message, dedup_key, sent_at, delivery_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err = stmt.ExecContext(ctx,
			rec.ID,
			rec.Channel,
			rec.Category.String(),
			rec.Severity.String(),
			rec.Message,
			rec.DedupKey,
			rec.SentAt,
			rec.DeliveryError,
		)
		if err != nil {
			return fmt.Errorf("failed to insert alert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LatestCycle returns the newest persisted cycle, or nil when history is
// empty.
func (r *SnapshotRepository) LatestCycle(ctx context.Context) (*port.CycleRecord, error) {
	query := `
		SELECT id, captured_at, diagnostics, analysis
		FROM system_snapshots
		ORDER BY captured_at DESC
		LIMIT 1
	`

	record, err := scanCycleRow(r.db.QueryRowContext(ctx, query))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest cycle: %w", err)
	}
	return record, nil
}

// CyclesInRange returns cycles between from and to, newest first.
func (r *SnapshotRepository) CyclesInRange(ctx context.Context, from, to time.Time, limit int) ([]port.CycleRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, captured_at, diagnostics, analysis
		FROM system_snapshots
		WHERE captured_at >= $1 AND captured_at <= $2
		ORDER BY captured_at DESC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycles: %w", err)
	}
	defer rows.Close()

	var records []port.CycleRecord
	for rows.Next() {
		record, err := scanCycleRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cycles: %w", err)
	}
	return records, nil
}

// DeleteOlderThan prunes cycles and alert records beyond the retention
// window.
func (r *SnapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM system_snapshots WHERE captured_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned snapshots: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM alert_log WHERE sent_at < $1`, cutoff); err != nil {
		return deleted, fmt.Errorf("failed to prune alert log: %w", err)
	}
	return deleted, nil
}

func scanCycleRow(row interface {
	Scan(dest ...interface{}) error
}) (*port.CycleRecord, error) {
	var record port.CycleRecord
	var diagnostics, analysis []byte

	if err := row.Scan(&record.ID, &record.CapturedAt, &diagnostics, &analysis); err != nil {
		return nil, err
	}

	record.Diagnostics = json.RawMessage(diagnostics)
	record.Analysis = json.RawMessage(analysis)
	return &record, nil
}
