package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rollshift/rollshift-server/internal/domain"
)

// ActionRecordRepo implements [domain.ActionRecordRepository] backed by
// SQLite.
type ActionRecordRepo struct {
	DB *sql.DB
}

func (r *ActionRecordRepo) Put(ctx context.Context, rec domain.ActionRecord) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO action_records (rollout_id, app, kind, step, state, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (rollout_id, app, kind) DO UPDATE SET
		   step = excluded.step,
		   state = excluded.state,
		   updated_at = excluded.updated_at`,
		string(rec.RolloutID), string(rec.App), string(rec.Kind),
		rec.Step, string(rec.State), rec.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert action record: %w", err)
	}
	return nil
}

func (r *ActionRecordRepo) Get(ctx context.Context, rolloutID domain.RolloutID, app domain.AppID, kind domain.ActionKind) (domain.ActionRecord, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT rollout_id, app, kind, step, state, updated_at
		 FROM action_records WHERE rollout_id = ? AND app = ? AND kind = ?`,
		string(rolloutID), string(app), string(kind),
	)
	return scanActionRecord(row)
}

func (r *ActionRecordRepo) ListByRollout(ctx context.Context, rolloutID domain.RolloutID) ([]domain.ActionRecord, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT rollout_id, app, kind, step, state, updated_at
		 FROM action_records WHERE rollout_id = ?
		 ORDER BY step, app, kind`,
		string(rolloutID),
	)
	if err != nil {
		return nil, fmt.Errorf("list action records: %w", err)
	}
	defer rows.Close()

	var records []domain.ActionRecord
	for rows.Next() {
		rec, err := scanActionRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *ActionRecordRepo) DeleteByRollout(ctx context.Context, rolloutID domain.RolloutID) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM action_records WHERE rollout_id = ?`,
		string(rolloutID),
	)
	if err != nil {
		return fmt.Errorf("delete action records: %w", err)
	}
	return nil
}

func scanActionRecord(s scanner) (domain.ActionRecord, error) {
	var rec domain.ActionRecord
	var rolloutID, app, kind, stateStr, updatedAtStr string
	if err := s.Scan(&rolloutID, &app, &kind, &rec.Step, &stateStr, &updatedAtStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, fmt.Errorf("%w", domain.ErrNotFound)
		}
		return rec, fmt.Errorf("scan action record: %w", err)
	}
	rec.RolloutID = domain.RolloutID(rolloutID)
	rec.App = domain.AppID(app)
	rec.Kind = domain.ActionKind(kind)
	rec.State = domain.ActionState(stateStr)
	t, err := time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return rec, fmt.Errorf("parse updated_at: %w", err)
	}
	rec.UpdatedAt = t
	return rec, nil
}
