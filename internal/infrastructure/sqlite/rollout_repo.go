package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rollshift/rollshift-server/internal/domain"
)

// RolloutRepo implements [domain.RolloutRepository] backed by SQLite.
type RolloutRepo struct {
	DB *sql.DB
}

func (r *RolloutRepo) Create(ctx context.Context, rollout domain.Rollout) error {
	strategy, err := json.Marshal(rollout.Strategy)
	if err != nil {
		return fmt.Errorf("marshal strategy: %w", err)
	}
	var plan []byte
	if !rollout.Plan.Empty() {
		plan, err = json.Marshal(rollout.Plan)
		if err != nil {
			return fmt.Errorf("marshal plan: %w", err)
		}
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO rollouts (id, origin_snapshot, target_snapshot, strategy, plan, state)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(rollout.ID), string(rollout.Origin), string(rollout.Target),
		string(strategy), nullString(plan), string(rollout.State),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("rollout %q: %w", rollout.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert rollout: %w", err)
	}
	return nil
}

func (r *RolloutRepo) Get(ctx context.Context, id domain.RolloutID) (domain.Rollout, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, origin_snapshot, target_snapshot, strategy, plan, state
		 FROM rollouts WHERE id = ?`,
		string(id),
	)
	return scanRollout(row)
}

func (r *RolloutRepo) List(ctx context.Context) ([]domain.Rollout, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, origin_snapshot, target_snapshot, strategy, plan, state FROM rollouts`,
	)
	if err != nil {
		return nil, fmt.Errorf("list rollouts: %w", err)
	}
	defer rows.Close()

	var rollouts []domain.Rollout
	for rows.Next() {
		rollout, err := scanRollout(rows)
		if err != nil {
			return nil, err
		}
		rollouts = append(rollouts, rollout)
	}
	return rollouts, rows.Err()
}

func (r *RolloutRepo) Update(ctx context.Context, rollout domain.Rollout) error {
	strategy, _ := json.Marshal(rollout.Strategy)
	var plan []byte
	if !rollout.Plan.Empty() {
		plan, _ = json.Marshal(rollout.Plan)
	}

	res, err := r.DB.ExecContext(ctx,
		`UPDATE rollouts
		 SET origin_snapshot = ?, target_snapshot = ?, strategy = ?, plan = ?, state = ?
		 WHERE id = ?`,
		string(rollout.Origin), string(rollout.Target), string(strategy),
		nullString(plan), string(rollout.State), string(rollout.ID),
	)
	if err != nil {
		return fmt.Errorf("update rollout: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("rollout %q: %w", rollout.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *RolloutRepo) Delete(ctx context.Context, id domain.RolloutID) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM rollouts WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete rollout: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("rollout %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanRollout(s scanner) (domain.Rollout, error) {
	var rollout domain.Rollout
	var id, origin, target, strategyJSON, stateStr string
	var planJSON sql.NullString
	if err := s.Scan(&id, &origin, &target, &strategyJSON, &planJSON, &stateStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rollout, fmt.Errorf("%w", domain.ErrNotFound)
		}
		return rollout, fmt.Errorf("scan rollout: %w", err)
	}
	rollout.ID = domain.RolloutID(id)
	rollout.Origin = domain.SnapshotID(origin)
	rollout.Target = domain.SnapshotID(target)
	rollout.State = domain.RolloutState(stateStr)

	if err := json.Unmarshal([]byte(strategyJSON), &rollout.Strategy); err != nil {
		return rollout, fmt.Errorf("unmarshal strategy: %w", err)
	}
	if planJSON.Valid {
		if err := json.Unmarshal([]byte(planJSON.String), &rollout.Plan); err != nil {
			return rollout, fmt.Errorf("unmarshal plan: %w", err)
		}
	}
	return rollout, nil
}

func nullString(b []byte) sql.NullString {
	if b == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
