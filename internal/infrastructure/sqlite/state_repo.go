package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rollshift/rollshift-server/internal/domain"
)

// StateRepo implements [domain.StateRepository] backed by SQLite. The
// snapshot tree is stored as one JSON document; snapshots are read and
// written whole.
type StateRepo struct {
	DB *sql.DB
}

func (r *StateRepo) Put(ctx context.Context, snapshot domain.StateSnapshot) error {
	root, err := json.Marshal(snapshot.Root)
	if err != nil {
		return fmt.Errorf("marshal state tree: %w", err)
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO state_snapshots (id, root) VALUES (?, ?)
		 ON CONFLICT (id) DO UPDATE SET root = excluded.root`,
		string(snapshot.ID), string(root),
	)
	if err != nil {
		return fmt.Errorf("upsert state snapshot: %w", err)
	}
	return nil
}

func (r *StateRepo) Get(ctx context.Context, id domain.SnapshotID) (domain.StateSnapshot, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, root FROM state_snapshots WHERE id = ?`,
		string(id),
	)
	return scanSnapshot(row)
}

func (r *StateRepo) List(ctx context.Context) ([]domain.StateSnapshot, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, root FROM state_snapshots`)
	if err != nil {
		return nil, fmt.Errorf("list state snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.StateSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

func (r *StateRepo) Delete(ctx context.Context, id domain.SnapshotID) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM state_snapshots WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete state snapshot: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("state snapshot %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanSnapshot(s scanner) (domain.StateSnapshot, error) {
	var snap domain.StateSnapshot
	var id, rootJSON string
	if err := s.Scan(&id, &rootJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snap, fmt.Errorf("%w", domain.ErrNotFound)
		}
		return snap, fmt.Errorf("scan state snapshot: %w", err)
	}
	snap.ID = domain.SnapshotID(id)
	if err := json.Unmarshal([]byte(rootJSON), &snap.Root); err != nil {
		return snap, fmt.Errorf("unmarshal state tree: %w", err)
	}
	return snap, nil
}
