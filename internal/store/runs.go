package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run ID or input hash has no record.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded transform.
type Run struct {
	ID             string `json:"id"`
	Seq            int64  `json:"seq"`
	InputPath      string `json:"input_path"`
	OutputPath     string `json:"output_path"`
	InputHash      string `json:"input_hash"`
	OutputHash     string `json:"output_hash"`
	NormalizedTags int    `json:"normalized_tags"`
	SimplifiedRefs int    `json:"simplified_refs"`
	MergedAccounts int    `json:"merged_accounts"`
}

// NewRunID generates a new run ID using UUIDv7 (time-sortable).
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// RecordRun inserts a run and returns it with Seq assigned.
// An empty ID is replaced with NewRunID().
func (s *Store) RecordRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, input_path, output_path, input_hash, output_hash, normalized_tags, simplified_refs, merged_accounts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.InputPath,
		run.OutputPath,
		run.InputHash,
		run.OutputHash,
		run.NormalizedTags,
		run.SimplifiedRefs,
		run.MergedAccounts,
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	run.Seq = seq
	return run, nil
}

const selectRunColumns = `
	SELECT seq, id, input_path, output_path, input_hash, output_hash,
	       normalized_tags, simplified_refs, merged_accounts
	FROM runs`

// ListRuns returns the most recent runs, newest first.
// limit <= 0 returns all runs. Returns an empty slice (not nil) when there are none.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := selectRunColumns + ` ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run with the given ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, selectRunColumns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// LatestRunForInput returns the most recent run whose input hashed to inputHash.
func (s *Store) LatestRunForInput(ctx context.Context, inputHash string) (Run, error) {
	row := s.db.QueryRowContext(ctx, selectRunColumns+` WHERE input_hash = ? ORDER BY seq DESC LIMIT 1`, inputHash)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: input %s", ErrRunNotFound, inputHash)
	}
	return run, err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	err := row.Scan(
		&run.Seq,
		&run.ID,
		&run.InputPath,
		&run.OutputPath,
		&run.InputHash,
		&run.OutputHash,
		&run.NormalizedTags,
		&run.SimplifiedRefs,
		&run.MergedAccounts,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}
