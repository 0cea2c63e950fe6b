package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/framecheck/internal/frame"
	"github.com/roach88/framecheck/internal/ir"
)

// RunInput is everything recorded for one check run.
type RunInput struct {
	// SpecDir is the directory the spec was loaded from.
	SpecDir string

	// Selection is the requested transitions; empty means all.
	Selection []string

	Spec   *ir.Spec
	Result *frame.Result

	// Err is the fatal error that stopped the run, if any. Reports
	// produced before the error are still recorded.
	Err error
}

// RecordRun appends a run with its reports and diagnostics in a single
// transaction and returns the new run ID.
//
// The run's seq is one past the highest seq in the store, so runs list in
// the order they were recorded.
func (s *Store) RecordRun(ctx context.Context, in RunInput) (string, error) {
	if in.Spec == nil {
		return "", fmt.Errorf("record run: spec is nil")
	}
	result := in.Result
	if result == nil {
		result = &frame.Result{}
	}

	specHash, err := ir.SpecHash(in.Spec)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	selection, err := marshalTokens(in.Selection)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	var defs strings.Builder
	if err := frame.RenderDefinitionDiagnostics(&defs, result.Definitions); err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	errText := ""
	if in.Err != nil {
		errText = in.Err.Error()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("record run: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var seq int64
	if err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return "", fmt.Errorf("record run: next seq: %w", err)
	}

	id := s.ids.Generate()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, spec_dir, selection, spec_hash, report_hash, engine_version, ir_version, error, definitions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		seq,
		in.SpecDir,
		selection,
		specHash,
		ir.ReportHash(result.Text()),
		ir.EngineVersion,
		ir.IRVersion,
		errText,
		defs.String(),
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	for i, rep := range result.Reports {
		if err = writeReport(ctx, tx, id, i, rep); err != nil {
			return "", fmt.Errorf("record run: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("record run: commit: %w", err)
	}
	return id, nil
}

func writeReport(ctx context.Context, tx *sql.Tx, runID string, pos int, rep *frame.Report) error {
	if rep == nil {
		return errors.New("nil report")
	}
	commitments, err := marshalCommitments(rep.Commitments)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO reports (run_id, position, predicate, status, commitments, text)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, pos, rep.Predicate, string(rep.Status), commitments, rep.Text())
	if err != nil {
		return fmt.Errorf("write report %s: %w", rep.Predicate, err)
	}

	for j, d := range rep.Diagnostics {
		tokens, err := marshalTokens(d.Tokens)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO diagnostics (run_id, report_position, position, kind, field, tokens)
			VALUES (?, ?, ?, ?, ?, ?)
		`, runID, pos, j, string(d.Kind), d.Field, tokens)
		if err != nil {
			return fmt.Errorf("write diagnostic %s[%d]: %w", rep.Predicate, j, err)
		}
	}
	return nil
}
