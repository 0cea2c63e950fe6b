package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrRunNotFound is returned by LoadRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Run is a recorded check run.
type Run struct {
	ID            string   `json:"id"`
	Seq           int64    `json:"seq"`
	SpecDir       string   `json:"spec_dir"`
	Selection     []string `json:"selection,omitempty"`
	SpecHash      string   `json:"spec_hash"`
	ReportHash    string   `json:"report_hash"`
	EngineVersion string   `json:"engine_version"`
	IRVersion     string   `json:"ir_version"`
	Error         string   `json:"error,omitempty"`
	Definitions   string   `json:"definitions,omitempty"`
	Reports       []Report `json:"reports,omitempty"`
}

// Text reassembles the run's rendered output: definition diagnostics
// followed by each report. Its ReportHash matches the stored report_hash.
func (r *Run) Text() string {
	var b strings.Builder
	b.WriteString(r.Definitions)
	for _, rep := range r.Reports {
		b.WriteString(rep.Text)
	}
	return b.String()
}

// Report is one recorded transition report.
type Report struct {
	Predicate   string       `json:"predicate"`
	Status      string       `json:"status"`
	Commitments string       `json:"commitments"`
	Text        string       `json:"text"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Diagnostic is one recorded finding.
type Diagnostic struct {
	Kind   string   `json:"kind"`
	Field  string   `json:"field,omitempty"`
	Tokens []string `json:"tokens,omitempty"`
}

// ListRuns returns the most recent runs, newest first, without their
// reports. A non-positive limit returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, seq, spec_dir, selection, spec_hash, report_hash, engine_version, ir_version, error, definitions
		FROM runs
		ORDER BY seq DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
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

// LoadRun returns a run with its reports in declaration order and each
// report's diagnostics in report order.
func (s *Store) LoadRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, spec_dir, selection, spec_hash, report_hash, engine_version, ir_version, error, definitions
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	reports, err := s.readReports(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Reports = reports
	return &run, nil
}

func (s *Store) readReports(ctx context.Context, runID string) ([]Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT predicate, status, commitments, text
		FROM reports
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var r Report
		if err := rows.Scan(&r.Predicate, &r.Status, &r.Commitments, &r.Text); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	rows.Close()

	for i := range reports {
		diags, err := s.readDiagnostics(ctx, runID, i)
		if err != nil {
			return nil, err
		}
		reports[i].Diagnostics = diags
	}
	return reports, nil
}

func (s *Store) readDiagnostics(ctx context.Context, runID string, pos int) ([]Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, field, tokens
		FROM diagnostics
		WHERE run_id = ? AND report_position = ?
		ORDER BY position ASC
	`, runID, pos)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer rows.Close()

	var diags []Diagnostic
	for rows.Next() {
		var d Diagnostic
		var tokens string
		if err := rows.Scan(&d.Kind, &d.Field, &tokens); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		if d.Tokens, err = unmarshalTokens(tokens); err != nil {
			return nil, err
		}
		diags = append(diags, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diagnostics: %w", err)
	}
	return diags, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var selection string
	err := row.Scan(&r.ID, &r.Seq, &r.SpecDir, &selection, &r.SpecHash, &r.ReportHash, &r.EngineVersion, &r.IRVersion, &r.Error, &r.Definitions)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if r.Selection, err = unmarshalTokens(selection); err != nil {
		return Run{}, err
	}
	return r, nil
}
