// internal/adapter/storage/report_store.go

// Package storage implements the optional report archive on PostgreSQL.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"brandtrust/internal/domain/report"
)

// ErrNotFound is returned when no archived report matches
var ErrNotFound = errors.New("report not found")

// ReportStore archives completed analysis reports
type ReportStore struct {
	db *pgxpool.Pool
}

// NewReportStore creates a new report store
func NewReportStore(db *pgxpool.Pool) *ReportStore {
	return &ReportStore{
		db: db,
	}
}

// SaveReport archives a report. Re-running an analysis for the same ID
// replaces the archived copy.
func (s *ReportStore) SaveReport(ctx context.Context, r report.Report) error {
	query := `
		INSERT INTO reports (
			id, brand, final_score, interpretation, report, generated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		ON CONFLICT (id) DO UPDATE
		SET
			brand = $2,
			final_score = $3,
			interpretation = $4,
			report = $5,
			generated_at = $6
	`

	reportJSON, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("error marshaling report: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		r.ID,
		r.Query.Brand,
		r.Trust.FinalScore,
		r.Trust.Interpretation,
		reportJSON,
		r.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// GetReport retrieves an archived report by run ID
func (s *ReportStore) GetReport(ctx context.Context, id string) (*report.Report, error) {
	query := `SELECT report FROM reports WHERE id = $1`

	var reportJSON []byte
	err := s.db.QueryRow(ctx, query, id).Scan(&reportJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying report: %w", err)
	}

	var r report.Report
	if err := json.Unmarshal(reportJSON, &r); err != nil {
		return nil, fmt.Errorf("error unmarshaling report: %w", err)
	}
	return &r, nil
}

// GetLatestForBrand retrieves the most recent archived report for a brand,
// matched case-insensitively
func (s *ReportStore) GetLatestForBrand(ctx context.Context, brandName string) (*report.Report, error) {
	query := `
		SELECT report
		FROM reports
		WHERE lower(brand) = lower($1)
		ORDER BY generated_at DESC
		LIMIT 1
	`

	var reportJSON []byte
	err := s.db.QueryRow(ctx, query, brandName).Scan(&reportJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying report: %w", err)
	}

	var r report.Report
	if err := json.Unmarshal(reportJSON, &r); err != nil {
		return nil, fmt.Errorf("error unmarshaling report: %w", err)
	}
	return &r, nil
}

// ListReports returns summaries of the most recent archived reports
func (s *ReportStore) ListReports(ctx context.Context, limit int) ([]report.Summary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, brand, final_score, interpretation, generated_at
		FROM reports
		ORDER BY generated_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var summaries []report.Summary
	for rows.Next() {
		var sum report.Summary
		if err := rows.Scan(&sum.ID, &sum.Brand, &sum.FinalScore, &sum.Interpretation, &sum.GeneratedAt); err != nil {
			return nil, fmt.Errorf("error scanning report summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return summaries, nil
}
