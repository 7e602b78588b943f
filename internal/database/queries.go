package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zombar/docready/internal/models"
)

// SaveReport inserts or replaces a report and rebuilds its language index
// rows from the analysis payload.
func (db *DB) SaveReport(ctx context.Context, report *models.Report) error {
	analysisJSON, err := json.Marshal(report.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO reports (id, filename, analysis, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			analysis = excluded.analysis,
			updated_at = excluded.updated_at
	`, report.ID, report.Filename, string(analysisJSON), report.CreatedAt, report.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM report_langs WHERE report_id = ?", report.ID,
	); err != nil {
		return fmt.Errorf("failed to clear language index: %w", err)
	}
	for _, lang := range report.Analysis.Languages.LikelyLanguages {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO report_langs (report_id, lang) VALUES (?, ?)",
			report.ID, lang,
		); err != nil {
			return fmt.Errorf("failed to index language %q: %w", lang, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}
	return nil
}

// GetReport fetches a single report by ID, returning ErrNotFound when it
// does not exist.
func (db *DB) GetReport(ctx context.Context, id string) (*models.Report, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, filename, analysis, created_at, updated_at
		FROM reports WHERE id = ?
	`, id)
	return scanReport(row)
}

// ListReports returns reports newest first with limit/offset paging
func (db *DB) ListReports(ctx context.Context, limit, offset int) ([]*models.Report, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, filename, analysis, created_at, updated_at
		FROM reports
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()
	return collectReports(rows)
}

// DeleteReport removes a report; language index rows cascade
func (db *DB) DeleteReport(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetReportsByLanguage returns reports whose analysis hinted at the given
// language code, newest first.
func (db *DB) GetReportsByLanguage(ctx context.Context, lang string, limit int) ([]*models.Report, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT r.id, r.filename, r.analysis, r.created_at, r.updated_at
		FROM reports r
		JOIN report_langs rl ON rl.report_id = r.id
		WHERE rl.lang = ?
		ORDER BY r.created_at DESC
		LIMIT ?
	`, lang, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search reports by language: %w", err)
	}
	defer rows.Close()
	return collectReports(rows)
}

// LogOperation records one pipeline step in the audit log. Details are
// stored as JSON; a nil map stores NULL.
func (db *DB) LogOperation(ctx context.Context, op *models.Operation) error {
	var details any
	if op.Details != nil {
		detailsJSON, err := json.Marshal(op.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal operation details: %w", err)
		}
		details = string(detailsJSON)
	}

	var errText any
	if op.Error != "" {
		errText = op.Error
	}

	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now().UTC()
	}

	if _, err := db.conn.ExecContext(ctx, `
		INSERT INTO operations (operation, filename, status, details, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, op.Operation, op.Filename, op.Status, details, errText, op.CreatedAt); err != nil {
		return fmt.Errorf("failed to log operation: %w", err)
	}
	return nil
}

// ProcessingSummary aggregates the audit log over the trailing time window
func (db *DB) ProcessingSummary(ctx context.Context, hours int) (*models.ProcessingSummary, error) {
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	summary := &models.ProcessingSummary{
		OperationsByType: map[string]int{},
		TimeRangeHours:   hours,
	}

	if err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0)
		FROM operations WHERE created_at >= ?
	`, since).Scan(&summary.TotalOperations, &summary.SuccessfulOperations, &summary.FailedOperations); err != nil {
		return nil, fmt.Errorf("failed to aggregate operations: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT operation, COUNT(*)
		FROM operations WHERE created_at >= ?
		GROUP BY operation
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to group operations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var op string
		var count int
		if err := rows.Scan(&op, &count); err != nil {
			return nil, fmt.Errorf("failed to scan operation group: %w", err)
		}
		summary.OperationsByType[op] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate operation groups: %w", err)
	}

	fileRows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT filename
		FROM operations
		WHERE created_at >= ? AND filename != ''
		ORDER BY filename
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list processed files: %w", err)
	}
	defer fileRows.Close()
	summary.FilesProcessed = []string{}
	for fileRows.Next() {
		var name string
		if err := fileRows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan filename: %w", err)
		}
		summary.FilesProcessed = append(summary.FilesProcessed, name)
	}
	if err := fileRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate filenames: %w", err)
	}
	summary.UniqueFilesProcessed = len(summary.FilesProcessed)

	return summary, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*models.Report, error) {
	var report models.Report
	var analysisJSON string

	err := row.Scan(&report.ID, &report.Filename, &analysisJSON,
		&report.CreatedAt, &report.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	if err := json.Unmarshal([]byte(analysisJSON), &report.Analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	return &report, nil
}

func collectReports(rows *sql.Rows) ([]*models.Report, error) {
	reports := []*models.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}
	return reports, nil
}
