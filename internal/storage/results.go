// Package storage persists evaluation results in SQLite so long-running
// batch runs can save incrementally and resume after interruption.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/shinsa/internal/models"
)

// ResultStore is the persistence interface for evaluation results.
type ResultStore interface {
	SaveResult(ctx context.Context, res *models.EvaluationResult) error
	HasResult(ctx context.Context, variantID string) (bool, error)
	GetResult(ctx context.Context, variantID string) (*models.EvaluationResult, error)
	ListResults(ctx context.Context) ([]*models.EvaluationResult, error)
	CountResults(ctx context.Context) (int64, error)
	Close() error
}

// SQLiteResultStore implements ResultStore using SQLite.
type SQLiteResultStore struct {
	db *sql.DB
}

// NewSQLiteResultStore opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if needed.
func NewSQLiteResultStore(dbPath string) (*SQLiteResultStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteResultStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS results (
		variant_id TEXT PRIMARY KEY,
		original_id TEXT NOT NULL,
		variant_type TEXT NOT NULL,
		attack_type TEXT,
		attack_position TEXT,
		section_found INTEGER,
		review TEXT,
		error TEXT,
		evaluated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_results_original_id ON results(original_id);
	CREATE INDEX IF NOT EXISTS idx_results_variant_type ON results(variant_type);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveResult upserts a result keyed by variant id. Re-evaluating a variant
// replaces the previous row, so resumed runs never produce duplicates.
func (s *SQLiteResultStore) SaveResult(ctx context.Context, res *models.EvaluationResult) error {
	var reviewJSON []byte
	if res.Review != nil {
		var err error
		reviewJSON, err = json.Marshal(res.Review)
		if err != nil {
			return fmt.Errorf("failed to marshal review: %w", err)
		}
	}
	if res.EvaluatedAt.IsZero() {
		res.EvaluatedAt = time.Now()
	}

	var sectionFound interface{}
	if res.SectionFound != nil {
		sectionFound = *res.SectionFound
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results (variant_id, original_id, variant_type, attack_type, attack_position, section_found, review, error, evaluated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(variant_id) DO UPDATE SET
			original_id=excluded.original_id,
			variant_type=excluded.variant_type,
			attack_type=excluded.attack_type,
			attack_position=excluded.attack_position,
			section_found=excluded.section_found,
			review=excluded.review,
			error=excluded.error,
			evaluated_at=excluded.evaluated_at`,
		res.VariantID, res.OriginalID, res.VariantType, res.AttackType, res.AttackPosition,
		sectionFound, nullableString(reviewJSON), res.Error, res.EvaluatedAt,
	)
	return err
}

func nullableString(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// HasResult reports whether a result exists for variantID.
func (s *SQLiteResultStore) HasResult(ctx context.Context, variantID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM results WHERE variant_id = ?`, variantID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetResult returns the result for variantID.
func (s *SQLiteResultStore) GetResult(ctx context.Context, variantID string) (*models.EvaluationResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT variant_id, original_id, variant_type, attack_type, attack_position, section_found, review, error, evaluated_at
		 FROM results WHERE variant_id = ?`, variantID)
	res, err := scanResult(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("result not found: %s", variantID)
	}
	return res, err
}

// ListResults returns all results ordered by evaluation time.
func (s *SQLiteResultStore) ListResults(ctx context.Context) ([]*models.EvaluationResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT variant_id, original_id, variant_type, attack_type, attack_position, section_found, review, error, evaluated_at
		 FROM results ORDER BY evaluated_at, variant_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*models.EvaluationResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(row scanner) (*models.EvaluationResult, error) {
	var res models.EvaluationResult
	var attackType, attackPosition, reviewJSON, errMsg sql.NullString
	var sectionFound sql.NullBool

	err := row.Scan(&res.VariantID, &res.OriginalID, &res.VariantType,
		&attackType, &attackPosition, &sectionFound, &reviewJSON, &errMsg, &res.EvaluatedAt)
	if err != nil {
		return nil, err
	}
	res.AttackType = attackType.String
	res.AttackPosition = attackPosition.String
	res.Error = errMsg.String
	if sectionFound.Valid {
		v := sectionFound.Bool
		res.SectionFound = &v
	}
	if reviewJSON.Valid && reviewJSON.String != "" {
		var review models.Review
		if err := json.Unmarshal([]byte(reviewJSON.String), &review); err != nil {
			return nil, fmt.Errorf("failed to unmarshal review: %w", err)
		}
		res.Review = &review
	}
	return &res, nil
}

// CountResults returns the total number of stored results.
func (s *SQLiteResultStore) CountResults(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteResultStore) Close() error {
	return s.db.Close()
}
