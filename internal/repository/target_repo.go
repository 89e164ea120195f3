package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brandsight/brandsight-api/internal/models"
)

// SQLiteTargetRepository implements TargetRepository for SQLite/libsql.
// Keywords and prompts are stored as JSON columns; the lists are small
// and always read and written whole.
type SQLiteTargetRepository struct {
	db *sql.DB
}

// NewSQLiteTargetRepository creates a new SQLite target repository.
func NewSQLiteTargetRepository(db *sql.DB) *SQLiteTargetRepository {
	return &SQLiteTargetRepository{db: db}
}

func (r *SQLiteTargetRepository) Create(ctx context.Context, target *models.Target) error {
	keywordsJSON, err := json.Marshal(target.Keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}
	promptsJSON, err := json.Marshal(target.Prompts)
	if err != nil {
		return fmt.Errorf("failed to encode prompts: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO targets (
			id, business_name, website_url, keywords, prompts,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		target.ID,
		target.BusinessName,
		target.WebsiteURL,
		string(keywordsJSON),
		string(promptsJSON),
		target.CreatedAt.Format(time.RFC3339),
		target.UpdatedAt.Format(time.RFC3339),
	)
	return err
}

func (r *SQLiteTargetRepository) GetByID(ctx context.Context, id string) (*models.Target, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, business_name, website_url, keywords, prompts,
			   created_at, updated_at
		FROM targets
		WHERE id = ?
	`, id)

	target, err := scanTarget(row)
	if err == sql.ErrNoRows {
		return nil, ErrTargetNotFound
	}
	if err != nil {
		return nil, err
	}
	return target, nil
}

func (r *SQLiteTargetRepository) List(ctx context.Context) ([]*models.Target, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, business_name, website_url, keywords, prompts,
			   created_at, updated_at
		FROM targets
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []*models.Target
	for rows.Next() {
		target, err := scanTarget(rows)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, rows.Err()
}

func (r *SQLiteTargetRepository) UpdateKeywords(ctx context.Context, id string, keywords []models.Keyword) (*models.Target, error) {
	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to encode keywords: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE targets SET keywords = ?, updated_at = ? WHERE id = ?
	`, string(keywordsJSON), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrTargetNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *SQLiteTargetRepository) UpdatePrompts(ctx context.Context, id string, prompts []models.Prompt) (*models.Target, error) {
	promptsJSON, err := json.Marshal(prompts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prompts: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE targets SET prompts = ?, updated_at = ? WHERE id = ?
	`, string(promptsJSON), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrTargetNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *SQLiteTargetRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM targets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTargetNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTarget(row scanner) (*models.Target, error) {
	var target models.Target
	var keywordsJSON, promptsJSON string
	var createdAt, updatedAt string

	err := row.Scan(
		&target.ID,
		&target.BusinessName,
		&target.WebsiteURL,
		&keywordsJSON,
		&promptsJSON,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(keywordsJSON), &target.Keywords); err != nil {
		return nil, fmt.Errorf("failed to decode keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(promptsJSON), &target.Prompts); err != nil {
		return nil, fmt.Errorf("failed to decode prompts: %w", err)
	}

	target.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	target.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &target, nil
}
