// Package catalog stores role models, activity templates and the user's
// activity preferences.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/borgmon/lightwalker/pkg/db"
	"github.com/borgmon/lightwalker/pkg/models"
)

// Repository errors.
var (
	ErrRoleModelNotFound      = errors.New("role model not found")
	ErrRoleModelAlreadyExists = errors.New("role model with this slug already exists")
	ErrTemplateNotFound       = errors.New("activity template not found")
	ErrPreferenceNotFound     = errors.New("activity preference not found")
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// RoleModelRepository handles role model persistence.
type RoleModelRepository struct {
	db *db.DB
}

// NewRoleModelRepository creates a new RoleModelRepository.
func NewRoleModelRepository(database *db.DB) *RoleModelRepository {
	return &RoleModelRepository{db: database}
}

const roleModelColumns = `id, slug, name, era, description, core_values, famous_quotes, daily_routines, attributes`

// Create adds a role model. An empty ID is generated.
func (r *RoleModelRepository) Create(ctx context.Context, rm *models.RoleModel) error {
	return createRoleModel(ctx, r.db, rm)
}

func createRoleModel(ctx context.Context, ex execer, rm *models.RoleModel) error {
	if rm.Slug == "" || rm.Name == "" {
		return fmt.Errorf("invalid role model: slug and name are required")
	}
	if rm.ID == "" {
		rm.ID = uuid.New().String()
	}

	cols, err := encodeRoleModelColumns(rm)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = ex.ExecContext(ctx, `
		INSERT INTO role_models (`+roleModelColumns+`, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rm.ID, rm.Slug, rm.Name, rm.Era, rm.Description,
		cols[0], cols[1], cols[2], cols[3],
		now, now,
	)
	if err != nil {
		if db.IsUniqueConstraintError(err) {
			return ErrRoleModelAlreadyExists
		}
		return fmt.Errorf("failed to insert role model: %w", err)
	}
	return nil
}

// List returns every role model ordered by name.
func (r *RoleModelRepository) List(ctx context.Context) ([]models.RoleModel, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+roleModelColumns+` FROM role_models ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query role models: %w", err)
	}
	defer rows.Close()

	var out []models.RoleModel
	for rows.Next() {
		rm, err := scanRoleModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role models: %w", err)
	}
	return out, nil
}

// Get returns the role model with id.
func (r *RoleModelRepository) Get(ctx context.Context, id string) (models.RoleModel, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+roleModelColumns+` FROM role_models WHERE id = ?`, id)
	rm, err := scanRoleModel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RoleModel{}, ErrRoleModelNotFound
	}
	return rm, err
}

// GetBySlug returns the role model with slug.
func (r *RoleModelRepository) GetBySlug(ctx context.Context, slug string) (models.RoleModel, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+roleModelColumns+` FROM role_models WHERE slug = ?`, slug)
	rm, err := scanRoleModel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RoleModel{}, ErrRoleModelNotFound
	}
	return rm, err
}

// Update replaces every stored field of rm.
func (r *RoleModelRepository) Update(ctx context.Context, rm *models.RoleModel) error {
	cols, err := encodeRoleModelColumns(rm)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE role_models SET
			slug = ?, name = ?, era = ?, description = ?,
			core_values = ?, famous_quotes = ?, daily_routines = ?, attributes = ?,
			updated_at = ?
		WHERE id = ?
	`,
		rm.Slug, rm.Name, rm.Era, rm.Description,
		cols[0], cols[1], cols[2], cols[3],
		time.Now().UTC().Format(time.RFC3339),
		rm.ID,
	)
	if err != nil {
		if db.IsUniqueConstraintError(err) {
			return ErrRoleModelAlreadyExists
		}
		return fmt.Errorf("failed to update role model: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrRoleModelNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRoleModel(s scanner) (models.RoleModel, error) {
	var rm models.RoleModel
	var coreValues, quotes, routines, attributes string

	if err := s.Scan(&rm.ID, &rm.Slug, &rm.Name, &rm.Era, &rm.Description,
		&coreValues, &quotes, &routines, &attributes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rm, err
		}
		return rm, fmt.Errorf("failed to scan role model: %w", err)
	}

	// JSON columns are schema-on-read; a damaged column decodes as empty.
	decodeJSON(coreValues, &rm.CoreValues)
	decodeJSON(quotes, &rm.FamousQuotes)
	decodeJSON(routines, &rm.DailyRoutines)
	decodeJSON(attributes, &rm.Attributes)
	return rm, nil
}

func encodeRoleModelColumns(rm *models.RoleModel) ([4]string, error) {
	var cols [4]string
	for i, v := range []any{rm.CoreValues, rm.FamousQuotes, rm.DailyRoutines, rm.Attributes} {
		data, err := json.Marshal(v)
		if err != nil {
			return cols, fmt.Errorf("failed to marshal role model column: %w", err)
		}
		if string(data) == "null" {
			data = []byte("[]")
		}
		cols[i] = string(data)
	}
	return cols, nil
}

func decodeJSON(raw string, dest any) {
	if raw == "" {
		return
	}
	_ = json.Unmarshal([]byte(raw), dest)
}
