package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/borgmon/lightwalker/pkg/db"
	"github.com/borgmon/lightwalker/pkg/models"
)

// TemplateRepository handles activity template persistence.
type TemplateRepository struct {
	db *db.DB
}

// NewTemplateRepository creates a new TemplateRepository.
func NewTemplateRepository(database *db.DB) *TemplateRepository {
	return &TemplateRepository{db: database}
}

const templateColumns = `id, title, description, category, duration, points, difficulty, icon, grid_size, times_used`

// Upsert inserts t or replaces its catalog fields. Usage counts are kept.
func (r *TemplateRepository) Upsert(ctx context.Context, t models.ActivityTemplate) error {
	return upsertTemplate(ctx, r.db, t)
}

func upsertTemplate(ctx context.Context, ex execer, t models.ActivityTemplate) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}
	if t.Difficulty == "" {
		t.Difficulty = models.DifficultyEasy
	}
	if t.GridSize == "" {
		t.GridSize = "1x1"
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO activity_templates (`+templateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			duration = excluded.duration,
			points = excluded.points,
			difficulty = excluded.difficulty,
			icon = excluded.icon,
			grid_size = excluded.grid_size
	`,
		t.ID, t.Title, t.Description, string(t.Category), t.Duration,
		t.Points, string(t.Difficulty), t.Icon, t.GridSize, t.TimesUsed,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert template: %w", err)
	}
	return nil
}

// List returns every template, most used first.
func (r *TemplateRepository) List(ctx context.Context) ([]models.ActivityTemplate, error) {
	return r.query(ctx, `SELECT `+templateColumns+` FROM activity_templates ORDER BY times_used DESC, title`)
}

// ListByCategory returns the templates of one category, most used first.
func (r *TemplateRepository) ListByCategory(ctx context.Context, category models.Category) ([]models.ActivityTemplate, error) {
	return r.query(ctx, `SELECT `+templateColumns+` FROM activity_templates WHERE category = ? ORDER BY times_used DESC, title`, string(category))
}

// ListByIDs returns the templates with the given ids in the given order. Unknown ids are skipped.
func (r *TemplateRepository) ListByIDs(ctx context.Context, ids []string) ([]models.ActivityTemplate, error) {
	out := make([]models.ActivityTemplate, 0, len(ids))
	for _, id := range ids {
		t, err := r.Get(ctx, id)
		if errors.Is(err, ErrTemplateNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Get returns the template with id.
func (r *TemplateRepository) Get(ctx context.Context, id string) (models.ActivityTemplate, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM activity_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ActivityTemplate{}, ErrTemplateNotFound
	}
	return t, err
}

// IncrementUsage bumps the usage counter of id.
func (r *TemplateRepository) IncrementUsage(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE activity_templates SET times_used = times_used + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment template usage: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (r *TemplateRepository) query(ctx context.Context, query string, args ...any) ([]models.ActivityTemplate, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var out []models.ActivityTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}
	return out, nil
}

func scanTemplate(s scanner) (models.ActivityTemplate, error) {
	var t models.ActivityTemplate
	var category, difficulty string
	err := s.Scan(&t.ID, &t.Title, &t.Description, &category, &t.Duration,
		&t.Points, &difficulty, &t.Icon, &t.GridSize, &t.TimesUsed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("failed to scan template: %w", err)
	}
	t.Category = models.ParseCategory(category)
	t.Difficulty = models.Difficulty(difficulty)
	return t, nil
}
