package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/borgmon/lightwalker/pkg/db"
	"github.com/borgmon/lightwalker/pkg/models"
)

// PreferenceRepository handles per-activity user overrides.
type PreferenceRepository struct {
	db *db.DB
}

// NewPreferenceRepository creates a new PreferenceRepository.
func NewPreferenceRepository(database *db.DB) *PreferenceRepository {
	return &PreferenceRepository{db: database}
}

const preferenceColumns = `activity_id, duration, points, difficulty, icon, grid_size, image_url, times_used`

// Upsert stores p, replacing any previous preference for the activity.
func (r *PreferenceRepository) Upsert(ctx context.Context, p models.ActivityPreference) error {
	if p.ActivityID == "" {
		return fmt.Errorf("invalid preference: activity id is required")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_preferences (`+preferenceColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(activity_id) DO UPDATE SET
			duration = excluded.duration,
			points = excluded.points,
			difficulty = excluded.difficulty,
			icon = excluded.icon,
			grid_size = excluded.grid_size,
			image_url = excluded.image_url,
			times_used = excluded.times_used,
			updated_at = excluded.updated_at
	`,
		p.ActivityID, p.Duration, p.Points, string(p.Difficulty), p.Icon,
		p.GridSize, p.ImageURL, p.TimesUsed,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert preference: %w", err)
	}
	return nil
}

// SetImage records a custom image for an activity, keeping its other overrides.
func (r *PreferenceRepository) SetImage(ctx context.Context, activityID, imageURL string) error {
	p, err := r.Get(ctx, activityID)
	if err != nil && !errors.Is(err, ErrPreferenceNotFound) {
		return err
	}
	p.ActivityID = activityID
	p.ImageURL = imageURL
	return r.Upsert(ctx, p)
}

// Get returns the preference for activityID.
func (r *PreferenceRepository) Get(ctx context.Context, activityID string) (models.ActivityPreference, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+preferenceColumns+` FROM activity_preferences WHERE activity_id = ?`, activityID)
	p, err := scanPreference(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ActivityPreference{}, ErrPreferenceNotFound
	}
	return p, err
}

// List returns every preference, most used first.
func (r *PreferenceRepository) List(ctx context.Context) ([]models.ActivityPreference, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+preferenceColumns+` FROM activity_preferences ORDER BY times_used DESC, activity_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	var out []models.ActivityPreference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preferences: %w", err)
	}
	return out, nil
}

// Delete removes the preference for activityID.
func (r *PreferenceRepository) Delete(ctx context.Context, activityID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activity_preferences WHERE activity_id = ?`, activityID)
	if err != nil {
		return fmt.Errorf("failed to delete preference: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrPreferenceNotFound
	}
	return nil
}

func scanPreference(s scanner) (models.ActivityPreference, error) {
	var p models.ActivityPreference
	var difficulty string
	err := s.Scan(&p.ActivityID, &p.Duration, &p.Points, &difficulty, &p.Icon,
		&p.GridSize, &p.ImageURL, &p.TimesUsed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("failed to scan preference: %w", err)
	}
	p.Difficulty = models.Difficulty(difficulty)
	return p, nil
}
