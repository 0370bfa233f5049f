// Package progress records completed activities and derives points and streaks.
package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/borgmon/lightwalker/pkg/db"
	"github.com/borgmon/lightwalker/pkg/models"
)

const dayLayout = "2006-01-02"

// Stats summarizes progress as of a day.
type Stats struct {
	PointsToday      int
	TotalPoints      int
	CompletionsToday int
	Streak           int
}

// Ledger stores completions.
type Ledger struct {
	db *db.DB
}

// NewLedger creates a new Ledger.
func NewLedger(database *db.DB) *Ledger {
	return &Ledger{db: database}
}

// Complete records that activity was finished at at.
func (l *Ledger) Complete(ctx context.Context, activity models.TimelineActivity, at time.Time) (models.Completion, error) {
	c := models.Completion{
		ID:          uuid.New().String(),
		ActivityID:  activity.ID,
		TemplateID:  activity.TemplateID,
		Title:       activity.Title,
		Points:      activity.Points,
		CompletedAt: at,
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO completions (id, activity_id, template_id, title, points, day, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID, c.ActivityID, c.TemplateID, c.Title, c.Points,
		at.Format(dayLayout),
		at.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return models.Completion{}, fmt.Errorf("failed to record completion: %w", err)
	}
	return c, nil
}

// Completed reports whether activityID has a completion on day.
func (l *Ledger) Completed(ctx context.Context, activityID string, day time.Time) (bool, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM completions WHERE activity_id = ? AND day = ?`,
		activityID, day.Format(dayLayout),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query completion: %w", err)
	}
	return n > 0, nil
}

// ListDay returns the completions recorded on day, oldest first.
func (l *Ledger) ListDay(ctx context.Context, day time.Time) ([]models.Completion, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, activity_id, template_id, title, points, completed_at
		FROM completions WHERE day = ? ORDER BY completed_at
	`, day.Format(dayLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	var out []models.Completion
	for rows.Next() {
		var c models.Completion
		var completedAt string
		if err := rows.Scan(&c.ID, &c.ActivityID, &c.TemplateID, &c.Title, &c.Points, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		if c.CompletedAt, err = time.Parse(time.RFC3339Nano, completedAt); err != nil {
			return nil, fmt.Errorf("failed to parse completed_at: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completions: %w", err)
	}
	return out, nil
}

// Stats returns points and streak as of day. The streak counts consecutive
// days with at least one completion ending today, or yesterday when today has none yet.
func (l *Ledger) Stats(ctx context.Context, day time.Time) (Stats, error) {
	var s Stats
	today := day.Format(dayLayout)

	err := l.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN day = ? THEN points ELSE 0 END), 0),
			COALESCE(SUM(points), 0),
			COALESCE(SUM(CASE WHEN day = ? THEN 1 ELSE 0 END), 0)
		FROM completions
	`, today, today).Scan(&s.PointsToday, &s.TotalPoints, &s.CompletionsToday)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query totals: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, `SELECT DISTINCT day FROM completions WHERE day <= ? ORDER BY day DESC`, today)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query completion days: %w", err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return Stats{}, fmt.Errorf("failed to scan day: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("error iterating days: %w", err)
	}

	s.Streak = streak(days, day)
	return s, nil
}

// streak counts consecutive days in days (descending) ending at day or the day before.
func streak(days []string, day time.Time) int {
	if len(days) == 0 {
		return 0
	}

	expect := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, day.Location())
	if days[0] != expect.Format(dayLayout) {
		expect = expect.AddDate(0, 0, -1)
	}

	n := 0
	for _, d := range days {
		if d != expect.Format(dayLayout) {
			break
		}
		n++
		expect = expect.AddDate(0, 0, -1)
	}
	return n
}
