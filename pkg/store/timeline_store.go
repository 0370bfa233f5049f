package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/borgmon/lightwalker/pkg/models"
)

const dayLayout = "2006-01-02"

type savedTimeline struct {
	Date       string                    `json:"date"`
	Activities []models.TimelineActivity `json:"activities"`
}

// LoadTimeline returns the activities saved for day. A timeline saved on a
// different day is not carried over.
func LoadTimeline(prefs Preferences, day time.Time) ([]models.TimelineActivity, error) {
	raw := prefs.String(TimelineKey)
	if raw == "" {
		return nil, nil
	}

	var saved savedTimeline
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		return nil, fmt.Errorf("failed to decode saved timeline: %w", err)
	}
	if saved.Date != day.Format(dayLayout) {
		return nil, nil
	}
	return saved.Activities, nil
}

// SaveTimeline stores the day's activities.
func SaveTimeline(prefs Preferences, day time.Time, activities []models.TimelineActivity) error {
	data, err := json.Marshal(savedTimeline{
		Date:       day.Format(dayLayout),
		Activities: activities,
	})
	if err != nil {
		return fmt.Errorf("failed to encode timeline: %w", err)
	}
	prefs.SetString(TimelineKey, string(data))
	return nil
}
