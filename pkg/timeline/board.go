package timeline

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/borgmon/lightwalker/pkg/clock"
	"github.com/borgmon/lightwalker/pkg/models"
)

var (
	// ErrSlotOccupied is returned when an activity already starts at the target minute.
	ErrSlotOccupied = errors.New("timeline slot already occupied")
	// ErrNotFound is returned for unknown activity ids.
	ErrNotFound = errors.New("timeline activity not found")
)

// Board is the set of activities placed on the day's timeline.
type Board struct {
	mu         sync.RWMutex
	activities map[string]models.TimelineActivity
}

// NewBoard returns a board holding activities.
func NewBoard(activities ...models.TimelineActivity) *Board {
	b := &Board{activities: make(map[string]models.TimelineActivity)}
	for _, a := range activities {
		b.activities[a.ID] = a
	}
	return b
}

// Place creates a new activity from template starting at minute.
func (b *Board) Place(template models.ActivityTemplate, minute int) (models.TimelineActivity, error) {
	minute = clock.Normalize(minute)

	b.mu.Lock()
	defer b.mu.Unlock()

	if id, taken := b.occupant(minute); taken {
		return models.TimelineActivity{}, fmt.Errorf("%w: %s at %s", ErrSlotOccupied, id, clock.Format24h(minute))
	}

	a := models.TimelineActivity{
		ID:            uuid.New().String(),
		TemplateID:    template.ID,
		Title:         template.Title,
		ScheduledTime: clock.Format24h(minute),
		Duration:      template.Duration,
		Category:      template.Category,
		Icon:          template.Icon,
		Points:        template.Points,
	}
	if a.Duration == "" {
		a.Duration = clock.FormatDuration(clock.DefaultDurationMinutes)
	}
	b.activities[a.ID] = a
	return a, nil
}

// Add inserts an existing activity, keeping its id.
func (b *Board) Add(a models.TimelineActivity) error {
	minute := clock.ClockMinutes(a.ScheduledTime)

	b.mu.Lock()
	defer b.mu.Unlock()

	if id, taken := b.occupant(minute); taken && id != a.ID {
		return fmt.Errorf("%w: %s at %s", ErrSlotOccupied, id, clock.Format24h(minute))
	}
	b.activities[a.ID] = a
	return nil
}

// Move reschedules id to minute. Moving onto its own slot is a no-op.
func (b *Board) Move(id string, minute int) (models.TimelineActivity, error) {
	minute = clock.Normalize(minute)

	b.mu.Lock()
	defer b.mu.Unlock()

	a, ok := b.activities[id]
	if !ok {
		return models.TimelineActivity{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if other, taken := b.occupant(minute); taken && other != id {
		return models.TimelineActivity{}, fmt.Errorf("%w: %s at %s", ErrSlotOccupied, other, clock.Format24h(minute))
	}
	a.ScheduledTime = clock.Format24h(minute)
	b.activities[id] = a
	return a, nil
}

// Remove deletes id from the board.
func (b *Board) Remove(id string) (models.TimelineActivity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a, ok := b.activities[id]
	if !ok {
		return models.TimelineActivity{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(b.activities, id)
	return a, nil
}

// MarkCompleted flags id as completed.
func (b *Board) MarkCompleted(id string) (models.TimelineActivity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a, ok := b.activities[id]
	if !ok {
		return models.TimelineActivity{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	a.Completed = true
	b.activities[id] = a
	return a, nil
}

// Get returns the activity with id.
func (b *Board) Get(id string) (models.TimelineActivity, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	a, ok := b.activities[id]
	return a, ok
}

// Activities returns all activities sorted by start minute.
func (b *Board) Activities() []models.TimelineActivity {
	b.mu.RLock()
	out := make([]models.TimelineActivity, 0, len(b.activities))
	for _, a := range b.activities {
		out = append(out, a)
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		mi, mj := clock.ClockMinutes(out[i].ScheduledTime), clock.ClockMinutes(out[j].ScheduledTime)
		if mi != mj {
			return mi < mj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of placed activities.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.activities)
}

// Clear removes every activity.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.activities = make(map[string]models.TimelineActivity)
}

func (b *Board) occupant(minute int) (string, bool) {
	for id, a := range b.activities {
		if clock.ClockMinutes(a.ScheduledTime) == minute {
			return id, true
		}
	}
	return "", false
}
