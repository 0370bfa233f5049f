package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/lightwalker/pkg/models"
)

func TestCategoryStyleFallback(t *testing.T) {
	assert.Equal(t, CategoryColor(models.CategoryOther), CategoryColor("unknown"))
	assert.Zero(t, CategoryLane("unknown"))
	assert.NotEqual(t, CategoryLane(models.CategoryPhysical), CategoryLane(models.CategoryRest))

	seen := map[float64]bool{}
	for _, c := range models.Categories {
		lane := CategoryLane(c)
		assert.False(t, seen[lane], "lane of %s shared", c)
		seen[lane] = true
	}
}

func TestLayout(t *testing.T) {
	m := NewMapper(4, 800)
	segments := Layout([]models.TimelineActivity{
		{ID: "b", Title: "Run", ScheduledTime: "09:40", Duration: "30 min", Category: models.CategoryPhysical, Icon: "🏃"},
		{ID: "a", Title: "Read", ScheduledTime: "9:00a", Duration: "garbage", Category: models.CategoryLearning},
	}, m, morning(), 0)

	require.Len(t, segments, 2)
	assert.Equal(t, "a", segments[0].ActivityID)
	assert.InDelta(t, 280.0, segments[0].X, 1e-9)
	assert.InDelta(t, 60.0, segments[0].Length, 1e-9)

	run := segments[1]
	assert.InDelta(t, 440.0, run.X, 1e-9)
	assert.InDelta(t, 120.0, run.Length, 1e-9)
	assert.Equal(t, CategoryLane(models.CategoryPhysical), run.Y)
	assert.Equal(t, CategoryColor(models.CategoryPhysical), run.Color)
	assert.Equal(t, "🏃 Run", run.Label)
	assert.True(t, run.Visible(800))
	assert.False(t, Segment{X: 900, Length: 10}.Visible(800))
}

func TestActivityAtCenter(t *testing.T) {
	activities := []models.TimelineActivity{
		{ID: "meditate", ScheduledTime: "09:00", Duration: "1 hour"},
		{ID: "call", ScheduledTime: "11:00", Duration: "15 min"},
		{ID: "sleep", ScheduledTime: "23:50", Duration: "30 min"},
	}

	tests := []struct {
		name   string
		center float64
		want   string
		found  bool
	}{
		{"inside span", 570, "meditate", true},
		{"nearest upcoming", 650, "call", true},
		{"out of window", 700, "", false},
		{"span across midnight", 5, "sleep", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ActivityAtCenter(activities, tt.center, 15)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}
