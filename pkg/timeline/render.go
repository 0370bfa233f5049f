package timeline

import (
	"image/color"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/borgmon/lightwalker/pkg/clock"
	"github.com/borgmon/lightwalker/pkg/models"
)

type categoryStyle struct {
	color color.NRGBA
	lane  float64
}

var categoryStyles = map[models.Category]categoryStyle{
	models.CategoryMindfulness:  {hex(0x8b5cf6), -42},
	models.CategoryPhysical:     {hex(0xef4444), -30},
	models.CategoryLearning:     {hex(0x3b82f6), -18},
	models.CategoryProductivity: {hex(0xf59e0b), -6},
	models.CategorySocial:       {hex(0xec4899), 6},
	models.CategoryCreative:     {hex(0x10b981), 18},
	models.CategoryWellness:     {hex(0x14b8a6), 30},
	models.CategoryRest:         {hex(0x6366f1), 42},
	models.CategoryOther:        {hex(0x9ca3af), 0},
}

func hex(v uint32) color.NRGBA {
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// CategoryColor returns the lane color for c.
func CategoryColor(c models.Category) color.NRGBA {
	if s, ok := categoryStyles[c]; ok {
		return s.color
	}
	return categoryStyles[models.CategoryOther].color
}

// CategoryLane returns the vertical offset of c's lane from the track baseline.
func CategoryLane(c models.Category) float64 {
	if s, ok := categoryStyles[c]; ok {
		return s.lane
	}
	return 0
}

// Segment is one activity drawn on the track.
type Segment struct {
	ActivityID string
	X          float64
	Y          float64
	Length     float64
	Color      color.NRGBA
	Label      string
}

// Layout maps activities into segments relative to the viewport. Y is the
// lane offset from the baseline.
func Layout(activities []models.TimelineActivity, m Mapper, now time.Time, scrollOffset float64) []Segment {
	segments := make([]Segment, 0, len(activities))
	for _, a := range activities {
		start := clock.ClockMinutes(a.ScheduledTime)
		length := float64(clock.ParseDuration(a.Duration)) * m.ppm()
		segments = append(segments, Segment{
			ActivityID: a.ID,
			X:          m.XForMinute(float64(start), now, scrollOffset),
			Y:          CategoryLane(a.Category),
			Length:     length,
			Color:      CategoryColor(a.Category),
			Label:      strings.TrimSpace(a.Icon + " " + a.Title),
		})
	}
	sort.SliceStable(segments, func(i, j int) bool { return segments[i].X < segments[j].X })
	return segments
}

// Visible reports whether s overlaps [0, width).
func (s Segment) Visible(width float64) bool {
	return s.X+s.Length >= 0 && s.X < width
}

// ActivityAtCenter returns the activity whose span covers centerMinute, or
// failing that the one starting nearest to it within window minutes.
func ActivityAtCenter(activities []models.TimelineActivity, centerMinute float64, window int) (models.TimelineActivity, bool) {
	for _, a := range activities {
		start := float64(clock.ClockMinutes(a.ScheduledTime))
		d := wrapDelta(centerMinute - start)
		if d >= 0 && d < float64(clock.ParseDuration(a.Duration)) {
			return a, true
		}
	}

	var (
		best  models.TimelineActivity
		found bool
		bestD = math.Inf(1)
	)
	for _, a := range activities {
		d := math.Abs(wrapDelta(float64(clock.ClockMinutes(a.ScheduledTime)) - centerMinute))
		if d <= float64(window) && d < bestD {
			best, bestD, found = a, d, true
		}
	}
	return best, found
}
