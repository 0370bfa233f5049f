package timeline

import (
	"time"

	"github.com/borgmon/lightwalker/pkg/clock"
	"github.com/borgmon/lightwalker/pkg/models"
)

// State is the drag state of the timeline.
type State int

const (
	StateIdle State = iota
	StateDragging
)

func (s State) String() string {
	if s == StateDragging {
		return "dragging"
	}
	return "idle"
}

// PlaceFunc places template at a minute of day.
type PlaceFunc func(template models.ActivityTemplate, minute int) error

// Gesture tracks drag, wheel and tap interaction with the track. It is not
// safe for concurrent use; drive it from the UI goroutine.
type Gesture struct {
	Mapper Mapper

	state        State
	scrollOffset float64
	dragStartX   float64
	paused       bool
	pausedAt     time.Time
	selected     int
	hasSelection bool
}

// NewGesture returns an idle gesture tracking live time.
func NewGesture(m Mapper) *Gesture {
	return &Gesture{Mapper: m}
}

func (g *Gesture) State() State { return g.state }
func (g *Gesture) ScrollOffset() float64 { return g.scrollOffset }
func (g *Gesture) Paused() bool { return g.paused }
func (g *Gesture) Selected() (int, bool) { return g.selected, g.hasSelection }

// Reference is the instant the track is drawn against: frozen while paused, now otherwise.
func (g *Gesture) Reference(now time.Time) time.Time {
	if g.paused {
		return g.pausedAt
	}
	return now
}

func (g *Gesture) pause(now time.Time) {
	if !g.paused {
		g.paused = true
		g.pausedAt = now
	}
}

// Start begins a drag at pointerX and freezes the clock at now.
func (g *Gesture) Start(pointerX float64, now time.Time) {
	g.state = StateDragging
	g.dragStartX = pointerX - g.scrollOffset
	g.pause(now)
}

// Move updates the scroll offset for pointerX and returns the selected minute.
func (g *Gesture) Move(pointerX float64) int {
	if g.state != StateDragging {
		return g.selected
	}
	g.scrollOffset = pointerX - g.dragStartX
	g.updateSelection()
	return g.selected
}

// End finishes the drag. The selection and pause survive until ResetToNow.
func (g *Gesture) End() {
	g.state = StateIdle
}

// ScrollBy shifts the track by dx pixels, pausing like a drag.
func (g *Gesture) ScrollBy(dx float64, now time.Time) int {
	g.pause(now)
	g.scrollOffset += dx
	g.updateSelection()
	return g.selected
}

// CenterOn scrolls so minute sits under the center marker.
func (g *Gesture) CenterOn(minute int, now time.Time) {
	g.pause(now)
	g.scrollOffset = g.Mapper.TimeToPixels(g.pausedAt, minute)
	g.updateSelection()
}

// ResetToNow zeroes the offset, clears the selection and resumes the live clock.
func (g *Gesture) ResetToNow() {
	g.state = StateIdle
	g.scrollOffset = 0
	g.dragStartX = 0
	g.paused = false
	g.pausedAt = time.Time{}
	g.selected = 0
	g.hasSelection = false
}

// Tap resolves the quarter-hour slot under x. When an activity is armed it is
// placed there through place.
func (g *Gesture) Tap(x float64, now time.Time, armed *models.ActivityTemplate, place PlaceFunc) (int, bool, error) {
	minute := clock.Round(g.Mapper.MinuteAtX(x, g.Reference(now), g.scrollOffset), QuantumTouch)
	if armed == nil || place == nil {
		return minute, false, nil
	}
	if err := place(*armed, minute); err != nil {
		return minute, false, err
	}
	return minute, true, nil
}

// CenterMinute is the fractional minute under the center marker.
func (g *Gesture) CenterMinute(now time.Time) float64 {
	return g.Mapper.MinutesAtCenter(g.Reference(now), g.scrollOffset)
}

func (g *Gesture) updateSelection() {
	g.selected = g.Mapper.PixelsToTime(g.pausedAt, g.scrollOffset, QuantumDesktop)
	g.hasSelection = true
}
