// Package timeline maps between wall-clock minutes and pixel positions on the
// horizontally scrolling day track, and tracks drag state and placed activities.
package timeline

import (
	"math"
	"time"

	"github.com/borgmon/lightwalker/pkg/clock"
)

const (
	// DefaultPixelsPerMinute is the initial zoom level.
	DefaultPixelsPerMinute = 4.0
	MinZoom                = 0.5
	MaxZoom                = 20.0

	// QuantumDesktop rounds drag selections to the minute.
	QuantumDesktop = 1
	// QuantumTouch rounds tap-to-place selections to quarter hours.
	QuantumTouch = 15

	halfDay = clock.MinutesPerDay / 2
)

// Mapper converts between minutes of day and track pixels. The track is
// translated so the reference instant, shifted by the scroll offset, sits at
// the viewport center. A positive scroll offset moves toward earlier times.
type Mapper struct {
	PixelsPerMinute float64
	ViewportWidth   float64
}

// NewMapper returns a mapper with the zoom clamped into range.
func NewMapper(pixelsPerMinute, viewportWidth float64) Mapper {
	return Mapper{ViewportWidth: viewportWidth}.WithZoom(pixelsPerMinute)
}

// WithZoom returns a copy of m with pixels-per-minute clamped to [MinZoom, MaxZoom].
func (m Mapper) WithZoom(pixelsPerMinute float64) Mapper {
	m.PixelsPerMinute = math.Max(MinZoom, math.Min(MaxZoom, pixelsPerMinute))
	return m
}

// CenterX is the viewport x of the "now" marker.
func (m Mapper) CenterX() float64 {
	return m.ViewportWidth / 2
}

func (m Mapper) ppm() float64 {
	if m.PixelsPerMinute <= 0 {
		return DefaultPixelsPerMinute
	}
	return m.PixelsPerMinute
}

// TranslateX is the horizontal translation applied to the track.
func (m Mapper) TranslateX(now time.Time, scrollOffset float64) float64 {
	return -(clock.MinutesSinceMidnight(now) * m.ppm()) + m.CenterX() + scrollOffset
}

// MinutesAtCenter is the fractional minute of day under the center marker.
func (m Mapper) MinutesAtCenter(now time.Time, scrollOffset float64) float64 {
	return clock.NormalizeFloat(clock.MinutesSinceMidnight(now) - scrollOffset/m.ppm())
}

// PixelsToTime returns the minute of day under the center marker rounded to quantum.
func (m Mapper) PixelsToTime(now time.Time, scrollOffset float64, quantum int) int {
	return clock.Round(m.MinutesAtCenter(now, scrollOffset), quantum)
}

// TimeToPixels returns the scroll offset that centers minute. Of the two wrap
// representations the one within half a day of now is used.
func (m Mapper) TimeToPixels(now time.Time, minute int) float64 {
	delta := wrapDelta(clock.MinutesSinceMidnight(now) - float64(minute))
	return delta * m.ppm()
}

// MinuteAtX returns the minute of day rendered at viewport pixel x.
func (m Mapper) MinuteAtX(x float64, now time.Time, scrollOffset float64) float64 {
	return clock.NormalizeFloat((x - m.TranslateX(now, scrollOffset)) / m.ppm())
}

// XForMinute returns the viewport x of minute, using the repetition of the day
// closest to the center marker.
func (m Mapper) XForMinute(minute float64, now time.Time, scrollOffset float64) float64 {
	delta := wrapDelta(minute - m.MinutesAtCenter(now, scrollOffset))
	return m.CenterX() + delta*m.ppm()
}

// VisibleMinutes is the span of the day the viewport shows at the current zoom.
func (m Mapper) VisibleMinutes() float64 {
	return m.ViewportWidth / m.ppm()
}

// wrapDelta folds a minute difference into (-720, 720].
func wrapDelta(d float64) float64 {
	d = math.Mod(d, clock.MinutesPerDay)
	if d > halfDay {
		d -= clock.MinutesPerDay
	} else if d <= -halfDay {
		d += clock.MinutesPerDay
	}
	return d
}
