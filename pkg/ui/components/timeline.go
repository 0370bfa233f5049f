package components

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/borgmon/lightwalker/pkg/clock"
	"github.com/borgmon/lightwalker/pkg/models"
	"github.com/borgmon/lightwalker/pkg/timeline"
)

const (
	timelineMinHeight = 160
	segmentThickness  = 10
	markerColorHex    = 0xE53935
)

// Timeline is the horizontally scrolling day track. Dragging or scrolling
// pauses the live clock and selects the minute under the center marker;
// tapping places the armed activity at the tapped quarter hour.
type Timeline struct {
	widget.BaseWidget

	// Now defaults to time.Now.
	Now func() time.Time
	// Use24h switches hour labels from "9a" style to "09:00".
	Use24h bool

	OnSelected func(minute int)
	OnPlace    timeline.PlaceFunc
	OnTapped   func(activity models.TimelineActivity)
	OnError    func(err error)

	gesture    *timeline.Gesture
	activities []models.TimelineActivity
	armed      *models.ActivityTemplate
}

func NewTimeline() *Timeline {
	t := &Timeline{
		Now:     time.Now,
		gesture: timeline.NewGesture(timeline.NewMapper(timeline.DefaultPixelsPerMinute, 0)),
	}
	t.ExtendBaseWidget(t)
	return t
}

// SetActivities replaces the activities drawn on the track.
func (t *Timeline) SetActivities(activities []models.TimelineActivity) {
	t.activities = append([]models.TimelineActivity(nil), activities...)
	t.Refresh()
}

// Arm selects a template for tap-to-place. Pass nil to disarm.
func (t *Timeline) Arm(template *models.ActivityTemplate) {
	t.armed = template
	t.Refresh()
}

func (t *Timeline) Armed() *models.ActivityTemplate { return t.armed }

func (t *Timeline) Gesture() *timeline.Gesture { return t.gesture }

// SetZoom changes pixels per minute, keeping the selected minute centered.
func (t *Timeline) SetZoom(pixelsPerMinute float64) {
	minute, selected := t.gesture.Selected()
	t.gesture.Mapper = t.gesture.Mapper.WithZoom(pixelsPerMinute)
	if selected {
		t.gesture.CenterOn(minute, t.Now())
	}
	t.Refresh()
}

// CenterOn scrolls the track so minute is under the center marker.
func (t *Timeline) CenterOn(minute int) {
	t.gesture.CenterOn(minute, t.Now())
	t.notifySelected()
	t.Refresh()
}

// ResetToNow resumes the live clock with "now" centered.
func (t *Timeline) ResetToNow() {
	t.gesture.ResetToNow()
	t.Refresh()
}

// Dragged implements fyne.Draggable.
func (t *Timeline) Dragged(ev *fyne.DragEvent) {
	x := float64(ev.Position.X)
	if t.gesture.State() != timeline.StateDragging {
		t.gesture.Start(x-float64(ev.Dragged.DX), t.Now())
	}
	t.gesture.Move(x)
	t.notifySelected()
	t.Refresh()
}

// DragEnd implements fyne.Draggable.
func (t *Timeline) DragEnd() {
	t.gesture.End()
}

// Scrolled implements fyne.Scrollable. Vertical wheels scroll the track too.
func (t *Timeline) Scrolled(ev *fyne.ScrollEvent) {
	dx := ev.Scrolled.DX
	if dx == 0 {
		dx = ev.Scrolled.DY
	}
	t.gesture.ScrollBy(float64(dx), t.Now())
	t.notifySelected()
	t.Refresh()
}

// Tapped implements fyne.Tappable.
func (t *Timeline) Tapped(ev *fyne.PointEvent) {
	now := t.Now()
	minute, placed, err := t.gesture.Tap(float64(ev.Position.X), now, t.armed, t.OnPlace)
	if err != nil {
		if t.OnError != nil {
			t.OnError(err)
		}
		return
	}
	if placed {
		t.armed = nil
		t.Refresh()
		return
	}
	if a, ok := timeline.ActivityAtCenter(t.activities, float64(minute), 0); ok && t.OnTapped != nil {
		t.OnTapped(a)
	}
}

func (t *Timeline) notifySelected() {
	if minute, ok := t.gesture.Selected(); ok && t.OnSelected != nil {
		t.OnSelected(minute)
	}
}

// CreateRenderer implements fyne.Widget.
func (t *Timeline) CreateRenderer() fyne.WidgetRenderer {
	r := &timelineRenderer{
		timeline: t,
		bg:       canvas.NewRectangle(theme.Color(theme.ColorNameInputBackground)),
		baseline: canvas.NewLine(theme.Color(theme.ColorNameDisabled)),
		marker:   canvas.NewLine(hexColor(markerColorHex)),
		readout:  canvas.NewText("", theme.Color(theme.ColorNameForeground)),
	}
	r.marker.StrokeWidth = 2
	r.readout.TextStyle = fyne.TextStyle{Bold: true}
	r.readout.Alignment = fyne.TextAlignCenter
	return r
}

type timelineRenderer struct {
	timeline *Timeline
	size     fyne.Size

	bg       *canvas.Rectangle
	baseline *canvas.Line
	marker   *canvas.Line
	readout  *canvas.Text
	dynamic  []fyne.CanvasObject
}

func (r *timelineRenderer) Layout(size fyne.Size) {
	r.size = size
	r.timeline.gesture.Mapper.ViewportWidth = float64(size.Width)
	r.rebuild()
}

func (r *timelineRenderer) MinSize() fyne.Size {
	return fyne.NewSize(200, timelineMinHeight)
}

func (r *timelineRenderer) Refresh() {
	r.bg.FillColor = theme.Color(theme.ColorNameInputBackground)
	r.readout.Color = theme.Color(theme.ColorNameForeground)
	r.rebuild()
	canvas.Refresh(r.timeline)
}

func (r *timelineRenderer) rebuild() {
	t := r.timeline
	size := r.size
	mid := size.Height / 2
	now := t.gesture.Reference(t.Now())
	offset := t.gesture.ScrollOffset()
	m := t.gesture.Mapper

	r.bg.Resize(size)
	r.baseline.Position1 = fyne.NewPos(0, mid)
	r.baseline.Position2 = fyne.NewPos(size.Width, mid)

	cx := float32(m.CenterX())
	r.marker.Position1 = fyne.NewPos(cx, 0)
	r.marker.Position2 = fyne.NewPos(cx, size.Height)

	center := clock.Round(t.gesture.CenterMinute(t.Now()), timeline.QuantumDesktop)
	r.readout.Text = r.formatMinute(center)
	if t.armed != nil {
		r.readout.Text = fmt.Sprintf("%s  tap to place %s", r.readout.Text, t.armed.Title)
	}
	r.readout.Resize(fyne.NewSize(size.Width, r.readout.MinSize().Height))
	r.readout.Move(fyne.NewPos(0, theme.Padding()))

	r.dynamic = r.dynamic[:0]
	r.dynamic = append(r.dynamic, r.hourTicks(m, now, offset, mid)...)

	for _, seg := range timeline.Layout(t.activities, m, now, offset) {
		if !seg.Visible(float64(size.Width)) {
			continue
		}
		y := mid + float32(seg.Y) - segmentThickness/2
		bar := canvas.NewRectangle(seg.Color)
		bar.CornerRadius = segmentThickness / 2
		bar.Move(fyne.NewPos(float32(seg.X), y))
		bar.Resize(fyne.NewSize(float32(seg.Length), segmentThickness))

		label := canvas.NewText(seg.Label, theme.Color(theme.ColorNameForeground))
		label.TextSize = theme.CaptionTextSize()
		label.Move(fyne.NewPos(float32(seg.X), y-label.MinSize().Height))

		r.dynamic = append(r.dynamic, bar, label)
	}
}

func (r *timelineRenderer) hourTicks(m timeline.Mapper, now time.Time, offset float64, mid float32) []fyne.CanvasObject {
	var objs []fyne.CanvasObject
	tickColor := theme.Color(theme.ColorNameDisabled)
	for h := 0; h < 24; h++ {
		x := float32(m.XForMinute(float64(h*60), now, offset))
		if x < 0 || x > r.size.Width {
			continue
		}
		tick := canvas.NewLine(tickColor)
		tick.Position1 = fyne.NewPos(x, mid-4)
		tick.Position2 = fyne.NewPos(x, mid+4)

		label := canvas.NewText(r.formatMinute(h*60), tickColor)
		label.TextSize = theme.CaptionTextSize()
		label.Move(fyne.NewPos(x-label.MinSize().Width/2, r.size.Height-label.MinSize().Height-theme.Padding()))
		objs = append(objs, tick, label)
	}
	return objs
}

func (r *timelineRenderer) formatMinute(m int) string {
	if r.timeline.Use24h {
		return clock.Format24h(m)
	}
	return clock.Format12h(m)
}

func (r *timelineRenderer) Objects() []fyne.CanvasObject {
	objs := []fyne.CanvasObject{r.bg, r.baseline}
	objs = append(objs, r.dynamic...)
	return append(objs, r.marker, r.readout)
}

func (r *timelineRenderer) Destroy() {}

func hexColor(v uint32) color.NRGBA {
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
