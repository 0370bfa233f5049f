package components

import (
	"errors"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/lightwalker/pkg/models"
	"github.com/borgmon/lightwalker/pkg/timeline"
)

var noon = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestTimeline(t *testing.T) *Timeline {
	t.Helper()
	test.NewTempApp(t)

	tl := NewTimeline()
	tl.Now = func() time.Time { return noon }
	w := test.NewTempWindow(t, tl)
	w.Resize(fyne.NewSize(800, 200))
	tl.Resize(fyne.NewSize(800, 200))
	return tl
}

func TestTimelineDragSelectsMinute(t *testing.T) {
	tl := newTestTimeline(t)

	var selected []int
	tl.OnSelected = func(m int) { selected = append(selected, m) }

	// 4 px per minute: dragging right by 240 px moves back an hour.
	tl.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(410, 100)}, Dragged: fyne.NewDelta(10, 0)})
	tl.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(640, 100)}, Dragged: fyne.NewDelta(230, 0)})
	tl.DragEnd()

	require.NotEmpty(t, selected)
	assert.Equal(t, 11*60, selected[len(selected)-1])
	assert.True(t, tl.Gesture().Paused())
	assert.Equal(t, timeline.StateIdle, tl.Gesture().State())

	tl.ResetToNow()
	assert.False(t, tl.Gesture().Paused())
	assert.Zero(t, tl.Gesture().ScrollOffset())
}

func TestTimelineScroll(t *testing.T) {
	tl := newTestTimeline(t)

	tl.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, -120)})
	minute, ok := tl.Gesture().Selected()
	require.True(t, ok)
	assert.Equal(t, 12*60+30, minute)
}

func TestTimelineTapPlacesArmedTemplate(t *testing.T) {
	tl := newTestTimeline(t)

	var placedAt int
	tl.OnPlace = func(tmpl models.ActivityTemplate, minute int) error {
		placedAt = minute
		return nil
	}

	// Tapping without an armed template places nothing.
	tl.Tapped(&fyne.PointEvent{Position: fyne.NewPos(400, 100)})
	assert.Zero(t, placedAt)

	tmpl := models.ActivityTemplate{ID: "walk", Title: "Walk"}
	tl.Arm(&tmpl)
	// 400 + 7*4 is 12:07, which rounds to 12:00.
	tl.Tapped(&fyne.PointEvent{Position: fyne.NewPos(428, 100)})
	assert.Equal(t, 12*60, placedAt)
	assert.Nil(t, tl.Armed(), "placing disarms")
}

func TestTimelineTapReportsPlaceError(t *testing.T) {
	tl := newTestTimeline(t)
	tmpl := models.ActivityTemplate{ID: "walk", Title: "Walk"}
	tl.Arm(&tmpl)

	boom := errors.New("slot taken")
	tl.OnPlace = func(models.ActivityTemplate, int) error { return boom }
	var got error
	tl.OnError = func(err error) { got = err }

	tl.Tapped(&fyne.PointEvent{Position: fyne.NewPos(400, 100)})
	assert.ErrorIs(t, got, boom)
	assert.NotNil(t, tl.Armed(), "failed placement keeps the template armed")
}

func TestTimelineTapOnActivity(t *testing.T) {
	tl := newTestTimeline(t)
	tl.SetActivities([]models.TimelineActivity{
		{ID: "a1", Title: "Lunch", ScheduledTime: "12:00", Duration: "1 hour", Category: models.CategorySocial},
	})

	var tapped string
	tl.OnTapped = func(a models.TimelineActivity) { tapped = a.ID }
	tl.Tapped(&fyne.PointEvent{Position: fyne.NewPos(520, 100)})
	assert.Equal(t, "a1", tapped)
}

func TestTimelineRendersSegments(t *testing.T) {
	tl := newTestTimeline(t)
	tl.SetActivities([]models.TimelineActivity{
		{ID: "a1", Title: "Lunch", ScheduledTime: "12:00", Duration: "30 min", Category: models.CategorySocial},
		{ID: "far", Title: "Late", ScheduledTime: "23:00", Duration: "30 min"},
	})

	r := test.WidgetRenderer(tl).(*timelineRenderer)
	var labels []string
	for _, o := range r.Objects() {
		if text, ok := o.(*canvas.Text); ok {
			labels = append(labels, text.Text)
		}
	}
	assert.Contains(t, labels, "Lunch")
	assert.NotContains(t, labels, "Late")
}

func TestHoldButtonCompletes(t *testing.T) {
	test.NewTempApp(t)

	held := make(chan struct{}, 1)
	b := NewHoldButton("Done", 100*time.Millisecond, func() { held <- struct{}{} })

	b.MouseDown(&desktop.MouseEvent{})
	select {
	case <-held:
	case <-time.After(2 * time.Second):
		t.Fatal("hold did not complete")
	}
	assert.Eventually(t, func() bool { return b.Progress() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHoldButtonReleaseEarly(t *testing.T) {
	test.NewTempApp(t)

	fired := false
	b := NewHoldButton("Done", time.Hour, func() { fired = true })

	b.MouseDown(&desktop.MouseEvent{})
	b.MouseUp(&desktop.MouseEvent{})
	assert.Zero(t, b.Progress())

	b.MouseDown(&desktop.MouseEvent{})
	b.MouseOut()
	assert.Zero(t, b.Progress())
	assert.False(t, fired)
}

func TestActivityList(t *testing.T) {
	test.NewTempApp(t)

	templates := []models.ActivityTemplate{
		{ID: "walk", Title: "Morning walk", Duration: "30 min", Points: 10, Icon: "🚶"},
		{ID: "read", Title: "Read", Duration: "20 min", Points: 5},
	}
	var armed models.ActivityTemplate
	var removed []string
	al, _ := NewActivityList(templates, ActivityListConfig{
		OnArm:    func(t models.ActivityTemplate) { armed = t },
		OnRemove: func(t models.ActivityTemplate) { removed = append(removed, t.ID) },
	})

	al.Filter("WALK")
	require.Len(t, al.Items(), 1)
	al.Select(0)
	al.ArmSelected()
	assert.Equal(t, "walk", armed.ID)

	al.Filter("")
	assert.Len(t, al.Items(), 2)

	al.Select(1)
	al.RemoveSelected()
	assert.Equal(t, []string{"read"}, removed)
	assert.Len(t, al.Items(), 1)

	_, ok := al.Selected()
	assert.False(t, ok)
}

func TestActivityListCustomize(t *testing.T) {
	test.NewTempApp(t)

	templates := []models.ActivityTemplate{{ID: "walk", Title: "Morning walk"}, {ID: "read", Title: "Read"}}
	var customized []string
	al, _ := NewActivityList(templates, ActivityListConfig{
		OnCustomize: func(t models.ActivityTemplate) { customized = append(customized, t.ID) },
	})

	al.CustomizeSelected()
	assert.Empty(t, customized, "nothing selected")

	al.Select(1)
	al.CustomizeSelected()
	assert.Equal(t, []string{"read"}, customized)
	assert.Len(t, al.Items(), 2)
}

func TestActivityListQuery(t *testing.T) {
	test.NewTempApp(t)

	calls := 0
	al, _ := NewActivityList(nil, ActivityListConfig{
		Query: func(text string) []models.ActivityTemplate {
			calls++
			return []models.ActivityTemplate{{ID: "x", Title: text}}
		},
	})
	al.Filter("discipline")
	assert.Equal(t, 1, calls)
	assert.Equal(t, "discipline", al.Items()[0].Title)
}

func TestRenderTemplate(t *testing.T) {
	assert.Equal(t, "🚶 Walk  (30 min, 10 pts)", RenderTemplate(models.ActivityTemplate{Title: "Walk", Icon: "🚶", Duration: "30 min", Points: 10}))
}
