package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/borgmon/lightwalker/pkg/clock"
	"github.com/borgmon/lightwalker/pkg/models"
	"github.com/borgmon/lightwalker/pkg/timeline"
	"github.com/borgmon/lightwalker/pkg/ui/components"
)

// focusWindow is how far from the center marker, in minutes, an activity
// start may be and still be picked up for completion.
const focusWindow = 10

type TimelineWindow struct {
	lw     *Lightwalker
	window fyne.Window

	track        *components.Timeline
	activityList *components.ActivityList
	readout      *widget.Label
	focusLabel   *widget.Label
	statsLabel   *widget.Label
	errorLabel   *widget.Label
	retryButton  *widget.Button
	completeBtn  *components.HoldButton
	removeButton *widget.Button
	moveButton   *widget.Button

	focused string // activity id picked by tap, or empty to follow the center marker
}

func NewTimelineWindow(lw *Lightwalker) *TimelineWindow {
	tw := &TimelineWindow{
		lw:     lw,
		window: lw.app.NewWindow("Lightwalker"),
	}
	tw.buildUI()
	tw.refresh()
	return tw
}

func (tw *TimelineWindow) buildUI() {
	tw.track = components.NewTimeline()
	tw.track.Gesture().Mapper = tw.track.Gesture().Mapper.WithZoom(tw.lw.cfg.Timeline.PixelsPerMinute)
	tw.track.OnSelected = func(int) { tw.updateFocus() }
	tw.track.OnPlace = func(t models.ActivityTemplate, minute int) error {
		_, err := tw.lw.planner.Place(tw.lw.ctx, t, minute)
		if err == nil {
			tw.lw.refresh()
		}
		return err
	}
	tw.track.OnTapped = func(a models.TimelineActivity) {
		tw.focused = a.ID
		tw.updateFocus()
	}
	tw.track.OnError = tw.showError

	tw.readout = widget.NewLabel("")
	tw.readout.TextStyle = fyne.TextStyle{Bold: true}

	nowButton := widget.NewButtonWithIcon("Now", theme.HistoryIcon(), func() {
		tw.track.ResetToNow()
		tw.focused = ""
		tw.updateFocus()
	})

	zoom := widget.NewSlider(timeline.MinZoom, timeline.MaxZoom)
	zoom.Step = 0.5
	zoom.SetValue(tw.track.Gesture().Mapper.PixelsPerMinute)
	zoom.OnChanged = tw.track.SetZoom

	settingsButton := widget.NewButtonWithIcon("", theme.SettingsIcon(), tw.lw.showSettingsWindow)
	roleModelsButton := widget.NewButtonWithIcon("Role models", theme.AccountIcon(), tw.showRoleModelPicker)

	header := container.NewBorder(nil, nil,
		container.NewHBox(nowButton, tw.readout),
		container.NewHBox(widget.NewLabel("Zoom"), container.NewGridWrap(fyne.NewSize(160, zoom.MinSize().Height), zoom), roleModelsButton, settingsButton),
	)

	tw.focusLabel = widget.NewLabel("")
	tw.focusLabel.Wrapping = fyne.TextWrapWord
	tw.completeBtn = components.NewHoldButton("Hold to complete", time.Duration(tw.lw.appPrefs.HoldTimeSeconds)*time.Second, func() {
		fyne.Do(tw.completeFocused)
	})
	tw.removeButton = widget.NewButtonWithIcon("Remove", theme.DeleteIcon(), tw.removeFocused)
	tw.moveButton = widget.NewButtonWithIcon("Move to marker", theme.MoveDownIcon(), tw.moveFocused)

	tw.statsLabel = widget.NewLabel("")
	tw.statsLabel.Importance = widget.MediumImportance

	tw.errorLabel = widget.NewLabel("")
	tw.errorLabel.Importance = widget.DangerImportance
	tw.errorLabel.Hide()
	tw.retryButton = widget.NewButtonWithIcon("Retry", theme.ViewRefreshIcon(), tw.refresh)
	tw.retryButton.Hide()

	focusCard := widget.NewCard("", "", container.NewVBox(
		tw.focusLabel,
		container.NewHBox(tw.completeBtn, tw.moveButton, tw.removeButton),
		tw.statsLabel,
		container.NewHBox(tw.errorLabel, tw.retryButton),
	))

	var list *fyne.Container
	tw.activityList, list = components.NewActivityList(nil, components.ActivityListConfig{
		Query: func(text string) []models.ActivityTemplate {
			found, err := tw.lw.planner.SearchTemplates(tw.lw.ctx, text)
			if err != nil {
				tw.showError(err)
				return nil
			}
			return found
		},
		OnArm: func(t models.ActivityTemplate) {
			tw.track.Arm(&t)
		},
		OnCustomize: tw.showCustomizeDialog,
	})
	addAtMarker := widget.NewButtonWithIcon("Add at marker", theme.ContentAddIcon(), tw.addSelectedAtMarker)
	addAtMarker.Importance = widget.HighImportance

	inventory := container.NewBorder(
		widget.NewLabelWithStyle("Activities", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		addAtMarker, nil, nil, list)

	trackPane := container.NewBorder(header, focusCard, nil, nil, tw.track)
	split := container.NewHSplit(trackPane, inventory)
	split.Offset = 0.7

	tw.window.SetContent(container.NewPadded(split))
	tw.window.Resize(fyne.NewSize(1100, 520))
	tw.window.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeyLeft:
			tw.track.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(float32(tw.track.Gesture().Mapper.PixelsPerMinute*15), 0)})
		case fyne.KeyRight:
			tw.track.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(-float32(tw.track.Gesture().Mapper.PixelsPerMinute*15), 0)})
		case fyne.KeyEscape:
			tw.track.Arm(nil)
			tw.track.ResetToNow()
		}
	})
}

func (tw *TimelineWindow) Show() {
	tw.window.Show()
}

// tick runs on the UI goroutine every clock tick.
func (tw *TimelineWindow) tick(rolledOver bool) {
	if rolledOver {
		tw.focused = ""
		tw.refresh()
		return
	}
	tw.track.Refresh()
	tw.updateFocus()
}

// refresh reloads the board, the inventory and the stats.
func (tw *TimelineWindow) refresh() {
	ctx := tw.lw.ctx
	tw.track.SetActivities(tw.lw.planner.Activities())

	inventory, err := tw.lw.planner.Inventory(ctx)
	if err != nil {
		tw.showError(err)
		return
	}
	tw.activityList.SetItems(inventory)

	stats, err := tw.lw.planner.Stats(ctx)
	if err != nil {
		tw.showError(err)
		return
	}
	tw.statsLabel.SetText(fmt.Sprintf("Today %d pts from %d activities  ·  %d day streak  ·  %d pts total",
		stats.PointsToday, stats.CompletionsToday, stats.Streak, stats.TotalPoints))
	tw.clearError()
	tw.updateFocus()
}

// focus centers the track on activityID and selects it.
func (tw *TimelineWindow) focus(activityID string) {
	a, ok := tw.lw.planner.Get(activityID)
	if !ok {
		return
	}
	tw.focused = a.ID
	tw.track.CenterOn(clock.ClockMinutes(a.ScheduledTime))
	tw.updateFocus()
}

func (tw *TimelineWindow) centerMinute() float64 {
	return tw.track.Gesture().CenterMinute(time.Now())
}

// focusedActivity is the tapped activity, or else the one under the center marker.
func (tw *TimelineWindow) focusedActivity() (models.TimelineActivity, bool) {
	if tw.focused != "" {
		if a, ok := tw.lw.planner.Get(tw.focused); ok {
			return a, true
		}
		tw.focused = ""
	}
	return tw.lw.planner.ActivityAt(tw.centerMinute(), focusWindow)
}

func (tw *TimelineWindow) updateFocus() {
	center := clock.Round(tw.centerMinute(), timeline.QuantumDesktop)
	prefix := "Now"
	if tw.track.Gesture().Paused() {
		prefix = "Selected"
	}
	tw.readout.SetText(fmt.Sprintf("%s %s", prefix, clock.Format12h(center)))

	a, ok := tw.focusedActivity()
	if !ok {
		tw.focusLabel.SetText("Scroll the timeline or tap an activity. Pick one from the list and tap a slot to place it.")
		tw.completeBtn.Hide()
		tw.removeButton.Disable()
		tw.moveButton.Disable()
		return
	}

	status := fmt.Sprintf("%s %s  ·  %s for %s  ·  %d pts", a.Icon, a.Title, clock.Format12h(clock.ClockMinutes(a.ScheduledTime)), a.Duration, a.Points)
	if a.Completed {
		status += "  ·  done"
		tw.completeBtn.Hide()
	} else {
		tw.completeBtn.Show()
	}
	tw.focusLabel.SetText(status)
	tw.removeButton.Enable()
	if tw.focused != "" && tw.track.Gesture().Paused() {
		tw.moveButton.Enable()
	} else {
		tw.moveButton.Disable()
	}
}

func (tw *TimelineWindow) completeFocused() {
	a, ok := tw.focusedActivity()
	if !ok {
		return
	}
	completion, err := tw.lw.planner.Complete(tw.lw.ctx, a.ID)
	if err != nil {
		tw.showError(err)
		return
	}
	tw.lw.refresh()
	if completion.Points > 0 {
		tw.lw.app.SendNotification(fyne.NewNotification(
			fmt.Sprintf("+%d points", completion.Points),
			fmt.Sprintf("%s done. Streak: %d days", a.Title, completion.Streak),
		))
	}
}

func (tw *TimelineWindow) removeFocused() {
	a, ok := tw.focusedActivity()
	if !ok {
		return
	}
	dialog.ShowConfirm("Remove activity", fmt.Sprintf("Remove %s from today?", a.Title), func(confirmed bool) {
		if !confirmed {
			return
		}
		if _, err := tw.lw.planner.Remove(tw.lw.ctx, a.ID); err != nil {
			tw.showError(err)
			return
		}
		tw.focused = ""
		tw.lw.refresh()
	}, tw.window)
}

func (tw *TimelineWindow) moveFocused() {
	if tw.focused == "" {
		return
	}
	minute, ok := tw.track.Gesture().Selected()
	if !ok {
		return
	}
	if _, err := tw.lw.planner.Move(tw.lw.ctx, tw.focused, minute); err != nil {
		tw.showError(err)
		return
	}
	tw.lw.refresh()
}

// addSelectedAtMarker drops the highlighted template at the center marker.
func (tw *TimelineWindow) addSelectedAtMarker() {
	t, ok := tw.activityList.Selected()
	if !ok {
		dialog.ShowInformation("No activity selected", "Select an activity from the list first.", tw.window)
		return
	}
	minute := clock.Round(tw.centerMinute(), tw.lw.placementQuantum())
	if _, err := tw.lw.planner.Place(tw.lw.ctx, t, minute); err != nil {
		tw.showError(fmt.Errorf("place %s at %s: %w", t.Title, clock.Format12h(minute), err))
		return
	}
	tw.lw.refresh()
}

// showRoleModelPicker lets the user choose whose habits are suggested.
func (tw *TimelineWindow) showRoleModelPicker() {
	roleModels, err := tw.lw.planner.RoleModels(tw.lw.ctx)
	if err != nil {
		tw.showError(err)
		return
	}
	names := make([]string, len(roleModels))
	for i, rm := range roleModels {
		names[i] = rm.Name
	}
	checks := widget.NewCheckGroup(names, nil)
	checks.SetSelected(roleModelNames(roleModels, tw.lw.planner.SelectedRoleModels()))

	dialog.ShowCustomConfirm("Role models", "Save", "Cancel", container.NewVScroll(checks), func(save bool) {
		if save {
			tw.applyRoleModels(roleModelSlugs(roleModels, checks.Selected))
		}
	}, tw.window)
}

func (tw *TimelineWindow) applyRoleModels(slugs []string) {
	if err := tw.lw.planner.SelectRoleModels(tw.lw.ctx, slugs...); err != nil {
		tw.showError(err)
		return
	}
	tw.lw.refresh()
}

// showCustomizeDialog edits the user's overrides for a catalog activity.
func (tw *TimelineWindow) showCustomizeDialog(t models.ActivityTemplate) {
	current, _, err := tw.lw.planner.Preference(tw.lw.ctx, t.ID)
	if err != nil {
		tw.showError(err)
		return
	}

	duration := widget.NewEntry()
	duration.SetPlaceHolder(t.Duration)
	duration.SetText(current.Duration)
	points := widget.NewEntry()
	points.SetPlaceHolder(strconv.Itoa(t.Points))
	if current.Points != 0 {
		points.SetText(strconv.Itoa(current.Points))
	}
	difficulty := widget.NewSelect([]string{"", string(models.DifficultyEasy), string(models.DifficultyMedium), string(models.DifficultyHard)}, nil)
	difficulty.SetSelected(string(current.Difficulty))
	icon := widget.NewEntry()
	icon.SetPlaceHolder(t.Icon)
	icon.SetText(current.Icon)
	gridSize := widget.NewSelect([]string{"", "1x1", "2x1", "1x2", "2x2"}, nil)
	gridSize.SetSelected(current.GridSize)
	image := widget.NewEntry()
	image.SetPlaceHolder("file:///path/to/image.png")
	image.SetText(current.ImageURL)

	items := []*widget.FormItem{
		widget.NewFormItem("Duration", duration),
		widget.NewFormItem("Points", points),
		widget.NewFormItem("Difficulty", difficulty),
		widget.NewFormItem("Icon", icon),
		widget.NewFormItem("Grid size", gridSize),
		widget.NewFormItem("Image", image),
	}
	form := dialog.NewForm("Customize "+t.Title, "Save", "Cancel", items, func(save bool) {
		if !save {
			return
		}
		pref, err := preferenceFromForm(t.ID, duration.Text, points.Text, difficulty.Selected, icon.Text, gridSize.Selected, image.Text)
		if err != nil {
			dialog.ShowError(err, tw.window)
			return
		}
		tw.applyCustomization(pref)
	}, tw.window)
	form.Resize(fyne.NewSize(420, 0))
	form.Show()
}

func (tw *TimelineWindow) applyCustomization(pref models.ActivityPreference) {
	if err := tw.lw.planner.Customize(tw.lw.ctx, pref); err != nil {
		tw.showError(err)
		return
	}
	tw.lw.refresh()
}

// preferenceFromForm builds overrides from the customize form; blank fields keep the template value.
func preferenceFromForm(templateID, duration, points, difficulty, icon, gridSize, image string) (models.ActivityPreference, error) {
	pref := models.ActivityPreference{
		ActivityID: templateID,
		Duration:   strings.TrimSpace(duration),
		Difficulty: models.Difficulty(difficulty),
		Icon:       strings.TrimSpace(icon),
		GridSize:   gridSize,
		ImageURL:   strings.TrimSpace(image),
	}
	if pref.Duration != "" {
		pref.Duration = clock.FormatDuration(clock.ParseDuration(pref.Duration))
	}
	if p := strings.TrimSpace(points); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return models.ActivityPreference{}, errors.New("points must be a whole number of zero or more")
		}
		pref.Points = n
	}
	return pref, nil
}

func roleModelNames(roleModels []models.RoleModel, slugs []string) []string {
	var names []string
	for _, slug := range slugs {
		for _, rm := range roleModels {
			if rm.Slug == slug {
				names = append(names, rm.Name)
			}
		}
	}
	return names
}

func roleModelSlugs(roleModels []models.RoleModel, names []string) []string {
	var slugs []string
	for _, rm := range roleModels {
		for _, name := range names {
			if rm.Name == name {
				slugs = append(slugs, rm.Slug)
			}
		}
	}
	return slugs
}

func (tw *TimelineWindow) showError(err error) {
	tw.lw.logger.Error().Err(err).Msg("Timeline action failed")
	msg := err.Error()
	if errors.Is(err, timeline.ErrSlotOccupied) {
		msg = "Another activity already starts at that time."
	}
	tw.errorLabel.SetText(msg)
	tw.errorLabel.Show()
	tw.retryButton.Show()
}

func (tw *TimelineWindow) clearError() {
	tw.errorLabel.Hide()
	tw.retryButton.Hide()
}
