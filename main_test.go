package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/lightwalker/pkg/catalog"
	"github.com/borgmon/lightwalker/pkg/config"
	"github.com/borgmon/lightwalker/pkg/db"
	"github.com/borgmon/lightwalker/pkg/events"
	"github.com/borgmon/lightwalker/pkg/logging"
	"github.com/borgmon/lightwalker/pkg/models"
	"github.com/borgmon/lightwalker/pkg/notify"
	"github.com/borgmon/lightwalker/pkg/planner"
	"github.com/borgmon/lightwalker/pkg/store"
)

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "Morning ...", truncateString("Morning reflection", 11))
	assert.Equal(t, "🧘🧘🧘...", truncateString("🧘🧘🧘🧘🧘🧘🧘", 6))
}

func reminder(id string, at time.Time) models.ActivityAlert {
	return models.ActivityAlert{
		ID:                 id,
		TimelineActivityID: id,
		ActivityTitle:      id,
		ScheduledTime:      at,
		AlertType:          models.AlertTypeStart,
		IsEnabled:          true,
	}
}

func TestUpcomingTodayAlerts(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	alerts := []models.ActivityAlert{
		reminder("late", now.Add(5*time.Hour)),
		reminder("past", now.Add(-time.Minute)),
		reminder("soon", now.Add(10*time.Minute)),
		reminder("tomorrow", now.Add(20*time.Hour)),
		reminder("noon", now.Add(3*time.Hour)),
	}

	got := upcomingTodayAlerts(alerts, now, 5)
	ids := make([]string, 0, len(got))
	for _, a := range got {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"soon", "noon", "late"}, ids)

	assert.Len(t, upcomingTodayAlerts(alerts, now, 1), 1)
}

func TestPendingRemindersOrdersAndLimits(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	alerts := []models.ActivityAlert{
		reminder("b", base.Add(time.Hour)),
		reminder("a", base),
		reminder("c", base.Add(2*time.Hour)),
	}
	got := pendingReminders(alerts, time.Time{}, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestMinutesOptions(t *testing.T) {
	assert.Equal(t, "0 min (off)", formatMinutesOption(0))
	assert.Equal(t, "5 min", formatMinutesOption(5))
	assert.Equal(t, 0, parseMinutesOption("0 min (off)"))
	assert.Equal(t, 10, parseMinutesOption("10 min"))
	assert.Equal(t, "30", trimUnit("30 sec", " sec"))
}

func TestAlertTypeLabel(t *testing.T) {
	a := models.ActivityAlert{AlertType: models.AlertTypePreActivity, MinutesBefore: 5}
	assert.Equal(t, "5 min before", alertTypeLabel(a))
	a.AlertType = models.AlertTypeCompletionReminder
	assert.Equal(t, "Completion check", alertTypeLabel(a))
	a.AlertType = models.AlertTypeStart
	assert.Equal(t, "At start", alertTypeLabel(a))
}

func TestInAppBannerOpensActivity(t *testing.T) {
	a := test.NewTempApp(t)
	bus := events.NewBus()
	defer bus.Close()

	banner := NewInAppBanner(a, bus)
	require.NoError(t, banner.Start())
	defer banner.Stop()

	var clicks []events.NotificationClick
	require.NoError(t, events.Subscribe(bus, events.NotificationClicked, "test", func(_ context.Context, c events.NotificationClick) {
		clicks = append(clicks, c)
	}))

	delivered := events.Publish(context.Background(), bus, events.NotificationShown, events.Notification{
		Title: "Time for: Deep reading",
		Body:  "Your activity is starting now",
		Tag:   "lightwalker-activity-t1",
		Alert: models.ActivityAlert{TimelineActivityID: "t1"},
	})
	assert.Equal(t, 1, delivered)
	assert.True(t, banner.Visible())

	banner.Open()
	assert.False(t, banner.Visible())
	require.Len(t, clicks, 1)
	assert.Equal(t, "t1", clicks[0].TimelineActivityID)
	assert.Equal(t, "lightwalker-activity-t1", clicks[0].Tag)
}

func TestInAppBannerReplacesAndDismisses(t *testing.T) {
	a := test.NewTempApp(t)
	banner := NewInAppBanner(a, events.NewBus())

	banner.Show(events.Notification{Title: "first"})
	banner.Show(events.Notification{Title: "second"})
	assert.True(t, banner.Visible())
	assert.Equal(t, "second", banner.current.Title)

	banner.Dismiss()
	assert.False(t, banner.Visible())
	assert.Nil(t, banner.timer)
}

// newCLIConfig writes a config pointing at a fresh database and returns its path.
func newCLIConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := "global:\n  data_dir: " + dir + "\ndatabase:\n  path: " + filepath.Join(dir, "lw.db") + "\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath
}

func execCLI(cfgPath string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// runCLI executes the root command against a fresh database.
func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCLI(newCLIConfig(t), args...)
	require.NoError(t, err)
	return out
}

func TestSeedCommand(t *testing.T) {
	out := runCLI(t, "seed")
	assert.Contains(t, out, "Seeded")
	assert.Contains(t, out, "role models")
}

func TestSearchCommand(t *testing.T) {
	out := runCLI(t, "search", "discipline")
	assert.Contains(t, out, "SCORE")
	assert.Contains(t, out, "Marcus Aurelius")
	assert.Contains(t, out, "Stoic Discipline")
}

func TestSearchCommandNoMatches(t *testing.T) {
	out := runCLI(t, "search", "zzzqqq")
	assert.Contains(t, out, "No matches")
}

func TestStatsCommand(t *testing.T) {
	out := runCLI(t, "stats")
	assert.Contains(t, out, "Today: 0 points from 0 activities")
	assert.Contains(t, out, "Streak: 0 days")
}

func TestSuggestCommand(t *testing.T) {
	out := runCLI(t, "suggest", "--role-model", "marcus-aurelius")
	assert.Contains(t, out, "ACTIVITY")
	assert.Contains(t, out, "role_model")
}

func TestSuggestCommandUnknownRoleModel(t *testing.T) {
	_, err := execCLI(newCLIConfig(t), "suggest", "--role-model", "nobody")
	assert.ErrorIs(t, err, catalog.ErrRoleModelNotFound)
}

func TestActivitiesCommand(t *testing.T) {
	out := runCLI(t, "activities")
	assert.Contains(t, out, "deep-reading")
	assert.Contains(t, out, "power-nap")

	out = runCLI(t, "activities", "--category", "rest")
	assert.Contains(t, out, "power-nap")
	assert.Contains(t, out, "evening-wind-down")
	assert.NotContains(t, out, "deep-reading")

	_, err := execCLI(newCLIConfig(t), "activities", "--category", "juggling")
	assert.Error(t, err)
}

func TestRoleModelsCommands(t *testing.T) {
	cfgPath := newCLIConfig(t)

	out, err := execCLI(cfgPath, "role-models", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "marcus-aurelius")
	assert.Contains(t, out, "Maya Angelou")

	out, err = execCLI(cfgPath, "role-models", "show", "marcus-aurelius")
	require.NoError(t, err)
	assert.Contains(t, out, "Marcus Aurelius")
	assert.Contains(t, out, "Stoic Discipline")

	_, err = execCLI(cfgPath, "role-models", "edit", "marcus-aurelius", "--era", "Roman emperor")
	require.NoError(t, err)
	out, err = execCLI(cfgPath, "role-models", "show", "marcus-aurelius")
	require.NoError(t, err)
	assert.Contains(t, out, "Marcus Aurelius (Roman emperor)")

	_, err = execCLI(cfgPath, "role-models", "show", "nobody")
	assert.ErrorIs(t, err, catalog.ErrRoleModelNotFound)
}

// newTestLightwalker wires a planner over an in-memory catalog without the tray or clock goroutines.
func newTestLightwalker(t *testing.T) *Lightwalker {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, db.MemoryPath, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	_, err = catalog.Seed(ctx, database, false)
	require.NoError(t, err)

	a := test.NewTempApp(t)
	bus := events.NewBus()
	scheduler := notify.NewScheduler(models.DefaultNotificationSettings(), notify.WithBus(bus))
	p, err := planner.New(planner.Deps{DB: database, Scheduler: scheduler, Bus: bus, Prefs: a.Preferences()})
	require.NoError(t, err)

	return &Lightwalker{
		app:       a,
		cfg:       config.DefaultConfig(),
		db:        database,
		bus:       bus,
		scheduler: scheduler,
		planner:   p,
		appPrefs:  store.AppPreferences{HoldTimeSeconds: 1},
		logger:    logging.Component("ui"),
		ctx:       ctx,
		cancel:    func() {},
	}
}

func TestTimelineWindowListsInventory(t *testing.T) {
	lw := newTestLightwalker(t)
	require.NoError(t, lw.planner.SelectRoleModels(lw.ctx, "maya-angelou"))
	tw := NewTimelineWindow(lw)

	want, err := lw.planner.Inventory(lw.ctx)
	require.NoError(t, err)
	assert.Equal(t, want, tw.activityList.Items())
}

func TestAddAtMarkerReportsPlaceError(t *testing.T) {
	lw := newTestLightwalker(t)
	tw := NewTimelineWindow(lw)
	lw.timelineWindow = tw

	tw.track.CenterOn(10 * 60)
	tw.activityList.Select(0)
	tw.addSelectedAtMarker()
	require.Len(t, lw.planner.Activities(), 1)
	assert.Equal(t, "10:00", lw.planner.Activities()[0].ScheduledTime)
	assert.False(t, tw.errorLabel.Visible())

	// The board now holds the slot under the marker.
	tw.activityList.Select(1)
	tw.addSelectedAtMarker()
	assert.Len(t, lw.planner.Activities(), 1)
	assert.True(t, tw.errorLabel.Visible())
	assert.Equal(t, "Another activity already starts at that time.", tw.errorLabel.Text)
}

func TestApplyRoleModelsRefreshesInventory(t *testing.T) {
	lw := newTestLightwalker(t)
	tw := NewTimelineWindow(lw)
	lw.timelineWindow = tw

	tw.applyRoleModels([]string{"leonardo-da-vinci"})
	assert.Equal(t, []string{"leonardo-da-vinci"}, lw.planner.SelectedRoleModels())
	want, err := lw.planner.Inventory(lw.ctx)
	require.NoError(t, err)
	assert.Equal(t, want, tw.activityList.Items())

	tw.applyRoleModels([]string{"nobody"})
	assert.True(t, tw.errorLabel.Visible())
	assert.Equal(t, []string{"leonardo-da-vinci"}, lw.planner.SelectedRoleModels())
}

func TestApplyCustomization(t *testing.T) {
	lw := newTestLightwalker(t)
	tw := NewTimelineWindow(lw)
	lw.timelineWindow = tw

	pref, err := preferenceFromForm("journaling", "45 min", "30", "hard", "", "", "")
	require.NoError(t, err)
	tw.applyCustomization(pref)
	assert.False(t, tw.errorLabel.Visible())

	var journaling models.ActivityTemplate
	for _, item := range tw.activityList.Items() {
		if item.ID == "journaling" {
			journaling = item
		}
	}
	assert.Equal(t, 30, journaling.Points)
	assert.Equal(t, models.DifficultyHard, journaling.Difficulty)
}

func TestPreferenceFromForm(t *testing.T) {
	pref, err := preferenceFromForm("walk", " 1h30m ", "", "", " 🚶 ", "2x1", "")
	require.NoError(t, err)
	assert.Equal(t, models.ActivityPreference{ActivityID: "walk", Duration: "1 hour 30 min", Icon: "🚶", GridSize: "2x1"}, pref)

	_, err = preferenceFromForm("walk", "", "many", "", "", "", "")
	assert.Error(t, err)
	_, err = preferenceFromForm("walk", "", "-3", "", "", "", "")
	assert.Error(t, err)
}

func TestRoleModelNamesAndSlugs(t *testing.T) {
	roleModels := []models.RoleModel{
		{Slug: "marcus-aurelius", Name: "Marcus Aurelius"},
		{Slug: "marie-curie", Name: "Marie Curie"},
	}
	assert.Equal(t, []string{"Marie Curie"}, roleModelNames(roleModels, []string{"marie-curie", "nobody"}))
	assert.Equal(t, []string{"marcus-aurelius", "marie-curie"}, roleModelSlugs(roleModels, []string{"Marie Curie", "Marcus Aurelius"}))
	assert.Empty(t, roleModelSlugs(roleModels, nil))
}
