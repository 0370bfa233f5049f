package planner

import (
	"context"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/lightwalker/pkg/catalog"
	"github.com/borgmon/lightwalker/pkg/db"
	"github.com/borgmon/lightwalker/pkg/events"
	"github.com/borgmon/lightwalker/pkg/models"
	"github.com/borgmon/lightwalker/pkg/notify"
	"github.com/borgmon/lightwalker/pkg/store"
	"github.com/borgmon/lightwalker/pkg/timeline"
)

type fixture struct {
	planner   *Planner
	scheduler *notify.Scheduler
	bus       *events.Bus
	prefs     store.Preferences
	database  *db.DB
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, db.MemoryPath, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	_, err = catalog.Seed(ctx, database, false)
	require.NoError(t, err)

	f := &fixture{
		bus:      events.NewBus(),
		prefs:    test.NewTempApp(t).Preferences(),
		database: database,
		now:      time.Date(2026, time.March, 10, 8, 0, 0, 0, time.Local),
	}
	clock := func() time.Time { return f.now }
	f.scheduler = notify.NewScheduler(models.DefaultNotificationSettings(), notify.WithClock(clock), notify.WithBus(f.bus))

	f.planner, err = New(Deps{DB: database, Scheduler: f.scheduler, Bus: f.bus, Prefs: f.prefs, Now: clock})
	require.NoError(t, err)
	return f
}

func template(t *testing.T, f *fixture, id string) models.ActivityTemplate {
	t.Helper()
	tmpl, err := catalog.NewTemplateRepository(f.database).Get(context.Background(), id)
	require.NoError(t, err)
	return tmpl
}

func alertIDs(alerts []models.ActivityAlert) []string {
	ids := make([]string, len(alerts))
	for i, a := range alerts {
		ids[i] = a.ID
	}
	return ids
}

func TestNewRequiresDB(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}

func TestPlaceArmsRemindersAndPersists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.planner.Place(ctx, template(t, f, "deep-reading"), 9*60)
	require.NoError(t, err)
	assert.Equal(t, "09:00", a.ScheduledTime)
	assert.Equal(t, "deep-reading", a.TemplateID)

	assert.ElementsMatch(t, []string{
		notify.AlertID(a.ID, models.AlertTypePreActivity),
		notify.AlertID(a.ID, models.AlertTypeStart),
		notify.AlertID(a.ID, models.AlertTypeCompletionReminder),
	}, alertIDs(f.scheduler.Pending()))

	saved, err := store.LoadTimeline(f.prefs, f.now)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, a.ID, saved[0].ID)

	used := template(t, f, "deep-reading")
	assert.Equal(t, 1, used.TimesUsed)
}

func TestPlaceOccupiedSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.planner.Place(ctx, template(t, f, "deep-reading"), 9*60)
	require.NoError(t, err)
	_, err = f.planner.Place(ctx, template(t, f, "sketching"), 9*60)
	assert.ErrorIs(t, err, timeline.ErrSlotOccupied)
	assert.Len(t, f.planner.Activities(), 1)
}

func TestPlaceAppliesPreference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, catalog.NewPreferenceRepository(f.database).Upsert(ctx, models.ActivityPreference{
		ActivityID: "sketching",
		Duration:   "45 min",
		Points:     40,
	}))

	a, err := f.planner.Place(ctx, template(t, f, "sketching"), 14*60)
	require.NoError(t, err)
	assert.Equal(t, "45 min", a.Duration)
	assert.Equal(t, 40, a.Points)
	assert.Equal(t, "✏️", a.Icon)
}

func TestPlaceAppliesEveryPreferenceField(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, catalog.NewPreferenceRepository(f.database).Upsert(ctx, models.ActivityPreference{
		ActivityID: "sketching",
		Difficulty: models.DifficultyHard,
		GridSize:   "2x2",
		Icon:       "🎨",
	}))

	// The board does not carry difficulty or grid size, so check the template the planner builds.
	got := f.planner.withPreference(ctx, template(t, f, "sketching"))
	assert.Equal(t, models.DifficultyHard, got.Difficulty)
	assert.Equal(t, "2x2", got.GridSize)
	assert.Equal(t, "🎨", got.Icon)
	assert.Equal(t, "20 min", got.Duration)
	assert.Equal(t, 15, got.Points)
}

func TestMoveReschedulesAndRemoveCancels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.planner.Place(ctx, template(t, f, "deep-reading"), 9*60)
	require.NoError(t, err)

	_, err = f.planner.Move(ctx, a.ID, 10*60)
	require.NoError(t, err)

	pending := f.scheduler.Pending()
	require.Len(t, pending, 3)
	for _, alert := range pending {
		if alert.AlertType == models.AlertTypeStart {
			assert.Equal(t, 10, alert.ScheduledTime.Hour())
		}
	}

	_, err = f.planner.Remove(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, f.scheduler.Pending())
	assert.Equal(t, models.AlertStateCancelled, f.scheduler.State(notify.AlertID(a.ID, models.AlertTypeStart)))

	_, err = f.planner.Remove(ctx, a.ID)
	assert.ErrorIs(t, err, timeline.ErrNotFound)
}

func TestPastActivityGetsOnlyFutureAlerts(t *testing.T) {
	f := newFixture(t)

	// Starts at 07:50; only the completion reminder at 08:35 is still ahead.
	a, err := f.planner.Place(context.Background(), template(t, f, "deep-reading"), 7*60+50)
	require.NoError(t, err)
	assert.Equal(t, []string{notify.AlertID(a.ID, models.AlertTypeCompletionReminder)}, alertIDs(f.scheduler.Pending()))
}

func TestCompleteRecordsAndPublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var published []events.ActivityCompletion
	require.NoError(t, events.Subscribe(f.bus, events.ActivityCompleted, "test", func(_ context.Context, c events.ActivityCompletion) {
		published = append(published, c)
	}))

	a, err := f.planner.Place(ctx, template(t, f, "cold-shower"), 9*60)
	require.NoError(t, err)

	c, err := f.planner.Complete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, c.Points)
	assert.Equal(t, 1, c.Streak)
	assert.True(t, c.Activity.Completed)
	assert.Empty(t, f.scheduler.Pending())
	require.Len(t, published, 1)

	completed, err := f.planner.CompletedToday(ctx)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, a.ID, completed[0].ActivityID)
	assert.Equal(t, "cold-shower", completed[0].TemplateID)

	// A second completion changes nothing.
	_, err = f.planner.Complete(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, published, 1)

	stats, err := f.planner.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, stats.PointsToday)
	assert.Equal(t, 1, stats.CompletionsToday)

	_, err = f.planner.Complete(ctx, "missing")
	assert.ErrorIs(t, err, timeline.ErrNotFound)
}

func TestDropEventPlacesActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.planner.Start(ctx))
	require.NoError(t, f.planner.Start(ctx), "second start is a no-op")

	n := events.Publish(ctx, f.bus, events.ActivityDropped, events.ActivityDrop{Template: template(t, f, "power-nap"), Minute: 13*60 + 30})
	assert.Equal(t, 1, n)
	require.Len(t, f.planner.Activities(), 1)
	assert.Equal(t, "13:30", f.planner.Activities()[0].ScheduledTime)

	events.Publish(ctx, f.bus, events.ActivityImageUpdated, events.ActivityImage{ActivityID: "power-nap", ImageURL: "file:///nap.png"})
	pref, err := catalog.NewPreferenceRepository(f.database).Get(ctx, "power-nap")
	require.NoError(t, err)
	assert.Equal(t, "file:///nap.png", pref.ImageURL)

	f.planner.Stop()
	assert.Zero(t, events.Publish(ctx, f.bus, events.ActivityDropped, events.ActivityDrop{}))
}

func TestLoadRestoresTimeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	saved := []models.TimelineActivity{
		{ID: "a1", Title: "Walk", ScheduledTime: "09:00", Duration: "30 min", Category: models.CategoryPhysical},
		{ID: "a2", Title: "Clash", ScheduledTime: "09:00", Duration: "30 min"},
	}
	require.NoError(t, store.SaveTimeline(f.prefs, f.now, saved))

	require.NoError(t, f.planner.Load(ctx))
	acts := f.planner.Activities()
	require.Len(t, acts, 1, "the clashing activity is skipped")
	assert.Equal(t, "a1", acts[0].ID)
	assert.Len(t, f.scheduler.Pending(), 3)
}

func TestRolloverClearsBoard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.planner.Place(ctx, template(t, f, "deep-reading"), 22*60)
	require.NoError(t, err)
	assert.False(t, f.planner.Rollover())

	f.now = f.now.AddDate(0, 0, 1)
	assert.True(t, f.planner.Rollover())
	assert.Empty(t, f.planner.Activities())
	assert.Empty(t, f.scheduler.Pending())
}

func TestUpdateSettingsRearms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.planner.Place(ctx, template(t, f, "deep-reading"), 9*60)
	require.NoError(t, err)

	settings := models.DefaultNotificationSettings()
	settings.ShowMinutesBefore = 0
	require.NoError(t, f.planner.UpdateSettings(settings))
	assert.ElementsMatch(t, []string{
		notify.AlertID(a.ID, models.AlertTypeStart),
		notify.AlertID(a.ID, models.AlertTypeCompletionReminder),
	}, alertIDs(f.scheduler.Pending()))
	assert.Equal(t, 0, store.LoadNotificationSettings(f.prefs, models.DefaultNotificationSettings()).ShowMinutesBefore)

	settings.Enabled = false
	require.NoError(t, f.planner.UpdateSettings(settings))
	assert.Empty(t, f.scheduler.Pending())

	settings.Volume = 3
	assert.Error(t, f.planner.UpdateSettings(settings))
}

func TestSuggestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.planner.SelectRoleModels(ctx, "marcus-aurelius"))
	got, err := f.planner.Suggestions(ctx)
	require.NoError(t, err)

	var roleModelIDs []string
	for _, a := range got {
		if a.Source == models.SourceRoleModel {
			roleModelIDs = append(roleModelIDs, a.ID)
		}
	}
	assert.ElementsMatch(t, catalog.RoleModelActivities["marcus-aurelius"], roleModelIDs)
}

func TestSearchTemplates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.planner.SearchTemplates(ctx, "sketch")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "sketching", got[0].ID)

	got, err = f.planner.SearchTemplates(ctx, "stoic discipline")
	require.NoError(t, err)
	var ids []string
	for _, tmpl := range got {
		ids = append(ids, tmpl.ID)
	}
	assert.Contains(t, ids, "cold-shower")
}

func TestCompleteAlreadyRecordedDoesNotScoreTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var published int
	require.NoError(t, events.Subscribe(f.bus, events.ActivityCompleted, "test", func(context.Context, events.ActivityCompletion) {
		published++
	}))

	a, err := f.planner.Place(ctx, template(t, f, "cold-shower"), 9*60)
	require.NoError(t, err)
	_, err = f.planner.ledger.Complete(ctx, a, f.now)
	require.NoError(t, err)

	c, err := f.planner.Complete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, c.Activity.Completed)
	assert.Zero(t, c.Points)
	assert.Zero(t, published)
	assert.Empty(t, f.scheduler.Pending())

	completed, err := f.planner.CompletedToday(ctx)
	require.NoError(t, err)
	assert.Len(t, completed, 1)

	saved, err := store.LoadTimeline(f.prefs, f.now)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.True(t, saved[0].Completed)
}

func TestSelectRoleModelsPersistsAndValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.planner.SelectRoleModels(ctx, "marie-curie", "maya-angelou"))
	assert.Equal(t, []string{"marie-curie", "maya-angelou"}, f.planner.SelectedRoleModels())

	err := f.planner.SelectRoleModels(ctx, "marie-curie", "nobody")
	assert.ErrorIs(t, err, catalog.ErrRoleModelNotFound)
	assert.Equal(t, []string{"marie-curie", "maya-angelou"}, f.planner.SelectedRoleModels())

	restored, err := New(Deps{DB: f.database, Prefs: f.prefs, Now: func() time.Time { return f.now }})
	require.NoError(t, err)
	require.NoError(t, restored.Load(ctx))
	assert.Equal(t, []string{"marie-curie", "maya-angelou"}, restored.SelectedRoleModels())
}

func TestInventoryFollowsMergeOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, catalog.NewPreferenceRepository(f.database).Upsert(ctx, models.ActivityPreference{
		ActivityID: "power-nap",
		Duration:   "25 min",
	}))
	require.NoError(t, f.planner.SelectRoleModels(ctx, "leonardo-da-vinci"))
	_, err := f.planner.Place(ctx, template(t, f, "deep-reading"), 9*60)
	require.NoError(t, err)

	inventory, err := f.planner.Inventory(ctx)
	require.NoError(t, err)
	suggestions, err := f.planner.Suggestions(ctx)
	require.NoError(t, err)
	require.Len(t, inventory, len(suggestions))

	for i, s := range suggestions {
		assert.Equal(t, s.ID, inventory[i].ID)
	}
	assert.Equal(t, "deep-reading", inventory[0].ID, "placed activities come first")
	assert.Equal(t, "power-nap", inventory[1].ID, "then preferences")
	assert.Equal(t, "25 min", inventory[1].Duration)

	var sawSketching bool
	for _, tmpl := range inventory {
		if tmpl.ID == "sketching" {
			sawSketching = true
		}
	}
	assert.True(t, sawSketching)
}

func TestCustomizeStoresPreference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var images []events.ActivityImage
	require.NoError(t, events.Subscribe(f.bus, events.ActivityImageUpdated, "test", func(_ context.Context, img events.ActivityImage) {
		images = append(images, img)
	}))

	require.NoError(t, f.planner.Customize(ctx, models.ActivityPreference{
		ActivityID: "journaling",
		Duration:   "30 min",
		Points:     25,
		ImageURL:   "file:///journal.png",
	}))

	pref, ok, err := f.planner.Preference(ctx, "journaling")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "30 min", pref.Duration)
	assert.Equal(t, 25, pref.Points)
	assert.Equal(t, "file:///journal.png", pref.ImageURL)
	require.Len(t, images, 1)
	assert.Equal(t, "journaling", images[0].ActivityID)

	a, err := f.planner.Place(ctx, template(t, f, "journaling"), 20*60)
	require.NoError(t, err)
	assert.Equal(t, "30 min", a.Duration)
	assert.Equal(t, 25, a.Points)

	// Same image again is not re-announced.
	require.NoError(t, f.planner.Customize(ctx, models.ActivityPreference{ActivityID: "journaling", ImageURL: "file:///journal.png"}))
	assert.Len(t, images, 1)

	_, ok, err = f.planner.Preference(ctx, "sketching")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCustomizeSavesImageThroughSubscription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.planner.Start(ctx))
	t.Cleanup(f.planner.Stop)

	require.NoError(t, f.planner.Customize(ctx, models.ActivityPreference{ActivityID: "power-nap", ImageURL: "file:///nap.png"}))
	pref, ok, err := f.planner.Preference(ctx, "power-nap")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "file:///nap.png", pref.ImageURL)
}

func TestCustomizeRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.planner.Customize(ctx, models.ActivityPreference{ActivityID: "missing"})
	assert.ErrorIs(t, err, catalog.ErrTemplateNotFound)

	err = f.planner.Customize(ctx, models.ActivityPreference{ActivityID: "journaling", Points: -5})
	assert.Error(t, err)
	_, ok, err := f.planner.Preference(ctx, "journaling")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTemplatesInCategory(t *testing.T) {
	f := newFixture(t)

	got, err := f.planner.TemplatesInCategory(context.Background(), models.CategoryRest)
	require.NoError(t, err)
	var ids []string
	for _, tmpl := range got {
		assert.Equal(t, models.CategoryRest, tmpl.Category)
		ids = append(ids, tmpl.ID)
	}
	assert.ElementsMatch(t, []string{"power-nap", "evening-wind-down"}, ids)
}

func TestRoleModelLookupAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rm, err := f.planner.RoleModel(ctx, "marie-curie")
	require.NoError(t, err)
	assert.Equal(t, "Marie Curie", rm.Name)

	rm.Era = "1867 to 1934"
	updated, err := f.planner.UpdateRoleModel(ctx, rm)
	require.NoError(t, err)
	assert.Equal(t, "1867 to 1934", updated.Era)
	assert.Equal(t, rm.Attributes, updated.Attributes)

	rm.Name = " "
	_, err = f.planner.UpdateRoleModel(ctx, rm)
	assert.Error(t, err)

	_, err = f.planner.RoleModel(ctx, "nobody")
	assert.ErrorIs(t, err, catalog.ErrRoleModelNotFound)
}
