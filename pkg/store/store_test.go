package store

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/lightwalker/pkg/models"
)

type memPrefs struct {
	strings map[string]string
	bools   map[string]bool
	ints    map[string]int
}

func newMemPrefs() *memPrefs {
	return &memPrefs{strings: map[string]string{}, bools: map[string]bool{}, ints: map[string]int{}}
}

func (p *memPrefs) String(key string) string { return p.strings[key] }
func (p *memPrefs) SetString(key string, value string) { p.strings[key] = value }
func (p *memPrefs) SetBool(key string, value bool) { p.bools[key] = value }
func (p *memPrefs) SetInt(key string, value int) { p.ints[key] = value }

func (p *memPrefs) BoolWithFallback(key string, fallback bool) bool {
	if v, ok := p.bools[key]; ok {
		return v
	}
	return fallback
}

func (p *memPrefs) IntWithFallback(key string, fallback int) int {
	if v, ok := p.ints[key]; ok {
		return v
	}
	return fallback
}

func TestLoadNotificationSettingsDefaults(t *testing.T) {
	assert.Equal(t, models.DefaultNotificationSettings(), LoadNotificationSettings(newMemPrefs(), models.DefaultNotificationSettings()))
}

func TestLoadNotificationSettingsSavedBeatsDefaults(t *testing.T) {
	defaults := models.DefaultNotificationSettings()
	defaults.ShowMinutesBefore = 10

	prefs := newMemPrefs()
	assert.Equal(t, 10, LoadNotificationSettings(prefs, defaults).ShowMinutesBefore)

	prefs.SetString(NotificationSettingsKey, `{"volume":0.5}`)
	assert.Equal(t, 10, LoadNotificationSettings(prefs, defaults).ShowMinutesBefore)

	prefs.SetString(NotificationSettingsKey, `{"showMinutesBefore":2}`)
	assert.Equal(t, 2, LoadNotificationSettings(prefs, defaults).ShowMinutesBefore)

	prefs.SetString(NotificationSettingsKey, `{not json`)
	assert.Equal(t, defaults, LoadNotificationSettings(prefs, defaults))
}

func TestNotificationSettingsRoundTrip(t *testing.T) {
	prefs := newMemPrefs()
	want := models.NotificationSettings{
		Enabled:           true,
		SoundEnabled:      false,
		SoundType:         models.SoundBell,
		Volume:            0.25,
		ShowMinutesBefore: 10,
		DoNotDisturbStart: "23:00",
		DoNotDisturbEnd:   "06:30",
	}

	require.NoError(t, SaveNotificationSettings(prefs, want))
	assert.Contains(t, prefs.strings[NotificationSettingsKey], `"soundType":"bell"`)
	assert.Equal(t, want, LoadNotificationSettings(prefs, models.DefaultNotificationSettings()))
}

func TestNotificationSettingsPartialJSONKeepsDefaults(t *testing.T) {
	prefs := newMemPrefs()
	prefs.SetString(NotificationSettingsKey, `{"volume":0.3}`)

	got := LoadNotificationSettings(prefs, models.DefaultNotificationSettings())
	assert.Equal(t, 0.3, got.Volume)
	assert.Equal(t, models.SoundChime, got.SoundType)
	assert.True(t, got.Enabled)
}

func TestNotificationSettingsBadData(t *testing.T) {
	prefs := newMemPrefs()
	prefs.SetString(NotificationSettingsKey, `{not json`)
	assert.Equal(t, models.DefaultNotificationSettings(), LoadNotificationSettings(prefs, models.DefaultNotificationSettings()))

	prefs.SetString(NotificationSettingsKey, `{"volume":7}`)
	assert.Equal(t, models.DefaultNotificationSettings(), LoadNotificationSettings(prefs, models.DefaultNotificationSettings()))
}

func TestSaveNotificationSettingsRejectsInvalid(t *testing.T) {
	prefs := newMemPrefs()
	s := models.DefaultNotificationSettings()
	s.Volume = -1

	err := SaveNotificationSettings(prefs, s)
	var verrs *models.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Empty(t, prefs.strings[NotificationSettingsKey])
}

func TestSelectedRoleModels(t *testing.T) {
	prefs := newMemPrefs()
	assert.Nil(t, LoadSelectedRoleModels(prefs))

	require.NoError(t, SaveSelectedRoleModels(prefs, []string{"marcus-aurelius", "seneca"}))
	assert.Equal(t, []string{"marcus-aurelius", "seneca"}, LoadSelectedRoleModels(prefs))

	require.NoError(t, SaveSelectedRoleModels(prefs, nil))
	assert.Equal(t, "[]", prefs.strings[RoleModelsKey])
	assert.Empty(t, LoadSelectedRoleModels(prefs))

	prefs.SetString(RoleModelsKey, "{bad")
	assert.Nil(t, LoadSelectedRoleModels(prefs))
}

func TestAppPreferences(t *testing.T) {
	prefs := newMemPrefs()
	assert.Equal(t, AppPreferences{HoldTimeSeconds: 2}, LoadAppPreferences(prefs))

	SaveAppPreferences(prefs, AppPreferences{AutoStart: true, HoldTimeSeconds: 0, TouchMode: true})
	got := LoadAppPreferences(prefs)
	assert.True(t, got.AutoStart)
	assert.True(t, got.TouchMode)
	assert.Equal(t, 1, got.HoldTimeSeconds)
}

func TestTimelineRoundTripWithFynePreferences(t *testing.T) {
	app := test.NewTempApp(t)
	prefs := app.Preferences()
	day := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)

	activities := []models.TimelineActivity{
		{ID: "a1", Title: "Walk", ScheduledTime: "07:00", Duration: "20 min", Category: models.CategoryPhysical, Icon: "🚶"},
	}
	require.NoError(t, SaveTimeline(prefs, day, activities))

	got, err := LoadTimeline(prefs, day.Add(10*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, activities, got)

	got, err = LoadTimeline(prefs, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, got, "yesterday's timeline is not carried over")
}

func TestLoadTimelineMalformed(t *testing.T) {
	prefs := newMemPrefs()
	prefs.SetString(TimelineKey, "[")
	_, err := LoadTimeline(prefs, time.Now())
	assert.Error(t, err)
}
