// Package store persists user state in the fyne preferences store and keeps
// the pending alert queue.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/borgmon/lightwalker/pkg/logging"
	"github.com/borgmon/lightwalker/pkg/models"
)

// Preference keys.
const (
	NotificationSettingsKey = "lightwalker-notification-settings"
	TimelineKey             = "lightwalker-timeline"
	RoleModelsKey           = "lightwalker-role-models"

	autoStartKey       = "auto_start"
	holdTimeSecondsKey = "hold_time_seconds"
	touchModeKey       = "touch_mode"
)

// Preferences is the subset of fyne.Preferences the store needs.
type Preferences interface {
	String(key string) string
	SetString(key string, value string)
	BoolWithFallback(key string, fallback bool) bool
	SetBool(key string, value bool)
	IntWithFallback(key string, fallback int) int
	SetInt(key string, value int)
}

// LoadNotificationSettings reads the saved settings. Missing fields keep the
// values in defaults; malformed or invalid data yields defaults.
func LoadNotificationSettings(prefs Preferences, defaults models.NotificationSettings) models.NotificationSettings {
	settings := defaults

	raw := prefs.String(NotificationSettingsKey)
	if raw == "" {
		return settings
	}

	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		logging.Warn().Err(err).Msg("Ignoring malformed notification settings")
		return defaults
	}
	if err := settings.Validate(); err != nil {
		logging.Warn().Err(err).Msg("Ignoring invalid notification settings")
		return defaults
	}
	return settings
}

// SaveNotificationSettings validates and stores settings.
func SaveNotificationSettings(prefs Preferences, settings models.NotificationSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode notification settings: %w", err)
	}
	prefs.SetString(NotificationSettingsKey, string(data))
	return nil
}

// LoadSelectedRoleModels returns the saved role-model slugs, or nil when none
// are saved or the value is unreadable.
func LoadSelectedRoleModels(prefs Preferences) []string {
	raw := prefs.String(RoleModelsKey)
	if raw == "" {
		return nil
	}
	var slugs []string
	if err := json.Unmarshal([]byte(raw), &slugs); err != nil {
		logging.Warn().Err(err).Msg("Ignoring malformed role model selection")
		return nil
	}
	return slugs
}

// SaveSelectedRoleModels stores the selected role-model slugs.
func SaveSelectedRoleModels(prefs Preferences, slugs []string) error {
	if slugs == nil {
		slugs = []string{}
	}
	data, err := json.Marshal(slugs)
	if err != nil {
		return fmt.Errorf("failed to encode role models: %w", err)
	}
	prefs.SetString(RoleModelsKey, string(data))
	return nil
}

// AppPreferences are the desktop-only options edited in the settings window.
type AppPreferences struct {
	AutoStart       bool
	HoldTimeSeconds int
	TouchMode       bool
}

// LoadAppPreferences reads the desktop options.
func LoadAppPreferences(prefs Preferences) AppPreferences {
	p := AppPreferences{
		AutoStart:       prefs.BoolWithFallback(autoStartKey, false),
		HoldTimeSeconds: prefs.IntWithFallback(holdTimeSecondsKey, 2),
		TouchMode:       prefs.BoolWithFallback(touchModeKey, false),
	}
	if p.HoldTimeSeconds < 1 {
		p.HoldTimeSeconds = 1
	}
	return p
}

// SaveAppPreferences stores the desktop options.
func SaveAppPreferences(prefs Preferences, p AppPreferences) {
	prefs.SetBool(autoStartKey, p.AutoStart)
	prefs.SetInt(holdTimeSecondsKey, p.HoldTimeSeconds)
	prefs.SetBool(touchModeKey, p.TouchMode)
}
