package models

import (
	"fmt"
	"time"

	"github.com/borgmon/lightwalker/pkg/clock"
)

// Sound types understood by the audio player.
const (
	SoundChime  = "chime"
	SoundBell   = "bell"
	SoundDing   = "ding"
	SoundGentle = "gentle"
)

// SoundTypes lists the built-in sounds in menu order.
var SoundTypes = []string{SoundChime, SoundBell, SoundDing, SoundGentle}

// NotificationSettings holds the user's reminder preferences.
type NotificationSettings struct {
	Enabled           bool    `json:"enabled"`
	SoundEnabled      bool    `json:"soundEnabled"`
	SoundType         string  `json:"soundType"`
	Volume            float64 `json:"volume"`
	ShowMinutesBefore int     `json:"showMinutesBefore"`
	DoNotDisturbStart string  `json:"doNotDisturbStart"`
	DoNotDisturbEnd   string  `json:"doNotDisturbEnd"`
}

// DefaultNotificationSettings returns the settings used before the user saves any.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Enabled:           true,
		SoundEnabled:      true,
		SoundType:         SoundChime,
		Volume:            0.7,
		ShowMinutesBefore: 5,
		DoNotDisturbStart: "22:00",
		DoNotDisturbEnd:   "07:00",
	}
}

// Validate checks the settings and reports every invalid field.
func (s NotificationSettings) Validate() error {
	var errs ValidationErrors

	if s.Volume < 0 || s.Volume > 1 {
		errs.AddMessage("volume", "must be between 0 and 1")
	}
	if s.ShowMinutesBefore < 0 {
		errs.AddMessage("showMinutesBefore", "must not be negative")
	}
	if s.DoNotDisturbStart != "" {
		if _, err := clock.ParseClock(s.DoNotDisturbStart); err != nil {
			errs.Add("doNotDisturbStart", err)
		}
	}
	if s.DoNotDisturbEnd != "" {
		if _, err := clock.ParseClock(s.DoNotDisturbEnd); err != nil {
			errs.Add("doNotDisturbEnd", err)
		}
	}
	if (s.DoNotDisturbStart == "") != (s.DoNotDisturbEnd == "") {
		errs.AddMessage("doNotDisturb", "start and end must be set together")
	}
	if s.SoundType != "" && !isKnownSound(s.SoundType) {
		errs.AddMessage("soundType", fmt.Sprintf("unknown sound %q", s.SoundType))
	}

	return errs.Err()
}

// InDoNotDisturb returns true if t falls inside the do-not-disturb window.
func (s NotificationSettings) InDoNotDisturb(t time.Time) bool {
	if s.DoNotDisturbStart == "" || s.DoNotDisturbEnd == "" {
		return false
	}
	start, err := clock.ParseClock(s.DoNotDisturbStart)
	if err != nil {
		return false
	}
	end, err := clock.ParseClock(s.DoNotDisturbEnd)
	if err != nil {
		return false
	}

	current := t.Hour()*60 + t.Minute()

	// Handle overnight ranges (e.g., 22:00 to 07:00)
	if end < start {
		return current >= start || current < end
	}
	return current >= start && current < end
}

func isKnownSound(name string) bool {
	for _, s := range SoundTypes {
		if s == name {
			return true
		}
	}
	return false
}
