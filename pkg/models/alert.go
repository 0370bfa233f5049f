package models

import "time"

// AlertType distinguishes the reminders generated for an activity.
type AlertType string

const (
	AlertTypePreActivity        AlertType = "pre_activity"
	AlertTypeStart              AlertType = "start"
	AlertTypeCompletionReminder AlertType = "completion_reminder"
)

// AlertState tracks the lifecycle of a scheduled alert.
type AlertState string

const (
	AlertStateUnscheduled AlertState = "unscheduled"
	AlertStateScheduled   AlertState = "scheduled"
	AlertStateFired       AlertState = "fired"
	AlertStateSuppressed  AlertState = "suppressed" // fired inside do-not-disturb
	AlertStateCancelled   AlertState = "cancelled"
)

// ActivityAlert is a one-shot reminder tied to a timeline activity.
type ActivityAlert struct {
	ID                 string    `json:"id"`
	TimelineActivityID string    `json:"timelineActivityId"`
	ActivityTitle      string    `json:"activityTitle"`
	Icon               string    `json:"icon,omitempty"`
	ScheduledTime      time.Time `json:"scheduledTime"`
	AlertType          AlertType `json:"alertType"`
	MinutesBefore      int       `json:"minutesBefore"`
	IsEnabled          bool      `json:"isEnabled"`
}

// AlertTime is the instant the alert should fire.
func (a ActivityAlert) AlertTime() time.Time {
	return a.ScheduledTime.Add(-time.Duration(a.MinutesBefore) * time.Minute)
}
