package events

import "github.com/borgmon/lightwalker/pkg/models"

// Notification is the in-app fallback payload used when system notifications are unavailable.
type Notification struct {
	Title string
	Body  string
	Icon  string
	Tag   string
	Alert models.ActivityAlert
}

// NotificationClick is published when the user opens an in-app or system notification.
type NotificationClick struct {
	Tag                string
	TimelineActivityID string
}

// ActivityDrop is published when a template is dropped onto a timeline slot.
type ActivityDrop struct {
	Template models.ActivityTemplate
	Minute   int
}

// ActivityImage is published when the user customizes an activity's image.
type ActivityImage struct {
	ActivityID string
	ImageURL   string
}

// ActivityCompletion is published after a completion is recorded.
type ActivityCompletion struct {
	Activity models.TimelineActivity
	Points   int
	Streak   int
}

// Topics shared across the application.
var (
	NotificationShown    = NewTopic[Notification]("lightwalker-notification")
	NotificationClicked  = NewTopic[NotificationClick]("lightwalker-notification-click")
	ActivityDropped      = NewTopic[ActivityDrop]("activityDropped")
	ActivityImageUpdated = NewTopic[ActivityImage]("activityImageUpdated")
	ActivityCompleted    = NewTopic[ActivityCompletion]("activityCompleted")
)
