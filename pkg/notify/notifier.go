package notify

import (
	"context"
	"errors"
	"fmt"

	"fyne.io/fyne/v2"

	"github.com/borgmon/lightwalker/pkg/models"
)

// TagPrefix prefixes the notification tag of every activity alert.
const TagPrefix = "lightwalker-activity-"

// ErrNoNotifier is returned when no system notifier is available.
var ErrNoNotifier = errors.New("system notifications unavailable")

// Notification is the message delivered for a fired alert.
type Notification struct {
	Title string
	Body  string
	Icon  string
	Tag   string
}

// Notifier delivers system notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// SoundPlayer plays a named alert sound.
type SoundPlayer interface {
	Play(soundType string, volume float64) error
}

// Tag returns the notification tag for a timeline activity.
func Tag(timelineActivityID string) string {
	return TagPrefix + timelineActivityID
}

// Compose builds the notification shown for alert.
func Compose(alert models.ActivityAlert) Notification {
	title := alert.ActivityTitle
	if alert.Icon != "" {
		title = alert.Icon + " " + title
	}

	n := Notification{
		Icon: alert.Icon,
		Tag:  Tag(alert.TimelineActivityID),
	}
	switch alert.AlertType {
	case models.AlertTypePreActivity:
		n.Title = "Coming up: " + title
		n.Body = fmt.Sprintf("Starts in %d minutes", alert.MinutesBefore)
		if alert.MinutesBefore == 1 {
			n.Body = "Starts in 1 minute"
		}
	case models.AlertTypeCompletionReminder:
		n.Title = "Did you finish " + title + "?"
		n.Body = "Hold the complete button to collect your points"
	default:
		n.Title = "Time for: " + title
		n.Body = "Your activity is starting now"
	}
	return n
}

// FyneNotifier shows notifications through the fyne app.
type FyneNotifier struct {
	app fyne.App
}

// NewFyneNotifier creates a notifier for app.
func NewFyneNotifier(app fyne.App) *FyneNotifier {
	return &FyneNotifier{app: app}
}

// Notify sends n as a system notification.
func (f *FyneNotifier) Notify(_ context.Context, n Notification) error {
	if f == nil || f.app == nil {
		return ErrNoNotifier
	}
	f.app.SendNotification(fyne.NewNotification(n.Title, n.Body))
	return nil
}

// RequestPermission grants when an app is available. Desktop platforms do not
// prompt for notification access.
func (f *FyneNotifier) RequestPermission(context.Context) Permission {
	if f == nil || f.app == nil {
		return PermissionDenied
	}
	return PermissionGranted
}
