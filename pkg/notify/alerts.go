package notify

import (
	"fmt"
	"time"

	"github.com/borgmon/lightwalker/pkg/clock"
	"github.com/borgmon/lightwalker/pkg/models"
)

// AlertID returns the id of the alert of type t for a timeline activity.
func AlertID(timelineActivityID string, t models.AlertType) string {
	return fmt.Sprintf("%s-%s", timelineActivityID, t)
}

// AlertsFor builds the reminders for an activity placed on day. Completed
// activities get none; the pre-activity alert is skipped when the lead time is zero.
func AlertsFor(activity models.TimelineActivity, day time.Time, settings models.NotificationSettings) []models.ActivityAlert {
	if activity.Completed {
		return nil
	}

	start := clock.On(day, clock.ClockMinutes(activity.ScheduledTime))
	end := start.Add(time.Duration(clock.ParseDuration(activity.Duration)) * time.Minute)

	alert := func(t models.AlertType, at time.Time, minutesBefore int) models.ActivityAlert {
		return models.ActivityAlert{
			ID:                 AlertID(activity.ID, t),
			TimelineActivityID: activity.ID,
			ActivityTitle:      activity.Title,
			Icon:               activity.Icon,
			ScheduledTime:      at,
			AlertType:          t,
			MinutesBefore:      minutesBefore,
			IsEnabled:          true,
		}
	}

	alerts := make([]models.ActivityAlert, 0, 3)
	if settings.ShowMinutesBefore > 0 {
		alerts = append(alerts, alert(models.AlertTypePreActivity, start, settings.ShowMinutesBefore))
	}
	alerts = append(alerts,
		alert(models.AlertTypeStart, start, 0),
		alert(models.AlertTypeCompletionReminder, end, 0),
	)
	return alerts
}
