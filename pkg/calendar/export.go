// Package calendar exports the day's timeline as iCalendar and imports
// events from .ics files or feeds as timeline activities.
package calendar

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/emersion/go-ical"

	"github.com/borgmon/lightwalker/pkg/clock"
	"github.com/borgmon/lightwalker/pkg/models"
)

const (
	productID = "-//Lightwalker//Timeline//EN"
	uidSuffix = "@lightwalker"

	propTemplate = "X-LIGHTWALKER-TEMPLATE"
	propPoints   = "X-LIGHTWALKER-POINTS"
	propIcon     = "X-LIGHTWALKER-ICON"
)

// Export writes activities scheduled on day as VEVENTs. When minutesBefore is
// positive each event carries a display alarm that many minutes before it.
func Export(w io.Writer, day time.Time, activities []models.TimelineActivity, minutesBefore int) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	stamp := time.Now().UTC()
	for _, a := range activities {
		start := clock.On(day, clock.ClockMinutes(a.ScheduledTime))
		end := start.Add(time.Duration(clock.ParseDuration(a.Duration)) * time.Minute)

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, a.ID+uidSuffix)
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetDateTime(ical.PropDateTimeStart, start)
		event.Props.SetDateTime(ical.PropDateTimeEnd, end)
		event.Props.SetText(ical.PropSummary, a.Title)
		if a.Category != "" {
			event.Props.SetText(ical.PropCategories, string(a.Category))
		}
		if a.TemplateID != "" {
			event.Props.SetText(propTemplate, a.TemplateID)
		}
		if a.Points > 0 {
			event.Props.SetText(propPoints, strconv.Itoa(a.Points))
		}
		if a.Icon != "" {
			event.Props.SetText(propIcon, a.Icon)
		}

		if minutesBefore > 0 {
			alarm := ical.NewComponent(ical.CompAlarm)
			alarm.Props.SetText(ical.PropAction, "DISPLAY")
			alarm.Props.SetText(ical.PropDescription, a.Title)
			trigger := ical.NewProp(ical.PropTrigger)
			trigger.Value = fmt.Sprintf("-PT%dM", minutesBefore)
			alarm.Props.Set(trigger)
			event.Children = append(event.Children, alarm)
		}

		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}
