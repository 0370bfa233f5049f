package calendar

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/borgmon/lightwalker/pkg/clock"
	"github.com/borgmon/lightwalker/pkg/logging"
	"github.com/borgmon/lightwalker/pkg/models"
)

var cancelledTitle = regexp.MustCompile(`[^a-z0-9]+`)

// Import reads VEVENTs from r and returns those occurring on day as timeline
// activities, earliest first. Recurring events contribute their occurrence on day.
func Import(r io.Reader, day time.Time) ([]models.TimelineActivity, error) {
	logger := logging.Component("calendar")

	br := bufio.NewReader(r)
	if err := validateICalFormat(br); err != nil {
		return nil, err
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	decoder := ical.NewDecoder(br)
	stats := &importStats{}
	seenIDs := make(map[string]bool)
	seenKeys := make(map[string]bool) // title + start
	var activities []models.TimelineActivity

	for {
		cal, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode calendar: %w", err)
		}

		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			stats.events++
			normalizeComponentTimezones(comp)

			a, start, ok := parseEvent(comp, day.Location(), dayStart, dayEnd, stats, logger)
			if !ok {
				continue
			}

			key := strings.ToLower(a.Title) + "|" + start.Format(time.RFC3339)
			if seenIDs[a.ID] || seenKeys[key] {
				stats.duplicates++
				continue
			}
			seenIDs[a.ID] = true
			seenKeys[key] = true
			activities = append(activities, a)
		}
	}

	stats.log(logger, len(activities))
	return sortByStart(activities), nil
}

// Fetch downloads an iCalendar feed and imports the events on day.
func Fetch(ctx context.Context, client *http.Client, url string, day time.Time) ([]models.TimelineActivity, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request failed: %s", resp.Status)
	}
	return Import(resp.Body, day)
}

func validateICalFormat(br *bufio.Reader) error {
	head, _ := br.Peek(256)
	trimmed := strings.TrimSpace(strings.TrimPrefix(string(head), "\ufeff"))
	upper := strings.ToUpper(trimmed)

	if strings.HasPrefix(upper, "<!DOCTYPE") || strings.HasPrefix(upper, "<HTML") {
		return fmt.Errorf("received HTML instead of iCalendar data - check if URL requires authentication")
	}
	if !strings.HasPrefix(upper, "BEGIN:VCALENDAR") {
		preview := trimmed
		if len(preview) > 100 {
			preview = preview[:100]
		}
		return fmt.Errorf("invalid iCalendar format - expected BEGIN:VCALENDAR, got: %s", preview)
	}
	return nil
}

func parseEvent(comp *ical.Component, loc *time.Location, dayStart, dayEnd time.Time, stats *importStats, logger zerolog.Logger) (models.TimelineActivity, time.Time, bool) {
	var a models.TimelineActivity

	if p := comp.Props.Get(ical.PropSummary); p != nil {
		if text, err := p.Text(); err == nil {
			a.Title = strings.TrimSpace(text)
		}
	}
	if a.Title == "" {
		a.Title = "Untitled"
	}

	if p := comp.Props.Get(ical.PropStatus); (p != nil && strings.EqualFold(p.Value, "CANCELLED")) || isCancelledTitle(a.Title) {
		stats.cancelled++
		logger.Debug().Str("title", a.Title).Msg("Skipping cancelled event")
		return a, time.Time{}, false
	}

	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		stats.missingTime++
		return a, time.Time{}, false
	}
	if strings.EqualFold(startProp.Params.Get(ical.ParamValue), "DATE") {
		stats.allDay++
		return a, time.Time{}, false
	}
	start, err := startProp.DateTime(loc)
	if err != nil {
		stats.missingTime++
		logger.Debug().Err(err).Str("title", a.Title).Msg("Skipping event with unreadable start")
		return a, time.Time{}, false
	}
	start = start.In(loc)

	duration := eventDuration(comp, start, loc)
	if duration >= 24*time.Hour {
		stats.allDay++
		return a, time.Time{}, false
	}

	occurrence, ok := occurrenceOn(comp, start, loc, dayStart, dayEnd, logger)
	if !ok {
		stats.otherDay++
		return a, time.Time{}, false
	}

	a.ID = uuid.New().String()
	if p := comp.Props.Get(ical.PropUID); p != nil && p.Value != "" {
		a.ID = strings.TrimSuffix(p.Value, uidSuffix)
	}
	if !occurrence.Equal(start) {
		a.ID += "-" + occurrence.Format("20060102")
	}

	a.ScheduledTime = clock.Format24h(occurrence.Hour()*60 + occurrence.Minute())
	a.Duration = clock.FormatDuration(int(duration.Minutes()))
	a.Category = models.CategoryOther
	if p := comp.Props.Get(ical.PropCategories); p != nil {
		first, _, _ := strings.Cut(p.Value, ",")
		a.Category = models.ParseCategory(first)
	}
	if p := comp.Props.Get(propTemplate); p != nil {
		a.TemplateID = p.Value
	}
	if p := comp.Props.Get(propPoints); p != nil {
		a.Points, _ = strconv.Atoi(p.Value)
	}
	if p := comp.Props.Get(propIcon); p != nil {
		a.Icon = p.Value
	}
	return a, occurrence, true
}

func eventDuration(comp *ical.Component, start time.Time, loc *time.Location) time.Duration {
	if p := comp.Props.Get(ical.PropDateTimeEnd); p != nil {
		if end, err := p.DateTime(loc); err == nil && end.After(start) {
			return end.Sub(start)
		}
	}
	if p := comp.Props.Get(ical.PropDuration); p != nil {
		if d, err := p.Duration(); err == nil && d > 0 {
			return d
		}
	}
	return clock.DefaultDurationMinutes * time.Minute
}

// occurrenceOn returns the start of the event's occurrence within [dayStart, dayEnd).
func occurrenceOn(comp *ical.Component, start time.Time, loc *time.Location, dayStart, dayEnd time.Time, logger zerolog.Logger) (time.Time, bool) {
	if comp.Props.Get(ical.PropRecurrenceRule) == nil {
		return start, !start.Before(dayStart) && start.Before(dayEnd)
	}

	set, err := comp.RecurrenceSet(loc)
	if err != nil || set == nil {
		logger.Debug().Err(err).Msg("Unsupported recurrence rule")
		return start, !start.Before(dayStart) && start.Before(dayEnd)
	}

	occurrences := set.Between(dayStart, dayEnd, true)
	for _, o := range occurrences {
		if o.Before(dayEnd) {
			return o.In(loc), true
		}
	}
	return time.Time{}, false
}

func isCancelledTitle(title string) bool {
	clean := cancelledTitle.ReplaceAllString(strings.ToLower(title), "")
	return strings.HasPrefix(clean, "canceled") || strings.HasPrefix(clean, "cancelled")
}

func sortByStart(activities []models.TimelineActivity) []models.TimelineActivity {
	sort.SliceStable(activities, func(i, j int) bool {
		return clock.ClockMinutes(activities[i].ScheduledTime) < clock.ClockMinutes(activities[j].ScheduledTime)
	})
	return activities
}

type importStats struct {
	events      int
	missingTime int
	cancelled   int
	allDay      int
	otherDay    int
	duplicates  int
}

func (s *importStats) log(logger zerolog.Logger, included int) {
	logger.Info().
		Int("events", s.events).
		Int("included", included).
		Int("cancelled", s.cancelled).
		Int("all_day", s.allDay).
		Int("other_day", s.otherDay).
		Int("missing_time", s.missingTime).
		Int("duplicates", s.duplicates).
		Msg("Calendar imported")
}
