package calendar

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/lightwalker/pkg/models"
)

var march10 = time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

func TestExportImportRoundTrip(t *testing.T) {
	activities := []models.TimelineActivity{
		{ID: "a1", TemplateID: "curiosity-walk", Title: "Walk, then coffee", ScheduledTime: "07:30", Duration: "30 min", Category: models.CategoryPhysical, Icon: "🚶", Points: 15},
		{ID: "a2", Title: "Deep work", ScheduledTime: "9:00a", Duration: "1 hour 30 min", Category: models.CategoryProductivity},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, march10, activities, 5))

	out := buf.String()
	assert.Contains(t, out, "BEGIN:VALARM")
	assert.Contains(t, out, "TRIGGER:-PT5M")
	assert.Contains(t, out, "UID:a1@lightwalker")

	got, err := Import(&buf, march10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, models.TimelineActivity{
		ID: "a1", TemplateID: "curiosity-walk", Title: "Walk, then coffee", ScheduledTime: "07:30",
		Duration: "30 min", Category: models.CategoryPhysical, Icon: "🚶", Points: 15,
	}, got[0])
	assert.Equal(t, "09:00", got[1].ScheduledTime)
	assert.Equal(t, "1 hour 30 min", got[1].Duration)
}

func TestExportWithoutAlarm(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, march10, []models.TimelineActivity{{ID: "x", Title: "Nap", ScheduledTime: "13:00"}}, 0))
	assert.NotContains(t, buf.String(), "VALARM")
}

const feed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:standup\r\n" +
	"DTSTAMP:20260301T000000Z\r\n" +
	"DTSTART:20260302T091500Z\r\n" +
	"DTEND:20260302T093000Z\r\n" +
	"RRULE:FREQ=DAILY\r\n" +
	"SUMMARY:Standup\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:lunch\r\n" +
	"DTSTAMP:20260301T000000Z\r\n" +
	"DTSTART:20260310T120000Z\r\n" +
	"DURATION:PT45M\r\n" +
	"SUMMARY:Lunch with Sam\r\n" +
	"CATEGORIES:social\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:lunch-copy\r\n" +
	"DTSTAMP:20260301T000000Z\r\n" +
	"DTSTART:20260310T120000Z\r\n" +
	"DURATION:PT45M\r\n" +
	"SUMMARY:lunch with sam\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:cancelled\r\n" +
	"DTSTAMP:20260301T000000Z\r\n" +
	"DTSTART:20260310T150000Z\r\n" +
	"SUMMARY:Canceled: Review\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:holiday\r\n" +
	"DTSTAMP:20260301T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20260310\r\n" +
	"SUMMARY:Holiday\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:tomorrow\r\n" +
	"DTSTAMP:20260301T000000Z\r\n" +
	"DTSTART:20260311T080000Z\r\n" +
	"SUMMARY:Tomorrow\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestImportFiltersAndExpands(t *testing.T) {
	got, err := Import(strings.NewReader(feed), march10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	standup := got[0]
	assert.Equal(t, "Standup", standup.Title)
	assert.Equal(t, "09:15", standup.ScheduledTime)
	assert.Equal(t, "15 min", standup.Duration)
	assert.Equal(t, "standup-20260310", standup.ID)
	assert.Equal(t, models.CategoryOther, standup.Category)

	lunch := got[1]
	assert.Equal(t, "lunch", lunch.ID)
	assert.Equal(t, "12:00", lunch.ScheduledTime)
	assert.Equal(t, "45 min", lunch.Duration)
	assert.Equal(t, models.CategorySocial, lunch.Category)
}

func TestImportWindowsTimezone(t *testing.T) {
	ics := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//Test//EN\r\n" +
		"BEGIN:VEVENT\r\nUID:tz\r\nDTSTAMP:20260301T000000Z\r\n" +
		"DTSTART;TZID=Tokyo Standard Time:20260310T180000\r\n" +
		"DTEND;TZID=Tokyo Standard Time:20260310T183000\r\n" +
		"SUMMARY:Call Tokyo\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n"

	got, err := Import(strings.NewReader(ics), march10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "09:00", got[0].ScheduledTime, "18:00 JST is 09:00 UTC")
	assert.Equal(t, "30 min", got[0].Duration)
}

func TestImportRejectsHTML(t *testing.T) {
	_, err := Import(strings.NewReader("<!DOCTYPE html><html></html>"), march10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTML")

	_, err = Import(strings.NewReader("hello"), march10)
	assert.ErrorContains(t, err, "expected BEGIN:VCALENDAR")
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.ics" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	got, err := Fetch(context.Background(), srv.Client(), srv.URL+"/day.ics", march10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = Fetch(context.Background(), srv.Client(), srv.URL+"/missing.ics", march10)
	assert.ErrorContains(t, err, "404")
}

func TestIsCancelledTitle(t *testing.T) {
	assert.True(t, isCancelledTitle("[CANCELLED] Sync"))
	assert.True(t, isCancelledTitle("Canceled - review"))
	assert.False(t, isCancelledTitle("Review cancelled items"))
}
