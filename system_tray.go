package main

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"

	"github.com/borgmon/lightwalker/pkg/models"
)

func (lw *Lightwalker) setupSystemTray() {
	lw.updateSystemTrayMenu()
}

func (lw *Lightwalker) updateSystemTrayMenu() {
	if desk, ok := lw.app.(desktop.App); ok {
		menuItems := []*fyne.MenuItem{}

		// Add upcoming reminders section at the top
		upcoming := upcomingTodayAlerts(lw.scheduler.Pending(), time.Now(), 5)
		if len(upcoming) > 0 {
			headerItem := fyne.NewMenuItem("Upcoming Today:", nil)
			headerItem.Disabled = true
			menuItems = append(menuItems, headerItem)

			for _, alert := range upcoming {
				id := alert.TimelineActivityID
				alertText := fmt.Sprintf("  %s - %s",
					alert.AlertTime().Format("3:04 PM"),
					truncateString(alert.ActivityTitle, 35))
				menuItems = append(menuItems, fyne.NewMenuItem(alertText, func() {
					lw.focusActivity(id)
				}))
			}

			menuItems = append(menuItems, fyne.NewMenuItemSeparator())
		}

		if stats, err := lw.planner.Stats(lw.ctx); err == nil {
			statsItem := fyne.NewMenuItem(fmt.Sprintf("%d points today · %d day streak", stats.PointsToday, stats.Streak), nil)
			statsItem.Disabled = true
			menuItems = append(menuItems, statsItem, fyne.NewMenuItemSeparator())
		}

		menuItems = append(menuItems,
			fyne.NewMenuItem("Open Timeline", func() {
				lw.showTimelineWindow()
			}),
			fyne.NewMenuItem("Settings", func() {
				lw.showSettingsWindow()
			}),
		)

		menuItems = append(menuItems, fyne.NewMenuItemSeparator())
		menuItems = append(menuItems, fyne.NewMenuItem("Quit", func() {
			lw.quit()
		}))

		menu := fyne.NewMenu("Lightwalker", menuItems...)
		desk.SetSystemTrayMenu(menu)
		desk.SetSystemTrayIcon(theme.CalendarIcon())
	}
}

// upcomingTodayAlerts returns the next limit alerts firing between now and midnight.
func upcomingTodayAlerts(alerts []models.ActivityAlert, now time.Time, limit int) []models.ActivityAlert {
	todayEnd := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)

	upcoming := []models.ActivityAlert{}
	for _, alert := range pendingReminders(alerts, todayEnd, 0) {
		if !alert.AlertTime().After(now) {
			continue
		}
		upcoming = append(upcoming, alert)
		if len(upcoming) >= limit {
			break
		}
	}
	return upcoming
}

// truncateString truncates a string to maxLen characters, adding "..." if needed
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
