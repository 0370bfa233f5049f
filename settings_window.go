package main

import (
	"fmt"
	"math"
	"os/exec"
	"runtime"
	"slices"
	"sort"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/borgmon/lightwalker/pkg/calendar"
	"github.com/borgmon/lightwalker/pkg/clock"
	"github.com/borgmon/lightwalker/pkg/events"
	"github.com/borgmon/lightwalker/pkg/logging"
	"github.com/borgmon/lightwalker/pkg/models"
	"github.com/borgmon/lightwalker/pkg/notify"
	"github.com/borgmon/lightwalker/pkg/platform"
	"github.com/borgmon/lightwalker/pkg/store"
)

var minutesBeforeOptions = []string{"0 min (off)", "1 min", "2 min", "5 min", "10 min", "15 min", "30 min"}

type SettingsWindow struct {
	lw     *Lightwalker
	window fyne.Window

	// General tab
	autoStartCheck *widget.Check
	touchModeCheck *widget.Check
	holdTimeSelect *widget.Select

	// Notifications tab
	enabledCheck        *widget.Check
	soundCheck          *widget.Check
	soundSelect         *widget.Select
	volumeSlider        *widget.Slider
	minutesBeforeSelect *widget.Select
	dndStartEntry       *widget.Entry
	dndEndEntry         *widget.Entry

	// Calendar tab
	feedEntry *widget.Entry

	// Reminders tab
	remindersTable *widget.Table
	remindersData  []models.ActivityAlert

	hasUnsavedChanges bool
	saveStatusLabel   *widget.Label
	saveButton        *widget.Button
}

func NewSettingsWindow(lw *Lightwalker) *SettingsWindow {
	sw := &SettingsWindow{
		lw:     lw,
		window: lw.app.NewWindow("Lightwalker - Settings"),
	}
	sw.buildUI()
	return sw
}

func (sw *SettingsWindow) buildUI() {
	tabs := container.NewAppTabs(
		container.NewTabItem("General", sw.buildGeneralTab()),
		container.NewTabItem("Notifications", sw.buildNotificationsTab()),
		container.NewTabItem("Calendar", sw.buildCalendarTab()),
		container.NewTabItem("Reminders", sw.buildRemindersTab()),
	)

	sw.saveStatusLabel = widget.NewLabel("")
	sw.saveStatusLabel.Importance = widget.SuccessImportance

	sw.saveButton = widget.NewButton("Save", sw.save)
	sw.saveButton.Importance = widget.HighImportance
	sw.saveButton.Disable()

	previewButton := widget.NewButton("Preview Notification", func() {
		alert := models.ActivityAlert{
			ID:            "preview",
			ActivityTitle: "Morning reflection",
			Icon:          "🧘",
			AlertType:     models.AlertTypePreActivity,
			MinutesBefore: 5,
		}
		n := notify.Compose(alert)
		sw.lw.app.SendNotification(fyne.NewNotification(n.Title, n.Body))
		sw.lw.banner.Show(events.Notification{Title: n.Title, Body: n.Body, Icon: n.Icon, Tag: n.Tag, Alert: alert})
	})

	closeButton := widget.NewButton("Close", sw.handleClose)

	buttonRow := container.NewBorder(nil, nil,
		container.NewHBox(sw.saveButton, sw.saveStatusLabel),
		container.NewHBox(previewButton, closeButton),
		container.NewHBox(),
	)

	sw.window.SetContent(container.NewBorder(nil, container.NewPadded(buttonRow), nil, nil, tabs))
	sw.window.Resize(fyne.NewSize(760, 560))
	sw.window.CenterOnScreen()
	sw.window.SetCloseIntercept(sw.handleClose)
	sw.window.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		if key.Name == fyne.KeyEscape {
			sw.handleClose()
		}
	})
}

func (sw *SettingsWindow) buildGeneralTab() fyne.CanvasObject {
	prefs := sw.lw.appPrefs

	sw.autoStartCheck = widget.NewCheck("Launch at login", func(bool) { sw.markChanged() })
	sw.autoStartCheck.SetChecked(prefs.AutoStart)

	sw.touchModeCheck = widget.NewCheck("Snap to quarter hours", func(bool) { sw.markChanged() })
	sw.touchModeCheck.SetChecked(prefs.TouchMode)

	holdOptions := make([]string, 0, 10)
	for i := 1; i <= 10; i++ {
		holdOptions = append(holdOptions, fmt.Sprintf("%d sec", i))
	}
	sw.holdTimeSelect = widget.NewSelect(holdOptions, func(string) { sw.markChanged() })
	sw.holdTimeSelect.SetSelected(fmt.Sprintf("%d sec", min(max(prefs.HoldTimeSeconds, 1), 10)))

	storageURIEntry := widget.NewEntry()
	storageURIEntry.SetText(sw.lw.cfg.DatabasePath())
	storageURIEntry.Disable()
	openStorageButton := widget.NewButton("Open in File Manager", func() {
		openFileManager(sw.lw.cfg.Global.DataDir)
	})

	autoStartHelp := widget.NewLabel("Start Lightwalker when you log in")
	autoStartHelp.Importance = widget.MediumImportance
	touchHelp := widget.NewLabel("Activities added at the marker start on :00, :15, :30 or :45")
	touchHelp.Wrapping = fyne.TextWrapWord
	touchHelp.Importance = widget.MediumImportance
	holdHelp := widget.NewLabel("How long to hold the complete button")
	holdHelp.Importance = widget.MediumImportance
	storageHelp := widget.NewLabel("Role models, activities and progress are stored here")
	storageHelp.Wrapping = fyne.TextWrapWord
	storageHelp.Importance = widget.MediumImportance

	form := container.New(layout.NewFormLayout(),
		container.NewVBox(widget.NewLabel("Auto Start:"), autoStartHelp),
		sw.autoStartCheck,

		container.NewVBox(widget.NewLabel("Touch Mode:"), touchHelp),
		sw.touchModeCheck,

		container.NewVBox(widget.NewLabel("Hold Time:"), holdHelp),
		container.NewVBox(sw.holdTimeSelect),

		container.NewVBox(widget.NewLabel("Storage Location:"), storageHelp),
		container.NewBorder(nil, container.NewPadded(openStorageButton), nil, nil, storageURIEntry),
	)

	content := container.NewVBox(
		widget.NewLabel("General Settings"),
		widget.NewSeparator(),
		form,
	)
	return container.NewPadded(container.NewVScroll(content))
}

func (sw *SettingsWindow) buildNotificationsTab() fyne.CanvasObject {
	s := sw.lw.scheduler.Settings()

	sw.enabledCheck = widget.NewCheck("Remind me about activities", func(bool) { sw.markChanged() })
	sw.enabledCheck.SetChecked(s.Enabled)

	sw.soundCheck = widget.NewCheck("Play a sound", func(bool) { sw.markChanged() })
	sw.soundCheck.SetChecked(s.SoundEnabled)

	sw.soundSelect = widget.NewSelect(models.SoundTypes, func(string) { sw.markChanged() })
	sw.soundSelect.SetSelected(s.SoundType)

	sw.volumeSlider = widget.NewSlider(0, 1)
	sw.volumeSlider.Step = 0.05
	sw.volumeSlider.SetValue(s.Volume)
	sw.volumeSlider.OnChanged = func(float64) { sw.markChanged() }

	testSoundButton := widget.NewButtonWithIcon("", theme.MediaPlayIcon(), func() {
		if err := sw.lw.sound.Play(sw.soundSelect.Selected, sw.volumeSlider.Value); err != nil {
			dialog.ShowError(err, sw.window)
		}
	})

	options := append([]string(nil), minutesBeforeOptions...)
	current := formatMinutesOption(s.ShowMinutesBefore)
	if !slices.Contains(options, current) {
		options = append(options, current)
	}
	sw.minutesBeforeSelect = widget.NewSelect(options, func(string) { sw.markChanged() })
	sw.minutesBeforeSelect.SetSelected(current)

	sw.dndStartEntry = widget.NewEntry()
	sw.dndStartEntry.SetPlaceHolder("22:00")
	sw.dndStartEntry.SetText(s.DoNotDisturbStart)
	sw.dndStartEntry.OnChanged = func(string) { sw.markChanged() }
	sw.dndEndEntry = widget.NewEntry()
	sw.dndEndEntry.SetPlaceHolder("07:00")
	sw.dndEndEntry.SetText(s.DoNotDisturbEnd)
	sw.dndEndEntry.OnChanged = func(string) { sw.markChanged() }

	minutesHelp := widget.NewLabel("Extra heads-up before each activity. Start and completion reminders are always sent.")
	minutesHelp.Wrapping = fyne.TextWrapWord
	minutesHelp.Importance = widget.MediumImportance
	dndHelp := widget.NewLabel("No reminders between these times. The range may cross midnight.")
	dndHelp.Wrapping = fyne.TextWrapWord
	dndHelp.Importance = widget.MediumImportance

	form := container.New(layout.NewFormLayout(),
		widget.NewLabel("Reminders:"),
		sw.enabledCheck,

		widget.NewLabel("Sound:"),
		container.NewVBox(sw.soundCheck, container.NewBorder(nil, nil, nil, testSoundButton, sw.soundSelect)),

		widget.NewLabel("Volume:"),
		sw.volumeSlider,

		container.NewVBox(widget.NewLabel("Heads-up:"), minutesHelp),
		container.NewVBox(sw.minutesBeforeSelect),

		container.NewVBox(widget.NewLabel("Do Not Disturb:"), dndHelp),
		container.NewGridWithColumns(2, sw.dndStartEntry, sw.dndEndEntry),
	)

	content := container.NewVBox(
		widget.NewLabel("Notification Settings"),
		widget.NewSeparator(),
		form,
	)
	return container.NewPadded(container.NewVScroll(content))
}

func (sw *SettingsWindow) buildCalendarTab() fyne.CanvasObject {
	sw.feedEntry = widget.NewEntry()
	sw.feedEntry.SetPlaceHolder("https://calendar.example.com/feed.ics")

	statusLabel := widget.NewLabel("")
	statusLabel.Wrapping = fyne.TextWrapWord

	importFeedButton := widget.NewButtonWithIcon("Import Today's Events", theme.DownloadIcon(), func() {
		source := sw.feedEntry.Text
		if source == "" {
			dialog.ShowInformation("No Feed", "Enter an iCalendar URL first.", sw.window)
			return
		}
		statusLabel.SetText("Importing...")
		go func() {
			added, total, err := sw.importCalendar(source)
			fyne.Do(func() {
				if err != nil {
					statusLabel.SetText("Import failed: " + err.Error())
					return
				}
				statusLabel.SetText(fmt.Sprintf("Imported %d of %d events", added, total))
				sw.lw.refresh()
			})
		}()
	})

	importFileButton := widget.NewButtonWithIcon("Import File...", theme.FolderOpenIcon(), func() {
		fileDialog := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err != nil || r == nil {
				return
			}
			defer r.Close()
			activities, err := calendar.Import(r, time.Now())
			if err != nil {
				statusLabel.SetText("Import failed: " + err.Error())
				return
			}
			added := sw.addImported(activities)
			statusLabel.SetText(fmt.Sprintf("Imported %d of %d events", added, len(activities)))
			sw.lw.refresh()
		}, sw.window)
		fileDialog.SetFilter(storage.NewExtensionFileFilter([]string{".ics"}))
		fileDialog.Show()
	})

	exportButton := widget.NewButtonWithIcon("Export Today...", theme.DocumentSaveIcon(), func() {
		fileDialog := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
			if err != nil || w == nil {
				return
			}
			defer w.Close()
			minutes := sw.lw.scheduler.Settings().ShowMinutesBefore
			if err := calendar.Export(w, time.Now(), sw.lw.planner.Activities(), minutes); err != nil {
				statusLabel.SetText("Export failed: " + err.Error())
				return
			}
			statusLabel.SetText("Exported to " + w.URI().Name())
		}, sw.window)
		fileDialog.SetFileName("lightwalker-" + time.Now().Format("2006-01-02") + ".ics")
		fileDialog.Show()
	})

	feedHelp := widget.NewLabel("Events from the feed that happen today are added to the timeline. Cancelled and all-day events are skipped.")
	feedHelp.Wrapping = fyne.TextWrapWord
	feedHelp.Importance = widget.MediumImportance

	content := container.NewVBox(
		widget.NewLabel("Calendar"),
		widget.NewSeparator(),
		feedHelp,
		container.NewBorder(nil, nil, nil, importFeedButton, sw.feedEntry),
		container.NewHBox(importFileButton, exportButton),
		statusLabel,
	)
	return container.NewPadded(container.NewVScroll(content))
}

func (sw *SettingsWindow) importCalendar(source string) (added, total int, err error) {
	activities, err := readCalendar(sw.lw.ctx, source, time.Now())
	if err != nil {
		return 0, 0, err
	}
	return sw.addImported(activities), len(activities), nil
}

func (sw *SettingsWindow) addImported(activities []models.TimelineActivity) int {
	added := 0
	for _, a := range activities {
		if err := sw.lw.planner.Add(a); err != nil {
			sw.lw.logger.Warn().Err(err).Str("title", a.Title).Msg("Skipping imported event")
			continue
		}
		added++
	}
	return added
}

func (sw *SettingsWindow) buildRemindersTab() fyne.CanvasObject {
	sw.remindersData = pendingReminders(sw.lw.scheduler.Pending(), time.Time{}, 0)

	table := widget.NewTable(
		func() (int, int) {
			return len(sw.remindersData), 4
		},
		func() fyne.CanvasObject {
			label := widget.NewLabel("Template")
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			if id.Row >= len(sw.remindersData) {
				label.SetText("")
				return
			}
			alert := sw.remindersData[id.Row]
			switch id.Col {
			case 0:
				label.SetText(alert.ActivityTitle)
			case 1:
				label.SetText(alert.AlertTime().Format("3:04 PM"))
			case 2:
				label.SetText(alertTypeLabel(alert))
			case 3:
				label.SetText(string(sw.lw.scheduler.State(alert.ID)))
			}
		},
	)
	table.ShowHeaderRow = true
	table.CreateHeader = func() fyne.CanvasObject {
		label := widget.NewLabel("Header")
		label.TextStyle.Bold = true
		return label
	}
	table.UpdateHeader = func(id widget.TableCellID, obj fyne.CanvasObject) {
		headers := []string{"Activity", "Alert Time", "Type", "Status"}
		obj.(*widget.Label).SetText(headers[id.Col])
	}
	table.SetColumnWidth(0, 260)
	table.SetColumnWidth(1, 110)
	table.SetColumnWidth(2, 170)
	table.SetColumnWidth(3, 110)
	sw.remindersTable = table

	refreshButton := widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), sw.refreshReminders)
	cancelAllButton := widget.NewButtonWithIcon("Cancel All", theme.DeleteIcon(), func() {
		dialog.ShowConfirm("Cancel reminders", "Cancel every pending reminder for today?", func(ok bool) {
			if ok {
				sw.lw.scheduler.CancelAll()
				sw.lw.refresh()
			}
		}, sw.window)
	})

	return container.NewBorder(nil, container.NewHBox(refreshButton, cancelAllButton), nil, nil, table)
}

func (sw *SettingsWindow) refreshReminders() {
	if sw.remindersTable == nil {
		return
	}
	sw.remindersData = pendingReminders(sw.lw.scheduler.Pending(), time.Time{}, 0)
	sw.remindersTable.Refresh()
}

func (sw *SettingsWindow) Show() {
	sw.window.Show()
}

func (sw *SettingsWindow) notificationSettingsFromUI() models.NotificationSettings {
	return models.NotificationSettings{
		Enabled:           sw.enabledCheck.Checked,
		SoundEnabled:      sw.soundCheck.Checked,
		SoundType:         sw.soundSelect.Selected,
		Volume:            sw.volumeSlider.Value,
		ShowMinutesBefore: parseMinutesOption(sw.minutesBeforeSelect.Selected),
		DoNotDisturbStart: sw.dndStartEntry.Text,
		DoNotDisturbEnd:   sw.dndEndEntry.Text,
	}
}

func (sw *SettingsWindow) appPreferencesFromUI() store.AppPreferences {
	hold := sw.lw.appPrefs.HoldTimeSeconds
	if n, err := strconv.Atoi(trimUnit(sw.holdTimeSelect.Selected, " sec")); err == nil {
		hold = n
	}
	return store.AppPreferences{
		AutoStart:       sw.autoStartCheck.Checked,
		HoldTimeSeconds: hold,
		TouchMode:       sw.touchModeCheck.Checked,
	}
}

func (sw *SettingsWindow) save() {
	settings := sw.notificationSettingsFromUI()
	if err := settings.Validate(); err != nil {
		sw.setStatus(err.Error(), widget.DangerImportance)
		return
	}
	appPrefs := sw.appPreferencesFromUI()

	sw.saveButton.Disable()
	sw.setStatus("Saving...", widget.MediumImportance)

	go func() {
		if appPrefs.AutoStart != sw.lw.appPrefs.AutoStart {
			if err := platform.SetupAutostart(appPrefs.AutoStart); err != nil {
				fyne.Do(func() {
					sw.setStatus("Error: Failed to set autostart", widget.DangerImportance)
					sw.updateSaveButtonState()
				})
				return
			}
		}

		err := sw.lw.planner.UpdateSettings(settings)
		fyne.Do(func() {
			if err != nil {
				sw.lw.logger.Error().Err(err).Msg("Failed to save notification settings")
				sw.setStatus("Error: "+err.Error(), widget.DangerImportance)
				sw.updateSaveButtonState()
				return
			}
			store.SaveAppPreferences(sw.lw.app.Preferences(), appPrefs)
			sw.lw.appPrefs = appPrefs
			sw.hasUnsavedChanges = false
			sw.setStatus("Settings saved successfully", widget.SuccessImportance)
			sw.updateSaveButtonState()
			sw.lw.refresh()

			go func() {
				time.Sleep(3 * time.Second)
				fyne.Do(func() {
					if sw.saveStatusLabel.Text == "Settings saved successfully" {
						sw.setStatus("", widget.MediumImportance)
					}
				})
			}()
		})
	}()
}

func (sw *SettingsWindow) setStatus(text string, importance widget.Importance) {
	sw.saveStatusLabel.SetText(text)
	sw.saveStatusLabel.Importance = importance
	sw.saveStatusLabel.Refresh()
}

// markChanged marks the settings as having unsaved changes
func (sw *SettingsWindow) markChanged() {
	sw.hasUnsavedChanges = true
	sw.updateSaveButtonState()
}

func (sw *SettingsWindow) updateSaveButtonState() {
	if sw.saveButton == nil {
		return
	}
	if sw.hasUnsavedChanges {
		sw.saveButton.Enable()
	} else {
		sw.saveButton.Disable()
	}
}

func (sw *SettingsWindow) hasActualChanges() bool {
	ui, saved := sw.notificationSettingsFromUI(), sw.lw.scheduler.Settings()
	// The slider snaps to its step, so compare volume at that precision.
	if math.Abs(ui.Volume-saved.Volume) < sw.volumeSlider.Step/2 {
		ui.Volume = saved.Volume
	}
	return ui != saved || sw.appPreferencesFromUI() != sw.lw.appPrefs
}

func (sw *SettingsWindow) handleClose() {
	if !sw.hasActualChanges() {
		sw.window.Close()
		return
	}
	dialog.ShowConfirm("Unsaved Changes",
		"You have unsaved changes. Are you sure you want to close?",
		func(confirmed bool) {
			if confirmed {
				sw.window.Close()
			}
		}, sw.window)
}

// pendingReminders returns alerts ordered by fire time. A non-zero before
// keeps only alerts firing before it; a positive limit caps the result.
func pendingReminders(alerts []models.ActivityAlert, before time.Time, limit int) []models.ActivityAlert {
	out := make([]models.ActivityAlert, 0, len(alerts))
	for _, a := range alerts {
		if !before.IsZero() && !a.AlertTime().Before(before) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AlertTime().Before(out[j].AlertTime()) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func alertTypeLabel(a models.ActivityAlert) string {
	switch a.AlertType {
	case models.AlertTypePreActivity:
		return fmt.Sprintf("%d min before", a.MinutesBefore)
	case models.AlertTypeCompletionReminder:
		return "Completion check"
	default:
		return "At start"
	}
}

func formatMinutesOption(minutes int) string {
	if minutes <= 0 {
		return minutesBeforeOptions[0]
	}
	return clock.FormatDuration(minutes)
}

func parseMinutesOption(option string) int {
	if option == "" || option == minutesBeforeOptions[0] {
		return 0
	}
	return clock.ParseDuration(option)
}

func trimUnit(s, unit string) string {
	if len(s) >= len(unit) && s[len(s)-len(unit):] == unit {
		return s[:len(s)-len(unit)]
	}
	return s
}

func openFileManager(path string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return
	}
	if err := cmd.Start(); err != nil {
		logger := logging.Component("ui")
		logger.Error().Err(err).Msg("Failed to open file manager")
	}
}
