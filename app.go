package main

import (
	"context"
	"time"

	"fyne.io/fyne/v2"
	"github.com/rs/zerolog"

	"github.com/borgmon/lightwalker/pkg/audio"
	"github.com/borgmon/lightwalker/pkg/config"
	"github.com/borgmon/lightwalker/pkg/db"
	"github.com/borgmon/lightwalker/pkg/events"
	"github.com/borgmon/lightwalker/pkg/logging"
	"github.com/borgmon/lightwalker/pkg/notify"
	"github.com/borgmon/lightwalker/pkg/planner"
	"github.com/borgmon/lightwalker/pkg/platform"
	"github.com/borgmon/lightwalker/pkg/store"
	"github.com/borgmon/lightwalker/pkg/timeline"
)

type Lightwalker struct {
	app       fyne.App
	cfg       *config.Config
	db        *db.DB
	bus       *events.Bus
	scheduler *notify.Scheduler
	planner   *planner.Planner
	sound     *audio.Player
	appPrefs  store.AppPreferences
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	timelineWindow *TimelineWindow
	settingsWindow *SettingsWindow
	banner         *InAppBanner
}

func newLightwalker(parent context.Context, a fyne.App, cfg *config.Config) (*Lightwalker, error) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	lw := &Lightwalker{
		app:    a,
		cfg:    cfg,
		bus:    events.NewBus(),
		sound:  audio.NewPlayer(),
		logger: logging.Component("ui"),
		ctx:    ctx,
		cancel: cancel,
	}
	if err := lw.initialize(); err != nil {
		cancel()
		return nil, err
	}
	return lw, nil
}

func (lw *Lightwalker) initialize() error {
	prefs := lw.app.Preferences()
	lw.appPrefs = store.LoadAppPreferences(prefs)

	// Sync autostart state with preferences on startup
	if err := platform.SetupAutostart(lw.appPrefs.AutoStart); err != nil {
		lw.logger.Warn().Err(err).Msg("Failed to set up autostart")
	}

	database, err := openDatabase(lw.ctx, lw.cfg)
	if err != nil {
		return err
	}
	lw.db = database

	settings := store.LoadNotificationSettings(prefs, lw.cfg.NotificationDefaults())
	notifier := notify.NewFyneNotifier(lw.app)
	lw.scheduler = notify.NewScheduler(settings,
		notify.WithNotifier(notifier),
		notify.WithPermissioner(notifier),
		notify.WithSoundPlayer(lw.sound),
		notify.WithBus(lw.bus),
	)
	lw.scheduler.RequestPermission(lw.ctx)

	lw.planner, err = planner.New(planner.Deps{
		DB:        database,
		Scheduler: lw.scheduler,
		Bus:       lw.bus,
		Prefs:     prefs,
	})
	if err != nil {
		return err
	}
	if err := lw.planner.Load(lw.ctx); err != nil {
		return err
	}
	if err := lw.planner.Start(lw.ctx); err != nil {
		return err
	}

	lw.banner = NewInAppBanner(lw.app, lw.bus)
	if err := lw.banner.Start(); err != nil {
		return err
	}
	if err := events.Subscribe(lw.bus, events.NotificationClicked, "app-focus", func(_ context.Context, click events.NotificationClick) {
		fyne.Do(func() { lw.focusActivity(click.TimelineActivityID) })
	}); err != nil {
		return err
	}

	lw.setupSystemTray()
	go lw.scheduler.Run(lw.ctx)
	go lw.runClock()
	return nil
}

func (lw *Lightwalker) run() {
	lw.app.Lifecycle().SetOnStarted(func() {
		lw.showTimelineWindow()
	})
	lw.app.Run()
	lw.shutdown()
}

// runClock advances the live timeline and starts a fresh board at midnight.
func (lw *Lightwalker) runClock() {
	ticker := time.NewTicker(lw.cfg.Timeline.ClockTick)
	defer ticker.Stop()

	for {
		select {
		case <-lw.ctx.Done():
			return
		case <-ticker.C:
			rolled := lw.planner.Rollover()
			fyne.Do(func() {
				if lw.timelineWindow != nil {
					lw.timelineWindow.tick(rolled)
				}
				if rolled {
					lw.updateSystemTrayMenu()
				}
			})
		}
	}
}

func (lw *Lightwalker) showTimelineWindow() {
	if lw.timelineWindow != nil {
		lw.timelineWindow.window.Show()
		lw.timelineWindow.window.RequestFocus()
		platform.SetDockVisible(true)
		return
	}
	lw.timelineWindow = NewTimelineWindow(lw)
	lw.timelineWindow.window.SetOnClosed(func() {
		lw.timelineWindow = nil
		platform.SetDockVisible(false)
	})
	lw.timelineWindow.Show()
	platform.SetDockVisible(true)
}

func (lw *Lightwalker) showSettingsWindow() {
	if lw.settingsWindow != nil {
		lw.settingsWindow.window.RequestFocus()
		lw.settingsWindow.window.Show()
		return
	}
	lw.settingsWindow = NewSettingsWindow(lw)
	lw.settingsWindow.window.SetOnClosed(func() {
		lw.settingsWindow = nil
	})
	lw.settingsWindow.Show()
}

// focusActivity brings the timeline forward centered on a placed activity.
func (lw *Lightwalker) focusActivity(activityID string) {
	if !platform.IsAppActive() {
		platform.ActivateApp()
	}
	lw.showTimelineWindow()
	if lw.timelineWindow != nil {
		lw.timelineWindow.focus(activityID)
	}
}

// refresh redraws everything that shows the board or the reminder queue.
func (lw *Lightwalker) refresh() {
	if lw.timelineWindow != nil {
		lw.timelineWindow.refresh()
	}
	if lw.settingsWindow != nil {
		lw.settingsWindow.refreshReminders()
	}
	lw.updateSystemTrayMenu()
}

// placementQuantum is the slot size used when adding at the marker.
func (lw *Lightwalker) placementQuantum() int {
	if lw.appPrefs.TouchMode || lw.cfg.Timeline.TouchMode {
		return timeline.QuantumTouch
	}
	return timeline.QuantumDesktop
}

func (lw *Lightwalker) quit() {
	lw.app.Quit()
}

func (lw *Lightwalker) shutdown() {
	lw.cancel()
	lw.planner.Stop()
	lw.banner.Stop()
	lw.sound.Stop()
	lw.bus.Close()
	if err := lw.db.Close(); err != nil {
		lw.logger.Warn().Err(err).Msg("Failed to close database")
	}
}
