package main

import (
	"context"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/borgmon/lightwalker/pkg/events"
	"github.com/borgmon/lightwalker/pkg/logging"
)

const (
	bannerSubscriberID = "in-app-banner"
	bannerDismissAfter = 8 * time.Second
)

// InAppBanner shows reminders inside the app when the system cannot.
type InAppBanner struct {
	app    fyne.App
	bus    *events.Bus
	logger zerolog.Logger

	window  fyne.Window
	current events.Notification
	timer   *time.Timer
}

func NewInAppBanner(app fyne.App, bus *events.Bus) *InAppBanner {
	return &InAppBanner{
		app:    app,
		bus:    bus,
		logger: logging.Component("banner"),
	}
}

// Start listens for notifications that fell back to in-app delivery.
func (b *InAppBanner) Start() error {
	return events.Subscribe(b.bus, events.NotificationShown, bannerSubscriberID, func(_ context.Context, n events.Notification) {
		fyne.Do(func() { b.Show(n) })
	})
}

// Stop ends the subscription. A visible banner closes with the app.
func (b *InAppBanner) Stop() {
	_ = b.bus.Unsubscribe(bannerSubscriberID)
	if b.timer != nil {
		b.timer.Stop()
	}
}

// Show replaces any visible banner with n.
func (b *InAppBanner) Show(n events.Notification) {
	b.Dismiss()
	b.current = n

	title := canvas.NewText(n.Title, nil)
	title.TextStyle.Bold = true
	title.TextSize = 16

	body := widget.NewLabel(n.Body)
	body.Wrapping = fyne.TextWrapWord

	openButton := widget.NewButton("Open", b.Open)
	openButton.Importance = widget.HighImportance
	dismissButton := widget.NewButton("Dismiss", b.Dismiss)

	content := container.NewVBox(
		title,
		body,
		container.NewHBox(openButton, dismissButton),
	)

	b.window = b.app.NewWindow("Lightwalker")
	b.window.SetContent(container.NewPadded(content))
	b.window.Resize(fyne.NewSize(360, 140))
	b.window.SetFixedSize(true)
	b.window.SetOnClosed(func() {
		b.window = nil
	})
	b.window.Show()

	window := b.window
	b.timer = time.AfterFunc(bannerDismissAfter, func() {
		fyne.Do(func() {
			if b.window == window {
				b.Dismiss()
			}
		})
	})
	b.logger.Debug().Str("tag", n.Tag).Msg("Banner shown")
}

// Open reports a click on the visible banner and dismisses it.
func (b *InAppBanner) Open() {
	n := b.current
	b.Dismiss()
	events.Publish(context.Background(), b.bus, events.NotificationClicked, events.NotificationClick{
		Tag:                n.Tag,
		TimelineActivityID: n.Alert.TimelineActivityID,
	})
}

func (b *InAppBanner) Dismiss() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if b.window != nil {
		w := b.window
		b.window = nil
		w.Close()
	}
}

// Visible reports whether a banner is on screen.
func (b *InAppBanner) Visible() bool {
	return b.window != nil
}
