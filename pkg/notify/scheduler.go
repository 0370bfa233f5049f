// Package notify schedules activity reminders and delivers them as system
// notifications, sounds or in-app events.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/borgmon/lightwalker/pkg/events"
	"github.com/borgmon/lightwalker/pkg/logging"
	"github.com/borgmon/lightwalker/pkg/models"
	"github.com/borgmon/lightwalker/pkg/store"
)

// DefaultPermissionTimeout bounds how long a permission request may block.
// An unanswered request counts as denied.
const DefaultPermissionTimeout = 5 * time.Second

// Scheduler arms one-shot alerts and fires them at their alert time.
type Scheduler struct {
	mu         sync.Mutex
	settings   models.NotificationSettings
	states     map[string]models.AlertState
	permission Permission
	permWait   time.Duration

	pending      *store.AlertStore
	notifier     Notifier
	sound        SoundPlayer
	permissioner Permissioner
	bus          *events.Bus
	now          func() time.Time
	wake         chan struct{}
	logger       zerolog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithNotifier sets the system notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Scheduler) { s.notifier = n }
}

// WithSoundPlayer sets the alert sound player.
func WithSoundPlayer(p SoundPlayer) Option {
	return func(s *Scheduler) { s.sound = p }
}

// WithPermissioner sets how notification permission is requested.
func WithPermissioner(p Permissioner) Option {
	return func(s *Scheduler) { s.permissioner = p }
}

// WithBus sets the bus used for in-app fallback notifications.
func WithBus(b *events.Bus) Option {
	return func(s *Scheduler) { s.bus = b }
}

// WithPermissionTimeout overrides DefaultPermissionTimeout.
func WithPermissionTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.permWait = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// NewScheduler creates a scheduler using settings.
func NewScheduler(settings models.NotificationSettings, opts ...Option) *Scheduler {
	s := &Scheduler{
		settings:   settings,
		states:     make(map[string]models.AlertState),
		permission: PermissionDefault,
		permWait:   DefaultPermissionTimeout,
		pending:    store.NewAlertStore(),
		now:        time.Now,
		wake:       make(chan struct{}, 1),
		logger:     logging.Component("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the settings in effect.
func (s *Scheduler) Settings() models.NotificationSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the settings. Pending alerts are kept; disabling
// notifications only stops new alerts from being armed.
func (s *Scheduler) UpdateSettings(settings models.NotificationSettings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	s.signal()
}

// RequestPermission asks for notification permission once and caches a
// granted or denied answer. A request left unanswered past the permission
// timeout is cached as denied so alerts fall back to in-app delivery.
func (s *Scheduler) RequestPermission(ctx context.Context) Permission {
	s.mu.Lock()
	if s.permission != PermissionDefault {
		p := s.permission
		s.mu.Unlock()
		return p
	}
	permissioner := s.permissioner
	s.mu.Unlock()

	reqCtx, cancel := context.WithTimeout(ctx, s.permWait)
	defer cancel()
	p := requestPermission(reqCtx, permissioner)
	if p == PermissionDefault && errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		s.logger.Warn().Dur("timeout", s.permWait).Msg("Notification permission request timed out")
		p = PermissionDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p != PermissionDefault {
		s.permission = p
	}
	s.logger.Info().Str("permission", string(p)).Msg("Notification permission resolved")
	return p
}

// Schedule arms alert, replacing any pending alert with the same id. It
// returns false when notifications are disabled, the alert is disabled or its
// alert time has passed.
func (s *Scheduler) Schedule(alert models.ActivityAlert) bool {
	logger := logging.WithActivity(s.logger, alert.TimelineActivityID).With().Str("alert_id", alert.ID).Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.settings.Enabled {
		logger.Debug().Msg("Notifications disabled, alert not scheduled")
		return false
	}
	if !alert.IsEnabled {
		logger.Debug().Msg("Alert disabled, not scheduled")
		return false
	}

	alertTime := alert.AlertTime()
	if alertTime.Before(s.now()) {
		logger.Debug().Time("alert_time", alertTime).Msg("Alert time already passed")
		return false
	}

	if s.pending.Put(alert) {
		logger.Debug().Msg("Replaced pending alert")
	}
	s.states[alert.ID] = models.AlertStateScheduled
	logger.Info().Time("alert_time", alertTime).Str("type", string(alert.AlertType)).Msg("Alert scheduled")

	s.signal()
	return true
}

// Cancel drops a pending alert. It returns false when nothing was pending.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending.Remove(id) {
		return false
	}
	s.states[id] = models.AlertStateCancelled
	s.signal()
	return true
}

// CancelActivity drops every pending alert of a timeline activity.
func (s *Scheduler) CancelActivity(timelineActivityID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.pending.RemoveActivity(timelineActivityID)
	for _, id := range removed {
		s.states[id] = models.AlertStateCancelled
	}
	if len(removed) > 0 {
		s.signal()
	}
	return len(removed)
}

// CancelAll drops every pending alert.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.pending.RemoveAll()
	for _, id := range removed {
		s.states[id] = models.AlertStateCancelled
	}
	if len(removed) > 0 {
		s.signal()
	}
	return len(removed)
}

// State returns the lifecycle state of an alert id.
func (s *Scheduler) State(id string) models.AlertState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.states[id]; ok {
		return state
	}
	return models.AlertStateUnscheduled
}

// Pending returns the armed alerts sorted by alert time.
func (s *Scheduler) Pending() []models.ActivityAlert {
	return s.pending.All()
}

// FireDue fires every alert due at now, each exactly once, and returns how
// many were popped.
func (s *Scheduler) FireDue(ctx context.Context, now time.Time) int {
	s.mu.Lock()
	due := s.pending.PopDue(now)
	settings := s.settings
	s.mu.Unlock()

	for _, alert := range due {
		state := s.fire(ctx, alert, settings, now)
		s.mu.Lock()
		if _, rearmed := s.pending.Get(alert.ID); !rearmed {
			s.states[alert.ID] = state
		}
		s.mu.Unlock()
	}
	return len(due)
}

func (s *Scheduler) fire(ctx context.Context, alert models.ActivityAlert, settings models.NotificationSettings, now time.Time) models.AlertState {
	logger := logging.WithActivity(s.logger, alert.TimelineActivityID).With().Str("alert_id", alert.ID).Logger()

	if settings.InDoNotDisturb(now) {
		logger.Info().Msg("Alert suppressed by do-not-disturb")
		return models.AlertStateSuppressed
	}

	if settings.SoundEnabled && s.sound != nil {
		if err := s.sound.Play(settings.SoundType, settings.Volume); err != nil {
			logger.Warn().Err(err).Str("sound", settings.SoundType).Msg("Failed to play alert sound")
		}
	}

	n := Compose(alert)
	if s.RequestPermission(ctx) == PermissionGranted && s.notifier != nil {
		err := s.notifier.Notify(ctx, n)
		if err == nil {
			logger.Info().Str("title", n.Title).Msg("Notification shown")
			return models.AlertStateFired
		}
		logger.Warn().Err(err).Msg("System notification failed, using in-app fallback")
	}

	delivered := events.Publish(ctx, s.bus, events.NotificationShown, events.Notification{
		Title: n.Title,
		Body:  n.Body,
		Icon:  n.Icon,
		Tag:   n.Tag,
		Alert: alert,
	})
	if delivered == 0 {
		logger.Warn().Str("title", n.Title).Msg("No in-app listener for notification")
	}
	return models.AlertStateFired
}

// Run fires alerts as they come due until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info().Msg("Scheduler started")
	defer s.logger.Info().Msg("Scheduler stopped")

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		s.FireDue(ctx, s.now())

		wait := time.Hour
		if next, ok := s.pending.Next(); ok {
			wait = next.Sub(s.now())
			if wait < 0 {
				wait = 0
			}
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		case <-timer.C:
		}
	}
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
