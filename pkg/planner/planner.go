// Package planner is the application service behind the timeline window and
// the CLI. It keeps the board, reminders, persisted timeline and catalog in step.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/borgmon/lightwalker/pkg/catalog"
	"github.com/borgmon/lightwalker/pkg/clock"
	"github.com/borgmon/lightwalker/pkg/db"
	"github.com/borgmon/lightwalker/pkg/events"
	"github.com/borgmon/lightwalker/pkg/filter"
	"github.com/borgmon/lightwalker/pkg/logging"
	"github.com/borgmon/lightwalker/pkg/models"
	"github.com/borgmon/lightwalker/pkg/notify"
	"github.com/borgmon/lightwalker/pkg/progress"
	"github.com/borgmon/lightwalker/pkg/store"
	"github.com/borgmon/lightwalker/pkg/timeline"
)

const subscriberPrefix = "planner-"

// Deps are the collaborators of a Planner. DB is required; a nil Scheduler,
// Bus or Prefs disables reminders, events or timeline persistence respectively.
type Deps struct {
	DB        *db.DB
	Scheduler *notify.Scheduler
	Bus       *events.Bus
	Prefs     store.Preferences
	Now       func() time.Time
}

// Planner coordinates timeline edits with their side effects.
type Planner struct {
	board       *timeline.Board
	scheduler   *notify.Scheduler
	bus         *events.Bus
	prefs       store.Preferences
	templates   *catalog.TemplateRepository
	roleModels  *catalog.RoleModelRepository
	preferences *catalog.PreferenceRepository
	ledger      *progress.Ledger
	now         func() time.Time
	logger      zerolog.Logger

	mu         sync.Mutex
	day        time.Time
	selected   []string
	subscribed bool
}

func New(deps Deps) (*Planner, error) {
	if deps.DB == nil {
		return nil, errors.New("planner requires a database")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	p := &Planner{
		board:       timeline.NewBoard(),
		scheduler:   deps.Scheduler,
		bus:         deps.Bus,
		prefs:       deps.Prefs,
		templates:   catalog.NewTemplateRepository(deps.DB),
		roleModels:  catalog.NewRoleModelRepository(deps.DB),
		preferences: catalog.NewPreferenceRepository(deps.DB),
		ledger:      progress.NewLedger(deps.DB),
		now:         now,
		logger:      logging.Component("planner"),
	}
	p.day = startOfDay(now())
	return p, nil
}

// Load restores today's saved timeline and arms its reminders.
func (p *Planner) Load(ctx context.Context) error {
	p.mu.Lock()
	p.day = startOfDay(p.now())
	p.mu.Unlock()

	if p.prefs == nil {
		return nil
	}
	p.mu.Lock()
	p.selected = store.LoadSelectedRoleModels(p.prefs)
	p.mu.Unlock()

	saved, err := store.LoadTimeline(p.prefs, p.today())
	if err != nil {
		p.logger.Warn().Err(err).Msg("Discarding unreadable saved timeline")
		return nil
	}

	p.board.Clear()
	for _, a := range saved {
		if err := p.board.Add(a); err != nil {
			p.logger.Warn().Err(err).Str("activity_id", a.ID).Msg("Skipping saved activity")
			continue
		}
		p.scheduleAlerts(a)
	}
	p.logger.Info().Int("activities", p.board.Len()).Msg("Timeline restored")
	return nil
}

// Start subscribes to drop and image events. It is a no-op without a bus.
func (p *Planner) Start(ctx context.Context) error {
	if p.bus == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.subscribed {
		return nil
	}

	err := events.Subscribe(p.bus, events.ActivityDropped, subscriberPrefix+"drop", func(ctx context.Context, drop events.ActivityDrop) {
		if _, err := p.Place(ctx, drop.Template, drop.Minute); err != nil {
			p.logger.Warn().Err(err).Str("template_id", drop.Template.ID).Msg("Dropped activity not placed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to drops: %w", err)
	}
	err = events.Subscribe(p.bus, events.ActivityImageUpdated, subscriberPrefix+"image", func(ctx context.Context, img events.ActivityImage) {
		if err := p.preferences.SetImage(ctx, img.ActivityID, img.ImageURL); err != nil {
			p.logger.Error().Err(err).Str("activity_id", img.ActivityID).Msg("Failed to save activity image")
		}
	})
	if err != nil {
		_ = p.bus.Unsubscribe(subscriberPrefix + "drop")
		return fmt.Errorf("failed to subscribe to image updates: %w", err)
	}
	p.subscribed = true
	return nil
}

// Stop removes the planner's event subscriptions.
func (p *Planner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bus == nil || !p.subscribed {
		return
	}
	_ = p.bus.Unsubscribe(subscriberPrefix + "drop")
	_ = p.bus.Unsubscribe(subscriberPrefix + "image")
	p.subscribed = false
}

// Activities returns the board, earliest first.
func (p *Planner) Activities() []models.TimelineActivity {
	return p.board.Activities()
}

// Get returns the placed activity with id.
func (p *Planner) Get(id string) (models.TimelineActivity, bool) {
	return p.board.Get(id)
}

// ActivityAt returns the activity covering minute, or the nearest start within window minutes.
func (p *Planner) ActivityAt(minute float64, window int) (models.TimelineActivity, bool) {
	return timeline.ActivityAtCenter(p.board.Activities(), minute, window)
}

// Place puts template on the timeline at minute, applying the user's
// preference overrides, and arms its reminders.
func (p *Planner) Place(ctx context.Context, template models.ActivityTemplate, minute int) (models.TimelineActivity, error) {
	template = p.withPreference(ctx, template)

	a, err := p.board.Place(template, minute)
	if err != nil {
		return models.TimelineActivity{}, err
	}
	logger := logging.WithActivity(p.logger, a.ID)
	logger.Info().
		Str("title", a.Title).
		Str("at", a.ScheduledTime).
		Msg("Activity placed")

	if template.ID != "" {
		if err := p.templates.IncrementUsage(ctx, template.ID); err != nil && !errors.Is(err, catalog.ErrTemplateNotFound) {
			p.logger.Warn().Err(err).Str("template_id", template.ID).Msg("Failed to count template usage")
		}
	}

	p.scheduleAlerts(a)
	p.persist()
	return a, nil
}

// Add places an existing activity, such as one imported from a calendar, keeping its id.
func (p *Planner) Add(a models.TimelineActivity) error {
	if err := p.board.Add(a); err != nil {
		return err
	}
	p.scheduleAlerts(a)
	p.persist()
	return nil
}

// Move reschedules an activity and re-arms its reminders.
func (p *Planner) Move(ctx context.Context, id string, minute int) (models.TimelineActivity, error) {
	a, err := p.board.Move(id, minute)
	if err != nil {
		return models.TimelineActivity{}, err
	}
	logger := logging.WithActivity(p.logger, id)
	logger.Info().Str("at", a.ScheduledTime).Msg("Activity moved")
	p.scheduleAlerts(a)
	p.persist()
	return a, nil
}

// Remove takes an activity off the timeline and cancels its reminders.
func (p *Planner) Remove(ctx context.Context, id string) (models.TimelineActivity, error) {
	a, err := p.board.Remove(id)
	if err != nil {
		return models.TimelineActivity{}, err
	}
	if p.scheduler != nil {
		p.scheduler.CancelActivity(id)
	}
	logger := logging.WithActivity(p.logger, id)
	logger.Info().Msg("Activity removed")
	p.persist()
	return a, nil
}

// Complete records the activity as done, silences its remaining reminders and
// publishes ActivityCompleted with the updated streak.
func (p *Planner) Complete(ctx context.Context, id string) (events.ActivityCompletion, error) {
	a, ok := p.board.Get(id)
	if !ok {
		return events.ActivityCompletion{}, fmt.Errorf("%w: %s", timeline.ErrNotFound, id)
	}
	if a.Completed {
		return events.ActivityCompletion{Activity: a}, nil
	}

	now := p.now()
	done, err := p.ledger.Completed(ctx, id, now)
	if err != nil {
		return events.ActivityCompletion{}, err
	}
	if done {
		// Recorded earlier but the board lost the flag; sync it without scoring twice.
		a, err = p.board.MarkCompleted(id)
		if err != nil {
			return events.ActivityCompletion{}, err
		}
		if p.scheduler != nil {
			p.scheduler.CancelActivity(id)
		}
		p.persist()
		return events.ActivityCompletion{Activity: a}, nil
	}

	if _, err := p.ledger.Complete(ctx, a, now); err != nil {
		return events.ActivityCompletion{}, err
	}
	a, err = p.board.MarkCompleted(id)
	if err != nil {
		return events.ActivityCompletion{}, err
	}
	if p.scheduler != nil {
		p.scheduler.CancelActivity(id)
	}
	p.persist()

	completion := events.ActivityCompletion{Activity: a, Points: a.Points}
	if stats, err := p.ledger.Stats(ctx, now); err == nil {
		completion.Streak = stats.Streak
	} else {
		p.logger.Warn().Err(err).Msg("Failed to compute streak")
	}

	logger := logging.WithActivity(p.logger, id)
	logger.Info().
		Int("points", completion.Points).
		Int("streak", completion.Streak).
		Msg("Activity completed")
	events.Publish(ctx, p.bus, events.ActivityCompleted, completion)
	return completion, nil
}

// Stats returns progress for today.
func (p *Planner) Stats(ctx context.Context) (progress.Stats, error) {
	return p.ledger.Stats(ctx, p.now())
}

// CompletedToday lists today's completions, oldest first.
func (p *Planner) CompletedToday(ctx context.Context) ([]models.Completion, error) {
	return p.ledger.ListDay(ctx, p.now())
}

// SelectRoleModels sets the role models whose activities are suggested and
// saves the selection. Unknown slugs are rejected and leave the selection unchanged.
func (p *Planner) SelectRoleModels(ctx context.Context, slugs ...string) error {
	for _, slug := range slugs {
		if _, err := p.roleModels.GetBySlug(ctx, slug); err != nil {
			return fmt.Errorf("role model %q: %w", slug, err)
		}
	}
	p.mu.Lock()
	p.selected = append([]string(nil), slugs...)
	p.mu.Unlock()

	if p.prefs != nil {
		if err := store.SaveSelectedRoleModels(p.prefs, slugs); err != nil {
			return err
		}
	}
	p.logger.Info().Strs("role_models", slugs).Msg("Role models selected")
	return nil
}

// SelectedRoleModels returns the selected role-model slugs.
func (p *Planner) SelectedRoleModels() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.selected...)
}

// Suggestions merges the board, preferences, selected role models and
// per-category suggestions into one ordered list.
func (p *Planner) Suggestions(ctx context.Context) ([]models.Activity, error) {
	templates, err := p.templates.List(ctx)
	if err != nil {
		return nil, err
	}
	prefs, err := p.preferences.List(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	selected := append([]string(nil), p.selected...)
	p.mu.Unlock()

	return filter.Merge(filter.Input{
		Timeline:    p.board.Activities(),
		Preferences: prefs,
		Templates:   templates,
		RoleModels:  selected,
	}), nil
}

// Inventory returns the merged suggestions as placeable templates, in merge order.
func (p *Planner) Inventory(ctx context.Context) ([]models.ActivityTemplate, error) {
	activities, err := p.Suggestions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ActivityTemplate, 0, len(activities))
	for _, a := range activities {
		out = append(out, models.ActivityTemplate{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Category:    a.Category,
			Duration:    clock.FormatDuration(a.DurationMin),
			Points:      a.Points,
			Difficulty:  a.Difficulty,
			Icon:        a.Icon,
			GridSize:    a.GridSize,
			TimesUsed:   a.TimesUsed,
		})
	}
	return out, nil
}

// Preference returns the user's overrides for a template, if any.
func (p *Planner) Preference(ctx context.Context, templateID string) (models.ActivityPreference, bool, error) {
	pref, err := p.preferences.Get(ctx, templateID)
	if errors.Is(err, catalog.ErrPreferenceNotFound) {
		return models.ActivityPreference{ActivityID: templateID}, false, nil
	}
	if err != nil {
		return models.ActivityPreference{}, false, err
	}
	return pref, true, nil
}

// Customize stores the user's overrides for a template. A changed image is
// announced with ActivityImageUpdated and saved by the planner's subscription,
// or directly when the planner is not listening.
func (p *Planner) Customize(ctx context.Context, pref models.ActivityPreference) error {
	if pref.Points < 0 {
		return fmt.Errorf("invalid preference: points must not be negative")
	}
	if _, err := p.templates.Get(ctx, pref.ActivityID); err != nil {
		return err
	}
	current, _, err := p.Preference(ctx, pref.ActivityID)
	if err != nil {
		return err
	}

	image := pref.ImageURL
	pref.ImageURL = current.ImageURL
	pref.TimesUsed = max(pref.TimesUsed, current.TimesUsed)
	if err := p.preferences.Upsert(ctx, pref); err != nil {
		return err
	}
	logger := logging.WithActivity(p.logger, pref.ActivityID)
	logger.Info().Msg("Activity customized")

	if image == current.ImageURL {
		return nil
	}
	p.mu.Lock()
	subscribed := p.subscribed
	p.mu.Unlock()
	if !subscribed {
		if err := p.preferences.SetImage(ctx, pref.ActivityID, image); err != nil {
			return err
		}
	}
	events.Publish(ctx, p.bus, events.ActivityImageUpdated, events.ActivityImage{ActivityID: pref.ActivityID, ImageURL: image})
	return nil
}

// Search ranks role-model attributes against query.
func (p *Planner) Search(ctx context.Context, query string) ([]filter.Result, error) {
	roleModels, err := p.roleModels.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Search(query, catalog.Attributes(roleModels)), nil
}

// SearchTemplates returns templates whose title matches query, followed by
// the activities of role models whose attributes match it.
func (p *Planner) SearchTemplates(ctx context.Context, query string) ([]models.ActivityTemplate, error) {
	templates, err := p.templates.List(ctx)
	if err != nil {
		return nil, err
	}
	results, err := p.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []models.ActivityTemplate
	needle := strings.ToLower(strings.TrimSpace(query))
	for _, t := range templates {
		if needle != "" && strings.Contains(strings.ToLower(t.Title), needle) {
			seen[t.ID] = true
			out = append(out, t)
		}
	}

	var slugs []string
	for _, r := range results {
		slugs = append(slugs, r.Attribute.RoleModelSlug)
	}
	related, err := p.templates.ListByIDs(ctx, catalog.TemplateIDsFor(slugs...))
	if err != nil {
		return nil, err
	}
	for _, t := range related {
		if !seen[t.ID] {
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	return out, nil
}

// Templates lists the catalog, most used first.
func (p *Planner) Templates(ctx context.Context) ([]models.ActivityTemplate, error) {
	templates, err := p.templates.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(templates, func(i, j int) bool { return templates[i].TimesUsed > templates[j].TimesUsed })
	return templates, nil
}

// TemplatesInCategory lists one category of the catalog, most used first.
func (p *Planner) TemplatesInCategory(ctx context.Context, category models.Category) ([]models.ActivityTemplate, error) {
	return p.templates.ListByCategory(ctx, category)
}

// RoleModels lists the catalog's role models.
func (p *Planner) RoleModels(ctx context.Context) ([]models.RoleModel, error) {
	return p.roleModels.List(ctx)
}

// RoleModel returns the role model with slug.
func (p *Planner) RoleModel(ctx context.Context, slug string) (models.RoleModel, error) {
	return p.roleModels.GetBySlug(ctx, slug)
}

// UpdateRoleModel saves edits to a role model and returns the stored row.
func (p *Planner) UpdateRoleModel(ctx context.Context, rm models.RoleModel) (models.RoleModel, error) {
	if strings.TrimSpace(rm.Name) == "" {
		return models.RoleModel{}, fmt.Errorf("invalid role model: name is required")
	}
	if err := p.roleModels.Update(ctx, &rm); err != nil {
		return models.RoleModel{}, err
	}
	p.logger.Info().Str("slug", rm.Slug).Msg("Role model updated")
	return p.roleModels.Get(ctx, rm.ID)
}

// UpdateSettings saves notification settings and re-arms every reminder under them.
func (p *Planner) UpdateSettings(settings models.NotificationSettings) error {
	if p.prefs != nil {
		if err := store.SaveNotificationSettings(p.prefs, settings); err != nil {
			return err
		}
	} else if err := settings.Validate(); err != nil {
		return err
	}
	if p.scheduler == nil {
		return nil
	}
	p.scheduler.UpdateSettings(settings)
	p.scheduler.CancelAll()
	for _, a := range p.board.Activities() {
		p.scheduleAlerts(a)
	}
	return nil
}

// Rollover clears the board when the calendar day has changed since the last load.
func (p *Planner) Rollover() bool {
	today := startOfDay(p.now())
	p.mu.Lock()
	changed := !today.Equal(p.day)
	p.day = today
	p.mu.Unlock()

	if !changed {
		return false
	}
	p.board.Clear()
	if p.scheduler != nil {
		p.scheduler.CancelAll()
	}
	p.persist()
	p.logger.Info().Str("day", today.Format("2006-01-02")).Msg("Started a new day")
	return true
}

// scheduleAlerts cancels and re-arms every reminder for a.
func (p *Planner) scheduleAlerts(a models.TimelineActivity) {
	if p.scheduler == nil {
		return
	}
	p.scheduler.CancelActivity(a.ID)
	armed := 0
	for _, alert := range notify.AlertsFor(a, p.today(), p.scheduler.Settings()) {
		if p.scheduler.Schedule(alert) {
			armed++
		}
	}
	logger := logging.WithActivity(p.logger, a.ID)
	logger.Debug().Int("alerts", armed).Msg("Reminders armed")
}

func (p *Planner) withPreference(ctx context.Context, t models.ActivityTemplate) models.ActivityTemplate {
	if t.ID == "" {
		return t
	}
	pref, err := p.preferences.Get(ctx, t.ID)
	if err != nil {
		if !errors.Is(err, catalog.ErrPreferenceNotFound) {
			p.logger.Warn().Err(err).Str("template_id", t.ID).Msg("Failed to load activity preference")
		}
		return t
	}
	return pref.Apply(t)
}

func (p *Planner) persist() {
	if p.prefs == nil {
		return
	}
	if err := store.SaveTimeline(p.prefs, p.today(), p.board.Activities()); err != nil {
		p.logger.Error().Err(err).Msg("Failed to save timeline")
	}
}

func (p *Planner) today() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.day
}

func startOfDay(t time.Time) time.Time {
	return clock.On(t, 0)
}
