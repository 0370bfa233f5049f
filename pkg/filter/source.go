// Package filter merges activities from the timeline, user preferences and
// the catalog into a ranked suggestion list, and scores role-model attributes
// against free-text queries.
package filter

import (
	"github.com/borgmon/lightwalker/pkg/clock"
	"github.com/borgmon/lightwalker/pkg/models"
)

// Merge priorities, lower first.
const (
	PriorityTimeline   = 1
	PriorityPreference = 2
	PriorityRoleModel  = 3
	PrioritySuggestion = 4
)

// Source is one candidate activity. The concrete types are TimelineSource,
// PreferenceSource, RoleModelSource and SuggestionSource.
type Source interface {
	isSource()
}

// TimelineSource is an activity already placed on the timeline.
type TimelineSource struct {
	Activity models.TimelineActivity
}

// PreferenceSource is a template the user has customized.
type PreferenceSource struct {
	Template   models.ActivityTemplate
	Preference models.ActivityPreference
}

// RoleModelSource is a template associated with a selected role model.
type RoleModelSource struct {
	Template      models.ActivityTemplate
	RoleModelSlug string
}

// SuggestionSource is a generic per-category suggestion.
type SuggestionSource struct {
	Template models.ActivityTemplate
}

func (TimelineSource) isSource() {}
func (PreferenceSource) isSource() {}
func (RoleModelSource) isSource() {}
func (SuggestionSource) isSource() {}

// Normalize converts any source to the canonical Activity.
func Normalize(s Source) models.Activity {
	switch src := s.(type) {
	case TimelineSource:
		a := src.Activity
		id := a.TemplateID
		if id == "" {
			id = a.ID
		}
		return models.Activity{
			ID:            id,
			Title:         a.Title,
			Category:      models.ParseCategory(string(a.Category)),
			DurationMin:   clock.ParseDuration(a.Duration),
			Points:        a.Points,
			Icon:          a.Icon,
			ScheduledTime: a.ScheduledTime,
			Source:        models.SourceTimeline,
			Priority:      PriorityTimeline,
		}
	case PreferenceSource:
		return fromTemplate(src.Preference.Apply(src.Template), models.SourcePreference, PriorityPreference)
	case RoleModelSource:
		return fromTemplate(src.Template, models.SourceRoleModel, PriorityRoleModel)
	case SuggestionSource:
		return fromTemplate(src.Template, models.SourceSuggestion, PrioritySuggestion)
	default:
		return models.Activity{}
	}
}

func fromTemplate(t models.ActivityTemplate, source models.ActivitySource, priority int) models.Activity {
	return models.Activity{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    models.ParseCategory(string(t.Category)),
		DurationMin: clock.ParseDuration(t.Duration),
		Points:      t.Points,
		Difficulty:  t.Difficulty,
		Icon:        t.Icon,
		GridSize:    t.GridSize,
		TimesUsed:   t.TimesUsed,
		Source:      source,
		Priority:    priority,
	}
}
