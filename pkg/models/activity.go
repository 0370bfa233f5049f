package models

import "strings"

// Category groups activities into timeline lanes.
type Category string

const (
	CategoryMindfulness  Category = "mindfulness"
	CategoryPhysical     Category = "physical"
	CategoryLearning     Category = "learning"
	CategoryProductivity Category = "productivity"
	CategorySocial       Category = "social"
	CategoryCreative     Category = "creative"
	CategoryWellness     Category = "wellness"
	CategoryRest         Category = "rest"
	CategoryOther        Category = "other"
)

// Categories lists every known category in lane order.
var Categories = []Category{
	CategoryMindfulness,
	CategoryPhysical,
	CategoryLearning,
	CategoryProductivity,
	CategorySocial,
	CategoryCreative,
	CategoryWellness,
	CategoryRest,
}

// ParseCategory maps free text to a Category, falling back to CategoryOther.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategoryOther
}

// Difficulty is the template difficulty label.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ActivitySource records where a merged activity came from.
type ActivitySource string

const (
	SourceTimeline   ActivitySource = "timeline"
	SourcePreference ActivitySource = "preference"
	SourceRoleModel  ActivitySource = "role_model"
	SourceSuggestion ActivitySource = "suggestion"
)

// TimelineActivity is an activity placed on the day's timeline.
type TimelineActivity struct {
	ID            string   `json:"id"`
	TemplateID    string   `json:"templateId,omitempty"`
	Title         string   `json:"title"`
	ScheduledTime string   `json:"scheduledTime"` // "HH:MM" or "H:MMa/p"
	Duration      string   `json:"duration"`      // free text, "15 min"
	Category      Category `json:"category"`
	Icon          string   `json:"icon"`
	Points        int      `json:"points,omitempty"`
	Completed     bool     `json:"completed,omitempty"`
}

// ActivityTemplate is a catalog activity that can be dragged onto the timeline.
type ActivityTemplate struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	Duration    string     `json:"duration"`
	Points      int        `json:"points"`
	Difficulty  Difficulty `json:"difficulty"`
	Icon        string     `json:"icon"`
	GridSize    string     `json:"gridSize"`
	TimesUsed   int        `json:"timesUsed"`
}

// ActivityPreference is a per-user override of a template. Zero fields keep the template value.
type ActivityPreference struct {
	ActivityID string     `json:"activityId"`
	Duration   string     `json:"duration,omitempty"`
	Points     int        `json:"points,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Icon       string     `json:"icon,omitempty"`
	GridSize   string     `json:"gridSize,omitempty"`
	ImageURL   string     `json:"imageUrl,omitempty"`
	TimesUsed  int        `json:"timesUsed,omitempty"`
}

// Apply merges the preference over a template; the preference wins on every set field.
func (p ActivityPreference) Apply(t ActivityTemplate) ActivityTemplate {
	if p.Duration != "" {
		t.Duration = p.Duration
	}
	if p.Points != 0 {
		t.Points = p.Points
	}
	if p.Difficulty != "" {
		t.Difficulty = p.Difficulty
	}
	if p.Icon != "" {
		t.Icon = p.Icon
	}
	if p.GridSize != "" {
		t.GridSize = p.GridSize
	}
	if p.TimesUsed > t.TimesUsed {
		t.TimesUsed = p.TimesUsed
	}
	return t
}

// Activity is the canonical shape every source is normalized to before merging.
type Activity struct {
	ID            string
	Title         string
	Description   string
	Category      Category
	DurationMin   int
	Points        int
	Difficulty    Difficulty
	Icon          string
	GridSize      string
	TimesUsed     int
	ScheduledTime string
	Source        ActivitySource
	Priority      int
}

// Validate checks the fields a template needs before it is stored.
func (t ActivityTemplate) Validate() error {
	var errs ValidationErrors
	if t.ID == "" {
		errs.AddMessage("id", "is required")
	}
	if t.Title == "" {
		errs.AddMessage("title", "is required")
	}
	if ParseCategory(string(t.Category)) != t.Category {
		errs.AddMessage("category", "unknown category "+string(t.Category))
	}
	if t.Points < 0 {
		errs.AddMessage("points", "must not be negative")
	}
	return errs.Err()
}
