package filter

import (
	"sort"
	"strings"

	"github.com/borgmon/lightwalker/pkg/catalog"
	"github.com/borgmon/lightwalker/pkg/models"
)

// DefaultSuggestionsPerCategory is how many generic suggestions each missing category gets.
const DefaultSuggestionsPerCategory = 2

// Input is everything the merge considers.
type Input struct {
	Timeline    []models.TimelineActivity
	Preferences []models.ActivityPreference
	Templates   []models.ActivityTemplate
	RoleModels  []string // selected role-model slugs

	SuggestionsPerCategory int
}

// Sources expands in into candidate sources in priority order.
func Sources(in Input) []Source {
	byID := make(map[string]models.ActivityTemplate, len(in.Templates))
	for _, t := range in.Templates {
		byID[t.ID] = t
	}

	var sources []Source
	covered := make(map[models.Category]bool)

	for _, a := range in.Timeline {
		sources = append(sources, TimelineSource{Activity: a})
		covered[models.ParseCategory(string(a.Category))] = true
	}
	for _, p := range in.Preferences {
		if t, ok := byID[p.ActivityID]; ok {
			sources = append(sources, PreferenceSource{Template: t, Preference: p})
			covered[t.Category] = true
		}
	}
	for _, slug := range in.RoleModels {
		for _, id := range catalog.RoleModelActivities[slug] {
			if t, ok := byID[id]; ok {
				sources = append(sources, RoleModelSource{Template: t, RoleModelSlug: slug})
				covered[t.Category] = true
			}
		}
	}

	perCategory := in.SuggestionsPerCategory
	if perCategory <= 0 {
		perCategory = DefaultSuggestionsPerCategory
	}
	for _, c := range models.Categories {
		if covered[c] {
			continue
		}
		var candidates []models.ActivityTemplate
		for _, t := range in.Templates {
			if t.Category == c {
				candidates = append(candidates, t)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].TimesUsed > candidates[j].TimesUsed })
		if len(candidates) > perCategory {
			candidates = candidates[:perCategory]
		}
		for _, t := range candidates {
			sources = append(sources, SuggestionSource{Template: t})
		}
	}
	return sources
}

// Merge builds the deduplicated, priority-ordered suggestion list for in.
func Merge(in Input) []models.Activity {
	return MergeSources(Sources(in))
}

// MergeSources normalizes sources, drops later duplicates by id or
// case-insensitive title, and orders by priority then descending usage.
func MergeSources(sources []Source) []models.Activity {
	seenIDs := make(map[string]bool)
	seenTitles := make(map[string]bool)
	out := make([]models.Activity, 0, len(sources))

	// Dedup follows priority, not input order.
	normalized := make([]models.Activity, 0, len(sources))
	for _, s := range sources {
		normalized = append(normalized, Normalize(s))
	}
	sort.SliceStable(normalized, func(i, j int) bool { return normalized[i].Priority < normalized[j].Priority })

	for _, a := range normalized {
		title := strings.ToLower(strings.TrimSpace(a.Title))
		if (a.ID != "" && seenIDs[a.ID]) || (title != "" && seenTitles[title]) {
			continue
		}
		if a.ID != "" {
			seenIDs[a.ID] = true
		}
		if title != "" {
			seenTitles[title] = true
		}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].TimesUsed > out[j].TimesUsed
	})
	return out
}
