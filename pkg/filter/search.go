package filter

import (
	"sort"
	"strings"
	"unicode"

	"github.com/borgmon/lightwalker/pkg/models"
)

// MaxResults caps the number of search results.
const MaxResults = 8

// Field weights.
const (
	weightName    = 10
	weightMethod  = 5
	weightDailyDo = 8
)

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true, "be": true,
	"by": true, "for": true, "from": true, "how": true, "i": true, "in": true, "is": true,
	"it": true, "me": true, "more": true, "my": true, "of": true, "on": true, "or": true,
	"some": true, "that": true, "the": true, "to": true, "want": true, "with": true,
	"get": true, "become": true, "like": true, "need": true,
}

var synonyms = map[string][]string{
	"focus":        {"concentration", "attention", "strategic", "priorities", "distraction"},
	"discipline":   {"self-control", "habit", "routine", "order"},
	"calm":         {"stoic", "peace", "mindfulness", "reflection"},
	"creativity":   {"creative", "imagination", "curiosity", "expression"},
	"health":       {"exercise", "physical", "wellness", "strength"},
	"learn":        {"curiosity", "reading", "study", "knowledge"},
	"productivity": {"industry", "order", "work", "priorities"},
	"kindness":     {"compassion", "empathy", "listen"},
	"courage":      {"fear", "bold", "truth"},
	"resilience":   {"perseverance", "setbacks", "persistence"},
}

// Result is a scored attribute.
type Result struct {
	Attribute models.SearchableAttribute
	Score     int
	Terms     []string // terms that contributed to the score
}

// Terms tokenizes query, drops stop words and expands synonyms.
func Terms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})

	seen := make(map[string]bool)
	var terms []string
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}
	for _, f := range fields {
		f = strings.Trim(f, "-")
		if len(f) < 2 || stopWords[f] {
			continue
		}
		add(f)
		for _, syn := range synonyms[f] {
			add(syn)
		}
	}
	return terms
}

// Search scores attributes against query and returns at most MaxResults with
// a positive score, best first. Ties keep input order.
func Search(query string, attributes []models.SearchableAttribute) []Result {
	terms := Terms(query)
	if len(terms) == 0 {
		return nil
	}

	var results []Result
	for _, attr := range attributes {
		if r := score(attr, terms); r.Score > 0 {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results
}

func score(attr models.SearchableAttribute, terms []string) Result {
	nameText := strings.ToLower(attr.Name + " " + attr.Description)
	methodText := strings.ToLower(attr.Method + " " + attr.Benefit)
	dailyDos := make([]string, len(attr.DailyDos))
	for i, d := range attr.DailyDos {
		dailyDos[i] = strings.ToLower(d)
	}

	r := Result{Attribute: attr}
	for _, term := range terms {
		s := strings.Count(nameText, term)*weightName + strings.Count(methodText, term)*weightMethod
		for _, d := range dailyDos {
			s += strings.Count(d, term) * weightDailyDo
		}
		if s > 0 {
			r.Score += s
			r.Terms = append(r.Terms, term)
		}
	}
	return r
}
