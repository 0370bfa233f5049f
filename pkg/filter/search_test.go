package filter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/lightwalker/pkg/catalog"
	"github.com/borgmon/lightwalker/pkg/models"
)

func attr(name, description, method, benefit string, dailyDos ...string) models.SearchableAttribute {
	return models.SearchableAttribute{
		RoleModelAttribute: models.RoleModelAttribute{
			Name:        name,
			Description: description,
			Method:      method,
			Benefit:     benefit,
			DailyDos:    dailyDos,
		},
	}
}

func TestTerms(t *testing.T) {
	assert.Equal(t, []string{"focus", "concentration", "attention", "strategic", "priorities", "distraction"}, Terms("I want to FOCUS"))
	assert.Empty(t, Terms("the and of"))
	assert.Equal(t, []string{"self-control"}, Terms("self-control!"))
}

func TestSearchSynonymExpansion(t *testing.T) {
	attrs := []models.SearchableAttribute{
		attr("Order", "Everything in its place", "Plan in hourly blocks", "Strategic use of time", "Set the day's priorities"),
		attr("Compassion", "Making people feel seen", "Listen fully", "Deeper relationships"),
	}

	results := Search("focus", attrs)
	require.Len(t, results, 1)
	assert.Equal(t, "Order", results[0].Attribute.Name)
	assert.Equal(t, 5+8, results[0].Score)
	assert.ElementsMatch(t, []string{"strategic", "priorities"}, results[0].Terms)
}

func TestSearchNameOutranksMethod(t *testing.T) {
	attrs := []models.SearchableAttribute{
		attr("Patience", "Waiting well", "Breathe before you focus", "Calm"),
		attr("Focus", "Single-tasking", "One thing at a time", "Depth"),
	}

	results := Search("focus", attrs)
	require.Len(t, results, 2)
	assert.Equal(t, "Focus", results[0].Attribute.Name)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchWeights(t *testing.T) {
	attrs := []models.SearchableAttribute{
		attr("Walking", "", "", ""),
		attr("", "", "walking", ""),
		attr("", "", "", "", "walking"),
	}
	results := Search("walking", attrs)
	require.Len(t, results, 3)
	assert.Equal(t, []int{10, 8, 5}, []int{results[0].Score, results[1].Score, results[2].Score})
}

func TestSearchTopEightStable(t *testing.T) {
	var attrs []models.SearchableAttribute
	for i := 0; i < 12; i++ {
		attrs = append(attrs, attr(fmt.Sprintf("Reading %d", i), "", "", ""))
	}
	results := Search("reading", attrs)
	require.Len(t, results, MaxResults)
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("Reading %d", i), r.Attribute.Name)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	assert.Nil(t, Search("  the  ", catalog.Attributes(catalog.DefaultRoleModels)))
}

func TestSearchBuiltInCatalog(t *testing.T) {
	results := Search("focus", catalog.Attributes(catalog.DefaultRoleModels))
	require.NotEmpty(t, results)
	assert.Equal(t, "Deep Focus", results[0].Attribute.Name)
	assert.Equal(t, "marie-curie", results[0].Attribute.RoleModelSlug)
}
