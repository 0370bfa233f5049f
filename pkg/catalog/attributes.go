package catalog

import "github.com/borgmon/lightwalker/pkg/models"

// Attributes flattens the attributes of roleModels for search.
func Attributes(roleModels []models.RoleModel) []models.SearchableAttribute {
	var out []models.SearchableAttribute
	for _, rm := range roleModels {
		for _, attr := range rm.Attributes {
			out = append(out, models.SearchableAttribute{
				RoleModelSlug:      rm.Slug,
				RoleModelName:      rm.Name,
				RoleModelAttribute: attr,
			})
		}
	}
	return out
}

// TemplateIDsFor returns the template ids associated with the given role-model slugs,
// in slug order without duplicates.
func TemplateIDsFor(slugs ...string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, slug := range slugs {
		for _, id := range RoleModelActivities[slug] {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}
