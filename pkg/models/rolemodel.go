package models

// RoleModel is a historical figure whose habits can be folded into a persona.
// The slice fields are stored as JSON columns and decoded on read.
type RoleModel struct {
	ID            string               `json:"id"`
	Slug          string               `json:"slug"`
	Name          string               `json:"name"`
	Era           string               `json:"era"`
	Description   string               `json:"description"`
	CoreValues    []string             `json:"coreValues"`
	FamousQuotes  []string             `json:"famousQuotes"`
	DailyRoutines []string             `json:"dailyRoutines"`
	Attributes    []RoleModelAttribute `json:"attributes"`
}

// RoleModelAttribute is a trait the search panel matches against.
type RoleModelAttribute struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Method      string   `json:"method"`
	Benefit     string   `json:"benefit"`
	DailyDos    []string `json:"dailyDos"`
}

// SearchableAttribute is a role-model attribute tagged with its owner.
type SearchableAttribute struct {
	RoleModelSlug string
	RoleModelName string
	RoleModelAttribute
}
