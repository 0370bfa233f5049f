package models

import "time"

// Completion is one recorded finish of a timeline activity.
type Completion struct {
	ID          string
	ActivityID  string
	TemplateID  string
	Title       string
	Points      int
	CompletedAt time.Time
}

// Day returns the local calendar day key of the completion.
func (c Completion) Day() string {
	return c.CompletedAt.Local().Format("2006-01-02")
}
