// Package models defines the domain models for the application.
// The wire format uses camelCase field names; these are part of the public
// API contract and must not change casually.
package models

import (
	"time"
)

// Keyword is a single tracked keyword on a target.
type Keyword struct {
	Value     string `json:"value"`
	Generated bool   `json:"generated"` // true if auto-generated from site content
}

// Prompt is a single probe prompt on a target.
type Prompt struct {
	Value     string `json:"value"`
	Generated bool   `json:"generated"`
}

// Target represents a tracked business whose brand visibility is analyzed.
type Target struct {
	ID           string    `json:"id"`
	BusinessName string    `json:"businessName"`
	WebsiteURL   string    `json:"websiteUrl"`
	Keywords     []Keyword `json:"keywords"`
	Prompts      []Prompt  `json:"prompts"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// VisibilityCheck is the result of a single probe: one prompt sent to the
// LLM, checked for mentions of one brand. Immutable once created.
type VisibilityCheck struct {
	Prompt  string `json:"prompt"`
	Keyword string `json:"keyword"` // the brand name checked, not a topical keyword
	// Occurred is true if the brand was found at least once in the answer.
	Occurred bool `json:"occurred"`
	// Position is the best (lowest) competitive rank across mentions.
	// Nil when the brand did not occur.
	Position         *int    `json:"position"`
	ContextRelevance float64 `json:"contextRelevance"` // [0,1]
}

// VisibilityScore aggregates all checks of one analysis run into a single
// 0-100 visibility metric.
type VisibilityScore struct {
	TotalChecks int `json:"totalChecks"`
	Occurrences int `json:"occurrences"`
	// AveragePosition is nil iff Occurrences == 0.
	AveragePosition         *float64          `json:"averagePosition"`
	AverageContextRelevance float64           `json:"averageContextRelevance"` // [0,1]
	VisibilityScore         float64           `json:"visibilityScore"`         // [0,100]
	Checks                  []VisibilityCheck `json:"checks"`
}
