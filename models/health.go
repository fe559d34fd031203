package models

import "time"

// SourceHealth is the persisted circuit-breaker state for one source. Slowness
// and hard failures escalate through separate counters: an occasionally slow
// source and a consistently erroring one are different problems.
type SourceHealth struct {
	SourceID      string    `json:"source_id" bson:"sourceId"`
	SlowCount     int       `json:"slow_count" bson:"slowCount"`
	SampleCount   int       `json:"sample_count" bson:"sampleCount"`
	SlowRate      float64   `json:"slow_rate" bson:"slowRate"`
	BackoffLevel  int       `json:"backoff_level" bson:"backoffLevel"`
	ExcludedUntil time.Time `json:"excluded_until,omitempty" bson:"excludedUntil,omitempty"`
	StrikeCount   int       `json:"strike_count" bson:"strikeCount"`
	LastStrikeAt  time.Time `json:"last_strike_at,omitempty" bson:"lastStrikeAt,omitempty"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updatedAt"`
	ResetBy       string    `json:"reset_by,omitempty" bson:"resetBy,omitempty"`
	ResetAt       time.Time `json:"reset_at,omitempty" bson:"resetAt,omitempty"`
}

// Excluded reports whether the source is inside an exclusion window.
func (sh *SourceHealth) Excluded(now time.Time) bool {
	return now.Before(sh.ExcludedUntil)
}
