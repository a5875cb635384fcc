package store

import "time"

// Run is one recorded archcheck run.
type Run struct {
	ID       string        `json:"id"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration_ns"`
	Roots    []string      `json:"roots"`
	Pass     bool          `json:"pass"`
	Checks   []CheckRecord `json:"checks"`
}

// CheckRecord is one check outcome within a run.
type CheckRecord struct {
	Name       string        `json:"name"`
	Provider   string        `json:"provider"`
	Pass       bool          `json:"pass"`
	Error      string        `json:"error,omitempty"`
	Violations []string      `json:"violations,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}

// RunSummary is a run without its check records.
type RunSummary struct {
	ID         string
	Started    time.Time
	Duration   time.Duration
	Roots      []string
	Pass       bool
	Checks     int
	Failed     int
	Violations int
}
