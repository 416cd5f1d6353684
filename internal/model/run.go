package model

import "time"

// ParseRunStatus represents the current state of a parse run.
type ParseRunStatus string

const (
	ParseRunStatusRunning  ParseRunStatus = "running"
	ParseRunStatusComplete ParseRunStatus = "complete"
	ParseRunStatusFailed   ParseRunStatus = "failed"
)

// ParseRun records one invocation of the multi-year parse pipeline.
type ParseRun struct {
	ID          string          `json:"id"`
	Years       []int           `json:"years"`
	Status      ParseRunStatus  `json:"status"`
	Result      *ParseRunResult `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// ParseRunResult holds the outcome of a completed parse run.
type ParseRunResult struct {
	TotalRecords int            `json:"total_records"`
	ByYear       map[int]int    `json:"by_year"`
	FailedYears  map[int]string `json:"failed_years,omitempty"`
	DurationMS   int64          `json:"duration_ms"`
}
