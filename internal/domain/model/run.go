package model

import "time"

// RunReport summarises a single relay run for one group.
type RunReport struct {
	RunID        string
	GroupName    string
	StartedAt    time.Time
	FinishedAt   time.Time
	Scanned      int
	Boosted      int
	Reposted     int
	Skipped      int
	Failed       int
	CursorBefore Cursor
	CursorAfter  Cursor
	DryRun       bool
	Error        string
}

// Duration returns how long the run took.
func (r RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
