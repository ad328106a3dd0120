package model

import "time"

// DefaultGroupName is the group used when none is given on the command line.
const DefaultGroupName = "default"

// Policy holds the per-group repost switches. It is immutable for the
// duration of a run.
type Policy struct {
	AcceptDirectMessages bool
	AcceptPublicRetoots  bool
}

// Group is a registered group account on a Mastodon-compatible instance.
type Group struct {
	ID          int64
	Name        string
	InstanceURL string
	Policy      Policy
	Cursor      Cursor
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
