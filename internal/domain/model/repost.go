package model

import "time"

// RepostRecord is an entry of the repost log: one executed (or failed) action
// for one notification.
type RepostRecord struct {
	ID              int64
	GroupName       string
	NotificationID  int64
	StatusID        string // source status
	Action          ActionKind
	Text            string // reposted text; empty for boosts
	OriginalContent string // source status HTML
	PublishedID     string // ID of the boost or new status on the instance
	RunID           string
	Error           string
	CreatedAt       time.Time
}

// Succeeded reports whether the action reached the instance.
func (r RepostRecord) Succeeded() bool {
	return r.Error == ""
}
