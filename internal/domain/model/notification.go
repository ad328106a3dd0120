package model

// Notification is a single entry of the group account's notification feed.
// IDs are monotonically increasing within an instance.
type Notification struct {
	ID       int64
	Type     NotificationType
	AuthorID string
	Author   string // acct of the author, for logging only
	Status   *Status
}

// Status is a post attached to a notification. Content is the rich-text (HTML)
// body as rendered by the instance.
type Status struct {
	ID          string
	Visibility  Visibility
	Content     string
	Sensitive   bool
	SpoilerText string
	URL         string
	Attachments []Attachment
}

// Attachment is a media file attached to a status.
type Attachment struct {
	SourceURL   string
	Description string
	Kind        string // "image", "video", "gifv", "audio", "unknown"
}
