package model

// NotificationType classifies a notification. Only mentions can trigger a repost;
// every other remote type (favourite, reblog, follow, poll, ...) maps to NotificationOther.
type NotificationType string

const (
	NotificationMention NotificationType = "mention"
	NotificationOther   NotificationType = "other"
)

// Visibility is the audience of a status.
type Visibility string

const (
	VisibilityPublic Visibility = "public"
	VisibilityDirect Visibility = "direct"
	VisibilityOther  Visibility = "other"
)

// ActionKind identifies the variant of a RepostAction.
type ActionKind string

const (
	ActionNone        ActionKind = "none"
	ActionBoost       ActionKind = "boost"
	ActionRepostAsNew ActionKind = "repost"
)
