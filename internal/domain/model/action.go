package model

// RepostAction is the outcome of classifying a notification. Exactly one of the
// variant payloads is meaningful, selected by Kind.
type RepostAction struct {
	Kind ActionKind

	// Boost
	StatusID string

	// RepostAsNew
	Text        string
	Media       []Attachment
	Sensitive   bool
	SpoilerText string
}

// NoAction is the zero-effect classification result.
func NoAction() RepostAction {
	return RepostAction{Kind: ActionNone}
}

// Boost re-publishes an existing status unchanged.
func Boost(statusID string) RepostAction {
	return RepostAction{Kind: ActionBoost, StatusID: statusID}
}

// RepostAsNew publishes a new public status derived from a direct message.
func RepostAsNew(text string, media []Attachment, sensitive bool, spoilerText string) RepostAction {
	return RepostAction{
		Kind:        ActionRepostAsNew,
		Text:        text,
		Media:       media,
		Sensitive:   sensitive,
		SpoilerText: spoilerText,
	}
}

// IsNone reports whether the action has no remote effect.
func (a RepostAction) IsNone() bool {
	return a.Kind == "" || a.Kind == ActionNone
}
