package application

import (
	"strings"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
)

// RepostTrigger returns the marker a member must write in a public mention to
// ask the group to boost it.
func RepostTrigger(username string) string {
	return "!@" + username
}

// Classify maps a notification to at most one repost action. It is a pure
// function: no network calls, no state. Membership is not checked here; see
// Decide.
//
// Public mentions are boosted when retoots are accepted and the stripped text
// contains the "!@username" trigger. Direct messages are reposted as a new
// public status when direct messages are accepted.
func Classify(n model.Notification, policy model.Policy, username string) model.RepostAction {
	if n.Type != model.NotificationMention || n.Status == nil {
		return model.NoAction()
	}

	status := n.Status
	switch {
	case policy.AcceptPublicRetoots && status.Visibility == model.VisibilityPublic:
		if strings.Contains(StripMarkup(status.Content), RepostTrigger(username)) {
			return model.Boost(status.ID)
		}
	case policy.AcceptDirectMessages && status.Visibility == model.VisibilityDirect:
		return model.RepostAsNew(
			TransformContent(status.Content, username),
			status.Attachments,
			status.Sensitive,
			status.SpoilerText,
		)
	}

	return model.NoAction()
}

// Decide classifies a notification only if its author is a group member.
func Decide(n model.Notification, members MemberSet, policy model.Policy, username string) model.RepostAction {
	if !members.Contains(n.AuthorID) {
		return model.NoAction()
	}
	return Classify(n, policy, username)
}
