package model

import "time"

// Credential holds a secret belonging to a group. Key identifies the secret
// within the group.
type Credential struct {
	ID        int64
	GroupName string
	Key       string
	Value     string
	UpdatedAt time.Time
}

// CredentialAccessToken is the key of a group's Mastodon access token.
const CredentialAccessToken = "access_token"
