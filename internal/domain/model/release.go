package model

import "time"

// Release describes a published release of tootgroup.
type Release struct {
	Tag         string
	URL         string
	PublishedAt time.Time
}
