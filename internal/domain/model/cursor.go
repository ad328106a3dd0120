package model

// Cursor is the highest notification ID already processed for a group.
// It is an exclusive lower bound for the next fetch and never decreases.
type Cursor int64

// DefaultCursor is used when no valid cursor is stored. It is 1 rather than 0 so
// that a strict greater-than comparison still admits the very first notification.
const DefaultCursor Cursor = 1

// Advance returns the larger of c and the given notification ID.
func (c Cursor) Advance(latest int64) Cursor {
	if Cursor(latest) > c {
		return Cursor(latest)
	}
	return c
}
