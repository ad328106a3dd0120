package application

import (
	"time"
)

// ActivityTier classifies how busy a group is, based on how recently a run
// found new notifications for it.
type ActivityTier int

const (
	// TierHot indicates new notifications within the last hour.
	TierHot ActivityTier = iota
	// TierActive indicates new notifications within the last day.
	TierActive
	// TierWarm indicates new notifications within the last 7 days.
	TierWarm
	// TierStale indicates nothing new for 7+ days, or never.
	TierStale
)

// Poll interval multipliers per activity tier, applied to the base interval
// when adaptive polling is enabled.
const (
	multiplierHot    = 1
	multiplierActive = 2
	multiplierWarm   = 6
	multiplierStale  = 12
)

// String returns a human-readable name for the activity tier.
func (t ActivityTier) String() string {
	switch t {
	case TierHot:
		return "hot"
	case TierActive:
		return "active"
	case TierWarm:
		return "warm"
	case TierStale:
		return "stale"
	default:
		return "unknown"
	}
}

// tierInterval returns the polling interval for the given tier.
func tierInterval(tier ActivityTier, base time.Duration) time.Duration {
	switch tier {
	case TierHot:
		return base * multiplierHot
	case TierActive:
		return base * multiplierActive
	case TierWarm:
		return base * multiplierWarm
	case TierStale:
		return base * multiplierStale
	default:
		return base
	}
}

// classifyActivity determines the activity tier based on the time elapsed
// since the last activity. A zero-value time is treated as TierStale.
func classifyActivity(lastActivity, now time.Time) ActivityTier {
	if lastActivity.IsZero() {
		return TierStale
	}

	elapsed := now.Sub(lastActivity)

	switch {
	case elapsed < 1*time.Hour:
		return TierHot
	case elapsed < 24*time.Hour:
		return TierActive
	case elapsed < 7*24*time.Hour:
		return TierWarm
	default:
		return TierStale
	}
}

// groupSchedule tracks per-group polling state.
type groupSchedule struct {
	tier         ActivityTier
	nextPollAt   time.Time
	lastPolled   time.Time
	lastActivity time.Time
}

// ScheduleInfo is an exported view of a group's polling schedule, used for
// observability and testing.
type ScheduleInfo struct {
	Tier         ActivityTier
	NextPollAt   time.Time
	LastPolled   time.Time
	LastActivity time.Time
}

// update records a finished run and computes the next poll time. With
// adaptive polling off every group polls at the base interval.
func (s *groupSchedule) update(now time.Time, foundNew, adaptive bool, base time.Duration) {
	s.lastPolled = now
	if foundNew {
		s.lastActivity = now
	}
	s.tier = classifyActivity(s.lastActivity, now)

	interval := base
	if adaptive {
		interval = tierInterval(s.tier, base)
	}
	s.nextPollAt = now.Add(interval)
}

// due reports whether the group should be polled at now. A small slack keeps
// ticker jitter from pushing a poll to the next tick.
func (s *groupSchedule) due(now time.Time, base time.Duration) bool {
	return !now.Before(s.nextPollAt.Add(-base / 10))
}

func (s *groupSchedule) info() ScheduleInfo {
	return ScheduleInfo{
		Tier:         s.tier,
		NextPollAt:   s.nextPollAt,
		LastPolled:   s.lastPolled,
		LastActivity: s.lastActivity,
	}
}
