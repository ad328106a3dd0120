package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyActivity(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		elapsed  time.Duration
		wantTier ActivityTier
	}{
		{"30 minutes ago is hot", 30 * time.Minute, TierHot},
		{"59 minutes ago is hot (boundary)", 59 * time.Minute, TierHot},
		{"61 minutes ago is active (boundary)", 61 * time.Minute, TierActive},
		{"12 hours ago is active", 12 * time.Hour, TierActive},
		{"25 hours ago is warm", 25 * time.Hour, TierWarm},
		{"3 days ago is warm", 3 * 24 * time.Hour, TierWarm},
		{"8 days ago is stale", 8 * 24 * time.Hour, TierStale},
		{"zero time is stale", 0, TierStale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lastActivity time.Time
			if tt.elapsed > 0 {
				lastActivity = now.Add(-tt.elapsed)
			}
			assert.Equal(t, tt.wantTier, classifyActivity(lastActivity, now))
		})
	}
}

func TestTierInterval(t *testing.T) {
	base := 5 * time.Minute

	tests := []struct {
		tier    ActivityTier
		wantDur time.Duration
	}{
		{TierHot, 5 * time.Minute},
		{TierActive, 10 * time.Minute},
		{TierWarm, 30 * time.Minute},
		{TierStale, 60 * time.Minute},
		{ActivityTier(99), 5 * time.Minute}, // unknown defaults to base
	}

	for _, tt := range tests {
		t.Run(tt.tier.String(), func(t *testing.T) {
			assert.Equal(t, tt.wantDur, tierInterval(tt.tier, base))
		})
	}
}

func TestActivityTier_String(t *testing.T) {
	assert.Equal(t, "hot", TierHot.String())
	assert.Equal(t, "active", TierActive.String())
	assert.Equal(t, "warm", TierWarm.String())
	assert.Equal(t, "stale", TierStale.String())
	assert.Equal(t, "unknown", ActivityTier(42).String())
}

func TestGroupSchedule_Update(t *testing.T) {
	base := time.Minute
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("adaptive with new notifications polls at base interval", func(t *testing.T) {
		var s groupSchedule
		s.update(now, true, true, base)

		assert.Equal(t, TierHot, s.tier)
		assert.Equal(t, now.Add(time.Minute), s.nextPollAt)
		assert.Equal(t, now, s.lastActivity)
	})

	t.Run("adaptive without activity backs off", func(t *testing.T) {
		var s groupSchedule
		s.update(now, false, true, base)

		assert.Equal(t, TierStale, s.tier)
		assert.Equal(t, now.Add(12*time.Minute), s.nextPollAt)
	})

	t.Run("fixed schedule ignores tier", func(t *testing.T) {
		var s groupSchedule
		s.update(now, false, false, base)

		assert.Equal(t, TierStale, s.tier)
		assert.Equal(t, now.Add(time.Minute), s.nextPollAt)
	})

	t.Run("activity is remembered across quiet runs", func(t *testing.T) {
		var s groupSchedule
		s.update(now, true, true, base)
		later := now.Add(2 * time.Hour)
		s.update(later, false, true, base)

		assert.Equal(t, TierActive, s.tier)
		assert.Equal(t, later.Add(2*time.Minute), s.nextPollAt)
	})
}

func TestGroupSchedule_Due(t *testing.T) {
	base := time.Minute
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var fresh groupSchedule
	assert.True(t, fresh.due(now, base), "never-polled group is due")

	s := groupSchedule{nextPollAt: now.Add(time.Minute)}
	assert.False(t, s.due(now, base))
	assert.True(t, s.due(now.Add(55*time.Second), base), "within slack")
	assert.True(t, s.due(now.Add(2*time.Minute), base))
}
