package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestCanAccept(t *testing.T) {
	tests := []struct {
		name          string
		capacity      *int
		acceptedCount int
		want          bool
	}{
		{"nil capacity is unlimited", nil, 0, true},
		{"nil capacity stays unlimited at high counts", nil, 10000, true},
		{"zero capacity never accepts", intPtr(0), 0, false},
		{"below capacity", intPtr(3), 2, true},
		{"at capacity", intPtr(3), 3, false},
		{"over capacity", intPtr(3), 5, false},
		{"capacity one empty", intPtr(1), 0, true},
		{"capacity one full", intPtr(1), 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spot := &RosterSpot{Capacity: tt.capacity}
			assert.Equal(t, tt.want, CanAccept(spot, tt.acceptedCount))
		})
	}
}

func TestDeadlinePassed(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.False(t, DeadlinePassed(&RosterSpot{}, now), "nil deadline never passes")

	future := now.Add(24 * time.Hour)
	assert.False(t, DeadlinePassed(&RosterSpot{Deadline: &future}, now))

	past := now.Add(-time.Minute)
	assert.True(t, DeadlinePassed(&RosterSpot{Deadline: &past}, now))

	exact := now
	assert.False(t, DeadlinePassed(&RosterSpot{Deadline: &exact}, now), "deadline instant itself is still open")
}

func TestHasFee(t *testing.T) {
	assert.False(t, HasFee(&RosterSpot{}), "nil fee means free")
	assert.False(t, HasFee(&RosterSpot{FeeCents: int64Ptr(0)}))
	assert.True(t, HasFee(&RosterSpot{FeeCents: int64Ptr(2500)}))
}
