package stats

import (
	"sync"
	"time"
)

// Stats is a point-in-time snapshot of server activity.
type Stats struct {
	TotalJoins     int64     `json:"total_joins"`
	TotalLeaves    int64     `json:"total_leaves"`
	TotalMessages  int64     `json:"total_messages"`
	ActiveRooms    int64     `json:"active_rooms"`
	ActiveMembers  int64     `json:"active_members"`
	PeakRooms      int64     `json:"peak_rooms"`
	PeakMembers    int64     `json:"peak_members"`
	StartedAt      time.Time `json:"started_at"`
	UptimeSeconds  int64     `json:"uptime_seconds"`
	LastActivityAt time.Time `json:"last_activity_at,omitempty"`
}

// StatsStore accumulates activity counters from membership and message
// events. Counters are derived purely from the event stream, so the store
// never needs to reach into other modules.
type StatsStore struct {
	mu            sync.RWMutex
	totalJoins    int64
	totalLeaves   int64
	totalMessages int64
	activeRooms   int64
	activeMembers int64
	peakRooms     int64
	peakMembers   int64
	startedAt     time.Time
	lastActivity  time.Time
}

// NewStatsStore creates an empty store.
func NewStatsStore() *StatsStore {
	return &StatsStore{
		startedAt: time.Now(),
	}
}

// RecordJoin records one member joining. memberCount is the room's size
// after the join, so a count of one marks a newly created room.
func (s *StatsStore) RecordJoin(memberCount int, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalJoins++
	s.activeMembers++
	if memberCount == 1 {
		s.activeRooms++
	}
	if s.activeMembers > s.peakMembers {
		s.peakMembers = s.activeMembers
	}
	if s.activeRooms > s.peakRooms {
		s.peakRooms = s.activeRooms
	}
	s.lastActivity = at
}

// RecordLeave records one member leaving. remainingCount is the room's size
// after the removal, so a count of zero marks a reclaimed room.
func (s *StatsStore) RecordLeave(remainingCount int, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalLeaves++
	if s.activeMembers > 0 {
		s.activeMembers--
	}
	if remainingCount == 0 && s.activeRooms > 0 {
		s.activeRooms--
	}
	s.lastActivity = at
}

// RecordMessage records one room broadcast.
func (s *StatsStore) RecordMessage(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalMessages++
	s.lastActivity = at
}

// Snapshot returns a copy of the current counters.
func (s *StatsStore) Snapshot() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		TotalJoins:     s.totalJoins,
		TotalLeaves:    s.totalLeaves,
		TotalMessages:  s.totalMessages,
		ActiveRooms:    s.activeRooms,
		ActiveMembers:  s.activeMembers,
		PeakRooms:      s.peakRooms,
		PeakMembers:    s.peakMembers,
		StartedAt:      s.startedAt,
		UptimeSeconds:  int64(time.Since(s.startedAt).Seconds()),
		LastActivityAt: s.lastActivity,
	}
}
