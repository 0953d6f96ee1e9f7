// Package directory keeps a keyed snapshot of room and agent summaries,
// refreshed wholesale by polling and patched incrementally by live
// events from the open session.
package directory

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"support-desk/domain"
)

// ActiveThreshold is the recency window after which a room stops
// counting as active.
const ActiveThreshold = 5 * time.Minute

// Metrics is derived from the cache on demand. Always recomputed, never
// tracked incrementally, so a refresh after a burst of patches cannot
// leave drift behind.
type Metrics struct {
	Waiting         int
	Active          int
	AgentsOnline    int
	ConnectedAgents int
}

// Cache holds the directory state. All methods must be called from the
// session event loop; the poller posts its results into that loop.
type Cache struct {
	rooms           map[string]domain.RoomSummary
	agents          []domain.AgentPresence
	activeThreshold time.Duration
	now             func() time.Time
}

func NewCache() *Cache {
	return &Cache{
		rooms:           make(map[string]domain.RoomSummary),
		activeThreshold: ActiveThreshold,
		now:             time.Now,
	}
}

// WithActiveThreshold overrides the recency window used by the metrics.
func (c *Cache) WithActiveThreshold(threshold time.Duration) *Cache {
	if threshold > 0 {
		c.activeThreshold = threshold
	}
	return c
}

// Refresh replaces the room mapping wholesale: entries absent from the
// snapshot are evicted (full reconciliation, not a merge). Live patches
// arriving after a refresh apply against the new mapping.
func (c *Cache) Refresh(rooms []domain.RoomSummary) {
	c.rooms = make(map[string]domain.RoomSummary, len(rooms))
	for _, room := range rooms {
		c.rooms[room.RoomID] = room
	}
}

// RefreshAgents replaces the agent presence list. Poll-only entity:
// there is no incremental patch path for agents.
func (c *Cache) RefreshAgents(agents []domain.AgentPresence) {
	c.agents = agents
}

// ApplyAssignment patches a room on a system.notice with assignment
// metadata. No-op when the room is unknown: the directory may lag behind
// an active session.
func (c *Cache) ApplyAssignment(roomID, agentDisplayName, agentID string) bool {
	room, ok := c.rooms[roomID]
	if !ok {
		return false
	}
	room.AssignedAgent = agentDisplayName
	if agentID != "" {
		room.AssignedAgentID = agentID
	}
	c.rooms[roomID] = room
	return true
}

// ApplyMessageTouch patches lastMessage/lastActivity on a live
// chat.message. No-op when the room is unknown.
func (c *Cache) ApplyMessageTouch(roomID, content string, timestamp time.Time) bool {
	room, ok := c.rooms[roomID]
	if !ok {
		return false
	}
	room.LastMessage = content
	room.LastActivity = timestamp
	c.rooms[roomID] = room
	return true
}

// Room looks up one summary.
func (c *Cache) Room(roomID string) (domain.RoomSummary, bool) {
	room, ok := c.rooms[roomID]
	return room, ok
}

// Rooms lists the cached summaries ordered by lastActivity descending.
// Rooms that never saw activity sort last.
func (c *Cache) Rooms() []domain.RoomSummary {
	rooms := lo.Values(c.rooms)
	sort.SliceStable(rooms, func(i, j int) bool {
		return rooms[i].LastActivity.After(rooms[j].LastActivity)
	})
	return rooms
}

// Filter lists rooms whose id, assigned agent, or last message contains
// the keyword, preserving the Rooms ordering. An empty keyword returns
// everything.
func (c *Cache) Filter(keyword string) []domain.RoomSummary {
	rooms := c.Rooms()
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return rooms
	}
	return lo.Filter(rooms, func(room domain.RoomSummary, _ int) bool {
		return strings.Contains(strings.ToLower(room.RoomID), keyword) ||
			strings.Contains(strings.ToLower(room.AssignedAgent), keyword) ||
			strings.Contains(strings.ToLower(room.LastMessage), keyword)
	})
}

// Agents returns the last polled presence list.
func (c *Cache) Agents() []domain.AgentPresence {
	return c.agents
}

// ComputeMetrics derives the dashboard counters from current state.
func (c *Cache) ComputeMetrics() Metrics {
	now := c.now()
	rooms := lo.Values(c.rooms)

	waiting := lo.CountBy(rooms, func(room domain.RoomSummary) bool {
		return !room.Assigned()
	})
	active := lo.CountBy(rooms, func(room domain.RoomSummary) bool {
		return !room.LastActivity.IsZero() && now.Sub(room.LastActivity) <= c.activeThreshold
	})
	connected := lo.SumBy(rooms, func(room domain.RoomSummary) int {
		return room.ConnectedAgentCount
	})

	agents := len(c.agents)
	if agents == 0 {
		agents = connected
	}
	return Metrics{
		Waiting:         waiting,
		Active:          active,
		AgentsOnline:    agents,
		ConnectedAgents: connected,
	}
}
