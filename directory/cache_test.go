package directory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"support-desk/domain"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
}

func newTestCache() *Cache {
	c := NewCache()
	c.now = fixedNow
	return c
}

func TestCache_RefreshReconcilesWholesale(t *testing.T) {
	req := require.New(t)
	c := newTestCache()

	c.Refresh([]domain.RoomSummary{
		{RoomID: "r1"},
		{RoomID: "r2", AssignedAgentID: "a1", AssignedAgent: "Ann"},
	})
	req.Len(c.Rooms(), 2)

	// A later poll that no longer lists r1 evicts it.
	c.Refresh([]domain.RoomSummary{
		{RoomID: "r2", AssignedAgentID: "a1", AssignedAgent: "Ann"},
	})
	_, ok := c.Room("r1")
	req.False(ok)
	_, ok = c.Room("r2")
	req.True(ok)
}

func TestCache_ApplyAssignment(t *testing.T) {
	req := require.New(t)
	c := newTestCache()
	c.Refresh([]domain.RoomSummary{{RoomID: "r1"}})

	req.True(c.ApplyAssignment("r1", "Ann", "a1"))
	room, _ := c.Room("r1")
	req.Equal("Ann", room.AssignedAgent)
	req.Equal("a1", room.AssignedAgentID)

	// A notice without an id keeps the previous id.
	req.True(c.ApplyAssignment("r1", "Ann B.", ""))
	room, _ = c.Room("r1")
	req.Equal("Ann B.", room.AssignedAgent)
	req.Equal("a1", room.AssignedAgentID)

	// Patches against rooms the poller has not seen yet are dropped.
	req.False(c.ApplyAssignment("ghost", "Ann", "a1"))
	_, ok := c.Room("ghost")
	req.False(ok)
}

func TestCache_ApplyMessageTouch(t *testing.T) {
	req := require.New(t)
	c := newTestCache()
	c.Refresh([]domain.RoomSummary{{RoomID: "r1"}})

	at := fixedNow().Add(-time.Minute)
	req.True(c.ApplyMessageTouch("r1", "hello there", at))
	room, _ := c.Room("r1")
	req.Equal("hello there", room.LastMessage)
	req.Equal(at, room.LastActivity)

	req.False(c.ApplyMessageTouch("ghost", "hi", at))
}

func TestCache_RoomsOrderedByActivity(t *testing.T) {
	req := require.New(t)
	c := newTestCache()

	now := fixedNow()
	c.Refresh([]domain.RoomSummary{
		{RoomID: "quiet"},
		{RoomID: "old", LastActivity: now.Add(-time.Hour)},
		{RoomID: "fresh", LastActivity: now.Add(-time.Minute)},
	})

	ids := make([]string, 0, 3)
	for _, room := range c.Rooms() {
		ids = append(ids, room.RoomID)
	}
	req.Equal([]string{"fresh", "old", "quiet"}, ids)
}

func TestCache_Filter(t *testing.T) {
	req := require.New(t)
	c := newTestCache()
	c.Refresh([]domain.RoomSummary{
		{RoomID: "room-1", AssignedAgent: "Ann", LastMessage: "refund please"},
		{RoomID: "room-2", AssignedAgent: "Bob", LastMessage: "hello"},
	})

	req.Len(c.Filter(""), 2)
	req.Len(c.Filter("  "), 2)

	hits := c.Filter("REFUND")
	req.Len(hits, 1)
	req.Equal("room-1", hits[0].RoomID)

	hits = c.Filter("bob")
	req.Len(hits, 1)
	req.Equal("room-2", hits[0].RoomID)

	req.Empty(c.Filter("nobody"))
}

func TestCache_ComputeMetrics(t *testing.T) {
	req := require.New(t)
	c := newTestCache()

	now := fixedNow()
	c.Refresh([]domain.RoomSummary{
		{RoomID: "r1"},
		{RoomID: "r2", AssignedAgentID: "a1", AssignedAgent: "Ann",
			LastActivity: now.Add(-time.Minute), ConnectedAgentCount: 1},
		{RoomID: "r3", AssignedAgentID: "a2", AssignedAgent: "Bob",
			LastActivity: now.Add(-time.Hour), ConnectedAgentCount: 1},
	})

	m := c.ComputeMetrics()
	req.Equal(1, m.Waiting)
	req.Equal(1, m.Active)
	req.Equal(2, m.ConnectedAgents)
	// No presence poll yet: fall back to the connected sum.
	req.Equal(2, m.AgentsOnline)

	c.RefreshAgents([]domain.AgentPresence{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}})
	req.Equal(3, c.ComputeMetrics().AgentsOnline)

	// A wider recency window pulls the hour-old room back into active.
	c.WithActiveThreshold(2 * time.Hour)
	req.Equal(2, c.ComputeMetrics().Active)
}

func TestCache_MetricsRecomputedAfterPatchesAndRefresh(t *testing.T) {
	req := require.New(t)
	c := newTestCache()

	c.Refresh([]domain.RoomSummary{
		{RoomID: "r1"},
		{RoomID: "r2"},
	})
	req.Equal(2, c.ComputeMetrics().Waiting)

	c.ApplyAssignment("r1", "Ann", "a1")
	c.ApplyMessageTouch("r2", "hi", fixedNow())
	m := c.ComputeMetrics()
	req.Equal(1, m.Waiting)
	req.Equal(1, m.Active)

	// A wholesale refresh resets everything the patches changed; the
	// derived counters follow the snapshot, not a running tally.
	c.Refresh([]domain.RoomSummary{
		{RoomID: "r1"},
		{RoomID: "r2"},
	})
	m = c.ComputeMetrics()
	req.Equal(2, m.Waiting)
	req.Equal(0, m.Active)
}
