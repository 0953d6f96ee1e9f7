package domain

import "time"

// RoomSummary is a lightweight view of a room used for listing and
// metrics. Owned collectively by the directory cache: replaced wholesale
// on refresh, patched in place by live events.
type RoomSummary struct {
	RoomID               string    `json:"roomId"`
	CreatedAt            time.Time `json:"createdAt"`
	LastActivity         time.Time `json:"lastActivity"`
	PlayerCount          int       `json:"playerCount"`
	AgentCount           int       `json:"agentCount"`
	ConnectedPlayerCount int       `json:"connectedPlayerCount"`
	ConnectedAgentCount  int       `json:"connectedAgentCount"`
	AssignedAgentID      string    `json:"assignedAgentId,omitempty"`
	AssignedAgent        string    `json:"assignedAgent,omitempty"`
	LastMessage          string    `json:"lastMessage,omitempty"`
}

// Assigned reports whether an agent owns this room.
func (r RoomSummary) Assigned() bool {
	return r.AssignedAgentID != ""
}

// AgentPresence is one online agent as reported by the directory poll.
// Poll-only entity: replaced wholesale, never patched.
type AgentPresence struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Rooms       []string  `json:"rooms,omitempty"`
	LastSeen    time.Time `json:"lastSeen"`
}
