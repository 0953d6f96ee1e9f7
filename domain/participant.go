package domain

import "time"

const (
	RolePlayer = "player"
	RoleAgent  = "agent"
	RoleSystem = "system"
)

// Identity is the local participant of a session, carried as connection
// parameters by the streaming transport.
type Identity struct {
	ID          string `validate:"required"`
	Role        string `validate:"required,oneof=agent player"`
	DisplayName string `validate:"required"`
}

// Participant describes a connected user of a room as reported by the
// directory service.
type Participant struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role,omitempty"`
	Connected   bool      `json:"connected,omitempty"`
	LastSeen    time.Time `json:"lastSeen,omitempty"`
}

// Account is the authenticated profile behind an identity.
type Account struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Agency      string `json:"agency,omitempty"`
}

// Identity derives the session identity for an account acting under role.
func (a Account) Identity(role string) Identity {
	name := a.DisplayName
	if name == "" {
		name = a.Username
	}
	return Identity{ID: a.Username, Role: role, DisplayName: name}
}

// RoleProfile parameterizes the role-agnostic engine: the two roles share
// the synchronization logic and differ only in these hints.
type RoleProfile struct {
	// TypingWindow is the debounce window for inbound typing signals.
	TypingWindow time.Duration
	// KeepAssignmentNotices appends assignment notices to the timeline in
	// addition to patching the directory. The agent view wants the audit
	// trail, the player view only the subtitle change.
	KeepAssignmentNotices bool
}

func AgentProfile() RoleProfile {
	return RoleProfile{TypingWindow: 1500 * time.Millisecond, KeepAssignmentNotices: true}
}

func PlayerProfile() RoleProfile {
	return RoleProfile{TypingWindow: 1200 * time.Millisecond}
}
