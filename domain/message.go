// Package domain contains the core concepts of the support chat system:
// messages, participants, rooms, and session states. No runtime, network,
// or UI logic lives here.
package domain

import "time"

const (
	KindChat    = "chat.message"
	KindTyping  = "chat.typing"
	KindHistory = "chat.history"
	KindSystem  = "system.notice"
)

// Metadata keys carried by system notices.
const (
	MetaAssignedAgent   = "assignedAgent"
	MetaAssignedAgentID = "assignedAgentId"
)

// Message is one entry of a room timeline. Sequence is assigned by the
// upstream service and is monotonically increasing per room; zero means
// an unsequenced system notice.
type Message struct {
	Kind        string
	RoomID      string
	SenderID    string
	SenderRole  string
	DisplayName string
	Content     string
	Timestamp   time.Time
	Sequence    int64
	Metadata    map[string]string
}

// Sequenced reports whether the upstream service stamped this message.
func (m Message) Sequenced() bool {
	return m.Sequence > 0
}

// AssignedAgent extracts assignment metadata from a system notice.
func (m Message) AssignedAgent() (name, id string, ok bool) {
	if m.Kind != KindSystem || m.Metadata == nil {
		return "", "", false
	}
	name = m.Metadata[MetaAssignedAgent]
	if name == "" {
		return "", "", false
	}
	return name, m.Metadata[MetaAssignedAgentID], true
}

// SystemNotice builds an unsequenced local notice, used for connection
// lifecycle messages that never travel over the wire.
func SystemNotice(content string, at time.Time) Message {
	return Message{
		Kind:       KindSystem,
		SenderRole: RoleSystem,
		Content:    content,
		Timestamp:  at,
	}
}
