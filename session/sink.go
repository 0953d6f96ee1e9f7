//go:generate go run go.uber.org/mock/mockgen -source=sink.go -destination=mocks/mock_sink.go -package=mocks
package session

import (
	"support-desk/domain"
	"support-desk/presence"
	"support-desk/projection"
)

// Sink receives change notifications from the engine. Presentation
// collaborators implement it; every callback runs on the engine's event
// loop and must return quickly.
type Sink interface {
	// ConnectionChanged fires on every session state transition.
	ConnectionChanged(state domain.ConnState)
	// ComposerChanged reports whether the local participant may send.
	ComposerChanged(enabled bool)
	// TimelineReplaced fires after a snapshot replay or a reset.
	TimelineReplaced()
	// MessageAppended fires for each durable message added to the tail.
	MessageAppended(entry projection.Entry)
	// TypingChanged reports the typing indicator slot.
	TypingChanged(indicator presence.Indicator, active bool)
	// DirectoryChanged fires after any room-directory mutation.
	DirectoryChanged()
}
