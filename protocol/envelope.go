// Package protocol defines the wire vocabulary shared with the upstream
// service: the JSON envelope exchanged over the streaming connection and
// the closed set of command kinds it may carry.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"support-desk/domain"
	"support-desk/errors"
)

// Envelope is one structured frame of the streaming connection. Cmd and
// Type are aliases kept in sync for legacy peers; Kind() is the
// canonical discriminator. Timestamps stay raw strings here because the
// upstream formatting is not trusted: conversion to domain time is
// lenient and falls back to the local clock.
type Envelope struct {
	Cmd         string            `json:"cmd"`
	Type        string            `json:"type,omitempty"`
	RoomID      string            `json:"roomId,omitempty"`
	SenderID    string            `json:"senderId,omitempty"`
	SenderRole  string            `json:"senderRole,omitempty"`
	DisplayName string            `json:"displayName,omitempty"`
	Content     string            `json:"content,omitempty"`
	Timestamp   string            `json:"timestamp,omitempty"`
	Sequence    int64             `json:"sequence,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	History     []Envelope        `json:"history,omitempty"`
	Payload     *Payload          `json:"payload,omitempty"`
}

// Payload is the legacy container some peers use for history replays.
type Payload struct {
	Messages []Envelope `json:"messages,omitempty"`
}

// Kind returns the canonical command discriminator.
func (e Envelope) Kind() string {
	if e.Cmd != "" {
		return e.Cmd
	}
	return e.Type
}

// HistoryMessages returns the snapshot carried by a chat.history frame,
// whichever container the peer used.
func (e Envelope) HistoryMessages() []Envelope {
	if len(e.History) > 0 {
		return e.History
	}
	if e.Payload != nil {
		return e.Payload.Messages
	}
	return nil
}

// Message converts the envelope into a timeline message. History entries
// often omit cmd/type; they default to chat.message. A timestamp that
// does not parse falls back to now: ordering runs on sequences, the
// timestamp is display-only.
func (e Envelope) Message(now time.Time) domain.Message {
	kind := e.Kind()
	if kind == "" {
		kind = domain.KindChat
	}
	return domain.Message{
		Kind:        kind,
		RoomID:      e.RoomID,
		SenderID:    e.SenderID,
		SenderRole:  e.SenderRole,
		DisplayName: e.DisplayName,
		Content:     e.Content,
		Timestamp:   ParseTimestamp(e.Timestamp, now),
		Sequence:    e.Sequence,
		Metadata:    e.Metadata,
	}
}

// ParseTimestamp reads an upstream timestamp leniently.
func ParseTimestamp(value string, now time.Time) time.Time {
	if value == "" {
		return now
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return now
	}
	return ts.Local()
}

// Decode parses an inbound frame. The error wraps ErrMalformedEnvelope
// both for broken JSON and for an absent or unrecognized kind; callers
// drop the frame and keep the connection.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", errors.ErrMalformedEnvelope, err)
	}
	env.normalize()
	switch env.Kind() {
	case domain.KindChat, domain.KindTyping, domain.KindHistory, domain.KindSystem:
		return env, nil
	default:
		return Envelope{}, fmt.Errorf("%w: %w %q", errors.ErrMalformedEnvelope, errors.ErrUnknownKind, env.Kind())
	}
}

// Encode serializes an outbound frame.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// normalize maps the short legacy aliases onto canonical kinds and keeps
// cmd and type mirrored, the way the upstream service does.
func (e *Envelope) normalize() {
	e.Cmd = canonicalKind(e.Cmd)
	e.Type = canonicalKind(e.Type)
	if e.Cmd == "" {
		e.Cmd = e.Type
	}
	if e.Type == "" {
		e.Type = e.Cmd
	}
}

func canonicalKind(value string) string {
	switch value {
	case "message":
		return domain.KindChat
	case "typing":
		return domain.KindTyping
	case "history":
		return domain.KindHistory
	case "system":
		return domain.KindSystem
	default:
		return value
	}
}

// NewChatMessage builds an outbound chat.message frame. The sequence is
// left unset: only the upstream service assigns sequences.
func NewChatMessage(content string) Envelope {
	return Envelope{Cmd: domain.KindChat, Type: domain.KindChat, Content: content}
}

// NewTypingSignal builds an outbound chat.typing frame.
func NewTypingSignal() Envelope {
	return Envelope{
		Cmd:      domain.KindTyping,
		Type:     domain.KindTyping,
		Metadata: map[string]string{"status": "typing"},
	}
}

// NewHistoryRequest builds the explicit resync request sent right after
// the transport opens.
func NewHistoryRequest() Envelope {
	return Envelope{Cmd: domain.KindHistory, Type: domain.KindHistory}
}
