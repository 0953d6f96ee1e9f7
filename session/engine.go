// Package session owns the streaming session for one room at a time:
// connect, dispatch inbound envelopes, handle close. All engine state
// lives behind a single event loop; transport reads, timer expiries, and
// caller commands re-enter through Post, so the in-memory structures
// need no locking.
package session

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"support-desk/directory"
	"support-desk/domain"
	"support-desk/errors"
	"support-desk/presence"
	"support-desk/projection"
	"support-desk/protocol"
)

var validate = validator.New()

// Timeline placeholder copy.
const (
	PlaceholderIdle  = "No conversation selected"
	PlaceholderEmpty = "No messages yet"
)

type connection struct {
	gen      uuid.UUID
	roomID   string
	conn     Conn
	replayed bool
}

// Engine is the realtime synchronization engine. One live connection at
// most; opening a new room closes the previous connection silently.
type Engine struct {
	log       *slog.Logger
	identity  domain.Identity
	profile   domain.RoleProfile
	socketURL string
	dialer    Dialer

	timeline *projection.Timeline
	typing   *presence.Debouncer
	cache    *directory.Cache
	sinks    []Sink

	calls chan func()
	now   func() time.Time

	state   domain.ConnState
	current *connection
}

func NewEngine(log *slog.Logger, identity domain.Identity, profile domain.RoleProfile,
	socketURL string, dialer Dialer, cache *directory.Cache) *Engine {
	e := &Engine{
		log:       log,
		identity:  identity,
		profile:   profile,
		socketURL: socketURL,
		dialer:    dialer,
		timeline:  projection.NewTimeline(),
		cache:     cache,
		calls:     make(chan func(), 256),
		now:       time.Now,
		state:     domain.Disconnected,
	}
	e.timeline.Reset(PlaceholderIdle)
	e.typing = presence.NewDebouncer(profile.TypingWindow, e.Post, e.emitTyping)
	return e
}

// AddSink registers a change consumer. Call before Run.
func (e *Engine) AddSink(sinks ...Sink) {
	e.sinks = append(e.sinks, sinks...)
}

// Run drives the event loop until the context is canceled. Implements
// runtime.Worker.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-e.calls:
			fn()
		case <-ctx.Done():
			e.close("")
			return nil
		}
	}
}

// Post schedules fn onto the event loop.
func (e *Engine) Post(fn func()) {
	e.calls <- fn
}

// Do runs fn on the event loop and waits for it, for callers that need
// a consistent read of engine state.
func (e *Engine) Do(fn func()) {
	done := make(chan struct{})
	e.Post(func() {
		defer close(done)
		fn()
	})
	<-done
}

// Timeline returns the timeline store. Only touch it from the loop.
func (e *Engine) Timeline() *projection.Timeline {
	return e.timeline
}

// Directory returns the room directory cache. Only touch it from the
// loop.
func (e *Engine) Directory() *directory.Cache {
	return e.cache
}

// Identity returns the local participant.
func (e *Engine) Identity() domain.Identity {
	return e.identity
}

// Connect opens a streaming session for roomID, closing any previous
// session first. The dial happens off-loop; a result arriving after a
// newer Connect superseded it is discarded by generation.
func (e *Engine) Connect(ctx context.Context, roomID string) {
	e.Post(func() { e.connect(ctx, roomID) })
}

// Close ends the current session without surfacing a disconnect notice.
// Idempotent: closing an absent session is a no-op.
func (e *Engine) Close() {
	e.Post(func() { e.close("") })
}

// Leave ends the current session and appends the given local notice.
func (e *Engine) Leave(notice string) {
	e.Post(func() { e.close(notice) })
}

// Send transmits a chat message over the open session.
func (e *Engine) Send(content string) {
	e.Post(func() { e.write(protocol.NewChatMessage(content)) })
}

// SendTyping transmits a typing signal over the open session.
func (e *Engine) SendTyping() {
	e.Post(func() { e.write(protocol.NewTypingSignal()) })
}

// RequestResync asks the upstream service to replay the room history.
func (e *Engine) RequestResync() {
	e.Post(func() { e.write(protocol.NewHistoryRequest()) })
}

// LoadSnapshot seeds the timeline from a REST room snapshot. Discarded
// when the engine has moved to another room since the fetch started, or
// when a streaming replay already landed for this connection: the
// point-in-time read predates the replay by definition and must not
// replace it.
func (e *Engine) LoadSnapshot(roomID string, messages []domain.Message) {
	e.Post(func() {
		if e.current == nil || e.current.roomID != roomID || e.current.replayed {
			e.log.Debug("Discarding room snapshot", "roomId", roomID, "error", errors.ErrStaleResponse)
			return
		}
		e.applySnapshot(messages)
	})
}

func (e *Engine) connect(ctx context.Context, roomID string) {
	if err := validate.Struct(e.identity); err != nil {
		e.log.Error("Refusing to connect with incomplete identity", "error", err)
		return
	}

	// At most one active connection per client: supersede silently.
	e.close("")

	gen := uuid.New()
	e.current = &connection{gen: gen, roomID: roomID}
	e.setState(domain.Connecting)
	e.timeline.Reset(PlaceholderEmpty)
	e.emitTimelineReplaced()

	rawURL := e.socketURL + "?" + url.Values{
		"roomId": {roomID},
		"role":   {e.identity.Role},
		"id":     {e.identity.ID},
		"name":   {e.identity.DisplayName},
	}.Encode()

	go func() {
		conn, err := e.dialer.Dial(ctx, rawURL)
		e.Post(func() { e.attach(gen, conn, err) })
	}()
}

func (e *Engine) attach(gen uuid.UUID, conn Conn, err error) {
	if e.current == nil || e.current.gen != gen {
		// A newer Connect or a Close superseded this dial.
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		e.log.Warn("Connect failed", "roomId", e.current.roomID, "error", err)
		e.current = nil
		e.setState(domain.Disconnected)
		e.appendLocal("Connection failed, please try again later")
		return
	}

	e.current.conn = conn
	e.setState(domain.Open)
	e.emitComposer(true)

	// The REST snapshot taken at room selection is a point-in-time read
	// that may already be stale; an explicit resync closes that window.
	e.write(protocol.NewHistoryRequest())

	go e.readPump(gen, conn)
}

func (e *Engine) readPump(gen uuid.UUID, conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			e.Post(func() { e.handleClosed(gen) })
			return
		}
		e.Post(func() { e.handleFrame(gen, data) })
	}
}

func (e *Engine) close(notice string) {
	if e.current == nil {
		return
	}
	if e.current.conn != nil {
		e.current.conn.Close()
	}
	e.current = nil
	e.setState(domain.Closed)
	e.setState(domain.Disconnected)
	e.emitComposer(false)
	e.typing.Clear()
	if notice != "" {
		e.appendLocal(notice)
	}
}

// handleClosed reacts to a transport-initiated close or error. A close
// following a local Close or a superseding Connect arrives with a stale
// generation and is ignored, which is what suppresses the disconnect
// notice for self-initiated closes.
func (e *Engine) handleClosed(gen uuid.UUID) {
	if e.current == nil || e.current.gen != gen {
		return
	}
	e.current = nil
	e.setState(domain.Closed)
	e.setState(domain.Disconnected)
	e.emitComposer(false)
	e.typing.Clear()
	e.appendLocal("Connection lost, you can reconnect at any time")
}

// handleFrame decodes and routes one inbound frame. No frame error is
// fatal to the connection.
func (e *Engine) handleFrame(gen uuid.UUID, data []byte) {
	if e.current == nil || e.current.gen != gen {
		return
	}

	env, err := protocol.Decode(data)
	if err != nil {
		e.log.Warn("Dropping frame", "error", err)
		return
	}

	switch env.Kind() {
	case domain.KindHistory:
		e.handleHistory(env)
	case domain.KindChat:
		e.handleChat(env)
	case domain.KindTyping:
		e.typing.Signal(senderLabel(env))
	case domain.KindSystem:
		e.handleSystem(env)
	}
}

func (e *Engine) handleHistory(env protocol.Envelope) {
	now := e.now()
	messages := make([]domain.Message, 0, len(env.HistoryMessages()))
	for _, item := range env.HistoryMessages() {
		messages = append(messages, item.Message(now))
	}
	e.current.replayed = true
	e.applySnapshot(messages)
}

func (e *Engine) applySnapshot(messages []domain.Message) {
	// Assignment notices in the replay still describe the room; the
	// player view patches the directory without rendering them.
	touched := false
	kept := make([]domain.Message, 0, len(messages))
	for _, m := range messages {
		name, id, ok := m.AssignedAgent()
		if ok {
			touched = e.cache.ApplyAssignment(e.roomID(m), name, id) || touched
			if !e.profile.KeepAssignmentNotices {
				continue
			}
		}
		kept = append(kept, m)
	}

	e.typing.Clear()
	e.timeline.IngestSnapshot(kept)
	e.emitTimelineReplaced()
	if touched {
		e.emitDirectoryChanged()
	}
}

func (e *Engine) handleChat(env protocol.Envelope) {
	m := env.Message(e.now())
	roomID := e.roomID(m)

	e.typing.Clear()
	entry, ok := e.timeline.IngestLive(m)
	if !ok {
		e.log.Debug("Dropping duplicate message", "sequence", m.Sequence)
		return
	}
	e.emitAppended(entry)

	if e.cache.ApplyMessageTouch(roomID, m.Content, m.Timestamp) {
		e.emitDirectoryChanged()
	}
}

func (e *Engine) handleSystem(env protocol.Envelope) {
	m := env.Message(e.now())

	name, id, ok := m.AssignedAgent()
	if !ok {
		// Plain notice: stays in the audit order of the timeline.
		e.appendMessage(m)
		return
	}

	if e.cache.ApplyAssignment(e.roomID(m), name, id) {
		e.emitDirectoryChanged()
	}
	if e.profile.KeepAssignmentNotices {
		e.appendMessage(m)
	}
}

func (e *Engine) appendMessage(m domain.Message) {
	e.typing.Clear()
	if entry, ok := e.timeline.IngestLive(m); ok {
		e.emitAppended(entry)
	}
}

func (e *Engine) appendLocal(text string) {
	e.appendMessage(domain.SystemNotice(text, e.now()))
}

func (e *Engine) write(env protocol.Envelope) {
	if e.state != domain.Open || e.current == nil || e.current.conn == nil {
		e.log.Debug("Dropping outbound frame", "kind", env.Kind(), "error", errors.ErrSessionClosed)
		return
	}
	data, err := env.Encode()
	if err != nil {
		e.log.Error("Encoding outbound frame failed", "error", err)
		return
	}
	if err := e.current.conn.WriteMessage(data); err != nil {
		// The read pump observes the broken transport and closes the
		// session; nothing more to do here.
		e.log.Warn("Write failed", "error", err)
	}
}

// roomID resolves the room a frame belongs to, falling back to the open
// room for peers that omit it.
func (e *Engine) roomID(m domain.Message) string {
	if m.RoomID != "" {
		return m.RoomID
	}
	if e.current != nil {
		return e.current.roomID
	}
	return ""
}

func senderLabel(env protocol.Envelope) string {
	if env.DisplayName != "" {
		return env.DisplayName
	}
	return env.SenderRole
}

func (e *Engine) setState(state domain.ConnState) {
	if e.state == state {
		return
	}
	e.state = state
	for _, sink := range e.sinks {
		sink.ConnectionChanged(state)
	}
}

func (e *Engine) emitComposer(enabled bool) {
	for _, sink := range e.sinks {
		sink.ComposerChanged(enabled)
	}
}

func (e *Engine) emitTimelineReplaced() {
	for _, sink := range e.sinks {
		sink.TimelineReplaced()
	}
}

func (e *Engine) emitAppended(entry projection.Entry) {
	for _, sink := range e.sinks {
		sink.MessageAppended(entry)
	}
}

func (e *Engine) emitTyping(indicator presence.Indicator, active bool) {
	for _, sink := range e.sinks {
		sink.TypingChanged(indicator, active)
	}
}

func (e *Engine) emitDirectoryChanged() {
	for _, sink := range e.sinks {
		sink.DirectoryChanged()
	}
}
