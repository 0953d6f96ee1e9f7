// Package projection builds the local timeline from observed messages.
// Handles ordering, deduplication, and day partitions.
// Does not emit events or talk to the transport directly.
package projection

import (
	"math"
	"sort"
	"time"

	"support-desk/domain"
)

// Entry is one rendered slot of the timeline. NewDay is set on the first
// message of each local calendar day, so consumers can place a divider
// without re-scanning the log.
type Entry struct {
	Message  domain.Message
	NewDay   bool
	DayLabel string
}

// Timeline is the ordered, deduplicated log of the currently open room.
// All methods must be called from the session event loop.
type Timeline struct {
	placeholder string
	entries     []Entry
	lastDay     string
	maxSeq      map[string]int64
	now         func() time.Time
}

func NewTimeline() *Timeline {
	return &Timeline{
		maxSeq: make(map[string]int64),
		now:    time.Now,
	}
}

// Reset clears the log, used when switching rooms or on explicit resync.
// The placeholder is what consumers render while the log is empty.
func (t *Timeline) Reset(placeholder string) {
	t.placeholder = placeholder
	t.entries = nil
	t.lastDay = ""
	t.maxSeq = make(map[string]int64)
}

// IngestSnapshot replaces the log wholesale. The upstream service does
// not guarantee delivery order for a bulk snapshot, so the input is
// stable-sorted by sequence first: unsequenced entries keep their
// relative position among equals.
func (t *Timeline) IngestSnapshot(messages []domain.Message) {
	sorted := make([]domain.Message, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Sequence < sorted[j].Sequence
	})

	t.entries = nil
	t.lastDay = ""
	t.maxSeq = make(map[string]int64)
	for _, m := range sorted {
		t.append(m)
	}
}

// IngestLive appends one message to the tail. Live events arrive in send
// order, so the log is never re-sorted; but a sequence at or below the
// highest already seen for the same kind is a retransmission and is
// dropped. Returns the appended entry, or ok=false for a duplicate.
func (t *Timeline) IngestLive(m domain.Message) (Entry, bool) {
	if m.Sequenced() && m.Sequence <= t.maxSeq[m.Kind] {
		return Entry{}, false
	}
	return t.append(m), true
}

func (t *Timeline) append(m domain.Message) Entry {
	if m.Timestamp.IsZero() {
		m.Timestamp = t.now()
	}
	if m.Sequenced() && m.Sequence > t.maxSeq[m.Kind] {
		t.maxSeq[m.Kind] = m.Sequence
	}

	entry := Entry{Message: m, DayLabel: DayLabel(m.Timestamp, t.now())}
	if entry.DayLabel != t.lastDay {
		entry.NewDay = true
		t.lastDay = entry.DayLabel
	}
	t.entries = append(t.entries, entry)
	return entry
}

// Entries returns the ordered log.
func (t *Timeline) Entries() []Entry {
	return t.entries
}

// Len returns the number of entries.
func (t *Timeline) Len() int {
	return len(t.entries)
}

// Empty reports whether the placeholder state should be rendered.
func (t *Timeline) Empty() bool {
	return len(t.entries) == 0
}

// Placeholder is the text rendered while the log is empty.
func (t *Timeline) Placeholder() string {
	return t.placeholder
}

// DayLabel computes the calendar-day partition key for a timestamp in
// local time, relative to now. The day distance is rounded, not
// truncated: a DST transition makes a calendar day 23 or 25 hours long.
func DayLabel(ts, now time.Time) string {
	day := truncateToDay(ts)
	base := truncateToDay(now)
	switch int(math.Round(base.Sub(day).Hours() / 24)) {
	case 0:
		return "Today"
	case 1:
		return "Yesterday"
	case -1:
		return "Tomorrow"
	default:
		return day.Format("Mon 01/02")
	}
}

func truncateToDay(ts time.Time) time.Time {
	local := ts.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}
