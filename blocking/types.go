// Package blocking decides when a room is administratively unavailable.
// It uses the generic date core with room-block specific recurrence rules.
package blocking

import (
	"github.com/dcorazolla/reservas-sub002/generic"
)

// =============================================================================
// RECURRENCE
// =============================================================================

// Recurrence is the repetition pattern of a block, always anchored on Range.Start.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Known reports whether the matcher understands r. Unknown values never block;
// callers should log them as a data-quality signal.
func (r Recurrence) Known() bool {
	switch ParseRecurrence(string(r)) {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// ParseRecurrence maps stored values to a Recurrence. The empty string means none.
// Unrecognized values are kept verbatim so the matcher can fail closed on them.
func ParseRecurrence(s string) Recurrence {
	if s == "" {
		return RecurrenceNone
	}
	return Recurrence(s)
}

// =============================================================================
// BLOCK
// =============================================================================

// BlockType is why a room is blocked.
type BlockType string

const (
	BlockMaintenance BlockType = "maintenance"
	BlockCleaning    BlockType = "cleaning"
	BlockPrivate     BlockType = "private"
	BlockOther       BlockType = "other"
)

// Block takes a room out of inventory. Blocks are immutable once matched against;
// editing one means storing a new version.
type Block struct {
	ID         string            `json:"id"`
	RoomID     generic.RoomID    `json:"room_id"`
	Range      generic.DateRange `json:"range"`
	Recurrence Recurrence        `json:"recurrence"`
	Type       BlockType         `json:"type"`
	Reason     string            `json:"reason,omitempty"`
}
