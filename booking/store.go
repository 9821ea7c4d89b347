/*
store.go - Repository interfaces consumed by the booking service

PURPOSE:
  Defines the read-only lookups the engine needs and the staff-side writes
  the HTTP layer performs. The engine never mutates what it reads: every call
  loads a snapshot, resolves, and discards it.

KEY INTERFACES:
  RoomRepository:        properties and rooms by id
  BlockRepository:       blocks overlapping a window
  RateRepository:        rate periods and base rates by scope and owner
  PolicyRepository:      cancellation policies of a property, rules in order
  ReservationRepository: reservations by id
  Writer:                staff-side creation of every record kind

LOOKUP CONTRACT:
  Single-record lookups return generic.ErrNotFound (possibly wrapped) when the
  record does not exist. List lookups return an empty slice, never an error,
  when nothing matches. Lists keep definition (insertion) order, which the
  engine relies on for tie-breaking.

IMPLEMENTATIONS:
  - store/sqlite: SQLite via mattn/go-sqlite3
  - store/memory: in-memory, for tests and demos

SEE ALSO:
  - service.go: the only consumer of the read interfaces
*/

package booking

import (
	"context"

	"github.com/dcorazolla/reservas-sub002/blocking"
	"github.com/dcorazolla/reservas-sub002/generic"
	"github.com/dcorazolla/reservas-sub002/rates"
	"github.com/dcorazolla/reservas-sub002/refunds"
)

// Property is the top-level owner of rooms, rates and policies.
type Property struct {
	ID   generic.PropertyID `json:"id"`
	Name string             `json:"name"`
}

// =============================================================================
// READ SIDE
// =============================================================================

type RoomRepository interface {
	GetProperty(ctx context.Context, id generic.PropertyID) (Property, error)
	GetRoom(ctx context.Context, id generic.RoomID) (rates.Room, error)
	ListRooms(ctx context.Context, propertyID generic.PropertyID) ([]rates.Room, error)
}

type BlockRepository interface {
	// ListRoomBlocks returns the room's blocks whose range overlaps window.
	ListRoomBlocks(ctx context.Context, roomID generic.RoomID, window generic.DateRange) ([]blocking.Block, error)

	// ListPropertyBlocks returns blocks of every room of the property overlapping window.
	ListPropertyBlocks(ctx context.Context, propertyID generic.PropertyID, window generic.DateRange) ([]blocking.Block, error)
}

type RateRepository interface {
	ListRatePeriods(ctx context.Context, scope rates.Scope, ownerID string) ([]rates.RatePeriod, error)

	// BaseRate returns generic.ErrNotFound when the owner has no base rate.
	BaseRate(ctx context.Context, scope rates.Scope, ownerID string) (*rates.BaseRate, error)
}

type PolicyRepository interface {
	ListPolicies(ctx context.Context, propertyID generic.PropertyID) ([]refunds.Policy, error)
}

type ReservationRepository interface {
	GetReservation(ctx context.Context, id generic.ReservationID) (refunds.Reservation, error)
}

// =============================================================================
// WRITE SIDE
// =============================================================================

// Writer creates records. Saving an existing id replaces the record.
type Writer interface {
	SaveProperty(ctx context.Context, p Property) error
	SaveRoom(ctx context.Context, room rates.Room) error
	SaveBlock(ctx context.Context, b blocking.Block) error
	SaveRatePeriod(ctx context.Context, p rates.RatePeriod) error
	SaveBaseRate(ctx context.Context, b rates.BaseRate) error
	SavePolicy(ctx context.Context, p refunds.Policy) error
	SaveReservation(ctx context.Context, r refunds.Reservation) error
}

// Store is everything the service and the HTTP layer need from persistence.
type Store interface {
	RoomRepository
	BlockRepository
	RateRepository
	PolicyRepository
	ReservationRepository
	Writer
}
