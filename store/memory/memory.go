// Package memory provides an in-memory booking.Store for tests and demos.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dcorazolla/reservas-sub002/blocking"
	"github.com/dcorazolla/reservas-sub002/booking"
	"github.com/dcorazolla/reservas-sub002/generic"
	"github.com/dcorazolla/reservas-sub002/rates"
	"github.com/dcorazolla/reservas-sub002/refunds"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Store keeps every record in insertion order. Saving an existing id replaces
// the record in place, so definition order survives updates.
type Store struct {
	mu           sync.RWMutex
	properties   ordered[generic.PropertyID, booking.Property]
	rooms        ordered[generic.RoomID, rates.Room]
	blocks       ordered[string, blocking.Block]
	periods      ordered[string, rates.RatePeriod]
	bases        ordered[baseKey, rates.BaseRate]
	policies     ordered[generic.PolicyID, refunds.Policy]
	reservations ordered[generic.ReservationID, refunds.Reservation]
}

var _ booking.Store = (*Store)(nil)

type baseKey struct {
	Scope   rates.Scope
	OwnerID string
}

func New() *Store {
	return &Store{}
}

// =============================================================================
// READS
// =============================================================================

func (m *Store) GetProperty(_ context.Context, id generic.PropertyID) (booking.Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.properties.get(id)
	if !ok {
		return booking.Property{}, fmt.Errorf("property %s: %w", id, generic.ErrNotFound)
	}
	return p, nil
}

func (m *Store) GetRoom(_ context.Context, id generic.RoomID) (rates.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms.get(id)
	if !ok {
		return rates.Room{}, fmt.Errorf("room %s: %w", id, generic.ErrNotFound)
	}
	return r, nil
}

func (m *Store) ListRooms(_ context.Context, propertyID generic.PropertyID) ([]rates.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms.filter(func(r rates.Room) bool { return r.PropertyID == propertyID }), nil
}

func (m *Store) ListRoomBlocks(_ context.Context, roomID generic.RoomID, window generic.DateRange) ([]blocking.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blocks.filter(func(b blocking.Block) bool {
		return b.RoomID == roomID && b.Range.Overlaps(window)
	}), nil
}

func (m *Store) ListPropertyBlocks(_ context.Context, propertyID generic.PropertyID, window generic.DateRange) ([]blocking.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blocks.filter(func(b blocking.Block) bool {
		room, ok := m.rooms.get(b.RoomID)
		return ok && room.PropertyID == propertyID && b.Range.Overlaps(window)
	}), nil
}

func (m *Store) ListRatePeriods(_ context.Context, scope rates.Scope, ownerID string) ([]rates.RatePeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.periods.filter(func(p rates.RatePeriod) bool {
		return p.Scope == scope && p.OwnerID == ownerID
	}), nil
}

func (m *Store) BaseRate(_ context.Context, scope rates.Scope, ownerID string) (*rates.BaseRate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bases.get(baseKey{Scope: scope, OwnerID: ownerID})
	if !ok {
		return nil, fmt.Errorf("%s base rate %s: %w", scope, ownerID, generic.ErrNotFound)
	}
	return &b, nil
}

func (m *Store) ListPolicies(_ context.Context, propertyID generic.PropertyID) ([]refunds.Policy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	policies := m.policies.filter(func(p refunds.Policy) bool { return p.PropertyID == propertyID })
	for i := range policies {
		policies[i].Rules = slices.Clone(policies[i].Rules)
	}
	return policies, nil
}

func (m *Store) GetReservation(_ context.Context, id generic.ReservationID) (refunds.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reservations.get(id)
	if !ok {
		return refunds.Reservation{}, fmt.Errorf("reservation %s: %w", id, generic.ErrNotFound)
	}
	return r, nil
}

// =============================================================================
// WRITES
// =============================================================================

func (m *Store) SaveProperty(_ context.Context, p booking.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.properties.put(p.ID, p)
	return nil
}

func (m *Store) SaveRoom(_ context.Context, room rates.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms.put(room.ID, room)
	return nil
}

func (m *Store) SaveBlock(_ context.Context, b blocking.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms.get(b.RoomID); !ok {
		return fmt.Errorf("room %s: %w", b.RoomID, generic.ErrNotFound)
	}
	m.blocks.put(b.ID, b)
	return nil
}

func (m *Store) SaveRatePeriod(_ context.Context, p rates.RatePeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods.put(p.ID, p)
	return nil
}

func (m *Store) SaveBaseRate(_ context.Context, b rates.BaseRate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bases.put(baseKey{Scope: b.Scope, OwnerID: b.OwnerID}, b)
	return nil
}

func (m *Store) SavePolicy(_ context.Context, p refunds.Policy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Rules = slices.Clone(p.Rules)
	m.policies.put(p.ID, p)
	return nil
}

func (m *Store) SaveReservation(_ context.Context, r refunds.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations.put(r.ID, r)
	return nil
}

// Reset drops every record.
func (m *Store) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.properties = ordered[generic.PropertyID, booking.Property]{}
	m.rooms = ordered[generic.RoomID, rates.Room]{}
	m.blocks = ordered[string, blocking.Block]{}
	m.periods = ordered[string, rates.RatePeriod]{}
	m.bases = ordered[baseKey, rates.BaseRate]{}
	m.policies = ordered[generic.PolicyID, refunds.Policy]{}
	m.reservations = ordered[generic.ReservationID, refunds.Reservation]{}
	return nil
}

// =============================================================================
// ORDERED COLLECTION
// =============================================================================

type ordered[K comparable, V any] struct {
	keys  []K
	items map[K]V
}

func (o *ordered[K, V]) put(k K, v V) {
	if o.items == nil {
		o.items = make(map[K]V)
	}
	if _, exists := o.items[k]; !exists {
		o.keys = append(o.keys, k)
	}
	o.items[k] = v
}

func (o *ordered[K, V]) get(k K) (V, bool) {
	v, ok := o.items[k]
	return v, ok
}

func (o *ordered[K, V]) filter(keep func(V) bool) []V {
	out := []V{}
	for _, k := range o.keys {
		if v := o.items[k]; keep(v) {
			out = append(out, v)
		}
	}
	return out
}
