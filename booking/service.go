/*
service.go - Booking orchestration over the rule-resolution engine

PURPOSE:
  Loads read-only snapshots through the repositories and hands them to the
  pure engine packages. This is the only place that touches I/O; blocking,
  rates and refunds never do.

OPERATIONS:
  RateCard:            assemble every rate record that can price one room
  NightlyPrice:        one night through the five-source cascade
  Quote:               blocked dates or a priced stay for a room
  Calendar:            blocked dates per room of a property over a window
  PreviewCancellation: refund breakdown for cancelling a reservation now

SNAPSHOTS:
  Independent lookups run concurrently with errgroup. The first failure
  cancels the rest and is returned; nothing is resolved on a partial snapshot.

DATA QUALITY:
  Blocks with an unknown recurrence never block (fail closed). The service
  logs them at WARN so staff can correct the data.
*/

// Package booking composes the engine with stored data.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dcorazolla/reservas-sub002/blocking"
	"github.com/dcorazolla/reservas-sub002/generic"
	"github.com/dcorazolla/reservas-sub002/rates"
	"github.com/dcorazolla/reservas-sub002/refunds"
)

// Service answers pricing, availability and cancellation questions.
type Service struct {
	store  Store
	logger *slog.Logger

	// Now is the clock used for cancellation previews. Tests override it.
	Now func() time.Time
}

// NewService creates a service over store. A nil logger discards output.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:  store,
		logger: logger,
		Now:    time.Now,
	}
}

// Store returns the underlying store.
func (s *Service) Store() Store { return s.store }

// =============================================================================
// PRICING
// =============================================================================

// RateCard loads every rate record that can price roomID.
func (s *Service) RateCard(ctx context.Context, roomID generic.RoomID) (rates.RateCard, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return rates.RateCard{}, fmt.Errorf("loading room %s: %w", roomID, err)
	}
	return s.rateCardFor(ctx, room)
}

func (s *Service) rateCardFor(ctx context.Context, room rates.Room) (rates.RateCard, error) {
	card := rates.RateCard{Room: room}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		card.RoomPeriods, err = s.store.ListRatePeriods(ctx, rates.ScopeRoom, string(room.ID))
		return err
	})
	g.Go(func() (err error) {
		card.RoomBase, err = s.optionalBase(ctx, rates.ScopeRoom, string(room.ID))
		return err
	})
	g.Go(func() (err error) {
		card.PropertyBase, err = s.optionalBase(ctx, rates.ScopeProperty, string(room.PropertyID))
		return err
	})
	if room.CategoryID != "" {
		g.Go(func() (err error) {
			card.CategoryPeriods, err = s.store.ListRatePeriods(ctx, rates.ScopeCategory, string(room.CategoryID))
			return err
		})
		g.Go(func() (err error) {
			card.CategoryBase, err = s.optionalBase(ctx, rates.ScopeCategory, string(room.CategoryID))
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return rates.RateCard{}, fmt.Errorf("loading rates for room %s: %w", room.ID, err)
	}
	return card, nil
}

func (s *Service) optionalBase(ctx context.Context, scope rates.Scope, ownerID string) (*rates.BaseRate, error) {
	base, err := s.store.BaseRate(ctx, scope, ownerID)
	if errors.Is(err, generic.ErrNotFound) {
		return nil, nil
	}
	return base, err
}

// NightlyPrice resolves the price of one night for roomID.
func (s *Service) NightlyPrice(ctx context.Context, roomID generic.RoomID, date generic.Date, occ generic.Occupancy) (rates.NightPrice, error) {
	card, err := s.RateCard(ctx, roomID)
	if err != nil {
		return rates.NightPrice{}, err
	}
	price, err := rates.ResolveNightlyPrice(card, date, occ)
	if err != nil {
		s.logResolutionError(ctx, "nightly price unresolved", err, slog.String("room_id", string(roomID)))
		return rates.NightPrice{}, err
	}
	return price, nil
}

// =============================================================================
// QUOTES
// =============================================================================

// Quote is the answer to "can I book this room for this stay, and for how much".
type Quote struct {
	RoomID       generic.RoomID    `json:"room_id"`
	Range        generic.DateRange `json:"range"`
	Occupancy    generic.Occupancy `json:"occupancy"`
	Available    bool              `json:"available"`
	BlockedDates []string          `json:"blocked_dates,omitempty"`
	Price        *rates.StayQuote  `json:"price,omitempty"`
}

// Quote checks stay against the room's blocks and, if free, prices it.
// A blocked stay is not an error: it returns Available=false with the blocked dates.
func (s *Service) Quote(ctx context.Context, roomID generic.RoomID, stay generic.DateRange, occ generic.Occupancy) (Quote, error) {
	if err := stay.Validate(); err != nil {
		return Quote{}, err
	}
	if err := occ.Validate(); err != nil {
		return Quote{}, err
	}

	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return Quote{}, fmt.Errorf("loading room %s: %w", roomID, err)
	}

	var (
		blocks []blocking.Block
		card   rates.RateCard
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		blocks, err = s.store.ListRoomBlocks(gctx, roomID, stay)
		return err
	})
	g.Go(func() (err error) {
		card, err = s.rateCardFor(gctx, room)
		return err
	})
	if err := g.Wait(); err != nil {
		return Quote{}, err
	}

	s.warnUnknownRecurrences(ctx, blocks)

	quote := Quote{RoomID: roomID, Range: stay, Occupancy: occ}
	if blocking.IsRangeBlocked(stay, blocks) {
		quote.BlockedDates = blocking.BlockedDates(blocks, stay)
		return quote, nil
	}

	price, err := rates.ResolveStayTotal(card, stay, occ)
	if err != nil {
		s.logResolutionError(ctx, "stay price unresolved", err, slog.String("room_id", string(roomID)))
		return Quote{}, err
	}
	quote.Available = true
	quote.Price = &price
	return quote, nil
}

// =============================================================================
// CALENDAR
// =============================================================================

// RoomCalendar lists the blocked days of one room.
type RoomCalendar struct {
	RoomID       generic.RoomID `json:"room_id"`
	Name         string         `json:"name"`
	BlockedDates []string       `json:"blocked_dates"`
}

// Calendar is the blocked-cell map of a property over a window.
type Calendar struct {
	PropertyID generic.PropertyID `json:"property_id"`
	Window     generic.DateRange  `json:"window"`
	Rooms      []RoomCalendar     `json:"rooms"`
}

// Calendar expands every block of the property's rooms over window.
// Callers bound the window; cost is days × blocks.
func (s *Service) Calendar(ctx context.Context, propertyID generic.PropertyID, window generic.DateRange) (Calendar, error) {
	if err := window.Validate(); err != nil {
		return Calendar{}, err
	}
	if _, err := s.store.GetProperty(ctx, propertyID); err != nil {
		return Calendar{}, fmt.Errorf("loading property %s: %w", propertyID, err)
	}

	var (
		rooms  []rates.Room
		blocks []blocking.Block
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rooms, err = s.store.ListRooms(gctx, propertyID)
		return err
	})
	g.Go(func() (err error) {
		blocks, err = s.store.ListPropertyBlocks(gctx, propertyID, window)
		return err
	})
	if err := g.Wait(); err != nil {
		return Calendar{}, err
	}

	s.warnUnknownRecurrences(ctx, blocks)

	byRoom := make(map[generic.RoomID][]blocking.Block)
	for _, b := range blocks {
		byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
	}

	cal := Calendar{PropertyID: propertyID, Window: window, Rooms: make([]RoomCalendar, 0, len(rooms))}
	for _, room := range rooms {
		dates := blocking.BlockedDates(byRoom[room.ID], window)
		cal.Rooms = append(cal.Rooms, RoomCalendar{RoomID: room.ID, Name: room.Name, BlockedDates: dates})
	}
	return cal, nil
}

// =============================================================================
// CANCELLATION
// =============================================================================

// PreviewCancellation computes the refund for cancelling reservationID now,
// under the property's policy in force today. Nothing is persisted.
func (s *Service) PreviewCancellation(ctx context.Context, reservationID generic.ReservationID) (refunds.Refund, error) {
	res, err := s.store.GetReservation(ctx, reservationID)
	if err != nil {
		return refunds.Refund{}, fmt.Errorf("loading reservation %s: %w", reservationID, err)
	}
	if res.Status == refunds.StatusCancelled {
		return refunds.Refund{}, fmt.Errorf("%w: %s", generic.ErrReservationCancelled, reservationID)
	}

	policies, err := s.store.ListPolicies(ctx, res.PropertyID)
	if err != nil {
		return refunds.Refund{}, fmt.Errorf("loading policies for property %s: %w", res.PropertyID, err)
	}

	now := s.Now()
	policy, err := refunds.PickPolicy(policies, generic.DateOf(now.UTC()))
	if err != nil {
		return refunds.Refund{}, fmt.Errorf("property %s: %w", res.PropertyID, err)
	}

	refund, err := refunds.CalculateRefund(res, policy, now)
	if err != nil {
		s.logResolutionError(ctx, "cancellation needs manual handling", err,
			slog.String("reservation_id", string(reservationID)),
			slog.String("policy_id", string(policy.ID)))
		return refunds.Refund{}, err
	}
	return refund, nil
}

// =============================================================================
// LOGGING
// =============================================================================

func (s *Service) warnUnknownRecurrences(ctx context.Context, blocks []blocking.Block) {
	for _, b := range blocking.UnknownRecurrences(blocks) {
		s.logger.WarnContext(ctx, "block has unknown recurrence, treated as not blocking",
			slog.String("block_id", b.ID),
			slog.String("room_id", string(b.RoomID)),
			slog.String("recurrence", string(b.Recurrence)))
	}
}

func (s *Service) logResolutionError(ctx context.Context, msg string, err error, attrs ...any) {
	if !generic.IsConfigurationError(err) {
		return
	}
	s.logger.ErrorContext(ctx, msg, append(attrs, slog.Any("error", err))...)
}
