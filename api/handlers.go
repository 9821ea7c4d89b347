/*
handlers.go - HTTP API handlers for the rule-resolution engine

PURPOSE:
  Exposes pricing, availability and cancellation previews over REST. Handles
  HTTP request/response and JSON, and delegates every decision to the
  booking service and the factory.

ENDPOINTS:
  Pricing and availability:
    GET  /api/rooms/{id}/price?date=&adults=&children=&infants=
    GET  /api/rooms/{id}/quote?check_in=&check_out=&adults=&children=&infants=
    GET  /api/properties/{id}/calendar?from=&to=

  Cancellation:
    GET  /api/reservations/{id}/cancellation-preview

  Definitions (staff side, validated by factory):
    POST /api/rooms/{id}/blocks
    POST /api/rate-periods
    POST /api/base-rates
    POST /api/policies

REQUEST FLOW:
  1. Parse path and query parameters
  2. Validate input (factory for bodies, generic for ranges/occupancy)
  3. Call booking.Service
  4. Serialize response
  5. Map errors to RFC7807 problems (problem.go)

WINDOWS:
  Quote and calendar windows longer than MAX_WINDOW_DAYS are rejected with 400.
  Calendar cost is days x blocks, so the bound is the caller's protection.

SEE ALSO:
  - dto.go: Query parsing and response shapes
  - problem.go: Error mapping
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/

package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/dcorazolla/reservas-sub002/booking"
	"github.com/dcorazolla/reservas-sub002/factory"
	"github.com/dcorazolla/reservas-sub002/generic"
	"github.com/dcorazolla/reservas-sub002/rates"
	"github.com/dcorazolla/reservas-sub002/refunds"
)

const (
	maxBodyBytes = 1 << 20

	// gapHorizonDays is how far ahead policy gaps are reported on creation.
	gapHorizonDays = 365
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	service       *booking.Service
	factory       *factory.Factory
	logger        *slog.Logger
	maxWindowDays int

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler over service. maxWindowDays bounds quote and
// calendar windows; zero disables the bound.
func NewHandler(service *booking.Service, f *factory.Factory, logger *slog.Logger, maxWindowDays int) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		service:       service,
		factory:       f,
		logger:        logger,
		maxWindowDays: maxWindowDays,
	}
}

func (h *Handler) store() booking.Store { return h.service.Store() }

// Health reports liveness and, when the store supports it, pings it.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	pinger, ok := h.store().(interface{ Ping(context.Context) error })
	if !ok {
		writeJSON(w, http.StatusOK, HealthDTO{Status: "ok", Store: "n/a"})
		return
	}
	if err := pinger.Ping(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "store ping failed", slog.Any("error", err))
		writeJSON(w, http.StatusServiceUnavailable, HealthDTO{Status: "degraded", Store: "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, HealthDTO{Status: "ok", Store: "ok"})
}

// =============================================================================
// PRICING AND AVAILABILITY
// =============================================================================

// GetNightlyPrice prices one night of a room.
func (h *Handler) GetNightlyPrice(w http.ResponseWriter, r *http.Request) {
	roomID := generic.RoomID(chi.URLParam(r, "id"))

	date, err := dateParam(r, "date")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	occ, err := occupancyParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	night, err := h.service.NightlyPrice(r.Context(), roomID, date, occ)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, night)
}

// GetQuote checks availability of a stay and prices it when free.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	roomID := generic.RoomID(chi.URLParam(r, "id"))

	stay, err := rangeParams(r, "check_in", "check_out", h.maxWindowDays)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	occ, err := occupancyParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	quote, err := h.service.Quote(r.Context(), roomID, stay, occ)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// GetCalendar returns the blocked days of every room of a property.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	propertyID := generic.PropertyID(chi.URLParam(r, "id"))

	window, err := rangeParams(r, "from", "to", h.maxWindowDays)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	cal, err := h.service.Calendar(r.Context(), propertyID, window)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

// =============================================================================
// CANCELLATION
// =============================================================================

// PreviewCancellation computes the refund for cancelling a reservation now.
// Nothing is persisted.
func (h *Handler) PreviewCancellation(w http.ResponseWriter, r *http.Request) {
	reservationID := generic.ReservationID(chi.URLParam(r, "id"))

	refund, err := h.service.PreviewCancellation(r.Context(), reservationID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, refund)
}

// =============================================================================
// DEFINITIONS
// =============================================================================

// CreateBlock validates and stores a block on the room in the path.
func (h *Handler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var bj factory.BlockJSON
	if err := json.Unmarshal(body, &bj); err != nil {
		h.fail(w, r, &generic.DefinitionError{Kind: "block", Field: "body", Reason: err.Error()})
		return
	}
	bj.RoomID = chi.URLParam(r, "id")

	block, err := h.factory.BlockFromJSON(bj)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.store().SaveBlock(r.Context(), block); err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "block created",
		slog.String("block_id", block.ID),
		slog.String("room_id", string(block.RoomID)),
		slog.String("range", block.Range.String()))
	writeJSON(w, http.StatusCreated, block)
}

// CreateRatePeriod validates and stores a rate period.
func (h *Handler) CreateRatePeriod(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	period, err := h.factory.ParseRatePeriod(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if period.Scope == rates.ScopeRoom {
		if _, err := h.store().GetRoom(r.Context(), generic.RoomID(period.OwnerID)); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	if err := h.store().SaveRatePeriod(r.Context(), period); err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "rate period created",
		slog.String("period_id", period.ID),
		slog.String("scope", string(period.Scope)),
		slog.String("owner_id", period.OwnerID))
	writeJSON(w, http.StatusCreated, period)
}

// SaveBaseRate validates and stores a base rate, replacing any existing one
// for the same scope and owner.
func (h *Handler) SaveBaseRate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	base, err := h.factory.ParseBaseRate(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.store().SaveBaseRate(r.Context(), base); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, base)
}

// CreatePolicy validates and stores a cancellation policy. The response lists
// the day spans no rule covers so staff can close them before guests hit them.
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	policy, err := h.factory.ParsePolicy(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.store().GetProperty(r.Context(), policy.PropertyID); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.store().SavePolicy(r.Context(), policy); err != nil {
		h.fail(w, r, err)
		return
	}

	gaps := policy.Gaps(gapHorizonDays)
	if len(gaps) > 0 {
		h.logger.WarnContext(r.Context(), "policy leaves days uncovered",
			slog.String("policy_id", string(policy.ID)),
			slog.Any("gaps", gaps))
	} else {
		gaps = []refunds.Window{}
	}
	writeJSON(w, http.StatusCreated, PolicyDTO{Policy: policy, Gaps: gaps})
}

// =============================================================================
// HELPERS
// =============================================================================

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, &generic.DefinitionError{Kind: "request", Field: "body", Reason: err.Error()}
	}
	return body, nil
}
