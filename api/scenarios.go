/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
	Provides pre-built properties that populate the store with realistic data
	for demos and manual testing. Each scenario is a YAML seed embedded in the
	binary and applied through the factory, so scenario data passes the same
	validation as data created through the API.

AVAILABLE SCENARIOS:

	pousada-azul:  Complete property: category carnival period, weekly cleaning
	               block, room people-count prices, two-window policy
	pricing-gaps:  Incomplete property: couples have no price (422) and the
	               policy leaves days 3-6 uncovered (409)

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Parse the embedded YAML seed
 3. Apply it through factory.Apply, parents first

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "pousada-azul"}

ADDING NEW SCENARIOS:
 1. Drop a seed file into scenarios/
 2. Add an entry to the 'scenarios' slice with ID, name, description, file

NOTE:

	Scenarios reset the store. Only use in development/demo environments.
*/

package api

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dcorazolla/reservas-sub002/factory"
	"github.com/dcorazolla/reservas-sub002/generic"
)

//go:embed scenarios/*.yaml
var scenarioFiles embed.FS

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	file string
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "pousada-azul",
			Name:        "Pousada Azul",
			Description: "Fully priced property with a carnival period, weekly cleaning and a two-window policy",
		},
		file: "scenarios/pousada-azul.yaml",
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "pricing-gaps",
			Name:        "Pricing Gaps",
			Description: "Incomplete property showing unpriced occupancies and uncovered cancellation days",
		},
		file: "scenarios/pricing-gaps.yaml",
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// errResetUnsupported is returned when the store cannot be cleared.
var errResetUnsupported = errors.New("store does not support reset")

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	list := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		list[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, list)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	s, ok := findScenario(current)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req LoadScenarioRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.fail(w, r, &generic.DefinitionError{Kind: "request", Field: "body", Reason: err.Error()})
		return
	}

	if err := h.LoadScenarioByID(r.Context(), req.ScenarioID); err != nil {
		if errors.Is(err, errResetUnsupported) {
			writeProblem(w, ProblemDetail{
				Title:    "Not Implemented",
				Status:   http.StatusNotImplemented,
				Detail:   err.Error(),
				Instance: r.URL.Path,
			})
			return
		}
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// LOADER
// =============================================================================

// LoadScenarioByID clears the store and applies the scenario's seed.
func (h *Handler) LoadScenarioByID(ctx context.Context, id string) error {
	s, ok := findScenario(id)
	if !ok {
		return fmt.Errorf("scenario %q: %w", id, generic.ErrNotFound)
	}

	resetter, ok := h.store().(interface{ Reset(context.Context) error })
	if !ok {
		return errResetUnsupported
	}

	data, err := scenarioFiles.ReadFile(s.file)
	if err != nil {
		return fmt.Errorf("reading scenario %s: %w", id, err)
	}
	seed, err := factory.ParseSeed(data)
	if err != nil {
		return fmt.Errorf("parsing scenario %s: %w", id, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := resetter.Reset(ctx); err != nil {
		return fmt.Errorf("resetting store: %w", err)
	}
	h.currentScenario = ""

	if err := h.factory.Apply(ctx, h.store(), seed); err != nil {
		return fmt.Errorf("loading scenario %s: %w", id, err)
	}
	h.currentScenario = id

	h.logger.InfoContext(ctx, "scenario loaded", slog.String("scenario", id))
	return nil
}
