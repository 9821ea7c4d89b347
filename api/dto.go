/*
dto.go - Query parsing and response shapes for the HTTP API

PURPOSE:
  Turns query strings into engine values (dates, ranges, occupancies) and
  defines the few response bodies that are not engine records themselves.
  Engine records (NightPrice, Quote, Calendar, Refund, Block, RatePeriod,
  Policy) carry their own JSON tags and are written as-is.

QUERY FORMATS:
  Dates:      YYYY-MM-DD
  Occupancy:  adults=2&children=1&infants=0   (adults defaults to 1)
              child_ages=4,9                  (replaces children/infants)
*/

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dcorazolla/reservas-sub002/generic"
	"github.com/dcorazolla/reservas-sub002/refunds"
)

// =============================================================================
// RESPONSES
// =============================================================================

// HealthDTO is the /healthz body.
type HealthDTO struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// PolicyDTO is a saved policy plus the day spans its rules leave uncovered.
// Cancellations falling into a gap get 409 from the preview endpoint.
type PolicyDTO struct {
	refunds.Policy
	Gaps []refunds.Window `json:"gaps"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the body of POST /api/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// QUERY PARSING
// =============================================================================

func dateParam(r *http.Request, name string) (generic.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return generic.Date{}, &queryError{Param: name, Reason: "is required"}
	}
	d, err := generic.ParseDate(raw)
	if err != nil {
		return generic.Date{}, &queryError{Param: name, Reason: "must be YYYY-MM-DD"}
	}
	return d, nil
}

// rangeParams reads a half-open [from, to) range and bounds its length.
func rangeParams(r *http.Request, fromName, toName string, maxDays int) (generic.DateRange, error) {
	from, err := dateParam(r, fromName)
	if err != nil {
		return generic.DateRange{}, err
	}
	to, err := dateParam(r, toName)
	if err != nil {
		return generic.DateRange{}, err
	}
	window, err := generic.NewDateRange(from, to)
	if err != nil {
		return generic.DateRange{}, err
	}
	if maxDays > 0 && window.Nights() > maxDays {
		return generic.DateRange{}, &queryError{
			Param:  toName,
			Reason: "is more than " + strconv.Itoa(maxDays) + " days after " + fromName,
		}
	}
	return window, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &queryError{Param: name, Reason: "must be an integer"}
	}
	return n, nil
}

// occupancyParams reads adults, children, infants and child_ages. Range checks
// are left to Occupancy.Validate so the API and the engine agree.
func occupancyParams(r *http.Request) (generic.Occupancy, error) {
	var (
		occ generic.Occupancy
		err error
	)
	if occ.Adults, err = intParam(r, "adults", 1); err != nil {
		return occ, err
	}
	if occ.Children, err = intParam(r, "children", 0); err != nil {
		return occ, err
	}
	if occ.Infants, err = intParam(r, "infants", 0); err != nil {
		return occ, err
	}

	if raw := r.URL.Query().Get("child_ages"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			age, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return occ, &queryError{Param: "child_ages", Reason: "must be a comma-separated list of integers"}
			}
			occ.ChildAges = append(occ.ChildAges, age)
		}
	}
	return occ, nil
}
