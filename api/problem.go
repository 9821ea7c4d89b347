package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dcorazolla/reservas-sub002/generic"
)

// =============================================================================
// RFC7807 PROBLEM DETAILS
// =============================================================================

// ProblemDetail is an RFC7807 error body. Field names the offending input when
// a definition or query parameter was rejected.
type ProblemDetail struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Field    string `json:"field,omitempty"`
	Instance string `json:"instance,omitempty"`
}

const problemContentType = "application/problem+json"

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeProblem(w http.ResponseWriter, p ProblemDetail) {
	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// queryError is a malformed or missing query parameter.
type queryError struct {
	Param  string
	Reason string
}

func (e *queryError) Error() string {
	return "query parameter " + e.Param + " " + e.Reason
}

// fail maps an engine error to its HTTP status and writes it as a problem.
//
//	400  invalid input (ranges, occupancy, definitions, query parameters)
//	404  unknown room, property, reservation or policy
//	409  no refund rule covers the cancellation: manual handling required
//	422  no rate source prices the stay: pricing not configured
//	500  anything else, logged and not echoed
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	p := ProblemDetail{Instance: r.URL.Path}

	var (
		qe *queryError
		de *generic.DefinitionError
	)
	switch {
	case errors.As(err, &qe):
		p.Status, p.Title, p.Field = http.StatusBadRequest, "Invalid Request", qe.Param
	case errors.As(err, &de):
		p.Status, p.Title, p.Field = http.StatusBadRequest, "Invalid Definition", de.Field
	case generic.IsClientError(err):
		p.Status, p.Title = http.StatusBadRequest, "Invalid Request"
	case generic.IsNotFound(err):
		p.Status, p.Title = http.StatusNotFound, "Not Found"
	case errors.Is(err, generic.ErrNoApplicableRefundRule):
		p.Status, p.Title = http.StatusConflict, "Manual Handling Required"
	case errors.Is(err, generic.ErrNoPriceAvailable):
		p.Status, p.Title = http.StatusUnprocessableEntity, "Pricing Not Configured"
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("error", err))
		p.Status, p.Title = http.StatusInternalServerError, "Internal Error"
		writeProblem(w, p)
		return
	}

	p.Detail = err.Error()
	writeProblem(w, p)
}
