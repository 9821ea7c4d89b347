/*
factory.go - Definition parsing and validation

PURPOSE:
  Staff define blocks, rate periods, base rates and cancellation policies as
  JSON (through the API) or YAML (seed files). The factory validates the
  definitions and builds the blocking, rates and refunds records the engine
  reads, so malformed data is rejected at creation and never discovered
  mid-resolution.

VALIDATION:
  Two layers:
  1. Struct tags checked by go-playground/validator (required fields, enums,
     date formats, numeric bounds)
  2. Domain checks the tags cannot express (end after start, decimals not
     negative, refund rule windows and penalties)
  Both report *generic.DefinitionError, which wraps generic.ErrInvalidDefinition.

IDS:
  Definitions without an id get a random UUID.

JSON SCHEMA (block):
  {
    "room_id": "room-101",
    "start_date": "2026-02-10",
    "end_date": "2026-03-10",
    "recurrence": "weekly",
    "type": "cleaning",
    "reason": "Tuesday deep clean"
  }

USAGE:
  f := factory.New()
  block, err := f.ParseBlock(body)
  if generic.IsClientError(err) {
      // 400
  }

SEE ALSO:
  - policy.go: cancellation policies
  - rates.go: rate periods and base rates
  - seed.go: YAML seed files
*/

// Package factory converts JSON and YAML definitions into engine records.
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dcorazolla/reservas-sub002/blocking"
	"github.com/dcorazolla/reservas-sub002/generic"
)

// Factory validates definitions and builds engine records.
type Factory struct {
	validate *validator.Validate

	// NewID generates ids for definitions that don't carry one.
	NewID func() string
}

// New creates a factory whose validator reports JSON field names.
func New() *Factory {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Factory{validate: v, NewID: uuid.NewString}
}

// check runs the struct-tag validation and converts the first failure.
func (f *Factory) check(kind string, v any) error {
	err := f.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &generic.DefinitionError{Kind: kind, Field: "body", Reason: err.Error()}
	}
	fe := fieldErrs[0]
	return &generic.DefinitionError{Kind: kind, Field: fieldPath(fe), Reason: describe(fe)}
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gtefield":
		return "must not be less than " + fe.Param()
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func (f *Factory) idOr(id string) string {
	if id != "" {
		return id
	}
	return f.NewID()
}

func decode(kind string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &generic.DefinitionError{Kind: kind, Field: "body", Reason: err.Error()}
	}
	return nil
}

// dateRange builds a half-open range from validated YYYY-MM-DD strings.
func dateRange(kind, start, end string) (generic.DateRange, error) {
	from, err := generic.ParseDate(start)
	if err != nil {
		return generic.DateRange{}, &generic.DefinitionError{Kind: kind, Field: "start_date", Reason: err.Error()}
	}
	to, err := generic.ParseDate(end)
	if err != nil {
		return generic.DateRange{}, &generic.DefinitionError{Kind: kind, Field: "end_date", Reason: err.Error()}
	}
	r, err := generic.NewDateRange(from, to)
	if err != nil {
		return generic.DateRange{}, &generic.DefinitionError{Kind: kind, Field: "end_date", Reason: "must be after start_date"}
	}
	return r, nil
}

// =============================================================================
// BLOCKS
// =============================================================================

// BlockJSON is the JSON representation of a room block.
type BlockJSON struct {
	ID         string `json:"id,omitempty"`
	RoomID     string `json:"room_id" validate:"required"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Recurrence string `json:"recurrence,omitempty" validate:"omitempty,oneof=none daily weekly monthly"`
	Type       string `json:"type,omitempty" validate:"omitempty,oneof=maintenance cleaning private other"`
	Reason     string `json:"reason,omitempty" validate:"max=500"`
}

// ParseBlock parses and validates a JSON block definition.
func (f *Factory) ParseBlock(data []byte) (blocking.Block, error) {
	var bj BlockJSON
	if err := decode("block", data, &bj); err != nil {
		return blocking.Block{}, err
	}
	return f.BlockFromJSON(bj)
}

// BlockFromJSON validates bj and converts it. Unlike stored blocks, new
// definitions must use a recurrence the matcher understands.
func (f *Factory) BlockFromJSON(bj BlockJSON) (blocking.Block, error) {
	if err := f.check("block", bj); err != nil {
		return blocking.Block{}, err
	}
	r, err := dateRange("block", bj.StartDate, bj.EndDate)
	if err != nil {
		return blocking.Block{}, err
	}

	blockType := blocking.BlockType(bj.Type)
	if blockType == "" {
		blockType = blocking.BlockOther
	}

	return blocking.Block{
		ID:         f.idOr(bj.ID),
		RoomID:     generic.RoomID(bj.RoomID),
		Range:      r,
		Recurrence: blocking.ParseRecurrence(bj.Recurrence),
		Type:       blockType,
		Reason:     bj.Reason,
	}, nil
}
