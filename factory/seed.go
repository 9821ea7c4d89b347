package factory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dcorazolla/reservas-sub002/booking"
)

// =============================================================================
// SEED FILES
// =============================================================================

// Seed is a complete fixture: everything needed to price, block and cancel.
//
//	properties:
//	  - {id: prop-1, name: Pousada Azul}
//	rooms:
//	  - {id: room-101, property_id: prop-1, category_id: cat-double, name: "101"}
//	base_rates:
//	  - scope: property
//	    owner_id: prop-1
//	    tariff: {base_one_adult: 100, base_two_adults: 180}
//	blocks:
//	  - {room_id: room-101, start_date: "2026-02-10", end_date: "2026-03-10", recurrence: weekly}
type Seed struct {
	Properties   []PropertyJSON    `json:"properties"`
	Rooms        []RoomJSON        `json:"rooms"`
	BaseRates    []BaseRateJSON    `json:"base_rates"`
	RatePeriods  []RatePeriodJSON  `json:"rate_periods"`
	Blocks       []BlockJSON       `json:"blocks"`
	Policies     []PolicyJSON      `json:"policies"`
	Reservations []ReservationJSON `json:"reservations"`
}

// LoadSeedFile reads a YAML (or JSON) seed file.
func LoadSeedFile(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML document into a Seed. YAML is first decoded into
// plain values and re-encoded as JSON, so both formats share the JSON schema
// types and their decimal handling. Unquoted dates keep their source text.
func ParseSeed(data []byte) (Seed, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Seed{}, fmt.Errorf("failed to parse seed YAML: %w", err)
	}
	if doc.Kind == 0 {
		return Seed{}, nil
	}
	timestampsAsText(&doc)

	var raw any
	if err := doc.Decode(&raw); err != nil {
		return Seed{}, fmt.Errorf("failed to parse seed YAML: %w", err)
	}
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return Seed{}, fmt.Errorf("failed to convert seed: %w", err)
	}

	var seed Seed
	if err := json.Unmarshal(asJSON, &seed); err != nil {
		return Seed{}, fmt.Errorf("failed to decode seed: %w", err)
	}
	return seed, nil
}

// timestampsAsText retags timestamp scalars as strings so 2026-02-13 reaches
// the validators as written instead of as an RFC 3339 time.
func timestampsAsText(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!timestamp" {
		n.Tag = "!!str"
	}
	for _, child := range n.Content {
		timestampsAsText(child)
	}
}

// Apply validates every definition and writes it through w, parents first.
// It stops at the first invalid definition; records written before it stay.
func (f *Factory) Apply(ctx context.Context, w booking.Writer, seed Seed) error {
	for i, pj := range seed.Properties {
		p, err := f.PropertyFromJSON(pj)
		if err != nil {
			return fmt.Errorf("properties[%d]: %w", i, err)
		}
		if err := w.SaveProperty(ctx, p); err != nil {
			return fmt.Errorf("properties[%d]: %w", i, err)
		}
	}
	for i, rj := range seed.Rooms {
		room, err := f.RoomFromJSON(rj)
		if err != nil {
			return fmt.Errorf("rooms[%d]: %w", i, err)
		}
		if err := w.SaveRoom(ctx, room); err != nil {
			return fmt.Errorf("rooms[%d]: %w", i, err)
		}
	}
	for i, bj := range seed.BaseRates {
		base, err := f.BaseRateFromJSON(bj)
		if err != nil {
			return fmt.Errorf("base_rates[%d]: %w", i, err)
		}
		if err := w.SaveBaseRate(ctx, base); err != nil {
			return fmt.Errorf("base_rates[%d]: %w", i, err)
		}
	}
	for i, pj := range seed.RatePeriods {
		period, err := f.RatePeriodFromJSON(pj)
		if err != nil {
			return fmt.Errorf("rate_periods[%d]: %w", i, err)
		}
		if err := w.SaveRatePeriod(ctx, period); err != nil {
			return fmt.Errorf("rate_periods[%d]: %w", i, err)
		}
	}
	for i, bj := range seed.Blocks {
		block, err := f.BlockFromJSON(bj)
		if err != nil {
			return fmt.Errorf("blocks[%d]: %w", i, err)
		}
		if err := w.SaveBlock(ctx, block); err != nil {
			return fmt.Errorf("blocks[%d]: %w", i, err)
		}
	}
	for i, pj := range seed.Policies {
		policy, err := f.PolicyFromJSON(pj)
		if err != nil {
			return fmt.Errorf("policies[%d]: %w", i, err)
		}
		if err := w.SavePolicy(ctx, policy); err != nil {
			return fmt.Errorf("policies[%d]: %w", i, err)
		}
	}
	for i, rj := range seed.Reservations {
		res, err := f.ReservationFromJSON(rj)
		if err != nil {
			return fmt.Errorf("reservations[%d]: %w", i, err)
		}
		if err := w.SaveReservation(ctx, res); err != nil {
			return fmt.Errorf("reservations[%d]: %w", i, err)
		}
	}
	return nil
}
