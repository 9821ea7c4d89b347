/*
sqlite.go - SQLite booking store

PURPOSE:
  Persists properties, rooms, blocks, rate records, cancellation policies and
  reservations. The engine only reads from it; staff-side creation goes
  through the Save* methods.

KEY TABLES:
  properties:    property records
  rooms:         rooms, each owned by a property, optionally in a category
  blocks:        room blocks with recurrence
  rate_periods:  date-bounded rate overrides (room or category scope)
  base_rates:    non-dated fallbacks, one per (scope, owner)
  policies:      cancellation policies
  refund_rules:  rules of a policy, with their definition position
  reservations:  read-only input to cancellation previews

DEFINITION ORDER:
  The engine breaks ties by definition order. Every list query orders by
  rowid (or rule position), and saves upsert in place so an edited record
  keeps its original position.

MONEY AND DATES:
  Decimals are stored as TEXT to keep exact values. Dates are TEXT in
  2006-01-02 form so lexical comparison is chronological.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. ":memory:" databases are pinned to a
  single connection, otherwise each pooled connection would see its own
  empty database.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/reservas.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := booking.NewService(store, logger)

MIGRATION:
  Schema is auto-migrated on New() with CREATE TABLE IF NOT EXISTS.

SEE ALSO:
  - booking/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/

// Package sqlite provides a SQLite-backed implementation of booking.Store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/dcorazolla/reservas-sub002/blocking"
	"github.com/dcorazolla/reservas-sub002/booking"
	"github.com/dcorazolla/reservas-sub002/generic"
	"github.com/dcorazolla/reservas-sub002/rates"
	"github.com/dcorazolla/reservas-sub002/refunds"
)

// Store implements booking.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ booking.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS properties (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		category_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rooms_property
		ON rooms(property_id);

	CREATE TABLE IF NOT EXISTS blocks (
		id TEXT PRIMARY KEY,
		room_id TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		recurrence TEXT NOT NULL DEFAULT 'none',
		block_type TEXT NOT NULL DEFAULT '',
		reason TEXT,
		CHECK (end_date > start_date)
	);

	-- Overlap lookups: start < window_end AND end > window_start
	CREATE INDEX IF NOT EXISTS idx_blocks_room_dates
		ON blocks(room_id, start_date, end_date);

	CREATE TABLE IF NOT EXISTS rate_periods (
		id TEXT PRIMARY KEY,
		scope TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		tariff_json TEXT NOT NULL,
		description TEXT,
		CHECK (end_date > start_date)
	);

	CREATE INDEX IF NOT EXISTS idx_rate_periods_owner
		ON rate_periods(scope, owner_id);

	CREATE TABLE IF NOT EXISTS base_rates (
		scope TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		tariff_json TEXT NOT NULL,
		ages_json TEXT,
		PRIMARY KEY (scope, owner_id)
	);

	CREATE TABLE IF NOT EXISTS policies (
		id TEXT PRIMARY KEY,
		property_id TEXT NOT NULL,
		policy_type TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		applies_from TEXT NOT NULL DEFAULT '',
		applies_to TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_policies_property
		ON policies(property_id);

	CREATE TABLE IF NOT EXISTS refund_rules (
		policy_id TEXT NOT NULL REFERENCES policies(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		days_min INTEGER NOT NULL,
		days_max INTEGER NOT NULL,
		refund_percent TEXT NOT NULL,
		penalty_type TEXT NOT NULL DEFAULT '',
		penalty_amount TEXT,
		priority INTEGER NOT NULL DEFAULT 0,
		label TEXT,
		PRIMARY KEY (policy_id, position)
	);

	CREATE TABLE IF NOT EXISTS reservations (
		id TEXT PRIMARY KEY,
		property_id TEXT NOT NULL,
		room_id TEXT NOT NULL,
		check_in TEXT NOT NULL,
		check_out TEXT NOT NULL,
		occupancy_json TEXT NOT NULL,
		total_value TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'confirmed',
		CHECK (check_out > check_in)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PROPERTIES & ROOMS
// =============================================================================

func (s *Store) SaveProperty(ctx context.Context, p booking.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO properties (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, p.ID, p.Name)
	if err != nil {
		return fmt.Errorf("failed to save property: %w", err)
	}
	return nil
}

func (s *Store) GetProperty(ctx context.Context, id generic.PropertyID) (booking.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p booking.Property
	err := s.db.QueryRowContext(ctx, "SELECT id, name FROM properties WHERE id = ?", id).Scan(&p.ID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("property %s: %w", id, generic.ErrNotFound)
	}
	if err != nil {
		return p, fmt.Errorf("failed to get property: %w", err)
	}
	return p, nil
}

func (s *Store) SaveRoom(ctx context.Context, room rates.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, property_id, category_id, name) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			property_id = excluded.property_id,
			category_id = excluded.category_id,
			name = excluded.name
	`, room.ID, room.PropertyID, room.CategoryID, room.Name)
	if isForeignKeyError(err) {
		return fmt.Errorf("property %s: %w", room.PropertyID, generic.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, id generic.RoomID) (rates.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r rates.Room
	err := s.db.QueryRowContext(ctx,
		"SELECT id, property_id, category_id, name FROM rooms WHERE id = ?", id,
	).Scan(&r.ID, &r.PropertyID, &r.CategoryID, &r.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("room %s: %w", id, generic.ErrNotFound)
	}
	if err != nil {
		return r, fmt.Errorf("failed to get room: %w", err)
	}
	return r, nil
}

func (s *Store) ListRooms(ctx context.Context, propertyID generic.PropertyID) ([]rates.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, property_id, category_id, name FROM rooms WHERE property_id = ? ORDER BY rowid",
		propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	rooms := []rates.Room{}
	for rows.Next() {
		var r rates.Room
		if err := rows.Scan(&r.ID, &r.PropertyID, &r.CategoryID, &r.Name); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// =============================================================================
// BLOCKS
// =============================================================================

func (s *Store) SaveBlock(ctx context.Context, b blocking.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blocks (id, room_id, start_date, end_date, recurrence, block_type, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			room_id = excluded.room_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			recurrence = excluded.recurrence,
			block_type = excluded.block_type,
			reason = excluded.reason
	`, b.ID, b.RoomID, b.Range.Start.String(), b.Range.End.String(),
		string(b.Recurrence), string(b.Type), nullString(b.Reason))
	if isForeignKeyError(err) {
		return fmt.Errorf("room %s: %w", b.RoomID, generic.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to save block: %w", err)
	}
	return nil
}

func (s *Store) ListRoomBlocks(ctx context.Context, roomID generic.RoomID, window generic.DateRange) ([]blocking.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryBlocks(ctx, `
		SELECT id, room_id, start_date, end_date, recurrence, block_type, reason
		FROM blocks
		WHERE room_id = ? AND start_date < ? AND end_date > ?
		ORDER BY rowid
	`, roomID, window.End.String(), window.Start.String())
}

func (s *Store) ListPropertyBlocks(ctx context.Context, propertyID generic.PropertyID, window generic.DateRange) ([]blocking.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryBlocks(ctx, `
		SELECT b.id, b.room_id, b.start_date, b.end_date, b.recurrence, b.block_type, b.reason
		FROM blocks b
		JOIN rooms r ON r.id = b.room_id
		WHERE r.property_id = ? AND b.start_date < ? AND b.end_date > ?
		ORDER BY b.rowid
	`, propertyID, window.End.String(), window.Start.String())
}

func (s *Store) queryBlocks(ctx context.Context, query string, args ...any) ([]blocking.Block, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer rows.Close()

	blocks := []blocking.Block{}
	for rows.Next() {
		var (
			b          blocking.Block
			start, end string
			recurrence string
			blockType  string
			reason     sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.RoomID, &start, &end, &recurrence, &blockType, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		if b.Range, err = parseRange(start, end); err != nil {
			return nil, fmt.Errorf("block %s: %w", b.ID, err)
		}
		b.Recurrence = blocking.ParseRecurrence(recurrence)
		b.Type = blocking.BlockType(blockType)
		b.Reason = reason.String
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// =============================================================================
// RATES
// =============================================================================

func (s *Store) SaveRatePeriod(ctx context.Context, p rates.RatePeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tariffJSON, err := json.Marshal(p.Tariff)
	if err != nil {
		return fmt.Errorf("failed to encode tariff: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rate_periods (id, scope, owner_id, start_date, end_date, tariff_json, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			scope = excluded.scope,
			owner_id = excluded.owner_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			tariff_json = excluded.tariff_json,
			description = excluded.description
	`, p.ID, string(p.Scope), p.OwnerID, p.Range.Start.String(), p.Range.End.String(),
		string(tariffJSON), nullString(p.Description))
	if err != nil {
		return fmt.Errorf("failed to save rate period: %w", err)
	}
	return nil
}

func (s *Store) ListRatePeriods(ctx context.Context, scope rates.Scope, ownerID string) ([]rates.RatePeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scope, owner_id, start_date, end_date, tariff_json, description
		FROM rate_periods
		WHERE scope = ? AND owner_id = ?
		ORDER BY rowid
	`, string(scope), ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate periods: %w", err)
	}
	defer rows.Close()

	periods := []rates.RatePeriod{}
	for rows.Next() {
		var (
			p           rates.RatePeriod
			start, end  string
			tariffJSON  string
			description sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Scope, &p.OwnerID, &start, &end, &tariffJSON, &description); err != nil {
			return nil, fmt.Errorf("failed to scan rate period: %w", err)
		}
		if p.Range, err = parseRange(start, end); err != nil {
			return nil, fmt.Errorf("rate period %s: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(tariffJSON), &p.Tariff); err != nil {
			return nil, fmt.Errorf("rate period %s: failed to decode tariff: %w", p.ID, err)
		}
		p.Description = description.String
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (s *Store) SaveBaseRate(ctx context.Context, b rates.BaseRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tariffJSON, err := json.Marshal(b.Tariff)
	if err != nil {
		return fmt.Errorf("failed to encode tariff: %w", err)
	}
	var agesJSON sql.NullString
	if b.Ages != nil {
		raw, err := json.Marshal(b.Ages)
		if err != nil {
			return fmt.Errorf("failed to encode age policy: %w", err)
		}
		agesJSON = sql.NullString{String: string(raw), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO base_rates (scope, owner_id, tariff_json, ages_json) VALUES (?, ?, ?, ?)
		ON CONFLICT(scope, owner_id) DO UPDATE SET
			tariff_json = excluded.tariff_json,
			ages_json = excluded.ages_json
	`, string(b.Scope), b.OwnerID, string(tariffJSON), agesJSON)
	if err != nil {
		return fmt.Errorf("failed to save base rate: %w", err)
	}
	return nil
}

func (s *Store) BaseRate(ctx context.Context, scope rates.Scope, ownerID string) (*rates.BaseRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		tariffJSON string
		agesJSON   sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT tariff_json, ages_json FROM base_rates WHERE scope = ? AND owner_id = ?",
		string(scope), ownerID,
	).Scan(&tariffJSON, &agesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s base rate %s: %w", scope, ownerID, generic.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get base rate: %w", err)
	}

	base := &rates.BaseRate{Scope: scope, OwnerID: ownerID}
	if err := json.Unmarshal([]byte(tariffJSON), &base.Tariff); err != nil {
		return nil, fmt.Errorf("failed to decode tariff: %w", err)
	}
	if agesJSON.Valid {
		base.Ages = &rates.AgePolicy{}
		if err := json.Unmarshal([]byte(agesJSON.String), base.Ages); err != nil {
			return nil, fmt.Errorf("failed to decode age policy: %w", err)
		}
	}
	return base, nil
}

// =============================================================================
// CANCELLATION POLICIES
// =============================================================================

// SavePolicy replaces the policy and all of its rules atomically.
func (s *Store) SavePolicy(ctx context.Context, p refunds.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	var appliesTo sql.NullString
	if p.AppliesTo != nil {
		appliesTo = sql.NullString{String: p.AppliesTo.String(), Valid: true}
	}
	var appliesFrom string
	if !p.AppliesFrom.IsZero() {
		appliesFrom = p.AppliesFrom.String()
	}

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO policies (id, property_id, policy_type, active, applies_from, applies_to)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			property_id = excluded.property_id,
			policy_type = excluded.policy_type,
			active = excluded.active,
			applies_from = excluded.applies_from,
			applies_to = excluded.applies_to
	`, p.ID, p.PropertyID, p.Type, p.Active, appliesFrom, appliesTo)
	if err != nil {
		return fmt.Errorf("failed to save policy: %w", err)
	}

	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM refund_rules WHERE policy_id = ?", p.ID); err != nil {
		return fmt.Errorf("failed to clear refund rules: %w", err)
	}

	for i, r := range p.Rules {
		var penalty sql.NullString
		if r.PenaltyAmount != nil {
			penalty = sql.NullString{String: r.PenaltyAmount.String(), Valid: true}
		}
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO refund_rules
			(policy_id, position, id, days_min, days_max, refund_percent, penalty_type, penalty_amount, priority, label)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, i, r.ID, r.DaysMin, r.DaysMax, r.RefundPercent.String(),
			string(r.PenaltyType), penalty, r.Priority, nullString(r.Label))
		if err != nil {
			return fmt.Errorf("failed to save refund rule %d: %w", i, err)
		}
	}

	return sqlTx.Commit()
}

// ListPolicies returns the property's policies, each with its rules in definition order.
func (s *Store) ListPolicies(ctx context.Context, propertyID generic.PropertyID) ([]refunds.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	policies, err := s.queryPolicies(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if len(policies) == 0 {
		return policies, nil
	}

	index := make(map[generic.PolicyID]int, len(policies))
	for i, p := range policies {
		index[p.ID] = i
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.policy_id, r.id, r.days_min, r.days_max, r.refund_percent,
		       r.penalty_type, r.penalty_amount, r.priority, r.label
		FROM refund_rules r
		JOIN policies p ON p.id = r.policy_id
		WHERE p.property_id = ?
		ORDER BY r.policy_id, r.position
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query refund rules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			policyID      generic.PolicyID
			r             refunds.Rule
			refundPercent string
			penaltyType   string
			penaltyAmount sql.NullString
			label         sql.NullString
		)
		if err := rows.Scan(&policyID, &r.ID, &r.DaysMin, &r.DaysMax, &refundPercent,
			&penaltyType, &penaltyAmount, &r.Priority, &label); err != nil {
			return nil, fmt.Errorf("failed to scan refund rule: %w", err)
		}
		if r.RefundPercent, err = decimal.NewFromString(refundPercent); err != nil {
			return nil, fmt.Errorf("policy %s: bad refund_percent: %w", policyID, err)
		}
		if penaltyAmount.Valid {
			amount, err := decimal.NewFromString(penaltyAmount.String)
			if err != nil {
				return nil, fmt.Errorf("policy %s: bad penalty_amount: %w", policyID, err)
			}
			r.PenaltyAmount = &amount
		}
		r.PenaltyType = refunds.PenaltyType(penaltyType)
		r.Label = label.String

		i := index[policyID]
		policies[i].Rules = append(policies[i].Rules, r)
	}
	return policies, rows.Err()
}

func (s *Store) queryPolicies(ctx context.Context, propertyID generic.PropertyID) ([]refunds.Policy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, property_id, policy_type, active, applies_from, applies_to
		FROM policies
		WHERE property_id = ?
		ORDER BY rowid
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query policies: %w", err)
	}
	defer rows.Close()

	policies := []refunds.Policy{}
	for rows.Next() {
		var (
			p           refunds.Policy
			appliesFrom string
			appliesTo   sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.PropertyID, &p.Type, &p.Active, &appliesFrom, &appliesTo); err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		if appliesFrom != "" {
			if p.AppliesFrom, err = generic.ParseDate(appliesFrom); err != nil {
				return nil, fmt.Errorf("policy %s: %w", p.ID, err)
			}
		}
		if appliesTo.Valid {
			to, err := generic.ParseDate(appliesTo.String)
			if err != nil {
				return nil, fmt.Errorf("policy %s: %w", p.ID, err)
			}
			p.AppliesTo = &to
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

// =============================================================================
// RESERVATIONS
// =============================================================================

func (s *Store) SaveReservation(ctx context.Context, r refunds.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	occupancyJSON, err := json.Marshal(r.Occupancy)
	if err != nil {
		return fmt.Errorf("failed to encode occupancy: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reservations (id, property_id, room_id, check_in, check_out, occupancy_json, total_value, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			property_id = excluded.property_id,
			room_id = excluded.room_id,
			check_in = excluded.check_in,
			check_out = excluded.check_out,
			occupancy_json = excluded.occupancy_json,
			total_value = excluded.total_value,
			status = excluded.status
	`, r.ID, r.PropertyID, r.RoomID, r.Range.Start.String(), r.Range.End.String(),
		string(occupancyJSON), r.TotalValue.String(), string(r.Status))
	if err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	return nil
}

func (s *Store) GetReservation(ctx context.Context, id generic.ReservationID) (refunds.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		r                 refunds.Reservation
		checkIn, checkOut string
		occupancyJSON     string
		totalValue        string
		status            string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, property_id, room_id, check_in, check_out, occupancy_json, total_value, status
		FROM reservations WHERE id = ?
	`, id).Scan(&r.ID, &r.PropertyID, &r.RoomID, &checkIn, &checkOut, &occupancyJSON, &totalValue, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("reservation %s: %w", id, generic.ErrNotFound)
	}
	if err != nil {
		return r, fmt.Errorf("failed to get reservation: %w", err)
	}

	if r.Range, err = parseRange(checkIn, checkOut); err != nil {
		return r, fmt.Errorf("reservation %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(occupancyJSON), &r.Occupancy); err != nil {
		return r, fmt.Errorf("reservation %s: failed to decode occupancy: %w", id, err)
	}
	if r.TotalValue, err = decimal.NewFromString(totalValue); err != nil {
		return r, fmt.Errorf("reservation %s: bad total_value: %w", id, err)
	}
	r.Status = refunds.ReservationStatus(status)
	return r, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"refund_rules", "policies", "reservations", "blocks", "rate_periods", "base_rates", "rooms", "properties"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func parseRange(start, end string) (generic.DateRange, error) {
	from, err := generic.ParseDate(start)
	if err != nil {
		return generic.DateRange{}, err
	}
	to, err := generic.ParseDate(end)
	if err != nil {
		return generic.DateRange{}, err
	}
	return generic.NewDateRange(from, to)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
