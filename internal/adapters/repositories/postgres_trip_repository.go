package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"tripmate-route-service/internal/domain"
	"tripmate-route-service/internal/platform/obs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

// Postgres-backed implementation of the TripRepository port.
type PostgresTripRepository struct {
	DB  *sql.DB
	log *zap.Logger
}

func NewPostgresTripRepository(db *sql.DB, log *zap.Logger) *PostgresTripRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostgresTripRepository{
		DB:  db,
		log: log.With(zap.String("component", "trip_repository")),
	}
}

// Return a trip without its destinations.
func (r *PostgresTripRepository) GetTrip(ctx context.Context, tripID uuid.UUID) (_ *domain.Trip, err error) {
	defer obs.Time(ctx, r.log, "trips.GetTrip")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres trip repository: DB is nil")
	}

	query := `
	SELECT
		id,
		title,
		description,
		optimized_route,
		total_distance,
		total_duration,
		created_at,
		updated_at
	FROM trips
	WHERE id = $1;
	`

	var (
		t        domain.Trip
		route    []byte
		distance sql.NullFloat64
		duration sql.NullInt64
	)
	err = r.DB.QueryRowContext(ctx, query, tripID).Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&route,
		&distance,
		&duration,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get trip: query trips table: %w", err)
	}

	if len(route) > 0 {
		t.OptimizedRoute = route
	}
	if distance.Valid {
		v := distance.Float64
		t.TotalDistanceKm = &v
	}
	if duration.Valid {
		v := int(duration.Int64)
		t.TotalDurationMinutes = &v
	}

	return &t, nil
}

// Return a trip's destinations ordered by order_index.
func (r *PostgresTripRepository) ListDestinations(ctx context.Context, tripID uuid.UUID) (_ []domain.Destination, err error) {
	defer obs.Time(ctx, r.log, "trips.ListDestinations")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres trip repository: DB is nil")
	}

	query := `
	SELECT
		id,
		trip_id,
		name,
		address,
		place_id,
		latitude,
		longitude,
		categories,
		order_index,
		duration_minutes
	FROM destinations
	WHERE trip_id = $1
	ORDER BY order_index, id;
	`
	rows, err := r.DB.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("list destinations: query destinations table: %w", err)
	}
	defer rows.Close()

	// pgtype.Map is not safe for concurrent use.
	types := pgtype.NewMap()

	dests := make([]domain.Destination, 0, 16)
	for rows.Next() {
		var (
			d          domain.Destination
			categories []string
			duration   sql.NullInt64
		)
		err := rows.Scan(
			&d.ID,
			&d.TripID,
			&d.Name,
			&d.Address,
			&d.PlaceID,
			&d.Coordinates.Lat,
			&d.Coordinates.Lng,
			types.SQLScanner(&categories),
			&d.OrderIndex,
			&duration,
		)
		if err != nil {
			return nil, fmt.Errorf("list destinations: scan row: %w", err)
		}

		d.Categories = categories
		if d.Categories == nil {
			d.Categories = []string{}
		}
		if duration.Valid {
			v := int(duration.Int64)
			d.DurationMinutes = &v
		}
		dests = append(dests, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list destinations: row iteration: %w", err)
	}

	return dests, nil
}

// Commit an optimization: trip aggregates and every destination's
// order_index change together or not at all.
func (r *PostgresTripRepository) ApplyOptimization(
	ctx context.Context,
	tripID uuid.UUID,
	result domain.OptimizationResult,
) (err error) {
	defer obs.Time(ctx, r.log, "trips.ApplyOptimization")(&err)

	if r.DB == nil {
		return errors.New("postgres trip repository: DB is nil")
	}
	if !result.Success {
		return errors.New("apply optimization: result is not successful")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply optimization: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Lock the trip row so concurrent writers serialize on it.
	var locked uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT id FROM trips WHERE id = $1 FOR UPDATE;`, tripID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrTripNotFound
	}
	if err != nil {
		return fmt.Errorf("apply optimization: lock trip: %w", err)
	}

	current, err := destinationIDs(ctx, tx, tripID)
	if err != nil {
		return err
	}
	if !domain.IsPermutation(result.DestinationOrder, current) {
		return domain.ErrStaleDestinations
	}

	var route any
	if len(result.RouteData) > 0 {
		route = string(result.RouteData)
	}

	_, err = tx.ExecContext(ctx, `
	UPDATE trips
	SET optimized_route = $2,
		total_distance = $3,
		total_duration = $4,
		updated_at = now()
	WHERE id = $1;
	`, tripID, route, result.TotalDistanceKm, int(math.Round(result.TotalDurationMinutes)))
	if err != nil {
		return fmt.Errorf("apply optimization: update trip: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	UPDATE destinations
	SET order_index = $1
	WHERE id = $2 AND trip_id = $3;
	`)
	if err != nil {
		return fmt.Errorf("apply optimization: prepare reorder: %w", err)
	}
	defer stmt.Close()

	for idx, id := range result.DestinationOrder {
		if _, err := stmt.ExecContext(ctx, idx, id, tripID); err != nil {
			return fmt.Errorf("apply optimization: reorder destination id=%s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply optimization: commit tx: %w", err)
	}

	return nil
}

func destinationIDs(ctx context.Context, tx *sql.Tx, tripID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM destinations WHERE trip_id = $1;`, tripID)
	if err != nil {
		return nil, fmt.Errorf("apply optimization: query destinations: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("apply optimization: scan destination id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("apply optimization: row iteration: %w", err)
	}

	return ids, nil
}
