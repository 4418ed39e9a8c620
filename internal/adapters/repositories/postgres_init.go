package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"tripmate-route-service/internal/domain"

	"github.com/google/uuid"
)

// Initialize the Postgres database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createTripsQuery := `
	CREATE TABLE IF NOT EXISTS trips (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		optimized_route JSONB,
		total_distance DOUBLE PRECISION,
		total_duration INTEGER,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createDestinationsQuery := `
	CREATE TABLE IF NOT EXISTS destinations (
		id UUID PRIMARY KEY,
		trip_id UUID NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		place_id TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		categories TEXT[] NOT NULL DEFAULT '{}',
		order_index INTEGER NOT NULL DEFAULT 0,
		duration_minutes INTEGER
	);
	`

	createPlaceCacheQuery := `
	CREATE TABLE IF NOT EXISTS place_cache (
		place_id TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_destinations_trip_order
	ON destinations(trip_id, order_index);
	`

	statements := []string{
		createTripsQuery,
		createDestinationsQuery,
		createPlaceCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type DestinationSeed struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	PlaceID         string    `json:"place_id"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	Categories      []string  `json:"categories"`
	DurationMinutes *int      `json:"duration_minutes"`
}

type TripSeed struct {
	ID           uuid.UUID         `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Destinations []DestinationSeed `json:"destinations"`
}

// Populate the database with trips from a JSON file. Destinations take their
// order_index from their position in the file. Re-seeding a trip replaces
// its destinations.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed trips: read %q: %w", jsonPath, err)
	}

	var data []TripSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed trips: parse json: %w", err)
	}

	for i := range data {
		if err := validateSeed(&data[i], i); err != nil {
			return err
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed trips: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range data {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO trips (id, title, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
			description = EXCLUDED.description,
			updated_at = now();
		`, t.ID, t.Title, t.Description)
		if err != nil {
			return fmt.Errorf("seed trips: upsert trip id=%s: %w", t.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM destinations WHERE trip_id = $1;`, t.ID); err != nil {
			return fmt.Errorf("seed trips: clear destinations trip_id=%s: %w", t.ID, err)
		}

		for idx, d := range t.Destinations {
			_, err := tx.ExecContext(ctx, `
			INSERT INTO destinations (
				id, trip_id, name, address, place_id,
				latitude, longitude, categories, order_index, duration_minutes
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
			`, d.ID, t.ID, d.Name, d.Address, d.PlaceID,
				d.Latitude, d.Longitude, d.Categories, idx, d.DurationMinutes)
			if err != nil {
				return fmt.Errorf("seed trips: insert destination id=%s: %w", d.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed trips: commit tx: %w", err)
	}

	return nil
}

func validateSeed(t *TripSeed, i int) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return fmt.Errorf("seed trips: trip at index %d: title cannot be empty", i+1)
	}

	for j := range t.Destinations {
		d := &t.Destinations[j]
		if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}

		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			return fmt.Errorf("seed trips: trip %q destination %d: name cannot be empty", t.Title, j+1)
		}

		c := domain.Coordinates{Lat: d.Latitude, Lng: d.Longitude}
		if !c.Valid() {
			return fmt.Errorf("seed trips: trip %q destination %d: invalid coordinates %s", t.Title, j+1, c)
		}

		if d.Categories == nil {
			d.Categories = []string{}
		}
	}

	return nil
}
