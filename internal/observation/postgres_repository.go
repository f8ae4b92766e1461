package observation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores observation series in the observations table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a PostgreSQL-backed repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Append inserts one record for the given key.
func (r *PostgresRepository) Append(ctx context.Context, key Key, obs Observation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO observations (location_key, observed_at, pm25, temperature, wind_speed, relative_humidity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, string(key), obs.Timestamp, obs.PM25, obs.Temperature, obs.WindSpeed, obs.RelativeHumidity)
	if err != nil {
		return fmt.Errorf("inserting observation: %w", err)
	}
	return nil
}

// ReadAll returns the series for a key ordered by observation time.
func (r *PostgresRepository) ReadAll(ctx context.Context, key Key) ([]Observation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT observed_at, pm25, temperature, wind_speed, relative_humidity
		FROM observations
		WHERE location_key = $1
		ORDER BY observed_at
	`, string(key))
	if err != nil {
		return nil, fmt.Errorf("querying observations: %w", err)
	}
	defer rows.Close()

	var records []Observation
	for rows.Next() {
		var obs Observation
		if err := rows.Scan(&obs.Timestamp, &obs.PM25, &obs.Temperature, &obs.WindSpeed, &obs.RelativeHumidity); err != nil {
			return nil, fmt.Errorf("scanning observation: %w", err)
		}
		records = append(records, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating observations: %w", err)
	}

	if len(records) == 0 {
		return nil, ErrLocationUnknown
	}
	return records, nil
}

// ReadAllLocations returns every known series keyed by location.
func (r *PostgresRepository) ReadAllLocations(ctx context.Context) (map[Key][]Observation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT location_key, observed_at, pm25, temperature, wind_speed, relative_humidity
		FROM observations
		ORDER BY location_key, observed_at
	`)
	if err != nil {
		return nil, fmt.Errorf("querying observations: %w", err)
	}
	defer rows.Close()

	series := make(map[Key][]Observation)
	for rows.Next() {
		var key string
		var obs Observation
		if err := rows.Scan(&key, &obs.Timestamp, &obs.PM25, &obs.Temperature, &obs.WindSpeed, &obs.RelativeHumidity); err != nil {
			return nil, fmt.Errorf("scanning observation: %w", err)
		}
		series[Key(key)] = append(series[Key(key)], obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating observations: %w", err)
	}
	return series, nil
}
