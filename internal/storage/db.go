package storage

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps a pgxpool.Pool and persists records in the workout_records table.
type DB struct {
	Pool *pgxpool.Pool
	name string
}

// NewDB creates a new DB with a connection pool.
func NewDB(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{Pool: pool, name: pool.Config().ConnConfig.Database}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// Collector exposes connection pool statistics to Prometheus.
func (db *DB) Collector() prometheus.Collector {
	return pgxpoolprometheus.NewCollector(db.Pool, map[string]string{"db_name": db.name})
}

// RunMigrations applies all pending embedded migrations.
func RunMigrations(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("opening embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Load returns every record ordered by position. An empty table is ErrNotFound.
func (db *DB) Load(ctx context.Context) ([]models.WorkoutRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, date, type, exercises FROM workout_records ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var records []models.WorkoutRecord
	for rows.Next() {
		var (
			r         models.WorkoutRecord
			date      time.Time
			exercises []byte
		)
		if err := rows.Scan(&r.ID, &date, &r.WorkoutType, &exercises); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		r.Date = models.DateOf(date)
		if err := json.Unmarshal(exercises, &r.Exercises); err != nil {
			return nil, &ParseError{Path: "workout_records/" + r.ID.String(), Err: err}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating workouts: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}

// recordColumns are the workout_records columns in copyRows order.
var recordColumns = []string{"id", "date", "type", "exercises", "position"}

// copyRows encodes records as COPY rows. position is the slice index.
func copyRows(records []models.WorkoutRecord) ([][]any, error) {
	rows := make([][]any, 0, len(records))
	for i, r := range records {
		exercises, err := json.Marshal(r.Exercises)
		if err != nil {
			return nil, fmt.Errorf("encoding exercises of %s: %w", r.ID, err)
		}
		rows = append(rows, []any{r.ID, r.Date.Time, r.WorkoutType, string(exercises), i})
	}
	return rows, nil
}

// Save rewrites the table in a single transaction. Rows go in through COPY,
// which has no bind parameter limit.
func (db *DB) Save(ctx context.Context, records []models.WorkoutRecord) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM workout_records`); err != nil {
		return fmt.Errorf("clearing workouts: %w", err)
	}

	rows, err := copyRows(records)
	if err != nil {
		return err
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"workout_records"}, recordColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("inserting workouts: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing workouts: %w", err)
	}
	return nil
}
