package activity

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/KboyVillahermosa/HikeWise/internal/db"

	"github.com/jackc/pgx/v5"
)

// PostgresStore persists records in the activities table. The route is kept
// as a JSONB array of {latitude, longitude} so it reloads in order.
type PostgresStore struct {
	db db.Querier
}

func NewPostgresStore(db db.Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

const schema = `
		CREATE TABLE IF NOT EXISTS activities (
			id            TEXT PRIMARY KEY,
			user_id       TEXT,
			date          TIMESTAMPTZ NOT NULL,
			trail_name    TEXT NOT NULL,
			trail_id      TEXT,
			distance_km   DOUBLE PRECISION NOT NULL,
			duration      TEXT NOT NULL,
			duration_ms   BIGINT NOT NULL,
			start_time    TIMESTAMPTZ NOT NULL,
			end_time      TIMESTAMPTZ NOT NULL,
			route         JSONB NOT NULL,
			average_pace  TEXT NOT NULL,
			max_elevation INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS activities_user_end_idx ON activities (user_id, end_time DESC)`

// Migrate creates the activities table when it does not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return storeErr("migrate", err)
	}
	return nil
}

const selectActivity = `
		SELECT id, COALESCE(user_id,''), date, trail_name, trail_id, distance_km, duration, duration_ms,
		       start_time, end_time, route, average_pace, max_elevation
		FROM activities`

func (s *PostgresStore) Save(ctx context.Context, rec Record) error {
	route, err := json.Marshal(rec.Route)
	if err != nil {
		return storeErr("encode route", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO activities (id, user_id, date, trail_name, trail_id, distance_km, duration, duration_ms,
		                        start_time, end_time, route, average_pace, max_elevation)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO NOTHING
	`, rec.ID, nullString(rec.OwnerID), rec.Date, rec.TrailName, rec.TrailID, rec.DistanceKm, rec.Duration, rec.DurationMs,
		rec.StartTime, rec.EndTime, route, rec.AveragePace, rec.MaxElevation)
	if err != nil {
		return storeErr("save", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRow(ctx, selectActivity+` WHERE id=$1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, storeErr("get", err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context, ownerID string) ([]Record, error) {
	rows, err := s.db.Query(ctx, selectActivity+` WHERE user_id=$1 ORDER BY end_time DESC`, ownerID)
	if err != nil {
		return nil, storeErr("list", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, storeErr("list", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list", err)
	}
	return records, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM activities WHERE id=$1`, id)
	if err != nil {
		return storeErr("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	var route []byte
	if err := row.Scan(&rec.ID, &rec.OwnerID, &rec.Date, &rec.TrailName, &rec.TrailID, &rec.DistanceKm, &rec.Duration,
		&rec.DurationMs, &rec.StartTime, &rec.EndTime, &route, &rec.AveragePace, &rec.MaxElevation); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal(route, &rec.Route); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
