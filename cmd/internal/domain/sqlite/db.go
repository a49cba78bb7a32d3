package sqlite

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS appointment (
	appointment_id     TEXT PRIMARY KEY,
	host_id            TEXT NOT NULL,
	title              TEXT NOT NULL,
	description        TEXT NOT NULL DEFAULT '',
	start_time         INTEGER NOT NULL,
	end_time           INTEGER NOT NULL,
	location_id        TEXT NOT NULL,
	appointment_status TEXT NOT NULL,
	feedback_pending   INTEGER NOT NULL DEFAULT 1,
	created_at         INTEGER NOT NULL,
	updated_at         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_appointment_host ON appointment (host_id);
CREATE INDEX IF NOT EXISTS idx_appointment_location ON appointment (location_id);
CREATE INDEX IF NOT EXISTS idx_appointment_status_times ON appointment (appointment_status, start_time, end_time);
`

// Init opens (or creates) the database at path and ensures the
// schema. SQLite allows a single writer, so the pool is pinned to one
// connection.
func Init(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	return db, nil
}
