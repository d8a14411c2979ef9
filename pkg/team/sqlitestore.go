package team

import (
	"context"
	"database/sql"
	"time"

	"github.com/containifyci/foundry/pkg/ferr"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS personas (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS standups (
	id            TEXT PRIMARY KEY,
	persona_id    TEXT NOT NULL REFERENCES personas(id),
	name          TEXT NOT NULL,
	prompt        TEXT NOT NULL,
	cron_schedule TEXT NOT NULL,
	enabled       INTEGER NOT NULL DEFAULT 1,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	standup_id  TEXT NOT NULL REFERENCES standups(id),
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	output      TEXT NOT NULL,
	err         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_standup ON runs(standup_id, started_at DESC);
`

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if absent) a sqlite-backed Store at path,
// grounded on pack-sibling stores that size a single
// connection to SQLite's one-writer locking model.
func OpenSQLite(path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ferr.Wrap(ferr.Io, err, "opening sqlite store")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, ferr.Wrap(ferr.Io, err, "pinging sqlite store")
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, ferr.Wrap(ferr.Io, err, "applying sqlite schema")
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error { return s.db.Close() }

func (s *sqliteStore) CreatePersona(ctx context.Context, p Persona) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO personas (id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return ferr.Wrap(ferr.Io, err, "creating persona")
	}
	return nil
}

func (s *sqliteStore) GetPersona(ctx context.Context, id string) (Persona, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM personas WHERE id = ?`, id)
	var p Persona
	var createdAt string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return Persona{}, ferr.New(ferr.NotFound, "persona "+id+" not found")
		}
		return Persona{}, ferr.Wrap(ferr.Io, err, "reading persona")
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return p, nil
}

func (s *sqliteStore) ListPersonas(ctx context.Context) ([]Persona, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM personas ORDER BY name`)
	if err != nil {
		return nil, ferr.Wrap(ferr.Io, err, "listing personas")
	}
	defer rows.Close()

	var out []Persona
	for rows.Next() {
		var p Persona
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &createdAt); err != nil {
			return nil, ferr.Wrap(ferr.Io, err, "scanning persona row")
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, p)
	}
	return out, nil
}

func (s *sqliteStore) CreateStandup(ctx context.Context, st Standup) error {
	enabled := 0
	if st.Enabled {
		enabled = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO standups (id, persona_id, name, prompt, cron_schedule, enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.PersonaID, st.Name, st.Prompt, st.CronSchedule, enabled, st.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return ferr.Wrap(ferr.Io, err, "creating standup")
	}
	return nil
}

func (s *sqliteStore) GetStandup(ctx context.Context, id string) (Standup, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, persona_id, name, prompt, cron_schedule, enabled, created_at FROM standups WHERE id = ?`, id)
	return scanStandup(row)
}

func (s *sqliteStore) ListStandups(ctx context.Context) ([]Standup, error) {
	return s.queryStandups(ctx, `SELECT id, persona_id, name, prompt, cron_schedule, enabled, created_at FROM standups ORDER BY name`)
}

func (s *sqliteStore) ListEnabledStandups(ctx context.Context) ([]Standup, error) {
	return s.queryStandups(ctx, `SELECT id, persona_id, name, prompt, cron_schedule, enabled, created_at FROM standups WHERE enabled = 1 ORDER BY name`)
}

func (s *sqliteStore) queryStandups(ctx context.Context, query string) ([]Standup, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, ferr.Wrap(ferr.Io, err, "listing standups")
	}
	defer rows.Close()

	var out []Standup
	for rows.Next() {
		st, err := scanStandup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStandup(row scanner) (Standup, error) {
	var st Standup
	var enabled int
	var createdAt string
	if err := row.Scan(&st.ID, &st.PersonaID, &st.Name, &st.Prompt, &st.CronSchedule, &enabled, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return Standup{}, ferr.New(ferr.NotFound, "standup not found")
		}
		return Standup{}, ferr.Wrap(ferr.Io, err, "scanning standup row")
	}
	st.Enabled = enabled != 0
	st.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return st, nil
}

func (s *sqliteStore) RecordRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, standup_id, started_at, finished_at, output, err) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.StandupID, r.StartedAt.UTC().Format(time.RFC3339), r.FinishedAt.UTC().Format(time.RFC3339), r.Output, r.Err)
	if err != nil {
		return ferr.Wrap(ferr.Io, err, "recording standup run")
	}
	return nil
}

func (s *sqliteStore) ListRuns(ctx context.Context, standupID string, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, standup_id, started_at, finished_at, output, err FROM runs
		 WHERE standup_id = ? ORDER BY started_at DESC LIMIT ?`, standupID, limit)
	if err != nil {
		return nil, ferr.Wrap(ferr.Io, err, "listing standup runs")
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.StandupID, &started, &finished, &r.Output, &r.Err); err != nil {
			return nil, ferr.Wrap(ferr.Io, err, "scanning run row")
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		out = append(out, r)
	}
	return out, nil
}
