package team

import (
	"context"

	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS personas (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS standups (
	id            TEXT PRIMARY KEY,
	persona_id    TEXT NOT NULL REFERENCES personas(id),
	name          TEXT NOT NULL,
	prompt        TEXT NOT NULL,
	cron_schedule TEXT NOT NULL,
	enabled       BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	standup_id  TEXT NOT NULL REFERENCES standups(id),
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	output      TEXT NOT NULL,
	err         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_standup ON runs(standup_id, started_at DESC);
`

type postgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a postgres-backed Store for multi-user
// deployments sharing one database, behind the same Store interface as
// OpenSQLite's single-user default.
func OpenPostgres(ctx context.Context, connString string) (Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, ferr.Wrap(ferr.Io, err, "opening postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, ferr.Wrap(ferr.Io, err, "pinging postgres pool")
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, ferr.Wrap(ferr.Io, err, "applying postgres schema")
	}
	return &postgresStore{pool: pool}, nil
}

func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *postgresStore) CreatePersona(ctx context.Context, p Persona) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO personas (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
		p.ID, p.Name, p.Description, p.CreatedAt)
	if err != nil {
		return ferr.Wrap(ferr.Io, err, "creating persona")
	}
	return nil
}

func (s *postgresStore) GetPersona(ctx context.Context, id string) (Persona, error) {
	var p Persona
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM personas WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Persona{}, ferr.New(ferr.NotFound, "persona "+id+" not found")
		}
		return Persona{}, ferr.Wrap(ferr.Io, err, "reading persona")
	}
	return p, nil
}

func (s *postgresStore) ListPersonas(ctx context.Context) ([]Persona, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, description, created_at FROM personas ORDER BY name`)
	if err != nil {
		return nil, ferr.Wrap(ferr.Io, err, "listing personas")
	}
	defer rows.Close()

	var out []Persona
	for rows.Next() {
		var p Persona
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, ferr.Wrap(ferr.Io, err, "scanning persona row")
		}
		out = append(out, p)
	}
	return out, rowsErr(rows)
}

func (s *postgresStore) CreateStandup(ctx context.Context, st Standup) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO standups (id, persona_id, name, prompt, cron_schedule, enabled, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		st.ID, st.PersonaID, st.Name, st.Prompt, st.CronSchedule, st.Enabled, st.CreatedAt)
	if err != nil {
		return ferr.Wrap(ferr.Io, err, "creating standup")
	}
	return nil
}

func (s *postgresStore) GetStandup(ctx context.Context, id string) (Standup, error) {
	var st Standup
	err := s.pool.QueryRow(ctx,
		`SELECT id, persona_id, name, prompt, cron_schedule, enabled, created_at FROM standups WHERE id = $1`, id).
		Scan(&st.ID, &st.PersonaID, &st.Name, &st.Prompt, &st.CronSchedule, &st.Enabled, &st.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Standup{}, ferr.New(ferr.NotFound, "standup not found")
		}
		return Standup{}, ferr.Wrap(ferr.Io, err, "reading standup")
	}
	return st, nil
}

func (s *postgresStore) ListStandups(ctx context.Context) ([]Standup, error) {
	return s.queryStandups(ctx, `SELECT id, persona_id, name, prompt, cron_schedule, enabled, created_at FROM standups ORDER BY name`)
}

func (s *postgresStore) ListEnabledStandups(ctx context.Context) ([]Standup, error) {
	return s.queryStandups(ctx, `SELECT id, persona_id, name, prompt, cron_schedule, enabled, created_at FROM standups WHERE enabled ORDER BY name`)
}

func (s *postgresStore) queryStandups(ctx context.Context, query string) ([]Standup, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, ferr.Wrap(ferr.Io, err, "listing standups")
	}
	defer rows.Close()

	var out []Standup
	for rows.Next() {
		var st Standup
		if err := rows.Scan(&st.ID, &st.PersonaID, &st.Name, &st.Prompt, &st.CronSchedule, &st.Enabled, &st.CreatedAt); err != nil {
			return nil, ferr.Wrap(ferr.Io, err, "scanning standup row")
		}
		out = append(out, st)
	}
	return out, rowsErr(rows)
}

func (s *postgresStore) RecordRun(ctx context.Context, r Run) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, standup_id, started_at, finished_at, output, err) VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.StandupID, r.StartedAt, r.FinishedAt, r.Output, r.Err)
	if err != nil {
		return ferr.Wrap(ferr.Io, err, "recording standup run")
	}
	return nil
}

func (s *postgresStore) ListRuns(ctx context.Context, standupID string, limit int) ([]Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, standup_id, started_at, finished_at, output, err FROM runs
		 WHERE standup_id = $1 ORDER BY started_at DESC LIMIT $2`, standupID, limit)
	if err != nil {
		return nil, ferr.Wrap(ferr.Io, err, "listing standup runs")
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StandupID, &r.StartedAt, &r.FinishedAt, &r.Output, &r.Err); err != nil {
			return nil, ferr.Wrap(ferr.Io, err, "scanning run row")
		}
		out = append(out, r)
	}
	return out, rowsErr(rows)
}

func rowsErr(rows pgx.Rows) error {
	if err := rows.Err(); err != nil {
		return ferr.Wrap(ferr.Io, err, "reading result rows")
	}
	return nil
}
