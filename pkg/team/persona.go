// Package team implements the team/persona workflow engine named in
// : personas describe a role an agent plays, and standups are
// cron-scheduled recurring prompts run against a persona with their
// history persisted for later review.
package team

import "time"

// Persona is a named role with a system-prompt-style description that
// scopes what an agent invoked under it should do.
type Persona struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Standup is a recurring prompt run against a Persona on a cron
// schedule (robfig/cron 6-field syntax, seconds first).
type Standup struct {
	ID           string
	PersonaID    string
	Name         string
	Prompt       string
	CronSchedule string
	Enabled      bool
	CreatedAt    time.Time
}

// Run is one completed (or failed) execution of a Standup.
type Run struct {
	ID         string
	StandupID  string
	StartedAt  time.Time
	FinishedAt time.Time
	Output     string
	Err        string
}
