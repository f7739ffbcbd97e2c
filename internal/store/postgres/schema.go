package postgres

import "context"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS services (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS counters (
		counter_id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		service_code TEXT NOT NULL REFERENCES services(code),
		active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		ticket_id UUID PRIMARY KEY,
		number TEXT NOT NULL UNIQUE,
		service_code TEXT NOT NULL REFERENCES services(code),
		seq_number INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'waiting',
		counter_id INTEGER REFERENCES counters(counter_id),
		created_at TIMESTAMPTZ NOT NULL,
		called_at TIMESTAMPTZ,
		UNIQUE (service_code, seq_number)
	)`,
	`CREATE INDEX IF NOT EXISTS tickets_waiting_idx
		ON tickets (service_code, seq_number)
		WHERE status = 'waiting'`,
	`CREATE TABLE IF NOT EXISTS ticket_sequences (
		service_code TEXT PRIMARY KEY REFERENCES services(code),
		next_number INTEGER NOT NULL
	)`,
}

// EnsureSchema creates the ledger tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
