package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/heryandp/antrian/internal/models"
	"github.com/heryandp/antrian/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ticketNumberPad = 3

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) IssueTicket(ctx context.Context, input store.IssueTicketInput) (models.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Ticket{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = ensureServiceExists(ctx, tx, input.ServiceCode); err != nil {
		return models.Ticket{}, err
	}

	seq, err := nextTicketNumber(ctx, tx, input.ServiceCode)
	if err != nil {
		return models.Ticket{}, err
	}
	formattedNumber := fmt.Sprintf("%s%0*d", input.ServiceCode, ticketNumberPad, seq)

	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var ticket models.Ticket
	row := tx.QueryRow(ctx, `
		INSERT INTO tickets (ticket_id, number, service_code, seq_number, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ticket_id, number, service_code, seq_number, status, created_at
	`, uuid.NewString(), formattedNumber, input.ServiceCode, seq, models.StatusWaiting, createdAt)
	if err = row.Scan(&ticket.TicketID, &ticket.Number, &ticket.ServiceCode, &ticket.SeqNumber, &ticket.Status, &ticket.CreatedAt); err != nil {
		return models.Ticket{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

func (s *Store) PullNext(ctx context.Context, input store.PullNextInput) (models.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Ticket{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	counter, err := getCounter(ctx, tx, input.CounterID)
	if err != nil {
		return models.Ticket{}, err
	}
	if !counter.Active {
		err = store.ErrCounterInactive
		return models.Ticket{}, err
	}

	calledAt := input.CalledAt
	if calledAt.IsZero() {
		calledAt = time.Now().UTC()
	}

	var ticket models.Ticket
	var calledAtNull sql.NullTime
	var counterIDNull sql.NullInt64
	row := tx.QueryRow(ctx, `
		WITH next_ticket AS (
			SELECT ticket_id
			FROM tickets
			WHERE service_code = $1 AND status = 'waiting'
			ORDER BY seq_number ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		UPDATE tickets
		SET status = 'called',
			counter_id = $2,
			called_at = $3
		FROM next_ticket
		WHERE tickets.ticket_id = next_ticket.ticket_id
		RETURNING tickets.ticket_id, tickets.number, tickets.service_code, tickets.seq_number, tickets.status, tickets.created_at, tickets.called_at, tickets.counter_id
	`, counter.ServiceCode, input.CounterID, calledAt)
	if err = row.Scan(&ticket.TicketID, &ticket.Number, &ticket.ServiceCode, &ticket.SeqNumber, &ticket.Status, &ticket.CreatedAt, &calledAtNull, &counterIDNull); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if err = tx.Commit(ctx); err != nil {
				return models.Ticket{}, err
			}
			return models.Ticket{}, store.ErrNoTicket
		}
		return models.Ticket{}, err
	}
	ticket.CalledAt = nullTimePtr(calledAtNull)
	ticket.CounterID = nullIntPtr(counterIDNull)

	if err = tx.Commit(ctx); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

func (s *Store) Stats(ctx context.Context, serviceCode string) (store.QueueStats, error) {
	stats := store.QueueStats{ServiceCode: serviceCode}

	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM tickets
		WHERE service_code = $1
	`, serviceCode)
	if err := row.Scan(&stats.TotalCount); err != nil {
		return store.QueueStats{}, err
	}

	var next string
	row = s.pool.QueryRow(ctx, `
		SELECT number
		FROM tickets
		WHERE service_code = $1 AND status = 'waiting'
		ORDER BY seq_number ASC
		LIMIT 1
	`, serviceCode)
	if err := row.Scan(&next); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return store.QueueStats{}, err
		}
	}
	stats.NextWaitingNumber = next
	return stats, nil
}

func (s *Store) RecentActivity(ctx context.Context, counterID, limit int) (store.CounterActivity, error) {
	if limit <= 0 {
		limit = 10
	}

	var serviceCode string
	row := s.pool.QueryRow(ctx, `
		SELECT service_code
		FROM counters
		WHERE counter_id = $1
	`, counterID)
	if err := row.Scan(&serviceCode); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.CounterActivity{}, store.ErrCounterNotFound
		}
		return store.CounterActivity{}, err
	}

	called, err := s.queryTickets(ctx, `
		SELECT ticket_id, number, service_code, seq_number, status, created_at, called_at, counter_id
		FROM tickets
		WHERE counter_id = $1 AND status = 'called'
		ORDER BY seq_number DESC
		LIMIT $2
	`, counterID, limit)
	if err != nil {
		return store.CounterActivity{}, err
	}

	upcoming, err := s.queryTickets(ctx, `
		SELECT ticket_id, number, service_code, seq_number, status, created_at, called_at, counter_id
		FROM tickets
		WHERE service_code = $1 AND status = 'waiting'
		ORDER BY seq_number ASC
		LIMIT $2
	`, serviceCode, limit)
	if err != nil {
		return store.CounterActivity{}, err
	}

	return store.CounterActivity{Called: called, Upcoming: upcoming}, nil
}

func (s *Store) HasWaiting(ctx context.Context, counterID int) (bool, error) {
	var count int
	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM tickets t
		JOIN counters c ON c.service_code = t.service_code
		WHERE c.counter_id = $1 AND t.status = 'waiting'
	`, counterID)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListServices(ctx context.Context) ([]models.Service, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT code, name, description
		FROM services
		ORDER BY code ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var svc models.Service
		if err := rows.Scan(&svc.Code, &svc.Name, &svc.Description); err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return services, nil
}

func (s *Store) ListCounters(ctx context.Context) ([]models.Counter, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT counter_id, name, service_code, active
		FROM counters
		ORDER BY counter_id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counters []models.Counter
	for rows.Next() {
		var counter models.Counter
		if err := rows.Scan(&counter.CounterID, &counter.Name, &counter.ServiceCode, &counter.Active); err != nil {
			return nil, err
		}
		counters = append(counters, counter)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counters, nil
}

func (s *Store) GetCounter(ctx context.Context, counterID int) (models.Counter, error) {
	var counter models.Counter
	row := s.pool.QueryRow(ctx, `
		SELECT counter_id, name, service_code, active
		FROM counters
		WHERE counter_id = $1
	`, counterID)
	if err := row.Scan(&counter.CounterID, &counter.Name, &counter.ServiceCode, &counter.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Counter{}, store.ErrCounterNotFound
		}
		return models.Counter{}, err
	}
	return counter, nil
}

func (s *Store) SetCounterActive(ctx context.Context, counterID int, active bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE counters
		SET active = $1
		WHERE counter_id = $2
	`, active, counterID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrCounterNotFound
	}
	return nil
}

func (s *Store) ProvisionCatalog(ctx context.Context, services []models.Service, counters []models.Counter) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, svc := range services {
		if _, err = tx.Exec(ctx, `
			INSERT INTO services (code, name, description)
			VALUES ($1, $2, $3)
			ON CONFLICT (code) DO NOTHING
		`, svc.Code, svc.Name, svc.Description); err != nil {
			return err
		}
	}
	for _, counter := range counters {
		if _, err = tx.Exec(ctx, `
			INSERT INTO counters (name, service_code, active)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO NOTHING
		`, counter.Name, counter.ServiceCode, counter.Active); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) queryTickets(ctx context.Context, query string, args ...interface{}) ([]models.Ticket, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		var ticket models.Ticket
		var calledAtNull sql.NullTime
		var counterIDNull sql.NullInt64
		if err := rows.Scan(&ticket.TicketID, &ticket.Number, &ticket.ServiceCode, &ticket.SeqNumber, &ticket.Status, &ticket.CreatedAt, &calledAtNull, &counterIDNull); err != nil {
			return nil, err
		}
		ticket.CalledAt = nullTimePtr(calledAtNull)
		ticket.CounterID = nullIntPtr(counterIDNull)
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

func ensureServiceExists(ctx context.Context, tx pgx.Tx, serviceCode string) error {
	var code string
	row := tx.QueryRow(ctx, `
		SELECT code
		FROM services
		WHERE code = $1
	`, serviceCode)
	if err := row.Scan(&code); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrServiceNotFound
		}
		return err
	}
	return nil
}

func getCounter(ctx context.Context, tx pgx.Tx, counterID int) (models.Counter, error) {
	var counter models.Counter
	row := tx.QueryRow(ctx, `
		SELECT counter_id, name, service_code, active
		FROM counters
		WHERE counter_id = $1
	`, counterID)
	if err := row.Scan(&counter.CounterID, &counter.Name, &counter.ServiceCode, &counter.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Counter{}, store.ErrCounterNotFound
		}
		return models.Counter{}, err
	}
	return counter, nil
}

// nextTicketNumber serializes numbering per service code on the sequence
// row lock. A missing row is seeded from the highest previously issued
// suffix so a restored database never restarts at 1.
func nextTicketNumber(ctx context.Context, tx pgx.Tx, serviceCode string) (int, error) {
	var next int
	row := tx.QueryRow(ctx, `
		INSERT INTO ticket_sequences (service_code, next_number)
		VALUES ($1, COALESCE((SELECT MAX(seq_number) FROM tickets WHERE service_code = $1), 0) + 1)
		ON CONFLICT (service_code)
		DO UPDATE SET next_number = ticket_sequences.next_number + 1
		RETURNING next_number
	`, serviceCode)
	if err := row.Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func nullTimePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}

func nullIntPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	id := int(value.Int64)
	return &id
}
