package models

import "time"

type Ticket struct {
	TicketID    string     `json:"ticket_id"`
	Number      string     `json:"number"`
	ServiceCode string     `json:"service_code"`
	SeqNumber   int        `json:"seq_number"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CalledAt    *time.Time `json:"called_at,omitempty"`
	CounterID   *int       `json:"counter_id,omitempty"`
}

const (
	StatusWaiting = "waiting"
	StatusCalled  = "called"
)
