package store

import (
	"context"
	"time"

	"github.com/heryandp/antrian/internal/models"
)

type IssueTicketInput struct {
	ServiceCode string
	CreatedAt   time.Time
}

type PullNextInput struct {
	CounterID int
	CalledAt  time.Time
}

// QueueStats feeds the waiting-room display panels. Reads are not
// serialized with issuance or pulls; slightly stale values are fine.
type QueueStats struct {
	ServiceCode       string `json:"service_code"`
	TotalCount        int    `json:"total_count"`
	NextWaitingNumber string `json:"next_waiting_number,omitempty"`
}

type CounterActivity struct {
	Called   []models.Ticket `json:"called"`
	Upcoming []models.Ticket `json:"upcoming"`
}

type TicketStore interface {
	IssueTicket(ctx context.Context, input IssueTicketInput) (models.Ticket, error)
	PullNext(ctx context.Context, input PullNextInput) (models.Ticket, error)
	Stats(ctx context.Context, serviceCode string) (QueueStats, error)
	RecentActivity(ctx context.Context, counterID, limit int) (CounterActivity, error)
	HasWaiting(ctx context.Context, counterID int) (bool, error)
	ListServices(ctx context.Context) ([]models.Service, error)
	ListCounters(ctx context.Context) ([]models.Counter, error)
	GetCounter(ctx context.Context, counterID int) (models.Counter, error)
	SetCounterActive(ctx context.Context, counterID int, active bool) error
	ProvisionCatalog(ctx context.Context, services []models.Service, counters []models.Counter) error
}
