// Package dispatch orchestrates the call-next and take-a-number paths:
// ledger mutation first, then event broadcast and announcement playback.
package dispatch

import (
	"context"
	"log"
	"time"

	"github.com/heryandp/antrian/internal/announce"
	"github.com/heryandp/antrian/internal/hub"
	"github.com/heryandp/antrian/internal/models"
	"github.com/heryandp/antrian/internal/store"
)

// Player renders an ordered announcement sequence to completion. It is
// invoked on its own goroutine so playback never blocks dispatching.
type Player interface {
	Play(segments []announce.Segment) error
}

type Coordinator struct {
	store  store.TicketStore
	hub    *hub.Hub
	player Player
}

func New(st store.TicketStore, h *hub.Hub, player Player) *Coordinator {
	return &Coordinator{store: st, hub: h, player: player}
}

// CallNext pulls the oldest waiting ticket for the counter's service,
// broadcasts the call and queues the spoken announcement. A
// store.ErrNoTicket result passes through untouched; it means the
// queue is empty, not that something failed.
func (c *Coordinator) CallNext(ctx context.Context, counterID int) (models.Ticket, error) {
	ticket, err := c.store.PullNext(ctx, store.PullNextInput{
		CounterID: counterID,
		CalledAt:  time.Now().UTC(),
	})
	if err != nil {
		return models.Ticket{}, err
	}

	counterName := ""
	if counter, err := c.store.GetCounter(ctx, counterID); err == nil {
		counterName = counter.Name
	} else {
		log.Printf("dispatch counter lookup error: %v", err)
	}

	c.hub.Publish(hub.Event{
		Type:        hub.EventTicketCalled,
		Number:      ticket.Number,
		ServiceCode: ticket.ServiceCode,
		CounterID:   counterID,
		CounterName: counterName,
	})

	segments, err := announce.Compile(ticket.Number)
	if err != nil {
		// The ledger issued this number; a compile failure means the
		// ledger and compiler disagree on the format.
		log.Printf("dispatch announcement error for %s: %v", ticket.Number, err)
	} else {
		c.play(segments)
	}

	return ticket, nil
}

// IssueTicket creates a new waiting ticket and broadcasts it so boards
// can refresh their queue counts.
func (c *Coordinator) IssueTicket(ctx context.Context, serviceCode string) (models.Ticket, error) {
	ticket, err := c.store.IssueTicket(ctx, store.IssueTicketInput{
		ServiceCode: serviceCode,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return models.Ticket{}, err
	}

	c.hub.Publish(hub.Event{
		Type:        hub.EventNewTicket,
		Number:      ticket.Number,
		ServiceCode: ticket.ServiceCode,
	})

	c.play(announce.Notification())
	return ticket, nil
}

func (c *Coordinator) play(segments []announce.Segment) {
	if c.player == nil {
		return
	}
	go func() {
		if err := c.player.Play(segments); err != nil {
			log.Printf("dispatch playback error: %v", err)
		}
	}()
}
