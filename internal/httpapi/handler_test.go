package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/heryandp/antrian/internal/models"
	"github.com/heryandp/antrian/internal/store"
)

type fakeDispatcher struct {
	callFn  func(ctx context.Context, counterID int) (models.Ticket, error)
	issueFn func(ctx context.Context, serviceCode string) (models.Ticket, error)
}

func (f fakeDispatcher) CallNext(ctx context.Context, counterID int) (models.Ticket, error) {
	if f.callFn == nil {
		return models.Ticket{}, nil
	}
	return f.callFn(ctx, counterID)
}

func (f fakeDispatcher) IssueTicket(ctx context.Context, serviceCode string) (models.Ticket, error) {
	if f.issueFn == nil {
		return models.Ticket{}, nil
	}
	return f.issueFn(ctx, serviceCode)
}

type fakeStore struct {
	statsFn      func(ctx context.Context, serviceCode string) (store.QueueStats, error)
	recentFn     func(ctx context.Context, counterID, limit int) (store.CounterActivity, error)
	servicesFn   func(ctx context.Context) ([]models.Service, error)
	countersFn   func(ctx context.Context) ([]models.Counter, error)
	getCounterFn func(ctx context.Context, counterID int) (models.Counter, error)
	setActiveFn  func(ctx context.Context, counterID int, active bool) error
	hasWaitingFn func(ctx context.Context, counterID int) (bool, error)
}

func (f fakeStore) IssueTicket(ctx context.Context, input store.IssueTicketInput) (models.Ticket, error) {
	return models.Ticket{}, nil
}

func (f fakeStore) PullNext(ctx context.Context, input store.PullNextInput) (models.Ticket, error) {
	return models.Ticket{}, nil
}

func (f fakeStore) Stats(ctx context.Context, serviceCode string) (store.QueueStats, error) {
	if f.statsFn == nil {
		return store.QueueStats{}, nil
	}
	return f.statsFn(ctx, serviceCode)
}

func (f fakeStore) RecentActivity(ctx context.Context, counterID, limit int) (store.CounterActivity, error) {
	if f.recentFn == nil {
		return store.CounterActivity{}, nil
	}
	return f.recentFn(ctx, counterID, limit)
}

func (f fakeStore) HasWaiting(ctx context.Context, counterID int) (bool, error) {
	if f.hasWaitingFn == nil {
		return false, nil
	}
	return f.hasWaitingFn(ctx, counterID)
}

func (f fakeStore) ListServices(ctx context.Context) ([]models.Service, error) {
	if f.servicesFn == nil {
		return nil, nil
	}
	return f.servicesFn(ctx)
}

func (f fakeStore) ListCounters(ctx context.Context) ([]models.Counter, error) {
	if f.countersFn == nil {
		return nil, nil
	}
	return f.countersFn(ctx)
}

func (f fakeStore) GetCounter(ctx context.Context, counterID int) (models.Counter, error) {
	if f.getCounterFn == nil {
		return models.Counter{}, nil
	}
	return f.getCounterFn(ctx, counterID)
}

func (f fakeStore) SetCounterActive(ctx context.Context, counterID int, active bool) error {
	if f.setActiveFn == nil {
		return nil
	}
	return f.setActiveFn(ctx, counterID, active)
}

func (f fakeStore) ProvisionCatalog(ctx context.Context, services []models.Service, counters []models.Counter) error {
	return nil
}

func TestIssueTicketSuccess(t *testing.T) {
	createdAt := time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)
	d := fakeDispatcher{
		issueFn: func(ctx context.Context, serviceCode string) (models.Ticket, error) {
			return models.Ticket{
				TicketID:    "ticket-1",
				Number:      "A001",
				ServiceCode: serviceCode,
				SeqNumber:   1,
				Status:      models.StatusWaiting,
				CreatedAt:   createdAt,
			}, nil
		},
	}
	h := NewHandler(d, fakeStore{})

	body, _ := json.Marshal(map[string]string{"service": "A"})
	req := httptest.NewRequest(http.MethodPost, "/api/tickets", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var ticket models.Ticket
	if err := json.NewDecoder(resp.Body).Decode(&ticket); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if ticket.Number != "A001" || ticket.Status != models.StatusWaiting {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}
}

func TestIssueTicketInvalidService(t *testing.T) {
	h := NewHandler(fakeDispatcher{}, fakeStore{})

	for _, service := range []string{"", "a", "AB", "1"} {
		body, _ := json.Marshal(map[string]string{"service": service})
		req := httptest.NewRequest(http.MethodPost, "/api/tickets", bytes.NewReader(body))
		resp := httptest.NewRecorder()

		h.Routes().ServeHTTP(resp, req)

		if resp.Code != http.StatusBadRequest {
			t.Fatalf("service %q: expected status 400, got %d", service, resp.Code)
		}
	}
}

func TestIssueTicketUnknownService(t *testing.T) {
	d := fakeDispatcher{
		issueFn: func(ctx context.Context, serviceCode string) (models.Ticket, error) {
			return models.Ticket{}, store.ErrServiceNotFound
		},
	}
	h := NewHandler(d, fakeStore{})

	body, _ := json.Marshal(map[string]string{"service": "Q"})
	req := httptest.NewRequest(http.MethodPost, "/api/tickets", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}

	var response errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Error.Code != "service_not_found" {
		t.Fatalf("unexpected error code %q", response.Error.Code)
	}
}

func TestCallNextSuccess(t *testing.T) {
	d := fakeDispatcher{
		callFn: func(ctx context.Context, counterID int) (models.Ticket, error) {
			id := counterID
			return models.Ticket{
				TicketID:    "ticket-2",
				Number:      "A007",
				ServiceCode: "A",
				Status:      models.StatusCalled,
				CounterID:   &id,
			}, nil
		},
	}
	h := NewHandler(d, fakeStore{})

	body, _ := json.Marshal(map[string]int{"counter_id": 3})
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/actions/call-next", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var ticket models.Ticket
	if err := json.NewDecoder(resp.Body).Decode(&ticket); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if ticket.Number != "A007" || ticket.CounterID == nil || *ticket.CounterID != 3 {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}
}

func TestCallNextEmptyQueue(t *testing.T) {
	d := fakeDispatcher{
		callFn: func(ctx context.Context, counterID int) (models.Ticket, error) {
			return models.Ticket{}, store.ErrNoTicket
		},
	}
	h := NewHandler(d, fakeStore{})

	body, _ := json.Marshal(map[string]int{"counter_id": 1})
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/actions/call-next", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}

	var response errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Error.Code != "queue_empty" {
		t.Fatalf("unexpected error code %q", response.Error.Code)
	}
}

func TestCallNextInactiveCounter(t *testing.T) {
	d := fakeDispatcher{
		callFn: func(ctx context.Context, counterID int) (models.Ticket, error) {
			return models.Ticket{}, store.ErrCounterInactive
		},
	}
	h := NewHandler(d, fakeStore{})

	body, _ := json.Marshal(map[string]int{"counter_id": 9})
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/actions/call-next", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
}

func TestStatsSuccess(t *testing.T) {
	st := fakeStore{
		statsFn: func(ctx context.Context, serviceCode string) (store.QueueStats, error) {
			return store.QueueStats{ServiceCode: serviceCode, TotalCount: 4, NextWaitingNumber: "A005"}, nil
		},
	}
	h := NewHandler(fakeDispatcher{}, st)

	req := httptest.NewRequest(http.MethodGet, "/api/queues/stats?service=A", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var stats store.QueueStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.TotalCount != 4 || stats.NextWaitingNumber != "A005" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestStatsMissingService(t *testing.T) {
	h := NewHandler(fakeDispatcher{}, fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/queues/stats", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestRecentActivitySuccess(t *testing.T) {
	st := fakeStore{
		recentFn: func(ctx context.Context, counterID, limit int) (store.CounterActivity, error) {
			if counterID != 2 || limit != 5 {
				t.Fatalf("unexpected query counter=%d limit=%d", counterID, limit)
			}
			return store.CounterActivity{
				Called: []models.Ticket{{Number: "A003", Status: models.StatusCalled}},
			}, nil
		},
	}
	h := NewHandler(fakeDispatcher{}, st)

	req := httptest.NewRequest(http.MethodGet, "/api/queues/recent?counter_id=2&limit=5", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestRecentActivityBadCounter(t *testing.T) {
	h := NewHandler(fakeDispatcher{}, fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/queues/recent?counter_id=abc", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestHasWaiting(t *testing.T) {
	st := fakeStore{
		hasWaitingFn: func(ctx context.Context, counterID int) (bool, error) {
			return counterID == 2, nil
		},
	}
	h := NewHandler(fakeDispatcher{}, st)

	req := httptest.NewRequest(http.MethodGet, "/api/queues/has-waiting?counter_id=2", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var body map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body["has_waiting"] {
		t.Fatal("expected has_waiting true")
	}
}

func TestCounterActivate(t *testing.T) {
	var gotActive *bool
	st := fakeStore{
		setActiveFn: func(ctx context.Context, counterID int, active bool) error {
			gotActive = &active
			return nil
		},
		getCounterFn: func(ctx context.Context, counterID int) (models.Counter, error) {
			return models.Counter{CounterID: counterID, Name: "Loket A1", ServiceCode: "A", Active: true}, nil
		},
	}
	h := NewHandler(fakeDispatcher{}, st)

	req := httptest.NewRequest(http.MethodPost, "/api/counters/1/actions/activate", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotActive == nil || !*gotActive {
		t.Fatal("expected SetCounterActive(true)")
	}
}

func TestCounterDeactivateNotFound(t *testing.T) {
	st := fakeStore{
		setActiveFn: func(ctx context.Context, counterID int, active bool) error {
			return store.ErrCounterNotFound
		},
	}
	h := NewHandler(fakeDispatcher{}, st)

	req := httptest.NewRequest(http.MethodPost, "/api/counters/42/actions/deactivate", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestCounterUnknownAction(t *testing.T) {
	h := NewHandler(fakeDispatcher{}, fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/counters/1/actions/explode", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}
