package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/heryandp/antrian/internal/models"
	"github.com/heryandp/antrian/internal/store"
)

// Dispatcher is the mutation surface: both operations broadcast to
// displays after the ledger commits.
type Dispatcher interface {
	CallNext(ctx context.Context, counterID int) (models.Ticket, error)
	IssueTicket(ctx context.Context, serviceCode string) (models.Ticket, error)
}

type Handler struct {
	dispatcher Dispatcher
	store      store.TicketStore
}

type issueTicketRequest struct {
	Service string `json:"service"`
}

type callNextRequest struct {
	CounterID int `json:"counter_id"`
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewHandler(dispatcher Dispatcher, st store.TicketStore) *Handler {
	return &Handler{dispatcher: dispatcher, store: st}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/tickets", h.handleIssueTicket)
	mux.HandleFunc("/api/tickets/actions/call-next", h.handleCallNext)
	mux.HandleFunc("/api/queues/stats", h.handleStats)
	mux.HandleFunc("/api/queues/recent", h.handleRecentActivity)
	mux.HandleFunc("/api/queues/has-waiting", h.handleHasWaiting)
	mux.HandleFunc("/api/services", h.handleServices)
	mux.HandleFunc("/api/counters", h.handleCounters)
	mux.HandleFunc("/api/counters/", h.handleCounterActions)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleIssueTicket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req issueTicketRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.Service = strings.TrimSpace(req.Service)
	if !isValidServiceCode(req.Service) {
		writeError(w, http.StatusBadRequest, "invalid_request", "service must be a single uppercase letter")
		return
	}

	ticket, err := h.dispatcher.IssueTicket(r.Context(), req.Service)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	ticketsIssued.Add(1)
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) handleCallNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req callNextRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	if req.CounterID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "counter_id must be a positive integer")
		return
	}

	ticket, err := h.dispatcher.CallNext(r.Context(), req.CounterID)
	if err != nil {
		if errors.Is(err, store.ErrNoTicket) {
			writeError(w, http.StatusConflict, "queue_empty", "no waiting tickets for this counter")
			return
		}
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	ticketsCalled.Add(1)
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	service := strings.TrimSpace(r.URL.Query().Get("service"))
	if !isValidServiceCode(service) {
		writeError(w, http.StatusBadRequest, "invalid_request", "service must be a single uppercase letter")
		return
	}

	stats, err := h.store.Stats(r.Context(), service)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	counterID, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("counter_id")))
	if err != nil || counterID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "counter_id must be a positive integer")
		return
	}

	limit := 10
	if limitRaw := strings.TrimSpace(r.URL.Query().Get("limit")); limitRaw != "" {
		parsed, err := strconv.Atoi(limitRaw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	activity, err := h.store.RecentActivity(r.Context(), counterID, limit)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

// handleHasWaiting backs the call-next button on counter consoles:
// they poll it to decide whether the button is enabled.
func (h *Handler) handleHasWaiting(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	counterID, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("counter_id")))
	if err != nil || counterID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "counter_id must be a positive integer")
		return
	}

	hasWaiting, err := h.store.HasWaiting(r.Context(), counterID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"has_waiting": hasWaiting})
}

func (h *Handler) handleServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	services, err := h.store.ListServices(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, services)
}

func (h *Handler) handleCounters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	counters, err := h.store.ListCounters(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, counters)
}

func (h *Handler) handleCounterActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/counters/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[1] != "actions" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	counterID, err := strconv.Atoi(parts[0])
	if err != nil || counterID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "counter id must be a positive integer")
		return
	}

	var active bool
	switch parts[2] {
	case "activate":
		active = true
	case "deactivate":
		active = false
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if err := h.store.SetCounterActive(r.Context(), counterID, active); err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	counter, err := h.store.GetCounter(r.Context(), counterID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, counter)
}

func isValidServiceCode(code string) bool {
	return len(code) == 1 && code[0] >= 'A' && code[0] <= 'Z'
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrServiceNotFound):
		return http.StatusNotFound, "service_not_found", "service not found"
	case errors.Is(err, store.ErrCounterNotFound):
		return http.StatusNotFound, "counter_not_found", "counter not found"
	case errors.Is(err, store.ErrCounterInactive):
		return http.StatusConflict, "counter_inactive", "counter is not active"
	case errors.Is(err, store.ErrTicketNotFound):
		return http.StatusNotFound, "ticket_not_found", "ticket not found"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
