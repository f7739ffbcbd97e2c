package store

import "errors"

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrNoTicket        = errors.New("no ticket available")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrCounterNotFound = errors.New("counter not found")
	ErrCounterInactive = errors.New("counter inactive")
)
