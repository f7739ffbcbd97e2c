package models

// Service identifies a queue lane by its single-letter code.
type Service struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Counter is a staffed station bound to exactly one service code.
// Inactive counters keep their historical tickets but are excluded
// from call-next.
type Counter struct {
	CounterID   int    `json:"counter_id"`
	Name        string `json:"name"`
	ServiceCode string `json:"service_code"`
	Active      bool   `json:"active"`
}
