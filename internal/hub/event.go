package hub

import "encoding/json"

const (
	EventNewTicket    = "new_number"
	EventTicketCalled = "call_number"
)

// Event is the wire shape shared by every display surface. Receivers
// ignore fields they do not understand; there is no schema negotiation.
type Event struct {
	Type        string `json:"type"`
	Number      string `json:"number"`
	ServiceCode string `json:"service,omitempty"`
	CounterID   int    `json:"counter_id,omitempty"`
	CounterName string `json:"counter_name,omitempty"`
}

// ParseEvent validates an inbound frame. Malformed JSON, unknown event
// types, and empty ticket numbers are rejected; callers log and drop
// such frames without failing the connection.
func ParseEvent(data []byte) (Event, bool) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return Event{}, false
	}
	if event.Type != EventNewTicket && event.Type != EventTicketCalled {
		return Event{}, false
	}
	if event.Number == "" {
		return Event{}, false
	}
	return event, true
}
