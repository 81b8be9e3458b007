package enums

import "fmt"

// TicketStatus tracks the lifecycle of a support ticket.
type TicketStatus string

const (
	TicketStatusOpen          TicketStatus = "OPEN"
	TicketStatusAIResolved    TicketStatus = "AI_RESOLVED"
	TicketStatusHumanResolved TicketStatus = "HUMAN_RESOLVED"
	TicketStatusClosed        TicketStatus = "CLOSED"
)

var validTicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusAIResolved,
	TicketStatusHumanResolved,
	TicketStatusClosed,
}

// String implements fmt.Stringer.
func (s TicketStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TicketStatus.
func (s TicketStatus) IsValid() bool {
	for _, candidate := range validTicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsResolved reports whether the ticket reached a terminal resolution.
func (s TicketStatus) IsResolved() bool {
	switch s {
	case TicketStatusAIResolved, TicketStatusHumanResolved, TicketStatusClosed:
		return true
	default:
		return false
	}
}

// ParseTicketStatus converts raw input into a TicketStatus.
func ParseTicketStatus(value string) (TicketStatus, error) {
	for _, candidate := range validTicketStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ticket status %q", value)
}
