package enums

import "fmt"

// TicketCategory classifies support tickets for routing and escalation.
type TicketCategory string

const (
	TicketCategoryPayments      TicketCategory = "PAYMENTS"
	TicketCategoryOrders        TicketCategory = "ORDERS"
	TicketCategoryDisputes      TicketCategory = "DISPUTES"
	TicketCategoryAccount       TicketCategory = "ACCOUNT"
	TicketCategoryGeneral       TicketCategory = "GENERAL"
	TicketCategoryLegalUrgent   TicketCategory = "LEGAL_URGENT"
	TicketCategorySafetyUrgent  TicketCategory = "SAFETY_URGENT"
)

var validTicketCategories = []TicketCategory{
	TicketCategoryPayments,
	TicketCategoryOrders,
	TicketCategoryDisputes,
	TicketCategoryAccount,
	TicketCategoryGeneral,
	TicketCategoryLegalUrgent,
	TicketCategorySafetyUrgent,
}

// IsValid reports whether the value is a known TicketCategory.
func (c TicketCategory) IsValid() bool {
	for _, candidate := range validTicketCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// RequiresEscalation reports whether tickets in this category always escalate to a human.
func (c TicketCategory) RequiresEscalation() bool {
	return c == TicketCategoryLegalUrgent || c == TicketCategorySafetyUrgent || c == TicketCategoryDisputes
}

// ParseTicketCategory converts raw input into a TicketCategory.
func ParseTicketCategory(value string) (TicketCategory, error) {
	for _, candidate := range validTicketCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ticket category %q", value)
}
