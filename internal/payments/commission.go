package payments

import (
	"github.com/shopspring/decimal"

	"github.com/servana-app/servana-backend/pkg/enums"
)

// Split is the commission breakdown for one payment. The platform share
// is floored, never rounded, so the two parts always sum exactly to the
// total in integer minor units.
type Split struct {
	TotalCents    int64                 `json:"total_cents"`
	PlatformCents int64                 `json:"platform_cents"`
	ProCents      int64                 `json:"pro_cents"`
	Rate          float64               `json:"rate"`
	Model         enums.CommissionModel `json:"model"`
}

// CalculateSplit computes the platform/professional split. Amount and
// rate validity are the caller's preconditions; this function never
// fails.
func CalculateSplit(totalCents int64, rate float64, model enums.CommissionModel) Split {
	platform := decimal.NewFromInt(totalCents).
		Mul(decimal.NewFromFloat(rate)).
		Floor().
		IntPart()
	return Split{
		TotalCents:    totalCents,
		PlatformCents: platform,
		ProCents:      totalCents - platform,
		Rate:          rate,
		Model:         model,
	}
}
