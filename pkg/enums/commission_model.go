package enums

import "fmt"

// CommissionModel distinguishes the in-platform match from the manual bridge fallback.
type CommissionModel string

const (
	CommissionModelInternal CommissionModel = "INTERNAL"
	CommissionModelBridge   CommissionModel = "BRIDGE"
)

// Rate ceilings per commission model. The calculator itself accepts any
// rate in [0, 0.5]; these are the boundary defaults.
const (
	InternalRateCeiling = 0.15
	BridgeRateCeiling   = 0.10
)

var validCommissionModels = []CommissionModel{
	CommissionModelInternal,
	CommissionModelBridge,
}

// String implements fmt.Stringer.
func (m CommissionModel) String() string {
	return string(m)
}

// IsValid reports whether the value is a known CommissionModel.
func (m CommissionModel) IsValid() bool {
	for _, candidate := range validCommissionModels {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseCommissionModel converts raw input into a CommissionModel.
func ParseCommissionModel(value string) (CommissionModel, error) {
	for _, candidate := range validCommissionModels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid commission model %q", value)
}
