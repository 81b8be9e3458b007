package enums

import "fmt"

// FeatureFlag is the closed set of module killswitches an operator can toggle.
// Flag names arriving over the API are validated against this enum; there is
// no dynamic field lookup.
type FeatureFlag string

const (
	FeatureFlagPayments      FeatureFlag = "payments"
	FeatureFlagBridge        FeatureFlag = "bridge"
	FeatureFlagWallet        FeatureFlag = "wallet"
	FeatureFlagSupport       FeatureFlag = "support"
	FeatureFlagNotifications FeatureFlag = "notifications"
	FeatureFlagFeed          FeatureFlag = "feed"
)

var validFeatureFlags = []FeatureFlag{
	FeatureFlagPayments,
	FeatureFlagBridge,
	FeatureFlagWallet,
	FeatureFlagSupport,
	FeatureFlagNotifications,
	FeatureFlagFeed,
}

// AllFeatureFlags returns every toggleable flag in declaration order.
func AllFeatureFlags() []FeatureFlag {
	out := make([]FeatureFlag, len(validFeatureFlags))
	copy(out, validFeatureFlags)
	return out
}

// String implements fmt.Stringer.
func (f FeatureFlag) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FeatureFlag.
func (f FeatureFlag) IsValid() bool {
	for _, candidate := range validFeatureFlags {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFeatureFlag converts raw input into a FeatureFlag.
func ParseFeatureFlag(value string) (FeatureFlag, error) {
	for _, candidate := range validFeatureFlags {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid feature flag %q", value)
}
