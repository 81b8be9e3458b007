package enums

import "fmt"

// MemberRole is the caller role presented by the upstream-verified token.
type MemberRole string

const (
	MemberRoleClient       MemberRole = "client"
	MemberRoleProfessional MemberRole = "professional"
	MemberRoleAdmin        MemberRole = "admin"
	MemberRoleSuperAdmin   MemberRole = "super_admin"
)

var validMemberRoles = []MemberRole{
	MemberRoleClient,
	MemberRoleProfessional,
	MemberRoleAdmin,
	MemberRoleSuperAdmin,
}

// IsValid reports whether the value is a known MemberRole.
func (r MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsElevated reports whether the role carries administrative privileges.
func (r MemberRole) IsElevated() bool {
	return r == MemberRoleAdmin || r == MemberRoleSuperAdmin
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
