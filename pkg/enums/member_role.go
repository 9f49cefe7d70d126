package enums

import (
	"fmt"
	"strings"
)

// MemberRole is the role claim the identity proxy forwards for a staff member.
type MemberRole string

const (
	MemberRoleAdmin   MemberRole = "admin"
	MemberRoleCashier MemberRole = "cashier"
)

// DefaultMemberRole applies when the identity provider omits the role claim.
const DefaultMemberRole = MemberRoleCashier

var validMemberRoles = []MemberRole{
	MemberRoleAdmin,
	MemberRoleCashier,
}

// String implements fmt.Stringer.
func (m MemberRole) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MemberRole.
func (m MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMemberRole converts raw input into a MemberRole. Matching is case-insensitive.
func ParseMemberRole(value string) (MemberRole, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validMemberRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
