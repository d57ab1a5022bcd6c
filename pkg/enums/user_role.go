package enums

import "fmt"

// UserRole represents the closed set of operator roles.
type UserRole string

const (
	UserRoleAdmin            UserRole = "ADMIN"
	UserRoleBaseCommander    UserRole = "BASE_COMMANDER"
	UserRoleLogisticsOfficer UserRole = "LOGISTICS_OFFICER"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleBaseCommander,
	UserRoleLogisticsOfficer,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// RequiresHomeBase reports whether principals with this role must be pinned
// to a home base.
func (r UserRole) RequiresHomeBase() bool {
	return r == UserRoleBaseCommander || r == UserRoleLogisticsOfficer
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
