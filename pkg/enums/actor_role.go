package enums

import "fmt"

// ActorRole represents a warehouse-level permissions role.
type ActorRole string

const (
	ActorRoleAdmin    ActorRole = "admin"
	ActorRoleManager  ActorRole = "manager"
	ActorRoleStaff    ActorRole = "staff"
	ActorRoleCustomer ActorRole = "customer"
)

var validActorRoles = []ActorRole{
	ActorRoleAdmin,
	ActorRoleManager,
	ActorRoleStaff,
	ActorRoleCustomer,
}

// String implements fmt.Stringer.
func (r ActorRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ActorRole.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsInternal reports whether the role belongs to warehouse personnel
// rather than an external customer account.
func (r ActorRole) IsInternal() bool {
	return r == ActorRoleAdmin || r == ActorRoleManager || r == ActorRoleStaff
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
