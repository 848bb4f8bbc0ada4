package domain

import "fmt"

// Role is the access level attached to an identity.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleTechnician Role = "technician"
)

// ParseRole validates a role name.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleManager, RoleTechnician:
		return Role(raw), nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// Identity is an entry of the static login table.
type Identity struct {
	Identity   string
	Name       string
	Role       Role
	SecretHash string
}

// RequiresSecret reports whether login must present a matching secret.
func (i Identity) RequiresSecret() bool {
	return i.SecretHash != ""
}
