package domain

import (
	"strings"
)

// Role represents an operator role in the console
type Role int

const (
	RoleUnknown Role = iota
	RoleAdministrator
	RoleSalesperson
	RoleStorekeeper
	RoleAccountant
)

var roleTags = map[Role]string{
	RoleUnknown:       "Unknown",
	RoleAdministrator: "Administrator",
	RoleSalesperson:   "Salesperson",
	RoleStorekeeper:   "Storekeeper",
	RoleAccountant:    "Accountant",
}

// roleAliases maps lower-cased backend role strings to roles.
// The backend has historically sent localized labels as well as tags.
var roleAliases = map[string]Role{
	"administrator": RoleAdministrator,
	"admin":         RoleAdministrator,
	"администратор": RoleAdministrator,
	"админ":         RoleAdministrator,
	"salesperson":   RoleSalesperson,
	"seller":        RoleSalesperson,
	"продавец":      RoleSalesperson,
	"sotuvchi":      RoleSalesperson,
	"storekeeper":   RoleStorekeeper,
	"кладовщик":     RoleStorekeeper,
	"omborchi":      RoleStorekeeper,
	"accountant":    RoleAccountant,
	"бухгалтер":     RoleAccountant,
	"hisobchi":      RoleAccountant,
}

// ParseRole converts a backend role string into a Role.
// Unrecognized strings yield RoleUnknown.
func ParseRole(s string) Role {
	if r, ok := roleAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return r
	}
	return RoleUnknown
}

// String returns the canonical tag
func (r Role) String() string {
	if tag, ok := roleTags[r]; ok {
		return tag
	}
	return roleTags[RoleUnknown]
}

// MarshalText implements encoding.TextMarshaler
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Role) UnmarshalText(text []byte) error {
	*r = ParseRole(string(text))
	return nil
}

// RoleSet is a set of roles declared for a route
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from roles
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether the set contains role
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}
