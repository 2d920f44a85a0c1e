package access

import (
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// Principal is the acting identity of a request. The zero value is anonymous.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

var Anonymous = Principal{}

func (p Principal) Authenticated() bool {
	return p.ID != uuid.Nil
}

func (p Principal) IsAdmin() bool {
	return p.Authenticated() && p.Role == RoleAdmin
}

func (p Principal) Owns(owner uuid.UUID) bool {
	return p.Authenticated() && p.ID == owner
}
