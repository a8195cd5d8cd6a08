package domain

import (
	"fmt"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer      Role = "customer"
	RoleOrganizer     Role = "organizer"
	RoleAdministrator Role = "administrator"
)

// Principal is the authenticated caller. It is one of Customer, Organizer
// or Administrator.
type Principal interface {
	UserID() uuid.UUID
	Role() Role
	principal()
}

type Customer struct {
	ID    uuid.UUID
	Email string
	Name  string
}

type Organizer struct {
	ID         uuid.UUID
	Email      string
	Name       string
	IsVerified bool
}

type Administrator struct {
	ID    uuid.UUID
	Email string
}

func (c Customer) UserID() uuid.UUID {
	return c.ID
}

func (c Customer) Role() Role {
	return RoleCustomer
}

func (Customer) principal() {}

func (o Organizer) UserID() uuid.UUID {
	return o.ID
}

func (o Organizer) Role() Role {
	return RoleOrganizer
}

func (Organizer) principal() {}

func (a Administrator) UserID() uuid.UUID {
	return a.ID
}

func (a Administrator) Role() Role {
	return RoleAdministrator
}

func (Administrator) principal() {}

func NewPrincipal(role Role, id uuid.UUID, email, name string) (Principal, error) {
	switch role {
	case RoleCustomer:
		return Customer{ID: id, Email: email, Name: name}, nil
	case RoleOrganizer:
		return Organizer{ID: id, Email: email, Name: name}, nil
	case RoleAdministrator:
		return Administrator{ID: id, Email: email}, nil
	}

	return nil, fmt.Errorf("unknown role %q: %w", role, ErrUnauthorized)
}
