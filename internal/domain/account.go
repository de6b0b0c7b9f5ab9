package domain

import "time"

// AccountRole enumerates application roles.
type AccountRole string

const (
	RoleAdmin      AccountRole = "ADMIN"
	RoleTechnician AccountRole = "TECHNICIAN"
	RoleEmployee   AccountRole = "EMPLOYEE"
)

// Account is a login identity. Technicians and reporting employees are both
// accounts; the role decides which ticket operations they may trigger.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         AccountRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
