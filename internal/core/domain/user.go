package domain

import "time"

// Role is the closed set of staff roles recognised by the API.
// Patients use a separate portal and never hold accounts here.
type Role string

const (
	RoleAdmin        Role = "admin"
	RolePractitioner Role = "practitioner"
	RoleNurse        Role = "nurse"
	RoleScheduler    Role = "scheduler"
	RoleFinance      Role = "finance"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RolePractitioner, RoleNurse, RoleScheduler, RoleFinance}

// Valid reports whether r belongs to the fixed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePractitioner, RoleNurse, RoleScheduler, RoleFinance:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// User models a staff account. Email is the sole login identifier and is
// unique across the store. Accounts are never deleted, only deactivated.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
