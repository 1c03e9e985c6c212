package core

import "strings"

// Roles
const (
	// Admin
	RoleAdmin          = "admin:"
	RoleAdminOwner     = "admin:owner"
	RoleAdminPrincipal = "admin:principal"

	// Teacher
	RoleTeacher = "teacher:"

	// Student
	RoleStudent = "student:"
)

var ErrForbidden = NewError(KindForbidden, "forbidden", "", "permission denied")

// Actor is the identity asserted by the authentication layer for the current call.
// The engine trusts it and does not authenticate.
type Actor struct {
	ID    string   `json:"id"`
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

func (a Actor) RoleStartsWith(prefix string) bool {
	for _, role := range a.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (a Actor) IsAdmin() bool {
	return a.RoleStartsWith(RoleAdmin)
}

func (a Actor) IsTeacher() bool {
	return a.RoleStartsWith(RoleTeacher)
}

func (a Actor) IsStudent() bool {
	return a.RoleStartsWith(RoleStudent)
}
