package entities

import (
	"strings"

	domainerrors "practicedesk/contexts/identity-access/role-authority/domain/errors"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// ParseRole accepts the canonical labels plus the legacy "employee" label,
// which older sessions still carry for staff.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RoleAdmin):
		return RoleAdmin, nil
	case string(RoleManager):
		return RoleManager, nil
	case string(RoleStaff), "employee":
		return RoleStaff, nil
	default:
		return "", domainerrors.ErrUnknownRole
	}
}

// Privileged reports whether the role belongs to office management.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleManager
}

type Capabilities struct {
	CanManageClients             bool
	CanManageStaff               bool
	CanAssignTasks               bool
	CanEditAnyTask               bool
	CanManageBilling             bool
	CanEditOwnAssignedTaskStatus bool
}

// Actor is immutable for the lifetime of a session.
type Actor struct {
	ActorID     string
	Role        Role
	DisplayName string
	EmployeeID  string
}
