package services

import (
	"testing"

	"practicedesk/contexts/identity-access/role-authority/domain/entities"
)

func TestCapabilitiesOfPrivilegedRoles(t *testing.T) {
	for _, role := range []entities.Role{entities.RoleAdmin, entities.RoleManager} {
		caps := CapabilitiesOf(role)
		if !caps.CanManageClients || !caps.CanManageStaff || !caps.CanAssignTasks ||
			!caps.CanEditAnyTask || !caps.CanManageBilling {
			t.Fatalf("expected all capabilities for %s, got %+v", role, caps)
		}
		if !caps.CanEditOwnAssignedTaskStatus {
			t.Fatalf("expected own-status capability for %s", role)
		}
	}
}

func TestCapabilitiesOfStaff(t *testing.T) {
	caps := CapabilitiesOf(entities.RoleStaff)
	if caps.CanManageClients || caps.CanManageStaff || caps.CanAssignTasks ||
		caps.CanEditAnyTask || caps.CanManageBilling {
		t.Fatalf("expected staff to hold no management capability, got %+v", caps)
	}
	if !caps.CanEditOwnAssignedTaskStatus {
		t.Fatalf("expected staff to edit own assigned task status")
	}
}

func TestCapabilitiesOfUnknownRoleGrantsNothingPrivileged(t *testing.T) {
	caps := CapabilitiesOf(entities.Role("auditor"))
	if caps.CanEditAnyTask || caps.CanManageBilling {
		t.Fatalf("unexpected privileged capability: %+v", caps)
	}
}

func TestParseRoleAcceptsLegacyEmployeeLabel(t *testing.T) {
	role, err := entities.ParseRole(" Employee ")
	if err != nil {
		t.Fatalf("parse role failed: %v", err)
	}
	if role != entities.RoleStaff {
		t.Fatalf("expected staff, got %s", role)
	}
	if _, err := entities.ParseRole("root"); err == nil {
		t.Fatal("expected unknown role error")
	}
}
