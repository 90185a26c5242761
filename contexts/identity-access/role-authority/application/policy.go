package application

import (
	"practicedesk/contexts/identity-access/role-authority/domain/entities"
	"practicedesk/contexts/identity-access/role-authority/domain/services"
	identityv1 "practicedesk/contracts/gen/identity/v1"
)

// Policy is the capability check other contexts consume through their own
// AccessPolicy port.
type Policy struct{}

func (Policy) CapabilitiesOf(actor identityv1.Actor) (identityv1.Capabilities, error) {
	role, err := entities.ParseRole(actor.Role)
	if err != nil {
		return identityv1.Capabilities{}, err
	}
	caps := services.CapabilitiesOf(role)
	return identityv1.Capabilities{
		CanManageClients:             caps.CanManageClients,
		CanManageStaff:               caps.CanManageStaff,
		CanAssignTasks:               caps.CanAssignTasks,
		CanEditAnyTask:               caps.CanEditAnyTask,
		CanManageBilling:             caps.CanManageBilling,
		CanEditOwnAssignedTaskStatus: caps.CanEditOwnAssignedTaskStatus,
	}, nil
}
