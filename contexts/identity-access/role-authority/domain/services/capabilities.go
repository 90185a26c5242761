package services

import "practicedesk/contexts/identity-access/role-authority/domain/entities"

// CapabilitiesOf derives permissions from the role alone.
func CapabilitiesOf(role entities.Role) entities.Capabilities {
	privileged := role.Privileged()
	return entities.Capabilities{
		CanManageClients:             privileged,
		CanManageStaff:               privileged,
		CanAssignTasks:               privileged,
		CanEditAnyTask:               privileged,
		CanManageBilling:             privileged,
		CanEditOwnAssignedTaskStatus: true,
	}
}
