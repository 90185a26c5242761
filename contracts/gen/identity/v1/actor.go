package v1

// Role labels as they travel between contexts. Role Authority owns parsing.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// Actor is the authenticated caller of an operation. It is resolved once per
// session and passed explicitly into every core operation.
type Actor struct {
	ActorID     string `json:"actor_id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
	EmployeeID  string `json:"employee_id,omitempty"`
}

// Capabilities are role-wide permissions; there are no per-record ACLs.
type Capabilities struct {
	CanManageClients             bool `json:"can_manage_clients"`
	CanManageStaff               bool `json:"can_manage_staff"`
	CanAssignTasks               bool `json:"can_assign_tasks"`
	CanEditAnyTask               bool `json:"can_edit_any_task"`
	CanManageBilling             bool `json:"can_manage_billing"`
	CanEditOwnAssignedTaskStatus bool `json:"can_edit_own_assigned_task_status"`
}
