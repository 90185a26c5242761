package queries

import (
	"context"
	"time"

	application "practicedesk/contexts/practice-ops/engagement-service/application"
	"practicedesk/contexts/practice-ops/engagement-service/domain/entities"
	"practicedesk/contexts/practice-ops/engagement-service/domain/services"
	"practicedesk/contexts/practice-ops/engagement-service/ports"
)

type DashboardStats struct {
	ActiveClients int
	OpenTasks     int
	OverdueTasks  int
}

type DashboardStatsUseCase struct {
	Tasks     ports.TaskRepository
	Clients   ports.ClientRepository
	Employees ports.EmployeeRepository
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	Location  *time.Location
}

// Execute counts open and overdue work. Staff counts cover their own
// assignments; the active client count is only reported to privileged actors.
func (uc DashboardStatsUseCase) Execute(ctx context.Context, actor ports.Actor) (DashboardStats, error) {
	caps, err := application.Capabilities(uc.Policy, actor)
	if err != nil {
		return DashboardStats{}, err
	}
	filter := ports.TaskFilter{}
	stats := DashboardStats{}
	if caps.CanEditAnyTask {
		clients, err := uc.Clients.ListClients(ctx, ports.ClientFilter{Status: entities.ClientStatusActive})
		if err != nil {
			return DashboardStats{}, application.StoreFailure(err)
		}
		stats.ActiveClients = len(clients)
	} else {
		employeeID, err := application.EmployeeIDOf(ctx, uc.Employees, actor)
		if err != nil {
			return DashboardStats{}, err
		}
		if employeeID == "" {
			return stats, nil
		}
		filter.AssigneeID = employeeID
	}

	tasks, err := uc.Tasks.ListTasks(ctx, filter)
	if err != nil {
		return DashboardStats{}, application.StoreFailure(err)
	}
	now := uc.Clock.Now()
	for _, task := range tasks {
		if task.IsOpen() {
			stats.OpenTasks++
		}
		if task.Status != entities.TaskStatusCompleted && services.IsOverdue(task.DueDate, now, uc.Location) {
			stats.OverdueTasks++
		}
	}
	return stats, nil
}
