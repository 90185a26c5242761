package queries

import (
	"context"
	"strings"

	application "practicedesk/contexts/practice-ops/engagement-service/application"
	"practicedesk/contexts/practice-ops/engagement-service/domain/entities"
	"practicedesk/contexts/practice-ops/engagement-service/ports"
)

type ListClientsUseCase struct {
	Clients ports.ClientRepository
	Policy  ports.AccessPolicy
}

func (uc ListClientsUseCase) Execute(ctx context.Context, actor ports.Actor, status string, search string) ([]entities.Client, error) {
	if _, err := application.Capabilities(uc.Policy, actor); err != nil {
		return nil, err
	}
	filter := ports.ClientFilter{Search: strings.TrimSpace(search)}
	if strings.TrimSpace(status) != "" {
		parsed, ok := entities.ParseClientStatus(status)
		if ok {
			filter.Status = parsed
		}
	}
	items, err := uc.Clients.ListClients(ctx, filter)
	if err != nil {
		return nil, application.StoreFailure(err)
	}
	return items, nil
}

type GetClientUseCase struct {
	Clients ports.ClientRepository
	Policy  ports.AccessPolicy
}

func (uc GetClientUseCase) Execute(ctx context.Context, actor ports.Actor, clientID string) (entities.Client, error) {
	if _, err := application.Capabilities(uc.Policy, actor); err != nil {
		return entities.Client{}, err
	}
	item, err := uc.Clients.GetClient(ctx, strings.TrimSpace(clientID))
	if err != nil {
		return entities.Client{}, application.StoreFailure(err)
	}
	return item, nil
}

type ListEmployeesUseCase struct {
	Employees ports.EmployeeRepository
	Policy    ports.AccessPolicy
}

func (uc ListEmployeesUseCase) Execute(ctx context.Context, actor ports.Actor, activeOnly bool) ([]entities.Employee, error) {
	if _, err := application.Capabilities(uc.Policy, actor); err != nil {
		return nil, err
	}
	items, err := uc.Employees.ListEmployees(ctx, activeOnly)
	if err != nil {
		return nil, application.StoreFailure(err)
	}
	return items, nil
}

type GetEmployeeUseCase struct {
	Employees ports.EmployeeRepository
	Policy    ports.AccessPolicy
}

func (uc GetEmployeeUseCase) Execute(ctx context.Context, actor ports.Actor, employeeID string) (entities.Employee, error) {
	if _, err := application.Capabilities(uc.Policy, actor); err != nil {
		return entities.Employee{}, err
	}
	item, err := uc.Employees.GetEmployee(ctx, strings.TrimSpace(employeeID))
	if err != nil {
		return entities.Employee{}, application.StoreFailure(err)
	}
	return item, nil
}
