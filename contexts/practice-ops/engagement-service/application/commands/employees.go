package commands

import (
	"context"
	"log/slog"
	"strings"

	application "practicedesk/contexts/practice-ops/engagement-service/application"
	"practicedesk/contexts/practice-ops/engagement-service/domain/entities"
	domainerrors "practicedesk/contexts/practice-ops/engagement-service/domain/errors"
	"practicedesk/contexts/practice-ops/engagement-service/ports"
	contractsv1 "practicedesk/contracts/gen/events/v1"
)

type EmployeeFields struct {
	UserID      string
	FullName    string
	Email       string
	Phone       string
	Designation string
	Active      bool
}

type SaveEmployeeCommand struct {
	Actor      ports.Actor
	EmployeeID string
	Fields     EmployeeFields
}

type SaveEmployeeUseCase struct {
	Employees ports.EmployeeRepository
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

func (uc SaveEmployeeUseCase) Execute(ctx context.Context, cmd SaveEmployeeCommand) (entities.Employee, error) {
	logger := application.ResolveLogger(uc.Logger)
	caps, err := application.Capabilities(uc.Policy, cmd.Actor)
	if err != nil {
		return entities.Employee{}, err
	}
	if !caps.CanManageStaff {
		return entities.Employee{}, domainerrors.ErrForbidden
	}
	fullName := strings.TrimSpace(cmd.Fields.FullName)
	email := strings.ToLower(strings.TrimSpace(cmd.Fields.Email))
	if fullName == "" || email == "" || !strings.Contains(email, "@") {
		return entities.Employee{}, domainerrors.ErrInvalidEmployeeInput
	}
	designation := strings.TrimSpace(cmd.Fields.Designation)
	if designation == "" {
		designation = entities.DefaultDesignation
	}

	now := uc.Clock.Now().UTC()
	employee := entities.Employee{
		EmployeeID:  strings.TrimSpace(cmd.EmployeeID),
		UserID:      strings.TrimSpace(cmd.Fields.UserID),
		FullName:    fullName,
		Email:       email,
		Phone:       strings.TrimSpace(cmd.Fields.Phone),
		Designation: designation,
		Active:      cmd.Fields.Active,
		UpdatedAt:   now,
	}

	kind := contractsv1.ChangeUpdate
	if employee.EmployeeID == "" {
		kind = contractsv1.ChangeInsert
		employeeID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Employee{}, application.StoreFailure(err)
		}
		employee.EmployeeID = employeeID
		employee.CreatedAt = now
		if err := uc.Employees.CreateEmployee(ctx, employee); err != nil {
			return entities.Employee{}, application.StoreFailure(err)
		}
	} else {
		existing, err := uc.Employees.GetEmployee(ctx, employee.EmployeeID)
		if err != nil {
			return entities.Employee{}, application.StoreFailure(err)
		}
		employee.CreatedAt = existing.CreatedAt
		if err := uc.Employees.UpdateEmployee(ctx, employee); err != nil {
			return entities.Employee{}, application.StoreFailure(err)
		}
	}

	notifier := changeNotifier{publisher: uc.Publisher, idGen: uc.IDGen, logger: uc.Logger}
	notifier.notify(ctx, collectionEmployees, kind, employee.EmployeeID, cmd.Actor.ActorID, now,
		map[string]any{"id": employee.EmployeeID, "user_id": employee.UserID})
	logger.Info("employee saved",
		"event", "engagement_employee_saved",
		"module", "practice-ops/engagement-service",
		"layer", "application",
		"employee_id", employee.EmployeeID,
		"change_kind", kind,
	)
	return employee, nil
}

type DeleteEmployeeCommand struct {
	Actor      ports.Actor
	EmployeeID string
}

type DeleteEmployeeUseCase struct {
	Employees ports.EmployeeRepository
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

func (uc DeleteEmployeeUseCase) Execute(ctx context.Context, cmd DeleteEmployeeCommand) error {
	caps, err := application.Capabilities(uc.Policy, cmd.Actor)
	if err != nil {
		return err
	}
	if !caps.CanManageStaff {
		return domainerrors.ErrForbidden
	}
	employeeID := strings.TrimSpace(cmd.EmployeeID)
	if err := uc.Employees.DeleteEmployee(ctx, employeeID); err != nil {
		return application.StoreFailure(err)
	}
	notifier := changeNotifier{publisher: uc.Publisher, idGen: uc.IDGen, logger: uc.Logger}
	notifier.notify(ctx, collectionEmployees, contractsv1.ChangeDelete, employeeID, cmd.Actor.ActorID,
		uc.Clock.Now().UTC(), map[string]any{"id": employeeID})
	return nil
}
