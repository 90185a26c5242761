package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainerrors "practicedesk/contexts/practice-ops/engagement-service/domain/errors"
	"practicedesk/contexts/practice-ops/engagement-service/ports"
)

// Capabilities resolves the actor's capability set. An actor the policy
// cannot place is treated as forbidden.
func Capabilities(policy ports.AccessPolicy, actor ports.Actor) (ports.Capabilities, error) {
	if policy == nil || strings.TrimSpace(actor.ActorID) == "" {
		return ports.Capabilities{}, domainerrors.ErrForbidden
	}
	caps, err := policy.CapabilitiesOf(actor)
	if err != nil {
		return ports.Capabilities{}, fmt.Errorf("%w: %v", domainerrors.ErrForbidden, err)
	}
	return caps, nil
}

// EmployeeIDOf returns the employee record behind the actor: the session claim
// when present, otherwise the employee linked to the actor's user id. An actor
// with no employee record yields "".
func EmployeeIDOf(ctx context.Context, employees ports.EmployeeRepository, actor ports.Actor) (string, error) {
	if employeeID := strings.TrimSpace(actor.EmployeeID); employeeID != "" {
		return employeeID, nil
	}
	if employees == nil {
		return "", nil
	}
	employee, err := employees.GetEmployeeByUserID(ctx, actor.ActorID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrEmployeeNotFound) {
			return "", nil
		}
		return "", StoreFailure(err)
	}
	return employee.EmployeeID, nil
}

// StoreFailure classifies a repository error. Domain errors pass through;
// anything else is reported as a store failure.
func StoreFailure(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domainerrors.ErrValidationFailed) ||
		errors.Is(err, domainerrors.ErrForbidden) ||
		errors.Is(err, domainerrors.ErrStoreFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", domainerrors.ErrStoreFailure, err)
}
