package application

import (
	"errors"
	"fmt"
	"strings"

	domainerrors "practicedesk/contexts/finance-core/billing-ledger/domain/errors"
	"practicedesk/contexts/finance-core/billing-ledger/ports"
)

// RequireBilling admits actors holding CanManageBilling.
func RequireBilling(policy ports.AccessPolicy, actor ports.Actor) error {
	if policy == nil || strings.TrimSpace(actor.ActorID) == "" {
		return domainerrors.ErrForbidden
	}
	caps, err := policy.CapabilitiesOf(actor)
	if err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrForbidden, err)
	}
	if !caps.CanManageBilling {
		return domainerrors.ErrForbidden
	}
	return nil
}

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
