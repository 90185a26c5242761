package errors

import (
	"errors"
	"fmt"
)

var (
	ErrValidationFailed = errors.New("validation failed")

	ErrInvalidSubscription = fmt.Errorf("%w: invalid subscription", ErrValidationFailed)
	ErrUnknownCollection   = fmt.Errorf("%w: unknown collection", ErrValidationFailed)
	ErrMissingSessionID    = fmt.Errorf("%w: session id is required", ErrValidationFailed)
	ErrSessionClosed       = errors.New("session closed")
)
