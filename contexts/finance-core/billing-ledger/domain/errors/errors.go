package errors

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden        = errors.New("forbidden")
	ErrValidationFailed = errors.New("validation failed")
	ErrStoreFailure     = errors.New("store failure")
)

var (
	ErrInvoiceNotFound        = fmt.Errorf("%w: invoice not found", ErrValidationFailed)
	ErrClientNotFound         = fmt.Errorf("%w: client not found", ErrValidationFailed)
	ErrInvalidInvoiceInput    = fmt.Errorf("%w: invalid invoice input", ErrValidationFailed)
	ErrInvalidInvoiceStatus   = fmt.Errorf("%w: invalid invoice status", ErrValidationFailed)
	ErrInvalidPaymentInput    = fmt.Errorf("%w: invalid payment input", ErrValidationFailed)
	ErrDuplicateInvoiceNumber = fmt.Errorf("%w: invoice number already exists", ErrValidationFailed)
	ErrDuplicateRecord        = fmt.Errorf("%w: record already exists", ErrValidationFailed)
	ErrInvoiceNumberExhausted = fmt.Errorf("%w: could not allocate a free invoice number", ErrStoreFailure)
)
