package errors

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by this module is one of these or wraps one.
var (
	ErrForbidden        = errors.New("forbidden")
	ErrOverdueLocked    = errors.New("task is overdue; status changes must go through a manager")
	ErrValidationFailed = errors.New("validation failed")
	ErrStoreFailure     = errors.New("store failure")
	ErrStorageFailure   = errors.New("object storage failure")
)

var (
	ErrNotAssignee          = fmt.Errorf("%w: actor is not the task assignee", ErrForbidden)
	ErrTaskNotFound         = fmt.Errorf("%w: task not found", ErrValidationFailed)
	ErrClientNotFound       = fmt.Errorf("%w: client not found", ErrValidationFailed)
	ErrEmployeeNotFound     = fmt.Errorf("%w: employee not found", ErrValidationFailed)
	ErrDocumentNotFound     = fmt.Errorf("%w: document not found", ErrValidationFailed)
	ErrInvalidTaskInput     = fmt.Errorf("%w: invalid task input", ErrValidationFailed)
	ErrInvalidTaskStatus    = fmt.Errorf("%w: invalid task status", ErrValidationFailed)
	ErrInvalidClientInput   = fmt.Errorf("%w: invalid client input", ErrValidationFailed)
	ErrInvalidEmployeeInput = fmt.Errorf("%w: invalid employee input", ErrValidationFailed)
	ErrInvalidDocumentInput = fmt.Errorf("%w: invalid document input", ErrValidationFailed)
	ErrDuplicateRecord      = fmt.Errorf("%w: record already exists", ErrValidationFailed)
)
