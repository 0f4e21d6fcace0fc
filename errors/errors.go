package errors

import "fmt"

var (
	ErrValidation  = fmt.Errorf("validation failed")
	ErrConflict    = fmt.Errorf("participant already exists")
	ErrNotFound    = fmt.Errorf("not found")
	ErrForbidden   = fmt.Errorf("only the sender may change this message")
	ErrStore       = fmt.Errorf("store failure")
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrSenderNotRegistered = fmt.Errorf("sender is not registered: %w", ErrNotFound)
	ErrStoreClosed         = fmt.Errorf("store is closed: %w", ErrStore)
)
