package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Booking errors
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrBookingConflict   = errors.New("booking conflict")
	ErrForbiddenActor    = errors.New("actor not permitted")
	ErrItemNotFound      = errors.New("item not found")

	// Billing errors
	ErrBillNotFound      = errors.New("bill not found")
	ErrBillAlreadyExists = errors.New("bill already exists")

	// Payment errors
	ErrPaymentFailure      = errors.New("payment failure")
	ErrAlreadyPaid         = errors.New("already paid")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Idempotency errors
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyInProgress  = errors.New("idempotency in progress")
	ErrIdempotencyCheckFailed = errors.New("idempotency check failed")

	// Validation errors
	ErrValidation = errors.New("validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
