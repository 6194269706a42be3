package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a stage is not in a state that
	// permits the requested decision (already decided, or an earlier stage
	// is still pending)
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrNotEligible is returned when the actor's role (or assignment)
	// does not permit acting on the stage
	ErrNotEligible = errors.New("actor not eligible for stage")

	// ErrMissingRemarks is returned when a rejection carries no remarks
	ErrMissingRemarks = errors.New("remarks are required when rejecting")

	// ErrMissingPaymentFields is returned when a payment is recorded
	// without a payment mode or transaction reference
	ErrMissingPaymentFields = errors.New("payment mode and transaction reference are required")

	// ErrInvalidStage is returned for a stage outside 1..3
	ErrInvalidStage = errors.New("invalid stage")

	// ErrInvalidDecision is returned for a decision the stage does not support
	ErrInvalidDecision = errors.New("invalid decision")
)
