package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for store and integrator setup.
var (
	// ErrCapacityExceeded indicates an Add on a full store. The store is unchanged.
	ErrCapacityExceeded = errors.New("dynamo: store capacity exceeded")

	// ErrInvalidID indicates access to a slot outside [0, count).
	ErrInvalidID = errors.New("dynamo: particle id out of range")

	// ErrInvalidCapacity indicates a non-positive store capacity.
	ErrInvalidCapacity = errors.New("dynamo: capacity must be positive")

	// ErrInvalidProfile indicates an empty or non-finite acceleration profile.
	ErrInvalidProfile = errors.New("dynamo: invalid acceleration profile")

	// ErrInvalidParams indicates integrator parameters outside valid range.
	ErrInvalidParams = errors.New("dynamo: integrator parameters out of valid bounds")
)

// InvalidIDError is the panic value for out-of-range accessor calls.
type InvalidIDError struct {
	ID    int
	Count int
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("%s: id %d, count %d", ErrInvalidID.Error(), e.ID, e.Count)
}

func (e *InvalidIDError) Unwrap() error {
	return ErrInvalidID
}
