// Package numeric defines the typed failure values shared by the solar math
// packages. Every mathematical precondition violation or floating-point
// overflow in the computational chain surfaces as one of these types so that
// callers can attribute the failure to a specific quantity.
package numeric

import (
	"fmt"
	"math"
)

// DomainError reports a violated mathematical precondition, such as an
// inverse-trig argument outside [-1, 1] or a fractional power of a
// non-positive base.
type DomainError struct {
	Quantity string  // name of the quantity whose precondition failed
	Value    float64 // the offending value
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("domain error: %s = %g is outside the valid domain", e.Quantity, e.Value)
}

// OverflowError reports floating-point overflow caused by an extreme input,
// such as a very large year or elevation.
type OverflowError struct {
	Quantity string  // name of the quantity that overflowed
	Value    float64 // the input that caused the overflow
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("numeric overflow: %s overflowed for input %g", e.Quantity, e.Value)
}

// ComputationError reports a failed intermediate term in a composite model,
// identifying which term produced a non-finite or undefined result.
type ComputationError struct {
	Term  string // name of the intermediate term that failed
	Cause error  // underlying domain or overflow error, if any
}

func (e *ComputationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("computation failed at term %s: %v", e.Term, e.Cause)
	}
	return fmt.Sprintf("computation failed at term %s: result is not finite", e.Term)
}

func (e *ComputationError) Unwrap() error {
	return e.Cause
}

// CheckFinite returns a typed error for v when it is not an ordinary float:
// an OverflowError when v is infinite, a DomainError when v is NaN.
func CheckFinite(quantity string, v float64) error {
	if math.IsNaN(v) {
		return &DomainError{Quantity: quantity, Value: v}
	}
	if math.IsInf(v, 0) {
		return &OverflowError{Quantity: quantity, Value: v}
	}
	return nil
}
