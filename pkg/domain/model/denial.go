package model

import (
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// Denial is the expected, user-facing refusal of an operation: permission
// refused, precondition unmet, duplicate submission, or illegal transition.
// It is a normal result, never logged as an error and never retried blindly.
type Denial struct {
	Code   types.ReasonCode
	Reason string
}

// NewDenial builds a denial with its machine code and human text
func NewDenial(code types.ReasonCode, reason string) *Denial {
	return &Denial{Code: code, Reason: reason}
}

// Decision is the outcome of a permission evaluation. The reason text is a
// first-class output: the UI shows it verbatim as the disabled-control
// tooltip.
type Decision struct {
	Allowed bool
	Code    types.ReasonCode
	Reason  string
}

// Allow returns an allowing decision
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision with its code and human-readable reason
func Deny(code types.ReasonCode, reason string) Decision {
	return Decision{Allowed: false, Code: code, Reason: reason}
}

// Denial converts a denying decision into a Denial result
func (d Decision) Denial() *Denial {
	if d.Allowed {
		return nil
	}
	return NewDenial(d.Code, d.Reason)
}
