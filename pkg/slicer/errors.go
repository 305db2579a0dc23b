package slicer

import (
	"errors"
	"fmt"
)

// Kind categorizes a SplitError.
type Kind int

const (
	// KindZeroBudget indicates the resolved budget is zero.
	KindZeroBudget Kind = iota + 1
	// KindBudgetExceedsSourceSize indicates the budget is larger than the source.
	KindBudgetExceedsSourceSize
	// KindLineExceedsBudget indicates a line that no chunk can hold.
	KindLineExceedsBudget
	// KindUnknownUnit indicates an unrecognized size unit.
	KindUnknownUnit
)

func (k Kind) String() string {
	switch k {
	case KindZeroBudget:
		return "zero_budget"
	case KindBudgetExceedsSourceSize:
		return "budget_exceeds_source_size"
	case KindLineExceedsBudget:
		return "line_exceeds_budget"
	case KindUnknownUnit:
		return "unknown_unit"
	default:
		return "unknown"
	}
}

// SplitError is a user-correctable input error. A split that returns one
// produced no chunks.
type SplitError struct {
	Kind    Kind
	Message string
	Detail  string
	Cause   error
}

func (e *SplitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *SplitError) Unwrap() error {
	return e.Cause
}

// Title is the short heading shown to users alongside Detail.
func (e *SplitError) Title() string {
	switch e.Kind {
	case KindZeroBudget:
		return "Invalid chunk size"
	case KindBudgetExceedsSourceSize:
		return "Size is too large"
	case KindLineExceedsBudget:
		return "Size is too small"
	case KindUnknownUnit:
		return "Unknown unit"
	default:
		return "Split failed"
	}
}

// IsKind reports whether err is a SplitError of the given kind.
func IsKind(err error, kind Kind) bool {
	var splitErr *SplitError
	if errors.As(err, &splitErr) {
		return splitErr.Kind == kind
	}
	return false
}

func newError(kind Kind, message, detail string, cause error) *SplitError {
	return &SplitError{Kind: kind, Message: message, Detail: detail, Cause: cause}
}
