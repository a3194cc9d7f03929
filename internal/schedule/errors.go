package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// ErrActivityNotFound is returned when an operation names an unknown activity.
var ErrActivityNotFound = errors.New("activity not found")

// CycleKind tells which graph a cycle was found in.
type CycleKind string

const (
	CyclePredecessor CycleKind = "predecessor"
	CycleParent      CycleKind = "parent"
)

// CyclicDependencyError is fatal: no partial schedule is computed.
type CyclicDependencyError struct {
	Kind CycleKind
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("%s cycle detected: %s", e.Kind, strings.Join(e.Path, " -> "))
}

// InvalidDateError reports a malformed date. Callers treat the date as absent.
type InvalidDateError struct {
	ActivityID string
	Field      string
	Value      string
	Err        error
}

func (e *InvalidDateError) Error() string {
	if e.ActivityID == "" {
		return fmt.Sprintf("invalid date %q", e.Value)
	}
	return fmt.Sprintf("activity %s: invalid %s %q", e.ActivityID, e.Field, e.Value)
}

func (e *InvalidDateError) Unwrap() error { return e.Err }

// OrphanedReferenceWarning reports a reference to an activity that does not
// exist. The reference is dropped and computation continues.
type OrphanedReferenceWarning struct {
	ActivityID string
	Field      string // "predecessor", "successor" or "parent"
	MissingID  string
}

func (e *OrphanedReferenceWarning) Error() string {
	return fmt.Sprintf("activity %s: %s %s does not exist (reference dropped)", e.ActivityID, e.Field, e.MissingID)
}

// ValidationError is a fatal problem with the shape of the input.
type ValidationError struct {
	ActivityID string
	Reason     string
}

func (e *ValidationError) Error() string {
	if e.ActivityID == "" {
		return "invalid schedule: " + e.Reason
	}
	return fmt.Sprintf("invalid activity %s: %s", e.ActivityID, e.Reason)
}

// IsFatal reports whether err must abort the edit that produced it.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var cyc *CyclicDependencyError
	var val *ValidationError
	if errors.As(err, &cyc) || errors.As(err, &val) {
		return true
	}
	var date *InvalidDateError
	var orphan *OrphanedReferenceWarning
	if errors.As(err, &date) || errors.As(err, &orphan) {
		return false
	}
	return true
}
