package types

import "fmt"

// Outcome is the classification assigned to one processed instance in a run.
type Outcome string

const (
	OutcomeSuccess Outcome = "success" // OutcomeSuccess indicates the instance accepted the login.
	OutcomeWarning Outcome = "warning" // OutcomeWarning indicates the page still looks like a login page after submit.
	OutcomeError   Outcome = "error"   // OutcomeError indicates a timeout, navigation failure, or unexpected failure.
)

// IsSuccess reports whether the outcome counts as a successful login.
func (o Outcome) IsSuccess() bool {
	return o == OutcomeSuccess
}

// IsValid reports whether o is one of the known outcomes.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeSuccess, OutcomeWarning, OutcomeError:
		return true
	}
	return false
}

// ParseOutcome converts a string into an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(s)
	if !o.IsValid() {
		return "", fmt.Errorf("invalid outcome: %s (must be 'success', 'warning', or 'error')", s)
	}
	return o, nil
}
