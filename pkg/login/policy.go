package login

import (
	"strings"

	"github.com/entrhq/pdi-login/pkg/types"
)

// hibernationMarkers are matched against lowercased page content.
var hibernationMarkers = []string{"hibernating", "wake your instance"}

// IsHibernating reports whether the page content shows the instance is asleep.
func IsHibernating(content string) bool {
	lower := strings.ToLower(content)
	for _, marker := range hibernationMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// DefaultTitleMarkers are title substrings that mean the login page is still shown.
var DefaultTitleMarkers = []string{"Sign In", "Login"}

// Policy classifies the page reached after submitting credentials. It is a
// DOM heuristic: a success page whose title happens to contain a marker is
// misclassified.
type Policy struct {
	// FailureOutcome is returned when the page looks like a failed login
	FailureOutcome types.Outcome

	// TitleMarkers are matched case-sensitively against the page title
	TitleMarkers []string
}

// DefaultPolicy returns the policy with the standard title markers.
func DefaultPolicy(failure types.Outcome) Policy {
	if failure == "" {
		failure = types.OutcomeWarning
	}
	return Policy{
		FailureOutcome: failure,
		TitleMarkers:   DefaultTitleMarkers,
	}
}

// Classify returns the outcome for the observed title and inline error.
func (p Policy) Classify(title string, errorVisible bool, errorText string) types.Outcome {
	if p.LooksLikeFailure(title, errorVisible, errorText) {
		return p.FailureOutcome
	}
	return types.OutcomeSuccess
}

// LooksLikeFailure reports whether the title still carries a login marker or
// an inline error message was shown.
func (p Policy) LooksLikeFailure(title string, errorVisible bool, errorText string) bool {
	if errorVisible || strings.TrimSpace(errorText) != "" {
		return true
	}
	for _, marker := range p.TitleMarkers {
		if strings.Contains(title, marker) {
			return true
		}
	}
	return false
}
