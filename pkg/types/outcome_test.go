package types

import (
	"encoding/json"
	"testing"
)

func TestOutcomeIsSuccess(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    bool
	}{
		{OutcomeSuccess, true},
		{OutcomeWarning, false},
		{OutcomeError, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			if got := tt.outcome.IsSuccess(); got != tt.want {
				t.Errorf("IsSuccess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseOutcome(t *testing.T) {
	for _, s := range []string{"success", "warning", "error"} {
		o, err := ParseOutcome(s)
		if err != nil {
			t.Fatalf("ParseOutcome(%q) returned error: %v", s, err)
		}
		if string(o) != s {
			t.Errorf("ParseOutcome(%q) = %q", s, o)
		}
	}

	if _, err := ParseOutcome("Success"); err == nil {
		t.Error("expected error for mixed-case outcome")
	}
	if _, err := ParseOutcome(""); err == nil {
		t.Error("expected error for empty outcome")
	}
}

func TestOutcomeJSON(t *testing.T) {
	data, err := json.Marshal(OutcomeWarning)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"warning"` {
		t.Errorf("Marshal = %s, want \"warning\"", data)
	}
}
