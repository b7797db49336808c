package lifecycle

import (
	"testing"

	"essenza/internal/domain/document"
)

func TestCanTransition_Trade(t *testing.T) {
	tests := []struct {
		from document.Status
		to   document.Status
		want bool
	}{
		{document.StatusDraft, document.StatusSubmitted, true},
		{document.StatusSubmitted, document.StatusApproved, true},
		{document.StatusSubmitted, document.StatusRejected, true},
		{document.StatusApproved, document.StatusCompleted, true},

		{document.StatusDraft, document.StatusApproved, false},
		{document.StatusDraft, document.StatusCompleted, false},
		{document.StatusSubmitted, document.StatusCompleted, false},
		{document.StatusApproved, document.StatusRejected, false},
		{document.StatusRejected, document.StatusSubmitted, false},
		{document.StatusCompleted, document.StatusSubmitted, false},
		{document.StatusCompleted, document.StatusDraft, false},
	}

	for _, tt := range tests {
		if got := CanTransition(document.FamilyTrade, tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(trade, %s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCanTransition_Quality(t *testing.T) {
	outcomes := []document.Status{
		document.StatusPassed,
		document.StatusFailed,
		document.StatusRequiresRework,
	}

	// pending, failed and rework-flagged checks may reach any outcome
	for _, from := range []document.Status{document.StatusPending, document.StatusFailed, document.StatusRequiresRework} {
		for _, to := range outcomes {
			if !CanTransition(document.FamilyQuality, from, to) {
				t.Errorf("CanTransition(quality, %s, %s) = false, want true", from, to)
			}
		}
	}

	// passed is terminal
	for _, to := range outcomes {
		if CanTransition(document.FamilyQuality, document.StatusPassed, to) {
			t.Errorf("CanTransition(quality, PASSED, %s) = true, want false", to)
		}
	}
}

func TestCheckTransition_TerminalStates(t *testing.T) {
	for _, terminal := range []document.Status{document.StatusRejected, document.StatusCompleted} {
		if !IsTerminal(document.FamilyTrade, terminal) {
			t.Errorf("IsTerminal(trade, %s) = false, want true", terminal)
		}
		appErr := CheckTransition(document.FamilyTrade, terminal, document.StatusSubmitted)
		if appErr == nil {
			t.Fatalf("expected ILLEGAL_TRANSITION from %s", terminal)
		}
		if appErr.Details["from"] != string(terminal) || appErr.Details["to"] != string(document.StatusSubmitted) {
			t.Errorf("transition details = %v", appErr.Details)
		}
	}
}

func TestBatchHasNoMachine(t *testing.T) {
	if CanTransition(document.FamilyBatch, document.StatusDraft, document.StatusCompleted) {
		t.Error("batch operations must not have a state machine")
	}
	if NextStatuses(document.FamilyBatch, document.StatusDraft) != nil {
		t.Error("expected no reachable statuses for batch family")
	}
}
