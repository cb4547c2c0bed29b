package cases

import "testing"

func TestCanTransition_ForwardEdges(t *testing.T) {
	edges := []struct{ from, to string }{
		{StatusDraft, StatusPlanning},
		{StatusPlanning, StatusReadyForScheduling},
		{StatusReadyForScheduling, StatusScheduled},
		{StatusScheduled, StatusInTheatre},
		{StatusInTheatre, StatusRecovery},
		{StatusRecovery, StatusCompleted},
	}
	for _, e := range edges {
		if !CanTransition(e.from, e.to) {
			t.Errorf("expected %s -> %s to be allowed", e.from, e.to)
		}
	}
}

func TestCanTransition_NoSkipping(t *testing.T) {
	bad := []struct{ from, to string }{
		{StatusDraft, StatusReadyForScheduling},
		{StatusDraft, StatusScheduled},
		{StatusPlanning, StatusScheduled},
		{StatusScheduled, StatusRecovery},
		{StatusInTheatre, StatusCompleted},
	}
	for _, e := range bad {
		if CanTransition(e.from, e.to) {
			t.Errorf("expected %s -> %s to be rejected", e.from, e.to)
		}
	}
}

func TestCanTransition_NoBackwardEdges(t *testing.T) {
	bad := []struct{ from, to string }{
		{StatusPlanning, StatusDraft},
		{StatusScheduled, StatusReadyForScheduling},
		{StatusRecovery, StatusInTheatre},
	}
	for _, e := range bad {
		if CanTransition(e.from, e.to) {
			t.Errorf("expected %s -> %s to be rejected", e.from, e.to)
		}
	}
}

func TestCanTransition_CancelFromAnyNonTerminal(t *testing.T) {
	for _, from := range []string{StatusDraft, StatusPlanning, StatusReadyForScheduling, StatusScheduled, StatusInTheatre, StatusRecovery} {
		if !CanTransition(from, StatusCancelled) {
			t.Errorf("expected %s -> cancelled to be allowed", from)
		}
	}
}

func TestCanTransition_TerminalStatesAreFinal(t *testing.T) {
	for _, from := range []string{StatusCompleted, StatusCancelled} {
		for _, to := range []string{StatusDraft, StatusPlanning, StatusScheduled, StatusCancelled, StatusCompleted} {
			if CanTransition(from, to) {
				t.Errorf("expected %s -> %s to be rejected", from, to)
			}
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal(StatusCompleted) || !IsTerminal(StatusCancelled) {
		t.Error("completed and cancelled should be terminal")
	}
	if IsTerminal(StatusRecovery) {
		t.Error("recovery should not be terminal")
	}
}
