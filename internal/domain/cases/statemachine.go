package cases

// Case lifecycle statuses.
const (
	StatusDraft              = "draft"
	StatusPlanning           = "planning"
	StatusReadyForScheduling = "ready-for-scheduling"
	StatusScheduled          = "scheduled"
	StatusInTheatre          = "in-theatre"
	StatusRecovery           = "recovery"
	StatusCompleted          = "completed"
	StatusCancelled          = "cancelled"
)

var validCaseStatuses = map[string]bool{
	StatusDraft: true, StatusPlanning: true, StatusReadyForScheduling: true,
	StatusScheduled: true, StatusInTheatre: true, StatusRecovery: true,
	StatusCompleted: true, StatusCancelled: true,
}

// transitions is the forward edge set of the lifecycle graph. Cancellation
// is handled separately: any non-terminal status may move to cancelled.
var transitions = map[string][]string{
	StatusDraft:              {StatusPlanning},
	StatusPlanning:           {StatusReadyForScheduling},
	StatusReadyForScheduling: {StatusScheduled},
	StatusScheduled:          {StatusInTheatre},
	StatusInTheatre:          {StatusRecovery},
	StatusRecovery:           {StatusCompleted},
}

// IsTerminal reports whether no further transitions are allowed from status.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// CanTransition reports whether the edge from -> to exists in the lifecycle
// graph. Gate conditions (readiness, booking, recovery blockers) are checked
// by the service, not here.
func CanTransition(from, to string) bool {
	if IsTerminal(from) {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
