package planning

// Snapshot is everything the readiness checklist looks at, flattened out of
// the plan, consent and image stores so evaluation itself stays pure.
type Snapshot struct {
	HasProcedurePlan  bool
	HasRiskFactors    bool
	HasAnesthesiaPlan bool
	HasSignedConsent  bool
	HasPreOpPhoto     bool
}

// ChecklistItem is one line of the readiness checklist.
type ChecklistItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// Evaluation is the result of running the checklist against a snapshot.
// Missing lists the keys of unfinished items in checklist order.
type Evaluation struct {
	Ready   bool            `json:"ready"`
	Items   []ChecklistItem `json:"items"`
	Missing []string        `json:"missing,omitempty"`
}

// checklist is declarative: adding a pre-operative requirement means adding
// a row here, nothing else. Order is fixed and drives Missing ordering.
var checklist = []struct {
	key   string
	label string
	done  func(Snapshot) bool
}{
	{"procedurePlan", "Procedure plan documented", func(s Snapshot) bool { return s.HasProcedurePlan }},
	{"riskFactors", "Risk factors assessed", func(s Snapshot) bool { return s.HasRiskFactors }},
	{"anesthesiaPlan", "Anesthesia plan documented", func(s Snapshot) bool { return s.HasAnesthesiaPlan }},
	{"signedConsent", "Consent form signed", func(s Snapshot) bool { return s.HasSignedConsent }},
	{"preOpPhoto", "Pre-operative photo uploaded", func(s Snapshot) bool { return s.HasPreOpPhoto }},
}

// Evaluate runs every checklist item against the snapshot. Ready is true
// only when all items are done.
func Evaluate(s Snapshot) Evaluation {
	ev := Evaluation{Ready: true}
	for _, item := range checklist {
		done := item.done(s)
		ev.Items = append(ev.Items, ChecklistItem{Key: item.key, Label: item.label, Done: done})
		if !done {
			ev.Ready = false
			ev.Missing = append(ev.Missing, item.key)
		}
	}
	return ev
}
