package forms

// IntraOpRecord is the typed slice of an intra-op form payload the recovery
// gate cares about.
type IntraOpRecord struct {
	FinalCountsCompleted        bool
	CountDiscrepancy            bool
	SignOutCompleted            bool
	PostopInstructionsConfirmed bool
	SpecimensLabeledConfirmed   bool
}

// IntraOpFromPayload pulls the gate flags out of a raw form payload. Absent
// or mistyped fields read as false, which fails closed.
func IntraOpFromPayload(data map[string]interface{}) IntraOpRecord {
	return IntraOpRecord{
		FinalCountsCompleted:        boolField(data, "finalCountsCompleted"),
		CountDiscrepancy:            boolField(data, "countDiscrepancy"),
		SignOutCompleted:            boolField(data, "signOutCompleted"),
		PostopInstructionsConfirmed: boolField(data, "postopInstructionsConfirmed"),
		SpecimensLabeledConfirmed:   boolField(data, "specimensLabeledConfirmed"),
	}
}

// EvaluateRecoveryGate returns the blocking reasons that keep a case from
// moving to recovery. Every check runs; the caller gets the full list, not
// the first failure. An empty slice means the gate passes.
//
// A count discrepancy blocks even when it was explained on the record:
// the explanation satisfies the document schema, not the safety gate.
func EvaluateRecoveryGate(rec IntraOpRecord) []string {
	var reasons []string
	if !rec.FinalCountsCompleted {
		reasons = append(reasons, "final instrument, sponge and sharps counts are not recorded")
	}
	if rec.CountDiscrepancy {
		reasons = append(reasons, "an unresolved count discrepancy is reported")
	}
	if !rec.SignOutCompleted {
		reasons = append(reasons, "nurse sign-out is not completed")
	}
	if !rec.PostopInstructionsConfirmed {
		reasons = append(reasons, "post-operative instructions are not confirmed")
	}
	if !rec.SpecimensLabeledConfirmed {
		reasons = append(reasons, "specimen labelling is not confirmed")
	}
	return reasons
}
