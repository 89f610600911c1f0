package bridge

import "github.com/nucleus/mesh-bridge/internal/engine"

// AuditState is the outcome of one declared audit within one run.
type AuditState string

const (
	AuditPassed       AuditState = "passed"
	AuditFailed       AuditState = "failed"
	AuditNotEvaluated AuditState = "not_evaluated"
)

// AuditOutcome is the per-(model, audit) result extracted from a run's
// buffered events.
type AuditOutcome struct {
	ModelID string
	Audit   string
	State   AuditState
	Count   *int64
	Message string
}

// ExtractAuditOutcomes produces exactly one outcome per (model, audit) pair
// expected in the run: every declared, non-skipped audit of every selected
// model. An expected audit with no buffered event is not_evaluated, which is
// distinct from failed and never collapses into passed. Row counts and
// messages pass through opaquely.
func ExtractAuditOutcomes(selected []engine.ModelDescriptor, events *Collector) []AuditOutcome {
	var outcomes []AuditOutcome
	for _, m := range selected {
		if m.External() {
			continue
		}
		for _, a := range m.Audits {
			if a.Skip {
				continue
			}
			outcome := AuditOutcome{ModelID: m.ID, Audit: a.Name, State: AuditNotEvaluated}
			if res, ok := events.AuditResult(m.ID, a.Name); ok {
				outcome.Count = res.Count
				outcome.Message = res.Message
				switch {
				case res.Skipped:
					outcome.State = AuditNotEvaluated
				case res.Passed:
					outcome.State = AuditPassed
				default:
					outcome.State = AuditFailed
				}
			}
			outcomes = append(outcomes, outcome)
		}
	}
	return outcomes
}
