package agenda

import "fmt"

// Phase names the step of a materialization that failed.
type Phase string

const (
	PhaseResolution Phase = "resolution"
	PhaseEvaluation Phase = "evaluation"
	PhaseStorage    Phase = "storage"
)

// PhaseError reports which phase failed. EventID is set for evaluation
// failures.
type PhaseError struct {
	Phase   Phase
	EventID int64
	Err     error
}

func (e *PhaseError) Error() string {
	if e.EventID != 0 {
		return fmt.Sprintf("agenda %s (event %d): %v", e.Phase, e.EventID, e.Err)
	}
	return fmt.Sprintf("agenda %s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
