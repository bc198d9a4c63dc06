package dto

type OutcomeKind int

const (
	// OutcomeApplied - the message was processed and its effect is in place.
	OutcomeApplied OutcomeKind = iota
	// OutcomeSkipped - the message is not applicable or permanently invalid;
	// redelivery has no corrective value.
	OutcomeSkipped
	// OutcomeRetryable - processing failed in a way redelivery may fix.
	OutcomeRetryable
)

// Outcome is the per-message processing result. The dispatcher decides
// commit / redeliver / dead-letter from it instead of raise/swallow control flow.
type Outcome struct {
	Kind OutcomeKind
	Err  error
}

func Applied() Outcome {
	return Outcome{Kind: OutcomeApplied}
}

func Skipped(err error) Outcome {
	return Outcome{Kind: OutcomeSkipped, Err: err}
}

func Retryable(err error) Outcome {
	return Outcome{Kind: OutcomeRetryable, Err: err}
}
