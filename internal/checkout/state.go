package checkout

// State is a step of one checkout attempt.
type State string

const (
	StateIdle                 State = "idle"
	StateValidating           State = "validating"
	StateInvalid              State = "invalid"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateSubmitting           State = "submitting"
	StateLocalCommitted       State = "local_committed"
	StateRemoteSyncAttempted  State = "remote_sync_attempted"
	StateCleared              State = "cleared"
)

// canSubmit lists the states a new Submit may start from. Submitting again
// while awaiting confirmation re-validates and keeps the tx_ref.
var canSubmit = map[State]bool{
	StateIdle:                 true,
	StateAwaitingConfirmation: true,
	StateCleared:              true,
}
