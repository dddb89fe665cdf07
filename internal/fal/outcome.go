package fal

import "encoding/json"

// OutcomeState tags the result of one submission or poll attempt.
type OutcomeState int

const (
	// OutcomeReady means a playable URL was found.
	OutcomeReady OutcomeState = iota
	// OutcomePending means the job was accepted but has no result yet. The
	// RequestID may be empty when the upstream returned no trackable handle.
	OutcomePending
	// OutcomeFailed means the upstream rejected or timed out on the call.
	OutcomeFailed
)

// Outcome is the uniform result of talking to the upstream: a playable URL,
// an accepted-but-unfinished job, or an upstream failure.
type Outcome struct {
	State     OutcomeState
	URL       string
	RequestID string
	// Status is the upstream HTTP status for failures; Message carries the
	// upstream-supplied error detail.
	Status  int
	Message string
	// Payload echoes the last upstream body for the client's benefit.
	Payload json.RawMessage
}

func readyOutcome(url string, payload json.RawMessage) Outcome {
	return Outcome{State: OutcomeReady, URL: url, Payload: payload}
}

func pendingOutcome(requestID string, payload json.RawMessage) Outcome {
	return Outcome{State: OutcomePending, RequestID: requestID, Payload: payload}
}

func failedOutcome(status int, message string) Outcome {
	return Outcome{State: OutcomeFailed, Status: status, Message: message}
}
