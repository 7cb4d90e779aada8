package booking

import "encoding/json"

// SubmitState is a step of one submission attempt.
type SubmitState string

const (
	StateIdle             SubmitState = "idle"
	StateValidating       SubmitState = "validating"
	StateSending          SubmitState = "sending"
	StateAccepted         SubmitState = "accepted"
	StateRejected         SubmitState = "rejected"
	StateTransportFailure SubmitState = "transport_failure"
)

// Terminal reports whether the state ends an attempt.
func (s SubmitState) Terminal() bool {
	switch s {
	case StateAccepted, StateRejected, StateTransportFailure:
		return true
	}
	return false
}

// OutcomeKind tags an Outcome.
type OutcomeKind string

const (
	OutcomeAccepted         OutcomeKind = "accepted"
	OutcomeRejected         OutcomeKind = "rejected"
	OutcomeTransportFailure OutcomeKind = "transport_failure"
)

// Outcome is the result of one submission attempt.
//
// Accepted carries the server's echo. Rejected carries a reason that can be
// shown to the user; Local is set when the request never left the process.
// TransportFailure carries the cause; the booking may or may not exist
// server-side.
type Outcome struct {
	Kind   OutcomeKind
	Echo   json.RawMessage
	Reason string
	Cause  error
	Local  bool

	// Request is the snapshot that was sent. Nil for local rejections.
	Request *Request
}

// Accepted builds an accepted outcome.
func Accepted(req Request, echo json.RawMessage) Outcome {
	return Outcome{Kind: OutcomeAccepted, Echo: echo, Request: &req}
}

// Rejected builds a server-side rejection.
func Rejected(req Request, reason string) Outcome {
	if reason == "" {
		reason = MsgGenericReject
	}
	return Outcome{Kind: OutcomeRejected, Reason: reason, Request: &req}
}

// RejectedLocally builds a rejection from the validation gate.
func RejectedLocally(err error) Outcome {
	return Outcome{Kind: OutcomeRejected, Reason: UserMessage(err), Cause: err, Local: true}
}

// TransportFailure builds an indeterminate failure.
func TransportFailure(req Request, cause error) Outcome {
	return Outcome{Kind: OutcomeTransportFailure, Cause: cause, Request: &req}
}

// State maps the outcome to its terminal submission state.
func (o Outcome) State() SubmitState {
	switch o.Kind {
	case OutcomeAccepted:
		return StateAccepted
	case OutcomeRejected:
		return StateRejected
	default:
		return StateTransportFailure
	}
}

// Message is the text to show the user.
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeAccepted:
		return MsgAccepted
	case OutcomeRejected:
		return o.Reason
	default:
		return MsgTransport
	}
}

// Retryable reports whether the user should be invited to try again.
func (o Outcome) Retryable() bool {
	return o.Kind == OutcomeTransportFailure
}
