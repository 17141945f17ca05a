package quiz

import (
	"context"
	"errors"
)

var (
	ErrEmptyBank        = errors.New("question bank is empty")
	ErrStoreUnavailable = errors.New("session store unavailable")
)

// State is the phase of a user's quiz dialogue. It is persisted verbatim
// in the session store, so the values are stable strings.
type State string

const (
	StateNewQuestion State = "new_question"
	StateAnswering   State = "answering"
)

// EventKind classifies an inbound user message. The transport adapters
// map platform payloads onto these kinds; the engine never sees raw
// command labels.
type EventKind int

const (
	EventUnrecognized EventKind = iota
	EventStart
	EventNewQuestion
	EventScore
	EventSurrender
	EventSubmit
)

// Event is a classified inbound message.
type Event struct {
	Kind EventKind
	// Text carries the submitted answer for EventSubmit.
	Text string
	// Name is the sender's first name, used to personalize the greeting.
	Name string
}

// Question pairs a question text with its expected answer.
type Question struct {
	Text   string
	Answer string
}

// Reply is the engine's decision for one inbound event: the reply text
// to send and the state the user ends up in.
type Reply struct {
	State State
	Text  string
}

// QuestionProvider supplies questions for new-question requests.
type QuestionProvider interface {
	Sample() (Question, error)
}

// SessionStore persists per-user quiz state. Absent values are valid
// defaults, not errors: an unknown user is in StateNewQuestion with a
// zero score. SetActiveQuestion and ClearActiveQuestion are atomic with
// respect to concurrent reads for the same user, so a reader never
// observes the question without the answer or vice versa.
type SessionStore interface {
	GetState(ctx context.Context, userID string) (State, error)
	SetState(ctx context.Context, userID string, state State) error
	GetActiveQuestion(ctx context.Context, userID string) (question, answer string, ok bool, err error)
	SetActiveQuestion(ctx context.Context, userID, question, answer string) error
	ClearActiveQuestion(ctx context.Context, userID string) error
	IncrementScore(ctx context.Context, userID string) (int64, error)
	GetScore(ctx context.Context, userID string) (int64, error)
}
