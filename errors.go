package flashtutor

import (
	"errors"
	"fmt"
)

// Input errors. These are rejected locally and never retried; the user has
// to fix the input.
var (
	// ErrEmptySourceText is returned when the study material is empty or
	// whitespace-only.
	ErrEmptySourceText = errors.New("study material is empty")

	// ErrSourceTooShort is returned by the presentation layers when the study
	// material is under MinSourceChars. The core generators do not enforce it.
	ErrSourceTooShort = errors.New("study material is too short to generate useful flashcards")

	// ErrInvalidCardCount is returned when the requested card count is not positive.
	ErrInvalidCardCount = errors.New("card count must be at least 1")

	// ErrInvalidStyle is returned when a style string is not one of qa, definition, cloze.
	ErrInvalidStyle = errors.New("unknown flashcard style")

	// ErrInvalidDifficulty is returned when a difficulty string is not one of easy, medium, hard.
	ErrInvalidDifficulty = errors.New("unknown difficulty")
)

// Validation errors. These surface after the repair bound is exhausted.
var (
	// ErrMalformedPayload is returned when no parseable card array was found
	// in any model output, including the repair attempt.
	ErrMalformedPayload = errors.New("no parseable card data in model output")

	// ErrInsufficientValidCards is returned when, after the repair bound,
	// not a single card survived validation.
	ErrInsufficientValidCards = errors.New("model output contained no usable cards")

	// ErrDeckShort flags a deck that is valid but smaller than the requested
	// count. The deck accompanying this error is still usable.
	ErrDeckShort = errors.New("deck is short of the requested card count")
)

// Quiz state errors. Correct UI wiring never triggers these; they are
// reported instead of crashing the session.
var (
	ErrEmptyDeck       = errors.New("cannot start a quiz with an empty deck")
	ErrQuizNotStarted  = errors.New("quiz has not been started")
	ErrQuizFinished    = errors.New("quiz is already finished")
	ErrAlreadyRevealed = errors.New("answer is already revealed")
	ErrNotRevealed     = errors.New("reveal the answer before marking")
	ErrAlreadyMarked   = errors.New("current card is already marked")
	ErrNotMarked       = errors.New("mark the current card before moving on")
)

// ErrBackendTimeout matches any BackendError whose kind is timeout, via
// errors.Is. Callers use it to distinguish a hung model call from other
// backend failures.
var ErrBackendTimeout = errors.New("model request timed out")

// BackendErrorKind categorizes failures of the generative backend.
type BackendErrorKind string

const (
	BackendKindAuth      BackendErrorKind = "auth"
	BackendKindQuota     BackendErrorKind = "quota"
	BackendKindTimeout   BackendErrorKind = "timeout"
	BackendKindTransport BackendErrorKind = "transport"
)

// BackendError is the only error shape that crosses the generative backend
// boundary. It keeps the kind plus a brief cause so the presentation layer
// can render a specific message; raw transport errors stay wrapped inside.
type BackendError struct {
	Kind  BackendErrorKind
	Cause error
}

func (e *BackendError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("backend %s error", e.Kind)
	}
	return fmt.Sprintf("backend %s error: %v", e.Kind, e.Cause)
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrBackendTimeout) recognize timeout-kind errors.
func (e *BackendError) Is(target error) bool {
	return target == ErrBackendTimeout && e.Kind == BackendKindTimeout
}

// UserMessage renders a short, non-generic message for each backend failure
// kind, suitable for direct display.
func (e *BackendError) UserMessage() string {
	switch e.Kind {
	case BackendKindAuth:
		return "The model rejected the API key. Check OPENAI_API_KEY."
	case BackendKindQuota:
		return "The model reported a rate or quota limit. Wait a moment and try again, or use offline generation."
	case BackendKindTimeout:
		return "The model did not answer within the configured timeout. Try again, or use offline generation."
	default:
		return "Could not reach the model. Check your network, or use offline generation."
	}
}
