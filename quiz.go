package flashtutor

import (
	"sync"
)

// QuizPhase is the lifecycle stage of a quiz session.
type QuizPhase string

const (
	PhaseNotStarted QuizPhase = "not_started"
	PhaseInProgress QuizPhase = "in_progress"
	PhaseFinished   QuizPhase = "finished"
)

// CardResult records how one card went, in presentation order.
type CardResult struct {
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	Style      Style      `json:"style"`
	Difficulty Difficulty `json:"difficulty"`
	Correct    bool       `json:"correct"`
}

// QuizSnapshot is the read-only projection the presentation layer renders.
// Answer is populated only while the current card is revealed.
type QuizSnapshot struct {
	Phase      QuizPhase `json:"phase"`
	Position   int       `json:"position"`
	Total      int       `json:"total"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer,omitempty"`
	Revealed   bool      `json:"revealed"`
	Marked     bool      `json:"marked"`
	Correct    int       `json:"correct"`
	Incorrect  int       `json:"incorrect"`
	Accuracy   float64   `json:"accuracy"`
	Finished   bool      `json:"finished"`
}

// QuizSession is the state machine that walks one Deck. All mutating
// operations are serialized with a per-session mutex, so a double-clicked UI
// action cannot corrupt the counts. The deck is owned exclusively by the
// session and never mutated.
type QuizSession struct {
	mu        sync.Mutex
	deck      Deck
	phase     QuizPhase
	position  int
	revealed  bool
	marked    bool
	correct   int
	incorrect int
	history   []CardResult
}

// NewQuizSession creates a session in the NotStarted phase.
func NewQuizSession() *QuizSession {
	return &QuizSession{phase: PhaseNotStarted}
}

// Start begins (or restarts) the quiz over the given deck. Valid from any
// phase; position, reveal state, and counts all reset.
func (s *QuizSession) Start(deck Deck) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(deck) == 0 {
		return ErrEmptyDeck
	}

	s.deck = deck
	s.phase = PhaseInProgress
	s.position = 0
	s.revealed = false
	s.marked = false
	s.correct = 0
	s.incorrect = 0
	s.history = nil
	return nil
}

// Reveal shows the current card's answer. Invalid when the answer is already
// revealed or the quiz is not in progress.
func (s *QuizSession) Reveal() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgress(); err != nil {
		return "", err
	}
	if s.revealed {
		return "", ErrAlreadyRevealed
	}
	s.revealed = true
	return s.deck[s.position].Answer, nil
}

// Mark scores the current card. It requires a prior Reveal and does not
// advance the position; advancing is Next's job. Marking the same card
// twice is rejected.
func (s *QuizSession) Mark(correct bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgress(); err != nil {
		return err
	}
	if !s.revealed {
		return ErrNotRevealed
	}
	if s.marked {
		return ErrAlreadyMarked
	}

	if correct {
		s.correct++
	} else {
		s.incorrect++
	}
	s.marked = true

	card := s.deck[s.position]
	s.history = append(s.history, CardResult{
		Question:   card.Question,
		Answer:     card.Answer,
		Style:      card.Style,
		Difficulty: card.Difficulty,
		Correct:    correct,
	})
	return nil
}

// Next advances to the following card, or finishes the quiz when the deck is
// exhausted. The current card must have been marked first.
func (s *QuizSession) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgress(); err != nil {
		return err
	}
	if !s.marked {
		return ErrNotMarked
	}

	s.position++
	s.revealed = false
	s.marked = false
	if s.position == len(s.deck) {
		s.phase = PhaseFinished
	}
	return nil
}

func (s *QuizSession) requireInProgress() error {
	switch s.phase {
	case PhaseNotStarted:
		return ErrQuizNotStarted
	case PhaseFinished:
		return ErrQuizFinished
	}
	return nil
}

// Accuracy is correct/(correct+incorrect). By convention it is 0 when
// nothing has been marked yet, never NaN.
func (s *QuizSession) Accuracy() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accuracyLocked()
}

func (s *QuizSession) accuracyLocked() float64 {
	answered := s.correct + s.incorrect
	if answered == 0 {
		return 0
	}
	return float64(s.correct) / float64(answered)
}

// Snapshot returns the current state for rendering. The returned value is a
// copy; no mutation through it can touch the session.
func (s *QuizSession) Snapshot() QuizSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := QuizSnapshot{
		Phase:     s.phase,
		Position:  s.position,
		Total:     len(s.deck),
		Revealed:  s.revealed,
		Marked:    s.marked,
		Correct:   s.correct,
		Incorrect: s.incorrect,
		Accuracy:  s.accuracyLocked(),
		Finished:  s.phase == PhaseFinished,
	}
	if s.phase == PhaseInProgress && s.position < len(s.deck) {
		snap.Question = s.deck[s.position].Question
		if s.revealed {
			snap.Answer = s.deck[s.position].Answer
		}
	}
	return snap
}

// History returns a copy of the per-card results recorded so far.
func (s *QuizSession) History() []CardResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]CardResult, len(s.history))
	copy(out, s.history)
	return out
}
