package flashtutor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoCardDeck() Deck {
	return Deck{
		{
			Question:   "What does Photosynthesis do?",
			Answer:     "converts sunlight into chemical energy",
			Style:      StyleQA,
			Difficulty: DifficultyEasy,
		},
		{
			Question:   "What does Plants do?",
			Answer:     "use chlorophyll to absorb light",
			Style:      StyleQA,
			Difficulty: DifficultyEasy,
		},
	}
}

func TestQuizSessionFullRun(t *testing.T) {
	t.Parallel()

	session := NewQuizSession()
	require.Equal(t, PhaseNotStarted, session.Snapshot().Phase)

	require.NoError(t, session.Start(twoCardDeck()))

	snap := session.Snapshot()
	assert.Equal(t, PhaseInProgress, snap.Phase)
	assert.Equal(t, 0, snap.Position)
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, "What does Photosynthesis do?", snap.Question)
	assert.Empty(t, snap.Answer, "answer must stay hidden until revealed")

	// First card: reveal, mark correct.
	answer, err := session.Reveal()
	require.NoError(t, err)
	assert.Equal(t, "converts sunlight into chemical energy", answer)
	assert.Equal(t, answer, session.Snapshot().Answer)

	require.NoError(t, session.Mark(true))
	require.NoError(t, session.Next())

	snap = session.Snapshot()
	assert.Equal(t, PhaseInProgress, snap.Phase)
	assert.Equal(t, 1, snap.Position)
	assert.False(t, snap.Revealed, "reveal state must reset on advance")
	assert.False(t, snap.Marked)

	// Second card: reveal, mark incorrect, finish.
	_, err = session.Reveal()
	require.NoError(t, err)
	require.NoError(t, session.Mark(false))
	require.NoError(t, session.Next())

	snap = session.Snapshot()
	assert.Equal(t, PhaseFinished, snap.Phase)
	assert.True(t, snap.Finished)
	assert.Equal(t, 1, snap.Correct)
	assert.Equal(t, 1, snap.Incorrect)
	assert.InDelta(t, 0.5, snap.Accuracy, 1e-9)

	history := session.History()
	require.Len(t, history, 2)
	assert.True(t, history[0].Correct)
	assert.False(t, history[1].Correct)
	assert.Equal(t, "What does Plants do?", history[1].Question)
}

func TestQuizSessionMarkBeforeReveal(t *testing.T) {
	t.Parallel()

	session := NewQuizSession()
	require.NoError(t, session.Start(twoCardDeck()))

	err := session.Mark(true)
	require.ErrorIs(t, err, ErrNotRevealed)

	snap := session.Snapshot()
	assert.Equal(t, 0, snap.Correct, "a rejected mark must not change the counts")
	assert.Equal(t, 0, snap.Incorrect)
	assert.Equal(t, 0, snap.Position)
	assert.Empty(t, session.History())
}

func TestQuizSessionDoubleOperations(t *testing.T) {
	t.Parallel()

	session := NewQuizSession()
	require.NoError(t, session.Start(twoCardDeck()))

	_, err := session.Reveal()
	require.NoError(t, err)
	_, err = session.Reveal()
	assert.ErrorIs(t, err, ErrAlreadyRevealed)

	require.NoError(t, session.Mark(true))
	assert.ErrorIs(t, session.Mark(false), ErrAlreadyMarked)

	snap := session.Snapshot()
	assert.Equal(t, 1, snap.Correct, "only the first mark may count")
	assert.Equal(t, 0, snap.Incorrect)
}

func TestQuizSessionNextRequiresMark(t *testing.T) {
	t.Parallel()

	session := NewQuizSession()
	require.NoError(t, session.Start(twoCardDeck()))

	assert.ErrorIs(t, session.Next(), ErrNotMarked)

	_, err := session.Reveal()
	require.NoError(t, err)
	assert.ErrorIs(t, session.Next(), ErrNotMarked, "reveal alone is not enough to advance")
}

func TestQuizSessionPhaseErrors(t *testing.T) {
	t.Parallel()

	session := NewQuizSession()

	_, err := session.Reveal()
	assert.ErrorIs(t, err, ErrQuizNotStarted)
	assert.ErrorIs(t, session.Mark(true), ErrQuizNotStarted)
	assert.ErrorIs(t, session.Next(), ErrQuizNotStarted)

	deck := twoCardDeck()[:1]
	require.NoError(t, session.Start(deck))
	_, err = session.Reveal()
	require.NoError(t, err)
	require.NoError(t, session.Mark(true))
	require.NoError(t, session.Next())

	_, err = session.Reveal()
	assert.ErrorIs(t, err, ErrQuizFinished)
	assert.ErrorIs(t, session.Mark(true), ErrQuizFinished)
	assert.ErrorIs(t, session.Next(), ErrQuizFinished)
}

func TestQuizSessionStartRejectsEmptyDeck(t *testing.T) {
	t.Parallel()

	session := NewQuizSession()
	assert.ErrorIs(t, session.Start(nil), ErrEmptyDeck)
	assert.ErrorIs(t, session.Start(Deck{}), ErrEmptyDeck)
	assert.Equal(t, PhaseNotStarted, session.Snapshot().Phase)
}

func TestQuizSessionRestartResets(t *testing.T) {
	t.Parallel()

	session := NewQuizSession()
	require.NoError(t, session.Start(twoCardDeck()))
	_, err := session.Reveal()
	require.NoError(t, err)
	require.NoError(t, session.Mark(false))

	// Restart mid-run over a fresh deck.
	require.NoError(t, session.Start(twoCardDeck()[:1]))

	snap := session.Snapshot()
	assert.Equal(t, PhaseInProgress, snap.Phase)
	assert.Equal(t, 0, snap.Position)
	assert.Equal(t, 1, snap.Total)
	assert.Equal(t, 0, snap.Correct)
	assert.Equal(t, 0, snap.Incorrect)
	assert.False(t, snap.Revealed)
	assert.Empty(t, session.History())
}

func TestQuizSessionAccuracyZeroConvention(t *testing.T) {
	t.Parallel()

	session := NewQuizSession()
	assert.Zero(t, session.Accuracy(), "accuracy is 0 before any card is marked, never NaN")

	require.NoError(t, session.Start(twoCardDeck()))
	assert.Zero(t, session.Accuracy())

	_, err := session.Reveal()
	require.NoError(t, err)
	require.NoError(t, session.Mark(false))
	assert.Zero(t, session.Accuracy(), "all-incorrect is a real 0, same value as unanswered")
}
