package flashtutor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bioSource = "Photosynthesis converts sunlight into chemical energy. Plants use chlorophyll to absorb light."

func TestGenerateOfflinePhotosynthesis(t *testing.T) {
	t.Parallel()

	deck, err := GenerateOffline(bioSource, 2, StyleQA, DifficultyEasy)
	require.NoError(t, err)
	require.Len(t, deck, 2)

	assert.Equal(t, "What does Photosynthesis do?", deck[0].Question)
	assert.Equal(t, "converts sunlight into chemical energy", deck[0].Answer)
	assert.Equal(t, "What does Plants do?", deck[1].Question)
	assert.Equal(t, "use chlorophyll to absorb light", deck[1].Answer)

	assert.NotEqual(t, deck[0].Question, deck[1].Question)
	for _, card := range deck {
		assert.Equal(t, StyleQA, card.Style)
		assert.Equal(t, DifficultyEasy, card.Difficulty)
		assert.NoError(t, card.Validate(bioSource))
	}
}

func TestGenerateOfflineDeterministic(t *testing.T) {
	t.Parallel()

	source := "The cell membrane is a selective barrier. Mitochondria produce ATP through cellular respiration.\n" +
		"Ribosomes are the sites of protein synthesis. The nucleus contains the genetic material of the cell."

	for _, style := range []Style{StyleQA, StyleDefinition, StyleCloze} {
		first, err := GenerateOffline(source, 4, style, DifficultyMedium)
		require.NoError(t, err)
		second, err := GenerateOffline(source, 4, style, DifficultyMedium)
		require.NoError(t, err)
		assert.Equal(t, first, second, "style %s must produce identical decks for identical input", style)
	}
}

func TestGenerateOfflineClozeBlankPlacement(t *testing.T) {
	t.Parallel()

	source := "Photosynthesis converts sunlight into chemical energy."

	tests := []struct {
		difficulty Difficulty
		question   string
		answer     string
	}{
		{DifficultyEasy, "Photosynthesis converts sunlight into chemical ____.", "energy"},
		{DifficultyMedium, "____ converts sunlight into chemical energy.", "Photosynthesis"},
		{DifficultyHard, "____ converts sunlight into chemical energy.", "Photosynthesis"},
	}
	for _, tc := range tests {
		deck, err := GenerateOffline(source, 1, StyleCloze, tc.difficulty)
		require.NoError(t, err)
		require.Len(t, deck, 1, "difficulty %s", tc.difficulty)

		card := deck[0]
		assert.Equal(t, tc.question, card.Question, "difficulty %s", tc.difficulty)
		assert.Equal(t, tc.answer, card.Answer, "difficulty %s", tc.difficulty)
		assert.Equal(t, 1, strings.Count(card.Question, ClozeBlank))
		assert.NotContains(t, card.Answer, ClozeBlank)
	}
}

func TestGenerateOfflineDefinitionSeparator(t *testing.T) {
	t.Parallel()

	source := "Mitochondria: the powerhouse of the cell."

	deck, err := GenerateOffline(source, 1, StyleDefinition, DifficultyEasy)
	require.NoError(t, err)
	require.Len(t, deck, 1)
	assert.Equal(t, "What is Mitochondria?", deck[0].Question)
	assert.Equal(t, "the powerhouse of the cell", deck[0].Answer)

	deck, err = GenerateOffline(source, 1, StyleDefinition, DifficultyHard)
	require.NoError(t, err)
	require.Len(t, deck, 1)
	assert.Equal(t, "Give the precise definition of Mitochondria.", deck[0].Question)
}

func TestGenerateOfflineLinkingVerbQuestion(t *testing.T) {
	t.Parallel()

	source := "The cell membrane is a selective barrier."

	deck, err := GenerateOffline(source, 1, StyleQA, DifficultyEasy)
	require.NoError(t, err)
	require.Len(t, deck, 1)
	assert.Equal(t, "What is The cell membrane?", deck[0].Question)
	assert.Equal(t, "a selective barrier", deck[0].Answer)
}

func TestGenerateOfflineDifficultyPhrasing(t *testing.T) {
	t.Parallel()

	source := "Mitochondria produce ATP through cellular respiration."

	easy, err := GenerateOffline(source, 1, StyleQA, DifficultyEasy)
	require.NoError(t, err)
	medium, err := GenerateOffline(source, 1, StyleQA, DifficultyMedium)
	require.NoError(t, err)
	hard, err := GenerateOffline(source, 1, StyleQA, DifficultyHard)
	require.NoError(t, err)

	require.Len(t, easy, 1)
	require.Len(t, medium, 1)
	require.Len(t, hard, 1)

	assert.Equal(t, "What does Mitochondria do?", easy[0].Question)
	assert.Equal(t, "Describe what Mitochondria does.", medium[0].Question)
	assert.Equal(t, "State what the material says about Mitochondria.", hard[0].Question)
	assert.Equal(t, source, hard[0].Answer, "hard keeps the sentence verbatim")
}

func TestGenerateOfflineDeduplicatesRepeatedSentences(t *testing.T) {
	t.Parallel()

	source := "Plants use chlorophyll to absorb light. Plants use chlorophyll to absorb light."

	deck, err := GenerateOffline(source, 5, StyleQA, DifficultyEasy)
	require.NoError(t, err)
	assert.Len(t, deck, 1, "a repeated sentence must yield one card, not two")
}

func TestGenerateOfflineSkipsShortFragments(t *testing.T) {
	t.Parallel()

	source := "Too short. Ok.\nRibosomes are the sites of protein synthesis."

	deck, err := GenerateOffline(source, 3, StyleQA, DifficultyEasy)
	require.NoError(t, err)
	require.Len(t, deck, 1)
	assert.Contains(t, deck[0].Question, "Ribosomes")
}

func TestGenerateOfflineRejectsBadRequests(t *testing.T) {
	t.Parallel()

	_, err := GenerateOffline(bioSource, 0, StyleQA, DifficultyEasy)
	assert.ErrorIs(t, err, ErrInvalidCardCount)

	_, err = GenerateOffline("   \n\t ", 2, StyleQA, DifficultyEasy)
	assert.ErrorIs(t, err, ErrEmptySourceText)

	_, err = GenerateOffline(bioSource, 2, Style("haiku"), DifficultyEasy)
	assert.ErrorIs(t, err, ErrInvalidStyle)

	_, err = GenerateOffline(bioSource, 2, StyleQA, Difficulty("brutal"))
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
}

func TestGenerateOfflineAllCardsValidate(t *testing.T) {
	t.Parallel()

	source := "The cell membrane is a selective barrier. Mitochondria produce ATP through cellular respiration.\n" +
		"Ribosomes are the sites of protein synthesis. Chloroplasts contain chlorophyll for photosynthesis.\n" +
		"Enzymes are proteins that catalyze chemical reactions."

	for _, style := range []Style{StyleQA, StyleDefinition, StyleCloze} {
		for _, difficulty := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
			deck, err := GenerateOffline(source, 5, style, difficulty)
			require.NoError(t, err)
			require.NotEmpty(t, deck, "style %s difficulty %s", style, difficulty)
			for _, card := range deck {
				assert.NoError(t, card.Validate(source), "style %s difficulty %s card %q", style, difficulty, card.Question)
				assert.Equal(t, style, card.Style)
			}
		}
	}
}
