package flashtutor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crlf to lf", "line one\r\nline two", "line one\nline two"},
		{"bare cr", "line one\rline two", "line one\nline two"},
		{"space runs collapse", "a \t  b", "a b"},
		{"blank line runs collapse", "a\n\n\n\nb", "a\n\nb"},
		{"trimmed ends", "  text  \n", "text"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Preprocess(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := Preprocess("")
	assert.ErrorIs(t, err, ErrEmptySourceText)
	_, err = Preprocess(" \r\n \t ")
	assert.ErrorIs(t, err, ErrEmptySourceText)
}

func TestGeneratorOfflinePath(t *testing.T) {
	t.Parallel()

	gen := NewGenerator(nil, nil)
	deck, mode, transcript, err := gen.Generate(context.Background(), GenerationRequest{
		SourceText: bioSource,
		Count:      2,
		Style:      StyleQA,
		Difficulty: DifficultyEasy,
	})
	require.NoError(t, err)
	assert.Equal(t, ModeFallback, mode)
	assert.Empty(t, transcript, "the offline path has no backend transcript")
	assert.Len(t, deck, 2)
}

func TestGeneratorOfflineShortDeck(t *testing.T) {
	t.Parallel()

	gen := NewGenerator(nil, nil)
	deck, mode, _, err := gen.Generate(context.Background(), GenerationRequest{
		SourceText: bioSource,
		Count:      50,
		Style:      StyleQA,
		Difficulty: DifficultyEasy,
	})
	require.ErrorIs(t, err, ErrDeckShort)
	assert.Equal(t, ModeFallback, mode)
	assert.NotEmpty(t, deck, "the short deck still arrives alongside the error")
}

func TestGeneratorLLMPath(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{replies: []stubReply{{text: `[
		{"question":"What absorbs light?","answer":"Chlorophyll."},
		{"question":"What does photosynthesis produce?","answer":"Chemical energy."}
	]`}}}

	gen := NewGenerator(backend, nil)
	deck, mode, transcript, err := gen.Generate(context.Background(), GenerationRequest{
		SourceText: bioSource,
		Count:      2,
		Style:      StyleQA,
		Difficulty: DifficultyMedium,
	})
	require.NoError(t, err)
	assert.Equal(t, ModeLLM, mode)
	assert.NotEmpty(t, transcript)
	assert.Len(t, deck, 2)
}

func TestGeneratorNeverSwitchesModesOnBackendFailure(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{replies: []stubReply{{err: &BackendError{Kind: BackendKindTransport}}}}

	gen := NewGenerator(backend, nil)
	deck, mode, _, err := gen.Generate(context.Background(), GenerationRequest{
		SourceText: bioSource,
		Count:      2,
		Style:      StyleQA,
		Difficulty: DifficultyMedium,
	})
	require.Error(t, err)
	assert.Equal(t, ModeLLM, mode, "the caller decides about fallback, the generator never does")
	assert.Nil(t, deck)

	var be *BackendError
	assert.ErrorAs(t, err, &be)
}

func TestGeneratorRejectsEmptySource(t *testing.T) {
	t.Parallel()

	gen := NewGenerator(nil, nil)
	_, _, _, err := gen.Generate(context.Background(), GenerationRequest{
		SourceText: "   \n ",
		Count:      2,
		Style:      StyleQA,
		Difficulty: DifficultyEasy,
	})
	assert.ErrorIs(t, err, ErrEmptySourceText)
}

func TestGeneratorPreprocessesBeforeGenerating(t *testing.T) {
	t.Parallel()

	// Windows line endings and ragged spacing must not change the result.
	messy := "Photosynthesis  converts sunlight into chemical energy.\r\nPlants use\tchlorophyll to absorb light."

	gen := NewGenerator(nil, nil)
	fromMessy, _, _, err := gen.Generate(context.Background(), GenerationRequest{
		SourceText: messy, Count: 2, Style: StyleQA, Difficulty: DifficultyEasy,
	})
	require.NoError(t, err)

	fromClean, _, _, err := gen.Generate(context.Background(), GenerationRequest{
		SourceText: bioSource, Count: 2, Style: StyleQA, Difficulty: DifficultyEasy,
	})
	require.NoError(t, err)

	assert.Equal(t, fromClean.Questions(), fromMessy.Questions())
}

func TestBackendErrorMessages(t *testing.T) {
	t.Parallel()

	kinds := []BackendErrorKind{BackendKindAuth, BackendKindQuota, BackendKindTimeout, BackendKindTransport}
	seen := make(map[string]bool)
	for _, kind := range kinds {
		msg := (&BackendError{Kind: kind}).UserMessage()
		assert.NotEmpty(t, msg)
		assert.False(t, seen[msg], "each failure kind needs its own message, kind %s", kind)
		seen[msg] = true
	}

	timeout := &BackendError{Kind: BackendKindTimeout}
	assert.ErrorIs(t, timeout, ErrBackendTimeout)
	transport := &BackendError{Kind: BackendKindTransport}
	assert.NotErrorIs(t, transport, ErrBackendTimeout)
}
