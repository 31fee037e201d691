package flashtutor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"OPENAI_API_KEY", "OPENAI_MODEL",
		"FLASHTUTOR_USE_LLM", "FLASHTUTOR_CARD_COUNT",
		"FLASHTUTOR_STYLE", "FLASHTUTOR_DIFFICULTY",
		"FLASHTUTOR_BACKEND_TIMEOUT_SECONDS",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.UseLLM, "no API key means offline mode")
	assert.Equal(t, DefaultCardCount, cfg.CardCount)
	assert.Equal(t, StyleQA, cfg.Style)
	assert.Equal(t, DifficultyMedium, cfg.Difficulty)
	assert.Equal(t, DefaultBackendModel, cfg.BackendModel)
	assert.Equal(t, DefaultBackendTimeout, cfg.BackendTimeout())
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("FLASHTUTOR_CARD_COUNT", "5")
	t.Setenv("FLASHTUTOR_STYLE", "cloze")
	t.Setenv("FLASHTUTOR_DIFFICULTY", "hard")
	t.Setenv("FLASHTUTOR_BACKEND_TIMEOUT_SECONDS", "10")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.UseLLM, "a key enables the LLM path by default")
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "gpt-4o", cfg.BackendModel)
	assert.Equal(t, 5, cfg.CardCount)
	assert.Equal(t, StyleCloze, cfg.Style)
	assert.Equal(t, DifficultyHard, cfg.Difficulty)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout())
}

func TestLoadConfigExplicitOfflineWithKey(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("FLASHTUTOR_USE_LLM", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.UseLLM)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("FLASHTUTOR_CARD_COUNT", "0")
	_, err := LoadConfig()
	assert.ErrorIs(t, err, ErrInvalidCardCount)

	clearConfigEnv(t)
	t.Setenv("FLASHTUTOR_STYLE", "haiku")
	_, err = LoadConfig()
	assert.ErrorIs(t, err, ErrInvalidStyle)

	clearConfigEnv(t)
	t.Setenv("FLASHTUTOR_DIFFICULTY", "brutal")
	_, err = LoadConfig()
	assert.ErrorIs(t, err, ErrInvalidDifficulty)

	clearConfigEnv(t)
	t.Setenv("FLASHTUTOR_USE_LLM", "maybe")
	_, err = LoadConfig()
	assert.Error(t, err)

	clearConfigEnv(t)
	t.Setenv("FLASHTUTOR_BACKEND_TIMEOUT_SECONDS", "-2")
	_, err = LoadConfig()
	assert.Error(t, err)
}
