package flashtutor

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every recognized option. Values come from the environment
// (a .env file is honored when present); commands may override individual
// fields from flags.
type Config struct {
	// UseLLM routes generation through the backend pipeline instead of the
	// offline fallback.
	UseLLM bool

	// CardCount is the requested deck size.
	CardCount int

	Style      Style
	Difficulty Difficulty

	// APIKey and BackendModel identify the generative backend.
	APIKey       string
	BackendModel string

	// BackendTimeoutSeconds bounds each individual backend call.
	BackendTimeoutSeconds int
}

// DefaultCardCount matches the generation form's default.
const DefaultCardCount = 10

// LoadConfig reads configuration from the environment. A missing .env file
// is not an error; invalid values are.
func LoadConfig() (Config, error) {
	// Ignore the error: running without a .env file is the normal case.
	_ = godotenv.Load()

	cfg := Config{
		UseLLM:                true,
		CardCount:             DefaultCardCount,
		Style:                 StyleQA,
		Difficulty:            DifficultyMedium,
		APIKey:                os.Getenv("OPENAI_API_KEY"),
		BackendModel:          DefaultBackendModel,
		BackendTimeoutSeconds: int(DefaultBackendTimeout / time.Second),
	}

	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.BackendModel = v
	}
	if v := os.Getenv("FLASHTUTOR_USE_LLM"); v != "" {
		useLLM, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FLASHTUTOR_USE_LLM %q: %w", v, err)
		}
		cfg.UseLLM = useLLM
	}
	if v := os.Getenv("FLASHTUTOR_CARD_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid FLASHTUTOR_CARD_COUNT %q: %w", v, ErrInvalidCardCount)
		}
		cfg.CardCount = n
	}
	if v := os.Getenv("FLASHTUTOR_STYLE"); v != "" {
		style, err := ParseStyle(v)
		if err != nil {
			return Config{}, err
		}
		cfg.Style = style
	}
	if v := os.Getenv("FLASHTUTOR_DIFFICULTY"); v != "" {
		difficulty, err := ParseDifficulty(v)
		if err != nil {
			return Config{}, err
		}
		cfg.Difficulty = difficulty
	}
	if v := os.Getenv("FLASHTUTOR_BACKEND_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid FLASHTUTOR_BACKEND_TIMEOUT_SECONDS %q", v)
		}
		cfg.BackendTimeoutSeconds = n
	}

	// Without a key the LLM path cannot work; fall back rather than fail at
	// startup so the offline path stays usable out of the box.
	if cfg.APIKey == "" {
		cfg.UseLLM = false
	}

	return cfg, nil
}

// BackendTimeout returns the per-call timeout as a duration.
func (c Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSeconds) * time.Second
}
