package flashtutor

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Generation modes reported to the caller so the UI can say which path
// produced the deck.
const (
	ModeLLM      = "llm"
	ModeFallback = "fallback"
)

// MinSourceChars is the minimum study-material length the presentation
// layers enforce before triggering generation. The core generators only
// require non-empty text, so tiny inputs remain testable.
const MinSourceChars = 120

var (
	spaceRunRE = regexp.MustCompile(`[\t ]+`)
	blankRunRE = regexp.MustCompile(`\n{3,}`)
)

// Preprocess normalizes pasted study material: CRLF to LF, collapsed space
// runs, at most one blank line in a row, trimmed ends. Empty or
// whitespace-only input fails with ErrEmptySourceText before any generator
// runs.
func Preprocess(raw string) (string, error) {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = spaceRunRE.ReplaceAllString(text, " ")
	text = blankRunRE.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if text == "" {
		return "", ErrEmptySourceText
	}
	return text, nil
}

// Generator routes a generation request to the LLM pipeline or the offline
// fallback. A nil backend means offline-only.
type Generator struct {
	backend GenerativeBackend
	logger  *RunLogger
}

// NewGenerator creates a generator. backend may be nil to force the offline
// path; logger may be nil to disable run logging.
func NewGenerator(backend GenerativeBackend, logger *RunLogger) *Generator {
	return &Generator{backend: backend, logger: logger}
}

// Generate produces a deck for the request. It returns the deck, the mode
// that produced it, the raw backend transcript (empty for the offline path),
// and an error. A backend failure is surfaced as-is: the caller decides
// whether to retry with the fallback, the pipeline never switches silently.
// A deck smaller than requested always arrives with ErrDeckShort so a short
// result is never silent.
func (g *Generator) Generate(ctx context.Context, req GenerationRequest) (Deck, string, string, error) {
	cleaned, err := Preprocess(req.SourceText)
	if err != nil {
		return nil, "", "", err
	}
	req.SourceText = cleaned

	if err := req.Validate(); err != nil {
		return nil, "", "", err
	}

	if g.backend == nil {
		deck, err := GenerateOffline(req.SourceText, req.Count, req.Style, req.Difficulty)
		if err != nil {
			return nil, ModeFallback, "", err
		}
		if len(deck) < req.Count {
			return deck, ModeFallback, "", fmt.Errorf("%w: %d of %d", ErrDeckShort, len(deck), req.Count)
		}
		return deck, ModeFallback, "", nil
	}

	pipeline := NewPipeline(g.backend, g.logger)
	deck, raw, err := pipeline.Generate(ctx, req)
	return deck, ModeLLM, raw, err
}
