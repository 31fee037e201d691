package flashtutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// RepairBound is the maximum number of corrective backend calls one
// generation run may issue after the initial call.
const RepairBound = 1

// rawCard mirrors one entry of the model's JSON array. Pointer fields
// distinguish a missing key from an empty value, so the schema check can
// name exactly what is wrong.
type rawCard struct {
	Question   *string `json:"question"`
	Answer     *string `json:"answer"`
	Style      *string `json:"style"`
	Difficulty *string `json:"difficulty"`
}

// extractCardArray isolates the single JSON array inside raw backend output.
// The model is told to emit only the array, but in practice it may wrap it
// in markdown fences or prepend commentary, so we scan for the array
// boundary instead of unmarshalling the whole text.
func extractCardArray(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	// Strip markdown code fences if the whole payload is fenced.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}

	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", ErrMalformedPayload
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}

	return "", ErrMalformedPayload
}

// parseCards extracts and checks the card array in raw, returning every
// entry that survives the field-by-field schema check. A rejected entry is
// logged and skipped, never fatal to the batch; only a payload with no
// array at all is an error.
func parseCards(raw string, req GenerationRequest) ([]CardSpec, error) {
	payload, err := extractCardArray(raw)
	if err != nil {
		return nil, err
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	cards := make([]CardSpec, 0, len(entries))
	for i, entry := range entries {
		card, err := parseCardEntry(entry, req)
		if err != nil {
			VerboseLog("Rejecting card %d: %v", i, err)
			continue
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// parseCardEntry checks one candidate entry against the card schema.
func parseCardEntry(entry json.RawMessage, req GenerationRequest) (CardSpec, error) {
	var rc rawCard
	if err := json.Unmarshal(entry, &rc); err != nil {
		return CardSpec{}, fmt.Errorf("not a card object: %v", err)
	}

	if rc.Question == nil {
		return CardSpec{}, errors.New("missing required field \"question\"")
	}
	if rc.Answer == nil {
		return CardSpec{}, errors.New("missing required field \"answer\"")
	}

	card := CardSpec{
		Question:   strings.TrimSpace(*rc.Question),
		Answer:     strings.TrimSpace(*rc.Answer),
		Style:      req.Style,
		Difficulty: req.Difficulty,
	}

	// The deck's style is fixed at generation time. A card declaring a
	// different style is rejected rather than silently restyled.
	if rc.Style != nil {
		style, err := ParseStyle(*rc.Style)
		if err != nil {
			return CardSpec{}, err
		}
		if style != req.Style {
			return CardSpec{}, fmt.Errorf("style %q does not match requested style %q", style, req.Style)
		}
	}

	// Difficulty may legitimately vary per card; an unknown value is still
	// rejected.
	if rc.Difficulty != nil {
		difficulty, err := ParseDifficulty(*rc.Difficulty)
		if err != nil {
			return CardSpec{}, err
		}
		card.Difficulty = difficulty
	}

	if err := card.Validate(req.SourceText); err != nil {
		return CardSpec{}, err
	}
	return card, nil
}

// Pipeline turns raw generative-backend output into a validated Deck,
// repairing short results with at most RepairBound corrective calls.
type Pipeline struct {
	backend GenerativeBackend
	logger  *RunLogger
}

// NewPipeline creates a pipeline over the given backend. logger may be nil.
func NewPipeline(backend GenerativeBackend, logger *RunLogger) *Pipeline {
	return &Pipeline{backend: backend, logger: logger}
}

// Generate runs the full validate-and-repair loop for one request. It
// returns the deck, the concatenated raw backend transcript (for debug
// display), and an error. A non-nil deck may accompany ErrDeckShort when the
// repair bound was exhausted with some valid cards but fewer than requested.
func (p *Pipeline) Generate(ctx context.Context, req GenerationRequest) (Deck, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	var transcript strings.Builder
	parsedAny := false

	prompt := buildGenerationPrompt(req)
	p.logger.LogRequest("generate", prompt)

	raw, err := p.backend.Complete(ctx, prompt)
	if err != nil {
		p.logger.LogError("generate", err)
		return nil, "", err
	}
	p.logger.LogResponse("generate", raw)
	transcript.WriteString(raw)

	accepted, perr := parseCards(raw, req)
	if perr != nil {
		VerboseLog("Initial response unparseable: %v", perr)
	} else {
		parsedAny = true
	}
	accepted = dedupeCards(accepted)

	// Bounded repair loop with an accumulator of already-valid cards. Each
	// attempt costs one backend call with its own fresh timeout.
	for attempt := 1; len(accepted) < req.Count && attempt <= RepairBound; attempt++ {
		missing := req.Count - len(accepted)
		VerboseLog("Validated %d of %d cards, issuing repair attempt %d for %d more",
			len(accepted), req.Count, attempt, missing)

		repairPrompt := buildRepairPrompt(req, accepted, missing)
		p.logger.LogRequest("repair", repairPrompt)

		repairRaw, err := p.backend.Complete(ctx, repairPrompt)
		if err != nil {
			p.logger.LogError("repair", err)
			if len(accepted) > 0 {
				// Keep what we have rather than discarding good cards over a
				// failed repair call.
				break
			}
			return nil, transcript.String(), err
		}
		p.logger.LogResponse("repair", repairRaw)
		transcript.WriteString("\n")
		transcript.WriteString(repairRaw)

		more, perr := parseCards(repairRaw, req)
		if perr != nil {
			VerboseLog("Repair response unparseable: %v", perr)
		} else {
			parsedAny = true
		}
		accepted = dedupeCards(append(accepted, more...))
	}

	if len(accepted) == 0 {
		if !parsedAny {
			return nil, transcript.String(), ErrMalformedPayload
		}
		return nil, transcript.String(), ErrInsufficientValidCards
	}

	if len(accepted) > req.Count {
		accepted = accepted[:req.Count]
	}

	deck := Deck(accepted)
	if len(deck) < req.Count {
		return deck, transcript.String(), fmt.Errorf("%w: %d of %d", ErrDeckShort, len(deck), req.Count)
	}
	return deck, transcript.String(), nil
}
