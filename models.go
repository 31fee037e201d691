package flashtutor

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Style determines how a flashcard phrases its question.
type Style string

const (
	StyleQA         Style = "qa"
	StyleDefinition Style = "definition"
	StyleCloze      Style = "cloze"
)

// Difficulty controls how much paraphrasing the generators apply.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Bounds on card text, enforced on both the LLM and offline paths.
const (
	MaxQuestionLen = 200
	MaxAnswerLen   = 300
)

// ClozeBlank is the marker a cloze question uses for its missing text.
const ClozeBlank = "____"

// ParseStyle converts user input (CLI flag, form value, env var) into a Style.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "qa", "q/a", "question", "":
		return StyleQA, nil
	case "definition", "def":
		return StyleDefinition, nil
	case "cloze":
		return StyleCloze, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStyle, s)
}

// ParseDifficulty converts user input into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, nil
	case "medium", "":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
}

// CardSpec is a single flashcard.
type CardSpec struct {
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	Style      Style      `json:"style"`
	Difficulty Difficulty `json:"difficulty"`
}

// Validate checks the card against the structural invariants: non-empty
// bounded text, known style and difficulty, exactly one blank for cloze
// cards, and the non-generic guard against the source text.
func (c CardSpec) Validate(sourceText string) error {
	question := strings.TrimSpace(c.Question)
	answer := strings.TrimSpace(c.Answer)

	if question == "" {
		return fmt.Errorf("question is empty")
	}
	if answer == "" {
		return fmt.Errorf("answer is empty")
	}
	if n := utf8.RuneCountInString(question); n > MaxQuestionLen {
		return fmt.Errorf("question is %d characters, limit is %d", n, MaxQuestionLen)
	}
	if n := utf8.RuneCountInString(answer); n > MaxAnswerLen {
		return fmt.Errorf("answer is %d characters, limit is %d", n, MaxAnswerLen)
	}

	switch c.Style {
	case StyleQA, StyleDefinition:
	case StyleCloze:
		if n := strings.Count(question, ClozeBlank); n != 1 {
			return fmt.Errorf("cloze question must contain exactly one %q marker, found %d", ClozeBlank, n)
		}
		if strings.Contains(answer, ClozeBlank) {
			return fmt.Errorf("cloze answer must be the text that fills the blank, not another blank")
		}
	default:
		return fmt.Errorf("unknown style %q", c.Style)
	}

	switch c.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("unknown difficulty %q", c.Difficulty)
	}

	if isGenericAgainstSource(question, sourceText) {
		return fmt.Errorf("question is a near-duplicate dump of the source text")
	}

	return nil
}

// Deck is an ordered collection of flashcards. Insertion order is the
// presentation order for the quiz.
type Deck []CardSpec

// Questions returns the question text of every card in deck order.
func (d Deck) Questions() []string {
	qs := make([]string, len(d))
	for i, c := range d {
		qs[i] = c.Question
	}
	return qs
}

// GenerationRequest describes one deck-generation run.
type GenerationRequest struct {
	SourceText string     `json:"source_text"`
	Count      int        `json:"count"`
	Style      Style      `json:"style"`
	Difficulty Difficulty `json:"difficulty"`
}

// Validate rejects parameter combinations the generators cannot honor.
func (r GenerationRequest) Validate() error {
	if r.Count < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidCardCount, r.Count)
	}
	if _, err := ParseStyle(string(r.Style)); err != nil {
		return err
	}
	if _, err := ParseDifficulty(string(r.Difficulty)); err != nil {
		return err
	}
	if strings.TrimSpace(r.SourceText) == "" {
		return ErrEmptySourceText
	}
	return nil
}

// normalizeText lowercases and collapses all whitespace runs to single
// spaces. Used for duplicate detection and the non-generic guard.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// isGenericAgainstSource reports whether a question is just the source text
// dumped back: equal to the whole source, or a verbatim substring covering
// most of it.
func isGenericAgainstSource(question, sourceText string) bool {
	q := normalizeText(question)
	src := normalizeText(sourceText)
	if src == "" || q == "" {
		return false
	}
	if q == src {
		return true
	}
	if strings.Contains(src, q) && len(q)*10 >= len(src)*8 {
		return true
	}
	return false
}

// dedupeCards removes cards whose normalized question text was already seen,
// keeping the first occurrence in order.
func dedupeCards(cards []CardSpec) []CardSpec {
	seen := make(map[string]bool, len(cards))
	out := make([]CardSpec, 0, len(cards))
	for _, c := range cards {
		key := normalizeText(c.Question)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
