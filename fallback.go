package flashtutor

import (
	"fmt"
	"strings"
	"unicode"
)

// Minimum shape of a sentence worth turning into a card.
const (
	minUnitWords = 3
	minUnitChars = 12
)

// stopwords excluded from cloze-blank and key-term selection.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"of": true, "in": true, "on": true, "at": true, "to": true, "for": true,
	"with": true, "from": true, "into": true, "by": true, "as": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "it": true, "its": true, "this": true, "that": true,
	"these": true, "those": true, "which": true, "their": true, "there": true,
	"they": true, "has": true, "have": true, "had": true, "can": true,
	"will": true, "would": true, "should": true, "could": true, "not": true,
	"also": true, "such": true, "than": true, "then": true, "when": true,
	"where": true, "while": true, "about": true, "other": true, "more": true,
	"most": true, "some": true, "very": true, "each": true, "between": true,
	"through": true, "during": true, "because": true, "however": true,
}

// verbLexicon recognizes the main verb when splitting a declarative sentence
// into subject and predicate. Deliberately small; sentences it cannot split
// fall back to a key-term question.
var verbLexicon = map[string]bool{
	"is": true, "are": true, "was": true, "were": true, "means": true,
	"converts": true, "convert": true, "produces": true, "produce": true,
	"uses": true, "use": true, "contains": true, "contain": true,
	"makes": true, "make": true, "causes": true, "cause": true,
	"allows": true, "allow": true, "helps": true, "help": true,
	"forms": true, "form": true, "creates": true, "create": true,
	"stores": true, "store": true, "carries": true, "carry": true,
	"includes": true, "include": true, "requires": true, "require": true,
	"provides": true, "provide": true, "occurs": true, "occur": true,
	"consists": true, "consist": true, "refers": true, "refer": true,
	"describes": true, "describe": true, "enables": true, "enable": true,
	"transports": true, "transport": true, "regulates": true, "regulate": true,
	"generates": true, "generate": true, "releases": true, "release": true,
	"absorbs": true, "absorb": true, "controls": true, "control": true,
}

// linking verbs get "What is X?" phrasing instead of "What does X do?".
var linkingVerbs = map[string]bool{
	"is": true, "are": true, "was": true, "were": true, "means": true,
}

// GenerateOffline is the deterministic fallback generator: a pure function
// from (source text, count, style, difficulty) to a Deck. Identical inputs
// always yield identical decks; there is no randomness and no I/O. The
// produced cards satisfy the same invariants the validator enforces on LLM
// output.
func GenerateOffline(sourceText string, count int, style Style, difficulty Difficulty) (Deck, error) {
	req := GenerationRequest{
		SourceText: sourceText,
		Count:      count,
		Style:      style,
		Difficulty: difficulty,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	units := segmentUnits(sourceText)
	VerboseLog("Fallback generation: %d candidate units for %d cards", len(units), count)

	seen := make(map[string]bool)
	deck := make(Deck, 0, count)
	for _, unit := range units {
		if len(deck) == count {
			break
		}

		var card CardSpec
		var ok bool
		switch style {
		case StyleDefinition:
			card, ok = definitionCard(unit, difficulty)
		case StyleCloze:
			card, ok = clozeCard(unit, difficulty)
		default:
			card, ok = qaCard(unit, difficulty)
		}
		if !ok {
			continue
		}

		if err := card.Validate(sourceText); err != nil {
			VerboseLog("Fallback skipping unit %q: %v", unit, err)
			continue
		}
		key := normalizeText(card.Question)
		if seen[key] {
			continue
		}
		seen[key] = true
		deck = append(deck, card)
	}

	return deck, nil
}

// segmentUnits splits the source into candidate sentences, in first-occurrence
// order, dropping fragments too short to carry a fact.
func segmentUnits(text string) []string {
	var units []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		for _, sentence := range splitSentences(line) {
			sentence = strings.TrimSpace(sentence)
			if len(sentence) < minUnitChars || len(strings.Fields(sentence)) < minUnitWords {
				continue
			}
			key := normalizeText(sentence)
			if seen[key] {
				continue
			}
			seen[key] = true
			units = append(units, sentence)
		}
	}
	return units
}

// splitSentences cuts a line at terminal punctuation followed by whitespace
// or end of line, keeping the punctuation with its sentence.
func splitSentences(line string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(line)
	for i, r := range runes {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				sentences = append(sentences, current.String())
				current.Reset()
			}
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// splitOnVerb finds the first lexicon verb after the leading word and splits
// the sentence into subject, verb, and remainder. Reports ok=false when no
// verb is recognized.
func splitOnVerb(words []string) (subject, verb string, rest []string, ok bool) {
	for i := 1; i < len(words); i++ {
		w := strings.ToLower(stripPunct(words[i]))
		if verbLexicon[w] {
			return strings.Join(words[:i], " "), w, words[i+1:], true
		}
	}
	return "", "", nil, false
}

// stripPunct trims surrounding punctuation from a token.
func stripPunct(w string) string {
	return strings.TrimFunc(w, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// trimSentenceEnd removes terminal punctuation from a phrase.
func trimSentenceEnd(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ".!?")
}

// qaCard turns a declarative sentence into a question/answer pair. Harder
// difficulties paraphrase less and keep the sentence verbatim as the answer.
func qaCard(unit string, difficulty Difficulty) (CardSpec, bool) {
	words := strings.Fields(unit)
	subject, verb, rest, ok := splitOnVerb(words)

	var question, answer string
	switch {
	case ok && linkingVerbs[verb]:
		question = fmt.Sprintf("What %s %s?", verb, trimSentenceEnd(subject))
		answer = trimSentenceEnd(strings.Join(rest, " "))
	case ok:
		switch difficulty {
		case DifficultyHard:
			question = fmt.Sprintf("State what the material says about %s.", trimSentenceEnd(subject))
			answer = strings.TrimSpace(unit)
		case DifficultyMedium:
			question = fmt.Sprintf("Describe what %s does.", trimSentenceEnd(subject))
			answer = trimSentenceEnd(verb + " " + strings.Join(rest, " "))
		default:
			question = fmt.Sprintf("What does %s do?", trimSentenceEnd(subject))
			answer = trimSentenceEnd(verb + " " + strings.Join(rest, " "))
		}
	default:
		term := keyTerm(words)
		if term == "" {
			return CardSpec{}, false
		}
		question = fmt.Sprintf("What does the material say about %s?", term)
		answer = strings.TrimSpace(unit)
	}

	if answer == "" {
		return CardSpec{}, false
	}
	return CardSpec{Question: question, Answer: answer, Style: StyleQA, Difficulty: difficulty}, true
}

// definitionCard detects a "term -- definition" shape, or synthesizes one
// from the sentence's head phrase.
func definitionCard(unit string, difficulty Difficulty) (CardSpec, bool) {
	term, definition, ok := splitTermDefinition(unit)
	if !ok {
		words := strings.Fields(unit)
		head, rest := headPhrase(words)
		if head == "" || rest == "" {
			return CardSpec{}, false
		}
		term = head
		definition = rest
	}

	var question string
	switch difficulty {
	case DifficultyHard:
		question = fmt.Sprintf("Give the precise definition of %s.", term)
	case DifficultyEasy:
		question = fmt.Sprintf("What is %s?", term)
	default:
		question = fmt.Sprintf("Define: %s", term)
	}
	return CardSpec{Question: question, Answer: definition, Style: StyleDefinition, Difficulty: difficulty}, true
}

// splitTermDefinition looks for an explicit separator first, then a linking
// verb. The term side must stay short enough to read as a term.
func splitTermDefinition(unit string) (term, definition string, ok bool) {
	for _, sep := range []string{" — ", " – ", ": ", " - "} {
		if idx := strings.Index(unit, sep); idx > 0 {
			term = strings.TrimSpace(unit[:idx])
			definition = trimSentenceEnd(unit[idx+len(sep):])
			if term != "" && definition != "" && len(strings.Fields(term)) <= 6 {
				return term, definition, true
			}
		}
	}

	words := strings.Fields(unit)
	subject, verb, rest, found := splitOnVerb(words)
	if found && linkingVerbs[verb] && len(strings.Fields(subject)) <= 6 {
		definition = trimSentenceEnd(strings.Join(rest, " "))
		if definition != "" {
			return trimSentenceEnd(subject), definition, true
		}
	}
	return "", "", false
}

// headPhrase returns the sentence's first up-to-three words minus leading
// articles, plus the remainder of the sentence.
func headPhrase(words []string) (head, rest string) {
	i := 0
	for i < len(words) && stopwords[strings.ToLower(stripPunct(words[i]))] {
		i++
	}
	end := i + 3
	if end > len(words) {
		end = len(words)
	}
	if i >= end {
		return "", ""
	}
	return trimSentenceEnd(strings.Join(words[i:end], " ")),
		trimSentenceEnd(strings.Join(words[end:], " "))
}

// clozeCard blanks out one salient token of the sentence. Difficulty picks
// the position: easy blanks the trailing fact, hard blanks the leading term,
// medium blanks the longest token.
func clozeCard(unit string, difficulty Difficulty) (CardSpec, bool) {
	words := strings.Fields(unit)

	var candidates []int
	for i, w := range words {
		core := stripPunct(w)
		if len(core) >= 5 && !stopwords[strings.ToLower(core)] {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return CardSpec{}, false
	}

	var pick int
	switch difficulty {
	case DifficultyEasy:
		pick = candidates[len(candidates)-1]
	case DifficultyHard:
		pick = candidates[0]
	default:
		pick = candidates[0]
		for _, i := range candidates {
			if len(stripPunct(words[i])) > len(stripPunct(words[pick])) {
				pick = i
			}
		}
	}

	answer := stripPunct(words[pick])
	blanked := make([]string, len(words))
	copy(blanked, words)
	blanked[pick] = strings.Replace(words[pick], answer, ClozeBlank, 1)

	question := strings.Join(blanked, " ")
	if strings.Count(question, ClozeBlank) != 1 {
		// The chosen token appears inside another word's punctuation-trimmed
		// form; too ambiguous to blank safely.
		return CardSpec{}, false
	}
	return CardSpec{Question: question, Answer: answer, Style: StyleCloze, Difficulty: difficulty}, true
}

// keyTerm picks the sentence's most salient token for key-term questions.
func keyTerm(words []string) string {
	best := ""
	for _, w := range words {
		core := stripPunct(w)
		if len(core) < 5 || stopwords[strings.ToLower(core)] {
			continue
		}
		if len(core) > len(best) {
			best = core
		}
	}
	return best
}
