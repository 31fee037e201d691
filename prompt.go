package flashtutor

import (
	"fmt"
	"strings"
)

// styleInstruction spells out per-style formatting rules for the model.
func styleInstruction(style Style) string {
	switch style {
	case StyleDefinition:
		return "Each question asks for the definition of a term from the material (e.g. \"Define: photosynthesis\"); each answer is the definition."
	case StyleCloze:
		return fmt.Sprintf("Each question is a sentence from the material with exactly one key term replaced by the marker %q; each answer is exactly the text that fills that blank.", ClozeBlank)
	default:
		return "Each question is a short direct question about one fact in the material; each answer states that fact."
	}
}

// buildGenerationPrompt constructs the initial prompt. It mandates a single
// JSON array with explicit field, length, and count constraints so the
// validator has a fighting chance.
func buildGenerationPrompt(req GenerationRequest) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Create exactly %d flashcards from the study material below.\n\n", req.Count))
	sb.WriteString("Study material:\n")
	sb.WriteString(req.SourceText)
	sb.WriteString("\n\n")

	sb.WriteString("Requirements:\n")
	sb.WriteString("- Respond with ONLY a single JSON array, no commentary, no markdown fences\n")
	sb.WriteString("- Each element is an object with string fields \"question\", \"answer\", \"style\", \"difficulty\"\n")
	sb.WriteString(fmt.Sprintf("- \"style\" must be %q for every card\n", req.Style))
	sb.WriteString(fmt.Sprintf("- \"difficulty\" must be %q\n", req.Difficulty))
	sb.WriteString(fmt.Sprintf("- Questions must be at most %d characters, answers at most %d characters\n", MaxQuestionLen, MaxAnswerLen))
	sb.WriteString("- Every question must be answerable from the material alone\n")
	sb.WriteString("- Never copy the whole material into a question; ask about one fact at a time\n")
	sb.WriteString("- No two cards may ask the same question\n")
	sb.WriteString("- ")
	sb.WriteString(styleInstruction(req.Style))
	sb.WriteString("\n")

	switch req.Difficulty {
	case DifficultyEasy:
		sb.WriteString("- Keep wording simple and rephrase technical terms where possible\n")
	case DifficultyHard:
		sb.WriteString("- Keep the material's technical wording verbatim; do not simplify terminology\n")
	}

	return sb.String()
}

// buildRepairPrompt constructs the corrective follow-up issued when the
// first response validated short. It asks for only the missing cards, in the
// same format, restating every constraint.
func buildRepairPrompt(req GenerationRequest, accepted []CardSpec, missing int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Your previous response did not contain enough valid flashcards. Produce exactly %d MORE cards from the same study material.\n\n", missing))
	sb.WriteString("Study material:\n")
	sb.WriteString(req.SourceText)
	sb.WriteString("\n\n")

	if len(accepted) > 0 {
		sb.WriteString("Questions already used, which you must NOT repeat:\n")
		for _, c := range accepted {
			sb.WriteString("- ")
			sb.WriteString(c.Question)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Constraints, same as before:\n")
	sb.WriteString("- Respond with ONLY a single JSON array of card objects, no commentary\n")
	sb.WriteString("- Fields: \"question\", \"answer\", \"style\", \"difficulty\"\n")
	sb.WriteString(fmt.Sprintf("- \"style\" is %q, \"difficulty\" is %q\n", req.Style, req.Difficulty))
	sb.WriteString(fmt.Sprintf("- Questions at most %d characters, answers at most %d characters\n", MaxQuestionLen, MaxAnswerLen))
	sb.WriteString("- ")
	sb.WriteString(styleInstruction(req.Style))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("- Return exactly %d cards, not more\n", missing))

	return sb.String()
}
