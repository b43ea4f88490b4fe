package pdfquiz

import (
	"fmt"
	"strings"
)

// DefaultMaxSourceChars bounds how much document text is sent with a prompt
const DefaultMaxSourceChars = 15000

const questionSchema = `[
  {
    "question": "...",
    "hint": "...",
    "options": [
      {"text": "...", "correct": false, "explanation": "..."},
      {"text": "...", "correct": true, "explanation": "..."},
      {"text": "...", "correct": false, "explanation": "..."},
      {"text": "...", "correct": false, "explanation": "..."}
    ]
  }
]`

// excerpt truncates source text to at most maxChars runes
func excerpt(source string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxSourceChars
	}
	r := []rune(source)
	if len(r) <= maxChars {
		return source
	}
	return string(r[:maxChars])
}

// BuildPrompt builds the initial generation request for n questions
func BuildPrompt(source string, n, maxChars int) string {
	var sb strings.Builder

	sb.WriteString("You are an expert quiz creator. Your task is to generate a series of multiple-choice questions based on the provided document content.\n\n")
	writeDocument(&sb, source, maxChars)

	sb.WriteString("INSTRUCTIONS:\n")
	sb.WriteString(fmt.Sprintf("1. Generate exactly %d multiple-choice questions from the document.\n", n))
	writeRules(&sb, 2)
	sb.WriteString("\nJSON OUTPUT FORMAT:\n")
	sb.WriteString(questionSchema)
	sb.WriteString("\n")

	return sb.String()
}

// BuildSupplementPrompt asks for more questions while listing every accepted
// question so the model can avoid repeating them.
func BuildSupplementPrompt(source string, existing []string, remaining, maxChars int) string {
	var sb strings.Builder

	sb.WriteString("You are an expert quiz creator. You already wrote some multiple-choice questions for the document below and now need additional, different ones.\n\n")
	writeDocument(&sb, source, maxChars)

	sb.WriteString("EXISTING QUESTIONS (do not repeat or paraphrase any of these):\n")
	for i, q := range existing {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, q))
	}
	sb.WriteString("\n")

	sb.WriteString("INSTRUCTIONS:\n")
	sb.WriteString(fmt.Sprintf("1. Generate exactly %d NEW multiple-choice questions that cover different facts or concepts than the existing questions.\n", remaining))
	writeRules(&sb, 2)
	sb.WriteString("\nJSON OUTPUT FORMAT (same schema as before):\n")
	sb.WriteString(questionSchema)
	sb.WriteString("\n")

	return sb.String()
}

func writeDocument(sb *strings.Builder, source string, maxChars int) {
	sb.WriteString("DOCUMENT CONTENT:\n\"\"\"\n")
	sb.WriteString(excerpt(source, maxChars))
	sb.WriteString("\n\"\"\"\n\n")
}

func writeRules(sb *strings.Builder, start int) {
	rules := []string{
		"Each question must have exactly 4 options.",
		"Exactly one option must have \"correct\": true.",
		"Provide a brief, helpful hint for each question that does not reveal or name the answer.",
		"Provide a one-sentence explanation for every option saying why it is right or wrong.",
		"Your final output must be a single, valid JSON array of question objects. Do not include any other text, explanations, or markdown formatting outside of the JSON structure.",
	}
	for i, rule := range rules {
		sb.WriteString(fmt.Sprintf("%d. %s\n", start+i, rule))
	}
}
