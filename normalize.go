package pdfquiz

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	defaultCorrectExplanation   = "This is the correct answer based on the document."
	defaultIncorrectExplanation = "This option is incorrect. Review the explanation for the correct answer."
	fallbackHint                = "Focus on the core concept the question is testing and rule out options that contradict it."
	maxHintKeywords             = 4
	minKeywordLength            = 4
)

var (
	correctWordRe   = regexp.MustCompile(`(?i)correct`)
	incorrectWordRe = regexp.MustCompile(`(?i)incorrect`)
)

var stopWords = map[string]bool{
	"about": true, "above": true, "after": true, "again": true, "against": true,
	"also": true, "among": true, "another": true, "because": true, "been": true,
	"before": true, "being": true, "below": true, "between": true, "both": true,
	"could": true, "does": true, "doing": true, "during": true, "each": true,
	"following": true, "from": true, "have": true, "having": true, "here": true,
	"into": true, "itself": true, "just": true, "many": true, "more": true,
	"most": true, "much": true, "must": true, "only": true, "other": true,
	"over": true, "same": true, "should": true, "some": true, "such": true,
	"than": true, "that": true, "their": true, "them": true, "then": true,
	"there": true, "these": true, "they": true, "this": true, "those": true,
	"through": true, "under": true, "until": true, "very": true, "were": true,
	"what": true, "when": true, "where": true, "which": true, "while": true,
	"whom": true, "whose": true, "will": true, "with": true, "within": true,
	"without": true, "would": true, "your": true, "best": true, "describes": true,
	"true": true, "false": true, "statement": true, "correct": true,
}

// NormalizeQuestions validates every candidate in order and stops at the first
// question that cannot be repaired.
func NormalizeQuestions(raw []map[string]any) ([]Question, error) {
	out := make([]Question, 0, len(raw))
	for i, obj := range raw {
		q, err := NormalizeQuestion(i, obj)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// NormalizeQuestion turns one loosely typed object into a Question, filling in
// hints and explanations and inferring missing correctness flags.
func NormalizeQuestion(index int, obj map[string]any) (Question, error) {
	if obj == nil {
		return Question{}, &InvalidQuestionShapeError{Index: index, Reason: "not an object"}
	}
	text, _ := obj["question"].(string)
	text = strings.TrimSpace(text)
	if text == "" {
		return Question{}, &InvalidQuestionShapeError{Index: index, Reason: `missing or invalid "question" field`}
	}
	rawOptions, ok := obj["options"].([]any)
	if !ok {
		return Question{}, &InvalidQuestionShapeError{Index: index, Reason: `"options" must be an array`}
	}
	if len(rawOptions) != OptionsPerQuestion {
		return Question{}, &InvalidQuestionShapeError{
			Index:  index,
			Reason: fmt.Sprintf("must have exactly %d options (found %d)", OptionsPerQuestion, len(rawOptions)),
		}
	}

	// Older payloads carry a single question-level explanation for the answer.
	sharedExplanation, _ := obj["explanation"].(string)

	options := make([]Option, len(rawOptions))
	correctCount := 0
	for i, ro := range rawOptions {
		opt, err := normalizeOption(ro, strings.TrimSpace(sharedExplanation))
		if err != nil {
			return Question{}, &InvalidQuestionShapeError{Index: index, Reason: fmt.Sprintf("option %d: %v", i+1, err)}
		}
		if opt.Correct {
			correctCount++
		}
		options[i] = opt
	}
	if correctCount != 1 {
		return Question{}, &AmbiguousCorrectCountError{Index: index, Found: correctCount}
	}

	hint, _ := obj["hint"].(string)
	hint = strings.TrimSpace(hint)
	if hintLeaksAnswer(hint, options) {
		hint = GenerateHint(text, options)
	}

	return Question{Question: text, Hint: hint, Options: options}, nil
}

func normalizeOption(raw any, sharedExplanation string) (Option, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Option{}, fmt.Errorf("not an object")
	}
	text, _ := obj["text"].(string)
	text = strings.TrimSpace(text)
	if text == "" {
		return Option{}, fmt.Errorf(`missing or invalid "text" field`)
	}
	explanation, _ := obj["explanation"].(string)
	explanation = strings.TrimSpace(explanation)

	opt := Option{Text: text, Explanation: explanation}
	opt.Correct = inferCorrect(obj, explanation)

	if opt.Explanation == "" {
		switch {
		case opt.Correct && sharedExplanation != "":
			opt.Explanation = sharedExplanation
		case opt.Correct:
			opt.Explanation = defaultCorrectExplanation
		default:
			opt.Explanation = defaultIncorrectExplanation
		}
	}
	return opt, nil
}

// inferCorrect resolves the correctness flag: an explicit boolean "correct",
// else a boolean "isCorrect"/"is_correct", else the explanation wording.
func inferCorrect(obj map[string]any, explanation string) bool {
	if v, ok := obj["correct"].(bool); ok {
		return v
	}
	for _, key := range []string{"isCorrect", "is_correct"} {
		if v, ok := obj[key].(bool); ok {
			return v
		}
	}
	return correctWordRe.MatchString(explanation) && !incorrectWordRe.MatchString(explanation)
}

func hintLeaksAnswer(hint string, options []Option) bool {
	if hint == "" {
		return true
	}
	lower := strings.ToLower(hint)
	if strings.Contains(lower, "correct") {
		return true
	}
	for _, opt := range options {
		if t := strings.ToLower(opt.Text); t != "" && strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// GenerateHint builds a hint from question keywords that do not appear in any
// option, so the hint never names an answer.
func GenerateHint(question string, options []Option) string {
	optionTexts := make([]string, len(options))
	for i, opt := range options {
		optionTexts[i] = strings.ToLower(opt.Text)
	}

	seen := make(map[string]bool)
	var keywords []string
	for _, field := range strings.Fields(question) {
		word := strings.Map(func(r rune) rune {
			if unicode.IsPunct(r) || unicode.IsSymbol(r) {
				return -1
			}
			return r
		}, field)
		lower := strings.ToLower(word)
		if len([]rune(word)) < minKeywordLength || stopWords[lower] || seen[lower] || strings.Contains(lower, "correct") {
			continue
		}
		if appearsInOptions(lower, optionTexts) {
			continue
		}
		seen[lower] = true
		keywords = append(keywords, word)
		if len(keywords) == maxHintKeywords {
			break
		}
	}

	if len(keywords) < 2 {
		return fallbackHint
	}
	return "Consider the key ideas around: " + strings.Join(keywords, ", ") + "."
}

func appearsInOptions(word string, optionTexts []string) bool {
	for _, t := range optionTexts {
		if strings.Contains(t, word) {
			return true
		}
	}
	return false
}
