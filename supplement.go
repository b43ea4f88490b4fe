package pdfquiz

import (
	"context"
	"strings"
)

// SupplementAttempts is the retry budget for topping up a short question set
const SupplementAttempts = 5

// Collaborator turns a prompt into raw model text
type Collaborator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CollaboratorFunc adapts a plain function to Collaborator
type CollaboratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f
func (f CollaboratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Supplementer requests extra questions until a target count is met,
// rejecting anything whose text repeats an accepted question.
type Supplementer struct {
	ai       Collaborator
	logger   *LLMLogger
	source   string
	maxChars int
	attempts int
	warnings []ParseWarning
}

// NewSupplementer creates a supplementer for one source document
func NewSupplementer(ai Collaborator, source string, maxChars int, logger *LLMLogger) *Supplementer {
	return &Supplementer{
		ai:       ai,
		logger:   logger,
		source:   source,
		maxChars: maxChars,
		attempts: SupplementAttempts,
	}
}

// Fill appends new unique questions to accepted until desired is reached.
// Collaborator and parse failures only consume attempts. When the budget runs
// out the grown list is returned with an *InsufficientQuestionsError.
func (s *Supplementer) Fill(ctx context.Context, accepted []Question, desired int) ([]Question, error) {
	out := cloneQuestions(accepted)
	seen := make(map[string]bool, desired)
	for _, q := range out {
		seen[dedupKey(q.Question)] = true
	}

	for attempt := 1; attempt <= s.attempts && len(out) < desired; attempt++ {
		if ctx.Err() != nil {
			break
		}
		remaining := desired - len(out)
		VerboseLog("Supplemental attempt %d/%d: need %d more questions", attempt, s.attempts, remaining)

		existing := make([]string, len(out))
		for i, q := range out {
			existing[i] = q.Question
		}
		prompt := BuildSupplementPrompt(s.source, existing, remaining, s.maxChars)
		s.logger.LogLLMRequest("Supplement", prompt)

		raw, err := s.ai.Generate(ctx, prompt)
		if err != nil {
			VerboseLog("Supplemental attempt %d failed: %v", attempt, err)
			s.logger.Logf("Supplemental attempt %d failed: %v\n", attempt, err)
			continue
		}
		s.logger.LogLLMResponse("Supplement", raw)

		parsed, err := ParseResponse(raw)
		if err != nil {
			VerboseLog("Supplemental attempt %d unparseable: %v", attempt, err)
			s.logger.Logf("Supplemental attempt %d unparseable: %v\n", attempt, err)
			continue
		}
		if parsed.Warning != "" {
			VerboseLog("Supplemental attempt %d recovered with warning: %s", attempt, parsed.Warning)
			s.warnings = append(s.warnings, parsed.Warning)
		}

		for i, obj := range parsed.Objects {
			if len(out) >= desired {
				break
			}
			if !hasValidOptionShape(obj) {
				s.logger.LogQuestionResult(questionText(obj), "rejected", "needs 4 options with exactly one correct")
				continue
			}
			q, err := NormalizeQuestion(i, obj)
			if err != nil {
				s.logger.LogQuestionResult(questionText(obj), "rejected", err.Error())
				continue
			}
			key := dedupKey(q.Question)
			if seen[key] {
				s.logger.LogQuestionResult(q.Question, "rejected", "duplicate of an accepted question")
				continue
			}
			seen[key] = true
			out = append(out, q)
			s.logger.LogQuestionResult(q.Question, "accepted", "unique")
		}
	}

	if len(out) < desired {
		return out, &InsufficientQuestionsError{Requested: desired, Got: len(out)}
	}
	return out, nil
}

// Warnings lists the recovery warnings of every supplemental batch parsed so far
func (s *Supplementer) Warnings() []ParseWarning {
	return append([]ParseWarning(nil), s.warnings...)
}

// hasValidOptionShape is the minimal check for supplemental objects: exactly
// four options and exactly one literal "correct": true.
func hasValidOptionShape(obj map[string]any) bool {
	options, ok := obj["options"].([]any)
	if !ok || len(options) != OptionsPerQuestion {
		return false
	}
	correct := 0
	for _, o := range options {
		if m, ok := o.(map[string]any); ok {
			if v, ok := m["correct"].(bool); ok && v {
				correct++
			}
		}
	}
	return correct == 1
}

func questionText(obj map[string]any) string {
	s, _ := obj["question"].(string)
	return s
}

func dedupKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
