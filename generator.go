package pdfquiz

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// DefaultNumQuestions is used when a request does not name a count
const DefaultNumQuestions = 10

// Generator orchestrates prompt construction, parsing, validation and
// supplemental top-up for one document.
type Generator struct {
	ai       Collaborator
	maxChars int
	logDir   string
}

// NewGenerator creates a generator. An empty logDir disables per-run LLM logs.
func NewGenerator(ai Collaborator, maxChars int, logDir string) *Generator {
	if maxChars <= 0 {
		maxChars = DefaultMaxSourceChars
	}
	return &Generator{ai: ai, maxChars: maxChars, logDir: logDir}
}

// Generate produces a validated question set. When NumQuestions is set the
// result holds exactly that many questions or the call fails; nothing partial
// is ever returned.
func (g *Generator) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	target := req.NumQuestions
	asked := target
	if asked <= 0 {
		asked = DefaultNumQuestions
	}
	if req.FileName != "" {
		log.Printf("Starting quiz generation: document=%q, target questions: %d", req.FileName, asked)
	} else {
		log.Printf("Starting quiz generation from pasted text, target questions: %d", asked)
	}

	var logger *LLMLogger
	if g.logDir != "" {
		var err error
		logger, err = NewLLMLogger(g.logDir, uuid.NewString(), req)
		if err != nil {
			log.Printf("Failed to create LLM logger: %v", err)
		}
		defer logger.Close()
	}

	prompt := BuildPrompt(req.SourceText, asked, g.maxChars)
	logger.LogLLMRequest("Generate", prompt)

	raw, err := g.ai.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}
	logger.LogLLMResponse("Generate", raw)

	parsed, err := ParseResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to read AI response: %w", err)
	}
	result := &GenerationResult{}
	if parsed.Warning != "" {
		log.Printf("AI response recovered with warning: %s", parsed.Warning)
		result.Warnings = append(result.Warnings, parsed.Warning)
	}

	questions, err := NormalizeQuestions(parsed.Objects)
	if err != nil {
		return nil, fmt.Errorf("failed to validate questions: %w", err)
	}
	log.Printf("Accepted %d questions from initial response", len(questions))

	switch {
	case target <= 0:
		if len(questions) == 0 {
			return nil, &InsufficientQuestionsError{Requested: 1, Got: 0}
		}
	case len(questions) < target:
		sup := NewSupplementer(g.ai, req.SourceText, g.maxChars, logger)
		questions, err = sup.Fill(ctx, questions, target)
		result.Warnings = append(result.Warnings, sup.Warnings()...)
		if err != nil {
			log.Printf("Supplemental generation fell short: %v", err)
			return nil, err
		}
	case len(questions) > target:
		questions = questions[:target]
	}

	result.Questions = questions
	log.Printf("Quiz generation complete: %d questions", len(questions))
	return result, nil
}
