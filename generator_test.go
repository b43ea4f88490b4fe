package pdfquiz

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGeneratorExactCount(t *testing.T) {
	ai := &scriptedAI{replies: []reply{{text: "```json\n" + questionsJSON(t, sampleQuestions(5)) + "\n```"}}}
	g := NewGenerator(ai, 0, "")

	result, err := g.Generate(context.Background(), GenerationRequest{SourceText: "doc", FileName: "doc.pdf", NumQuestions: 5})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Questions) != 5 || len(result.Warnings) != 0 {
		t.Errorf("got %d questions and %v warnings", len(result.Questions), result.Warnings)
	}
	if !strings.Contains(ai.prompts[0], "exactly 5 multiple-choice") {
		t.Error("prompt should request the target count")
	}
}

func TestGeneratorTruncatesExtra(t *testing.T) {
	ai := &scriptedAI{replies: []reply{{text: questionsJSON(t, sampleQuestions(8))}}}
	result, err := NewGenerator(ai, 0, "").Generate(context.Background(), GenerationRequest{SourceText: "doc", NumQuestions: 6})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Questions) != 6 {
		t.Fatalf("got %d questions, want 6", len(result.Questions))
	}
	if result.Questions[5].Question != "Question number 6" {
		t.Errorf("kept %q last, want the first six in order", result.Questions[5].Question)
	}
}

func TestGeneratorSupplements(t *testing.T) {
	ai := &scriptedAI{replies: []reply{
		{text: questionsJSON(t, sampleQuestions(3))},
		{text: questionsJSON(t, questionsNamed("Extra", 1, 2))},
	}}
	result, err := NewGenerator(ai, 0, "").Generate(context.Background(), GenerationRequest{SourceText: "doc", NumQuestions: 5})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Questions) != 5 || ai.calls() != 2 {
		t.Errorf("got %d questions after %d calls", len(result.Questions), ai.calls())
	}
}

func TestGeneratorReportsSupplementWarnings(t *testing.T) {
	extra := questionsJSON(t, questionsNamed("Extra", 1, 1))
	extra = extra[:len(extra)-1] + ",]"
	ai := &scriptedAI{replies: []reply{
		{text: questionsJSON(t, sampleQuestions(1))},
		{text: extra},
	}}
	result, err := NewGenerator(ai, 0, "").Generate(context.Background(), GenerationRequest{SourceText: "doc", NumQuestions: 2})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(result.Questions))
	}
	if len(result.Warnings) != 1 || result.Warnings[0] != WarningRepaired {
		t.Errorf("warnings = %v, want [%s]", result.Warnings, WarningRepaired)
	}
}

func TestGeneratorNeverReturnsPartial(t *testing.T) {
	ai := &scriptedAI{replies: []reply{
		{text: questionsJSON(t, sampleQuestions(3))},
		{err: errors.New("quota exceeded")},
	}}
	result, err := NewGenerator(ai, 0, "").Generate(context.Background(), GenerationRequest{SourceText: "doc", NumQuestions: 5})
	if result != nil {
		t.Fatalf("got partial result with %d questions", len(result.Questions))
	}
	var short *InsufficientQuestionsError
	if !errors.As(err, &short) || short.Shortfall() != 2 {
		t.Fatalf("err = %v, want shortfall of 2", err)
	}
	if got := ai.calls(); got != 1+SupplementAttempts {
		t.Errorf("collaborator called %d times, want %d", got, 1+SupplementAttempts)
	}
}

func TestGeneratorRejectsInvalidInitialBatch(t *testing.T) {
	bad := sampleQuestions(2)
	bad[1].Options[2].Correct = true
	ai := &scriptedAI{replies: []reply{{text: questionsJSON(t, bad)}}}

	_, err := NewGenerator(ai, 0, "").Generate(context.Background(), GenerationRequest{SourceText: "doc", NumQuestions: 2})
	var ambiguous *AmbiguousCorrectCountError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("err = %v, want *AmbiguousCorrectCountError", err)
	}
}

func TestGeneratorUnsetCountKeepsWhatArrives(t *testing.T) {
	ai := &scriptedAI{replies: []reply{{text: questionsJSON(t, sampleQuestions(4))}}}
	result, err := NewGenerator(ai, 0, "").Generate(context.Background(), GenerationRequest{SourceText: "doc"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Questions) != 4 || ai.calls() != 1 {
		t.Errorf("got %d questions after %d calls", len(result.Questions), ai.calls())
	}
}

func TestGeneratorWritesRunLog(t *testing.T) {
	dir := t.TempDir()
	ai := &scriptedAI{replies: []reply{{text: questionsJSON(t, sampleQuestions(2))}}}
	if _, err := NewGenerator(ai, 0, dir).Generate(context.Background(), GenerationRequest{SourceText: "doc", FileName: "notes.pdf", NumQuestions: 2}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	logs, err := filepath.Glob(filepath.Join(dir, "*.log"))
	if err != nil || len(logs) != 1 {
		t.Fatalf("found %d run logs (%v)", len(logs), err)
	}
	data, err := os.ReadFile(logs[0])
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "notes.pdf") {
		t.Error("run log should name the document")
	}
}
