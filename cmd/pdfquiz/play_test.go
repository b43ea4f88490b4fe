package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"pdfquiz"
)

func TestPlayScriptedRun(t *testing.T) {
	// The sample quiz answers are C, B, B.
	s := pdfquiz.NewSession(pdfquiz.DefaultQuestions())
	s.Start()
	input := strings.Join([]string{"h", "x", "C", "A", "s"}, "\n")
	var out bytes.Buffer

	play(s, "Sample Quiz", bufio.NewScanner(strings.NewReader(input)), &out)

	if s.Phase != pdfquiz.PhaseCompleted {
		t.Fatalf("phase = %s", s.Phase)
	}
	r := s.Results()
	if r.Score != 1 || r.Wrong != 1 || r.Skipped != 1 {
		t.Errorf("results = %+v", r)
	}
	text := out.String()
	for _, want := range []string{"💡 Hint:", "Please enter A, B, C, or D", "✅ Correct!", "❌ Incorrect. The correct answer is B)", "Performance Analysis"} {
		if !strings.Contains(text, want) {
			t.Errorf("output is missing %q", want)
		}
	}
}

func TestPlayGoBack(t *testing.T) {
	s := pdfquiz.NewSession(pdfquiz.DefaultQuestions())
	s.Start()
	input := strings.Join([]string{"C", "b 3", "b 1", "B", "q"}, "\n")
	var out bytes.Buffer

	play(s, "Sample Quiz", bufio.NewScanner(strings.NewReader(input)), &out)

	if !strings.Contains(out.String(), "You can only go back to questions 1-2") {
		t.Error("jumping ahead should be refused")
	}
	// Going back to question 1 replays its outcome and lands on question 2 again.
	if s.Score != 2 {
		t.Errorf("score = %d, want 2", s.Score)
	}
}

func TestLaunchForPlayFallsBackToSample(t *testing.T) {
	store := pdfquiz.NewCollectionStore(pdfquiz.NewMemoryStore())
	title, questions, err := launchForPlay(context.Background(), store, "")
	if err != nil {
		t.Fatalf("launchForPlay: %v", err)
	}
	if title != "Sample Quiz" || len(questions) != 3 {
		t.Errorf("got %q with %d questions", title, len(questions))
	}
	if _, _, err := launchForPlay(context.Background(), store, "missing"); err == nil {
		t.Error("unknown id accepted")
	}
}
