package pdfquiz

import (
	"strings"
	"testing"
)

func startedSession(n int) *Session {
	s := NewSession(sampleQuestions(n))
	s.Start()
	return s
}

func TestSessionAnswerLocks(t *testing.T) {
	s := startedSession(3)
	// Question 1 has its correct answer at index 0.
	outcome, ok := s.Answer(0, 2)
	if !ok || outcome.Status != AnswerWrong || outcome.CorrectIndex != 0 {
		t.Fatalf("first answer = %+v, %v", outcome, ok)
	}
	if _, ok := s.Answer(0, 0); ok {
		t.Fatal("second answer to the same question was accepted")
	}
	if s.Selected[0] != 2 || s.Status[0] != AnswerWrong || s.Score != 0 || s.WrongCount != 1 {
		t.Errorf("state changed after rejected answer: %+v", s)
	}
}

func TestSessionAnswerOutOfRange(t *testing.T) {
	s := startedSession(2)
	for _, tc := range [][2]int{{-1, 0}, {2, 0}, {0, -1}, {0, 4}} {
		if _, ok := s.Answer(tc[0], tc[1]); ok {
			t.Errorf("Answer(%d, %d) accepted", tc[0], tc[1])
		}
	}
	if len(s.Answered) != 0 {
		t.Error("rejected answers were recorded")
	}
}

func TestSessionAdvanceCompletes(t *testing.T) {
	s := startedSession(2)
	s.Answer(0, 0)
	s.Advance()
	if s.CurrentIndex != 1 || s.Furthest != 1 || s.Phase != PhaseInProgress {
		t.Fatalf("after first advance: index %d furthest %d phase %s", s.CurrentIndex, s.Furthest, s.Phase)
	}
	s.Advance()
	if s.Phase != PhaseCompleted {
		t.Fatalf("phase = %s, want completed", s.Phase)
	}
	if _, ok := s.Current(); ok {
		t.Error("completed session should have no current question")
	}
	r := s.Results()
	if r.Score != 1 || r.Skipped != 1 || r.Accuracy != 50 {
		t.Errorf("results = %+v", r)
	}
}

func TestSessionJumpRules(t *testing.T) {
	s := startedSession(4)
	if s.JumpTo(1) {
		t.Fatal("jumped ahead to an unvisited question")
	}
	s.Advance()
	s.Advance()
	if !s.JumpTo(0) || s.CurrentIndex != 0 {
		t.Fatal("could not go back to the first question")
	}
	if s.Furthest != 2 {
		t.Errorf("furthest = %d, want 2 after going back", s.Furthest)
	}
	if !s.JumpTo(2) {
		t.Error("could not return to the furthest question")
	}
	if s.JumpTo(3) || s.JumpTo(-1) {
		t.Error("jump outside the visited range was accepted")
	}
}

func TestSessionFinishTallies(t *testing.T) {
	s := startedSession(3)
	s.Answer(0, 0) // correct
	s.Advance()
	s.Answer(1, 0) // wrong, correct is 1
	r := s.Finish()

	if s.Phase != PhaseCompleted {
		t.Errorf("phase = %s", s.Phase)
	}
	want := Results{Total: 3, Score: 1, Wrong: 1, Skipped: 1, Accuracy: 33}
	if r != want {
		t.Errorf("results = %+v, want %+v", r, want)
	}
	if _, ok := s.Answer(2, 2); ok {
		t.Error("answer accepted after finish")
	}
}

func TestSessionRestartKeepsOrder(t *testing.T) {
	questions := sampleQuestions(2)
	ShuffleOptions(questions[0].Options)
	s := NewSession(questions)
	s.Start()
	s.Answer(0, 1)
	s.Advance()
	s.Finish()

	s.Restart()
	if s.Phase != PhaseInProgress || s.CurrentIndex != 0 || s.Score+s.WrongCount != 0 || len(s.Answered) != 0 {
		t.Fatalf("restart did not reset: %+v", s)
	}
	for i, opt := range s.Questions[0].Options {
		if opt != questions[0].Options[i] {
			t.Fatal("restart changed option order")
		}
	}
}

func TestSessionEmpty(t *testing.T) {
	s := startedSession(0)
	if s.Phase != PhaseCompleted {
		t.Errorf("empty session phase = %s", s.Phase)
	}
	if r := s.Finish(); r.Accuracy != 0 || r.Total != 0 {
		t.Errorf("results = %+v", r)
	}
}

func TestSessionAnswerAfterDecode(t *testing.T) {
	s := &Session{Questions: sampleQuestions(1), Phase: PhaseInProgress}
	if _, ok := s.Answer(0, 0); !ok {
		t.Fatal("answer rejected on a session without maps")
	}
}

func TestResultsRating(t *testing.T) {
	cases := []struct {
		accuracy int
		emoji    string
	}{
		{100, "🏆"}, {90, "🏆"}, {89, "🌟"}, {70, "🌟"}, {69, "👍"}, {50, "👍"}, {49, "📚"}, {0, "📚"},
	}
	for _, tc := range cases {
		if emoji, _ := (Results{Accuracy: tc.accuracy}).Rating(); emoji != tc.emoji {
			t.Errorf("Rating(%d) = %s, want %s", tc.accuracy, emoji, tc.emoji)
		}
	}
}

func TestResultsAnalysis(t *testing.T) {
	strong := Results{Total: 10, Score: 7, Wrong: 2, Skipped: 1, Accuracy: 70}.Analysis()
	if !strings.Contains(strong, "Great job") || !strings.Contains(strong, "Correct: 7/10") {
		t.Errorf("analysis = %q", strong)
	}
	weak := Results{Total: 10, Score: 6, Wrong: 4, Accuracy: 60}.Analysis()
	if !strings.Contains(weak, "Keep studying") {
		t.Errorf("analysis = %q", weak)
	}
}
