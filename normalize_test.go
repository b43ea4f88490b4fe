package pdfquiz

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeObjects(t *testing.T, s string) []map[string]any {
	t.Helper()
	var objects []map[string]any
	if err := json.Unmarshal([]byte(s), &objects); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return objects
}

func TestNormalizeInfersIsCorrect(t *testing.T) {
	objects := decodeObjects(t, `[{"question": "Which protocol is connectionless?", "hint": "Think about handshakes.",
	  "options": [
		{"text": "TCP", "isCorrect": false},
		{"text": "UDP", "is_correct": true},
		{"text": "SCTP", "isCorrect": false},
		{"text": "QUIC over TLS", "isCorrect": false}]}]`)

	questions, err := NormalizeQuestions(objects)
	if err != nil {
		t.Fatalf("NormalizeQuestions: %v", err)
	}
	q := questions[0]
	if got := q.CorrectIndex(); got != 1 {
		t.Errorf("correct index = %d, want 1", got)
	}
	if q.Options[1].Explanation != defaultCorrectExplanation {
		t.Errorf("correct explanation = %q", q.Options[1].Explanation)
	}
	if q.Options[0].Explanation != defaultIncorrectExplanation {
		t.Errorf("incorrect explanation = %q", q.Options[0].Explanation)
	}
	if q.Hint != "Think about handshakes." {
		t.Errorf("hint = %q, want the original", q.Hint)
	}
}

func TestNormalizeInfersFromExplanation(t *testing.T) {
	objects := decodeObjects(t, `[{"question": "What is 2+2?", "hint": "Count on your fingers.",
	  "options": [
		{"text": "3", "explanation": "This is incorrect, it is one short."},
		{"text": "4", "explanation": "Correct, two plus two is four."},
		{"text": "5", "explanation": "Too many."},
		{"text": "22", "explanation": "That is concatenation."}]}]`)

	questions, err := NormalizeQuestions(objects)
	if err != nil {
		t.Fatalf("NormalizeQuestions: %v", err)
	}
	if got := questions[0].CorrectIndex(); got != 1 {
		t.Errorf("correct index = %d, want 1", got)
	}
}

func TestNormalizeSharedExplanation(t *testing.T) {
	objects := decodeObjects(t, `[{"question": "Primary colour?", "hint": "Paint box.", "explanation": "Red is primary.",
	  "options": [
		{"text": "Red", "correct": true},
		{"text": "Green", "correct": false},
		{"text": "Purple", "correct": false},
		{"text": "Orange", "correct": false}]}]`)

	questions, err := NormalizeQuestions(objects)
	if err != nil {
		t.Fatalf("NormalizeQuestions: %v", err)
	}
	if got := questions[0].Options[0].Explanation; got != "Red is primary." {
		t.Errorf("explanation = %q", got)
	}
}

func TestNormalizeReplacesLeakingHint(t *testing.T) {
	for name, hint := range map[string]string{
		"empty":            "",
		"names option":     "It starts with UDP datagrams.",
		"says correct":     "The correct one is obvious.",
		"case insensitive": "think udp",
	} {
		t.Run(name, func(t *testing.T) {
			obj := map[string]any{
				"question": "Which transport protocol skips connection setup entirely?",
				"hint":     hint,
				"options": []any{
					map[string]any{"text": "TCP", "correct": false},
					map[string]any{"text": "UDP", "correct": true},
					map[string]any{"text": "SCTP", "correct": false},
					map[string]any{"text": "DCCP", "correct": false},
				},
			}
			q, err := NormalizeQuestion(0, obj)
			if err != nil {
				t.Fatalf("NormalizeQuestion: %v", err)
			}
			if q.Hint == hint {
				t.Fatalf("hint %q was kept", hint)
			}
			if hintLeaksAnswer(q.Hint, q.Options) {
				t.Errorf("replacement hint %q still leaks", q.Hint)
			}
		})
	}
}

func TestGenerateHint(t *testing.T) {
	options := []Option{{Text: "TCP"}, {Text: "UDP"}, {Text: "SCTP"}, {Text: "DCCP"}}
	hint := GenerateHint("Which transport protocol skips connection setup entirely?", options)
	want := "Consider the key ideas around: transport, protocol, skips, connection."
	if hint != want {
		t.Errorf("hint = %q, want %q", hint, want)
	}

	if got := GenerateHint("Is it UDP?", options); got != fallbackHint {
		t.Errorf("short question hint = %q, want fallback", got)
	}
}

func TestGenerateHintSkipsOptionWords(t *testing.T) {
	options := []Option{{Text: "Mitochondria"}, {Text: "Ribosome"}, {Text: "Nucleus"}, {Text: "Golgi apparatus"}}
	hint := GenerateHint("Which organelle, the mitochondria or another, produces cellular energy?", options)
	if strings.Contains(strings.ToLower(hint), "mitochondria") {
		t.Errorf("hint %q names an option", hint)
	}
}

func TestNormalizeAmbiguousCorrectCount(t *testing.T) {
	for name, flags := range map[string][]bool{
		"none": {false, false, false, false},
		"two":  {true, true, false, false},
	} {
		t.Run(name, func(t *testing.T) {
			var options []any
			for i, c := range flags {
				options = append(options, map[string]any{"text": string(rune('A' + i)), "correct": c})
			}
			_, err := NormalizeQuestion(3, map[string]any{"question": "Pick one", "options": options})
			var ambiguous *AmbiguousCorrectCountError
			if !errors.As(err, &ambiguous) {
				t.Fatalf("err = %v, want *AmbiguousCorrectCountError", err)
			}
			if ambiguous.Index != 3 {
				t.Errorf("index = %d, want 3", ambiguous.Index)
			}
		})
	}
}

func TestNormalizeInvalidShape(t *testing.T) {
	cases := map[string]map[string]any{
		"no question":       {"options": []any{}},
		"three options":     {"question": "Q", "options": []any{map[string]any{"text": "a"}, map[string]any{"text": "b"}, map[string]any{"text": "c"}}},
		"options not array": {"question": "Q", "options": "a, b, c, d"},
		"option without text": {"question": "Q", "options": []any{
			map[string]any{"text": "a", "correct": true}, map[string]any{"text": ""},
			map[string]any{"text": "c"}, map[string]any{"text": "d"},
		}},
	}
	for name, obj := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NormalizeQuestion(0, obj)
			var shape *InvalidQuestionShapeError
			if !errors.As(err, &shape) {
				t.Fatalf("err = %v, want *InvalidQuestionShapeError", err)
			}
		})
	}
}

func TestNormalizeQuestionsStopsAtFirstFailure(t *testing.T) {
	objects := decodeObjects(t, questionsJSON(t, sampleQuestions(3)))
	objects[1]["options"] = []any{}
	_, err := NormalizeQuestions(objects)
	var shape *InvalidQuestionShapeError
	if !errors.As(err, &shape) || shape.Index != 1 {
		t.Fatalf("err = %v, want shape error at index 1", err)
	}
	if !strings.HasPrefix(err.Error(), "question 2 ") {
		t.Errorf("message %q should use the 1-based position", err.Error())
	}
}
