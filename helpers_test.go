package pdfquiz

import (
	"encoding/json"
	"fmt"
	"testing"
)

// sampleQuestion returns a valid question whose correct answer is option correct
func sampleQuestion(text string, correct int) Question {
	q := Question{Question: text, Hint: "Think about the basics."}
	for i := 0; i < OptionsPerQuestion; i++ {
		q.Options = append(q.Options, Option{
			Text:        fmt.Sprintf("%s option %d", text, i+1),
			Correct:     i == correct,
			Explanation: fmt.Sprintf("explanation %d", i+1),
		})
	}
	return q
}

func sampleQuestions(n int) []Question {
	out := make([]Question, n)
	for i := range out {
		out[i] = sampleQuestion(fmt.Sprintf("Question number %d", i+1), i%OptionsPerQuestion)
	}
	return out
}

// questionsJSON renders questions the way a model is asked to answer
func questionsJSON(t *testing.T, questions []Question) string {
	t.Helper()
	data, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("marshal questions: %v", err)
	}
	return string(data)
}
