package pdfquiz

import (
	"encoding/json"
	"time"
)

// OptionsPerQuestion is the fixed number of answer options every question carries
const OptionsPerQuestion = 4

// Option is a single answer choice with its own explanation
type Option struct {
	Text        string `json:"text"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

// Question represents a single quiz question with exactly one correct option
type Question struct {
	Question string   `json:"question"`
	Hint     string   `json:"hint"`
	Options  []Option `json:"options"`
}

// CorrectIndex returns the position of the correct option, or -1
func (q Question) CorrectIndex() int {
	for i, opt := range q.Options {
		if opt.Correct {
			return i
		}
	}
	return -1
}

// QuizItem is one named, persisted set of questions
type QuizItem struct {
	ID             string     `json:"id"`
	FileBase       string     `json:"fileBase"`
	FileName       string     `json:"fileName"`
	Index          int        `json:"index"`
	Title          string     `json:"title"`
	CreatedAt      time.Time  `json:"createdAt"`
	Questions      []Question `json:"questions"`
	ShuffleOptions bool       `json:"shuffleOptions,omitempty"`
}

// Collection is the durable record: every quiz item plus the active pointer.
// An empty ActiveQuizID means no quiz is active.
type Collection struct {
	Items        []QuizItem `json:"items"`
	ActiveQuizID string     `json:"activeQuizId"`
}

type collectionJSON struct {
	Items        []QuizItem `json:"items"`
	ActiveQuizID *string    `json:"activeQuizId"`
}

// MarshalJSON writes a missing active quiz as null
func (c Collection) MarshalJSON() ([]byte, error) {
	out := collectionJSON{Items: c.Items}
	if out.Items == nil {
		out.Items = []QuizItem{}
	}
	if c.ActiveQuizID != "" {
		id := c.ActiveQuizID
		out.ActiveQuizID = &id
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts null or a string for the active quiz
func (c *Collection) UnmarshalJSON(data []byte) error {
	var in collectionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.Items = in.Items
	c.ActiveQuizID = ""
	if in.ActiveQuizID != nil {
		c.ActiveQuizID = *in.ActiveQuizID
	}
	return nil
}

// Find returns the position of the item with the given id, or -1
func (c *Collection) Find(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// GenerationRequest represents a request to generate a quiz from document text
type GenerationRequest struct {
	SourceText   string `json:"source_text"`
	FileName     string `json:"file_name,omitempty"`
	NumQuestions int    `json:"num_questions"`
}

// GenerationResult is a validated question set plus recovery warnings
type GenerationResult struct {
	Questions []Question     `json:"questions"`
	Warnings  []ParseWarning `json:"warnings,omitempty"`
}

func cloneQuestions(src []Question) []Question {
	if src == nil {
		return nil
	}
	out := make([]Question, len(src))
	for i, q := range src {
		out[i] = q
		out[i].Options = append([]Option(nil), q.Options...)
	}
	return out
}
