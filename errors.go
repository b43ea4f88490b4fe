package pdfquiz

import (
	"errors"
	"fmt"
)

var (
	// ErrNoArrayFound means the response held no "[" ... "]" span at all
	ErrNoArrayFound = errors.New("no JSON array found in AI response")
	// ErrItemNotFound is returned for operations on an unknown quiz id
	ErrItemNotFound = errors.New("quiz not found")
	// ErrNotPDF means the uploaded file does not carry a PDF header
	ErrNotPDF = errors.New("file is not a valid PDF")
	// ErrEmptyDocument means the PDF yielded no extractable text
	ErrEmptyDocument = errors.New("no text could be extracted from the document")
	// ErrEmptyImport means a manual import held no questions
	ErrEmptyImport = errors.New("array is empty, add at least one question")
	// ErrNoCollaborator means generation was requested without an AI backend
	ErrNoCollaborator = errors.New("no AI provider configured")
)

// maxErrorDetail bounds the parse error text carried for display
const maxErrorDetail = 200

// UnparseableResponseError is returned when neither repair nor salvage recovered anything
type UnparseableResponseError struct {
	Detail string
}

func (e *UnparseableResponseError) Error() string {
	return fmt.Sprintf("could not parse AI response: %s", e.Detail)
}

func newUnparseable(err error) *UnparseableResponseError {
	detail := err.Error()
	if r := []rune(detail); len(r) > maxErrorDetail {
		detail = string(r[:maxErrorDetail]) + "..."
	}
	return &UnparseableResponseError{Detail: detail}
}

// InvalidQuestionShapeError reports a question missing its text or its 4 options
type InvalidQuestionShapeError struct {
	Index  int
	Reason string
}

func (e *InvalidQuestionShapeError) Error() string {
	return fmt.Sprintf("question %d is invalid: %s", e.Index+1, e.Reason)
}

// AmbiguousCorrectCountError reports a question without exactly one correct option
type AmbiguousCorrectCountError struct {
	Index int
	Found int
}

func (e *AmbiguousCorrectCountError) Error() string {
	return fmt.Sprintf("question %d must have exactly one correct answer (found %d)", e.Index+1, e.Found)
}

// InsufficientQuestionsError is returned when supplemental generation ran out of attempts
type InsufficientQuestionsError struct {
	Requested int
	Got       int
}

// Shortfall is how many questions are still missing
func (e *InsufficientQuestionsError) Shortfall() int {
	return e.Requested - e.Got
}

func (e *InsufficientQuestionsError) Error() string {
	return fmt.Sprintf("only generated %d of %d requested questions (short by %d)", e.Got, e.Requested, e.Shortfall())
}
