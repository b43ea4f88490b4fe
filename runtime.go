package pdfquiz

import (
	"fmt"
	"math"
	"strings"
)

// Phase is the lifecycle stage of a quiz session
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseCompleted  Phase = "completed"
)

// AnswerStatus records how a question was answered
type AnswerStatus string

const (
	AnswerCorrect AnswerStatus = "correct"
	AnswerWrong   AnswerStatus = "wrong"
)

// Session is the in-progress state of one quiz run. It owns its own copy of
// the questions; answering never touches stored quizzes. Misuse (answering
// twice, navigating out of range) is rejected as a no-op.
type Session struct {
	Questions    []Question           `json:"questions"`
	CurrentIndex int                  `json:"currentIndex"`
	Score        int                  `json:"score"`
	WrongCount   int                  `json:"wrongCount"`
	Answered     map[int]bool         `json:"answered"`
	Status       map[int]AnswerStatus `json:"answerStatus"`
	Selected     map[int]int          `json:"selected"`
	Furthest     int                  `json:"furthest"`
	Phase        Phase                `json:"phase"`
}

// NewSession creates a session that has not started yet
func NewSession(questions []Question) *Session {
	return &Session{Questions: cloneQuestions(questions), Phase: PhaseNotStarted}
}

// Init (re)starts the session on the given questions
func (s *Session) Init(questions []Question) {
	s.Questions = cloneQuestions(questions)
	s.CurrentIndex = 0
	s.Furthest = 0
	s.Score = 0
	s.WrongCount = 0
	s.Answered = make(map[int]bool)
	s.Status = make(map[int]AnswerStatus)
	s.Selected = make(map[int]int)
	s.Phase = PhaseInProgress
	if len(s.Questions) == 0 {
		s.Phase = PhaseCompleted
	}
}

// Start enters the in-progress phase using the session's own questions
func (s *Session) Start() {
	s.Init(s.Questions)
}

// Restart replays the same question list, keeping any option order fixed
func (s *Session) Restart() {
	s.Init(s.Questions)
}

// Total is the number of questions in the session
func (s *Session) Total() int {
	return len(s.Questions)
}

// Current returns the question at the current index, if any
func (s *Session) Current() (Question, bool) {
	if s.Phase != PhaseInProgress || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// AnswerOutcome describes an accepted answer
type AnswerOutcome struct {
	Index        int          `json:"index"`
	Selected     int          `json:"selected"`
	CorrectIndex int          `json:"correctIndex"`
	Status       AnswerStatus `json:"status"`
	Options      []Option     `json:"options"`
}

// Answer locks in the selected option for a question. It reports false,
// changing nothing, when the question was already answered or either index
// is out of range.
func (s *Session) Answer(index, selected int) (AnswerOutcome, bool) {
	if s.Phase != PhaseInProgress || index < 0 || index >= len(s.Questions) {
		return AnswerOutcome{}, false
	}
	if s.Answered[index] {
		return AnswerOutcome{}, false
	}
	q := s.Questions[index]
	if selected < 0 || selected >= len(q.Options) {
		return AnswerOutcome{}, false
	}

	// Sessions restored from gob or JSON lose their empty maps.
	if s.Answered == nil {
		s.Answered = make(map[int]bool)
		s.Status = make(map[int]AnswerStatus)
		s.Selected = make(map[int]int)
	}

	status := AnswerWrong
	if q.Options[selected].Correct {
		status = AnswerCorrect
		s.Score++
	} else {
		s.WrongCount++
	}
	s.Answered[index] = true
	s.Status[index] = status
	s.Selected[index] = selected

	return AnswerOutcome{
		Index:        index,
		Selected:     selected,
		CorrectIndex: q.CorrectIndex(),
		Status:       status,
		Options:      append([]Option(nil), q.Options...),
	}, true
}

// Advance moves to the next question; stepping past the last one completes
// the session.
func (s *Session) Advance() {
	if s.Phase != PhaseInProgress {
		return
	}
	s.CurrentIndex++
	if s.CurrentIndex >= len(s.Questions) {
		s.CurrentIndex = len(s.Questions)
		s.Phase = PhaseCompleted
		return
	}
	if s.CurrentIndex > s.Furthest {
		s.Furthest = s.CurrentIndex
	}
}

// JumpTo revisits the current or an earlier-visited question
func (s *Session) JumpTo(index int) bool {
	if s.Phase != PhaseInProgress || index < 0 || index > s.Furthest || index >= len(s.Questions) {
		return false
	}
	s.CurrentIndex = index
	return true
}

// Finish completes the session and reports the final tallies
func (s *Session) Finish() Results {
	if s.Phase != PhaseNotStarted {
		s.Phase = PhaseCompleted
	}
	return s.Results()
}

// Results computes tallies without changing the phase
func (s *Session) Results() Results {
	total := len(s.Questions)
	r := Results{
		Total:   total,
		Score:   s.Score,
		Wrong:   s.WrongCount,
		Skipped: total - len(s.Answered),
	}
	if total > 0 {
		r.Accuracy = int(math.Round(100 * float64(s.Score) / float64(total)))
	}
	return r
}

// Results are the final tallies of a session
type Results struct {
	Total    int `json:"total"`
	Score    int `json:"score"`
	Wrong    int `json:"wrong"`
	Skipped  int `json:"skipped"`
	Accuracy int `json:"accuracy"`
}

// Rating returns the badge and message for the accuracy band
func (r Results) Rating() (emoji, message string) {
	switch {
	case r.Accuracy >= 90:
		return "🏆", "Outstanding! Perfect score!"
	case r.Accuracy >= 70:
		return "🌟", "Excellent work!"
	case r.Accuracy >= 50:
		return "👍", "Good effort! Keep learning!"
	default:
		return "📚", "Keep practicing! You can do better!"
	}
}

// Analysis is a short multi-line performance summary
func (r Results) Analysis() string {
	var sb strings.Builder
	sb.WriteString("Performance Analysis:\n\n")
	sb.WriteString(fmt.Sprintf("✅ Correct: %d/%d\n", r.Score, r.Total))
	sb.WriteString(fmt.Sprintf("❌ Wrong: %d\n", r.Wrong))
	sb.WriteString(fmt.Sprintf("⏭️ Skipped: %d\n\n", r.Skipped))
	sb.WriteString(fmt.Sprintf("📊 Accuracy: %d%%\n\n", r.Accuracy))
	if float64(r.Score) >= float64(r.Total)*0.7 {
		sb.WriteString("🌟 Great job! You have a strong understanding of the material.")
	} else {
		sb.WriteString("📚 Keep studying! Focus on reviewing the explanations for questions you missed.")
	}
	return sb.String()
}
