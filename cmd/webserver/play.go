package main

import (
	"encoding/json"
	"net/http"

	"pdfquiz"

	"github.com/go-chi/chi/v5"
)

type optionView struct {
	Text        string `json:"text"`
	Correct     *bool  `json:"correct,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

type resultsView struct {
	pdfquiz.Results
	Emoji    string `json:"emoji"`
	Message  string `json:"message"`
	Analysis string `json:"analysis"`
}

// playView is what a player may see: correctness and explanations only
// appear once the question has been answered.
type playView struct {
	Phase    pdfquiz.Phase `json:"phase"`
	Index    int           `json:"index"`
	Total    int           `json:"total"`
	Furthest int           `json:"furthest"`
	Score    int           `json:"score"`
	Wrong    int           `json:"wrong"`
	Question string        `json:"question,omitempty"`
	Options  []optionView  `json:"options,omitempty"`
	Answered bool          `json:"answered"`
	Selected *int          `json:"selected,omitempty"`
	Results  *resultsView  `json:"results,omitempty"`
}

func viewOf(p *pdfquiz.Session) playView {
	v := playView{
		Phase:    p.Phase,
		Index:    p.CurrentIndex,
		Total:    p.Total(),
		Furthest: p.Furthest,
		Score:    p.Score,
		Wrong:    p.WrongCount,
	}
	if q, ok := p.Current(); ok {
		v.Question = q.Question
		v.Answered = p.Answered[p.CurrentIndex]
		if v.Answered {
			sel := p.Selected[p.CurrentIndex]
			v.Selected = &sel
		}
		for _, opt := range q.Options {
			ov := optionView{Text: opt.Text}
			if v.Answered {
				correct := opt.Correct
				ov.Correct = &correct
				ov.Explanation = opt.Explanation
			}
			v.Options = append(v.Options, ov)
		}
	}
	if p.Phase == pdfquiz.PhaseCompleted {
		v.Results = resultsOf(p.Results())
	}
	return v
}

func resultsOf(r pdfquiz.Results) *resultsView {
	emoji, message := r.Rating()
	return &resultsView{Results: r, Emoji: emoji, Message: message, Analysis: r.Analysis()}
}

// playSession loads the caller's quiz run. It writes a 409 and reports false
// when nothing has been launched.
func (s *Server) playSession(w http.ResponseWriter, r *http.Request) (*pdfquiz.Session, bool) {
	sess, _ := s.sessions.Get(r, sessionName)
	p, ok := sess.Values[playKey].(*pdfquiz.Session)
	if !ok || p == nil {
		writeError(w, http.StatusConflict, "no quiz launched")
		return nil, false
	}
	return p, true
}

func (s *Server) savePlay(w http.ResponseWriter, r *http.Request, p *pdfquiz.Session) bool {
	sess, _ := s.sessions.Get(r, sessionName)
	sess.Values[playKey] = p
	if err := sess.Save(r, w); err != nil {
		writeErr(w, err)
		return false
	}
	return true
}

func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	questions, err := s.svc.Store.Launch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	p := pdfquiz.NewSession(questions)
	p.Start()
	if !s.savePlay(w, r, p) {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(p))
}

func (s *Server) handlePlayState(w http.ResponseWriter, r *http.Request) {
	p, ok := s.playSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(p))
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	p, ok := s.playSession(w, r)
	if !ok {
		return
	}
	q, ok := p.Current()
	if !ok {
		writeError(w, http.StatusConflict, "no current question")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"hint": q.Hint})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Index    *int `json:"index"`
		Selected int  `json:"selected"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, ok := s.playSession(w, r)
	if !ok {
		return
	}
	index := p.CurrentIndex
	if body.Index != nil {
		index = *body.Index
	}
	outcome, accepted := p.Answer(index, body.Selected)
	if !accepted {
		writeError(w, http.StatusConflict, "answer not accepted")
		return
	}
	if !s.savePlay(w, r, p) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"outcome": outcome, "state": viewOf(p)})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.mutatePlay(w, r, func(p *pdfquiz.Session) bool {
		p.Advance()
		return true
	})
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.mutatePlay(w, r, func(p *pdfquiz.Session) bool {
		return p.JumpTo(body.Index)
	})
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	s.mutatePlay(w, r, func(p *pdfquiz.Session) bool {
		p.Finish()
		return true
	})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.mutatePlay(w, r, func(p *pdfquiz.Session) bool {
		p.Restart()
		return true
	})
}

// mutatePlay applies fn to the caller's run, saving and returning the new
// state. fn reporting false is answered with 409 and nothing is saved.
func (s *Server) mutatePlay(w http.ResponseWriter, r *http.Request, fn func(*pdfquiz.Session) bool) {
	p, ok := s.playSession(w, r)
	if !ok {
		return
	}
	if !fn(p) {
		writeError(w, http.StatusConflict, "move not allowed")
		return
	}
	if !s.savePlay(w, r, p) {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(p))
}
