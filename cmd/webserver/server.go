package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"pdfquiz"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionName    = "pdfquiz-session"
	playKey        = "play"
	adminKey       = "admin"
	maxUploadBytes = 32 << 20
)

type Server struct {
	svc      *pdfquiz.Service
	sessions sessions.Store
	cfg      pdfquiz.Config
}

func newServer(svc *pdfquiz.Service, store sessions.Store, cfg pdfquiz.Config) *Server {
	return &Server{svc: svc, sessions: store, cfg: cfg}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) })

	r.Route("/api", func(r chi.Router) {
		r.Get("/quizzes", s.handleListQuizzes)
		r.Post("/quizzes", s.handleGenerate)
		r.Get("/quizzes/active", s.handleActive)
		r.Get("/quizzes/{id}", s.handleGetQuiz)
		r.Put("/quizzes/{id}/active", s.handleActivate)
		r.Put("/quizzes/{id}/shuffle", s.handleShuffle)
		r.Get("/quizzes/{id}/export", s.handleExport)
		r.Post("/quizzes/{id}/launch", s.handleLaunch)

		r.Get("/play", s.handlePlayState)
		r.Get("/play/hint", s.handleHint)
		r.Post("/play/answer", s.handleAnswer)
		r.Post("/play/next", s.handleNext)
		r.Post("/play/jump", s.handleJump)
		r.Post("/play/finish", s.handleFinish)
		r.Post("/play/restart", s.handleRestart)

		r.Post("/admin/login", s.handleLogin)
		r.Post("/admin/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/quizzes/import", s.handleImport)
			r.Delete("/quizzes/{id}", s.handleDelete)
			r.Delete("/data", s.handleClear)
		})
	})
	return r
}

// --- Quiz collection ---

type quizSummary struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	FileName       string    `json:"fileName,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	NumQuestions   int       `json:"numQuestions"`
	ShuffleOptions bool      `json:"shuffleOptions"`
	Active         bool      `json:"active"`
}

func summarize(item pdfquiz.QuizItem, activeID string) quizSummary {
	return quizSummary{
		ID:             item.ID,
		Title:          item.Title,
		FileName:       item.FileName,
		CreatedAt:      item.CreatedAt,
		NumQuestions:   len(item.Questions),
		ShuffleOptions: item.ShuffleOptions,
		Active:         item.ID == activeID,
	}
}

func (s *Server) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	c := s.svc.Store.Load(r.Context())
	out := make([]quizSummary, 0, len(c.Items))
	for _, item := range c.Items {
		out = append(out, summarize(item, c.ActiveQuizID))
	}
	writeJSON(w, http.StatusOK, map[string]any{"quizzes": out, "activeQuizId": c.ActiveQuizID})
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	item, err := s.svc.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	item := s.svc.Store.GetActive(r.Context())
	if item == nil {
		writeError(w, http.StatusNotFound, "no active quiz")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type generateResponse struct {
	Quiz     quizSummary `json:"quiz"`
	Warnings []string    `json:"warnings,omitempty"`
}

type generateTextRequest struct {
	Name         string `json:"name"`
	Text         string `json:"text"`
	NumQuestions int    `json:"numQuestions"`
	Shuffle      bool   `json:"shuffle"`
}

// handleGenerate accepts either a multipart PDF upload (field "pdf") or a
// JSON body with already extracted text.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var (
		item   *pdfquiz.QuizItem
		result *pdfquiz.GenerationResult
		err    error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		item, result, err = s.generateFromUpload(w, r)
	} else {
		var req generateTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			writeError(w, http.StatusBadRequest, "text is required")
			return
		}
		n := req.NumQuestions
		if n == 0 {
			n = s.cfg.DefaultQuestions
		}
		item, result, err = s.svc.GenerateFromText(r.Context(), req.Name, "", req.Text, n, req.Shuffle)
	}
	if err != nil {
		log.Printf("Quiz generation failed: %v", err)
		writeErr(w, err)
		return
	}

	resp := generateResponse{Quiz: summarize(*item, item.ID)}
	for _, warn := range result.Warnings {
		resp.Warnings = append(resp.Warnings, warn.Message())
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) generateFromUpload(w http.ResponseWriter, r *http.Request) (*pdfquiz.QuizItem, *pdfquiz.GenerationResult, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, badRequest("invalid upload: %v", err)
	}
	file, header, err := r.FormFile("pdf")
	if err != nil {
		return nil, nil, badRequest("a PDF file is required in field \"pdf\"")
	}
	defer file.Close()

	n := s.cfg.DefaultQuestions
	if v := r.FormValue("questions"); v != "" {
		if n, err = strconv.Atoi(v); err != nil || n < 1 {
			return nil, nil, badRequest("questions must be a positive number")
		}
	}
	shuffle, _ := strconv.ParseBool(r.FormValue("shuffle"))

	tmp, err := os.CreateTemp("", "pdfquiz-upload-*.pdf")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		return nil, nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, nil, fmt.Errorf("failed to stage upload: %w", err)
	}

	return s.svc.GenerateFromPDF(r.Context(), tmp.Name(), header.Filename, n, shuffle)
}

type importRequest struct {
	Name    string `json:"name"`
	Text    string `json:"text"`
	Shuffle bool   `json:"shuffle"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item, err := s.svc.ImportManual(r.Context(), req.Name, req.Text, req.Shuffle)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, generateResponse{Quiz: summarize(*item, item.ID)})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Store.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Store.SetActive(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleShuffle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Shuffle bool `json:"shuffle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.svc.Store.SetShuffle(r.Context(), chi.URLParam(r, "id"), body.Shuffle); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	item, err := s.svc.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	name := strings.ReplaceAll(item.Title, " ", "_")

	switch r.URL.Query().Get("format") {
	case "", "json":
		text, err := pdfquiz.ExportJSON(*item)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".json"))
		io.WriteString(w, text)
	case "pdf":
		answers := r.URL.Query().Get("answers") != "false"
		var buf bytes.Buffer
		if err := pdfquiz.ExportPDF(&buf, *item, answers); err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".pdf"))
		w.Write(buf.Bytes())
	default:
		writeError(w, http.StatusBadRequest, "format must be json or pdf")
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Store.Clear(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	if sess, err := s.sessions.Get(r, sessionName); err == nil {
		delete(sess.Values, playKey)
		sess.Save(r, w)
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Admin ---

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if s.cfg.AdminPassHash == "" {
		writeError(w, http.StatusNotFound, "admin login is not configured")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPassHash), []byte(body.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}
	sess, _ := s.sessions.Get(r, sessionName)
	sess.Values[adminKey] = true
	if err := sess.Save(r, w); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.sessions.Get(r, sessionName)
	delete(sess.Values, adminKey)
	if err := sess.Save(r, w); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AdminPassHash != "" {
			sess, _ := s.sessions.Get(r, sessionName)
			if ok, _ := sess.Values[adminKey].(bool); !ok {
				writeError(w, http.StatusUnauthorized, "admin login required")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// --- Helpers ---

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeErr maps library errors onto HTTP statuses
func writeErr(w http.ResponseWriter, err error) {
	var (
		reqErr   *requestError
		short    *pdfquiz.InsufficientQuestionsError
		parseErr *pdfquiz.UnparseableResponseError
		shapeErr *pdfquiz.InvalidQuestionShapeError
		countErr *pdfquiz.AmbiguousCorrectCountError
	)
	switch {
	case errors.As(err, &reqErr):
		writeError(w, http.StatusBadRequest, reqErr.msg)
	case errors.Is(err, pdfquiz.ErrItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, pdfquiz.ErrNoCollaborator):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, pdfquiz.ErrNotPDF), errors.Is(err, pdfquiz.ErrEmptyDocument), errors.Is(err, pdfquiz.ErrEmptyImport):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &short):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":     err.Error(),
			"requested": short.Requested,
			"got":       short.Got,
			"shortfall": short.Shortfall(),
		})
	case errors.As(err, &parseErr), errors.Is(err, pdfquiz.ErrNoArrayFound):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &shapeErr), errors.As(err, &countErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("Request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
