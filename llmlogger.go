package pdfquiz

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LLMLogger records every AI exchange of one generation run in its own file.
// A nil *LLMLogger is valid and discards everything.
type LLMLogger struct {
	file  *os.File
	mu    sync.Mutex
	runID string
}

// NewLLMLogger creates <dir>/<runID>.log and writes the request header
func NewLLMLogger(dir, runID string, req GenerationRequest) (*LLMLogger, error) {
	if dir == "" {
		dir = "log"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.log", runID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &LLMLogger{
		file:  file,
		runID: runID,
	}

	logger.Logf("=== Quiz Generation Log ===\n")
	logger.Logf("Run ID: %s\n", runID)
	if req.FileName != "" {
		logger.Logf("Document: %s\n", req.FileName)
	}
	logger.Logf("Requested Questions: %d\n", req.NumQuestions)
	logger.Logf("Source Text Length: %d characters\n", len(req.SourceText))
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("========================\n\n")

	return logger, nil
}

// Logf writes a formatted log entry with timestamp
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	if ll == nil {
		return
	}
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.writef(format, args...)
}

func (ll *LLMLogger) writef(format string, args ...interface{}) {
	if ll.file == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(ll.file, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	ll.file.Sync()
}

// LogLLMRequest logs a prompt sent to the collaborator
func (ll *LLMLogger) LogLLMRequest(stage, prompt string) {
	ll.Logf("=== LLM REQUEST (%s) ===\n", stage)
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("=====================\n\n")
}

// LogLLMResponse logs raw collaborator output
func (ll *LLMLogger) LogLLMResponse(stage, response string) {
	ll.Logf("=== LLM RESPONSE (%s) ===\n", stage)
	ll.Logf("Response:\n%s\n", response)
	ll.Logf("======================\n\n")
}

// LogQuestionResult logs whether a supplemental question was kept
func (ll *LLMLogger) LogQuestionResult(question, action, reason string) {
	ll.Logf("Question %q: %s - %s\n", question, action, reason)
}

// Close writes the footer and closes the file
func (ll *LLMLogger) Close() error {
	if ll == nil {
		return nil
	}
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.file == nil {
		return nil
	}
	ll.writef("=== Quiz Generation Complete ===\n")
	ll.writef("Completed: %s\n", time.Now().Format(time.RFC3339))
	ll.writef("=============================\n")
	err := ll.file.Close()
	ll.file = nil
	return err
}
