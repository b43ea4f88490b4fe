package pdfquiz

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
)

// OpenStore opens the key-value backend named by cfg.StoreDriver
func OpenStore(ctx context.Context, cfg Config) (KVStore, error) {
	switch cfg.StoreDriver {
	case "", "sqlite", "sqlite3":
		s, err := OpenSQLite(cfg.StoreDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres", "pgx":
		s, err := OpenPostgres(cfg.StoreDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		s, err := OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "")
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// NewCollaborator builds the AI backend named by cfg.AIProvider
func NewCollaborator(ctx context.Context, cfg Config) (Collaborator, error) {
	switch cfg.AIProvider {
	case "", "gemini":
		c, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.AIModel)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.AIModel, cfg.OpenAIBaseURL), nil
	}
	return nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider)
}

// Service ties document extraction, generation and the collection store
// together. Nothing reaches the store unless generation fully succeeded.
type Service struct {
	Store     *CollectionStore
	kv        KVStore
	ai        Collaborator
	generator *Generator
}

// NewService wires a service. ai may be nil for read-only use.
func NewService(kv KVStore, ai Collaborator, cfg Config) *Service {
	s := &Service{
		Store: NewCollectionStore(kv),
		kv:    kv,
		ai:    ai,
	}
	if ai != nil {
		s.generator = NewGenerator(ai, cfg.MaxSourceChars, cfg.LogDir)
	}
	return s
}

// GenerateFromPDF extracts a PDF's text and generates a quiz named after it
func (s *Service) GenerateFromPDF(ctx context.Context, path, fileName string, n int, shuffle bool) (*QuizItem, *GenerationResult, error) {
	if fileName == "" {
		fileName = filepath.Base(path)
	}
	pages, err := ExtractPDFText(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	text, err := JoinPages(pages)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Extracted %d pages (%d characters) from %s", len(pages), len(text), fileName)
	return s.GenerateFromText(ctx, BaseName(fileName), fileName, text, n, shuffle)
}

// GenerateFromText generates and stores a quiz from already extracted text
func (s *Service) GenerateFromText(ctx context.Context, baseName, fileName, text string, n int, shuffle bool) (*QuizItem, *GenerationResult, error) {
	if s.generator == nil {
		return nil, nil, ErrNoCollaborator
	}
	result, err := s.generator.Generate(ctx, GenerationRequest{
		SourceText:   text,
		FileName:     fileName,
		NumQuestions: n,
	})
	if err != nil {
		return nil, nil, err
	}
	item, err := s.Store.AddItem(ctx, baseName, fileName, result.Questions, shuffle)
	if err != nil {
		return nil, nil, err
	}
	return item, result, nil
}

// ImportManual validates pasted JSON questions and stores them as a quiz
func (s *Service) ImportManual(ctx context.Context, baseName, text string, shuffle bool) (*QuizItem, error) {
	questions, err := ParseManualQuestions(text)
	if err != nil {
		return nil, err
	}
	if baseName == "" {
		baseName = "Manual"
	}
	return s.Store.AddItem(ctx, baseName, "", questions, shuffle)
}

// Close releases the store and the AI client
func (s *Service) Close() error {
	if c, ok := s.ai.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Printf("Failed to close AI client: %v", err)
		}
	}
	return s.kv.Close()
}
