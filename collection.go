package pdfquiz

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	legacyFileBase = "Legacy"
	legacyTitle    = "Legacy Quiz 1"
	untitledBase   = "Untitled"
)

// CollectionStore owns the persisted set of quizzes and the active pointer.
// Every mutation is a full read-modify-write of the collection record;
// writers in one process are serialized, separate processes race.
type CollectionStore struct {
	kv    KVStore
	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

// NewCollectionStore creates a collection store on top of kv
func NewCollectionStore(kv KVStore) *CollectionStore {
	return &CollectionStore{
		kv:  kv,
		now: time.Now,
		newID: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
	}
}

// Load reads the collection. A missing or corrupt record yields an empty
// collection; a legacy single-quiz record is adopted the first time.
func (s *CollectionStore) Load(ctx context.Context) *Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *CollectionStore) load(ctx context.Context) *Collection {
	c := &Collection{}
	raw, ok, err := s.kv.Get(ctx, KeyCollection)
	switch {
	case err != nil:
		log.Printf("Failed to read quiz collection, starting empty: %v", err)
	case ok:
		if err := json.Unmarshal([]byte(raw), c); err != nil {
			log.Printf("Quiz collection record is corrupt, starting empty: %v", err)
			c = &Collection{}
		}
	}
	c.sanitize()
	if len(c.Items) == 0 {
		s.migrateLegacy(ctx, c)
	}
	return c
}

// sanitize drops items without ids or with repeated ids and clears a dangling
// active pointer.
func (c *Collection) sanitize() {
	seen := make(map[string]bool, len(c.Items))
	items := c.Items[:0]
	for _, item := range c.Items {
		if item.ID == "" || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		items = append(items, item)
	}
	c.Items = items
	if c.ActiveQuizID != "" && !seen[c.ActiveQuizID] {
		c.ActiveQuizID = ""
	}
}

func (s *CollectionStore) migrateLegacy(ctx context.Context, c *Collection) {
	raw, ok, err := s.kv.Get(ctx, KeyLegacyQuiz)
	if err != nil || !ok {
		return
	}
	var objects []map[string]any
	if err := json.Unmarshal([]byte(raw), &objects); err != nil {
		VerboseLog("Ignoring unreadable legacy quiz record: %v", err)
		return
	}
	questions, err := NormalizeQuestions(objects)
	if err != nil || len(questions) == 0 {
		VerboseLog("Ignoring invalid legacy quiz record: %v", err)
		return
	}

	item := QuizItem{
		ID:        s.newID(),
		FileBase:  legacyFileBase,
		Index:     1,
		Title:     legacyTitle,
		CreatedAt: s.now(),
		Questions: questions,
	}
	c.Items = append(c.Items, item)
	c.ActiveQuizID = item.ID

	if err := s.save(ctx, c); err != nil {
		log.Printf("Failed to persist migrated legacy quiz: %v", err)
		return
	}
	if err := s.kv.Delete(ctx, KeyLegacyQuiz); err != nil {
		log.Printf("Failed to remove legacy quiz record: %v", err)
	}
	log.Printf("Migrated legacy quiz with %d questions", len(questions))
}

// Save overwrites the persisted collection
func (s *CollectionStore) Save(ctx context.Context, c *Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, c)
}

func (s *CollectionStore) save(ctx context.Context, c *Collection) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz collection: %w", err)
	}
	if err := s.kv.Set(ctx, KeyCollection, string(data)); err != nil {
		return fmt.Errorf("failed to save quiz collection: %w", err)
	}
	return nil
}

// AddItem stores a new quiz and makes it active. Its index counts earlier
// quizzes made from the same base name.
func (s *CollectionStore) AddItem(ctx context.Context, baseName, fileName string, questions []Question, shuffle bool) (*QuizItem, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyImport
	}
	for i, q := range questions {
		if err := CheckQuestion(i, q); err != nil {
			return nil, err
		}
	}
	if baseName == "" {
		baseName = untitledBase
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.load(ctx)
	index := 1
	for _, item := range c.Items {
		if item.FileBase == baseName {
			index++
		}
	}

	item := QuizItem{
		ID:             s.newID(),
		FileBase:       baseName,
		FileName:       fileName,
		Index:          index,
		Title:          fmt.Sprintf("%s Quiz %d", baseName, index),
		CreatedAt:      s.now(),
		Questions:      cloneQuestions(questions),
		ShuffleOptions: shuffle,
	}
	c.Items = append(c.Items, item)
	c.ActiveQuizID = item.ID

	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	log.Printf("Saved quiz %q (%s) with %d questions", item.Title, item.ID, len(item.Questions))
	return &item, nil
}

// DeleteItem removes a quiz. Deleting the active quiz clears the active
// pointer and the current-quiz working copy.
func (s *CollectionStore) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.load(ctx)
	idx := c.Find(id)
	if idx < 0 {
		return fmt.Errorf("failed to delete quiz %s: %w", id, ErrItemNotFound)
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	if c.ActiveQuizID == id {
		c.ActiveQuizID = ""
		if err := s.kv.Delete(ctx, KeyCurrentQuiz); err != nil {
			return err
		}
	}
	return s.save(ctx, c)
}

// List returns every stored quiz in creation order
func (s *CollectionStore) List(ctx context.Context) []QuizItem {
	return s.Load(ctx).Items
}

// Get returns one quiz by id
func (s *CollectionStore) Get(ctx context.Context, id string) (*QuizItem, error) {
	c := s.Load(ctx)
	idx := c.Find(id)
	if idx < 0 {
		return nil, fmt.Errorf("quiz %s: %w", id, ErrItemNotFound)
	}
	return &c.Items[idx], nil
}

// SetActive points the active quiz at id. An empty id clears it.
func (s *CollectionStore) SetActive(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.load(ctx)
	if id != "" && c.Find(id) < 0 {
		return fmt.Errorf("failed to activate quiz %s: %w", id, ErrItemNotFound)
	}
	c.ActiveQuizID = id
	return s.save(ctx, c)
}

// GetActive resolves the active quiz, or nil when none is active
func (s *CollectionStore) GetActive(ctx context.Context) *QuizItem {
	c := s.Load(ctx)
	if c.ActiveQuizID == "" {
		return nil
	}
	idx := c.Find(c.ActiveQuizID)
	if idx < 0 {
		return nil
	}
	return &c.Items[idx]
}

// SetShuffle toggles option shuffling for a quiz
func (s *CollectionStore) SetShuffle(ctx context.Context, id string, shuffle bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.load(ctx)
	idx := c.Find(id)
	if idx < 0 {
		return fmt.Errorf("failed to update quiz %s: %w", id, ErrItemNotFound)
	}
	c.Items[idx].ShuffleOptions = shuffle
	return s.save(ctx, c)
}

// Launch copies a quiz's questions into the current-quiz slot, shuffling each
// option list when the quiz asks for it, and marks the quiz active. The
// stored questions are never touched.
func (s *CollectionStore) Launch(ctx context.Context, id string) ([]Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.load(ctx)
	idx := c.Find(id)
	if idx < 0 {
		return nil, fmt.Errorf("failed to launch quiz %s: %w", id, ErrItemNotFound)
	}
	item := c.Items[idx]

	var questions []Question
	if item.ShuffleOptions {
		questions = shuffledCopy(item.Questions)
	} else {
		questions = cloneQuestions(item.Questions)
	}

	data, err := json.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal current quiz: %w", err)
	}
	if err := s.kv.Set(ctx, KeyCurrentQuiz, string(data)); err != nil {
		return nil, fmt.Errorf("failed to save current quiz: %w", err)
	}

	c.ActiveQuizID = id
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return questions, nil
}

// CurrentQuiz returns the working copy written by the last Launch, or nil
func (s *CollectionStore) CurrentQuiz(ctx context.Context) []Question {
	raw, ok, err := s.kv.Get(ctx, KeyCurrentQuiz)
	if err != nil || !ok {
		return nil
	}
	var questions []Question
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		VerboseLog("Ignoring corrupt current quiz record: %v", err)
		return nil
	}
	return questions
}

// Export renders one quiz's questions as pretty-printed JSON
func (s *CollectionStore) Export(ctx context.Context, id string) (string, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return ExportJSON(*item)
}

// Clear wipes every quiz record, including the legacy and working copies
func (s *CollectionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{KeyCollection, KeyLegacyQuiz, KeyCurrentQuiz} {
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to clear quiz data: %w", err)
		}
	}
	log.Printf("All quiz data cleared")
	return nil
}

// CheckQuestion verifies the stored-question invariant: non-empty text,
// exactly four options with text, exactly one correct.
func CheckQuestion(index int, q Question) error {
	if q.Question == "" {
		return &InvalidQuestionShapeError{Index: index, Reason: "missing question text"}
	}
	if len(q.Options) != OptionsPerQuestion {
		return &InvalidQuestionShapeError{
			Index:  index,
			Reason: fmt.Sprintf("must have exactly %d options (found %d)", OptionsPerQuestion, len(q.Options)),
		}
	}
	correct := 0
	for i, opt := range q.Options {
		if opt.Text == "" {
			return &InvalidQuestionShapeError{Index: index, Reason: fmt.Sprintf("option %d has no text", i+1)}
		}
		if opt.Correct {
			correct++
		}
	}
	if correct != 1 {
		return &AmbiguousCorrectCountError{Index: index, Found: correct}
	}
	return nil
}
