package trivia

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used by tests and the memory driver.
type MemoryStore struct {
	mu         sync.RWMutex
	nextID     int64
	questions  map[int64]Question
	categories map[int64]Category
}

var (
	_ Store          = (*MemoryStore)(nil)
	_ CategoryWriter = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty store preloaded with categories.
func NewMemoryStore(categories ...Category) *MemoryStore {
	s := &MemoryStore{
		questions:  make(map[int64]Question),
		categories: make(map[int64]Category, len(categories)),
	}
	for _, c := range categories {
		s.categories[c.ID] = c
	}
	return s
}

// UpsertCategory adds or relabels a category.
func (s *MemoryStore) UpsertCategory(_ context.Context, c Category) error {
	if c.ID < 1 {
		return Invalid("id", "must be a positive id")
	}
	if strings.TrimSpace(c.Type) == "" {
		return Invalid("type", "must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	return nil
}

func (s *MemoryStore) Insert(_ context.Context, q NewQuestion) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[q.Category]; !ok {
		return 0, Invalid("category", "unknown category")
	}
	s.nextID++
	id := s.nextID
	s.questions[id] = Question{
		ID:         id,
		Question:   q.Question,
		Answer:     q.Answer,
		Category:   q.Category,
		Difficulty: q.Difficulty,
	}
	return id, nil
}

func (s *MemoryStore) DeleteByID(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return false, nil
	}
	delete(s.questions, id)
	return true, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id int64) (Question, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	return q, ok, nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]Question, error) {
	return s.collect(func(Question) bool { return true }), nil
}

func (s *MemoryStore) ListByCategory(_ context.Context, categoryID int64) ([]Question, error) {
	return s.collect(func(q Question) bool { return q.Category == categoryID }), nil
}

func (s *MemoryStore) ListBySubstring(_ context.Context, term string) ([]Question, error) {
	needle := strings.ToLower(term)
	return s.collect(func(q Question) bool {
		return strings.Contains(strings.ToLower(q.Question), needle)
	}), nil
}

func (s *MemoryStore) ListCategories(_ context.Context) ([]Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListPage(_ context.Context, filter QuestionFilter, offset, limit int) ([]Question, int, error) {
	matched := s.collect(func(q Question) bool {
		return filter.CategoryID == 0 || q.Category == filter.CategoryID
	})
	total := len(matched)
	if offset < 0 {
		offset = 0
	}
	if offset >= total || limit <= 0 {
		return []Question{}, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func (s *MemoryStore) collect(keep func(Question) bool) []Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Question, 0, len(s.questions))
	for _, q := range s.questions {
		if keep(q) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
