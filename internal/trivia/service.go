package trivia

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
)

const defaultPageSize = 8

// Event types published after a successful mutation.
const (
	EventQuestionCreated = "question_created"
	EventQuestionDeleted = "question_deleted"
)

// QuestionEvent notifies listeners that the question bank changed.
type QuestionEvent struct {
	Type       string    `json:"type"`
	QuestionID int64     `json:"question_id"`
	Question   *Question `json:"question,omitempty"`
}

// EventPublisher fans question events out to other processes.
type EventPublisher interface {
	Publish(ctx context.Context, evt QuestionEvent) error
}

// Recorder receives domain counters.
type Recorder interface {
	QuestionCreated()
	QuestionDeleted()
	QuizServed(exhausted bool)
}

type nopRecorder struct{}

func (nopRecorder) QuestionCreated() {}
func (nopRecorder) QuestionDeleted() {}
func (nopRecorder) QuizServed(bool)  {}

// ServiceOptions configures the query engine and quiz selector.
type ServiceOptions struct {
	PageSize int
	Rand     Rand
	Events   EventPublisher
	Metrics  Recorder
}

// Service resolves client parameters against a Store.
type Service struct {
	store    Store
	pageSize int
	selector *Selector
	events   EventPublisher
	metrics  Recorder
	logger   zerolog.Logger
}

// NewService wires a Service over store.
func NewService(store Store, opts ServiceOptions, logger zerolog.Logger) *Service {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	recorder := opts.Metrics
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		store:    store,
		pageSize: pageSize,
		selector: NewSelector(store, opts.Rand),
		events:   opts.Events,
		metrics:  recorder,
		logger:   logger.With().Str("component", "trivia_service").Logger(),
	}
}

// PageSize reports the configured page size.
func (s *Service) PageSize() int {
	return s.pageSize
}

// ListCategories returns the id to label map.
func (s *Service) ListCategories(ctx context.Context) (CategoryMap, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return NewCategoryMap(categories), nil
}

// GetQuestionsPage returns one page over every question, ordered by id.
// An empty page, whether the store is empty or the page is past the end,
// is ErrNotFound.
func (s *Service) GetQuestionsPage(ctx context.Context, page int) (QuestionPage, error) {
	return s.page(ctx, QuestionFilter{}, page)
}

// GetQuestionsByCategory filters to one category and then paginates.
func (s *Service) GetQuestionsByCategory(ctx context.Context, categoryID int64, page int) (QuestionPage, error) {
	if categoryID < 1 {
		return QuestionPage{}, Invalid("category", "must be a positive id")
	}
	result, err := s.page(ctx, QuestionFilter{CategoryID: categoryID}, page)
	if err != nil {
		return QuestionPage{}, err
	}
	current := categoryID
	result.CurrentCategory = &current
	return result, nil
}

func (s *Service) page(ctx context.Context, filter QuestionFilter, page int) (QuestionPage, error) {
	if page < 1 {
		page = 1
	}
	if page > math.MaxInt/s.pageSize {
		return QuestionPage{}, fmt.Errorf("page %d: %w", page, ErrNotFound)
	}
	offset := (page - 1) * s.pageSize
	questions, total, err := s.store.ListPage(ctx, filter, offset, s.pageSize)
	if err != nil {
		return QuestionPage{}, err
	}
	if len(questions) == 0 {
		return QuestionPage{}, fmt.Errorf("page %d (total %d): %w", page, total, ErrNotFound)
	}
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return QuestionPage{}, err
	}
	return QuestionPage{
		Questions:      questions,
		TotalQuestions: total,
		Categories:     categories,
		Page:           page,
	}, nil
}

// SearchQuestions returns every question whose text contains term,
// ignoring case. No matches is an empty page, not an error.
func (s *Service) SearchQuestions(ctx context.Context, term string) (QuestionPage, error) {
	if strings.TrimSpace(term) == "" {
		return QuestionPage{}, Invalid("searchTerm", "must not be empty")
	}
	questions, err := s.store.ListBySubstring(ctx, term)
	if err != nil {
		return QuestionPage{}, err
	}
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return QuestionPage{}, err
	}
	if questions == nil {
		questions = []Question{}
	}
	return QuestionPage{
		Questions:      questions,
		TotalQuestions: len(questions),
		Categories:     categories,
		Page:           1,
	}, nil
}

// CreateQuestion validates and stores q, returning its id.
func (s *Service) CreateQuestion(ctx context.Context, q NewQuestion) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.Insert(ctx, q)
	if err != nil {
		return 0, err
	}
	s.metrics.QuestionCreated()
	s.publish(ctx, QuestionEvent{
		Type:       EventQuestionCreated,
		QuestionID: id,
		Question: &Question{
			ID:         id,
			Question:   q.Question,
			Answer:     q.Answer,
			Category:   q.Category,
			Difficulty: q.Difficulty,
		},
	})
	return id, nil
}

// DeleteQuestion removes a question; an unknown id is ErrNotFound.
func (s *Service) DeleteQuestion(ctx context.Context, id int64) error {
	removed, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("question %d: %w", id, ErrNotFound)
	}
	s.metrics.QuestionDeleted()
	s.publish(ctx, QuestionEvent{Type: EventQuestionDeleted, QuestionID: id})
	return nil
}

// NextQuestion picks a random unseen question for a quiz round.
func (s *Service) NextQuestion(ctx context.Context, req QuizRequest) (QuizResult, error) {
	result, err := s.selector.Next(ctx, req)
	if err != nil {
		return QuizResult{}, err
	}
	s.metrics.QuizServed(result.Done)
	return result, nil
}

// The mutation is already durable, so a failed publish is only logged.
func (s *Service) publish(ctx context.Context, evt QuestionEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warn().Err(err).Str("event", evt.Type).Int64("question_id", evt.QuestionID).Msg("question event publish failed")
	}
}
