package trivia

import "context"

// Store owns the persisted questions and categories.
//
// Implementations return results ordered by id ascending and wrap persistence
// failures with StoreError. Insert and DeleteByID are atomic.
type Store interface {
	Insert(ctx context.Context, q NewQuestion) (int64, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (Question, bool, error)
	ListAll(ctx context.Context) ([]Question, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]Question, error)
	ListBySubstring(ctx context.Context, term string) ([]Question, error)
	ListCategories(ctx context.Context) ([]Category, error)
	// ListPage filters first, then returns the [offset, offset+limit) window
	// and the filtered total.
	ListPage(ctx context.Context, filter QuestionFilter, offset, limit int) ([]Question, int, error)
}

// CategoryWriter is implemented by stores that can be seeded with categories.
type CategoryWriter interface {
	UpsertCategory(ctx context.Context, c Category) error
}
