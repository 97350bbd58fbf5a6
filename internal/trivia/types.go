package trivia

// Difficulty bounds accepted for a question.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// AllCategoriesID is the wire value clients send to play across every category.
const AllCategoriesID int64 = 0

// Question is a stored trivia question as delivered to clients.
type Question struct {
	ID         int64  `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Category   int64  `json:"category"`
	Difficulty int    `json:"difficulty"`
}

// NewQuestion carries the fields required to create a question.
type NewQuestion struct {
	Question   string `json:"question" yaml:"question" validate:"required"`
	Answer     string `json:"answer" yaml:"answer" validate:"required"`
	Category   int64  `json:"category" yaml:"category" validate:"gte=1"`
	Difficulty int    `json:"difficulty" yaml:"difficulty" validate:"gte=1,lte=5"`
}

// Category is a read-only question grouping.
type Category struct {
	ID   int64  `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`
}

// CategoryMap maps category id to its display label.
type CategoryMap map[int64]string

// NewCategoryMap indexes categories by id.
func NewCategoryMap(categories []Category) CategoryMap {
	m := make(CategoryMap, len(categories))
	for _, c := range categories {
		m[c.ID] = c.Type
	}
	return m
}

// QuestionFilter narrows a paged listing. A zero CategoryID means no filter.
type QuestionFilter struct {
	CategoryID int64
}

// QuestionPage is a bounded slice of questions plus the metadata every
// question listing carries.
type QuestionPage struct {
	Questions       []Question
	TotalQuestions  int
	Categories      CategoryMap
	CurrentCategory *int64
	Page            int
}

// CategoryScope selects the quiz candidate pool.
type CategoryScope struct {
	ID int64
}

// AllCategories returns a scope spanning every category.
func AllCategories() *CategoryScope {
	return &CategoryScope{ID: AllCategoriesID}
}

// InCategory returns a scope limited to one category.
func InCategory(id int64) *CategoryScope {
	return &CategoryScope{ID: id}
}

// All reports whether the scope spans every category.
func (s CategoryScope) All() bool {
	return s.ID == AllCategoriesID
}

// QuizRequest is one round of quiz play.
type QuizRequest struct {
	Scope       *CategoryScope
	PreviousIDs []int64
}

// QuizResult is the next question, or Done when the pool is exhausted.
type QuizResult struct {
	Question *Question
	Done     bool
}
