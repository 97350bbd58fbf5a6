package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/trivia-api/internal/trivia"
	httperrors "github.com/gokatarajesh/trivia-api/pkg/http/errors"
)

type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

type fixture struct {
	store   *trivia.MemoryStore
	handler http.Handler
	ids     []int64
}

func newFixture(t *testing.T, pageSize int, questions ...trivia.NewQuestion) fixture {
	t.Helper()
	store := trivia.NewMemoryStore(
		trivia.Category{ID: 1, Type: "Science"},
		trivia.Category{ID: 2, Type: "Art"},
	)
	ids := make([]int64, 0, len(questions))
	for _, q := range questions {
		id, err := store.Insert(context.Background(), q)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	svc := trivia.NewService(store, trivia.ServiceOptions{PageSize: pageSize, Rand: firstRand{}}, zerolog.Nop())
	handlers, err := NewHTTPHandlers(svc, zerolog.Nop())
	require.NoError(t, err)

	mux := http.NewServeMux()
	handlers.Mount(mux)
	return fixture{store: store, handler: mux, ids: ids}
}

func (f fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func q(text string, category int64) trivia.NewQuestion {
	return trivia.NewQuestion{Question: text, Answer: "answer", Category: category, Difficulty: 3}
}

type listBody struct {
	Success         bool              `json:"success"`
	Questions       []trivia.Question `json:"questions"`
	TotalQuestions  int               `json:"total_questions"`
	Categories      map[string]string `json:"categories"`
	CurrentCategory *int64            `json:"current_category"`
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestListCategories(t *testing.T) {
	f := newFixture(t, 8)

	rec := f.do(t, http.MethodGet, "/categories", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeBody[categoriesResponse](t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, trivia.CategoryMap{1: "Science", 2: "Art"}, body.Categories)
}

func TestListQuestions_Paging(t *testing.T) {
	f := newFixture(t, 2, q("one", 1), q("two", 2), q("three", 1))

	first := decodeBody[listBody](t, f.do(t, http.MethodGet, "/questions", ""))
	assert.True(t, first.Success)
	assert.Len(t, first.Questions, 2)
	assert.Equal(t, 3, first.TotalQuestions)
	assert.Nil(t, first.CurrentCategory)
	assert.Equal(t, "Science", first.Categories["1"])

	second := decodeBody[listBody](t, f.do(t, http.MethodGet, "/questions?page=2", ""))
	require.Len(t, second.Questions, 1)
	assert.Equal(t, f.ids[2], second.Questions[0].ID)

	junk := decodeBody[listBody](t, f.do(t, http.MethodGet, "/questions?page=abc", ""))
	assert.Equal(t, first.Questions, junk.Questions)
}

func TestListQuestions_PastEndIsNotFound(t *testing.T) {
	f := newFixture(t, 2, q("one", 1))

	rec := f.do(t, http.MethodGet, "/questions?page=5", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody[httperrors.ErrorResponse](t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, http.StatusNotFound, body.Error)
	assert.Equal(t, httperrors.MsgNotFound, body.Message)
}

func TestListQuestions_OverflowingPageIsNotFound(t *testing.T) {
	f := newFixture(t, 8, q("one", 1))

	for _, target := range []string{
		"/questions?page=1152921504606846977",
		"/questions?page=2305843009213693953",
		"/categories/1/questions?page=9223372036854775807",
	} {
		rec := f.do(t, http.MethodGet, target, "")
		require.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Equal(t, http.StatusNotFound, decodeBody[httperrors.ErrorResponse](t, rec).Error, target)
	}
}

func TestListQuestions_CurrentCategoryIsNullNotOmitted(t *testing.T) {
	f := newFixture(t, 8, q("one", 1))

	rec := f.do(t, http.MethodGet, "/questions", "")

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "null", string(raw["current_category"]))
}

func TestListCategoryQuestions(t *testing.T) {
	f := newFixture(t, 8, q("one", 1), q("two", 2), q("three", 1))

	rec := f.do(t, http.MethodGet, "/categories/1/questions", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[listBody](t, rec)
	require.NotNil(t, body.CurrentCategory)
	assert.Equal(t, int64(1), *body.CurrentCategory)
	assert.Equal(t, 2, body.TotalQuestions)
	for _, question := range body.Questions {
		assert.Equal(t, int64(1), question.Category)
	}

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/categories/9/questions", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/categories/abc/questions", "").Code)
}

func TestCreateQuestion(t *testing.T) {
	f := newFixture(t, 8)

	rec := f.do(t, http.MethodPost, "/questions",
		`{"question":"Who painted the Mona Lisa?","answer":"Leonardo","category":2,"difficulty":2}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Success bool  `json:"success"`
		Created int64 `json:"created"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)

	stored, ok, err := f.store.GetByID(context.Background(), body.Created)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Leonardo", stored.Answer)
}

func TestCreateQuestion_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
		field  string
	}{
		{"malformed json", `{"question":`, http.StatusBadRequest, httperrors.ErrCodeInvalidRequest, ""},
		{"empty body", ``, http.StatusBadRequest, httperrors.ErrCodeInvalidRequest, ""},
		{"missing answer", `{"question":"q","category":1,"difficulty":1}`, http.StatusUnprocessableEntity, httperrors.ErrCodeMissingField, "answer"},
		{"string category", `{"question":"q","answer":"a","category":"1","difficulty":1}`, http.StatusUnprocessableEntity, httperrors.ErrCodeValidationFailed, "category"},
		{"difficulty too high", `{"question":"q","answer":"a","category":1,"difficulty":6}`, http.StatusUnprocessableEntity, httperrors.ErrCodeValidationFailed, "difficulty"},
		{"blank question", `{"question":"   ","answer":"a","category":1,"difficulty":1}`, http.StatusUnprocessableEntity, httperrors.ErrCodeValidationFailed, "question"},
		{"unknown category", `{"question":"q","answer":"a","category":42,"difficulty":1}`, http.StatusUnprocessableEntity, httperrors.ErrCodeValidationFailed, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 8)

			rec := f.do(t, http.MethodPost, "/questions", tt.body)

			require.Equal(t, tt.status, rec.Code)
			body := decodeBody[httperrors.ErrorResponse](t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, tt.status, body.Error)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.field, body.Field)

			all, err := f.store.ListAll(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestDeleteQuestion(t *testing.T) {
	f := newFixture(t, 8, q("one", 1))

	rec := f.do(t, http.MethodDelete, "/questions/"+itoa(f.ids[0]), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool  `json:"success"`
		Deleted int64 `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, f.ids[0], body.Deleted)

	again := f.do(t, http.MethodDelete, "/questions/"+itoa(f.ids[0]), "")
	assert.Equal(t, http.StatusNotFound, again.Code)
}

func TestSearchQuestions(t *testing.T) {
	f := newFixture(t, 1, q("What is the boiling point of water?", 1), q("Name the largest planet", 1), q("WATERLOO happened when?", 2))

	rec := f.do(t, http.MethodPost, "/questions/search", `{"searchTerm":"water"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[listBody](t, rec)
	assert.Equal(t, 2, body.TotalQuestions)
	assert.Len(t, body.Questions, 2, "search is not paginated")
	assert.Nil(t, body.CurrentCategory)

	none := f.do(t, http.MethodPost, "/questions/search", `{"searchTerm":"xyz-no-match"}`)
	require.Equal(t, http.StatusOK, none.Code)
	empty := decodeBody[listBody](t, none)
	assert.NotNil(t, empty.Questions)
	assert.Empty(t, empty.Questions)
	assert.Zero(t, empty.TotalQuestions)
}

func TestSearchQuestions_RequiresTerm(t *testing.T) {
	f := newFixture(t, 8, q("one", 1))

	for _, body := range []string{`{}`, `{"searchTerm":""}`, `{"searchTerm":"  "}`, `{"searchTerm":5}`} {
		rec := f.do(t, http.MethodPost, "/questions/search", body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, body)
		assert.Equal(t, "searchTerm", decodeBody[httperrors.ErrorResponse](t, rec).Field, body)
	}
}

func TestPlayQuiz(t *testing.T) {
	f := newFixture(t, 8, q("one", 1), q("two", 2), q("three", 1))

	rec := f.do(t, http.MethodPost, "/quizzes",
		`{"previous_questions":[`+itoa(f.ids[0])+`],"quiz_category":{"id":1,"type":"Science"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success      bool             `json:"success"`
		Question     *trivia.Question `json:"question"`
		QuizCategory map[string]any   `json:"quiz_category"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Question)
	assert.Equal(t, f.ids[2], body.Question.ID)
	assert.Equal(t, "Science", body.QuizCategory["type"])
}

func TestPlayQuiz_AllCategoriesAndExhaustion(t *testing.T) {
	f := newFixture(t, 8, q("one", 1), q("two", 2))

	rec := f.do(t, http.MethodPost, "/quizzes", `{"quiz_category":{"id":0}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var first quizResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.NotNil(t, first.Question)

	done := f.do(t, http.MethodPost, "/quizzes",
		`{"previous_questions":[`+itoa(f.ids[0])+`,`+itoa(f.ids[1])+`],"quiz_category":{"id":0}}`)
	require.Equal(t, http.StatusOK, done.Code)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(done.Body.Bytes(), &raw))
	assert.Equal(t, "null", string(raw["question"]))
	assert.Equal(t, "true", string(raw["success"]))
}

func TestPlayQuiz_Rejections(t *testing.T) {
	f := newFixture(t, 8, q("one", 1))

	tests := map[string]string{
		"quiz_category":        `{"previous_questions":[]}`,
		"quiz_category.id":     `{"quiz_category":{"type":"Science"}}`,
		"previous_questions.0": `{"previous_questions":["1"],"quiz_category":{"id":0}}`,
	}
	for field, body := range tests {
		rec := f.do(t, http.MethodPost, "/quizzes", body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, body)
		assert.Equal(t, field, decodeBody[httperrors.ErrorResponse](t, rec).Field, body)
	}

	nullScope := f.do(t, http.MethodPost, "/quizzes", `{"quiz_category":null}`)
	assert.Equal(t, http.StatusUnprocessableEntity, nullScope.Code)
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
