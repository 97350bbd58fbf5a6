package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-api/internal/logging"
	"github.com/gokatarajesh/trivia-api/internal/trivia"
	httperrors "github.com/gokatarajesh/trivia-api/pkg/http/errors"
)

const maxBodyBytes = 1 << 20

// HTTPHandlers exposes the question bank over REST.
type HTTPHandlers struct {
	svc     *trivia.Service
	schemas *SchemaValidator
	logger  zerolog.Logger
}

// NewHTTPHandlers compiles the request schemas and returns the handlers.
func NewHTTPHandlers(svc *trivia.Service, logger zerolog.Logger) (*HTTPHandlers, error) {
	schemas, err := NewSchemaValidator()
	if err != nil {
		return nil, err
	}
	return &HTTPHandlers{
		svc:     svc,
		schemas: schemas,
		logger:  logger.With().Str("component", "trivia_http").Logger(),
	}, nil
}

type categoriesResponse struct {
	Success    bool               `json:"success"`
	Categories trivia.CategoryMap `json:"categories"`
}

type questionsResponse struct {
	Success         bool               `json:"success"`
	Questions       []trivia.Question  `json:"questions"`
	TotalQuestions  int                `json:"total_questions"`
	Categories      trivia.CategoryMap `json:"categories"`
	CurrentCategory *int64             `json:"current_category"`
}

type createQuestionRequest struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Category   int64  `json:"category"`
	Difficulty int    `json:"difficulty"`
}

type searchRequest struct {
	SearchTerm string `json:"searchTerm"`
}

type quizRequest struct {
	PreviousQuestions []int64         `json:"previous_questions"`
	QuizCategory      json.RawMessage `json:"quiz_category"`
}

type quizCategory struct {
	ID int64 `json:"id"`
}

type quizResponse struct {
	Success      bool             `json:"success"`
	Question     *trivia.Question `json:"question"`
	QuizCategory json.RawMessage  `json:"quiz_category"`
}

// ListCategories handles GET /categories
func (h *HTTPHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, categoriesResponse{Success: true, Categories: categories})
}

// ListQuestions handles GET /questions?page=N
func (h *HTTPHandlers) ListQuestions(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.GetQuestionsPage(r.Context(), pageParam(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toQuestionsResponse(page))
}

// ListCategoryQuestions handles GET /categories/{id}/questions?page=N
func (h *HTTPHandlers) ListCategoryQuestions(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(r)
	if !ok {
		httperrors.RespondNotFound(w, httperrors.MsgNotFound)
		return
	}
	page, err := h.svc.GetQuestionsByCategory(r.Context(), categoryID, pageParam(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toQuestionsResponse(page))
}

// DeleteQuestion handles DELETE /questions/{id}
func (h *HTTPHandlers) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httperrors.RespondNotFound(w, httperrors.MsgNotFound)
		return
	}
	if err := h.svc.DeleteQuestion(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"deleted": id,
	})
}

// CreateQuestion handles POST /questions
func (h *HTTPHandlers) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if !h.decode(w, r, SchemaCreateQuestion, &req) {
		return
	}

	id, err := h.svc.CreateQuestion(r.Context(), trivia.NewQuestion{
		Question:   req.Question,
		Answer:     req.Answer,
		Category:   req.Category,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"created": id,
	})
}

// SearchQuestions handles POST /questions/search
func (h *HTTPHandlers) SearchQuestions(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !h.decode(w, r, SchemaSearchQuestions, &req) {
		return
	}

	page, err := h.svc.SearchQuestions(r.Context(), req.SearchTerm)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toQuestionsResponse(page))
}

// PlayQuiz handles POST /quizzes
func (h *HTTPHandlers) PlayQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if !h.decode(w, r, SchemaPlayQuiz, &req) {
		return
	}

	var scope *trivia.CategoryScope
	if len(req.QuizCategory) > 0 && string(req.QuizCategory) != "null" {
		var qc quizCategory
		if err := json.Unmarshal(req.QuizCategory, &qc); err != nil {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "quiz_category.id must be an integer", "quiz_category.id")
			return
		}
		scope = trivia.InCategory(qc.ID)
	}

	result, err := h.svc.NextQuestion(r.Context(), trivia.QuizRequest{
		Scope:       scope,
		PreviousIDs: req.PreviousQuestions,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, quizResponse{
		Success:      true,
		Question:     result.Question,
		QuizCategory: req.QuizCategory,
	})
}

// decode reads the body, checks it against the named schema and unmarshals
// it into dst. It writes the failure response itself and reports whether
// the handler should continue.
func (h *HTTPHandlers) decode(w http.ResponseWriter, r *http.Request, schema string, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperrors.RespondError(w, http.StatusRequestEntityTooLarge, httperrors.ErrCodeInvalidRequest, "Request body too large")
			return false
		}
		httperrors.RespondBadRequest(w, "Could not read request body")
		return false
	}
	if len(body) == 0 || !json.Valid(body) {
		httperrors.RespondBadRequest(w, "Invalid JSON payload")
		return false
	}

	if err := h.schemas.Validate(schema, body); err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			code := httperrors.ErrCodeValidationFailed
			if schemaErr.Missing {
				code = httperrors.ErrCodeMissingField
			}
			httperrors.RespondValidationError(w, code, schemaErr.Details[0], schemaErr.Field)
			return false
		}
		h.respondServiceError(w, r, err)
		return false
	}

	// Schema "integer" admits 1.0, which encoding/json will not put in an int.
	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed,
				fmt.Sprintf("%s must be an integer", typeErr.Field), typeErr.Field)
			return false
		}
		httperrors.RespondBadRequest(w, "Invalid JSON payload")
		return false
	}
	return true
}

func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context())

	var vErr *trivia.ValidationError
	switch {
	case errors.As(err, &vErr):
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, vErr.Error(), vErr.Field)
	case errors.Is(err, trivia.ErrValidation):
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), "")
	case errors.Is(err, trivia.ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.MsgNotFound)
	case errors.Is(err, trivia.ErrStore):
		logger.Error().Err(err).Msg("store failure")
		httperrors.RespondUnprocessable(w, httperrors.MsgUnprocessable)
	default:
		logger.Error().Err(err).Msg("unexpected failure")
		httperrors.RespondInternalError(w, httperrors.MsgInternalServerError)
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func toQuestionsResponse(page trivia.QuestionPage) questionsResponse {
	return questionsResponse{
		Success:         true,
		Questions:       page.Questions,
		TotalQuestions:  page.TotalQuestions,
		Categories:      page.Categories,
		CurrentCategory: page.CurrentCategory,
	}
}

// pageParam reads ?page; absent or non-numeric means the first page.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return page
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Mount registers the question bank routes on mux.
func (h *HTTPHandlers) Mount(mux *http.ServeMux) {
	mux.HandleFunc("GET /categories", h.ListCategories)
	mux.HandleFunc("GET /categories/{id}/questions", h.ListCategoryQuestions)
	mux.HandleFunc("GET /questions", h.ListQuestions)
	mux.HandleFunc("POST /questions", h.CreateQuestion)
	mux.HandleFunc("DELETE /questions/{id}", h.DeleteQuestion)
	mux.HandleFunc("POST /questions/search", h.SearchQuestions)
	mux.HandleFunc("POST /quizzes", h.PlayQuiz)
}

// Paths lists the route paths Mount registers, without methods.
func Paths() []string {
	return []string{
		"/categories",
		"/categories/{id}/questions",
		"/questions",
		"/questions/{id}",
		"/quizzes",
	}
}
