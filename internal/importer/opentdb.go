// Package importer pulls questions from the Open Trivia DB into a store.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gokatarajesh/trivia-api/internal/trivia"
)

const defaultOpenTDBURL = "https://opentdb.com"

// OpenTDBClient fetches questions from the Open Trivia DB (no API key).
type OpenTDBClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOpenTDBClient(baseURL string, httpClient *http.Client) *OpenTDBClient {
	if baseURL == "" {
		baseURL = defaultOpenTDBURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &OpenTDBClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// OpenTDBQuestion is one result row; text fields arrive HTML-escaped.
type OpenTDBQuestion struct {
	Category        string   `json:"category"`
	Type            string   `json:"type"`
	Difficulty      string   `json:"difficulty"`
	Question        string   `json:"question"`
	CorrectAnswer   string   `json:"correct_answer"`
	IncorrectAnswer []string `json:"incorrect_answers"`
}

type openTDBResponse struct {
	ResponseCode int               `json:"response_code"`
	Results      []OpenTDBQuestion `json:"results"`
}

// FetchOptions narrows an OpenTDB request. Zero values are omitted.
type FetchOptions struct {
	Amount     int
	Category   int
	Difficulty string
}

// Fetch asks OpenTDB for up to opts.Amount questions.
func (c *OpenTDBClient) Fetch(ctx context.Context, opts FetchOptions) ([]OpenTDBQuestion, error) {
	if opts.Amount < 1 || opts.Amount > 50 {
		return nil, fmt.Errorf("amount must be between 1 and 50, got %d", opts.Amount)
	}
	values := url.Values{}
	values.Set("amount", fmt.Sprint(opts.Amount))
	if opts.Category > 0 {
		values.Set("category", fmt.Sprint(opts.Category))
	}
	if opts.Difficulty != "" {
		values.Set("difficulty", opts.Difficulty)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api.php?%s", c.baseURL, values.Encode()), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opentdb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("opentdb non-200: %d", resp.StatusCode)
	}

	var payload openTDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode opentdb response: %w", err)
	}
	if payload.ResponseCode != 0 {
		return nil, fmt.Errorf("opentdb response code %d", payload.ResponseCode)
	}
	return payload.Results, nil
}

var difficulties = map[string]int{
	"easy":   1,
	"medium": 3,
	"hard":   5,
}

// CategoryResolver maps an OpenTDB category label to a local category id.
type CategoryResolver func(label string) (int64, bool)

// ResolveByPrefix matches labels like "Science: Computers" or
// "Entertainment: Film" to the local category whose label is the first word,
// ignoring case.
func ResolveByPrefix(categories []trivia.Category) CategoryResolver {
	byLabel := make(map[string]int64, len(categories))
	for _, c := range categories {
		byLabel[strings.ToLower(c.Type)] = c.ID
	}
	return func(label string) (int64, bool) {
		label = strings.ToLower(strings.TrimSpace(label))
		if id, ok := byLabel[label]; ok {
			return id, true
		}
		head, _, _ := strings.Cut(label, ":")
		head, _, _ = strings.Cut(strings.TrimSpace(head), " ")
		id, ok := byLabel[head]
		return id, ok
	}
}

// Convert turns an OpenTDB row into a NewQuestion, or reports why it can't.
func Convert(q OpenTDBQuestion, resolve CategoryResolver) (trivia.NewQuestion, error) {
	category, ok := resolve(html.UnescapeString(q.Category))
	if !ok {
		return trivia.NewQuestion{}, fmt.Errorf("no local category for %q", q.Category)
	}
	difficulty, ok := difficulties[q.Difficulty]
	if !ok {
		return trivia.NewQuestion{}, fmt.Errorf("unknown difficulty %q", q.Difficulty)
	}
	nq := trivia.NewQuestion{
		Question:   html.UnescapeString(q.Question),
		Answer:     html.UnescapeString(q.CorrectAnswer),
		Category:   category,
		Difficulty: difficulty,
	}
	if err := nq.Validate(); err != nil {
		return trivia.NewQuestion{}, err
	}
	return nq, nil
}

// Inserter is the part of a store an import writes to.
type Inserter interface {
	Insert(ctx context.Context, q trivia.NewQuestion) (int64, error)
}

// Report summarises an import run.
type Report struct {
	Imported int
	Skipped  []string
}

// Import converts and inserts each row. Rows that cannot be mapped are
// skipped and listed in the report; a store failure aborts the run.
func Import(ctx context.Context, target Inserter, rows []OpenTDBQuestion, resolve CategoryResolver) (Report, error) {
	var rep Report
	for _, row := range rows {
		nq, err := Convert(row, resolve)
		if err != nil {
			rep.Skipped = append(rep.Skipped, err.Error())
			continue
		}
		if _, err := target.Insert(ctx, nq); err != nil {
			return rep, fmt.Errorf("insert %q: %w", nq.Question, err)
		}
		rep.Imported++
	}
	return rep, nil
}
