//go:build integration

package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// These tests run against a live API backed by Postgres and Redis,
// reachable at INTEGRATION_BASE_URL.

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func TestLiveHealthz(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
	resp, err := http.Get(fmt.Sprintf("%s/healthz", baseURL))
	if err != nil {
		t.Fatalf("health check request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}
}

func TestLiveQuestionLifecycleAndFeed(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")

	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws/questions"
	feed, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial question feed: %v", err)
	}
	defer feed.Close()

	marker := fmt.Sprintf("integration-%d", time.Now().UnixNano())
	resp := postJSON(t, baseURL+"/questions", map[string]any{
		"question":   "Which marker is this " + marker + "?",
		"answer":     marker,
		"category":   1,
		"difficulty": 2,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created struct {
		Created int64 `json:"created"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	_ = feed.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg struct {
		Type    string `json:"type"`
		Payload struct {
			QuestionID int64 `json:"question_id"`
		} `json:"payload"`
	}
	if err := feed.ReadJSON(&msg); err != nil {
		t.Fatalf("read feed: %v", err)
	}
	if msg.Type != "question_created" || msg.Payload.QuestionID != created.Created {
		t.Fatalf("unexpected feed message: %+v", msg)
	}

	search := postJSON(t, baseURL+"/questions/search", map[string]string{"searchTerm": marker})
	defer search.Body.Close()
	var found struct {
		TotalQuestions int `json:"total_questions"`
	}
	if err := json.NewDecoder(search.Body).Decode(&found); err != nil {
		t.Fatalf("decode search response: %v", err)
	}
	if found.TotalQuestions != 1 {
		t.Fatalf("expected exactly one match, got %d", found.TotalQuestions)
	}

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/questions/%d", baseURL, created.Created), nil)
	del, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete request failed: %v", err)
	}
	del.Body.Close()
	if del.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", del.StatusCode)
	}

	again, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("second delete request failed: %v", err)
	}
	again.Body.Close()
	if again.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", again.StatusCode)
	}
}

func TestLiveErrorShape(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")

	resp := postJSON(t, baseURL+"/quizzes", map[string]any{"previous_questions": []int{}})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	var errResp map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response failed: %v", err)
	}
	if errResp["success"] != false || errResp["error"] != float64(http.StatusUnprocessableEntity) {
		t.Fatalf("unexpected error body: %v", errResp)
	}
}
