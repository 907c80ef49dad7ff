package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-backend/internal/chat"
	"portfolio-backend/pkg/api"
)

func newChatRouter(t *testing.T, limiter *RateLimiter) chi.Router {
	t.Helper()

	rules, err := chat.LoadRules()
	require.NoError(t, err)
	dispatcher := chat.NewDispatcher(newTestDB(t), rules, nil)

	r := chi.NewRouter()
	r.MethodNotAllowed(MethodNotAllowedHandler)
	NewChatService(dispatcher, limiter).AddRoutes(r)
	return r
}

func postChat(router chi.Router, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSendMessage(t *testing.T) {
	router := newChatRouter(t, nil)

	w := postChat(router, `{"message": "안녕"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, api.EnvelopeText, resp.Response.Type)
	assert.NotEmpty(t, resp.Response.Content)
	assert.Equal(t, []string{"프로젝트 보여줘", "기술 스택 알려줘", "무엇을 할 수 있나요?"}, resp.Response.Suggestions)

	// First contact issues the session cookie.
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "chat_session", cookies[0].Name)
	_, err := uuid.Parse(cookies[0].Value)
	assert.NoError(t, err)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSendMessageReusesSession(t *testing.T) {
	router := newChatRouter(t, nil)

	existing := &http.Cookie{Name: "chat_session", Value: uuid.NewString()}
	w := postChat(router, `{"message": "안녕"}`, existing)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestSendMessageReplacesInvalidSession(t *testing.T) {
	router := newChatRouter(t, nil)

	w := postChat(router, `{"message": "안녕"}`, &http.Cookie{Name: "chat_session", Value: "not-a-uuid"})
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	_, err := uuid.Parse(cookies[0].Value)
	assert.NoError(t, err)
}

func TestSendMessageInvalidJSON(t *testing.T) {
	router := newChatRouter(t, nil)

	w := postChat(router, `{"message": `)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var errResp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "Invalid JSON payload", errResp.Error)
}

func TestSendMessageMethodNotAllowed(t *testing.T) {
	router := newChatRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/chat/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusMethodNotAllowed, w.Code)

	var errResp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "Invalid request method", errResp.Error)
}

func TestSendMessageRateLimited(t *testing.T) {
	router := newChatRouter(t, NewRateLimiter(2, time.Minute))

	for i := 0; i < 2; i++ {
		w := postChat(router, `{"message": "안녕"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := postChat(router, `{"message": "안녕"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimiterPerHost(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)

	assert.True(t, limiter.allow("10.0.0.1:1234"))
	assert.False(t, limiter.allow("10.0.0.1:5678"))
	assert.True(t, limiter.allow("10.0.0.2:1234"))
}
