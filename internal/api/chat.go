package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"portfolio-backend/internal/chat"
	"portfolio-backend/pkg/api"
)

const sessionCookieName = "chat_session"

type ChatService struct {
	dispatcher *chat.Dispatcher
	limiter    *RateLimiter
}

func NewChatService(dispatcher *chat.Dispatcher, limiter *RateLimiter) *ChatService {
	return &ChatService{dispatcher: dispatcher, limiter: limiter}
}

func (s *ChatService) AddRoutes(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware)
		}
		r.Post("/", s.SendMessage)
	})
}

// sessionID returns the opaque visitor session identifier, issuing a new
// cookie on first contact.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return cookie.Value
		}
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// SendMessage is written against the raw ResponseWriter rather than
// RestHandler because it must set the session cookie and match the exact
// error body the chat widget expects.
func (s *ChatService) SendMessage(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(w, r)

	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, CodedErrorf(http.StatusBadRequest, "Invalid JSON payload"))
		return
	}

	envelope, err := s.dispatcher.Dispatch(r.Context(), sid, req.Message)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJsonResponse(w, api.ChatResponse{Response: envelope})
}
