package chat

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"portfolio-backend/internal/database"
)

// MaxExchanges bounds the per-session short-term memory fed back into the
// LLM. Oldest exchanges are evicted on overflow.
const MaxExchanges = 4

// Exchange is one user/AI turn pair. The AI side holds simplified text: a
// short marker for canned and database-driven responses, the raw pre-HTML
// generation for LLM responses.
type Exchange struct {
	User string
	AI   string
}

// HistoryStore is the per-visitor conversation memory, keyed by an opaque
// session identifier and persisted as chat_messages rows.
type HistoryStore struct {
	db *gorm.DB
}

func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Recent returns the stored exchanges for the session, most-recent-last,
// never more than MaxExchanges.
func (s *HistoryStore) Recent(ctx context.Context, sessionID string) ([]Exchange, error) {
	var messages []database.ChatMessage
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("could not query chat history: %w", err)
	}

	var exchanges []Exchange
	for _, msg := range messages {
		switch msg.Role {
		case database.RoleUser:
			exchanges = append(exchanges, Exchange{User: msg.Content})
		case database.RoleAI:
			if len(exchanges) > 0 && exchanges[len(exchanges)-1].AI == "" {
				exchanges[len(exchanges)-1].AI = msg.Content
			}
		}
	}

	if len(exchanges) > MaxExchanges {
		exchanges = exchanges[len(exchanges)-MaxExchanges:]
	}
	return exchanges, nil
}

// Append records one completed exchange and evicts the oldest rows beyond
// the MaxExchanges bound. Called exactly once per request, after the
// response is fully determined.
func (s *HistoryStore) Append(ctx context.Context, sessionID, userText, aiText string) error {
	now := time.Now().UTC()
	rows := []database.ChatMessage{
		{SessionID: sessionID, Role: database.RoleUser, Content: userText, CreatedAt: now},
		{SessionID: sessionID, Role: database.RoleAI, Content: aiText, CreatedAt: now},
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("could not save chat history: %w", err)
	}

	return s.trim(ctx, sessionID)
}

func (s *HistoryStore) trim(ctx context.Context, sessionID string) error {
	var total int64
	if err := s.db.WithContext(ctx).
		Model(&database.ChatMessage{}).
		Where("session_id = ?", sessionID).
		Count(&total).Error; err != nil {
		return fmt.Errorf("could not count chat history: %w", err)
	}

	excess := int(total) - 2*MaxExchanges
	if excess <= 0 {
		return nil
	}

	var stale []database.ChatMessage
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Limit(excess).
		Find(&stale).Error
	if err != nil {
		return fmt.Errorf("could not find stale chat history: %w", err)
	}

	ids := make([]uint, len(stale))
	for i, msg := range stale {
		ids[i] = msg.Id
	}
	if err := s.db.WithContext(ctx).Delete(&database.ChatMessage{}, ids).Error; err != nil {
		return fmt.Errorf("could not evict stale chat history: %w", err)
	}
	return nil
}
