package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxChatMessageLen caps a single chat message.
const MaxChatMessageLen = 500

// ChatMessage is a message posted in an event's live chat.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"` // joined from users for display
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateChatContent checks that a message is non-empty after trimming
// and within the length cap.
func ValidateChatContent(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("message must not be empty")
	}
	if len(trimmed) > MaxChatMessageLen {
		return fmt.Errorf("message exceeds maximum length of %d characters", MaxChatMessageLen)
	}
	return nil
}
