package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iventshq/ivents/internal/model"
)

// CreateChatMessage inserts a chat message for an event.
func (db *DB) CreateChatMessage(ctx context.Context, msg model.ChatMessage) (model.ChatMessage, error) {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO chat_messages (id, event_id, user_id, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.EventID, msg.UserID, msg.Content, msg.CreatedAt,
	)
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("storage: create chat message: %w", err)
	}
	return msg, nil
}

// ListChatMessages returns up to limit messages for an event, oldest first,
// with the author's username joined in for display.
func (db *DB) ListChatMessages(ctx context.Context, eventID uuid.UUID, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.pool.Query(ctx,
		`SELECT m.id, m.event_id, m.user_id, u.username, m.content, m.created_at
		 FROM chat_messages m JOIN users u ON u.id = m.user_id
		 WHERE m.event_id = $1
		 ORDER BY m.created_at ASC, m.id LIMIT $2`,
		eventID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.EventID, &m.UserID, &m.Username, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan chat message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// GetChatMessage retrieves one message by ID.
func (db *DB) GetChatMessage(ctx context.Context, id uuid.UUID) (model.ChatMessage, error) {
	var m model.ChatMessage
	err := db.pool.QueryRow(ctx,
		`SELECT m.id, m.event_id, m.user_id, u.username, m.content, m.created_at
		 FROM chat_messages m JOIN users u ON u.id = m.user_id
		 WHERE m.id = $1`, id,
	).Scan(&m.ID, &m.EventID, &m.UserID, &m.Username, &m.Content, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ChatMessage{}, fmt.Errorf("storage: chat message %s: %w", id, ErrNotFound)
		}
		return model.ChatMessage{}, fmt.Errorf("storage: get chat message: %w", err)
	}
	return m, nil
}

// DeleteChatMessage removes one message.
func (db *DB) DeleteChatMessage(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM chat_messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("storage: delete chat message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("storage: chat message %s: %w", id, ErrNotFound)
	}
	return nil
}
