package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"helpdesk-ai/backend/internal/model"
)

type sqliteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	query := "INSERT INTO conversations (id, session_token, created_at, updated_at) VALUES (?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, query, conv.ID, conv.SessionToken, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicate
		}
		return fmt.Errorf("could not insert conversation: %w", err)
	}
	return nil
}

func (r *sqliteRepository) GetConversationBySession(ctx context.Context, sessionToken string) (*model.Conversation, error) {
	query := "SELECT id, session_token, created_at, updated_at FROM conversations WHERE session_token = ?"
	row := r.db.QueryRowContext(ctx, query, sessionToken)
	var conv model.Conversation
	err := row.Scan(&conv.ID, &conv.SessionToken, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *sqliteRepository) GetMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	query := `
		SELECT id, conversation_id, role, content, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// AddMessagePair uses a transaction so the user turn and the assistant turn
// either both commit or neither is visible. The conversation's updated_at
// is bumped in the same transaction.
func (r *sqliteRepository) AddMessagePair(ctx context.Context, conversationID string, userMsg, assistantMsg *model.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	// Ensure transaction is rolled back on error
	defer tx.Rollback()

	insertQuery := "INSERT INTO messages (id, conversation_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)"
	for _, msg := range []*model.Message{userMsg, assistantMsg} {
		_, err = tx.ExecContext(ctx, insertQuery, msg.ID, conversationID, msg.Role, msg.Content, msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("could not insert message: %w", err)
		}
	}

	updateQuery := "UPDATE conversations SET updated_at = ? WHERE id = ?"
	if _, err = tx.ExecContext(ctx, updateQuery, time.Now().UTC(), conversationID); err != nil {
		return fmt.Errorf("could not update conversation timestamp: %w", err)
	}

	return tx.Commit()
}
