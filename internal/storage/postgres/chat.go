package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"meeting_sync/internal/domain"
)

type ChatStore struct {
	db *sqlx.DB
}

func NewChatStore(db *sqlx.DB) *ChatStore {
	return &ChatStore{db: db}
}

// Upsert dedups on (meeting, content hash). A sender already assigned is
// kept, and only an empty sender is filled in.
func (s *ChatStore) Upsert(ctx context.Context, msg *domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (meeting_id, content_hash, sender_name, sender_id, message_text, message_type, sent_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (meeting_id, content_hash) DO UPDATE SET
			sender_id = COALESCE(chat_messages.sender_id, EXCLUDED.sender_id),
			metadata = CASE WHEN chat_messages.sender_id IS NULL THEN EXCLUDED.metadata ELSE chat_messages.metadata END,
			message_type = EXCLUDED.message_type,
			sent_at = COALESCE(chat_messages.sent_at, EXCLUDED.sent_at)
		RETURNING id`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &msg.ID, query,
		msg.MeetingID,
		msg.ContentHash,
		msg.SenderName,
		msg.SenderID,
		msg.MessageText,
		msg.MessageType,
		msg.SentAt,
		msg.Metadata,
	)
	return classify("upsert chat message", err)
}

func (s *ChatStore) ListUnmatched(ctx context.Context, meetingID int64) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	query := `
		SELECT id, meeting_id, content_hash, sender_name, sender_id, message_text, message_type, sent_at, metadata
		FROM chat_messages
		WHERE meeting_id = $1 AND sender_id IS NULL AND message_type <> 'system'
		ORDER BY id`

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &messages, query, meetingID); err != nil {
		return nil, classify("list unmatched chat", err)
	}
	return messages, nil
}

func (s *ChatStore) AssignSender(ctx context.Context, id, senderID int64, md domain.Metadata) (bool, error) {
	query := `
		UPDATE chat_messages
		SET sender_id = $2, metadata = $3
		WHERE id = $1 AND sender_id IS NULL`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, id, senderID, md)
	if err != nil {
		return false, classify("assign chat sender", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify("assign chat sender", err)
	}
	return n == 1, nil
}

func (s *ChatStore) ListByMeeting(ctx context.Context, meetingID int64) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	query := `
		SELECT id, meeting_id, content_hash, sender_name, sender_id, message_text, message_type, sent_at, metadata
		FROM chat_messages
		WHERE meeting_id = $1
		ORDER BY id`

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &messages, query, meetingID); err != nil {
		return nil, classify("list chat", err)
	}
	return messages, nil
}
