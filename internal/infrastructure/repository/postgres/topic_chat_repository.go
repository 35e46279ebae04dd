package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
)

type TopicChatRepository struct {
	db *sql.DB
}

func NewTopicChatRepository(db *sql.DB) *TopicChatRepository {
	return &TopicChatRepository{db: db}
}

// AppendMessages inserts all messages atomically; ids make replays idempotent.
func (r *TopicChatRepository) AppendMessages(ctx context.Context, messages ...domain.TopicChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, msg := range messages {
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now().UTC()
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO topic_chat_messages (id, user_id, course_id, module_id, sender, text, time_display, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO NOTHING
`, msg.ID, msg.UserID, msg.CourseID, msg.ModuleID, msg.Sender, msg.Text, msg.TimeDisplay, msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("append topic message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append tx: %w", err)
	}
	return nil
}

func (r *TopicChatRepository) ListTopicMessages(ctx context.Context, userID, courseID, moduleID string) ([]domain.TopicChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, course_id, module_id, sender, text, time_display, created_at
FROM topic_chat_messages
WHERE user_id = $1 AND course_id = $2 AND module_id = $3
ORDER BY created_at ASC
`, userID, courseID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("list topic messages: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TopicChatMessage, 0)
	for rows.Next() {
		var msg domain.TopicChatMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.UserID,
			&msg.CourseID,
			&msg.ModuleID,
			&msg.Sender,
			&msg.Text,
			&msg.TimeDisplay,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan topic message: %w", err)
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topic messages: %w", err)
	}
	return out, nil
}
