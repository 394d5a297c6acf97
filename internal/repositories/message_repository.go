package repositories

import (
	"context"
	"database/sql"

	"liminmarket/internal/models"
)

type MessageRepository struct {
	DB *sql.DB
}

func (r *MessageRepository) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	result, err := r.DB.ExecContext(ctx,
		`INSERT INTO messages (chat_id, sender_id, receiver_id, text, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ChatID, msg.SenderID, msg.ReceiverID, msg.Text, msg.CreatedAt,
	)
	if err != nil {
		return models.Message{}, err
	}
	lastID, err := result.LastInsertId()
	if err != nil {
		return models.Message{}, err
	}
	msg.ID = int(lastID)
	return msg, nil
}

func (r *MessageRepository) GetMessagesByChatID(ctx context.Context, chatID int) ([]models.Message, error) {
	query := `
        SELECT id, chat_id, sender_id, receiver_id, text, is_read, created_at
        FROM messages WHERE chat_id = ? ORDER BY created_at ASC
    `
	rows, err := r.DB.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *MessageRepository) MarkRead(ctx context.Context, chatID, readerID int) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE messages SET is_read = 1 WHERE chat_id = ? AND receiver_id = ?`,
		chatID, readerID,
	)
	return err
}

func (r *MessageRepository) DeleteMessage(ctx context.Context, id, senderID int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM messages WHERE id = ? AND sender_id = ?`, id, senderID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNoRecord
	}
	return nil
}
