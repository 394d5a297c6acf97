package repositories

import (
	"context"
	"database/sql"
	"errors"

	"liminmarket/internal/models"
)

type ChatRepository struct {
	DB *sql.DB
}

func (r *ChatRepository) CreateChat(ctx context.Context, chat models.Chat) (models.Chat, error) {
	result, err := r.DB.ExecContext(ctx,
		`INSERT INTO chats (listing_id, buyer_id, seller_id, created_at) VALUES (?, ?, ?, ?)`,
		chat.ListingID, chat.BuyerID, chat.SellerID, chat.CreatedAt,
	)
	if err != nil {
		return models.Chat{}, err
	}
	lastID, err := result.LastInsertId()
	if err != nil {
		return models.Chat{}, err
	}
	chat.ID = int(lastID)
	return chat, nil
}

// GetChatByParticipants finds an existing chat for a listing between two
// users; a zero chat means none exists yet.
func (r *ChatRepository) GetChatByParticipants(ctx context.Context, listingID, buyerID, sellerID int) (models.Chat, error) {
	query := `
        SELECT id, listing_id, buyer_id, seller_id, created_at
        FROM chats
        WHERE listing_id = ? AND ((buyer_id = ? AND seller_id = ?) OR (buyer_id = ? AND seller_id = ?))
    `
	var c models.Chat
	err := r.DB.QueryRowContext(ctx, query, listingID, buyerID, sellerID, sellerID, buyerID).Scan(
		&c.ID, &c.ListingID, &c.BuyerID, &c.SellerID, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, nil
	}
	if err != nil {
		return models.Chat{}, err
	}
	return c, nil
}

func (r *ChatRepository) GetChatByID(ctx context.Context, id int) (models.Chat, error) {
	query := `
        SELECT c.id, c.listing_id, c.buyer_id, c.seller_id,
               b.name, b.avatar_path, s.name, s.avatar_path, c.created_at
        FROM chats c
        JOIN users b ON c.buyer_id = b.id
        JOIN users s ON c.seller_id = s.id
        WHERE c.id = ?
    `
	var c models.Chat
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.ListingID, &c.BuyerID, &c.SellerID,
		&c.Buyer.Name, &c.Buyer.AvatarPath, &c.Seller.Name, &c.Seller.AvatarPath, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, models.ErrChatNotFound
	}
	if err != nil {
		return models.Chat{}, err
	}
	return c, nil
}

func (r *ChatRepository) GetChatsByUserID(ctx context.Context, userID int) ([]models.Chat, error) {
	query := `
        SELECT c.id, c.listing_id, c.buyer_id, c.seller_id,
               b.name, b.avatar_path, s.name, s.avatar_path,
               COALESCE((SELECT m.text FROM messages m WHERE m.chat_id = c.id ORDER BY m.created_at DESC LIMIT 1), ''),
               c.created_at
        FROM chats c
        JOIN users b ON c.buyer_id = b.id
        JOIN users s ON c.seller_id = s.id
        WHERE c.buyer_id = ? OR c.seller_id = ?
        ORDER BY c.created_at DESC
    `
	rows, err := r.DB.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var c models.Chat
		if err := rows.Scan(
			&c.ID, &c.ListingID, &c.BuyerID, &c.SellerID,
			&c.Buyer.Name, &c.Buyer.AvatarPath, &c.Seller.Name, &c.Seller.AvatarPath,
			&c.LastMessage, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

func (r *ChatRepository) DeleteChat(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrChatNotFound
	}
	return nil
}
