package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"liminmarket/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
        INSERT INTO users (name, phone, email, password, role, city, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	result, err := r.DB.ExecContext(ctx, query,
		user.Name, user.Phone, user.Email, user.Password, user.Role, user.City, user.CreatedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return models.User{}, models.ErrDuplicatePhone
		}
		return models.User{}, err
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	user.ID = int(lastID)
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (models.User, error) {
	query := `
        SELECT id, name, phone, email, password, role, city, avatar_path, created_at, updated_at
        FROM users WHERE id = ?
    `
	var u models.User
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Phone, &u.Email, &u.Password, &u.Role, &u.City,
		&u.AvatarPath, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (r *UserRepository) GetUserByPhone(ctx context.Context, phone string) (models.User, error) {
	query := `
        SELECT id, name, phone, email, password, role, city, avatar_path, created_at, updated_at
        FROM users WHERE phone = ?
    `
	var u models.User
	err := r.DB.QueryRowContext(ctx, query, phone).Scan(
		&u.ID, &u.Name, &u.Phone, &u.Email, &u.Password, &u.Role, &u.City,
		&u.AvatarPath, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (r *UserRepository) CreateSession(ctx context.Context, session models.Session) error {
	query := `
        INSERT INTO sessions (user_id, role, refresh_token, expires_at, created_at)
        VALUES (?, ?, ?, ?, ?)
    `
	_, err := r.DB.ExecContext(ctx, query,
		session.UserID, session.Role, session.RefreshToken, session.ExpiresAt, session.CreatedAt,
	)
	return err
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	query := `
        SELECT id, user_id, role, refresh_token, expires_at, created_at
        FROM sessions WHERE refresh_token = ?
    `
	var s models.Session
	err := r.DB.QueryRowContext(ctx, query, refreshToken).Scan(
		&s.ID, &s.UserID, &s.Role, &s.RefreshToken, &s.ExpiresAt, &s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, nil
	}
	if err != nil {
		return models.Session{}, err
	}
	return s, nil
}

func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *UserRepository) SaveFCMToken(ctx context.Context, userID int, token string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET fcm_token = ?, updated_at = ? WHERE id = ?`,
		token, time.Now(), userID,
	)
	return err
}

func (r *UserRepository) GetFCMToken(ctx context.Context, userID int) (string, error) {
	var token sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT fcm_token FROM users WHERE id = ?`, userID).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return token.String, nil
}
