package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"emireminder/models"
	"emireminder/utils"
)

// UserStore implements userRepo.UserRepository.
type UserStore struct {
	db *sql.DB
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	var (
		u                    models.User
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, name, phone, email, fcm_token, created_at, updated_at
		FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &u.FCMToken, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user with id %s: %w", id, err)
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return &u, nil
}

func (s *UserStore) Upsert(ctx context.Context, user *models.User) error {
	now := nowMillis()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id, name, phone, email, fcm_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, phone = excluded.phone, email = excluded.email,
			fcm_token = excluded.fcm_token, updated_at = excluded.updated_at`,
		user.ID, user.Name, user.Phone, user.Email, user.FCMToken, toMillis(user.CreatedAt), toMillis(user.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.ID, err)
	}
	return nil
}

func (s *UserStore) UpdateFCMToken(ctx context.Context, id, token string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET fcm_token = ?, updated_at = ? WHERE id = ?`,
		token, toMillis(nowMillis()), id)
	if err != nil {
		return fmt.Errorf("failed to update FCM token of user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.NotFound("user not found")
	}
	return nil
}
