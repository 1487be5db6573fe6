package store

import (
	"context"

	"hoctap-backend/internal/models"
)

const adminColumns = `id, auth_user_id, email, full_name, role, created_at, updated_at`
const userColumns = `id, auth_user_id, email, full_name, avatar_url, role, created_at, updated_at`

func (s *Store) FindAdminByAuthID(ctx context.Context, authUserID string) (models.AdminUser, error) {
	var row models.AdminUser
	err := s.db.GetContext(ctx, &row, `SELECT `+adminColumns+` FROM admin_users WHERE auth_user_id::text = $1`, authUserID)
	return row, err
}

func (s *Store) FindUserByAuthID(ctx context.Context, authUserID string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE auth_user_id::text = $1`, authUserID)
	return row, err
}

func (s *Store) GetAdmin(ctx context.Context, id string) (models.AdminUser, error) {
	var row models.AdminUser
	err := s.db.GetContext(ctx, &row, `SELECT `+adminColumns+` FROM admin_users WHERE id::text = $1`, id)
	return row, err
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id::text = $1`, id)
	return row, err
}

func (s *Store) AdminEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM admin_users WHERE lower(email) = lower($1))`, email)
	return exists, err
}

func (s *Store) UserEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`, email)
	return exists, err
}

func (s *Store) CreateAdmin(ctx context.Context, admin *models.AdminUser) error {
	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO admin_users (id, auth_user_id, email, full_name, role, created_at, updated_at)
VALUES (:id, :auth_user_id, :email, :full_name, :role, :created_at, :updated_at)
`, admin)
	return mapWriteError(err)
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO users (id, auth_user_id, email, full_name, avatar_url, role, created_at, updated_at)
VALUES (:id, :auth_user_id, :email, :full_name, :avatar_url, :role, :created_at, :updated_at)
`, user)
	return mapWriteError(err)
}
