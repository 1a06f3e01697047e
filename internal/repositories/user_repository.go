package repositories

import (
	"database/sql"
	"fmt"

	"vistream/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	ExistsByEmail(email string) (bool, error)
	UpdatePassword(id int, passwordHash string) error
	GetCountByRole(roleID int) (int, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (email, display_name, channel_name, password_hash, role_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(q, user.Email, user.DisplayName, user.ChannelName, user.PasswordHash, user.RoleID).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	const q = `
		SELECT id, email, display_name, channel_name, password_hash, role_id, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRow(q, id))
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	const q = `
		SELECT id, email, display_name, channel_name, password_hash, role_id, created_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`
	return r.scanOne(r.DB.QueryRow(q, email))
}

func (r *userRepository) ExistsByEmail(email string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`
	var exists bool
	if err := r.DB.QueryRow(q, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("user exists by email: %w", err)
	}
	return exists, nil
}

func (r *userRepository) UpdatePassword(id int, passwordHash string) error {
	res, err := r.DB.Exec(`UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("user update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user update password: user %d not found", id)
	}
	return nil
}

func (r *userRepository) GetCountByRole(roleID int) (int, error) {
	var c int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM users WHERE role_id = $1`, roleID).Scan(&c); err != nil {
		return 0, fmt.Errorf("user count by role: %w", err)
	}
	return c, nil
}

func (r *userRepository) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.ChannelName, &u.PasswordHash, &u.RoleID, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user scan: %w", err)
	}
	return &u, nil
}
