package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phani-001/FixMyTown/internal/domain/entity"
	"github.com/phani-001/FixMyTown/internal/domain/repository"
)

type userRepo struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, name, COALESCE(mobile, '') as mobile, COALESCE(username, '') as username,
	COALESCE(password_hash, '') as password_hash, role, COALESCE(department, '') as department,
	created_at, updated_at, last_login_at`

func (r *userRepo) Create(ctx context.Context, user *entity.User) error {
	query := `INSERT INTO users (id, name, mobile, username, password_hash, role, department, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		nullIfEmpty(user.Mobile),
		nullIfEmpty(user.Username),
		nullIfEmpty(user.PasswordHash),
		user.Role,
		nullIfEmpty(user.Department),
		user.CreatedAt,
		user.UpdatedAt,
	)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *userRepo) GetByMobile(ctx context.Context, mobile string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE mobile = $1`, mobile)
}

// UpsertCitizen : insertion idempotente clé par le mobile. L'index unique sur
// mobile absorbe la course entre deux vérifications OTP simultanées.
func (r *userRepo) UpsertCitizen(ctx context.Context, mobile, name string) (*entity.User, error) {
	now := time.Now().UTC()
	query := `INSERT INTO users (id, name, mobile, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (mobile) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, uuid.New().String(), name, mobile, entity.RoleCitizen, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert citizen: %w", err)
	}

	user, err := r.GetByMobile(ctx, mobile)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("citizen upsert lost for mobile %s", mobile)
	}
	return user, nil
}

func (r *userRepo) ListStaff(ctx context.Context) ([]entity.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role != $1 ORDER BY created_at ASC`,
		entity.RoleCitizen,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []entity.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *userRepo) getOne(ctx context.Context, query string, arg interface{}) (*entity.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func scanUser(row interface{ Scan(...interface{}) error }) (*entity.User, error) {
	user := &entity.User{}
	var lastLogin sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Mobile,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.Department,
		&user.CreatedAt,
		&user.UpdatedAt,
		&lastLogin,
	)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		user.LastLoginAt = &lastLogin.Time
	}
	return user, nil
}
