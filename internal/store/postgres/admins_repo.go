package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	"carfixer/backend/internal/domain"
)

var ErrAdminExists = errors.New("admin already exists")

// AdminRepo verifies admin credentials against bcrypt hashes in the admins
// table.
type AdminRepo struct {
	db *bun.DB
}

func NewAdminRepo(db *bun.DB) *AdminRepo {
	return &AdminRepo{db: db}
}

func (r *AdminRepo) VerifyCredentials(ctx context.Context, username, password string) (bool, error) {
	var admin domain.Admin
	err := r.db.NewSelect().
		Model(&admin).
		Where("username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *AdminRepo) Create(ctx context.Context, username, passwordHash string) (domain.Admin, error) {
	admin := domain.Admin{Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	_, err := r.db.NewInsert().
		Model(&admin).
		Returning("id, created_at").
		Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Admin{}, ErrAdminExists
		}
		return domain.Admin{}, err
	}
	return admin, nil
}
