package repository

import (
	"context"
	"database/sql"
	"errors"
	"net/mail"
	"strings"

	"github.com/alexampersandria/ephemeride/internal/apperr"
	"github.com/alexampersandria/ephemeride/internal/utils"
)

// User is the public shape of a users row. The password hash never leaves
// the repository.
type User struct {
	ID        string  `json:"id"`
	CreatedAt int64   `json:"created_at"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Invite    *string `json:"invite"`
}

// CreateUser carries signup input. Invite is the redeemed invite code, if
// any, kept as a back-reference on the row.
type CreateUser struct {
	Name     string
	Email    string
	Password string
	Invite   *string
}

// UserRepo owns users rows and the user-level deletion cascade.
type UserRepo struct {
	db         *sql.DB
	bcryptCost int
}

func NewUserRepo(db *sql.DB, bcryptCost int) *UserRepo {
	return &UserRepo{db: db, bcryptCost: bcryptCost}
}

func validEmail(email string) bool {
	if email == "" || len(email) > 255 {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a user with a freshly hashed password. Fails with
// BadRequest on invalid input and EmailAlreadyInUse when the address is
// taken.
func (r *UserRepo) Create(ctx context.Context, user CreateUser) (*User, error) {
	if len(user.Name) < 1 || len(user.Name) > 255 {
		return nil, apperr.BadRequest
	}
	if !validEmail(user.Email) {
		return nil, apperr.BadRequest
	}
	if len(user.Password) < 7 || len(user.Password) > 255 {
		return nil, apperr.BadRequest
	}

	email := normalizeEmail(user.Email)
	if _, err := r.GetIDByEmail(ctx, email); err == nil {
		return nil, apperr.EmailAlreadyInUse
	}

	hash, err := utils.HashPassword(user.Password, r.bcryptCost)
	if err != nil {
		return nil, apperr.InternalServerError
	}

	u := User{
		ID:        utils.NewID(),
		CreatedAt: utils.UnixMS(),
		Name:      user.Name,
		Email:     email,
		Invite:    user.Invite,
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO users (id, created_at, name, email, password_hash, invite) VALUES (?,?,?,?,?,?)",
		u.ID, u.CreatedAt, u.Name, u.Email, hash, u.Invite)
	if err != nil {
		return nil, apperr.DatabaseError
	}
	return &u, nil
}

// GetByID fetches a user's public details.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, created_at, name, email, invite FROM users WHERE id = ?",
		id).Scan(&u.ID, &u.CreatedAt, &u.Name, &u.Email, &u.Invite)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.UserNotFound
		}
		return nil, apperr.DatabaseError
	}
	return &u, nil
}

// GetIDByEmail resolves a normalized email to a user id.
func (r *UserRepo) GetIDByEmail(ctx context.Context, email string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM users WHERE email = ?",
		normalizeEmail(email)).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperr.UserNotFound
		}
		return "", apperr.DatabaseError
	}
	return id, nil
}

// GetPasswordHash returns the stored hash for credential verification.
func (r *UserRepo) GetPasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx,
		"SELECT password_hash FROM users WHERE id = ?",
		id).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperr.UserNotFound
		}
		return "", apperr.DatabaseError
	}
	return hash, nil
}

// Update edits name and email. The email-in-use check excludes the user's
// own row so resubmitting an unchanged email succeeds.
func (r *UserRepo) Update(ctx context.Context, id, name, email string) (bool, error) {
	if len(name) < 1 || len(name) > 255 || !validEmail(email) {
		return false, apperr.BadRequest
	}
	email = normalizeEmail(email)

	if ownerID, err := r.GetIDByEmail(ctx, email); err == nil && ownerID != id {
		return false, apperr.EmailAlreadyInUse
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET name = ?, email = ? WHERE id = ?",
		name, email, id)
	if err != nil {
		return false, apperr.DatabaseError
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// UpdatePassword rehashes and stores a new password.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, password string) (bool, error) {
	if len(password) < 7 || len(password) > 255 {
		return false, apperr.BadRequest
	}
	hash, err := utils.HashPassword(password, r.bcryptCost)
	if err != nil {
		return false, apperr.InternalServerError
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE id = ?",
		hash, id)
	if err != nil {
		return false, apperr.DatabaseError
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Delete removes a user and everything they own: sessions, entry-tag
// links, entries, tags, categories, then the user row itself. The whole
// fan-out runs in one transaction so a mid-sequence failure leaves no
// orphaned rows.
func (r *UserRepo) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, apperr.DatabaseError
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	steps := []string{
		"DELETE FROM sessions WHERE user_id = ?",
		`DELETE et FROM entry_tags et
		 JOIN entries e ON e.id = et.entry_id
		 WHERE e.user_id = ?`,
		"DELETE FROM entries WHERE user_id = ?",
		"DELETE FROM tags WHERE user_id = ?",
		"DELETE FROM categories WHERE user_id = ?",
	}
	for _, q := range steps {
		if _, err = tx.ExecContext(ctx, q, id); err != nil {
			return false, apperr.DatabaseError
		}
	}

	var res sql.Result
	res, err = tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return false, apperr.DatabaseError
	}
	n, _ := res.RowsAffected()

	if err = tx.Commit(); err != nil {
		return false, apperr.DatabaseError
	}
	return n > 0, nil
}

// Count returns the total number of users.
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, apperr.DatabaseError
	}
	return count, nil
}

// ActiveCount returns how many distinct users hold a session accessed at
// or after the given epoch-ms timestamp.
func (r *UserRepo) ActiveCount(ctx context.Context, since int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT u.id)
		 FROM users u
		 JOIN sessions s ON s.user_id = u.id
		 WHERE s.accessed_at >= ?`, since).Scan(&count)
	if err != nil {
		return 0, apperr.DatabaseError
	}
	return count, nil
}
