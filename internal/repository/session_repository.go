package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/alexampersandria/ephemeride/internal/apperr"
	"github.com/alexampersandria/ephemeride/internal/utils"
)

// Session mirrors the sessions table. The id is an opaque unguessable
// token that doubles as the bearer credential: whoever holds it can
// authenticate as this session.
type Session struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	CreatedAt  int64  `json:"created_at"`
	AccessedAt int64  `json:"accessed_at"`
	IPAddress  string `json:"ip_address"`
	UserAgent  string `json:"user_agent"`
}

// Credentials is a login attempt.
type Credentials struct {
	Email    string
	Password string
}

// SessionMetadata captures where a session was opened from.
type SessionMetadata struct {
	IPAddress string
	UserAgent string
}

// SessionRepo issues, looks up, touches and revokes sessions. It is the
// sole source of "who is calling". A non-zero ttl enables sliding expiry:
// sessions whose accessed_at is older than ttl behave as if revoked.
type SessionRepo struct {
	db    *sql.DB
	users *UserRepo
	ttl   time.Duration
}

func NewSessionRepo(db *sql.DB, users *UserRepo, ttl time.Duration) *SessionRepo {
	return &SessionRepo{db: db, users: users, ttl: ttl}
}

// Create verifies credentials and mints a fresh session. UserNotFound for
// unknown emails, InvalidPassword on mismatch, InternalServerError when
// the stored hash is unreadable.
func (r *SessionRepo) Create(ctx context.Context, creds Credentials, meta SessionMetadata) (*Session, error) {
	userID, err := r.users.GetIDByEmail(ctx, creds.Email)
	if err != nil {
		return nil, err
	}

	hash, err := r.users.GetPasswordHash(ctx, userID)
	if err != nil {
		return nil, apperr.DatabaseError
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(creds.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperr.InvalidPassword
		}
		return nil, apperr.InternalServerError
	}

	now := utils.UnixMS()
	s := Session{
		ID:         utils.NewID(),
		UserID:     userID,
		CreatedAt:  now,
		AccessedAt: now,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, created_at, accessed_at, ip_address, user_agent) VALUES (?,?,?,?,?,?)",
		s.ID, s.UserID, s.CreatedAt, s.AccessedAt, s.IPAddress, s.UserAgent)
	if err != nil {
		return nil, apperr.DatabaseError
	}
	return &s, nil
}

// Lookup resolves a token to its session and advances accessed_at as a
// side effect. If the touch write fails the lookup fails as a whole, even
// though the row exists; authorized use must leave a fresh timestamp.
func (r *SessionRepo) Lookup(ctx context.Context, token string) (*Session, error) {
	var s Session
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, created_at, accessed_at, ip_address, user_agent FROM sessions WHERE id = ?",
		token).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.AccessedAt, &s.IPAddress, &s.UserAgent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.SessionNotFound
		}
		return nil, apperr.DatabaseError
	}

	now := utils.UnixMS()
	if r.ttl > 0 && now-s.AccessedAt > r.ttl.Milliseconds() {
		return nil, apperr.SessionNotFound
	}

	if _, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET accessed_at = ? WHERE id = ?",
		now, s.ID); err != nil {
		return nil, apperr.DatabaseError
	}
	s.AccessedAt = now
	return &s, nil
}

// ListForToken returns every session of the user owning the given token.
// The anchor token must itself resolve, with the same touch semantics as
// Lookup.
func (r *SessionRepo) ListForToken(ctx context.Context, token string) ([]Session, error) {
	current, err := r.Lookup(ctx, token)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, created_at, accessed_at, ip_address, user_agent FROM sessions WHERE user_id = ?",
		current.UserID)
	if err != nil {
		return nil, apperr.DatabaseError
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.AccessedAt, &s.IPAddress, &s.UserAgent); err != nil {
			return nil, apperr.DatabaseError
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.DatabaseError
	}
	return out, nil
}

// Revoke deletes one session and reports whether a row was removed.
func (r *SessionRepo) Revoke(ctx context.Context, token string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", token)
	if err != nil {
		return false, apperr.DatabaseError
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RevokeAllForUser deletes every session a user owns.
func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE user_id = ?", userID); err != nil {
		return apperr.DatabaseError
	}
	return nil
}
