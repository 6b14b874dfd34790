package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alexampersandria/ephemeride/internal/apperr"
	"github.com/alexampersandria/ephemeride/internal/utils"
)

// Invite mirrors the invites table. An invite transitions used=false to
// used=true exactly once.
type Invite struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
	Code      string `json:"code"`
	Used      bool   `json:"used"`
}

type InviteRepo struct {
	db *sql.DB
}

func NewInviteRepo(db *sql.DB) *InviteRepo {
	return &InviteRepo{db: db}
}

// Get fetches an invite by code.
func (r *InviteRepo) Get(ctx context.Context, code string) (*Invite, error) {
	var inv Invite
	err := r.db.QueryRowContext(ctx,
		"SELECT id, created_at, code, used FROM invites WHERE code = ?",
		code).Scan(&inv.ID, &inv.CreatedAt, &inv.Code, &inv.Used)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.InviteNotFound
		}
		return nil, apperr.DatabaseError
	}
	return &inv, nil
}

// Generate mints a new invite. A desired code is honored unless it is
// already taken, in which case a random code is used instead.
func (r *InviteRepo) Generate(ctx context.Context, desiredCode string) (*Invite, error) {
	code := desiredCode
	if code == "" {
		code = utils.NewInviteCode()
	} else if _, err := r.Get(ctx, code); err == nil {
		code = utils.NewInviteCode()
	}

	inv := Invite{
		ID:        utils.NewID(),
		CreatedAt: utils.UnixMS(),
		Code:      code,
		Used:      false,
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO invites (id, created_at, code, used) VALUES (?,?,?,?)",
		inv.ID, inv.CreatedAt, inv.Code, inv.Used)
	if err != nil {
		return nil, apperr.DatabaseError
	}
	return &inv, nil
}

// Use redeems an invite with a single conditional write so concurrent
// redemptions of the same code cannot both succeed. Zero rows affected
// means the code was already used, or never existed.
func (r *InviteRepo) Use(ctx context.Context, code string) (*Invite, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE invites SET used = TRUE WHERE code = ? AND used = FALSE",
		code)
	if err != nil {
		return nil, apperr.DatabaseError
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, apperr.DatabaseError
	}
	if n == 0 {
		if _, getErr := r.Get(ctx, code); getErr != nil {
			return nil, getErr
		}
		return nil, apperr.InviteUsed
	}
	return r.Get(ctx, code)
}
