package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alexampersandria/ephemeride/internal/apperr"
	"github.com/alexampersandria/ephemeride/internal/utils"
)

// Category groups tags. Every category belongs to exactly one user and is
// only visible to that user.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UserID    string `json:"user_id"`
	CreatedAt int64  `json:"created_at"`
}

// CategoryWithTags is the category list shape: each category carries its
// tags inline.
type CategoryWithTags struct {
	Category
	Tags []Tag `json:"tags"`
}

type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create validates the name and inserts a category for the user.
func (r *CategoryRepo) Create(ctx context.Context, userID, name string) (*Category, error) {
	if len(name) < 1 || len(name) > 255 {
		return nil, apperr.BadRequest
	}

	c := Category{
		ID:        utils.NewID(),
		Name:      name,
		UserID:    userID,
		CreatedAt: utils.UnixMS(),
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, user_id, created_at) VALUES (?,?,?,?)",
		c.ID, c.Name, c.UserID, c.CreatedAt)
	if err != nil {
		return nil, apperr.DatabaseError
	}
	return &c, nil
}

// Get fetches a category scoped to its owner.
func (r *CategoryRepo) Get(ctx context.Context, id, userID string) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, user_id, created_at FROM categories WHERE id = ? AND user_id = ?",
		id, userID).Scan(&c.ID, &c.Name, &c.UserID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.CategoryNotFound
		}
		return nil, apperr.DatabaseError
	}
	return &c, nil
}

// Edit renames a category and returns the updated row.
func (r *CategoryRepo) Edit(ctx context.Context, id, userID, name string) (*Category, error) {
	if len(name) < 1 || len(name) > 255 {
		return nil, apperr.BadRequest
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name = ? WHERE id = ? AND user_id = ?",
		name, id, userID); err != nil {
		return nil, apperr.DatabaseError
	}
	return r.Get(ctx, id, userID)
}

// ListWithTags returns all of a user's categories ordered by name, each
// with its tags. Tags are fetched in one pass and grouped in memory.
func (r *CategoryRepo) ListWithTags(ctx context.Context, userID string) ([]CategoryWithTags, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, user_id, created_at FROM categories WHERE user_id = ? ORDER BY name ASC",
		userID)
	if err != nil {
		return nil, apperr.DatabaseError
	}
	defer rows.Close()

	out := []CategoryWithTags{}
	index := map[string]int{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.UserID, &c.CreatedAt); err != nil {
			return nil, apperr.DatabaseError
		}
		index[c.ID] = len(out)
		out = append(out, CategoryWithTags{Category: c, Tags: []Tag{}})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.DatabaseError
	}

	tagRows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, created_at, name, color, category_id FROM tags WHERE user_id = ? ORDER BY name ASC",
		userID)
	if err != nil {
		return nil, apperr.DatabaseError
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var t Tag
		if err := tagRows.Scan(&t.ID, &t.UserID, &t.CreatedAt, &t.Name, &t.Color, &t.CategoryID); err != nil {
			return nil, apperr.DatabaseError
		}
		if i, ok := index[t.CategoryID]; ok {
			out[i].Tags = append(out[i].Tags, t)
		}
	}
	if err := tagRows.Err(); err != nil {
		return nil, apperr.DatabaseError
	}
	return out, nil
}

// Delete removes a category, its tags, and any entry-tag links pointing at
// those tags, in one transaction. Entries themselves survive with a
// reduced tag set. Returns whether the category row existed.
func (r *CategoryRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, apperr.DatabaseError
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE et FROM entry_tags et
		 JOIN tags t ON t.id = et.tag_id
		 WHERE t.category_id = ? AND t.user_id = ?`,
		id, userID); err != nil {
		return false, apperr.DatabaseError
	}
	if _, err = tx.ExecContext(ctx,
		"DELETE FROM tags WHERE category_id = ? AND user_id = ?",
		id, userID); err != nil {
		return false, apperr.DatabaseError
	}

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		"DELETE FROM categories WHERE id = ? AND user_id = ?",
		id, userID)
	if err != nil {
		return false, apperr.DatabaseError
	}
	n, _ := res.RowsAffected()

	if err = tx.Commit(); err != nil {
		return false, apperr.DatabaseError
	}
	return n > 0, nil
}
