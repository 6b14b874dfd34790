package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alexampersandria/ephemeride/internal/apperr"
	"github.com/alexampersandria/ephemeride/internal/utils"
)

// Tag is a user-defined label inside a category. A tag only exists while
// its category does.
type Tag struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	CreatedAt  int64  `json:"created_at"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	CategoryID string `json:"category_id"`
}

// CreateTag carries tag creation input.
type CreateTag struct {
	Name       string
	Color      string
	CategoryID string
	UserID     string
}

type TagRepo struct {
	db         *sql.DB
	categories *CategoryRepo
}

func NewTagRepo(db *sql.DB, categories *CategoryRepo) *TagRepo {
	return &TagRepo{db: db, categories: categories}
}

// Create validates input, checks the owning category exists for the same
// user, and inserts the tag. Unknown colors coerce to the palette default
// instead of erroring.
func (r *TagRepo) Create(ctx context.Context, tag CreateTag) (*Tag, error) {
	if len(tag.Name) < 1 || len(tag.Name) > 255 {
		return nil, apperr.BadRequest
	}
	if len(tag.Color) < 1 || len(tag.Color) > 16 {
		return nil, apperr.BadRequest
	}
	if _, err := r.categories.Get(ctx, tag.CategoryID, tag.UserID); err != nil {
		return nil, apperr.CategoryNotFound
	}

	t := Tag{
		ID:         utils.NewID(),
		UserID:     tag.UserID,
		CreatedAt:  utils.UnixMS(),
		Name:       tag.Name,
		Color:      utils.ParseColor(tag.Color),
		CategoryID: tag.CategoryID,
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO tags (id, user_id, created_at, name, color, category_id) VALUES (?,?,?,?,?,?)",
		t.ID, t.UserID, t.CreatedAt, t.Name, t.Color, t.CategoryID)
	if err != nil {
		return nil, apperr.DatabaseError
	}
	return &t, nil
}

// Get fetches a tag scoped to its owner.
func (r *TagRepo) Get(ctx context.Context, id, userID string) (*Tag, error) {
	var t Tag
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, created_at, name, color, category_id FROM tags WHERE id = ? AND user_id = ?",
		id, userID).Scan(&t.ID, &t.UserID, &t.CreatedAt, &t.Name, &t.Color, &t.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.TagNotFound
		}
		return nil, apperr.DatabaseError
	}
	return &t, nil
}

// Edit renames and recolors a tag, then returns the updated row.
func (r *TagRepo) Edit(ctx context.Context, id, userID, name, color string) (*Tag, error) {
	if len(name) < 1 || len(name) > 255 {
		return nil, apperr.BadRequest
	}
	if len(color) < 1 || len(color) > 16 {
		return nil, apperr.BadRequest
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE tags SET name = ?, color = ? WHERE id = ? AND user_id = ?",
		name, utils.ParseColor(color), id, userID); err != nil {
		return nil, apperr.DatabaseError
	}
	return r.Get(ctx, id, userID)
}

// Delete detaches the tag from all entries, then removes the tag row, in
// one transaction. Returns whether the tag row existed.
func (r *TagRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
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
		 WHERE et.tag_id = ? AND t.user_id = ?`,
		id, userID); err != nil {
		return false, apperr.DatabaseError
	}

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		"DELETE FROM tags WHERE id = ? AND user_id = ?",
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

// defaultTaxonomy is the starter set every new account receives.
var defaultTaxonomy = []struct {
	category string
	tags     []struct{ name, color string }
}{
	{"Activities", []struct{ name, color string }{
		{"Work", "base"},
		{"Movie", "base"},
		{"Exercise", "base"},
		{"Read", "base"},
		{"Shopping", "base"},
		{"Gaming", "base"},
	}},
	{"Tags", []struct{ name, color string }{
		{"Travel", "base"},
		{"Important", "blue"},
		{"Sick", "red"},
	}},
}

// SeedDefaultData creates the default categories and tags for a freshly
// registered user.
func SeedDefaultData(ctx context.Context, categories *CategoryRepo, tags *TagRepo, userID string) error {
	for _, def := range defaultTaxonomy {
		category, err := categories.Create(ctx, userID, def.category)
		if err != nil {
			return apperr.DatabaseError
		}
		for _, t := range def.tags {
			if _, err := tags.Create(ctx, CreateTag{
				Name:       t.name,
				Color:      t.color,
				CategoryID: category.ID,
				UserID:     userID,
			}); err != nil {
				return apperr.DatabaseError
			}
		}
	}
	return nil
}
