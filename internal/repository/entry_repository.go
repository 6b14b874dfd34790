package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"time"

	"github.com/alexampersandria/ephemeride/internal/apperr"
	"github.com/alexampersandria/ephemeride/internal/utils"
)

// dateRegex guards the calendar-date format before the strict parse
// rejects impossible dates like Feb 30.
var dateRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[012])-(0[1-9]|[12][0-9]|3[01])$`)

const (
	moodMin      = 1
	moodMax      = 5
	entryTextMax = 1000
)

// Entry is a dated mood record with its resolved tag ids. At most one
// entry exists per (user, date).
type Entry struct {
	ID           string   `json:"id"`
	UserID       string   `json:"user_id"`
	Date         string   `json:"date"`
	CreatedAt    int64    `json:"created_at"`
	Mood         int      `json:"mood"`
	Text         *string  `json:"entry"`
	SelectedTags []string `json:"selected_tags"`
}

// CreateEntry carries entry creation input.
type CreateEntry struct {
	Date         string
	Mood         int
	Text         *string
	SelectedTags []string
	UserID       string
}

// EditEntry carries entry edit input. Tag replacement is full-replace:
// the stored link set becomes exactly the resolved SelectedTags.
type EditEntry struct {
	ID           string
	Date         string
	Mood         int
	Text         *string
	SelectedTags []string
	UserID       string
}

// EntryRepo owns entries and their tag links, including the filtered
// pagination query in entry_query.go.
type EntryRepo struct {
	db *sql.DB
}

func NewEntryRepo(db *sql.DB) *EntryRepo {
	return &EntryRepo{db: db}
}

func parseEntryDate(s string) error {
	if !dateRegex.MatchString(s) {
		return apperr.BadRequest
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return apperr.BadRequest
	}
	return nil
}

func validateEntryInput(date string, mood int, text *string) error {
	if err := parseEntryDate(date); err != nil {
		return err
	}
	if mood < moodMin || mood > moodMax {
		return apperr.BadRequest
	}
	if text != nil && len(*text) > entryTextMax {
		return apperr.BadRequest
	}
	return nil
}

// resolveTags filters the requested tag ids down to ones that exist for
// this user, preserving request order. Unresolved ids are dropped
// silently; a bad tag id never fails the entry.
func (r *EntryRepo) resolveTags(ctx context.Context, userID string, tagIDs []string) ([]string, error) {
	if len(tagIDs) == 0 {
		return []string{}, nil
	}

	args := make([]any, 0, len(tagIDs)+1)
	args = append(args, userID)
	for _, id := range tagIDs {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM tags WHERE user_id = ? AND id IN ("+placeholders(len(tagIDs))+")",
		args...)
	if err != nil {
		return nil, apperr.DatabaseError
	}
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.DatabaseError
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.DatabaseError
	}

	resolved := []string{}
	for _, id := range tagIDs {
		if found[id] {
			resolved = append(resolved, id)
		}
	}
	return resolved, nil
}

// Create inserts an entry and its tag links in one transaction. The
// per-(user, date) uniqueness check runs inside the same transaction with
// a locking read so concurrent duplicate submissions cannot both pass.
func (r *EntryRepo) Create(ctx context.Context, entry CreateEntry) (*Entry, error) {
	if err := validateEntryInput(entry.Date, entry.Mood, entry.Text); err != nil {
		return nil, err
	}

	tagIDs, err := r.resolveTags(ctx, entry.UserID, entry.SelectedTags)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.DatabaseError
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existingID string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM entries WHERE user_id = ? AND date = ? FOR UPDATE",
		entry.UserID, entry.Date).Scan(&existingID)
	if err == nil {
		err = apperr.EntryAlreadyExistsForDate
		return nil, apperr.EntryAlreadyExistsForDate
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.DatabaseError
	}

	e := Entry{
		ID:           utils.NewID(),
		UserID:       entry.UserID,
		Date:         entry.Date,
		CreatedAt:    utils.UnixMS(),
		Mood:         entry.Mood,
		Text:         entry.Text,
		SelectedTags: tagIDs,
	}
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO entries (id, user_id, date, created_at, mood, entry) VALUES (?,?,?,?,?,?)",
		e.ID, e.UserID, e.Date, e.CreatedAt, e.Mood, e.Text); err != nil {
		return nil, apperr.DatabaseError
	}
	for _, tagID := range tagIDs {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO entry_tags (id, entry_id, tag_id) VALUES (?,?,?)",
			utils.NewID(), e.ID, tagID); err != nil {
			return nil, apperr.DatabaseError
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, apperr.DatabaseError
	}
	return &e, nil
}

// Edit updates an entry in place. Moving to a date held by a different
// entry fails; keeping the current date succeeds. Tag links are replaced
// wholesale inside the transaction.
func (r *EntryRepo) Edit(ctx context.Context, entry EditEntry) (*Entry, error) {
	if err := validateEntryInput(entry.Date, entry.Mood, entry.Text); err != nil {
		return nil, err
	}

	tagIDs, err := r.resolveTags(ctx, entry.UserID, entry.SelectedTags)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.DatabaseError
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var createdAt int64
	err = tx.QueryRowContext(ctx,
		"SELECT created_at FROM entries WHERE id = ? AND user_id = ? FOR UPDATE",
		entry.ID, entry.UserID).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = apperr.EntryNotFound
			return nil, apperr.EntryNotFound
		}
		return nil, apperr.DatabaseError
	}

	var collidingID string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM entries WHERE user_id = ? AND date = ? FOR UPDATE",
		entry.UserID, entry.Date).Scan(&collidingID)
	if err == nil && collidingID != entry.ID {
		err = apperr.EntryAlreadyExistsForDate
		return nil, apperr.EntryAlreadyExistsForDate
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.DatabaseError
	}
	err = nil

	if _, err = tx.ExecContext(ctx,
		"UPDATE entries SET date = ?, mood = ?, entry = ? WHERE id = ? AND user_id = ?",
		entry.Date, entry.Mood, entry.Text, entry.ID, entry.UserID); err != nil {
		return nil, apperr.DatabaseError
	}
	if _, err = tx.ExecContext(ctx,
		"DELETE FROM entry_tags WHERE entry_id = ?",
		entry.ID); err != nil {
		return nil, apperr.DatabaseError
	}
	for _, tagID := range tagIDs {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO entry_tags (id, entry_id, tag_id) VALUES (?,?,?)",
			utils.NewID(), entry.ID, tagID); err != nil {
			return nil, apperr.DatabaseError
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, apperr.DatabaseError
	}

	return &Entry{
		ID:           entry.ID,
		UserID:       entry.UserID,
		Date:         entry.Date,
		CreatedAt:    createdAt,
		Mood:         entry.Mood,
		Text:         entry.Text,
		SelectedTags: tagIDs,
	}, nil
}

// GetWithTags fetches a single entry with its resolved tag ids.
func (r *EntryRepo) GetWithTags(ctx context.Context, id, userID string) (*Entry, error) {
	var e Entry
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, DATE_FORMAT(date, '%Y-%m-%d'), created_at, mood, entry FROM entries WHERE id = ? AND user_id = ?",
		id, userID).Scan(&e.ID, &e.UserID, &e.Date, &e.CreatedAt, &e.Mood, &e.Text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.EntryNotFound
		}
		return nil, apperr.DatabaseError
	}

	tags, err := r.loadTagLinks(ctx, []string{e.ID})
	if err != nil {
		return nil, err
	}
	e.SelectedTags = tags[e.ID]
	if e.SelectedTags == nil {
		e.SelectedTags = []string{}
	}
	return &e, nil
}

// Delete detaches the entry's tag links and removes the entry row in one
// transaction. Returns whether the entry existed.
func (r *EntryRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
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
		 JOIN entries e ON e.id = et.entry_id
		 WHERE et.entry_id = ? AND e.user_id = ?`,
		id, userID); err != nil {
		return false, apperr.DatabaseError
	}

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		"DELETE FROM entries WHERE id = ? AND user_id = ?",
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
