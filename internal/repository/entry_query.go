package repository

import (
	"context"
	"strings"

	"github.com/alexampersandria/ephemeride/internal/apperr"
)

// defaultEntryLimit is roughly one month of daily entries.
const defaultEntryLimit = 31

// EntryOrder selects result ordering for entry queries. Mood orders use
// date as a tiebreaker in the same direction.
type EntryOrder string

const (
	OrderDateAsc  EntryOrder = "date_asc"
	OrderDateDesc EntryOrder = "date_desc"
	OrderMoodAsc  EntryOrder = "mood_asc"
	OrderMoodDesc EntryOrder = "mood_desc"
)

// EntryQuery is the filter set for Query. Zero values mean "no filter";
// a nil Limit falls back to the default page size while an explicit 0
// removes the cap entirely. Tags select entries carrying ALL listed tags.
type EntryQuery struct {
	FromDate string
	ToDate   string
	FromMood *int
	ToMood   *int
	Tags     []string
	Order    EntryOrder
	Limit    *int
	Offset   int
}

// Pagination echoes the effective paging parameters back to the caller
// alongside the total match count across all pages.
type Pagination struct {
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalCount int64 `json:"total_count"`
}

// PaginatedEntries is the envelope for a page of entries.
type PaginatedEntries struct {
	Data       []Entry    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// dedupe drops repeated ids, keeping first-seen order. A repeated tag in
// the filter must not inflate the distinct-count the superset predicate
// compares against.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// orderClause maps an order to its ORDER BY. Unrecognized values coerce
// to the date-descending default, the same leniency as tag colors.
func orderClause(order EntryOrder) string {
	switch order {
	case OrderDateAsc:
		return "date ASC"
	case OrderMoodAsc:
		return "mood ASC, date ASC"
	case OrderMoodDesc:
		return "mood DESC, date DESC"
	default:
		return "date DESC"
	}
}

// Query runs the filtered, ordered, paginated entry search. The total
// match count rides along on every row via a window function so a single
// round trip serves both the page and the count; an empty page reports a
// total of zero.
func (r *EntryRepo) Query(ctx context.Context, userID string, q EntryQuery) (*PaginatedEntries, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}

	if q.FromDate != "" {
		if err := parseEntryDate(q.FromDate); err != nil {
			return nil, err
		}
		where = append(where, "date >= ?")
		args = append(args, q.FromDate)
	}
	if q.ToDate != "" {
		if err := parseEntryDate(q.ToDate); err != nil {
			return nil, err
		}
		where = append(where, "date <= ?")
		args = append(args, q.ToDate)
	}
	if q.FromMood != nil {
		where = append(where, "mood >= ?")
		args = append(args, *q.FromMood)
	}
	if q.ToMood != nil {
		where = append(where, "mood <= ?")
		args = append(args, *q.ToMood)
	}
	if tags := dedupe(q.Tags); len(tags) > 0 {
		where = append(where,
			`id IN (SELECT entry_id FROM entry_tags WHERE tag_id IN (`+placeholders(len(tags))+`)
			 GROUP BY entry_id HAVING COUNT(DISTINCT tag_id) = ?)`)
		for _, tagID := range tags {
			args = append(args, tagID)
		}
		args = append(args, len(tags))
	}

	order := orderClause(q.Order)

	limit := defaultEntryLimit
	if q.Limit != nil {
		if *q.Limit < 0 {
			return nil, apperr.BadRequest
		}
		limit = *q.Limit
	}
	offset := q.Offset
	if offset < 0 {
		return nil, apperr.BadRequest
	}

	query := "SELECT id, user_id, DATE_FORMAT(date, '%Y-%m-%d'), created_at, mood, entry, COUNT(*) OVER() FROM entries WHERE " +
		strings.Join(where, " AND ") + " ORDER BY " + order
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	} else if offset > 0 {
		// MySQL has no OFFSET without LIMIT.
		query += " LIMIT 18446744073709551615 OFFSET ?"
		args = append(args, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.DatabaseError
	}
	defer rows.Close()

	entries := []Entry{}
	var total int64
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.CreatedAt, &e.Mood, &e.Text, &total); err != nil {
			return nil, apperr.DatabaseError
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.DatabaseError
	}

	if err := r.attachTags(ctx, entries); err != nil {
		return nil, err
	}

	return &PaginatedEntries{
		Data: entries,
		Pagination: Pagination{
			Limit:      limit,
			Offset:     offset,
			TotalCount: total,
		},
	}, nil
}

// Range returns every entry between two dates inclusive, oldest first,
// with tags attached. No paging; callers asking for a range get the whole
// range.
func (r *EntryRepo) Range(ctx context.Context, userID, fromDate, toDate string) ([]Entry, error) {
	if err := parseEntryDate(fromDate); err != nil {
		return nil, err
	}
	if err := parseEntryDate(toDate); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, DATE_FORMAT(date, '%Y-%m-%d'), created_at, mood, entry FROM entries WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date ASC",
		userID, fromDate, toDate)
	if err != nil {
		return nil, apperr.DatabaseError
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.CreatedAt, &e.Mood, &e.Text); err != nil {
			return nil, apperr.DatabaseError
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.DatabaseError
	}

	if err := r.attachTags(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// loadTagLinks maps entry id to its tag ids for a batch of entries.
func (r *EntryRepo) loadTagLinks(ctx context.Context, entryIDs []string) (map[string][]string, error) {
	links := map[string][]string{}
	if len(entryIDs) == 0 {
		return links, nil
	}

	args := make([]any, 0, len(entryIDs))
	for _, id := range entryIDs {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT entry_id, tag_id FROM entry_tags WHERE entry_id IN ("+placeholders(len(entryIDs))+")",
		args...)
	if err != nil {
		return nil, apperr.DatabaseError
	}
	defer rows.Close()

	for rows.Next() {
		var entryID, tagID string
		if err := rows.Scan(&entryID, &tagID); err != nil {
			return nil, apperr.DatabaseError
		}
		links[entryID] = append(links[entryID], tagID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.DatabaseError
	}
	return links, nil
}

func (r *EntryRepo) attachTags(ctx context.Context, entries []Entry) error {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	links, err := r.loadTagLinks(ctx, ids)
	if err != nil {
		return err
	}
	for i := range entries {
		entries[i].SelectedTags = links[entries[i].ID]
		if entries[i].SelectedTags == nil {
			entries[i].SelectedTags = []string{}
		}
	}
	return nil
}
