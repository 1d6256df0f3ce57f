package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var activityColumns = []string{
	"id", "owner_id", "title", "status", "language", "difficulty", "topics",
	"metadata", "content", "created_at", "updated_at",
}

type activityRepo struct {
	db      *sql.DB
	dialect string
}

func (r *activityRepo) Create(ctx context.Context, rec *ActivityRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(ActivitiesTable.Name).
		Columns(activityColumns...).
		Values(
			rec.ID, rec.OwnerID, rec.Title, rec.Status, rec.Language, rec.Difficulty, rec.Topics,
			jsonText(rec.Metadata), jsonText(rec.Content), rec.CreatedAt, rec.UpdatedAt,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *activityRepo) Get(ctx context.Context, id string) (*ActivityRecord, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(activityColumns...).
		From(b.Table(ActivitiesTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	rec, err := scanActivity(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return rec, nil
}

func (r *activityRepo) List(ctx context.Context, f ActivityFilter) ([]ActivityRecord, error) {
	b := entsql.Dialect(r.dialect)
	sel := b.Select(activityColumns...).
		From(b.Table(ActivitiesTable.Name)).
		OrderBy(entsql.Desc("updated_at"), entsql.Asc("id"))

	var preds []*entsql.Predicate
	if f.OwnerID != "" {
		preds = append(preds, entsql.EQ("owner_id", f.OwnerID))
	}
	if f.Status != "" {
		preds = append(preds, entsql.EQ("status", f.Status))
	}
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	if f.Limit > 0 {
		sel = sel.Limit(f.Limit)
	}
	if f.Offset > 0 {
		sel = sel.Offset(f.Offset)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var out []ActivityRecord
	for rows.Next() {
		rec, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *activityRepo) Update(ctx context.Context, rec *ActivityRecord) error {
	rec.UpdatedAt = time.Now().UTC()

	query, args := entsql.Dialect(r.dialect).
		Update(ActivitiesTable.Name).
		Set("owner_id", rec.OwnerID).
		Set("title", rec.Title).
		Set("status", rec.Status).
		Set("language", rec.Language).
		Set("difficulty", rec.Difficulty).
		Set("topics", rec.Topics).
		Set("metadata", jsonText(rec.Metadata)).
		Set("content", jsonText(rec.Content)).
		Set("updated_at", rec.UpdatedAt).
		Where(entsql.EQ("id", rec.ID)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return expectOneRow(res)
}

func (r *activityRepo) Delete(ctx context.Context, id string) error {
	query, args := entsql.Dialect(r.dialect).
		Delete(ActivitiesTable.Name).
		Where(entsql.EQ("id", id)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// jsonText stores JSON as text so both SQLite and Postgres accept it.
func jsonText(raw []byte) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}

func scanActivity(row rowScanner) (*ActivityRecord, error) {
	var (
		rec               ActivityRecord
		metadata, content []byte
	)
	err := row.Scan(
		&rec.ID, &rec.OwnerID, &rec.Title, &rec.Status, &rec.Language, &rec.Difficulty, &rec.Topics,
		&metadata, &content, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Metadata = metadata
	rec.Content = content
	return &rec, nil
}
