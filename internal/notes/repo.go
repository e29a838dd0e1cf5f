package notes

import (
	"context"
	"errors"
	"time"

	"github.com/beleske/beleske/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the postgres backed notes contract implementation, used by
// the reference backend service.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const noteColumns = `id, title, content, tags, created_at, updated_at`

func scanNote(row pgx.Row) (*Note, error) {
	var note Note
	err := row.Scan(
		&note.ID, &note.Title, &note.Content,
		&note.Tags, &note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	return &note, nil
}

func (r *Repo) List(ctx context.Context, query string) (_ []Note, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "notesRepo.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT `+noteColumns+`
			FROM note
			WHERE $1 = ''
				OR title ILIKE '%' || $1 || '%'
				OR content ILIKE '%' || $1 || '%'
				OR EXISTS (
					SELECT 1 FROM unnest(tags) AS tag
					WHERE tag ILIKE '%' || $1 || '%'
				)
			ORDER BY updated_at DESC;`,
		query,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listed []Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		listed = append(listed, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return listed, nil
}

func (r *Repo) Get(ctx context.Context, id string) (_ *Note, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "notesRepo.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	note, err := scanNote(r.db.QueryRow(
		ctx,
		`SELECT `+noteColumns+` FROM note WHERE id = $1;`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (r *Repo) Create(ctx context.Context, input CreateNoteInput) (_ *Note, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "notesRepo.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	title := input.Title
	if title == "" {
		title = DefaultTitle
	}
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	now := time.Now()
	note := &Note{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   input.Content,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO note (id, title, content, tags, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6);`,
		note.ID, note.Title, note.Content, note.Tags, note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return note, nil
}

func (r *Repo) Update(ctx context.Context, id string, input UpdateNoteInput) (_ *Note, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "notesRepo.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	// nil inputs keep the stored values
	note, err := scanNote(r.db.QueryRow(
		ctx,
		`
			UPDATE note SET
				title = COALESCE($2, title),
				content = COALESCE($3, content),
				tags = COALESCE($4, tags),
				updated_at = $5
			WHERE id = $1
			RETURNING `+noteColumns+`;`,
		id, input.Title, input.Content, input.Tags, time.Now(),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "notesRepo.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	// idempotent: zero affected rows is fine
	_, err = r.db.Exec(ctx, `DELETE FROM note WHERE id = $1;`, id)
	return err
}
