package resumes

import (
	"context"
	"database/sql"
	"errors"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const selectResume = `
SELECT
    id,
    file_name,
    mime_type,
    size_bytes,
    COALESCE(storage_key, '') AS storage_key,
    text_content,
    content_hash,
    character_count,
    word_count,
    uploaded_at
FROM resumes`

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new resume.
func (r *PGRepo) Create(ctx context.Context, resume Resume) error {
	const query = `
INSERT INTO resumes (
    id,
    file_name,
    mime_type,
    size_bytes,
    storage_key,
    text_content,
    content_hash,
    character_count,
    word_count,
    uploaded_at
) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(ctx, query,
		resume.ID,
		resume.FileName,
		resume.MimeType,
		resume.SizeBytes,
		resume.StorageKey,
		resume.Text,
		resume.ContentHash,
		resume.CharacterCount,
		resume.WordCount,
		resume.UploadedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	return r.getOne(ctx, selectResume+` WHERE id = $1`, id)
}

func (r *PGRepo) GetByHash(ctx context.Context, contentHash string) (Resume, error) {
	return r.getOne(ctx, selectResume+` WHERE content_hash = $1`, contentHash)
}

// List returns resumes newest first.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Resume, error) {
	if offset < 0 {
		offset = 0
	}
	query := selectResume + ` ORDER BY uploaded_at DESC, id ASC OFFSET $1`
	args := []any{offset}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	resumes := []Resume{}
	if err := sqlscan.Select(ctx, r.DB, &resumes, query, args...); err != nil {
		return nil, err
	}
	return resumes, nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PGRepo) Stats(ctx context.Context) (Stats, error) {
	const query = `
SELECT
    COUNT(*) AS total,
    COALESCE(AVG(word_count), 0)::float8 AS average_word_count
FROM resumes`
	var stats Stats
	if err := sqlscan.Get(ctx, r.DB, &stats, query); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg string) (Resume, error) {
	var resume Resume
	if err := sqlscan.Get(ctx, r.DB, &resume, query, arg); err != nil {
		if sqlscan.NotFound(err) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return resume, nil
}

var _ Repo = (*PGRepo)(nil)
