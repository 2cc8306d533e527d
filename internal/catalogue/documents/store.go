package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const documentColumns = `
	document_id, document_ulid, title, description, file_path, original_name,
	content_type, size_bytes, uploaded_by, download_count, created_at, updated_at`

func (s *Store) Insert(ctx context.Context, m *Document) error {
	const q = `
	INSERT INTO documents
	(document_ulid, title, description, file_path, original_name, content_type, size_bytes, uploaded_by, download_count, created_at, updated_at)
	VALUES
	(?, ?, ?, ?, ?, ?, ?, ?, 0, NOW(6), NOW(6))`

	res, err := s.db.ExecContext(ctx, q,
		m.DocumentULID, m.Title, m.Description, m.FilePath, m.OriginalName,
		m.ContentType, m.SizeBytes, nullStrOrNil(m.UploadedBy),
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	m.DocumentID = id
	return nil
}

func (s *Store) GetByULID(ctx context.Context, documentULID string) (*Document, error) {
	q := `SELECT` + documentColumns + ` FROM documents WHERE document_ulid = ?`
	var m Document
	err := s.db.QueryRowContext(ctx, q, documentULID).Scan(
		&m.DocumentID, &m.DocumentULID, &m.Title, &m.Description, &m.FilePath, &m.OriginalName,
		&m.ContentType, &m.SizeBytes, &m.UploadedBy, &m.DownloadCount, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("document not found")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) List(ctx context.Context, p Page) ([]Document, int64, error) {
	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	q := `SELECT` + documentColumns + ` FROM documents` +
		fmt.Sprintf(` ORDER BY created_at %s LIMIT ? OFFSET ?`, order)

	rows, err := s.db.QueryContext(ctx, q, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var m Document
		if err := rows.Scan(
			&m.DocumentID, &m.DocumentULID, &m.Title, &m.Description, &m.FilePath, &m.OriginalName,
			&m.ContentType, &m.SizeBytes, &m.UploadedBy, &m.DownloadCount, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// IncrementDownloadCount is a single conditional update; concurrent
// downloads never lose a count.
func (s *Store) IncrementDownloadCount(ctx context.Context, documentID int64) error {
	const q = `UPDATE documents SET download_count = download_count + 1 WHERE document_id = ?`
	_, err := s.db.ExecContext(ctx, q, documentID)
	return err
}

func (s *Store) Update(ctx context.Context, documentULID string, in UpdateDocumentRequest) error {
	sets := []string{}
	args := []any{}
	if in.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *in.Title)
	}
	if in.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *in.Description)
	}
	if len(sets) == 0 {
		return ErrInvalid("no fields to update")
	}
	sets = append(sets, "updated_at = NOW(6)")

	q := `UPDATE documents SET ` + strings.Join(sets, ", ") + ` WHERE document_ulid = ?`
	args = append(args, documentULID)

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		if _, err := s.GetByULID(ctx, documentULID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, documentID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE document_id = ?`, documentID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotFound("document not found")
	}
	return nil
}

func nullStrOrNil(ns sql.NullString) any {
	if ns.Valid {
		return ns.String
	}
	return nil
}
