package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"golang.org/x/text/unicode/norm"
)

// ===== Error model =====

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		default:
			return 500
		}
	}
	return 500
}

// ===== Service =====

type Service struct {
	db        *sql.DB
	store     *Store
	uploadDir string
}

func NewService(db *sql.DB, uploadDir string) *Service {
	return &Service{db: db, store: NewStore(db), uploadDir: uploadDir}
}

type UploadInput struct {
	Title       string
	Description string
	UploadedBy  string
	FileHeader  *multipart.FileHeader
	// SaveFile persists the multipart file to dst (gin's SaveUploadedFile).
	SaveFile func(dst string) error
}

// Upload stores the file under a ULID name and records the document row.
// Titles and filenames arrive from browsers in mixed Unicode forms; both are
// normalized to NFC before they are persisted.
func (s *Service) Upload(ctx context.Context, in UploadInput) (DocumentResponse, error) {
	title := norm.NFC.String(strings.TrimSpace(in.Title))
	if title == "" {
		return DocumentResponse{}, ErrInvalid("title is required")
	}
	if in.FileHeader == nil {
		return DocumentResponse{}, ErrInvalid("file is required")
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return DocumentResponse{}, err
	}

	originalName := norm.NFC.String(filepath.Base(in.FileHeader.Filename))
	ext := strings.ToLower(filepath.Ext(originalName))

	contentType := in.FileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := ulid.Make().String()
	dst := filepath.Join(s.uploadDir, id+ext)
	if err := in.SaveFile(dst); err != nil {
		return DocumentResponse{}, err
	}

	m := &Document{
		DocumentULID: id,
		Title:        title,
		Description:  in.Description,
		FilePath:     dst,
		OriginalName: originalName,
		ContentType:  contentType,
		SizeBytes:    in.FileHeader.Size,
	}
	if in.UploadedBy != "" {
		m.UploadedBy = sql.NullString{String: in.UploadedBy, Valid: true}
	}

	if err := s.store.Insert(ctx, m); err != nil {
		// Keep the FS consistent with the DB when the insert fails.
		if rmErr := os.Remove(dst); rmErr != nil {
			log.Printf("[WARN] failed to remove orphan upload %s: %v", dst, rmErr)
		}
		return DocumentResponse{}, err
	}

	out, err := s.store.GetByULID(ctx, id)
	if err != nil {
		return DocumentResponse{}, err
	}
	return buildDocumentResponse(out), nil
}

func (s *Service) GetDocument(ctx context.Context, documentULID string) (DocumentResponse, error) {
	m, err := s.store.GetByULID(ctx, documentULID)
	if err != nil {
		return DocumentResponse{}, err
	}
	return buildDocumentResponse(m), nil
}

func (s *Service) ListDocuments(ctx context.Context, p Page) ([]DocumentResponse, int64, error) {
	ms, total, err := s.store.List(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	out := make([]DocumentResponse, 0, len(ms))
	for i := range ms {
		out = append(out, buildDocumentResponse(&ms[i]))
	}
	return out, total, nil
}

// PrepareDownload bumps the download counter and returns what the handler
// needs to stream the file.
func (s *Service) PrepareDownload(ctx context.Context, documentULID string) (*Document, error) {
	m, err := s.store.GetByULID(ctx, documentULID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(m.FilePath); err != nil {
		return nil, ErrNotFound("file not found on server")
	}
	if err := s.store.IncrementDownloadCount(ctx, m.DocumentID); err != nil {
		return nil, err
	}
	m.DownloadCount++
	return m, nil
}

func (s *Service) UpdateDocument(ctx context.Context, documentULID string, in UpdateDocumentRequest) (DocumentResponse, error) {
	if in.Title != nil {
		t := norm.NFC.String(strings.TrimSpace(*in.Title))
		if t == "" {
			return DocumentResponse{}, ErrInvalid("title cannot be empty")
		}
		in.Title = &t
	}

	if err := s.store.Update(ctx, documentULID, in); err != nil {
		return DocumentResponse{}, err
	}
	m, err := s.store.GetByULID(ctx, documentULID)
	if err != nil {
		return DocumentResponse{}, err
	}
	return buildDocumentResponse(m), nil
}

func (s *Service) DeleteDocument(ctx context.Context, documentULID string) error {
	m, err := s.store.GetByULID(ctx, documentULID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, m.DocumentID); err != nil {
		return err
	}
	if err := os.Remove(m.FilePath); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] failed to remove file %s: %v", m.FilePath, err)
	}
	return nil
}
