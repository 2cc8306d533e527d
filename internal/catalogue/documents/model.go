package documents

import (
	"database/sql"
	"time"
)

// Document is one row of the documents table. Documents are not
// quantity-limited; download_count only ever grows.
type Document struct {
	DocumentID   int64
	DocumentULID string
	Title        string
	Description  string
	FilePath     string
	OriginalName string
	ContentType  string
	SizeBytes    int64
	UploadedBy   sql.NullString
	DownloadCount int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Page struct {
	Limit  int
	Offset int
	Order  string
}
