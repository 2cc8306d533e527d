package documents

import "time"

// Metadata updates; the file itself is immutable after upload.
type UpdateDocumentRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

type DocumentResponse struct {
	DocumentID    int64     `json:"document_id"`
	DocumentULID  string    `json:"document_ulid"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	OriginalName  string    `json:"original_name"`
	ContentType   string    `json:"content_type"`
	SizeBytes     int64     `json:"size_bytes"`
	UploadedBy    *string   `json:"uploaded_by,omitempty"`
	DownloadCount int64     `json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func buildDocumentResponse(m *Document) DocumentResponse {
	resp := DocumentResponse{
		DocumentID:    m.DocumentID,
		DocumentULID:  m.DocumentULID,
		Title:         m.Title,
		Description:   m.Description,
		OriginalName:  m.OriginalName,
		ContentType:   m.ContentType,
		SizeBytes:     m.SizeBytes,
		DownloadCount: m.DownloadCount,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.UploadedBy.Valid {
		val := m.UploadedBy.String
		resp.UploadedBy = &val
	}
	return resp
}
