package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Document is an admin-procedure source document going through ingestion.
// DocName is the human-readable title embedded into every chunk as a
// "Tài liệu: X" header so answers can cite their source.
type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	DocName     string         `json:"doc_name"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
