package entity

import "time"

// Evidence is one document submitted for a claim.
// Evidence is never mutated after creation; it is only added or removed.
type Evidence struct {
	ID          int64     `json:"id"`
	ClaimRef    int64     `json:"claim_ref"`
	DisplayName string    `json:"file_name"`
	StorageKey  string    `json:"-"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	PageCount   int       `json:"page_count,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// UploadedFile is raw file content received from a client
type UploadedFile struct {
	FileName string
	MimeType string
	Content  []byte
}
