package port

import (
	"context"
	"errors"

	"github.com/insurdesk/claims-desk/internal/domain/completeness"
)

// FileStorage defines file storage operations for evidence content
type FileStorage interface {
	Save(ctx context.Context, path string, content []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	Delete(ctx context.Context, path string) error
	GetFullPath(relativePath string) string
}

// EvidenceStorage is a FileStorage that also allocates object keys
type EvidenceStorage interface {
	FileStorage
	NewKey(claimID, fileName string) string
}

// DocumentInfo describes an inspected document
type DocumentInfo struct {
	MimeType  string
	PageCount int
}

// DocumentInspector validates uploaded content before it is stored
type DocumentInspector interface {
	Inspect(ctx context.Context, fileName string, content []byte) (*DocumentInfo, error)
}

// ExporterRegistry resolves checklist exporters by format name
type ExporterRegistry interface {
	Get(format string) (ChecklistExporter, error)
	Formats() []string
}

// ChecklistExporter renders a checklist document in one output format
type ChecklistExporter interface {
	Format() string
	ContentType() string
	Export(doc *completeness.ChecklistDocument) ([]byte, error)
}

var (
	// ErrUnreadableDocument is returned for content that claims to be a
	// document but cannot be opened
	ErrUnreadableDocument = errors.New("document is unreadable")
	// ErrUnsupportedDocument is returned for content types intake does not accept
	ErrUnsupportedDocument = errors.New("unsupported document type")
	// ErrUnsupportedFormat is returned for an export format with no exporter
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
