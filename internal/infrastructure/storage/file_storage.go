package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/insurdesk/claims-desk/internal/application/port"
	"go.uber.org/zap"
)

// ErrObjectNotFound is returned when a stored object does not exist
var ErrObjectNotFound = errors.New("stored object not found")

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)

// EvidenceStore keeps uploaded evidence on the local filesystem.
// Objects live under <baseDir>/<claim folder>/<uuid><ext>; the display name
// is never used as a path so two uploads with the same name cannot collide.
type EvidenceStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewEvidenceStore creates an EvidenceStore rooted at baseDir
func NewEvidenceStore(baseDir string, logger *zap.Logger) *EvidenceStore {
	return &EvidenceStore{
		baseDir: baseDir,
		logger:  logger,
	}
}

// NewKey returns a fresh storage key for a file uploaded to a claim
func (s *EvidenceStore) NewKey(claimID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if unsafeChars.MatchString(strings.TrimPrefix(ext, ".")) {
		ext = ""
	}
	return path.Join(SanitizeName(claimID), uuid.NewString()+ext)
}

// Save writes content to the relative path, creating parent directories
func (s *EvidenceStore) Save(ctx context.Context, relPath string, content []byte) error {
	fullPath := s.GetFullPath(relPath)
	if err := s.validatePath(fullPath); err != nil {
		return err
	}

	parentDir := filepath.Dir(fullPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		s.logger.Error("Failed to create parent directories",
			zap.String("path", parentDir),
			zap.Error(err))
		return fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Evidence saved",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))
	return nil
}

// Read returns the content stored at the relative path
func (s *EvidenceStore) Read(ctx context.Context, relPath string) ([]byte, error) {
	fullPath := s.GetFullPath(relPath)
	if err := s.validatePath(fullPath); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", relPath, ErrObjectNotFound)
	}
	if err != nil {
		s.logger.Error("Failed to read file",
			zap.String("path", fullPath),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

// Exists reports whether an object is stored at the relative path
func (s *EvidenceStore) Exists(ctx context.Context, relPath string) bool {
	fullPath := s.GetFullPath(relPath)
	if s.validatePath(fullPath) != nil {
		return false
	}
	_, err := os.Stat(fullPath)
	return err == nil
}

// Delete removes the object at the relative path. Missing objects are not
// an error.
func (s *EvidenceStore) Delete(ctx context.Context, relPath string) error {
	fullPath := s.GetFullPath(relPath)
	if err := s.validatePath(fullPath); err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Error("Failed to delete file",
			zap.String("path", fullPath),
			zap.Error(err))
		return fmt.Errorf("failed to delete file: %w", err)
	}

	s.logger.Debug("Evidence deleted", zap.String("path", fullPath))
	return nil
}

// GetFullPath converts a relative path to a full path
func (s *EvidenceStore) GetFullPath(relativePath string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(relativePath))
}

// validatePath checks that the path stays within baseDir
func (s *EvidenceStore) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}
	return nil
}

// SanitizeName returns a filesystem-safe version of name, keeping only
// alphanumerics, hyphens and underscores
func SanitizeName(name string) string {
	name = unsafeChars.ReplaceAllString(name, "_")
	if name == "" {
		return "_"
	}
	return name
}

// Verify interface compliance
var _ port.EvidenceStorage = (*EvidenceStore)(nil)
