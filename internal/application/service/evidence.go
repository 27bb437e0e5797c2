package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/insurdesk/claims-desk/internal/application/port"
	"github.com/insurdesk/claims-desk/internal/domain/entity"
	"github.com/insurdesk/claims-desk/internal/domain/event"
	"golang.org/x/sync/errgroup"
)

const maxParallelInspections = 4

// inspectedFile is an upload that passed inspection
type inspectedFile struct {
	file entity.UploadedFile
	info *port.DocumentInfo
}

// AttachEvidence stores additional documents on an open claim
func (s *claimServiceImpl) AttachEvidence(ctx context.Context, id int64, files []entity.UploadedFile, actor string) (*entity.Claim, error) {
	claim, err := s.claims.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if claim.Status.IsTerminal() {
		return nil, fmt.Errorf("claim %s is %s: %w", claim.ClaimID, claim.Status, ErrClaimClosed)
	}

	files = normalizeFiles(files)
	verr := &ValidationError{}
	if len(files) == 0 {
		verr.add("at least one file is required")
	}
	if err := s.validateFiles(verr, files); err != nil {
		return nil, err
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	docs, err := s.inspectFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	actor = actorOrDefault(actor)
	var stored []string
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		// A status change since the read above fails here, before any write.
		if err := s.claims.BumpVersion(txCtx, claim.ID, claim.Version); err != nil {
			return err
		}

		evidence, keys, err := s.storeEvidence(txCtx, claim, docs)
		stored = append(stored, keys...)
		if err != nil {
			return err
		}

		for _, e := range evidence {
			ev := event.NewEvent(event.TypeEvidenceAttached, claim.ID, claim.ClaimID, map[string]interface{}{
				event.KeyActor: actor,
				"evidence_id":  e.ID,
				"file_name":    e.DisplayName,
			})
			if err := s.recordEvent(txCtx, ev); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.discardObjects(ctx, stored)
		s.logger.Error("Failed to attach evidence", "error", err, "id", id)
		return nil, err
	}

	s.logger.Info("Evidence attached", "id", id, "claim_id", claim.ClaimID, "files", len(docs))
	return s.GetClaim(ctx, id)
}

// RemoveEvidence deletes one document from an open claim
func (s *claimServiceImpl) RemoveEvidence(ctx context.Context, id, evidenceID int64, actor string) error {
	claim, err := s.claims.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if claim.Status.IsTerminal() {
		return fmt.Errorf("claim %s is %s: %w", claim.ClaimID, claim.Status, ErrClaimClosed)
	}

	evidence, err := s.evidence.GetByID(ctx, evidenceID)
	if err != nil {
		return err
	}
	if evidence.ClaimRef != claim.ID {
		return fmt.Errorf("evidence %d on claim %d: %w", evidenceID, id, port.ErrNotFound)
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claims.BumpVersion(txCtx, claim.ID, claim.Version); err != nil {
			return err
		}
		if err := s.evidence.Delete(txCtx, evidenceID); err != nil {
			return err
		}
		ev := event.NewEvent(event.TypeEvidenceRemoved, claim.ID, claim.ClaimID, map[string]interface{}{
			event.KeyActor: actorOrDefault(actor),
			"evidence_id":  evidenceID,
			"file_name":    evidence.DisplayName,
		})
		return s.recordEvent(txCtx, ev)
	})
	if err != nil {
		s.logger.Error("Failed to remove evidence", "error", err, "id", id, "evidence_id", evidenceID)
		return err
	}

	// The row is gone; a leftover object is only wasted space.
	s.discardObjects(ctx, []string{evidence.StorageKey})
	s.logger.Info("Evidence removed", "id", id, "evidence_id", evidenceID)
	return nil
}

// OpenEvidence returns an evidence record with its stored content
func (s *claimServiceImpl) OpenEvidence(ctx context.Context, evidenceID int64) (*entity.Evidence, []byte, error) {
	evidence, err := s.evidence.GetByID(ctx, evidenceID)
	if err != nil {
		return nil, nil, err
	}

	content, err := s.storage.Read(ctx, evidence.StorageKey)
	if err != nil {
		s.logger.Error("Failed to read evidence", "error", err, "evidence_id", evidenceID)
		return nil, nil, fmt.Errorf("evidence %d content: %w", evidenceID, port.ErrNotFound)
	}
	return evidence, content, nil
}

// validateFiles adds per-file problems to verr and returns ErrUploadTooLarge
// for oversized files
func (s *claimServiceImpl) validateFiles(verr *ValidationError, files []entity.UploadedFile) error {
	for i, f := range files {
		name := f.FileName
		if name == "" {
			verr.add(fmt.Sprintf("file %d has no name", i+1))
			continue
		}
		if len(f.Content) == 0 {
			verr.add(fmt.Sprintf("file %s is empty", name))
			continue
		}
		if s.cfg.MaxUploadBytes > 0 && int64(len(f.Content)) > s.cfg.MaxUploadBytes {
			return fmt.Errorf("file %s is %d bytes, limit %d: %w", name, len(f.Content), s.cfg.MaxUploadBytes, ErrUploadTooLarge)
		}
	}
	return nil
}

// inspectFiles checks every upload before anything is written. Files are
// inspected concurrently; results keep the upload order.
func (s *claimServiceImpl) inspectFiles(ctx context.Context, files []entity.UploadedFile) ([]inspectedFile, error) {
	docs := make([]inspectedFile, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelInspections)
	for i, f := range files {
		g.Go(func() error {
			info, err := s.inspector.Inspect(gctx, f.FileName, f.Content)
			if err != nil {
				if errors.Is(err, port.ErrUnsupportedDocument) || errors.Is(err, port.ErrUnreadableDocument) {
					return &ValidationError{Problems: []string{err.Error()}}
				}
				return fmt.Errorf("inspect %s: %w", f.FileName, err)
			}
			docs[i] = inspectedFile{file: f, info: info}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// storeEvidence saves content and evidence rows. It returns the keys it
// wrote so the caller can discard them if the transaction fails.
func (s *claimServiceImpl) storeEvidence(ctx context.Context, claim *entity.Claim, docs []inspectedFile) ([]entity.Evidence, []string, error) {
	evidence := make([]entity.Evidence, 0, len(docs))
	keys := make([]string, 0, len(docs))

	for _, d := range docs {
		key := s.storage.NewKey(claim.ClaimID, d.file.FileName)
		if err := s.storage.Save(ctx, key, d.file.Content); err != nil {
			return nil, keys, fmt.Errorf("store %s: %w", d.file.FileName, err)
		}
		keys = append(keys, key)

		e := entity.Evidence{
			ClaimRef:    claim.ID,
			DisplayName: d.file.FileName,
			StorageKey:  key,
			MimeType:    d.info.MimeType,
			Size:        int64(len(d.file.Content)),
			PageCount:   d.info.PageCount,
		}
		if err := s.evidence.Create(ctx, &e); err != nil {
			return nil, keys, fmt.Errorf("create evidence %s: %w", d.file.FileName, err)
		}
		evidence = append(evidence, e)
	}
	return evidence, keys, nil
}

func (s *claimServiceImpl) discardObjects(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Error("Failed to discard stored evidence", "error", err, "key", key)
		}
	}
}
