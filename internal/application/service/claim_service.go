package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/insurdesk/claims-desk/internal/application/port"
	"github.com/insurdesk/claims-desk/internal/domain/checklist"
	"github.com/insurdesk/claims-desk/internal/domain/completeness"
	"github.com/insurdesk/claims-desk/internal/domain/entity"
	"github.com/insurdesk/claims-desk/internal/domain/event"
	"github.com/insurdesk/claims-desk/internal/domain/workflow"
	"github.com/insurdesk/claims-desk/pkg/utils"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ClaimService manages claim intake, evidence, completeness and status
type ClaimService interface {
	Catalog() *checklist.Catalog

	SubmitClaim(ctx context.Context, req SubmitClaimRequest) (*entity.Claim, error)
	GetClaim(ctx context.Context, id int64) (*entity.Claim, error)
	ListClaims(ctx context.Context, filter port.ClaimFilter) (*ClaimPage, error)

	AttachEvidence(ctx context.Context, id int64, files []entity.UploadedFile, actor string) (*entity.Claim, error)
	RemoveEvidence(ctx context.Context, id, evidenceID int64, actor string) error
	OpenEvidence(ctx context.Context, evidenceID int64) (*entity.Evidence, []byte, error)

	Completeness(ctx context.Context, id int64) (*ChecklistView, error)
	ExportChecklist(ctx context.Context, id int64, format string) (*ExportResult, error)

	Approve(ctx context.Context, id int64, actor string) (*entity.Claim, error)
	Reject(ctx context.Context, id int64, actor, reason string) (*entity.Claim, error)
	Advance(ctx context.Context, id int64, actor string) (*entity.Claim, error)
	UpdateStatus(ctx context.Context, id int64, status, actor string) (*entity.Claim, error)
	History(ctx context.Context, id int64) ([]*entity.ClaimEvent, error)
}

// SubmitClaimRequest carries a new claim and its initial documents
type SubmitClaimRequest struct {
	ClaimID      string
	CustomerName string
	Policy       string
	Amount       float64
	ClaimDate    time.Time
	Notes        string
	ClaimType    entity.ClaimType
	Actor        string
	Files        []entity.UploadedFile
}

// ClaimPage is one page of a claim listing
type ClaimPage struct {
	Claims []*entity.Claim `json:"claims"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// ChecklistView is a completeness report plus whether approval would pass
type ChecklistView struct {
	*completeness.Report
	Status     workflow.State `json:"status"`
	CanApprove bool           `json:"can_approve"`
}

// ExportResult is a rendered checklist ready for download
type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

func (r *ExportResult) clone() *ExportResult {
	cp := *r
	cp.Content = bytes.Clone(r.Content)
	return &cp
}

// Config tunes ClaimService behaviour
type Config struct {
	// EnforceIntakeDocuments rejects submissions missing intake documents
	EnforceIntakeDocuments bool
	// MaxUploadBytes caps each uploaded file; 0 disables the check
	MaxUploadBytes int64
	// ExportCacheTTL is how long rendered exports are kept
	ExportCacheTTL time.Duration
}

// Dependencies groups the collaborators of ClaimService
type Dependencies struct {
	Claims    port.ClaimRepository
	Evidence  port.EvidenceRepository
	Events    port.EventRepository
	TxManager port.TransactionManager
	Storage   port.EvidenceStorage
	Inspector port.DocumentInspector
	Exporters port.ExporterRegistry
	Evaluator *completeness.Evaluator
	Metrics   Metrics
	Logger    Logger
}

type claimServiceImpl struct {
	claims    port.ClaimRepository
	evidence  port.EvidenceRepository
	events    port.EventRepository
	txManager port.TransactionManager
	storage   port.EvidenceStorage
	inspector port.DocumentInspector
	exporters port.ExporterRegistry
	evaluator *completeness.Evaluator
	metrics   Metrics
	logger    Logger

	cfg         Config
	exportCache *cache.Cache
	now         func() time.Time
}

// NewClaimService creates a new ClaimService
func NewClaimService(deps Dependencies, cfg Config) ClaimService {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	ttl := cfg.ExportCacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &claimServiceImpl{
		claims:      deps.Claims,
		evidence:    deps.Evidence,
		events:      deps.Events,
		txManager:   deps.TxManager,
		storage:     deps.Storage,
		inspector:   deps.Inspector,
		exporters:   deps.Exporters,
		evaluator:   deps.Evaluator,
		metrics:     metrics,
		logger:      deps.Logger,
		cfg:         cfg,
		exportCache: cache.New(ttl, 2*ttl),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Catalog returns the checklist catalog in use
func (s *claimServiceImpl) Catalog() *checklist.Catalog {
	return s.evaluator.Catalog()
}

// SubmitClaim validates and registers a new claim with its documents
func (s *claimServiceImpl) SubmitClaim(ctx context.Context, req SubmitClaimRequest) (*entity.Claim, error) {
	req.Files = normalizeFiles(req.Files)
	if err := s.validateSubmission(req); err != nil {
		return nil, err
	}

	if _, err := s.claims.GetByClaimID(ctx, req.ClaimID); err == nil {
		return nil, fmt.Errorf("claim %s: %w", req.ClaimID, ErrDuplicateClaim)
	} else if !errors.Is(err, port.ErrNotFound) {
		return nil, fmt.Errorf("check claim id: %w", err)
	}

	docs, err := s.inspectFiles(ctx, req.Files)
	if err != nil {
		return nil, err
	}

	actor := actorOrDefault(req.Actor)
	claim := &entity.Claim{
		ClaimID:      strings.TrimSpace(req.ClaimID),
		CustomerName: utils.SanitizeString(req.CustomerName),
		Policy:       strings.TrimSpace(req.Policy),
		Amount:       req.Amount,
		ClaimDate:    req.ClaimDate,
		Notes:        utils.SanitizeString(req.Notes),
		ClaimType:    req.ClaimType,
		Status:       workflow.StateSubmitted,
	}

	var stored []string
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claims.Create(txCtx, claim); err != nil {
			if errors.Is(err, port.ErrDuplicate) {
				return fmt.Errorf("claim %s: %w", claim.ClaimID, ErrDuplicateClaim)
			}
			return fmt.Errorf("create claim: %w", err)
		}

		evidence, keys, err := s.storeEvidence(txCtx, claim, docs)
		stored = append(stored, keys...)
		if err != nil {
			return err
		}
		claim.Evidence = evidence

		ev := event.NewEvent(event.TypeClaimSubmitted, claim.ID, claim.ClaimID, map[string]interface{}{
			event.KeyNewStatus: claim.Status.String(),
			event.KeyActor:     actor,
			"claim_type":       claim.ClaimType.String(),
			"documents":        len(evidence),
		})
		return s.recordEvent(txCtx, ev)
	})
	if err != nil {
		s.discardObjects(ctx, stored)
		s.logger.Error("Failed to submit claim", "error", err, "claim_id", req.ClaimID)
		return nil, err
	}

	s.metrics.IncrementSubmitted(claim.ClaimType.String())
	s.logger.Info("Claim submitted", "id", claim.ID, "claim_id", claim.ClaimID, "claim_type", claim.ClaimType, "documents", len(claim.Evidence))
	return claim, nil
}

func (s *claimServiceImpl) validateSubmission(req SubmitClaimRequest) error {
	verr := &ValidationError{}

	required := []struct{ name, value string }{
		{"claimId", req.ClaimID},
		{"customerName", req.CustomerName},
		{"policy", req.Policy},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			verr.add(f.name + " is required")
		}
	}
	if id := strings.TrimSpace(req.ClaimID); id != "" {
		if err := utils.ValidateClaimID(id); err != nil {
			verr.add(err.Error())
		}
	}
	if err := utils.ValidateAmount(req.Amount); err != nil {
		verr.add(err.Error())
	}
	if req.ClaimDate.IsZero() {
		verr.add("claimDate is required")
	}
	if !req.ClaimType.IsValid() {
		verr.add(fmt.Sprintf("claimType %q is not supported", req.ClaimType))
	}
	if err := s.validateFiles(verr, req.Files); err != nil {
		return err
	}

	if verr.orNil() != nil {
		return verr
	}

	if s.cfg.EnforceIntakeDocuments {
		missing, err := s.evaluator.MissingIntake(req.ClaimType, fileNames(req.Files))
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			verr.add("missing required documents: " + strings.Join(missing, ", "))
			verr.MissingDocuments = missing
		}
	}
	return verr.orNil()
}

// GetClaim returns a claim with its evidence
func (s *claimServiceImpl) GetClaim(ctx context.Context, id int64) (*entity.Claim, error) {
	claim, err := s.claims.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.loadEvidence(ctx, claim); err != nil {
		s.logger.Error("Failed to load evidence", "error", err, "id", id)
		return nil, err
	}
	return claim, nil
}

// ListClaims returns one page of claims matching filter
func (s *claimServiceImpl) ListClaims(ctx context.Context, filter port.ClaimFilter) (*ClaimPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("status %q is not a claim status", filter.Status)}}
	}

	claims, err := s.claims.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list claims", "error", err)
		return nil, err
	}
	total, err := s.claims.Count(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to count claims", "error", err)
		return nil, err
	}

	for _, c := range claims {
		if err := s.loadEvidence(ctx, c); err != nil {
			return nil, err
		}
	}
	if claims == nil {
		claims = []*entity.Claim{}
	}

	return &ClaimPage{Claims: claims, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// Completeness evaluates the claim against the catalog
func (s *claimServiceImpl) Completeness(ctx context.Context, id int64) (*ChecklistView, error) {
	started := time.Now()
	claim, err := s.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}

	report, err := s.evaluator.Evaluate(claim)
	if err != nil {
		s.logger.Error("Failed to evaluate claim", "error", err, "id", id)
		return nil, err
	}
	s.metrics.ObserveEvaluateLatency(time.Since(started))

	return &ChecklistView{
		Report:     report,
		Status:     claim.Status,
		CanApprove: s.evaluator.CanApprove(claim),
	}, nil
}

// ExportChecklist renders the checklist in format, reusing a cached
// rendering while the claim version is unchanged
func (s *claimServiceImpl) ExportChecklist(ctx context.Context, id int64, format string) (*ExportResult, error) {
	exporter, err := s.exporters.Get(format)
	if err != nil {
		return nil, err
	}

	claim, err := s.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%d:%d:%s", claim.ID, claim.Version, exporter.Format())
	if cached, ok := s.exportCache.Get(key); ok {
		s.metrics.IncrementExport(exporter.Format())
		return cached.(*ExportResult).clone(), nil
	}

	doc, err := s.evaluator.RenderChecklistReport(claim)
	if err != nil {
		return nil, err
	}
	content, err := exporter.Export(doc)
	if err != nil {
		s.logger.Error("Failed to export checklist", "error", err, "id", id, "format", exporter.Format())
		return nil, fmt.Errorf("export checklist: %w", err)
	}

	result := &ExportResult{
		FileName:    doc.FileName(exporter.Format()),
		ContentType: exporter.ContentType(),
		Content:     content,
	}
	s.exportCache.Set(key, result, cache.DefaultExpiration)
	s.metrics.IncrementExport(exporter.Format())

	s.logger.Info("Checklist exported", "id", id, "format", exporter.Format(), "version", claim.Version)
	return result.clone(), nil
}

// History returns the claim's events, oldest first
func (s *claimServiceImpl) History(ctx context.Context, id int64) ([]*entity.ClaimEvent, error) {
	if _, err := s.claims.GetByID(ctx, id); err != nil {
		return nil, err
	}
	events, err := s.events.GetByClaimRef(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load history", "error", err, "id", id)
		return nil, err
	}
	if events == nil {
		events = []*entity.ClaimEvent{}
	}
	return events, nil
}

func (s *claimServiceImpl) loadEvidence(ctx context.Context, claim *entity.Claim) error {
	evidence, err := s.evidence.GetByClaimRef(ctx, claim.ID)
	if err != nil {
		return fmt.Errorf("load evidence: %w", err)
	}
	claim.Evidence = evidence
	return nil
}

func (s *claimServiceImpl) recordEvent(ctx context.Context, ev *event.Event) error {
	if err := s.events.Create(ctx, ev.ToClaimEvent()); err != nil {
		return fmt.Errorf("record %s event: %w", ev.Type, err)
	}
	return nil
}

// normalizeFiles strips whitespace and directories from upload names so
// intake checks and stored evidence see the same name
func normalizeFiles(files []entity.UploadedFile) []entity.UploadedFile {
	out := make([]entity.UploadedFile, len(files))
	for i, f := range files {
		out[i] = f
		if name := strings.TrimSpace(f.FileName); name != "" {
			out[i].FileName = filepath.Base(name)
		} else {
			out[i].FileName = ""
		}
	}
	return out
}

func fileNames(files []entity.UploadedFile) []string {
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.FileName)
	}
	return names
}
