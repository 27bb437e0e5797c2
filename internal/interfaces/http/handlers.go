package http

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/insurdesk/claims-desk/internal/application/port"
	"github.com/insurdesk/claims-desk/internal/application/service"
	"github.com/insurdesk/claims-desk/internal/domain/checklist"
	"github.com/insurdesk/claims-desk/internal/domain/entity"
	"github.com/insurdesk/claims-desk/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	claimService   service.ClaimService
	health         HealthFunc
	maxUploadBytes int64
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(claimService service.ClaimService, health HealthFunc, maxUploadBytes int64, logger Logger) *Handlers {
	return &Handlers{
		claimService:   claimService,
		health:         health,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status         string `json:"status"`
	Timestamp      string `json:"timestamp"`
	CatalogVersion string `json:"catalog_version"`
	Error          string `json:"error,omitempty"`
}

// CatalogResponse lists every checklist of the active catalog
type CatalogResponse struct {
	Version    string                `json:"version"`
	Checklists []checklist.Checklist `json:"checklists"`
}

// StatusRequest is the body of PUT /api/claims/:id/status
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
	Actor  string `json:"actor"`
}

// ActorRequest is the body of approve and advance
type ActorRequest struct {
	Actor string `json:"actor"`
}

// RejectRequest is the body of reject
type RejectRequest struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason"`
}

// ListClaimsRequest represents query parameters for listing claims
type ListClaimsRequest struct {
	ClaimID      string `form:"claimId"`
	CustomerName string `form:"customerName"`
	Status       string `form:"status"`
	Limit        int    `form:"limit"`
	Offset       int    `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:         "healthy",
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		CatalogVersion: h.claimService.Catalog().Version(),
	}

	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			response.Status = "unhealthy"
			response.Error = err.Error()
			c.JSON(http.StatusServiceUnavailable, Response{Success: false, Data: response, Error: "unhealthy"})
			return
		}
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: response})
}

// GetCatalog handles GET /api/catalog
func (h *Handlers) GetCatalog(c *gin.Context) {
	catalog := h.claimService.Catalog()
	response := CatalogResponse{Version: catalog.Version()}
	for _, t := range catalog.ClaimTypes() {
		cl, _ := catalog.Checklist(t)
		response.Checklists = append(response.Checklists, cl)
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: response})
}

// SubmitClaim handles POST /api/claims/upload
func (h *Handlers) SubmitClaim(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.badRequest(c, "expected multipart form data")
		return
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(c.PostForm("claimAmount")), 64)
	if err != nil {
		h.badRequest(c, "claimAmount must be a number")
		return
	}
	claimDate, err := parseDate(c.PostForm("claimDate"))
	if err != nil {
		h.badRequest(c, "claimDate must be YYYY-MM-DD")
		return
	}
	claimType, err := entity.ParseClaimType(c.PostForm("claimType"))
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	files, err := h.readFiles(form.File["files"])
	if err != nil {
		h.writeError(c, err)
		return
	}

	claim, err := h.claimService.SubmitClaim(c.Request.Context(), service.SubmitClaimRequest{
		ClaimID:      c.PostForm("claimId"),
		CustomerName: c.PostForm("customerName"),
		Policy:       c.PostForm("policy"),
		Amount:       amount,
		ClaimDate:    claimDate,
		Notes:        c.PostForm("notes"),
		ClaimType:    claimType,
		Actor:        c.PostForm("actor"),
		Files:        files,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: claim})
}

// ListClaims handles GET /api/claims and GET /api/claims/search
func (h *Handlers) ListClaims(c *gin.Context) {
	var req ListClaimsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		h.badRequest(c, "invalid query parameters")
		return
	}

	page, err := h.claimService.ListClaims(c.Request.Context(), port.ClaimFilter{
		ClaimID:      strings.TrimSpace(req.ClaimID),
		CustomerName: strings.TrimSpace(req.CustomerName),
		Status:       workflow.State(strings.TrimSpace(req.Status)),
		Limit:        req.Limit,
		Offset:       req.Offset,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: page})
}

// GetClaim handles GET /api/claims/:id
func (h *Handlers) GetClaim(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	claim, err := h.claimService.GetClaim(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// GetChecklist handles GET /api/claims/:id/checklist
func (h *Handlers) GetChecklist(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.claimService.Completeness(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// ExportChecklist handles GET /api/claims/:id/checklist/export
func (h *Handlers) ExportChecklist(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.claimService.ExportChecklist(c.Request.Context(), id, c.DefaultQuery("format", "pdf"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", contentDisposition("attachment", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// GetHistory handles GET /api/claims/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	events, err := h.claimService.History(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: events})
}

// AttachDocuments handles POST /api/claims/:id/documents
func (h *Handlers) AttachDocuments(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		h.badRequest(c, "expected multipart form data")
		return
	}
	files, err := h.readFiles(form.File["files"])
	if err != nil {
		h.writeError(c, err)
		return
	}

	claim, err := h.claimService.AttachEvidence(c.Request.Context(), id, files, c.PostForm("actor"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// RemoveDocument handles DELETE /api/claims/:id/documents/:docId
func (h *Handlers) RemoveDocument(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	docID, ok := h.pathID(c, "docId")
	if !ok {
		return
	}

	if err := h.claimService.RemoveEvidence(c.Request.Context(), id, docID, c.Query("actor")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// UpdateStatus handles PUT /api/claims/:id/status
func (h *Handlers) UpdateStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "status is required")
		return
	}

	claim, err := h.claimService.UpdateStatus(c.Request.Context(), id, req.Status, req.Actor)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// Approve handles POST /api/claims/:id/approve
func (h *Handlers) Approve(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req ActorRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	claim, err := h.claimService.Approve(c.Request.Context(), id, req.Actor)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// Reject handles POST /api/claims/:id/reject
func (h *Handlers) Reject(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req RejectRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	claim, err := h.claimService.Reject(c.Request.Context(), id, req.Actor, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// Advance handles POST /api/claims/:id/advance
func (h *Handlers) Advance(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req ActorRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	claim, err := h.claimService.Advance(c.Request.Context(), id, req.Actor)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// inlineTypes are the stored types a browser may render in place
var inlineTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
}

// PreviewDocument handles GET /api/claims/documents/preview/:docId
func (h *Handlers) PreviewDocument(c *gin.Context) {
	h.serveDocument(c, "inline")
}

// DownloadDocument handles GET /api/claims/documents/download/:docId
func (h *Handlers) DownloadDocument(c *gin.Context) {
	h.serveDocument(c, "attachment")
}

func (h *Handlers) serveDocument(c *gin.Context, disposition string) {
	docID, ok := h.pathID(c, "docId")
	if !ok {
		return
	}

	evidence, content, err := h.claimService.OpenEvidence(c.Request.Context(), docID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	contentType := evidence.MimeType
	if !inlineTypes[contentType] {
		contentType = "application/octet-stream"
		disposition = "attachment"
	}
	c.Header("Content-Disposition", contentDisposition(disposition, evidence.DisplayName))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Content-Security-Policy", "sandbox")
	c.Data(http.StatusOK, contentType, content)
}

func (h *Handlers) readFiles(headers []*multipart.FileHeader) ([]entity.UploadedFile, error) {
	files := make([]entity.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
			return nil, fmt.Errorf("file %s is %d bytes, limit %d: %w", fh.Filename, fh.Size, h.maxUploadBytes, service.ErrUploadTooLarge)
		}

		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
		}

		files = append(files, entity.UploadedFile{
			FileName: fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Content:  content,
		})
	}
	return files, nil
}

func (h *Handlers) pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(c, fmt.Sprintf("invalid %s %q", name, raw))
		return 0, false
	}
	return id, true
}

// bindOptionalJSON accepts an empty body as the zero request
func (h *Handlers) bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(req); err != nil {
		h.badRequest(c, "invalid JSON body")
		return false
	}
	return true
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func contentDisposition(disposition, fileName string) string {
	if v := mime.FormatMediaType(disposition, map[string]string{"filename": fileName}); v != "" {
		return v
	}
	return disposition
}
