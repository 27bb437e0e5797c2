package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insurdesk/claims-desk/internal/application/port"
	"github.com/insurdesk/claims-desk/internal/application/service"
	"github.com/insurdesk/claims-desk/internal/domain/checklist"
	"github.com/insurdesk/claims-desk/internal/domain/completeness"
	"github.com/insurdesk/claims-desk/internal/domain/entity"
	"github.com/insurdesk/claims-desk/internal/domain/workflow"
)

type mockClaimService struct {
	catalog *checklist.Catalog

	submitFunc       func(ctx context.Context, req service.SubmitClaimRequest) (*entity.Claim, error)
	getFunc          func(ctx context.Context, id int64) (*entity.Claim, error)
	listFunc         func(ctx context.Context, filter port.ClaimFilter) (*service.ClaimPage, error)
	attachFunc       func(ctx context.Context, id int64, files []entity.UploadedFile, actor string) (*entity.Claim, error)
	removeFunc       func(ctx context.Context, id, evidenceID int64, actor string) error
	openFunc         func(ctx context.Context, evidenceID int64) (*entity.Evidence, []byte, error)
	completenessFunc func(ctx context.Context, id int64) (*service.ChecklistView, error)
	exportFunc       func(ctx context.Context, id int64, format string) (*service.ExportResult, error)
	approveFunc      func(ctx context.Context, id int64, actor string) (*entity.Claim, error)
	rejectFunc       func(ctx context.Context, id int64, actor, reason string) (*entity.Claim, error)
	advanceFunc      func(ctx context.Context, id int64, actor string) (*entity.Claim, error)
	updateStatusFunc func(ctx context.Context, id int64, status, actor string) (*entity.Claim, error)
	historyFunc      func(ctx context.Context, id int64) ([]*entity.ClaimEvent, error)
}

func (m *mockClaimService) Catalog() *checklist.Catalog { return m.catalog }

func (m *mockClaimService) SubmitClaim(ctx context.Context, req service.SubmitClaimRequest) (*entity.Claim, error) {
	return m.submitFunc(ctx, req)
}

func (m *mockClaimService) GetClaim(ctx context.Context, id int64) (*entity.Claim, error) {
	return m.getFunc(ctx, id)
}

func (m *mockClaimService) ListClaims(ctx context.Context, filter port.ClaimFilter) (*service.ClaimPage, error) {
	return m.listFunc(ctx, filter)
}

func (m *mockClaimService) AttachEvidence(ctx context.Context, id int64, files []entity.UploadedFile, actor string) (*entity.Claim, error) {
	return m.attachFunc(ctx, id, files, actor)
}

func (m *mockClaimService) RemoveEvidence(ctx context.Context, id, evidenceID int64, actor string) error {
	return m.removeFunc(ctx, id, evidenceID, actor)
}

func (m *mockClaimService) OpenEvidence(ctx context.Context, evidenceID int64) (*entity.Evidence, []byte, error) {
	return m.openFunc(ctx, evidenceID)
}

func (m *mockClaimService) Completeness(ctx context.Context, id int64) (*service.ChecklistView, error) {
	return m.completenessFunc(ctx, id)
}

func (m *mockClaimService) ExportChecklist(ctx context.Context, id int64, format string) (*service.ExportResult, error) {
	return m.exportFunc(ctx, id, format)
}

func (m *mockClaimService) Approve(ctx context.Context, id int64, actor string) (*entity.Claim, error) {
	return m.approveFunc(ctx, id, actor)
}

func (m *mockClaimService) Reject(ctx context.Context, id int64, actor, reason string) (*entity.Claim, error) {
	return m.rejectFunc(ctx, id, actor, reason)
}

func (m *mockClaimService) Advance(ctx context.Context, id int64, actor string) (*entity.Claim, error) {
	return m.advanceFunc(ctx, id, actor)
}

func (m *mockClaimService) UpdateStatus(ctx context.Context, id int64, status, actor string) (*entity.Claim, error) {
	return m.updateStatusFunc(ctx, id, status, actor)
}

func (m *mockClaimService) History(ctx context.Context, id int64) ([]*entity.ClaimEvent, error) {
	return m.historyFunc(ctx, id)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func newTestServer(t *testing.T, svc *mockClaimService, health HealthFunc) *Server {
	t.Helper()
	catalog, err := checklist.Default()
	require.NoError(t, err)
	svc.catalog = catalog

	cfg := DefaultServerConfig()
	cfg.MaxUploadBytes = 1024
	return NewServer(cfg, svc, health, &mockLogger{})
}

func doRequest(t *testing.T, s *Server, req *http.Request) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	var resp Response
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func claimFixture() *entity.Claim {
	return &entity.Claim{ID: 1, ClaimID: "CLM-1", ClaimType: entity.ClaimTypeNormal, Status: workflow.StateSubmitted, Version: 1}
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		s := newTestServer(t, &mockClaimService{}, func(ctx context.Context) error { return nil })
		w, resp := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "healthy", data["status"])
		assert.NotEmpty(t, data["catalog_version"])
	})

	t.Run("database down", func(t *testing.T) {
		s := newTestServer(t, &mockClaimService{}, func(ctx context.Context) error { return fmt.Errorf("db closed") })
		w, resp := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.False(t, resp.Success)
	})
}

func TestGetCatalog(t *testing.T) {
	s := newTestServer(t, &mockClaimService{}, nil)
	w, resp := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	checklists := data["checklists"].([]interface{})
	assert.Len(t, checklists, len(entity.ClaimTypes()))
	first := checklists[0].(map[string]interface{})
	assert.Equal(t, "NORMAL", first["claim_type"])
}

func TestSubmitClaim(t *testing.T) {
	validFields := func() map[string]string {
		return map[string]string{
			"claimId":      "CLM-1",
			"customerName": "Asha Rao",
			"policy":       "POL-9",
			"claimAmount":  "25000.50",
			"claimDate":    "2025-07-01",
			"claimType":    "normal",
		}
	}

	t.Run("created", func(t *testing.T) {
		var got service.SubmitClaimRequest
		svc := &mockClaimService{
			submitFunc: func(ctx context.Context, req service.SubmitClaimRequest) (*entity.Claim, error) {
				got = req
				return claimFixture(), nil
			},
		}
		s := newTestServer(t, svc, nil)
		body, ct := multipartBody(t, validFields(), map[string][]byte{"death_certificate.pdf": []byte("%PDF-1.4")})
		req := httptest.NewRequest(http.MethodPost, "/api/claims/upload", body)
		req.Header.Set("Content-Type", ct)

		w, resp := doRequest(t, s, req)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, resp.Success)
		assert.Equal(t, "CLM-1", got.ClaimID)
		assert.Equal(t, entity.ClaimTypeNormal, got.ClaimType)
		assert.InDelta(t, 25000.50, got.Amount, 0.001)
		assert.Equal(t, 2025, got.ClaimDate.Year())
		require.Len(t, got.Files, 1)
		assert.Equal(t, "death_certificate.pdf", got.Files[0].FileName)
	})

	tests := []struct {
		name       string
		mutate     func(map[string]string)
		files      map[string][]byte
		wantStatus int
	}{
		{"bad amount", func(f map[string]string) { f["claimAmount"] = "lots" }, nil, http.StatusBadRequest},
		{"bad date", func(f map[string]string) { f["claimDate"] = "01/07/2025" }, nil, http.StatusBadRequest},
		{"unknown type", func(f map[string]string) { f["claimType"] = "MARINE" }, nil, http.StatusBadRequest},
		{"file too large", func(map[string]string) {}, map[string][]byte{"big.pdf": make([]byte, 2048)}, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockClaimService{
				submitFunc: func(ctx context.Context, req service.SubmitClaimRequest) (*entity.Claim, error) {
					t.Fatal("service must not be called")
					return nil, nil
				},
			}
			s := newTestServer(t, svc, nil)
			fields := validFields()
			tt.mutate(fields)
			body, ct := multipartBody(t, fields, tt.files)
			req := httptest.NewRequest(http.MethodPost, "/api/claims/upload", body)
			req.Header.Set("Content-Type", ct)

			w, resp := doRequest(t, s, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.False(t, resp.Success)
		})
	}

	t.Run("missing intake documents", func(t *testing.T) {
		svc := &mockClaimService{
			submitFunc: func(ctx context.Context, req service.SubmitClaimRequest) (*entity.Claim, error) {
				return nil, &service.ValidationError{
					Problems:         []string{"missing intake documents"},
					MissingDocuments: []string{"Death Certificate"},
				}
			},
		}
		s := newTestServer(t, svc, nil)
		body, ct := multipartBody(t, validFields(), nil)
		req := httptest.NewRequest(http.MethodPost, "/api/claims/upload", body)
		req.Header.Set("Content-Type", ct)

		w, resp := doRequest(t, s, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, []interface{}{"Death Certificate"}, data["missing_documents"])
	})
}

func TestListClaims(t *testing.T) {
	var got port.ClaimFilter
	svc := &mockClaimService{
		listFunc: func(ctx context.Context, filter port.ClaimFilter) (*service.ClaimPage, error) {
			got = filter
			return &service.ClaimPage{Claims: []*entity.Claim{claimFixture()}, Total: 1, Limit: 10}, nil
		},
	}
	s := newTestServer(t, svc, nil)

	w, resp := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/claims/search?customerName=asha&status=Submitted&limit=10&offset=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "asha", got.CustomerName)
	assert.Equal(t, workflow.StateSubmitted, got.Status)
	assert.Equal(t, 10, got.Limit)
	assert.Equal(t, 5, got.Offset)
}

func TestGetClaim(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
	}{
		{"found", "/api/claims/1", nil, http.StatusOK},
		{"not found", "/api/claims/1", fmt.Errorf("get claim 1: %w", port.ErrNotFound), http.StatusNotFound},
		{"bad id", "/api/claims/abc", nil, http.StatusBadRequest},
		{"store failure", "/api/claims/1", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockClaimService{
				getFunc: func(ctx context.Context, id int64) (*entity.Claim, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return claimFixture(), nil
				},
			}
			s := newTestServer(t, svc, nil)
			w, resp := doRequest(t, s, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", resp.Error)
			}
		})
	}
}

func TestApprove(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		err         error
		wantStatus  int
		wantMissing []interface{}
	}{
		{"approved without body", "", nil, http.StatusOK, nil},
		{"approved with actor", `{"actor":"maya"}`, nil, http.StatusOK, nil},
		{
			"incomplete documentation",
			"",
			&completeness.IncompleteDocumentationError{ClaimID: "CLM-1", Missing: []string{"FIR", "Post Mortem"}},
			http.StatusPreconditionFailed,
			[]interface{}{"FIR", "Post Mortem"},
		},
		{
			"already closed",
			"",
			&completeness.InvalidTransitionError{ClaimID: "CLM-1", From: workflow.StateApproved, Trigger: workflow.TriggerApprove},
			http.StatusConflict,
			nil,
		},
		{"version conflict", "", port.ErrVersionConflict, http.StatusConflict, nil},
		{"malformed body", "{", nil, http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var actor string
			svc := &mockClaimService{
				approveFunc: func(ctx context.Context, id int64, a string) (*entity.Claim, error) {
					actor = a
					if tt.err != nil {
						return nil, tt.err
					}
					c := claimFixture()
					c.Status = workflow.StateApproved
					return c, nil
				},
			}
			s := newTestServer(t, svc, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/claims/1/approve", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w, resp := doRequest(t, s, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantMissing != nil {
				data := resp.Data.(map[string]interface{})
				assert.Equal(t, tt.wantMissing, data["missing_documents"])
			}
			if tt.body == `{"actor":"maya"}` {
				assert.Equal(t, "maya", actor)
			}
		})
	}
}

func TestRejectAndAdvance(t *testing.T) {
	var reason string
	svc := &mockClaimService{
		rejectFunc: func(ctx context.Context, id int64, actor, r string) (*entity.Claim, error) {
			reason = r
			c := claimFixture()
			c.Status = workflow.StateRejected
			return c, nil
		},
		advanceFunc: func(ctx context.Context, id int64, actor string) (*entity.Claim, error) {
			c := claimFixture()
			c.Status = workflow.StateDocsPending
			return c, nil
		},
	}
	s := newTestServer(t, svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/claims/1/reject", jsonBody(t, RejectRequest{Actor: "maya", Reason: "policy lapsed"}))
	req.Header.Set("Content-Type", "application/json")
	w, _ := doRequest(t, s, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "policy lapsed", reason)

	w, resp := doRequest(t, s, httptest.NewRequest(http.MethodPost, "/api/claims/1/advance", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Docs Pending", resp.Data.(map[string]interface{})["status"])
}

func TestUpdateStatus(t *testing.T) {
	t.Run("status required", func(t *testing.T) {
		s := newTestServer(t, &mockClaimService{}, nil)
		req := httptest.NewRequest(http.MethodPut, "/api/claims/1/status", jsonBody(t, map[string]string{"actor": "maya"}))
		req.Header.Set("Content-Type", "application/json")
		w, _ := doRequest(t, s, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("forwarded to service", func(t *testing.T) {
		var status string
		svc := &mockClaimService{
			updateStatusFunc: func(ctx context.Context, id int64, st, actor string) (*entity.Claim, error) {
				status = st
				return claimFixture(), nil
			},
		}
		s := newTestServer(t, svc, nil)
		req := httptest.NewRequest(http.MethodPut, "/api/claims/1/status", jsonBody(t, StatusRequest{Status: "Approved"}))
		req.Header.Set("Content-Type", "application/json")
		w, _ := doRequest(t, s, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Approved", status)
	})
}

func TestExportChecklist(t *testing.T) {
	t.Run("default format is pdf", func(t *testing.T) {
		var format string
		svc := &mockClaimService{
			exportFunc: func(ctx context.Context, id int64, f string) (*service.ExportResult, error) {
				format = f
				return &service.ExportResult{FileName: "claim-CLM-1-checklist.pdf", ContentType: "application/pdf", Content: []byte("%PDF-")}, nil
			},
		}
		s := newTestServer(t, svc, nil)
		w, _ := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/claims/1/checklist/export", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pdf", format)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename=claim-CLM-1-checklist.pdf`)
		assert.Equal(t, "%PDF-", w.Body.String())
	})

	t.Run("unsupported format", func(t *testing.T) {
		svc := &mockClaimService{
			exportFunc: func(ctx context.Context, id int64, f string) (*service.ExportResult, error) {
				return nil, fmt.Errorf("%w: %q", port.ErrUnsupportedFormat, f)
			},
		}
		s := newTestServer(t, svc, nil)
		w, _ := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/claims/1/checklist/export?format=docx", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDocuments(t *testing.T) {
	evidence := &entity.Evidence{ID: 7, ClaimRef: 1, DisplayName: "fir.pdf", MimeType: "application/pdf"}
	var removed int64
	svc := &mockClaimService{
		openFunc: func(ctx context.Context, evidenceID int64) (*entity.Evidence, []byte, error) {
			if evidenceID != 7 {
				return nil, nil, port.ErrNotFound
			}
			return evidence, []byte("%PDF-"), nil
		},
		attachFunc: func(ctx context.Context, id int64, files []entity.UploadedFile, actor string) (*entity.Claim, error) {
			if len(files) == 0 {
				return nil, &service.ValidationError{Problems: []string{"at least one file is required"}}
			}
			return claimFixture(), nil
		},
		removeFunc: func(ctx context.Context, id, evidenceID int64, actor string) error {
			removed = evidenceID
			return nil
		},
	}
	s := newTestServer(t, svc, nil)

	w, _ := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/claims/documents/preview/7", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "inline; filename=fir.pdf", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	t.Run("unrenderable type is never inline", func(t *testing.T) {
		evidence.MimeType = "image/svg+xml"
		defer func() { evidence.MimeType = "application/pdf" }()

		w, _ := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/claims/documents/preview/7", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "attachment; filename=fir.pdf", w.Header().Get("Content-Disposition"))
		assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
		assert.Equal(t, "sandbox", w.Header().Get("Content-Security-Policy"))
	})

	w, _ = doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/claims/documents/download/7", nil))
	assert.Equal(t, "attachment; filename=fir.pdf", w.Header().Get("Content-Disposition"))

	w, _ = doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/claims/documents/download/8", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	body, ct := multipartBody(t, nil, map[string][]byte{"fir.pdf": []byte("%PDF-")})
	req := httptest.NewRequest(http.MethodPost, "/api/claims/1/documents", body)
	req.Header.Set("Content-Type", ct)
	w, _ = doRequest(t, s, req)
	assert.Equal(t, http.StatusOK, w.Code)

	body, ct = multipartBody(t, map[string]string{"actor": "maya"}, nil)
	req = httptest.NewRequest(http.MethodPost, "/api/claims/1/documents", body)
	req.Header.Set("Content-Type", ct)
	w, _ = doRequest(t, s, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, s, httptest.NewRequest(http.MethodDelete, "/api/claims/1/documents/7", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), removed)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&service.ValidationError{Problems: []string{"x"}}, http.StatusBadRequest},
		{service.ErrUploadTooLarge, http.StatusRequestEntityTooLarge},
		{fmt.Errorf("wrap: %w", port.ErrNotFound), http.StatusNotFound},
		{&completeness.IncompleteDocumentationError{Missing: []string{"FIR"}}, http.StatusPreconditionFailed},
		{workflow.ErrInvalidTransition, http.StatusConflict},
		{service.ErrDuplicateClaim, http.StatusConflict},
		{service.ErrClaimClosed, http.StatusConflict},
		{port.ErrUnsupportedFormat, http.StatusBadRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, &mockClaimService{}, nil)
	w, _ := doRequest(t, s, httptest.NewRequest(http.MethodOptions, "/api/claims/1/approve", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}
