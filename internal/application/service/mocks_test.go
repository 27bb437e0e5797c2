package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/insurdesk/claims-desk/internal/application/port"
	"github.com/insurdesk/claims-desk/internal/domain/completeness"
	"github.com/insurdesk/claims-desk/internal/domain/entity"
	"github.com/insurdesk/claims-desk/internal/domain/workflow"
)

// memClaimRepo is an in-memory ClaimRepository with optional overrides
type memClaimRepo struct {
	mu     sync.Mutex
	claims map[int64]*entity.Claim
	nextID int64

	updateStatusFunc func(ctx context.Context, id int64, status workflow.State, expectedVersion int64) error
	afterGetFunc     func(id int64)
}

func newMemClaimRepo() *memClaimRepo {
	return &memClaimRepo{claims: map[int64]*entity.Claim{}}
}

func (m *memClaimRepo) Create(ctx context.Context, claim *entity.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.claims {
		if c.ClaimID == claim.ClaimID {
			return port.ErrDuplicate
		}
	}
	m.nextID++
	claim.ID = m.nextID
	claim.Version = 1
	cp := *claim
	cp.Evidence = nil
	m.claims[claim.ID] = &cp
	return nil
}

func (m *memClaimRepo) GetByID(ctx context.Context, id int64) (*entity.Claim, error) {
	m.mu.Lock()
	c, ok := m.claims[id]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("claim %d: %w", id, port.ErrNotFound)
	}
	cp := *c
	m.mu.Unlock()

	if hook := m.afterGetFunc; hook != nil {
		m.afterGetFunc = nil
		hook(id)
	}
	return &cp, nil
}

func (m *memClaimRepo) GetByClaimID(ctx context.Context, claimID string) (*entity.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.claims {
		if c.ClaimID == claimID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, port.ErrNotFound
}

func (m *memClaimRepo) List(ctx context.Context, filter port.ClaimFilter) ([]*entity.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Claim
	for id := m.nextID; id >= 1; id-- {
		c, ok := m.claims[id]
		if !ok {
			continue
		}
		if filter.CustomerName != "" && !strings.Contains(strings.ToLower(c.CustomerName), strings.ToLower(filter.CustomerName)) {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memClaimRepo) Count(ctx context.Context, filter port.ClaimFilter) (int, error) {
	filter.Limit, filter.Offset = 0, 0
	all, err := m.List(ctx, filter)
	return len(all), err
}

func (m *memClaimRepo) UpdateStatus(ctx context.Context, id int64, status workflow.State, expectedVersion int64) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, expectedVersion)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	if !ok {
		return port.ErrNotFound
	}
	if c.Version != expectedVersion {
		return port.ErrVersionConflict
	}
	c.Status = status
	c.Version++
	return nil
}

func (m *memClaimRepo) BumpVersion(ctx context.Context, id int64, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	if !ok {
		return port.ErrNotFound
	}
	if c.Version != expectedVersion {
		return port.ErrVersionConflict
	}
	c.Version++
	return nil
}

type memEvidenceRepo struct {
	mu       sync.Mutex
	evidence map[int64]entity.Evidence
	nextID   int64

	createFunc func(ctx context.Context, e *entity.Evidence) error
}

func newMemEvidenceRepo() *memEvidenceRepo {
	return &memEvidenceRepo{evidence: map[int64]entity.Evidence{}}
}

func (m *memEvidenceRepo) Create(ctx context.Context, e *entity.Evidence) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, e); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = m.nextID
	e.CreatedAt = time.Now()
	m.evidence[e.ID] = *e
	return nil
}

func (m *memEvidenceRepo) GetByID(ctx context.Context, id int64) (*entity.Evidence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.evidence[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return &e, nil
}

func (m *memEvidenceRepo) GetByClaimRef(ctx context.Context, claimRef int64) ([]entity.Evidence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Evidence{}
	for id := int64(1); id <= m.nextID; id++ {
		if e, ok := m.evidence[id]; ok && e.ClaimRef == claimRef {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEvidenceRepo) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.evidence[id]; !ok {
		return port.ErrNotFound
	}
	delete(m.evidence, id)
	return nil
}

type mockEventRepo struct {
	mu     sync.Mutex
	events []*entity.ClaimEvent
}

func (m *mockEventRepo) Create(ctx context.Context, e *entity.ClaimEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = int64(len(m.events) + 1)
	m.events = append(m.events, e)
	return nil
}

func (m *mockEventRepo) GetByClaimRef(ctx context.Context, claimRef int64) ([]*entity.ClaimEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.ClaimEvent
	for _, e := range m.events {
		if e.ClaimRef == claimRef {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventRepo) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	seq     int
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (m *memStorage) NewKey(claimID, fileName string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return fmt.Sprintf("%s/%d-%s", claimID, m.seq, fileName)
}

func (m *memStorage) Save(ctx context.Context, path string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = content
	return nil
}

func (m *memStorage) Read(ctx context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("missing %s", path)
	}
	return c, nil
}

func (m *memStorage) Exists(ctx context.Context, path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[path]
	return ok
}

func (m *memStorage) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

func (m *memStorage) GetFullPath(relativePath string) string { return "/mem/" + relativePath }

func (m *memStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type mockInspector struct {
	inspectFunc func(ctx context.Context, fileName string, content []byte) (*port.DocumentInfo, error)
}

func (m *mockInspector) Inspect(ctx context.Context, fileName string, content []byte) (*port.DocumentInfo, error) {
	if m.inspectFunc != nil {
		return m.inspectFunc(ctx, fileName, content)
	}
	return &port.DocumentInfo{MimeType: "application/pdf", PageCount: 1}, nil
}

type mockExporter struct {
	format string
	calls  int
}

func (m *mockExporter) Format() string      { return m.format }
func (m *mockExporter) ContentType() string { return "text/plain" }
func (m *mockExporter) Export(doc *completeness.ChecklistDocument) ([]byte, error) {
	m.calls++
	return []byte(doc.Text()), nil
}

type mockRegistry struct {
	exporters map[string]port.ChecklistExporter
}

func (m *mockRegistry) Get(format string) (port.ChecklistExporter, error) {
	if e, ok := m.exporters[format]; ok {
		return e, nil
	}
	return nil, port.ErrUnsupportedFormat
}

func (m *mockRegistry) Formats() []string { return []string{"txt"} }

type mockMetrics struct {
	mu          sync.Mutex
	submitted   map[string]int
	transitions map[string]int
	blocked     int
	exports     map[string]int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{submitted: map[string]int{}, transitions: map[string]int{}, exports: map[string]int{}}
}

func (m *mockMetrics) IncrementSubmitted(t string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted[t]++
}

func (m *mockMetrics) IncrementTransition(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[s]++
}

func (m *mockMetrics) IncrementApprovalBlocked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocked++
}

func (m *mockMetrics) IncrementExport(f string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exports[f]++
}

func (m *mockMetrics) ObserveEvaluateLatency(time.Duration) {}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
