// Package export renders checklist documents into downloadable formats.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/insurdesk/claims-desk/internal/application/port"
)

// ErrUnsupportedFormat is returned for an export format with no exporter
var ErrUnsupportedFormat = port.ErrUnsupportedFormat

// Registry resolves exporters by format name
type Registry struct {
	exporters map[string]port.ChecklistExporter
}

// NewRegistry creates a registry holding the given exporters
func NewRegistry(exporters ...port.ChecklistExporter) *Registry {
	r := &Registry{exporters: make(map[string]port.ChecklistExporter, len(exporters))}
	for _, e := range exporters {
		r.exporters[e.Format()] = e
	}
	return r
}

// DefaultRegistry returns a registry with every built-in format
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewTextExporter(),
		NewCSVExporter(),
		NewXLSXExporter(),
		NewPDFExporter(),
	)
}

// Get returns the exporter for a format, matched case-insensitively
func (r *Registry) Get(format string) (port.ChecklistExporter, error) {
	e, ok := r.exporters[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedFormat, format, strings.Join(r.Formats(), ", "))
	}
	return e, nil
}

// Formats returns the registered format names in sorted order
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.exporters))
	for f := range r.exporters {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// Verify interface compliance
var _ port.ExporterRegistry = (*Registry)(nil)
