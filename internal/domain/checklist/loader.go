package checklist

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// catalogFile is the on-disk catalog document
type catalogFile struct {
	Version    string      `yaml:"version"`
	ClaimTypes []Checklist `yaml:"claim_types"`
}

// Load parses a YAML catalog document and validates it. Unknown keys are
// rejected so typos in product configuration fail loudly.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc catalogFile
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ConfigurationError{Reason: "catalog document is empty"}
		}
		return nil, &ConfigurationError{Reason: fmt.Sprintf("failed to parse catalog: %v", err)}
	}
	if doc.Version == "" {
		return nil, &ConfigurationError{Reason: "catalog version is required"}
	}

	return New(doc.Version, doc.ClaimTypes)
}

// LoadFile loads a catalog from a YAML file
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Default returns the built-in catalog
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalogYAML))
}

// MustDefault returns the built-in catalog and panics if it is invalid
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Marshal renders the catalog back to its YAML document form
func (c *Catalog) Marshal() ([]byte, error) {
	doc := catalogFile{Version: c.version}
	for _, t := range c.ClaimTypes() {
		cl, _ := c.Checklist(t)
		doc.ClaimTypes = append(doc.ClaimTypes, cl)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return buf.Bytes(), nil
}

