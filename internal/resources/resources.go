// Package resources loads certified table manifests and their statement templates.
package resources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Adda-Baaj/fdp-http-api/internal/domain"
	"gopkg.in/yaml.v3"
)

const defaultQueryType = "PRESTO"

// TableEntry is a single table declared in the manifest. File paths are
// relative to the manifest directory unless absolute.
type TableEntry struct {
	Name            string `json:"name" yaml:"name"`
	Description     string `json:"description" yaml:"description"`
	QueryType       string `json:"query_type" yaml:"query_type"`
	QueryFile       string `json:"query_file" yaml:"query_file"`
	CreateTableFile string `json:"create_table_file" yaml:"create_table_file"`
}

type manifest struct {
	Tables []TableEntry `json:"tables" yaml:"tables"`
}

// Manifest is a validated table manifest.
type Manifest struct {
	dir     string
	entries []TableEntry
}

// LoadManifest reads a YAML/JSON manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("tables file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tables file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read tables file: %w", err)
	}

	m, err := parseManifest(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(m.Tables) == 0 {
		return nil, errors.New("tables file contains no tables entries")
	}

	out := &Manifest{dir: filepath.Dir(path), entries: make([]TableEntry, len(m.Tables))}
	seen := make(map[string]struct{}, len(m.Tables))
	for i := range m.Tables {
		e := sanitizeEntry(m.Tables[i])
		if err := validateEntry(e); err != nil {
			return nil, fmt.Errorf("tables[%d]: %w", i, err)
		}
		if _, exists := seen[e.Name]; exists {
			return nil, fmt.Errorf("duplicate table name %q", e.Name)
		}
		seen[e.Name] = struct{}{}
		out.entries[i] = e
	}
	return out, nil
}

type unmarshalFn func([]byte, any) error

func parseManifest(data []byte, ext string) (manifest, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var errs []error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var m manifest
		if err := d.fn(data, &m); err != nil {
			errs = append(errs, fmt.Errorf("decode %s tables: %w", d.name, err))
			continue
		}
		return m, nil
	}
	if len(errs) > 0 {
		return manifest{}, errors.Join(errs...)
	}
	return manifest{}, errors.New("tables file format not recognized (expected YAML or JSON)")
}

func sanitizeEntry(e TableEntry) TableEntry {
	e.Name = strings.TrimSpace(e.Name)
	e.Description = strings.TrimSpace(e.Description)
	e.QueryType = strings.ToUpper(strings.TrimSpace(e.QueryType))
	e.QueryFile = strings.TrimSpace(e.QueryFile)
	e.CreateTableFile = strings.TrimSpace(e.CreateTableFile)
	if e.QueryType == "" {
		e.QueryType = defaultQueryType
	}
	if e.Description == "" {
		e.Description = e.Name
	}
	return e
}

func validateEntry(e TableEntry) error {
	if e.Name == "" {
		return errors.New("name is required")
	}
	if e.QueryFile == "" {
		return fmt.Errorf("query_file is required for table %q", e.Name)
	}
	if e.CreateTableFile == "" {
		return fmt.Errorf("create_table_file is required for table %q", e.Name)
	}
	return nil
}

// Entries returns a copy of the manifest entries in declaration order.
func (m *Manifest) Entries() []TableEntry {
	if m == nil {
		return nil
	}
	out := make([]TableEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Load reads the statement templates of the selected tables. An empty
// selection loads every table.
func (m *Manifest) Load(names ...string) ([]domain.CertifiedTable, error) {
	if m == nil {
		return nil, errors.New("manifest is nil")
	}

	selected, err := m.selectEntries(names)
	if err != nil {
		return nil, err
	}

	tables := make([]domain.CertifiedTable, 0, len(selected))
	for _, e := range selected {
		query, err := m.readTemplate(e.QueryFile)
		if err != nil {
			return nil, fmt.Errorf("table %s query: %w", e.Name, err)
		}
		ddl, err := m.readTemplate(e.CreateTableFile)
		if err != nil {
			return nil, fmt.Errorf("table %s create statement: %w", e.Name, err)
		}
		tables = append(tables, domain.CertifiedTable{
			Name:                 e.Name,
			Description:          e.Description,
			QueryType:            e.QueryType,
			QueryStatement:       query,
			CreateTableStatement: ddl,
		})
	}
	return tables, nil
}

func (m *Manifest) selectEntries(names []string) ([]TableEntry, error) {
	if len(names) == 0 {
		return m.Entries(), nil
	}
	idx := make(map[string]TableEntry, len(m.entries))
	for _, e := range m.entries {
		idx[e.Name] = e
	}
	out := make([]TableEntry, 0, len(names))
	for _, n := range names {
		e, ok := idx[strings.TrimSpace(n)]
		if !ok {
			return nil, fmt.Errorf("table %q is not declared in the manifest", n)
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *Manifest) readTemplate(name string) (string, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.dir, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return string(raw), nil
}
