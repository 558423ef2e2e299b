package resources

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadManifestYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ltv_driver_query.presto", "select * from drivers")
	writeFile(t, dir, "ltv_driver_table_create.sql", "CREATE TABLE ltv_driver (id INT)")
	writeFile(t, dir, "ltv_rider_query.presto", "select * from riders")
	writeFile(t, dir, "ltv_rider_table_create.sql", "CREATE TABLE ltv_rider (id INT)")
	file := writeFile(t, dir, "tables.yaml", `
tables:
  - name: ltv_driver
    query_file: ltv_driver_query.presto
    create_table_file: ltv_driver_table_create.sql
  - name: ltv_rider
    description: rider lifetime value
    query_type: mysql
    query_file: ltv_rider_query.presto
    create_table_file: ltv_rider_table_create.sql
`)

	m, err := LoadManifest(file)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(m.Entries()) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m.Entries()))
	}

	tables, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}
	driver := tables[0]
	if driver.Name != "ltv_driver" || driver.QueryType != "PRESTO" || driver.Description != "ltv_driver" {
		t.Fatalf("unexpected driver table %+v", driver)
	}
	if driver.QueryStatement != "select * from drivers" || driver.CreateTableStatement != "CREATE TABLE ltv_driver (id INT)" {
		t.Fatalf("templates not loaded: %+v", driver)
	}
	if tables[1].QueryType != "MYSQL" || tables[1].Description != "rider lifetime value" {
		t.Fatalf("unexpected rider table %+v", tables[1])
	}

	only, err := m.Load("ltv_rider")
	if err != nil {
		t.Fatalf("Load selection: %v", err)
	}
	if len(only) != 1 || only[0].Name != "ltv_rider" {
		t.Fatalf("unexpected selection %+v", only)
	}
}

func TestLoadManifestJSON(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "tables.json", `{"tables":[{"name":"t","query_file":"q","create_table_file":"c"}]}`)
	m, err := LoadManifest(file)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Entries()[0].Name != "t" {
		t.Fatalf("unexpected entries %+v", m.Entries())
	}
}

func TestLoadManifestRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "tables.yaml", `
tables:
  - name: dup
    query_file: a
    create_table_file: b
  - name: dup
    query_file: c
    create_table_file: d
`)
	if _, err := LoadManifest(file); err == nil {
		t.Fatalf("expected duplicate table error")
	}
}

func TestLoadManifestRequiresFiles(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "tables.yaml", `
tables:
  - name: t
    query_file: q
`)
	if _, err := LoadManifest(file); err == nil {
		t.Fatalf("expected missing create_table_file error")
	}
}

func TestLoadUnknownTableAndMissingTemplate(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "tables.yaml", `
tables:
  - name: t
    query_file: missing.presto
    create_table_file: missing.sql
`)
	m, err := LoadManifest(file)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if _, err := m.Load("other"); err == nil {
		t.Fatalf("expected unknown table error")
	}
	if _, err := m.Load(); err == nil {
		t.Fatalf("expected missing template error")
	}
}
