package menu

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCatalogEmptyPathUsesDefault(t *testing.T) {
	catalog, err := LoadCatalog("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog.Items) == 0 {
		t.Fatal("default catalog must not be empty")
	}
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	content := []byte(`items:
  - code: patients
    button_label: Patients
    position: 10
  - code: reports
    button_label: Reports
    position: 20
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write catalog file: %v", err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(catalog.Items))
	}
	if catalog.Items[1].Code != "reports" || catalog.Items[1].Position != 20 {
		t.Errorf("unexpected item: %+v", catalog.Items[1])
	}
}

func TestLoadCatalogMissingFileFallsBack(t *testing.T) {
	catalog, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if len(catalog.Items) == 0 {
		t.Fatal("expected fallback to the default catalog")
	}
}

func TestLoadCatalogRejectsEmptyItemList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	if err := os.WriteFile(path, []byte("items: []\n"), 0o600); err != nil {
		t.Fatalf("failed to write catalog file: %v", err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Fatal("expected an error for an empty catalog")
	}
}
