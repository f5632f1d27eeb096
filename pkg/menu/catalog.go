package menu

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type CatalogItem struct {
	Code        string `yaml:"code" json:"code"`
	ButtonLabel string `yaml:"button_label" json:"button_label"`
	AltLabel    string `yaml:"alt_label" json:"alt_label"`
	Tooltip     string `yaml:"tooltip" json:"tooltip"`
	Shortcut    string `yaml:"shortcut" json:"shortcut"`
	SubmenuOf   string `yaml:"submenu_of" json:"submenu_of"`
	IsSubmenu   bool   `yaml:"is_submenu" json:"is_submenu"`
	Position    int    `yaml:"position" json:"position"`
}

type Catalog struct {
	Items []CatalogItem `yaml:"items" json:"items"`
}

// LoadCatalog reads the menu item catalog from a YAML file. An empty
// path falls back to the built-in default catalog.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}

	var catalog Catalog
	if err := yaml.Unmarshal(content, &catalog); err != nil {
		return Catalog{}, err
	}

	if len(catalog.Items) == 0 {
		return Catalog{}, errors.New("no menu items configured")
	}

	return catalog, nil
}

func DefaultCatalog() Catalog {
	return Catalog{Items: []CatalogItem{
		{Code: "patients", ButtonLabel: "Patients", Tooltip: "Patient records", Shortcut: "P", Position: 10},
		{Code: "admission", ButtonLabel: "Admissions", Tooltip: "Admissions and discharges", Shortcut: "A", Position: 20},
		{Code: "visits", ButtonLabel: "Visits", Tooltip: "Outpatient visits", Shortcut: "V", Position: 30},
		{Code: "examinations", ButtonLabel: "Examinations", Tooltip: "Patient examinations", Shortcut: "E", Position: 40},
		{Code: "exams", ButtonLabel: "Exam Catalog", Tooltip: "Laboratory exam catalog", Shortcut: "L", Position: 50},
		{Code: "billing", ButtonLabel: "Billing", Tooltip: "Bills and payments", Shortcut: "B", Position: 60},
		{Code: "admin", ButtonLabel: "Administration", Tooltip: "Users and groups", Shortcut: "U", IsSubmenu: true, Position: 90},
		{Code: "admin.users", ButtonLabel: "Users", SubmenuOf: "admin", Position: 91},
		{Code: "admin.groups", ButtonLabel: "Groups", SubmenuOf: "admin", Position: 92},
	}}
}

// SeedMenuItems upserts the catalog into the menu item table.
func (s *Service) SeedMenuItems(ctx context.Context, catalog Catalog) error {
	for _, item := range catalog.Items {
		record := MenuItemModel{
			Code:        item.Code,
			ButtonLabel: item.ButtonLabel,
			AltLabel:    item.AltLabel,
			Tooltip:     item.Tooltip,
			Shortcut:    item.Shortcut,
			SubmenuOf:   item.SubmenuOf,
			IsSubmenu:   item.IsSubmenu,
			Position:    item.Position,
		}
		if err := s.repo.SaveMenuItem(ctx, &record); err != nil {
			return err
		}
	}
	return nil
}
