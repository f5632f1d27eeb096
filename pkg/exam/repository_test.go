package exam

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	repo := NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test tables: %v", err)
	}
	return repo
}

func rowDescriptions(t *testing.T, repo *Repository, code string) []string {
	t.Helper()
	rows, err := repo.RowsForExam(context.Background(), code)
	if err != nil {
		t.Fatalf("failed to load rows: %v", err)
	}
	descriptions := make([]string, 0, len(rows))
	for _, row := range rows {
		descriptions = append(descriptions, row.Description)
	}
	return descriptions
}

func TestCreateStoresRowSet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	e := &ExamModel{Code: "HB", Description: "Hemoglobin", ExamType: "HAEMATOLOGY", Procedure: ProcedureSingleResult}
	if err := repo.Create(ctx, e, []string{"NORMAL", "LOW", "HIGH"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got := rowDescriptions(t, repo, "HB")
	want := []string{"HIGH", "LOW", "NORMAL"}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestCreateFreeTextIgnoresRows(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	e := &ExamModel{Code: "XR", Description: "X-Ray report", ExamType: "RADIOLOGY", Procedure: ProcedureFreeText}
	if err := repo.Create(ctx, e, []string{"should not be stored"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if got := rowDescriptions(t, repo, "XR"); len(got) != 0 {
		t.Fatalf("free-text exam must carry no rows, got %v", got)
	}
}

func TestUpdateConvergesRowSet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	e := &ExamModel{Code: "BG", Description: "Blood group", ExamType: "HAEMATOLOGY", Procedure: ProcedureSingleResult}
	if err := repo.Create(ctx, e, []string{"A", "B", "0"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	e.Description = "Blood group (ABO)"
	if err := repo.Update(ctx, e, []string{"B", "0", "AB"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	updated, err := repo.FindByCode(ctx, "BG")
	if err != nil {
		t.Fatalf("failed to reload exam: %v", err)
	}
	if updated.Description != "Blood group (ABO)" {
		t.Errorf("unexpected description: %q", updated.Description)
	}

	got := rowDescriptions(t, repo, "BG")
	want := []string{"0", "AB", "B"}
	if len(got) != len(want) {
		t.Fatalf("expected rows %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestUpdateSwitchToFreeTextDropsRows(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	e := &ExamModel{Code: "UR", Description: "Urinalysis", ExamType: "URINE", Procedure: ProcedureMultiResult}
	if err := repo.Create(ctx, e, []string{"PROTEIN", "GLUCOSE"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	e.Procedure = ProcedureFreeText
	if err := repo.Update(ctx, e, nil); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if got := rowDescriptions(t, repo, "UR"); len(got) != 0 {
		t.Fatalf("expected all rows dropped, got %v", got)
	}
}

func TestDeleteRemovesExamAndRows(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	e := &ExamModel{Code: "MAL", Description: "Malaria smear", ExamType: "PARASITOLOGY", Procedure: ProcedureSingleResult}
	if err := repo.Create(ctx, e, []string{"NEGATIVE", "POSITIVE"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.Delete(ctx, "MAL"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.FindByCode(ctx, "MAL"); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("expected exam gone, got %v", err)
	}
	if got := rowDescriptions(t, repo, "MAL"); len(got) != 0 {
		t.Fatalf("expected rows gone, got %v", got)
	}
}

func TestDeleteUnknownExam(t *testing.T) {
	repo := newTestRepository(t)
	if err := repo.Delete(context.Background(), "NOPE"); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestIsCodePresent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	e := &ExamModel{Code: "HB", Description: "Hemoglobin", ExamType: "HAEMATOLOGY", Procedure: ProcedureFreeText}
	if err := repo.Create(ctx, e, nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	present, err := repo.IsCodePresent(ctx, "HB")
	if err != nil || !present {
		t.Fatalf("expected HB present, got %v/%v", present, err)
	}
	present, err = repo.IsCodePresent(ctx, "XX")
	if err != nil || present {
		t.Fatalf("expected XX absent, got %v/%v", present, err)
	}
}
