package patient

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/caretide-health/platform/pkg/accounting"
	"github.com/caretide-health/platform/pkg/admission"
	"github.com/caretide-health/platform/pkg/common/logger"
	"github.com/caretide-health/platform/pkg/examination"
	"github.com/caretide-health/platform/pkg/visit"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// recordingListener captures every dispatched event and can be told to
// veto the merge.
type recordingListener struct {
	events []MergedEvent
	fail   bool
}

func (l *recordingListener) PatientMerged(_ context.Context, event MergedEvent) error {
	l.events = append(l.events, event)
	if l.fail {
		return errors.New("listener unavailable")
	}
	return nil
}

type mergeFixture struct {
	db           *gorm.DB
	patients     *Repository
	visits       *visit.Repository
	examinations *examination.Repository
	bills        *accounting.Repository
	admissions   *admission.Repository
	listener     *recordingListener
	merger       *Merger
}

func newMergeFixture(t *testing.T) *mergeFixture {
	t.Helper()
	logger.Init()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	f := &mergeFixture{
		db:           db,
		patients:     NewRepository(db),
		visits:       visit.NewRepository(db),
		examinations: examination.NewRepository(db),
		bills:        accounting.NewRepository(db),
		admissions:   admission.NewRepository(db),
		listener:     &recordingListener{},
	}

	for _, migrate := range []func() error{
		f.patients.AutoMigrate,
		f.visits.AutoMigrate,
		f.examinations.AutoMigrate,
		f.bills.AutoMigrate,
		f.admissions.AutoMigrate,
	} {
		if err := migrate(); err != nil {
			t.Fatalf("failed to migrate test tables: %v", err)
		}
	}

	validator := NewMergeValidator(f.bills, f.admissions)
	f.merger = NewMerger(db, validator, []HistoryStore{f.visits, f.examinations}, nil)
	f.merger.Listeners().Register(f.listener)
	return f
}

func (f *mergeFixture) seedPatient(t *testing.T, sex, note string) *PatientModel {
	t.Helper()
	p := &PatientModel{
		FirstName:  "Test",
		SecondName: "Patient",
		Sex:        sex,
		Note:       note,
	}
	if err := f.patients.Save(context.Background(), p); err != nil {
		t.Fatalf("failed to seed patient: %v", err)
	}
	return p
}

func (f *mergeFixture) seedVisit(t *testing.T, patientCode int) {
	t.Helper()
	v := &visit.VisitModel{PatientCode: patientCode, Ward: "GEN", Date: time.Now().UTC()}
	if err := f.visits.Save(context.Background(), v); err != nil {
		t.Fatalf("failed to seed visit: %v", err)
	}
}

func (f *mergeFixture) seedExamination(t *testing.T, patientCode int) {
	t.Helper()
	e := &examination.ExaminationModel{PatientCode: patientCode, Date: time.Now().UTC(), Height: 170}
	if err := f.examinations.Save(context.Background(), e); err != nil {
		t.Fatalf("failed to seed examination: %v", err)
	}
}

func TestMergeReassignsHistoryAndSoftDeletes(t *testing.T) {
	f := newMergeFixture(t)
	ctx := context.Background()

	survivor := f.seedPatient(t, "M", "Note 1")
	obsolete := f.seedPatient(t, "M", "Note 2")
	f.seedVisit(t, survivor.Code)
	f.seedVisit(t, obsolete.Code)
	f.seedVisit(t, obsolete.Code)
	f.seedExamination(t, obsolete.Code)

	if err := f.merger.Merge(ctx, survivor, obsolete); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	visits, err := f.visits.FindByPatient(ctx, survivor.Code)
	if err != nil {
		t.Fatalf("failed to load survivor visits: %v", err)
	}
	if len(visits) != 3 {
		t.Errorf("expected 3 visits on survivor, got %d", len(visits))
	}
	orphaned, err := f.visits.FindByPatient(ctx, obsolete.Code)
	if err != nil {
		t.Fatalf("failed to load obsolete visits: %v", err)
	}
	if len(orphaned) != 0 {
		t.Errorf("expected no visits left on obsolete, got %d", len(orphaned))
	}
	exams, err := f.examinations.FindByPatient(ctx, survivor.Code)
	if err != nil {
		t.Fatalf("failed to load survivor examinations: %v", err)
	}
	if len(exams) != 1 {
		t.Errorf("expected 1 examination on survivor, got %d", len(exams))
	}

	if _, err := f.patients.FindByCode(ctx, obsolete.Code); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("expected obsolete hidden from active lookups, got %v", err)
	}
	stored, err := f.patients.FindByCodeIncludingDeleted(ctx, obsolete.Code)
	if err != nil {
		t.Fatalf("failed to load obsolete record: %v", err)
	}
	if !stored.Deleted {
		t.Error("expected obsolete record soft-deleted")
	}
	if !obsolete.Deleted {
		t.Error("expected in-memory obsolete flagged deleted after commit")
	}

	merged, err := f.patients.FindByCode(ctx, survivor.Code)
	if err != nil {
		t.Fatalf("failed to load survivor: %v", err)
	}
	if merged.Deleted {
		t.Error("survivor must stay active")
	}
	if merged.Note != "Note 2\n\nNote 1" {
		t.Errorf("unexpected merged note: %q", merged.Note)
	}

	if len(f.listener.events) != 1 {
		t.Fatalf("expected exactly one merge event, got %d", len(f.listener.events))
	}
	event := f.listener.events[0]
	if event.Survivor.Code != survivor.Code || event.Obsolete.Code != obsolete.Code {
		t.Errorf("event carries wrong codes: survivor=%d obsolete=%d", event.Survivor.Code, event.Obsolete.Code)
	}
}

func TestMergeListenerFailureRollsBackEverything(t *testing.T) {
	f := newMergeFixture(t)
	ctx := context.Background()

	survivor := f.seedPatient(t, "F", "Note 1")
	obsolete := f.seedPatient(t, "F", "Note 2")
	f.seedVisit(t, obsolete.Code)
	f.listener.fail = true

	err := f.merger.Merge(ctx, survivor, obsolete)
	if err == nil {
		t.Fatal("expected merge to fail")
	}
	if !IsNotificationError(err) {
		t.Fatalf("expected notification error, got %v", err)
	}

	// The event was dispatched before the veto rolled everything back.
	if len(f.listener.events) != 1 {
		t.Fatalf("expected the event to reach the listener once, got %d", len(f.listener.events))
	}
	if f.listener.events[0].Obsolete.Code != obsolete.Code {
		t.Errorf("event carries wrong obsolete code: %d", f.listener.events[0].Obsolete.Code)
	}

	remaining, err := f.visits.FindByPatient(ctx, obsolete.Code)
	if err != nil {
		t.Fatalf("failed to load obsolete visits: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("expected visit still on obsolete after rollback, got %d", len(remaining))
	}

	stored, err := f.patients.FindByCode(ctx, obsolete.Code)
	if err != nil {
		t.Fatalf("expected obsolete still active, got %v", err)
	}
	if stored.Deleted {
		t.Error("obsolete must not be soft-deleted after rollback")
	}

	untouched, err := f.patients.FindByCode(ctx, survivor.Code)
	if err != nil {
		t.Fatalf("failed to load survivor: %v", err)
	}
	if untouched.Note != "Note 1" {
		t.Errorf("survivor note must be untouched after rollback, got %q", untouched.Note)
	}
}

type failingHistoryStore struct {
	cause error
}

func (s failingHistoryStore) ReassignPatient(context.Context, *gorm.DB, int, int) error {
	return s.cause
}

func TestMergeHistoryFailureRollsBackEverything(t *testing.T) {
	f := newMergeFixture(t)
	ctx := context.Background()

	survivor := f.seedPatient(t, "M", "Note 1")
	obsolete := f.seedPatient(t, "M", "Note 2")
	f.seedVisit(t, obsolete.Code)

	// The failing store runs after the visit reassignment, so the
	// rollback has real work to undo.
	cause := errors.New("examinations table unavailable")
	merger := NewMerger(f.db, NewMergeValidator(f.bills, f.admissions),
		[]HistoryStore{f.visits, failingHistoryStore{cause: cause}}, nil)
	merger.Listeners().Register(f.listener)

	err := merger.Merge(ctx, survivor, obsolete)
	if !IsPersistenceError(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected the storage cause wrapped, got %v", err)
	}
	if len(f.listener.events) != 0 {
		t.Error("no event may be dispatched when reassignment fails")
	}

	remaining, err := f.visits.FindByPatient(ctx, obsolete.Code)
	if err != nil {
		t.Fatalf("failed to load obsolete visits: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("expected visit still on obsolete after rollback, got %d", len(remaining))
	}

	stored, err := f.patients.FindByCode(ctx, obsolete.Code)
	if err != nil {
		t.Fatalf("expected obsolete still active, got %v", err)
	}
	if stored.Deleted {
		t.Error("obsolete must not be soft-deleted after rollback")
	}

	untouched, err := f.patients.FindByCode(ctx, survivor.Code)
	if err != nil {
		t.Fatalf("failed to load survivor: %v", err)
	}
	if untouched.Note != "Note 1" {
		t.Errorf("survivor note must be untouched after rollback, got %q", untouched.Note)
	}
}

func TestMergeRejectsSexMismatch(t *testing.T) {
	f := newMergeFixture(t)
	ctx := context.Background()

	survivor := f.seedPatient(t, "M", "Note 1")
	obsolete := f.seedPatient(t, "F", "Note 2")

	err := f.merger.Merge(ctx, survivor, obsolete)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Messages) != 1 {
		t.Fatalf("expected exactly one violation, got %v", ve.Messages)
	}
	if ve.Messages[0] != "the sex of the two patients must be the same" {
		t.Errorf("unexpected message: %q", ve.Messages[0])
	}

	if len(f.listener.events) != 0 {
		t.Error("no event may be dispatched for a rejected merge")
	}
	stored, err := f.patients.FindByCode(ctx, survivor.Code)
	if err != nil {
		t.Fatalf("failed to load survivor: %v", err)
	}
	if stored.Note != "Note 1" {
		t.Errorf("rejected merge must not mutate the survivor, got note %q", stored.Note)
	}
}

func TestMergeRejectsPendingBills(t *testing.T) {
	f := newMergeFixture(t)
	ctx := context.Background()

	survivor := f.seedPatient(t, "M", "")
	obsolete := f.seedPatient(t, "M", "")

	closed := &accounting.BillModel{PatientCode: survivor.Code, Amount: 100, Status: accounting.StatusClosed}
	if err := f.bills.Save(ctx, closed); err != nil {
		t.Fatalf("failed to seed closed bill: %v", err)
	}
	open := &accounting.BillModel{PatientCode: obsolete.Code, Amount: 50, Status: accounting.StatusOpen}
	if err := f.bills.Save(ctx, open); err != nil {
		t.Fatalf("failed to seed open bill: %v", err)
	}

	err := f.merger.Merge(ctx, survivor, obsolete)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Messages) != 1 {
		t.Fatalf("expected exactly one violation, got %v", ve.Messages)
	}
	want := fmt.Sprintf("patient %d has pending bills", obsolete.Code)
	if ve.Messages[0] != want {
		t.Errorf("unexpected message: %q", ve.Messages[0])
	}
}

func TestMergeRejectsOpenAdmission(t *testing.T) {
	f := newMergeFixture(t)
	ctx := context.Background()

	survivor := f.seedPatient(t, "F", "")
	obsolete := f.seedPatient(t, "F", "")

	discharged := time.Now().UTC()
	past := &admission.AdmissionModel{
		PatientCode:   obsolete.Code,
		WardCode:      "GEN",
		AdmissionDate: discharged.AddDate(0, 0, -7),
		DischargeDate: &discharged,
	}
	if err := f.admissions.Save(ctx, past); err != nil {
		t.Fatalf("failed to seed discharged admission: %v", err)
	}
	current := &admission.AdmissionModel{
		PatientCode:   survivor.Code,
		WardCode:      "GEN",
		AdmissionDate: time.Now().UTC(),
	}
	if err := f.admissions.Save(ctx, current); err != nil {
		t.Fatalf("failed to seed open admission: %v", err)
	}

	err := f.merger.Merge(ctx, survivor, obsolete)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Messages) != 1 {
		t.Fatalf("expected exactly one violation, got %v", ve.Messages)
	}
	want := fmt.Sprintf("patient %d is currently admitted", survivor.Code)
	if ve.Messages[0] != want {
		t.Errorf("unexpected message: %q", ve.Messages[0])
	}
}

func TestMergeAccumulatesAllViolations(t *testing.T) {
	f := newMergeFixture(t)
	ctx := context.Background()

	survivor := f.seedPatient(t, "M", "")
	obsolete := f.seedPatient(t, "F", "")

	open := &accounting.BillModel{PatientCode: survivor.Code, Amount: 10, Status: accounting.StatusOpen}
	if err := f.bills.Save(ctx, open); err != nil {
		t.Fatalf("failed to seed open bill: %v", err)
	}
	current := &admission.AdmissionModel{PatientCode: obsolete.Code, WardCode: "GEN", AdmissionDate: time.Now().UTC()}
	if err := f.admissions.Save(ctx, current); err != nil {
		t.Fatalf("failed to seed open admission: %v", err)
	}

	err := f.merger.Merge(ctx, survivor, obsolete)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Messages) != 3 {
		t.Fatalf("expected three violations, got %v", ve.Messages)
	}
}

func TestServiceMergePatientAuditTrail(t *testing.T) {
	f := newMergeFixture(t)
	ctx := context.Background()
	svc := NewService(f.patients, f.merger)

	survivor := f.seedPatient(t, "M", "Note 1")
	obsolete := f.seedPatient(t, "M", "Note 2")

	merged, err := svc.MergePatient(ctx, survivor.Code, obsolete.Code)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if merged.Code != survivor.Code {
		t.Errorf("expected survivor returned, got %d", merged.Code)
	}

	audits, err := f.patients.RecentAudits(ctx, 10)
	if err != nil {
		t.Fatalf("failed to load audits: %v", err)
	}
	if len(audits) != 1 {
		t.Fatalf("expected one audit row, got %d", len(audits))
	}
	if audits[0].Outcome != outcomeCommitted {
		t.Errorf("expected committed outcome, got %q", audits[0].Outcome)
	}
	if audits[0].SurvivorCode != survivor.Code || audits[0].ObsoleteCode != obsolete.Code {
		t.Errorf("audit carries wrong codes: %d/%d", audits[0].SurvivorCode, audits[0].ObsoleteCode)
	}
}

func TestServiceMergePatientRecordsRolledBack(t *testing.T) {
	f := newMergeFixture(t)
	ctx := context.Background()
	svc := NewService(f.patients, f.merger)

	survivor := f.seedPatient(t, "F", "")
	obsolete := f.seedPatient(t, "F", "")
	f.listener.fail = true

	if _, err := svc.MergePatient(ctx, survivor.Code, obsolete.Code); err == nil {
		t.Fatal("expected merge to fail")
	}

	audits, err := f.patients.RecentAudits(ctx, 10)
	if err != nil {
		t.Fatalf("failed to load audits: %v", err)
	}
	if len(audits) != 1 {
		t.Fatalf("expected one audit row, got %d", len(audits))
	}
	if audits[0].Outcome != outcomeRolledBack {
		t.Errorf("expected rolled_back outcome, got %q", audits[0].Outcome)
	}
	if audits[0].Message == "" {
		t.Error("rolled_back audit must carry the failure message")
	}
}

func TestServiceMergePatientRecordsRejected(t *testing.T) {
	f := newMergeFixture(t)
	ctx := context.Background()
	svc := NewService(f.patients, f.merger)

	survivor := f.seedPatient(t, "M", "")
	obsolete := f.seedPatient(t, "F", "")

	_, err := svc.MergePatient(ctx, survivor.Code, obsolete.Code)
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	audits, err := f.patients.RecentAudits(ctx, 10)
	if err != nil {
		t.Fatalf("failed to load audits: %v", err)
	}
	if len(audits) != 1 {
		t.Fatalf("expected one audit row, got %d", len(audits))
	}
	if audits[0].Outcome != outcomeRejected {
		t.Errorf("expected rejected outcome, got %q", audits[0].Outcome)
	}
}

func TestServiceMergePatientRejectsSelfMerge(t *testing.T) {
	f := newMergeFixture(t)
	svc := NewService(f.patients, f.merger)

	p := f.seedPatient(t, "M", "")
	if _, err := svc.MergePatient(context.Background(), p.Code, p.Code); err == nil {
		t.Fatal("expected self-merge to be refused")
	}
}

func TestServiceMergePatientUnknownCodes(t *testing.T) {
	f := newMergeFixture(t)
	svc := NewService(f.patients, f.merger)

	p := f.seedPatient(t, "M", "")
	if _, err := svc.MergePatient(context.Background(), p.Code, 9999); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected patient not found, got %v", err)
	}
}
