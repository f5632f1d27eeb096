package patient

import (
	"context"
	"fmt"
)

// BillProbe reports whether a patient still has open financial
// obligations. Implemented by the accounting store.
type BillProbe interface {
	HasPendingBills(ctx context.Context, patientCode int) (bool, error)
}

// AdmissionProbe reports whether a patient is currently admitted.
// Implemented by the admission store.
type AdmissionProbe interface {
	HasOpenAdmission(ctx context.Context, patientCode int) (bool, error)
}

type MergeValidator struct {
	bills      BillProbe
	admissions AdmissionProbe
}

func NewMergeValidator(bills BillProbe, admissions AdmissionProbe) *MergeValidator {
	return &MergeValidator{bills: bills, admissions: admissions}
}

// Validate evaluates every precondition category and accumulates one
// message per failing category and participant. It is read-only.
func (v *MergeValidator) Validate(ctx context.Context, survivor, obsolete *PatientModel) error {
	var messages []string

	if survivor.Sex != obsolete.Sex {
		messages = append(messages, "the sex of the two patients must be the same")
	}

	for _, p := range []*PatientModel{survivor, obsolete} {
		pending, err := v.bills.HasPendingBills(ctx, p.Code)
		if err != nil {
			return PersistenceError{cause: err}
		}
		if pending {
			messages = append(messages, fmt.Sprintf("patient %d has pending bills", p.Code))
		}
	}

	for _, p := range []*PatientModel{survivor, obsolete} {
		admitted, err := v.admissions.HasOpenAdmission(ctx, p.Code)
		if err != nil {
			return PersistenceError{cause: err}
		}
		if admitted {
			messages = append(messages, fmt.Sprintf("patient %d is currently admitted", p.Code))
		}
	}

	if len(messages) > 0 {
		return ValidationError{Messages: messages}
	}
	return nil
}
