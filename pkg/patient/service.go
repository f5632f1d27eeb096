package patient

import (
	"context"
	"fmt"

	"github.com/caretide-health/platform/pkg/common/logger"
	"github.com/caretide-health/platform/pkg/common/models"
	"gorm.io/datatypes"
)

const (
	outcomeCommitted  = "committed"
	outcomeRolledBack = "rolled_back"
	outcomeRejected   = "rejected"
)

type Service struct {
	repo   *Repository
	merger *Merger
}

func NewService(repo *Repository, merger *Merger) *Service {
	return &Service{repo: repo, merger: merger}
}

func (s *Service) GetPatients(ctx context.Context, nameFilter string, limit, offset int) ([]models.Patient, error) {
	records, err := s.repo.List(ctx, nameFilter, limit, offset)
	if err != nil {
		return nil, err
	}
	patients := make([]models.Patient, 0, len(records))
	for _, record := range records {
		patients = append(patients, mapPatientModel(record))
	}
	return patients, nil
}

func (s *Service) GetPatient(ctx context.Context, code int) (models.Patient, error) {
	record, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return models.Patient{}, err
	}
	return mapPatientModel(*record), nil
}

func (s *Service) NewPatient(ctx context.Context, req models.CreatePatientRequest) (models.Patient, error) {
	if req.FirstName == "" || req.SecondName == "" {
		return models.Patient{}, fmt.Errorf("patient first and second name required")
	}
	if req.Sex != "M" && req.Sex != "F" {
		return models.Patient{}, fmt.Errorf("patient sex must be M or F")
	}

	record := &PatientModel{
		FirstName:      req.FirstName,
		SecondName:     req.SecondName,
		BirthDate:      req.BirthDate,
		Age:            req.Age,
		AgeType:        req.AgeType,
		Sex:            req.Sex,
		Address:        req.Address,
		City:           req.City,
		NextOfKin:      req.NextOfKin,
		Telephone:      req.Telephone,
		MotherName:     req.MotherName,
		Mother:         req.Mother,
		FatherName:     req.FatherName,
		Father:         req.Father,
		BloodType:      req.BloodType,
		HasInsurance:   req.HasInsurance,
		ParentTogether: req.ParentTogether,
		Note:           req.Note,
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return models.Patient{}, err
	}
	return mapPatientModel(*record), nil
}

func (s *Service) UpdatePatient(ctx context.Context, code int, req models.CreatePatientRequest) (models.Patient, error) {
	record, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return models.Patient{}, err
	}

	record.FirstName = req.FirstName
	record.SecondName = req.SecondName
	record.BirthDate = req.BirthDate
	record.Age = req.Age
	record.AgeType = req.AgeType
	record.Sex = req.Sex
	record.Address = req.Address
	record.City = req.City
	record.NextOfKin = req.NextOfKin
	record.Telephone = req.Telephone
	record.MotherName = req.MotherName
	record.Mother = req.Mother
	record.FatherName = req.FatherName
	record.Father = req.Father
	record.BloodType = req.BloodType
	record.HasInsurance = req.HasInsurance
	record.ParentTogether = req.ParentTogether
	record.Note = req.Note

	if err := s.repo.Save(ctx, record); err != nil {
		return models.Patient{}, err
	}
	return mapPatientModel(*record), nil
}

func (s *Service) DeletePatient(ctx context.Context, code int) error {
	if _, err := s.repo.FindByCode(ctx, code); err != nil {
		return err
	}
	return s.repo.MarkDeleted(ctx, code)
}

// MergePatient loads both identities and runs the merge workflow,
// recording the outcome on the audit trail. The audit write happens
// outside the merge transaction so rolled-back attempts stay visible.
func (s *Service) MergePatient(ctx context.Context, survivorCode, obsoleteCode int) (models.Patient, error) {
	if survivorCode == obsoleteCode {
		return models.Patient{}, fmt.Errorf("cannot merge a patient with itself")
	}

	survivor, err := s.repo.FindByCode(ctx, survivorCode)
	if err != nil {
		return models.Patient{}, err
	}
	obsolete, err := s.repo.FindByCode(ctx, obsoleteCode)
	if err != nil {
		return models.Patient{}, err
	}

	mergeErr := s.merger.Merge(ctx, survivor, obsolete)
	s.recordAudit(ctx, survivorCode, obsoleteCode, mergeErr)
	if mergeErr != nil {
		return models.Patient{}, mergeErr
	}
	return mapPatientModel(*survivor), nil
}

func (s *Service) recordAudit(ctx context.Context, survivorCode, obsoleteCode int, mergeErr error) {
	audit := &MergeAudit{
		SurvivorCode: survivorCode,
		ObsoleteCode: obsoleteCode,
		Outcome:      outcomeCommitted,
	}
	switch {
	case mergeErr == nil:
	case IsValidationError(mergeErr):
		audit.Outcome = outcomeRejected
		audit.Message = mergeErr.Error()
	default:
		audit.Outcome = outcomeRolledBack
		audit.Message = mergeErr.Error()
	}
	audit.Detail = datatypes.JSONMap{
		"survivor_code": survivorCode,
		"obsolete_code": obsoleteCode,
	}

	if err := s.repo.SaveAudit(ctx, audit); err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"survivor_code": survivorCode,
			"obsolete_code": obsoleteCode,
		}).Error("failed to record merge audit")
	}
}
