package examination

import (
	"context"
	"fmt"
	"time"

	"github.com/caretide-health/platform/pkg/common/models"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetExaminations(ctx context.Context, patientCode int) ([]models.Examination, error) {
	records, err := s.repo.FindByPatient(ctx, patientCode)
	if err != nil {
		return nil, err
	}
	examinations := make([]models.Examination, 0, len(records))
	for _, record := range records {
		examinations = append(examinations, mapExaminationModel(record))
	}
	return examinations, nil
}

func (s *Service) NewExamination(ctx context.Context, e models.Examination) (models.Examination, error) {
	if e.PatientCode <= 0 {
		return models.Examination{}, fmt.Errorf("examination requires a patient code")
	}
	if e.Date.IsZero() {
		e.Date = time.Now().UTC()
	}
	record := &ExaminationModel{
		PatientCode:   e.PatientCode,
		Date:          e.Date,
		Height:        e.Height,
		Weight:        e.Weight,
		Temperature:   e.Temperature,
		Saturation:    e.Saturation,
		BloodPressure: e.BloodPressure,
		Note:          e.Note,
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return models.Examination{}, err
	}
	return mapExaminationModel(*record), nil
}

func mapExaminationModel(e ExaminationModel) models.Examination {
	return models.Examination{
		ID:            e.ID,
		PatientCode:   e.PatientCode,
		Date:          e.Date,
		Height:        e.Height,
		Weight:        e.Weight,
		Temperature:   e.Temperature,
		Saturation:    e.Saturation,
		BloodPressure: e.BloodPressure,
		Note:          e.Note,
	}
}
