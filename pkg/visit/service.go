package visit

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

func (s *Service) GetVisits(ctx context.Context, patientCode int) ([]models.Visit, error) {
	records, err := s.repo.FindByPatient(ctx, patientCode)
	if err != nil {
		return nil, err
	}
	visits := make([]models.Visit, 0, len(records))
	for _, record := range records {
		visits = append(visits, mapVisitModel(record))
	}
	return visits, nil
}

func (s *Service) NewVisit(ctx context.Context, v models.Visit) (models.Visit, error) {
	if v.PatientCode <= 0 {
		return models.Visit{}, fmt.Errorf("visit requires a patient code")
	}
	if v.Date.IsZero() {
		v.Date = time.Now().UTC()
	}
	record := &VisitModel{
		PatientCode: v.PatientCode,
		Ward:        v.Ward,
		Date:        v.Date,
		Duration:    v.Duration,
		Service:     v.Service,
		Note:        v.Note,
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return models.Visit{}, err
	}
	return mapVisitModel(*record), nil
}

func mapVisitModel(v VisitModel) models.Visit {
	return models.Visit{
		ID:          v.ID,
		PatientCode: v.PatientCode,
		Ward:        v.Ward,
		Date:        v.Date,
		Duration:    v.Duration,
		Service:     v.Service,
		Note:        v.Note,
	}
}
