package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/caretide-health/platform/pkg/accounting"
	"github.com/caretide-health/platform/pkg/admission"
	"github.com/caretide-health/platform/pkg/common/config"
	"github.com/caretide-health/platform/pkg/common/database"
	"github.com/caretide-health/platform/pkg/common/kafka"
	"github.com/caretide-health/platform/pkg/common/logger"
	"github.com/caretide-health/platform/pkg/common/models"
	"github.com/caretide-health/platform/pkg/exam"
	"github.com/caretide-health/platform/pkg/examination"
	"github.com/caretide-health/platform/pkg/gateway/middleware"
	"github.com/caretide-health/platform/pkg/patient"
	"github.com/caretide-health/platform/pkg/visit"
	"github.com/gorilla/mux"
)

type PatientApp struct {
	patients     *patient.Service
	visits       *visit.Service
	examinations *examination.Service
	exams        *exam.Repository
}

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	patientRepo := patient.NewRepository(db)
	visitRepo := visit.NewRepository(db)
	examinationRepo := examination.NewRepository(db)
	billRepo := accounting.NewRepository(db)
	admissionRepo := admission.NewRepository(db)
	examRepo := exam.NewRepository(db)

	for name, migrate := range map[string]func() error{
		"patients":     patientRepo.AutoMigrate,
		"visits":       visitRepo.AutoMigrate,
		"examinations": examinationRepo.AutoMigrate,
		"bills":        billRepo.AutoMigrate,
		"admissions":   admissionRepo.AutoMigrate,
		"exams":        examRepo.AutoMigrate,
	} {
		if err := migrate(); err != nil {
			logger.Log.WithError(err).WithField("tables", name).Fatal("failed to migrate tables")
		}
	}

	producer := kafka.NewProducer(cfg.MergeEventTopic)
	defer producer.Close()

	consumer := kafka.NewConsumer(cfg.MergeEventTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	consumeCtx, cancelConsume := context.WithCancel(context.Background())
	go func() {
		handler := patient.NewMergeEventHandler(billRepo, admissionRepo)
		if err := consumer.Consume(consumeCtx, handler); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.WithError(err).Error("merge event consumer stopped")
		}
	}()

	validator := patient.NewMergeValidator(billRepo, admissionRepo)
	merger := patient.NewMerger(db, validator, []patient.HistoryStore{visitRepo, examinationRepo}, nil)
	merger.Listeners().Register(patient.NewKafkaMergeListener(producer))

	app := &PatientApp{
		patients:     patient.NewService(patientRepo, merger),
		visits:       visit.NewService(visitRepo),
		examinations: examination.NewService(examinationRepo),
		exams:        examRepo,
	}

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging, middleware.CORS)
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	router.Use(middleware.BodyLimit(cfg.MaxRequestBody))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/v1/patients", app.handleListPatients).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/patients", app.handleCreatePatient).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/patients/merge", app.handleMerge).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/patients/{code}", app.handleGetPatient).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/patients/{code}", app.handleUpdatePatient).Methods(http.MethodPut)
	router.HandleFunc("/api/v1/patients/{code}", app.handleDeletePatient).Methods(http.MethodDelete)
	router.HandleFunc("/api/v1/patients/{code}/visits", app.handleListVisits).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/patients/{code}/visits", app.handleCreateVisit).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/patients/{code}/examinations", app.handleListExaminations).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/patients/{code}/examinations", app.handleCreateExamination).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/exams", app.handleListExams).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Patient Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Patient Service...")
	cancelConsume()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Patient Service stopped")
}

func (a *PatientApp) handleListPatients(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	patients, err := a.patients.GetPatients(r.Context(), r.URL.Query().Get("name"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, patients)
}

func (a *PatientApp) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	created, err := a.patients.NewPatient(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *PatientApp) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	code, err := pathCode(r)
	if err != nil {
		http.Error(w, "invalid patient code", http.StatusBadRequest)
		return
	}
	found, err := a.patients.GetPatient(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (a *PatientApp) handleUpdatePatient(w http.ResponseWriter, r *http.Request) {
	code, err := pathCode(r)
	if err != nil {
		http.Error(w, "invalid patient code", http.StatusBadRequest)
		return
	}
	var req models.CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	updated, err := a.patients.UpdatePatient(r.Context(), code, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *PatientApp) handleDeletePatient(w http.ResponseWriter, r *http.Request) {
	code, err := pathCode(r)
	if err != nil {
		http.Error(w, "invalid patient code", http.StatusBadRequest)
		return
	}
	if err := a.patients.DeletePatient(r.Context(), code); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *PatientApp) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req models.MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	merged, err := a.patients.MergePatient(r.Context(), req.SurvivorCode, req.ObsoleteCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.MergeResponse{
		SurvivorCode: merged.Code,
		ObsoleteCode: req.ObsoleteCode,
		MergedAt:     merged.UpdatedAt,
	})
}

func (a *PatientApp) handleListVisits(w http.ResponseWriter, r *http.Request) {
	code, err := pathCode(r)
	if err != nil {
		http.Error(w, "invalid patient code", http.StatusBadRequest)
		return
	}
	visits, err := a.visits.GetVisits(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, visits)
}

func (a *PatientApp) handleCreateVisit(w http.ResponseWriter, r *http.Request) {
	code, err := pathCode(r)
	if err != nil {
		http.Error(w, "invalid patient code", http.StatusBadRequest)
		return
	}
	var v models.Visit
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	v.PatientCode = code
	created, err := a.visits.NewVisit(r.Context(), v)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *PatientApp) handleListExaminations(w http.ResponseWriter, r *http.Request) {
	code, err := pathCode(r)
	if err != nil {
		http.Error(w, "invalid patient code", http.StatusBadRequest)
		return
	}
	examinations, err := a.examinations.GetExaminations(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, examinations)
}

func (a *PatientApp) handleCreateExamination(w http.ResponseWriter, r *http.Request) {
	code, err := pathCode(r)
	if err != nil {
		http.Error(w, "invalid patient code", http.StatusBadRequest)
		return
	}
	var e models.Examination
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	e.PatientCode = code
	created, err := a.examinations.NewExamination(r.Context(), e)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *PatientApp) handleListExams(w http.ResponseWriter, r *http.Request) {
	exams, err := a.exams.List(r.Context(), r.URL.Query().Get("description"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exams)
}

func pathCode(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["code"])
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, patient.ErrPatientNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case patient.IsValidationError(err):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
