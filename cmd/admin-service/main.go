package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caretide-health/platform/pkg/common/config"
	"github.com/caretide-health/platform/pkg/common/database"
	"github.com/caretide-health/platform/pkg/common/logger"
	"github.com/caretide-health/platform/pkg/common/models"
	"github.com/caretide-health/platform/pkg/gateway/middleware"
	"github.com/caretide-health/platform/pkg/menu"
	"github.com/gorilla/mux"
)

type AdminApp struct {
	service *menu.Service
}

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	repo := menu.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate admin tables")
	}

	cache := menu.NewRedisCache(database.GetRedis(), cfg.MenuCacheTTL)
	svc := menu.NewService(repo, cache)

	catalog, err := menu.LoadCatalog(cfg.MenuCatalogPath)
	if err != nil {
		logger.Log.WithError(err).Warn("falling back to default menu catalog")
	}
	if err := svc.SeedMenuItems(context.Background(), catalog); err != nil {
		logger.Log.WithError(err).Fatal("failed to seed menu items")
	}

	app := &AdminApp{service: svc}

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

	router.HandleFunc("/api/v1/users", app.handleListUsers).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/users", app.handleCreateUser).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/users/{username}", app.handleGetUser).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/users/{username}", app.handleDeleteUser).Methods(http.MethodDelete)
	router.HandleFunc("/api/v1/users/{username}/menu", app.handleUserMenu).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/groups", app.handleListGroups).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/groups/{code}/menu", app.handleGroupMenu).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/groups/{code}/menu", app.handleSetGroupMenu).Methods(http.MethodPut)

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
		}).Info("Admin Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Admin Service...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	database.CloseRedis()
	logger.Log.Info("Admin Service stopped")
}

func (a *AdminApp) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if groupCode := r.URL.Query().Get("group"); groupCode != "" {
		users, err := a.service.GetUsersByGroup(r.Context(), groupCode)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
		return
	}
	users, err := a.service.GetUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (a *AdminApp) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	created, err := a.service.NewUser(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *AdminApp) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.service.GetUser(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *AdminApp) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteUser(r.Context(), mux.Vars(r)["username"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *AdminApp) handleUserMenu(w http.ResponseWriter, r *http.Request) {
	items, err := a.service.MenuForUser(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *AdminApp) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := a.service.GetUserGroups(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (a *AdminApp) handleGroupMenu(w http.ResponseWriter, r *http.Request) {
	items, err := a.service.MenuForGroup(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *AdminApp) handleSetGroupMenu(w http.ResponseWriter, r *http.Request) {
	var req models.SetGroupMenuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := a.service.SetGroupMenu(r.Context(), mux.Vars(r)["code"], req.Items); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, menu.ErrUserNotFound), errors.Is(err, menu.ErrGroupNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, menu.ErrAlreadyDeleted):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
