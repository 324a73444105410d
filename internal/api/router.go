package api

import (
	"github.com/gorilla/mux"

	"github.com/dayboard/dayboard/internal/api/recovery"
	"github.com/dayboard/dayboard/internal/services"
)

// NewRouter creates a new HTTP router with all API routes.
func NewRouter(svc *services.DashboardService) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	healthHandler := NewHealthHandler()
	contentHandler := NewContentHandler(svc)

	// Health endpoint
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Daily content endpoints
	router.HandleFunc("/api/users/{userId}/content/{contentType}/{date:\\d{4}-\\d{2}-\\d{2}}", contentHandler.GetContent).Methods("GET")
	router.HandleFunc("/api/users/{userId}/content/{contentType}/{date:\\d{4}-\\d{2}-\\d{2}}/regenerate", contentHandler.RegenerateContent).Methods("POST")

	// Archive endpoint
	router.HandleFunc("/api/users/{userId}/archives/{date:\\d{4}-\\d{2}-\\d{2}}", contentHandler.GetArchive).Methods("GET")

	return router
}
