// Package api wires the HTTP surface of the service.
package api

import (
	"github.com/gorilla/mux"

	"github.com/echonote/echonote/internal/api/recovery"
	"github.com/echonote/echonote/internal/health"
	"github.com/echonote/echonote/internal/pipeline"
	"github.com/echonote/echonote/internal/services"
	"github.com/echonote/echonote/internal/store"
)

// NewRouter creates the HTTP router with all routes registered.
func NewRouter(svc *services.MemoryService, pipe *pipeline.Pipeline, checker *health.ServiceHealthChecker, cards store.Store) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	memoryHandler := NewMemoryHandler(svc, pipe)
	healthHandler := NewHealthHandler(checker, cards)

	// Health endpoints
	router.HandleFunc("/health", healthHandler.CheckHealth).Methods("GET")
	router.HandleFunc("/health/db", healthHandler.CheckStorageHealth).Methods("GET")

	// Memory endpoints
	router.HandleFunc("/memory", memoryHandler.CreateMemory).Methods("POST")
	router.HandleFunc("/memory", memoryHandler.ListMemories).Methods("GET")
	router.HandleFunc("/memory/{id}", memoryHandler.GetMemory).Methods("GET")
	router.HandleFunc("/memory/{id}", memoryHandler.PatchMemory).Methods("PATCH")
	router.HandleFunc("/memory/{id}", memoryHandler.DeleteMemory).Methods("DELETE")

	return router
}
