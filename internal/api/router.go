package api

import (
	"net/http"

	"github.com/alexivanou/cityphoto-api/internal/auth"
	"github.com/alexivanou/cityphoto-api/internal/service"
	"github.com/alexivanou/cityphoto-api/internal/stats"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter creates a new HTTP router. verifier and signer may be nil, in
// which case the routes depending on them answer 401 and 500 respectively.
func NewRouter(
	svc service.ServiceInterface,
	statsCollector *stats.Collector,
	verifier auth.Verifier,
	signer UploadSigner,
	logger *zap.Logger,
) *mux.Router {
	handler := NewHandler(svc, verifier, signer, logger)
	statsHandler := NewStatsHandler(statsCollector, handler.logger)

	router := mux.NewRouter()
	router.Use(corsMiddleware, accessLogMiddleware(handler.logger))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/photos", handler.CreatePhoto).Methods(http.MethodPost)
	v1.HandleFunc("/photos/by_city/{city_id:[0-9]+}", handler.PhotosByCity).Methods(http.MethodGet)
	v1.HandleFunc("/cities", handler.ListCities).Methods(http.MethodGet)
	v1.HandleFunc("/languages", handler.GetAvailableLanguages).Methods(http.MethodGet)

	v1.HandleFunc("/users", handler.CreateUser).Methods(http.MethodPost)
	v1.HandleFunc("/users", handler.ListUsers).Methods(http.MethodGet)
	v1.HandleFunc("/users/firebase/{uid}", handler.GetUserByFirebaseUID).Methods(http.MethodGet)
	v1.HandleFunc("/users/{id:[0-9]+}", handler.GetUser).Methods(http.MethodGet)
	v1.HandleFunc("/users/{id:[0-9]+}", handler.UpdateUser).Methods(http.MethodPatch)
	v1.HandleFunc("/users/{id:[0-9]+}/providers", handler.ListProviders).Methods(http.MethodGet)

	v1.HandleFunc("/auth/link", handler.requireIdentity(handler.LinkUser)).Methods(http.MethodPost)
	v1.HandleFunc("/auth/login", handler.requireIdentity(handler.Login)).Methods(http.MethodPost)
	v1.HandleFunc("/uploads/signature", handler.requireIdentity(handler.UploadSignature)).Methods(http.MethodPost)

	if statsCollector != nil {
		v1.HandleFunc("/stats", statsHandler.GetStats).Methods(http.MethodGet)
	}

	// Preflight requests; the CORS middleware answers them.
	router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	return router
}
