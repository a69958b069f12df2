package api

import (
	"net/http"
	"strconv"

	"github.com/alexivanou/cityphoto-api/internal/auth"
	"github.com/alexivanou/cityphoto-api/internal/model"
	"github.com/alexivanou/cityphoto-api/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// UploadSigner issues signed direct-upload parameters for an owner
type UploadSigner interface {
	Sign(owner string) (*model.UploadSignature, error)
}

// Handler handles HTTP requests
type Handler struct {
	service  service.ServiceInterface
	verifier auth.Verifier
	signer   UploadSigner
	validate *validator.Validate
	logger   *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(svc service.ServiceInterface, verifier auth.Verifier, signer UploadSigner, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service:  svc,
		verifier: verifier,
		signer:   signer,
		validate: newValidator(),
		logger:   logger,
	}
}

// CreatePhoto handles POST /api/v1/photos
func (h *Handler) CreatePhoto(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePhotoRequest
	if err := h.decode(r, &req, false); err != nil {
		h.handleError(w, r, err)
		return
	}

	photo, err := h.service.IngestPhoto(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, photo)
}

// PhotosByCity handles GET /api/v1/photos/by_city/{city_id}
func (h *Handler) PhotosByCity(w http.ResponseWriter, r *http.Request) {
	cityID, ok := pathID(w, r, "city_id")
	if !ok {
		return
	}

	photos, err := h.service.PhotosByCity(r.Context(), cityID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, photos)
}

// ListCities handles GET /api/v1/cities
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.ListCities(r.Context(), r.URL.Query().Get("lang"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, cities)
}

// GetAvailableLanguages handles GET /api/v1/languages
func (h *Handler) GetAvailableLanguages(w http.ResponseWriter, r *http.Request) {
	languages, err := h.service.GetAvailableLanguages(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response := map[string]interface{}{
		"languages": languages,
		"count":     len(languages),
	}
	writeJSON(w, http.StatusOK, response)
}

// UploadSignature handles POST /api/v1/uploads/signature
func (h *Handler) UploadSignature(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())
	if h.signer == nil || identity == nil {
		h.handleError(w, r, errSignerUnavailable)
		return
	}

	sig, err := h.signer.Sign(identity.UID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sig)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
