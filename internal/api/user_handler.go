package api

import (
	"net/http"

	"github.com/alexivanou/cityphoto-api/internal/auth"
	"github.com/alexivanou/cityphoto-api/internal/model"
	"github.com/gorilla/mux"
)

// CreateUser handles POST /api/v1/users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := h.decode(r, &req, false); err != nil {
		h.handleError(w, r, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// ListUsers handles GET /api/v1/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// GetUser handles GET /api/v1/users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateUser handles PATCH /api/v1/users/{id}
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if err := h.decode(r, &req, false); err != nil {
		h.handleError(w, r, err)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// ListProviders handles GET /api/v1/users/{id}/providers
func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	providers, err := h.service.ListProviders(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, providers)
}

// GetUserByFirebaseUID handles GET /api/v1/users/firebase/{uid}
func (h *Handler) GetUserByFirebaseUID(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUserByFirebaseUID(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// LinkUser handles POST /api/v1/auth/link
func (h *Handler) LinkUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		h.handleError(w, r, auth.ErrUnauthorized)
		return
	}

	var body model.LinkUserBody
	if err := h.decode(r, &body, true); err != nil {
		h.handleError(w, r, err)
		return
	}

	email := body.Email
	if email == "" {
		email = identity.Email
	}

	user, err := h.service.LinkOrCreateUser(r.Context(), model.LinkUserRequest{
		ExternalUID: identity.UID,
		Email:       email,
		Username:    body.Username,
		Provider:    identity.Provider,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		h.handleError(w, r, auth.ErrUnauthorized)
		return
	}

	user, err := h.service.FederatedLogin(r.Context(), *identity)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
