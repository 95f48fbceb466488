package http

import (
	"net/http"

	"github.com/qalicha-dev28/boutique-pos/internal/apperr"
	"github.com/qalicha-dev28/boutique-pos/internal/http/middleware"
	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/internal/repository"
	"github.com/qalicha-dev28/boutique-pos/internal/service"
)

type authHandler struct {
	*responder
	authSvc service.AuthService
}

func newAuthHandler(rs *responder, authSvc service.AuthService) *authHandler {
	return &authHandler{
		responder: rs,
		authSvc:   authSvc,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string     `json:"name" validate:"required"`
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=8"`
	Role     model.Role `json:"role" validate:"required,enum"`
}

type updateUserRequest struct {
	Name     *string     `json:"name"`
	Role     *model.Role `json:"role" validate:"omitempty,enum"`
	IsActive *bool       `json:"is_active"`
}

type authResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	token, user, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *authHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	token, user, err := h.authSvc.Register(r.Context(), service.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusCreated, authResponse{Token: token, User: user})
}

func (h *authHandler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.respondError(w, r, apperr.ErrMissingToken)
		return
	}

	user, err := h.authSvc.GetUser(r.Context(), claims.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, user)
}

func (h *authHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authSvc.ListUsers(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, users)
}

func (h *authHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	user, err := h.authSvc.UpdateUser(r.Context(), id, repository.UpdateUserParams{
		Name:     req.Name,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, user)
}
