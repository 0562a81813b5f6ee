package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/app/service"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/common"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	registrationService *service.RegistrationService
	authService         *service.AuthService
}

func NewUserHandler(registrationService *service.RegistrationService, authService *service.AuthService) *UserHandler {
	return &UserHandler{registrationService: registrationService, authService: authService}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

func (h *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.registrationService.Register(r.Context(), req); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
