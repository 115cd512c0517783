package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stoat/Mewton-family-tree/pkg/auth"
	apperrors "github.com/stoat/Mewton-family-tree/pkg/errors"
	"github.com/stoat/Mewton-family-tree/pkg/utils"

	"go.uber.org/zap"
)

// LoginObserver counts login outcomes.
type LoginObserver interface {
	ObserveLogin(outcome string)
}

type nopLoginObserver struct{}

func (nopLoginObserver) ObserveLogin(string) {}

// AuthHandler exchanges the shared password for a bearer token
type AuthHandler struct {
	authenticator *auth.Authenticator
	observer      LoginObserver
	errors        *apperrors.ErrorHandler
	logger        *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authenticator *auth.Authenticator, observer LoginObserver, errs *apperrors.ErrorHandler, logger *zap.Logger) *AuthHandler {
	if observer == nil {
		observer = nopLoginObserver{}
	}
	return &AuthHandler{
		authenticator: authenticator,
		observer:      observer,
		errors:        errs,
		logger:        logger,
	}
}

// LoginRequest is the body of POST /api/auth
type LoginRequest struct {
	Password string `json:"password" validate:"required,max=1024"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	Token string `json:"token"`
}

// Login handles POST /api/auth
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError("Invalid request body").WithCause(err))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError(err.Error()))
		return
	}

	token, err := h.authenticator.Login(r.Context(), req.Password)
	switch {
	case errors.Is(err, auth.ErrAuthDisabled):
		notFound := apperrors.NewNotFoundError("authentication")
		notFound.Message = err.Error()
		h.errors.Handle(w, r, notFound)
		return
	case errors.Is(err, auth.ErrInvalidPassword):
		h.observer.ObserveLogin("denied")
		h.logger.Warn("Login failed", zap.String("remoteAddr", r.RemoteAddr))
		h.errors.Handle(w, r, apperrors.NewUnauthorizedError("Invalid password"))
		return
	case err != nil:
		h.errors.Handle(w, r, apperrors.NewInternalError("Failed to issue token").WithCause(err))
		return
	}

	h.observer.ObserveLogin("ok")
	respondJSON(w, h.logger, http.StatusOK, LoginResponse{Token: token})
}
