package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Adilet2201/giftcircle/internal/config"
	"github.com/Adilet2201/giftcircle/internal/models"
	"github.com/Adilet2201/giftcircle/internal/services"
	"github.com/Adilet2201/giftcircle/pkg/apperrors"
	jwtutil "github.com/Adilet2201/giftcircle/pkg/jwt"
	"github.com/Adilet2201/giftcircle/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to accounts.
type UserHandler struct {
	Service *services.UserService
	Config  *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service: service,
		Config:  cfg,
	}
}

// RegisterHandler handles account creation.
func (h *UserHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	user, err := h.Service.Register(r.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	authed, err := h.withToken(user)
	if err != nil {
		respondError(w, err)
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User registered")
	respondJSON(w, http.StatusCreated, authed)
}

// LoginHandler handles credential verification and token issuance.
func (h *UserHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	user, err := h.Service.Authenticate(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	authed, err := h.withToken(user)
	if err != nil {
		respondError(w, err)
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User logged in")
	respondJSON(w, http.StatusOK, authed)
}

// GetProfileHandler returns the caller's own identity.
func (h *UserHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, apperrors.Unauthorized("Not authorized, no token"))
		return
	}

	user, err := h.Service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.PublicUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})
}

// UpdateProfileHandler patches the caller's own profile and returns a
// fresh token reflecting any email change.
func (h *UserHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, apperrors.Unauthorized("Not authorized, no token"))
		return
	}

	var update services.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	user, err := h.Service.UpdateProfile(r.Context(), claims.UserID, update)
	if err != nil {
		respondError(w, err)
		return
	}

	authed, err := h.withToken(user)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, authed)
}

func (h *UserHandler) withToken(user *models.User) (*models.AuthenticatedUser, error) {
	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to generate token")
	}

	return &models.AuthenticatedUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Token: token,
	}, nil
}
