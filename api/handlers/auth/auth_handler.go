package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/api/handlers/common"
	"backend/internal/auth"
)

// AuthHandler serves admin login and identity lookups.
type AuthHandler struct {
	jwtService *auth.JWTService
	store      *auth.Store
	logger     *zap.Logger
}

func NewAuthHandler(jwtService *auth.JWTService, store *auth.Store, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{jwtService: jwtService, store: store, logger: logger}
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginResponse carries the issued token and the user it belongs to.
type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expires_in"`
	User      UserInfo `json:"user"`
}

// UserInfo is the admin-user view returned by auth endpoints.
type UserInfo struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Roles       []string `json:"roles"`
}

// Login authenticates an admin user and issues an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	user, err := h.store.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, auth.ErrInvalidCredentials) {
			common.RespondError(c, http.StatusUnauthorized, "invalid email or password")
			return
		}
		if errors.Is(err, auth.ErrUserDisabled) {
			common.RespondError(c, http.StatusForbidden, "account disabled")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		common.RespondError(c, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Email, user.Roles)
	if err != nil {
		h.logger.Error("token generation failed", zap.Error(err))
		common.RespondError(c, http.StatusInternalServerError, "login failed")
		return
	}

	common.RespondOK(c, LoginResponse{
		Token:     token,
		ExpiresIn: int64(h.jwtService.AccessExpiry().Seconds()),
		User: UserInfo{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Roles:       user.Roles,
		},
	})
}

// Me returns the authenticated caller.
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := auth.GetIdentity(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.store.GetByID(c.Request.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			common.RespondError(c, http.StatusUnauthorized, "not authenticated")
			return
		}
		h.logger.Error("load current user", zap.Error(err))
		common.RespondError(c, http.StatusInternalServerError, "lookup failed")
		return
	}

	common.RespondOK(c, UserInfo{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Roles:       user.Roles,
	})
}
