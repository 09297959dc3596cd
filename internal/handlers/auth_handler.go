package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/middleware"
	"pharmaledger/internal/models"
	"pharmaledger/internal/services"
)

// AuthHandler handles sign-in and the caller's own profile.
type AuthHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
	jwtSecret    string
	tokenTTL     time.Duration
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, auditService services.AuditServicer, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		auditService: auditService,
		jwtSecret:    jwtSecret,
		tokenTTL:     tokenTTL,
	}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Login handles user login
// @Summary     Login
// @Description Authenticate with username and password and get a bearer token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "Credentials"
// @Success     200 {object} Response{data=LoginResponse} "Authenticated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}

	user, err := h.userService.Authenticate(req.Username, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, expiresAt, err := middleware.GenerateToken(user, h.jwtSecret, h.tokenTTL)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	h.auditService.Log(user.ID, "LOGIN", "user", user.ID, c.ClientIP(), nil)

	respond(c, http.StatusOK, "Welcome, "+user.FullName, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}

// GetProfile returns the user's profile
// @Summary     Get profile
// @Description Get the signed-in user's profile
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Response{data=models.User} "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(actor.UserID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", user)
}
