package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmaledger/internal/models"
	"pharmaledger/internal/pagination"
	"pharmaledger/internal/services"
)

// UserHandler handles user administration.
type UserHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserServicer, auditService services.AuditServicer) *UserHandler {
	return &UserHandler{userService: userService, auditService: auditService}
}

// CreateUserRequest represents the request payload for creating a user.
type CreateUserRequest struct {
	Username string            `json:"username" binding:"required,min=1,max=64"`
	Password string            `json:"password" binding:"required,min=8,max=128"`
	FullName string            `json:"full_name" binding:"max=100"`
	Role     models.Role       `json:"role" binding:"required,role"`
	Shift    *models.ShiftType `json:"shift" binding:"omitempty,shift_type"`
}

// UpdateUserRequest represents the request payload for updating a user.
// Role and shift are fixed at creation.
type UpdateUserRequest struct {
	FullName string  `json:"full_name" binding:"max=100"`
	Password *string `json:"password" binding:"omitempty,min=8,max=128"`
}

// CreateUser handles the creation of a new user.
// @Summary     Create a user
// @Description Create a user account (Super User only)
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateUserRequest true "User details"
// @Success     201 {object} Response{data=models.User} "User created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     409 {object} ErrorResponse "Username taken"
// @Router      /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}

	user, err := h.userService.CreateUser(actor, req.Username, req.Password, req.FullName, req.Role, req.Shift)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "CREATE_USER", "user", user.ID, c.ClientIP(),
		map[string]any{"username": user.Username, "role": user.Role})

	respond(c, http.StatusCreated, "User "+user.Username+" created", user)
}

// ListUsers handles listing users.
// @Summary     List users
// @Description List user accounts, active only unless include_inactive is set
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       include_inactive query bool false "Include deactivated users"
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} Response{data=pagination.PageResponse[models.User]} "Paginated users"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Router      /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, invalid(err))
		return
	}
	includeInactive, err := parseBoolQuery(c, "include_inactive")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.userService.ListUsers(actor, includeInactive, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", result)
}

// UpdateUser handles updating a user's name or password.
// @Summary     Update a user
// @Description Change a user's full name or password. Users may update themselves.
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "User ID"
// @Param       request body UpdateUserRequest true "Fields to update"
// @Success     200 {object} Response{data=models.User} "User updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}

	user, err := h.userService.UpdateUser(actor, c.Param("id"), req.FullName, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "UPDATE_USER", "user", user.ID, c.ClientIP(),
		map[string]any{"full_name": user.FullName, "password_changed": req.Password != nil})

	respond(c, http.StatusOK, "User updated", user)
}

// DeactivateUser handles deactivating a user.
// @Summary     Deactivate a user
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     200 {object} Response{data=models.User} "User deactivated"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id}/deactivate [post]
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	h.setActive(c, false)
}

// ReactivateUser handles reactivating a user.
// @Summary     Reactivate a user
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     200 {object} Response{data=models.User} "User reactivated"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id}/reactivate [post]
func (h *UserHandler) ReactivateUser(c *gin.Context) {
	h.setActive(c, true)
}

func (h *UserHandler) setActive(c *gin.Context, active bool) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var user *models.User
	action, message := "DEACTIVATE_USER", "User deactivated"
	if active {
		user, err = h.userService.ReactivateUser(actor, c.Param("id"))
		action, message = "REACTIVATE_USER", "User reactivated"
	} else {
		user, err = h.userService.DeactivateUser(actor, c.Param("id"))
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, action, "user", user.ID, c.ClientIP(), nil)

	respond(c, http.StatusOK, message, user)
}
