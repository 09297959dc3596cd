package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pharmaledger/internal/access"
	"pharmaledger/internal/database"
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/logger"
	"pharmaledger/internal/models"
	"pharmaledger/internal/pagination"
)

const minPasswordLength = 8

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// Authenticate returns the active user matching the credentials. Unknown
// users, wrong passwords and deactivated users all fail the same way.
func (s *userService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ? AND is_active = ?", normalizeUsername(username), true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.Store(apperrors.OpRead, "user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		logger.Named("auth").Warnw("failed login", "username", user.Username)
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.db.Model(&user).UpdateColumn("last_login_at", now).Error; err != nil {
		logger.Named("auth").Errorw("failed to record last login", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now
	return &user, nil
}

// CreateUser registers a new user. Shift roles are bound to their own shift
// type; other roles carry no shift.
func (s *userService) CreateUser(actor access.Actor, username, password, fullName string, role models.Role, shift *models.ShiftType) (*models.User, error) {
	if err := access.Require(actor, access.ManageUsers); err != nil {
		return nil, denied(actor, "create user", err)
	}
	return s.createUser(&actor.UserID, username, password, fullName, role, shift)
}

func (s *userService) createUser(createdBy *string, username, password, fullName string, role models.Role, shift *models.ShiftType) (*models.User, error) {
	username = normalizeUsername(username)
	if username == "" {
		return nil, apperrors.Validation("Username is required")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.Validation("Unknown role %q", role)
	}
	affinity, err := resolveAffinity(role, shift)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(fullName) == "" {
		fullName = username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
		Shift:        affinity,
		IsActive:     true,
		CreatedBy:    createdBy,
	}
	if err := s.db.Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateUsername
		}
		return nil, storeErr(err, apperrors.OpCreate, "user")
	}

	logger.Named("users").Infow("user created", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return user, nil
}

// UpdateUser changes the display name and optionally the password. Role and
// shift affinity cannot change. Users may update themselves.
func (s *userService) UpdateUser(actor access.Actor, id, fullName string, password *string) (*models.User, error) {
	if actor.UserID != id {
		if err := access.Require(actor, access.ManageUsers); err != nil {
			return nil, denied(actor, "update user", err)
		}
	}

	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if name := strings.TrimSpace(fullName); name != "" {
		updates["full_name"] = name
	}
	if password != nil {
		if err := validatePassword(*password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updates["password_hash"] = string(hash)
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, storeErr(err, apperrors.OpUpdate, "user")
	}
	return s.GetUserByID(id)
}

// DeactivateUser blocks sign-in. The row stays so ledgers keep resolving it.
func (s *userService) DeactivateUser(actor access.Actor, id string) (*models.User, error) {
	if actor.UserID == id {
		return nil, apperrors.Validation("You cannot deactivate your own account")
	}
	return s.setActive(actor, id, false)
}

func (s *userService) ReactivateUser(actor access.Actor, id string) (*models.User, error) {
	return s.setActive(actor, id, true)
}

func (s *userService) setActive(actor access.Actor, id string, active bool) (*models.User, error) {
	if err := access.Require(actor, access.ManageUsers); err != nil {
		return nil, denied(actor, "change user status", err)
	}
	res := s.db.Model(&models.User{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return nil, storeErr(res.Error, apperrors.OpUpdate, "user")
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrUserNotFound
	}
	logger.Named("users").Infow("user status changed", "user_id", id, "active", active, "by", actor.UserID)
	return s.GetUserByID(id)
}

// GetUserByID retrieves a user by ID, active or not.
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, apperrors.ErrUserNotFound, "user")
	}
	return &user, nil
}

func (s *userService) ListUsers(actor access.Actor, includeInactive bool, page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
	if err := access.Require(actor, access.ManageUsers); err != nil {
		return nil, denied(actor, "list users", err)
	}
	q := s.db.Model(&models.User{})
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	resp, err := pagination.Find[models.User](q.Order("username ASC"), page)
	if err != nil {
		return nil, apperrors.Store(apperrors.OpRead, "users", err)
	}
	return resp, nil
}

// EnsureBootstrapAdmin creates the first Super User when the users table is
// empty. It returns nil when users already exist.
func (s *userService) EnsureBootstrapAdmin(username, password string) (*models.User, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, apperrors.Store(apperrors.OpRead, "users", err)
	}
	if count > 0 {
		return nil, nil
	}
	return s.createUser(nil, username, password, "Administrator", models.RoleSuperUser, nil)
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.Validation("Password must be at least %d characters", minPasswordLength)
	}
	return nil
}

// resolveAffinity defaults a shift role's affinity to its own shift and
// rejects an affinity on any other role.
func resolveAffinity(role models.Role, shift *models.ShiftType) (*models.ShiftType, error) {
	own, isShiftRole := role.ShiftType()
	if !isShiftRole {
		if shift != nil {
			return nil, apperrors.Validation("Only shift users can have a shift")
		}
		return nil, nil
	}
	if shift != nil && *shift != own {
		return nil, apperrors.Validation("A %s can only be assigned to the %s shift", role, own)
	}
	return &own, nil
}
