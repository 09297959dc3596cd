package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"pharmaledger/internal/access"
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/logger"
	"pharmaledger/internal/models"
	"pharmaledger/internal/pagination"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

// List returns audit entries newest first, optionally for one resource type.
func (s *auditService) List(actor access.Actor, resourceType string, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
	if err := access.Require(actor, access.ManageUsers); err != nil {
		return nil, denied(actor, "list audit log", err)
	}
	q := s.db.Model(&models.AuditLog{})
	if resourceType != "" {
		q = q.Where("resource_type = ?", resourceType)
	}
	resp, err := pagination.Find[models.AuditLog](q.Order("created_at DESC").Order("id DESC"), page)
	if err != nil {
		return nil, apperrors.Store(apperrors.OpRead, "audit log", err)
	}
	return resp, nil
}
