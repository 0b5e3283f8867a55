package service

import (
	"context"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Auditor writes audit trail entries for sensitive transitions. Audit
// persistence is best-effort: a failed write is logged and never fails
// the business operation it describes.
type Auditor struct {
	repo   *repository.AuditLogRepository
	logger *zap.Logger
}

func NewAuditor(repo *repository.AuditLogRepository, logger *zap.Logger) *Auditor {
	return &Auditor{repo: repo, logger: logger}
}

func (a *Auditor) Record(ctx context.Context, userID, action, objectType, objectID string, payload map[string]interface{}) {
	if a == nil || a.repo == nil {
		return
	}
	log := &entity.AuditLog{
		ID:         uuid.New().String()[:32],
		UserID:     userID,
		Action:     action,
		ObjectType: objectType,
		ObjectID:   objectID,
		Payload:    payload,
	}
	if err := a.repo.Create(ctx, log); err != nil {
		a.logger.Warn("audit write failed",
			zap.String("action", action),
			zap.String("object_id", objectID),
			zap.Error(err))
	}
}
