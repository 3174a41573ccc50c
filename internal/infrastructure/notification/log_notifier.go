package notification

import (
	"context"

	"go.uber.org/zap"
	"heirloom.backend/internal/domain/entities"
	"heirloom.backend/pkg/logger"
)

// LogNotifier writes access links to the service log instead of sending mail
type LogNotifier struct{}

// NewLogNotifier creates a new log notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// NotifyAccessGranted logs the access link for an operator to forward
func (n *LogNotifier) NotifyAccessGranted(ctx context.Context, notification entities.AccessNotification) error {
	logger.Info(ctx, "Beneficiary access granted",
		zap.String("beneficiaryId", notification.BeneficiaryID.String()),
		zap.String("beneficiaryName", notification.BeneficiaryName),
		zap.String("email", notification.Email),
		zap.String("ownerName", notification.OwnerName),
		zap.String("accessUrl", notification.AccessURL),
		zap.Time("expiresAt", notification.ExpiresAt),
	)
	return nil
}
