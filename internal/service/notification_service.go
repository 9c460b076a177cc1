package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/portal-session-service/internal/config"
	"github.com/spec-kit/portal-session-service/internal/events"
)

// NotificationService handles emitting notifications for lifecycle
// events. OTP codes are "delivered out of band" through here: in this
// prototype the delivery channel is the log.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventOTPIssued, n.handleOTPIssued)
	n.dispatcher.Subscribe(events.EventSessionExpired, n.handleSessionExpired)
	n.dispatcher.Subscribe(events.EventSuspensionChanged, n.handleSuspensionChanged)
}

func (n *NotificationService) handleOTPIssued(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OTPIssuedPayload)
	if !ok {
		return nil
	}
	// stands in for the out-of-band channel (SMS/email)
	n.logger.Info("OTPIssued",
		zap.String("email", payload.Email),
		zap.String("code", payload.Code),
		zap.Bool("resend", payload.Resend))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSessionExpired(ctx context.Context, event events.Event) error {
	n.logger.Info("SessionExpired", zap.String("role", string(event.Role)), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSuspensionChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("SuspensionChanged", zap.String("role", string(event.Role)), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
