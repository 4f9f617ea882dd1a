package services

import (
	"context"
	"encoding/json"

	"checkout-service/models"
	aws_pkg "checkout-service/pkg/aws"

	"go.uber.org/zap"
)

// EventPublisher sends checkout events to SNS. Failures are logged only;
// an event never decides the outcome of a request.
type EventPublisher struct {
	sns      aws_pkg.SNSPublisher
	topicArn string
	logger   *zap.Logger
}

// NewEventPublisher returns a publisher; a nil client or empty topic disables it.
func NewEventPublisher(sns aws_pkg.SNSPublisher, topicArn string, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{sns: sns, topicArn: topicArn, logger: logger}
}

func (p *EventPublisher) Publish(ctx context.Context, event models.CheckoutEvent) {
	if p == nil || p.sns == nil || p.topicArn == "" {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal checkout event", zap.Error(err))
		return
	}
	if err := p.sns.Publish(ctx, p.topicArn, event.Type, payload); err != nil {
		p.logger.Error("Failed to publish checkout event to SNS",
			zap.String("event_type", event.Type),
			zap.String("intent_id", event.IntentID),
			zap.Error(err),
		)
		return
	}
	p.logger.Info("Checkout event published to SNS",
		zap.String("event_type", event.Type),
		zap.String("intent_id", event.IntentID),
	)
}
