package gateway

import (
	"context"

	"onchain-budget-assistant/internal/domain/entity"
)

// EventPublisher forwards analytics events to the message broker.
// Publishing is best effort; callers log and move on when it fails.
type EventPublisher interface {
	Publish(ctx context.Context, event *entity.AnalyticsEvent) error
}
