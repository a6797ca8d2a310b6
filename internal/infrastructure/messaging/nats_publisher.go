package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"onchain-budget-assistant/internal/domain/entity"
	"onchain-budget-assistant/internal/infrastructure/config"
	"onchain-budget-assistant/internal/infrastructure/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSPublisher forwards analytics events to NATS. Publishing is best
// effort; the caller logs failures and moves on.
type NATSPublisher struct {
	conn   *nats.Conn
	config *config.NATSConfig
	logger *logger.Logger
}

// NewNATSPublisher creates a new NATS analytics publisher
func NewNATSPublisher(cfg *config.NATSConfig, logger *logger.Logger) *NATSPublisher {
	return &NATSPublisher{
		config: cfg,
		logger: logger.WithComponent("nats-publisher"),
	}
}

// Connect connects to the NATS server
func (n *NATSPublisher) Connect(ctx context.Context) error {
	if !n.config.Enabled {
		n.logger.Info("NATS is disabled, skipping connection")
		return nil
	}

	n.logger.Info("Connecting to NATS server", zap.String("url", n.config.URL))

	opts := []nats.Option{
		nats.Name("onchain-budget-assistant"),
		nats.Timeout(n.config.ConnectTimeout),
		nats.ReconnectWait(n.config.ReconnectDelay),
		nats.MaxReconnects(n.config.ReconnectAttempts),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			n.logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			n.logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			n.logger.Info("NATS connection closed")
		}),
	}

	conn, err := nats.Connect(n.config.URL, opts...)
	if err != nil {
		n.logger.Error("Failed to connect to NATS", zap.Error(err))
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	n.conn = conn
	n.logger.Info("Successfully connected to NATS")
	return nil
}

// Publish sends one analytics event on "<prefix>.events"
func (n *NATSPublisher) Publish(ctx context.Context, event *entity.AnalyticsEvent) error {
	if !n.config.Enabled || n.conn == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode analytics event: %w", err)
	}

	subject := fmt.Sprintf("%s.events", n.config.SubjectPrefix)
	if err := n.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish analytics event: %w", err)
	}

	n.logger.Debug("Published analytics event",
		zap.String("subject", subject),
		zap.String("event_type", event.EventType),
		zap.String("session_id", event.SessionID))
	return nil
}

// Disconnect drains and closes the NATS connection
func (n *NATSPublisher) Disconnect() error {
	if n.conn != nil {
		n.logger.Info("Disconnecting from NATS")
		if err := n.conn.Drain(); err != nil {
			n.conn.Close()
			return err
		}
	}
	return nil
}
