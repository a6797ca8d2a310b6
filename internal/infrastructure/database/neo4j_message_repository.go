package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"onchain-budget-assistant/internal/domain/entity"
	"onchain-budget-assistant/internal/domain/repository"
	"onchain-budget-assistant/internal/infrastructure/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Neo4JMessageRepository implements MessageRepository interface
type Neo4JMessageRepository struct {
	client *Neo4JClient
	logger *logger.Logger
}

// NewNeo4JMessageRepository creates a new Neo4J message repository
func NewNeo4JMessageRepository(client *Neo4JClient, logger *logger.Logger) repository.MessageRepository {
	return &Neo4JMessageRepository{
		client: client,
		logger: logger.WithComponent("neo4j-message-repo"),
	}
}

// AppendMessage stores one message for a session. Suggested actions are
// stored as a JSON text property.
func (r *Neo4JMessageRepository) AppendMessage(ctx context.Context, msg *entity.ChatMessage) error {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	var actionsBlob string
	if len(msg.Actions) > 0 {
		encoded, err := json.Marshal(msg.Actions)
		if err != nil {
			return fmt.Errorf("failed to encode actions: %w", err)
		}
		actionsBlob = string(encoded)
	}

	query := `
		MATCH (s:Session {id: $session_id})
		CREATE (m:Message {
			id: $id,
			session_id: $session_id,
			role: $role,
			content: $content,
			actions: $actions,
			created_at: datetime($created_at)
		})
		CREATE (s)-[:HAS_MESSAGE]->(m)
	`

	params := map[string]interface{}{
		"id":         msg.ID,
		"session_id": msg.SessionID,
		"role":       string(msg.Role),
		"content":    msg.Content,
		"actions":    actionsBlob,
		"created_at": msg.CreatedAt.UTC().Format(timestampLayout),
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, params)
	})
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	r.logger.Debug("Message persisted",
		zap.String("message_id", msg.ID),
		zap.String("session_id", msg.SessionID),
		zap.String("role", string(msg.Role)))
	return nil
}

// ListMessages retrieves messages for a session ordered by creation time
func (r *Neo4JMessageRepository) ListMessages(ctx context.Context, sessionID string, limit int) ([]entity.ChatMessage, error) {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	if limit <= 0 {
		limit = 50
	}

	query := `
		MATCH (s:Session {id: $session_id})-[:HAS_MESSAGE]->(m:Message)
		RETURN m.id, m.role, m.content, m.actions, m.created_at
		ORDER BY m.created_at ASC
		LIMIT $limit
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]interface{}{
			"session_id": sessionID,
			"limit":      limit,
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	records := result.([]*neo4j.Record)
	messages := make([]entity.ChatMessage, 0, len(records))
	for _, record := range records {
		values := record.Values

		msg := entity.ChatMessage{
			ID:        values[0].(string),
			SessionID: sessionID,
			Role:      entity.MessageRole(values[1].(string)),
			Content:   values[2].(string),
		}
		if blob, ok := values[3].(string); ok && blob != "" {
			if err := json.Unmarshal([]byte(blob), &msg.Actions); err != nil {
				return nil, fmt.Errorf("failed to decode actions: %w", err)
			}
		}
		if t, ok := values[4].(time.Time); ok {
			msg.CreatedAt = t
		}
		messages = append(messages, msg)
	}

	return messages, nil
}
