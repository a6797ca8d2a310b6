package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"onchain-budget-assistant/internal/domain/entity"
	"onchain-budget-assistant/internal/domain/repository"
	"onchain-budget-assistant/internal/infrastructure/logger"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// Neo4JSessionRepository implements SessionRepository interface
type Neo4JSessionRepository struct {
	client *Neo4JClient
	logger *logger.Logger
}

// NewNeo4JSessionRepository creates a new Neo4J session repository
func NewNeo4JSessionRepository(client *Neo4JClient, logger *logger.Logger) repository.SessionRepository {
	return &Neo4JSessionRepository{
		client: client,
		logger: logger.WithComponent("neo4j-session-repo"),
	}
}

// GetOrCreateSession returns the session for a wallet address, creating
// it lazily on first use. The session data blob is stored as JSON text.
func (r *Neo4JSessionRepository) GetOrCreateSession(ctx context.Context, walletAddress string) (*entity.Session, error) {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	emptyData, _ := json.Marshal(entity.SessionData{})
	now := time.Now().UTC().Format(timestampLayout)

	query := `
		MERGE (s:Session {wallet_address: $wallet_address})
		ON CREATE SET
			s.id = $id,
			s.session_data = $session_data,
			s.created_at = datetime($now),
			s.updated_at = datetime($now)
		RETURN s.id, s.wallet_address, s.session_data, s.created_at, s.updated_at
	`

	params := map[string]interface{}{
		"wallet_address": walletAddress,
		"id":             uuid.NewString(),
		"session_data":   string(emptyData),
		"now":            now,
	}

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get or create session: %w", err)
	}

	record := result.(*neo4j.Record)
	out, err := sessionFromRecord(record)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Session resolved",
		zap.String("session_id", out.ID),
		zap.String("wallet_address", walletAddress))
	return out, nil
}

// GetSession retrieves a session by id
func (r *Neo4JSessionRepository) GetSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `
		MATCH (s:Session {id: $id})
		RETURN s.id, s.wallet_address, s.session_data, s.created_at, s.updated_at
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]interface{}{"id": sessionID})
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}

	return sessionFromRecord(result.(*neo4j.Record))
}

// UpdateSessionData replaces the session's JSON blob
func (r *Neo4JSessionRepository) UpdateSessionData(ctx context.Context, walletAddress string, data entity.SessionData) error {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	blob, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode session data: %w", err)
	}

	query := `
		MATCH (s:Session {wallet_address: $wallet_address})
		SET s.session_data = $session_data,
			s.updated_at = datetime($now)
	`

	params := map[string]interface{}{
		"wallet_address": walletAddress,
		"session_data":   string(blob),
		"now":            time.Now().UTC().Format(timestampLayout),
	}

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, params)
	})
	if err != nil {
		return fmt.Errorf("failed to update session data: %w", err)
	}

	r.logger.Debug("Session data updated", zap.String("wallet_address", walletAddress))
	return nil
}

func sessionFromRecord(record *neo4j.Record) (*entity.Session, error) {
	values := record.Values

	out := &entity.Session{
		ID:            values[0].(string),
		WalletAddress: values[1].(string),
	}
	if blob, ok := values[2].(string); ok && blob != "" {
		if err := json.Unmarshal([]byte(blob), &out.Data); err != nil {
			return nil, fmt.Errorf("failed to decode session data: %w", err)
		}
	}
	if t, ok := values[3].(time.Time); ok {
		out.CreatedAt = t
	}
	if t, ok := values[4].(time.Time); ok {
		out.UpdatedAt = t
	}
	return out, nil
}
