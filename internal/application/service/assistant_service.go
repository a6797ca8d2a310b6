package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"onchain-budget-assistant/internal/domain/entity"
	"onchain-budget-assistant/internal/domain/gateway"
	"onchain-budget-assistant/internal/domain/repository"
	"onchain-budget-assistant/internal/domain/service"
	"onchain-budget-assistant/internal/infrastructure/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	contextTransactionLimit = 20
	contextHistoryLimit     = 5
	persistTimeout          = 10 * time.Second

	welcomeMessage = "Hey there! 👋 I'm OnchainBudget GPT, your AI financial assistant. I can help you track spending across your crypto wallets and traditional bank accounts. What would you like to know about your finances?"

	// fallbackMessage is appended whenever the AI provider fails; the
	// turn never fails visibly to the end user.
	fallbackMessage = "I'm having trouble processing your request right now. Could you try asking again? 🤔"
)

// AssistantBridge implements AssistantService. Each session's chat turn
// runs the machine idle → awaiting reply → idle, with a single-slot
// guard: a send issued while a turn is in flight is rejected.
type AssistantBridge struct {
	client      gateway.AssistantClient
	messageRepo repository.MessageRepository
	sessionRepo repository.SessionRepository
	aggregation service.AggregationService
	events      gateway.EventPublisher
	logger      *logger.Logger

	mu       sync.Mutex
	messages map[string][]entity.ChatMessage
	inFlight map[string]bool
}

// NewAssistantBridge creates a new conversational assistant bridge
func NewAssistantBridge(
	client gateway.AssistantClient,
	messageRepo repository.MessageRepository,
	sessionRepo repository.SessionRepository,
	aggregation service.AggregationService,
	events gateway.EventPublisher,
	logger *logger.Logger,
) service.AssistantService {
	return &AssistantBridge{
		client:      client,
		messageRepo: messageRepo,
		sessionRepo: sessionRepo,
		aggregation: aggregation,
		events:      events,
		logger:      logger.WithComponent("assistant-bridge"),
		messages:    make(map[string][]entity.ChatMessage),
		inFlight:    make(map[string]bool),
	}
}

// StartSession resolves the session for a wallet address, loads its
// persisted history into memory and seeds the welcome message when the
// history is empty.
func (b *AssistantBridge) StartSession(ctx context.Context, walletAddress string) (*entity.Session, []entity.ChatMessage, error) {
	sess, err := b.sessionRepo.GetOrCreateSession(ctx, walletAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start session: %w", err)
	}

	history, err := b.messageRepo.ListMessages(ctx, sess.ID, 50)
	if err != nil {
		b.logger.Warn("Failed to load chat history",
			zap.String("session_id", sess.ID),
			zap.Error(err))
		history = nil
	}

	b.mu.Lock()
	if len(history) > 0 {
		b.messages[sess.ID] = history
	} else if len(b.messages[sess.ID]) == 0 {
		welcome := entity.ChatMessage{
			ID:        uuid.NewString(),
			SessionID: sess.ID,
			Role:      entity.MessageRoleAssistant,
			Content:   welcomeMessage,
			Actions: []entity.SuggestedAction{
				{ID: "connect-bank", Label: "Connect Bank Account", Type: entity.ActionTypePrimary},
				{ID: "view-portfolio", Label: "View Portfolio", Type: entity.ActionTypeSecondary},
			},
			CreatedAt: time.Now().UTC(),
		}
		b.messages[sess.ID] = []entity.ChatMessage{welcome}
		b.persistAsync(welcome)
	}
	out := append([]entity.ChatMessage(nil), b.messages[sess.ID]...)
	b.mu.Unlock()

	return sess, out, nil
}

// Send runs one chat turn. The user message is appended optimistically
// and persisted fire-and-forget; exactly one assistant message is
// appended afterwards, the fixed fallback when the provider fails.
func (b *AssistantBridge) Send(ctx context.Context, sessionID, content string) (*entity.ChatMessage, error) {
	b.mu.Lock()
	if b.inFlight[sessionID] {
		b.mu.Unlock()
		return nil, service.ErrTurnInProgress
	}
	b.inFlight[sessionID] = true

	userMsg := entity.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      entity.MessageRoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	b.messages[sessionID] = append(b.messages[sessionID], userMsg)
	actx := b.buildContextLocked(sessionID)
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.inFlight, sessionID)
		b.mu.Unlock()
	}()

	b.persistAsync(userMsg)

	reply, err := b.client.GenerateReply(ctx, content, actx)
	var actions []entity.SuggestedAction
	if err != nil {
		b.logger.Error("AI provider failed, using fallback reply",
			zap.String("session_id", sessionID),
			zap.Error(err))
		reply = fallbackMessage
	} else {
		actions = service.SuggestActions(content)
	}

	assistantMsg := entity.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      entity.MessageRoleAssistant,
		Content:   reply,
		Actions:   actions,
		CreatedAt: time.Now().UTC(),
	}

	b.mu.Lock()
	b.messages[sessionID] = append(b.messages[sessionID], assistantMsg)
	b.mu.Unlock()

	b.persistAsync(assistantMsg)
	b.publishTurn(ctx, sessionID, err == nil)

	return &assistantMsg, nil
}

// Messages returns a copy of the in-memory message sequence
func (b *AssistantBridge) Messages(sessionID string) []entity.ChatMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]entity.ChatMessage(nil), b.messages[sessionID]...)
}

// buildContextLocked assembles the AI context payload from the current
// read model and recent history. Caller holds the mutex. The history
// excludes the just-appended user message.
func (b *AssistantBridge) buildContextLocked(sessionID string) gateway.AssistantContext {
	snap := b.aggregation.Snapshot()
	actx := gateway.AssistantContext{}

	if snap.Identity != nil {
		summary, _ := json.Marshal(map[string]interface{}{
			"name":        snap.Identity.Name,
			"address":     snap.Identity.Address,
			"description": snap.Identity.Description,
		})
		actx.WalletSummary = string(summary)
	}

	if len(snap.Accounts) > 0 {
		type accountSummary struct {
			Name     string  `json:"name"`
			BankName string  `json:"bank_name"`
			Balance  float64 `json:"balance"`
			Currency string  `json:"currency"`
		}
		summaries := make([]accountSummary, 0, len(snap.Accounts))
		for _, a := range snap.Accounts {
			summaries = append(summaries, accountSummary{
				Name:     a.Name,
				BankName: a.BankName,
				Balance:  a.Balance,
				Currency: a.Currency,
			})
		}
		encoded, _ := json.Marshal(summaries)
		actx.BankSummary = string(encoded)
	}

	txs := snap.Transactions
	if len(txs) > contextTransactionLimit {
		txs = txs[len(txs)-contextTransactionLimit:]
	}
	if len(txs) > 0 {
		encoded, _ := json.Marshal(txs)
		actx.RecentTransactions = string(encoded)
	}

	history := b.messages[sessionID]
	if len(history) > 0 {
		// Drop the in-flight user message from the prior-turn history
		history = history[:len(history)-1]
	}
	if len(history) > contextHistoryLimit {
		history = history[len(history)-contextHistoryLimit:]
	}
	for _, msg := range history {
		actx.History = append(actx.History, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}

	return actx
}

// persistAsync stores a message in the background. The local append has
// already happened and is never rolled back; persistence failures are
// logged and otherwise ignored.
func (b *AssistantBridge) persistAsync(msg entity.ChatMessage) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := b.messageRepo.AppendMessage(ctx, &msg); err != nil {
			b.logger.Error("Failed to persist chat message",
				zap.String("message_id", msg.ID),
				zap.String("session_id", msg.SessionID),
				zap.Error(err))
		}
	}()
}

// publishTurn forwards a chat-turn analytics event, best effort
func (b *AssistantBridge) publishTurn(ctx context.Context, sessionID string, aiSucceeded bool) {
	if b.events == nil {
		return
	}
	err := b.events.Publish(ctx, &entity.AnalyticsEvent{
		SessionID: sessionID,
		EventType: "chat_turn",
		EventData: map[string]interface{}{"ai_succeeded": aiSucceeded},
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		b.logger.Warn("Failed to publish chat analytics event", zap.Error(err))
	}
}
