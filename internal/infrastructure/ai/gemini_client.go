package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"onchain-budget-assistant/internal/domain/gateway"
	"onchain-budget-assistant/internal/infrastructure/config"
	"onchain-budget-assistant/internal/infrastructure/logger"

	"go.uber.org/zap"
)

const systemPrompt = `You are OnchainBudget GPT, an AI financial assistant that helps users manage and understand their finances across onchain (crypto) and offchain (traditional banking) platforms.

Your personality:
- Smart, casual, and slightly witty
- Warm and conversational with a touch of humor
- Concise but informative responses
- Use emojis sparingly but effectively

Your capabilities:
- Analyze crypto wallet transactions and balances
- Categorize spending across DeFi, NFTs, transfers, swaps, etc.
- Connect traditional bank accounts for a comprehensive financial view
- Provide spending insights, trends, and budgeting advice

Guidelines:
- Keep responses conversational and engaging
- Provide actionable financial insights
- Explain crypto concepts in simple terms
- Always prioritize user financial security and privacy`

// GeminiClient wraps the generative AI provider
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *logger.Logger
}

// NewGeminiClient creates a new AI provider client. The client lives
// from application startup to shutdown; close it via Close.
func NewGeminiClient(ctx context.Context, cfg *config.GeminiConfig, log *logger.Logger) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	return &GeminiClient{
		client: client,
		model:  model,
		logger: log.WithComponent("ai-client"),
	}, nil
}

// GenerateReply issues one generation request built from the user's
// message and the current financial context.
func (c *GeminiClient) GenerateReply(ctx context.Context, userMessage string, actx gateway.AssistantContext) (string, error) {
	prompt := buildPrompt(userMessage, actx)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &gateway.TransportError{Provider: "ai provider", Err: err}
	}

	text := extractText(resp)
	if text == "" {
		return "", &gateway.StructuralError{Provider: "ai provider", Field: "candidates"}
	}

	c.logger.Info("Generated assistant reply", zap.Int("reply_length", len(text)))
	return text, nil
}

// Close releases the underlying client
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// buildPrompt prefixes the user's question with whatever context
// sections are present.
func buildPrompt(userMessage string, actx gateway.AssistantContext) string {
	var sections []string
	if actx.WalletSummary != "" {
		sections = append(sections, "Wallet Info: "+actx.WalletSummary)
	}
	if actx.BankSummary != "" {
		sections = append(sections, "Bank Info: "+actx.BankSummary)
	}
	if actx.RecentTransactions != "" {
		sections = append(sections, "Recent Transactions: "+actx.RecentTransactions)
	}
	if len(actx.History) > 0 {
		sections = append(sections, "Previous conversation: "+strings.Join(actx.History, "\n"))
	}
	if len(sections) == 0 {
		return userMessage
	}
	return "Context:\n" + strings.Join(sections, "\n\n") + "\n\nUser Question: " + userMessage
}

func extractText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(b.String())
}
