package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	app_service "onchain-budget-assistant/internal/application/service"
	"onchain-budget-assistant/internal/domain/gateway"
	"onchain-budget-assistant/internal/domain/repository"
	domain_service "onchain-budget-assistant/internal/domain/service"
	"onchain-budget-assistant/internal/httpserver"
	"onchain-budget-assistant/internal/infrastructure/ai"
	"onchain-budget-assistant/internal/infrastructure/bank"
	"onchain-budget-assistant/internal/infrastructure/blockchain"
	"onchain-budget-assistant/internal/infrastructure/config"
	"onchain-budget-assistant/internal/infrastructure/database"
	"onchain-budget-assistant/internal/infrastructure/identity"
	"onchain-budget-assistant/internal/infrastructure/logger"
	"onchain-budget-assistant/internal/infrastructure/messaging"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.NewLogger(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	// Create FX application
	app := fx.New(
		// Provide dependencies
		fx.Supply(cfg),
		fx.Supply(log),
		fx.Supply(&cfg.Bank),
		fx.Supply(&cfg.Chains),
		fx.Supply(&cfg.Identity),
		fx.Supply(&cfg.Gemini),
		fx.Supply(&cfg.Neo4J),
		fx.Supply(&cfg.NATS),

		// Infrastructure providers
		fx.Provide(
			database.NewNeo4JClient,
			database.NewNeo4JSessionRepository,
			database.NewNeo4JMessageRepository,
			bank.NewMonoClient,
			blockchain.NewEthClient,
			identity.NewENSClient,
			messaging.NewNATSPublisher,
			func(p *messaging.NATSPublisher) gateway.EventPublisher { return p },
			func(geminiCfg *config.GeminiConfig, log *logger.Logger) (*ai.GeminiClient, error) {
				return ai.NewGeminiClient(context.Background(), geminiCfg, log)
			},
			func(c *ai.GeminiClient) gateway.AssistantClient { return c },
		),

		// Application providers
		fx.Provide(
			app_service.NewAggregationFacade,
			app_service.NewAssistantBridge,
			newHTTPServer,
		),

		// Lifecycle hooks
		fx.Invoke(startServer),

		// Configure logging
		fx.WithLogger(func() fxevent.Logger {
			return fxevent.NopLogger
		}),
	)

	// Start the application
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Error("Failed to start application", zap.Error(err))
		os.Exit(1)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down application...")

	// Stop the application
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Error("Failed to stop application gracefully", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Application stopped successfully")
}

// newHTTPServer assembles the HTTP surface from the gateways and
// application services
func newHTTPServer(
	bankGateway gateway.BankGateway,
	chainGateway gateway.ChainGateway,
	identityGateway gateway.IdentityGateway,
	aggregation domain_service.AggregationService,
	assistant domain_service.AssistantService,
	messageRepo repository.MessageRepository,
	cfg *config.Config,
	log *logger.Logger,
) *httpserver.Server {
	return httpserver.NewServer(
		bankGateway,
		chainGateway,
		identityGateway,
		aggregation,
		assistant,
		messageRepo,
		cfg.Chains.DefaultChainID,
		log,
	)
}

// startServer wires the lifecycle: connect the datastore and broker,
// then begin serving HTTP
func startServer(
	lifecycle fx.Lifecycle,
	neo4jClient *database.Neo4JClient,
	publisher *messaging.NATSPublisher,
	geminiClient *ai.GeminiClient,
	server *httpserver.Server,
	cfg *config.Config,
	log *logger.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Connecting to Neo4J database")
			if err := neo4jClient.Connect(ctx); err != nil {
				return fmt.Errorf("failed to connect to Neo4J: %w", err)
			}
			log.Info("Successfully connected to Neo4J database")

			if err := publisher.Connect(ctx); err != nil {
				return fmt.Errorf("failed to connect to NATS: %w", err)
			}

			server.Start(cfg.App.HTTPPort)
			log.Info("Application started successfully", zap.Int("port", cfg.App.HTTPPort))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shut down HTTP server", zap.Error(err))
			}
			if err := publisher.Disconnect(); err != nil {
				log.Error("Failed to disconnect from NATS", zap.Error(err))
			}
			if err := geminiClient.Close(); err != nil {
				log.Error("Failed to close AI client", zap.Error(err))
			}
			return neo4jClient.Close(ctx)
		},
	})
}
