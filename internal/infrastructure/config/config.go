package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Bank     BankConfig     `mapstructure:"bank"`
	Chains   ChainsConfig   `mapstructure:"chains"`
	Identity IdentityConfig `mapstructure:"identity"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Neo4J    Neo4JConfig    `mapstructure:"neo4j"`
	NATS     NATSConfig     `mapstructure:"nats"`
}

// AppConfig represents application-specific configuration
type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
	HTTPPort int    `mapstructure:"http_port"`
}

// BankConfig represents the bank aggregation provider configuration.
// SecretKey is server-held and never exposed to callers.
type BankConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	SecretKey string        `mapstructure:"secret_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ChainsConfig maps chain ids to RPC endpoints
type ChainsConfig struct {
	RPCURLs        map[string]string `mapstructure:"rpc_urls"`
	DefaultChainID int64             `mapstructure:"default_chain_id"`
}

// IdentityConfig represents the ENS-style resolver API configuration
type IdentityConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GeminiConfig represents the AI provider configuration
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Neo4JConfig represents Neo4J configuration
type Neo4JConfig struct {
	URI                          string        `mapstructure:"uri"`
	Username                     string        `mapstructure:"username"`
	Password                     string        `mapstructure:"password"`
	Database                     string        `mapstructure:"database"`
	ConnectTimeout               time.Duration `mapstructure:"connect_timeout"`
	MaxConnectionPoolSize        int           `mapstructure:"max_connection_pool_size"`
	ConnectionAcquisitionTimeout time.Duration `mapstructure:"connection_acquisition_timeout"`
}

// NATSConfig represents NATS configuration for the analytics publisher
type NATSConfig struct {
	URL               string        `mapstructure:"url"`
	SubjectPrefix     string        `mapstructure:"subject_prefix"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	ReconnectAttempts int           `mapstructure:"reconnect_attempts"`
	ReconnectDelay    time.Duration `mapstructure:"reconnect_delay"`
	Enabled           bool          `mapstructure:"enabled"`
}

// Load loads configuration from environment variables and files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/onchain-budget-assistant")

	// Environment variables
	viper.AutomaticEnv()
	viper.SetEnvPrefix("")

	// Map environment variables to nested config keys
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Default values
	setDefaults()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.http_port", 8080)

	// Bank provider defaults
	viper.SetDefault("bank.base_url", "https://api.withmono.com")
	viper.SetDefault("bank.secret_key", "")
	viper.SetDefault("bank.timeout", "15s")

	// Chain RPC defaults
	viper.SetDefault("chains.rpc_urls", map[string]string{
		"1":     "https://eth.llamarpc.com",
		"8453":  "https://mainnet.base.org",
		"42161": "https://arb1.arbitrum.io/rpc",
	})
	viper.SetDefault("chains.default_chain_id", 1)

	// Identity resolver defaults
	viper.SetDefault("identity.base_url", "https://api.ensideas.com")
	viper.SetDefault("identity.timeout", "10s")

	// Gemini defaults
	viper.SetDefault("gemini.api_key", "")
	viper.SetDefault("gemini.model", "gemini-1.5-flash")

	// Neo4J defaults
	viper.SetDefault("neo4j.uri", "neo4j://localhost:7687")
	viper.SetDefault("neo4j.username", "neo4j")
	viper.SetDefault("neo4j.password", "password")
	viper.SetDefault("neo4j.database", "neo4j")
	viper.SetDefault("neo4j.connect_timeout", "10s")
	viper.SetDefault("neo4j.max_connection_pool_size", 50)
	viper.SetDefault("neo4j.connection_acquisition_timeout", "60s")

	// NATS defaults
	viper.SetDefault("nats.url", "nats://localhost:4222")
	viper.SetDefault("nats.subject_prefix", "analytics")
	viper.SetDefault("nats.connect_timeout", "10s")
	viper.SetDefault("nats.reconnect_attempts", 5)
	viper.SetDefault("nats.reconnect_delay", "2s")
	viper.SetDefault("nats.enabled", true)

	// Bind env for secrets
	viper.BindEnv("bank.secret_key", "MONO_SECRET_KEY")
	viper.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	viper.BindEnv("nats.url", "NATS_URL")
}

// RPCURL returns the configured RPC endpoint for a chain id, if any
func (c *ChainsConfig) RPCURL(chainID int64) (string, bool) {
	url, ok := c.RPCURLs[strconv.FormatInt(chainID, 10)]
	return url, ok
}
