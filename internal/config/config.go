package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL   PostgreSQLConfig
	Redis        RedisConfig
	Server       ServerConfig
	Catalog      CatalogConfig
	Conversation ConversationConfig
	Parser       ParserConfig
	Ranking      RankingConfig
	Events       EventsConfig
	Logging      LoggingConfig
	OpenAI       OpenAIConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration.
// Saved and comparison lists fall back to memory when no DSN and no host is set.
type PostgreSQLConfig struct {
	DSN                string
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// RedisConfig holds the optional Redis connection used for conversation state
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
	StaticDir      string // optional built frontend served for non-API paths
}

// CatalogConfig points at the static property records
type CatalogConfig struct {
	DataDir        string
	VocabularyFile string // optional YAML override for the location vocabulary
}

// ConversationConfig bounds the per-session follow-up state
type ConversationConfig struct {
	TTL          time.Duration
	MaxSessions  int
	HistoryTurns int
}

// ParserConfig holds lexical parser tuning
type ParserConfig struct {
	// ThousandsThreshold: bare prices below this value are read as thousands ("under 500" -> 500000).
	ThousandsThreshold float64
}

// RankingConfig holds weights used to pick the preview listings
type RankingConfig struct {
	WeightPrice    float64
	WeightBedrooms float64
	PreviewCount   int
}

// EventsConfig holds the optional Kafka analytics sink
type EventsConfig struct {
	KafkaBroker string
	Topic       string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// OpenAIConfig holds configuration of the OpenAI-compatible text generation delegate
type OpenAIConfig struct {
	APIKey          string
	APIBase         string
	ChatModel       string
	ChatTemperature float64
	ChatTopP        float64
	ChatMaxTokens   int
	ChatExtraBody   string // JSON string for extra_body (e.g., {"chat_template_kwargs":{"thinking":false}})
	Timeout         int
	Enabled         bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", ""),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "property_chat"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("PORT", 5001),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization,X-Session-ID"),
			StaticDir:      getEnv("STATIC_DIR", ""),
		},
		Catalog: CatalogConfig{
			DataDir:        getEnv("CATALOG_DATA_DIR", "./data"),
			VocabularyFile: getEnv("LOCATION_VOCABULARY_FILE", ""),
		},
		Conversation: ConversationConfig{
			TTL:          getEnvAsDuration("CONVERSATION_TTL", 30*time.Minute),
			MaxSessions:  getEnvAsInt("CONVERSATION_MAX_SESSIONS", 10000),
			HistoryTurns: getEnvAsInt("CONVERSATION_HISTORY_TURNS", 6),
		},
		Parser: ParserConfig{
			ThousandsThreshold: getEnvAsFloat("PARSER_THOUSANDS_THRESHOLD", 10000),
		},
		Ranking: RankingConfig{
			WeightPrice:    getEnvAsFloat("RANK_WEIGHT_PRICE", 0.6),
			WeightBedrooms: getEnvAsFloat("RANK_WEIGHT_BEDROOMS", 0.4),
			PreviewCount:   getEnvAsInt("RANK_PREVIEW_COUNT", 3),
		},
		Events: EventsConfig{
			KafkaBroker: getEnv("KAFKA_BROKER", ""),
			Topic:       getEnv("KAFKA_SEARCH_TOPIC", "property.chat.searches"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		OpenAI: OpenAIConfig{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			APIBase:         getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ChatModel:       getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.2),
			ChatTopP:        getEnvAsFloat("OPENAI_CHAT_TOP_P", 0.7),
			ChatMaxTokens:   getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 1024),
			ChatExtraBody:   getEnv("OPENAI_CHAT_EXTRA_BODY", ""),
			Timeout:         getEnvAsInt("OPENAI_TIMEOUT", 30),
		},
	}
	cfg.OpenAI.Enabled = cfg.OpenAI.APIKey != "" && cfg.OpenAI.APIKey != "your_api_key_here"

	if cfg.Parser.ThousandsThreshold < 0 {
		return nil, fmt.Errorf("PARSER_THOUSANDS_THRESHOLD must not be negative, got %v", cfg.Parser.ThousandsThreshold)
	}
	if cfg.Conversation.HistoryTurns <= 0 {
		cfg.Conversation.HistoryTurns = 6
	}

	return cfg, nil
}

// HasPostgreSQL reports whether a database was configured
func (c *Config) HasPostgreSQL() bool {
	return c.PostgreSQL.DSN != "" || c.PostgreSQL.Host != ""
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// DebugEnabled reports whether [DEBUG] log lines should be written
func (c *Config) DebugEnabled() bool {
	return c.Logging.Level == "debug"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}
