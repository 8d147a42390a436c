// Package config loads and holds the application configuration.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Conf is the global configuration loaded from config.yaml.
var Conf Config

// Config mirrors the structure of config.yaml.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Embedding     EmbeddingConfig     `mapstructure:"embedding"`
	Rerank        RerankConfig        `mapstructure:"rerank"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Retriever     RetrieverConfig     `mapstructure:"retriever"`
	Language      LanguageConfig      `mapstructure:"language"`
	Memory        MemoryConfig        `mapstructure:"memory"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// DatabaseConfig groups all datastore connections.
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig holds the MySQL connection settings.
type MySQLConfig struct {
	DSN     string `mapstructure:"dsn"`
	Enabled bool   `mapstructure:"enabled"`
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
}

// KafkaConfig holds the ingestion queue settings.
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	Enabled bool   `mapstructure:"enabled"`
}

// MinIOConfig holds the object storage settings for async ingestion.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// ElasticsearchConfig holds the optional elastic retrieval backend settings.
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// EmbeddingConfig holds the embedding model settings.
type EmbeddingConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
}

// RerankConfig holds the pairwise relevance model settings.
type RerankConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// LLMConfig holds the text-completion service settings.
type LLMConfig struct {
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Model      string              `mapstructure:"model"`
	TimeoutSec int                 `mapstructure:"timeout_sec"`
	Generation LLMGenerationConfig `mapstructure:"generation"`
}

// LLMGenerationConfig holds optional generation parameters.
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// RetrieverConfig holds hybrid retrieval settings.
type RetrieverConfig struct {
	Backend        string  `mapstructure:"backend"` // "memory" or "elastic"
	ChunkSize      int     `mapstructure:"chunk_size"`
	ChunkOverlap   int     `mapstructure:"chunk_overlap"`
	SemanticWeight float64 `mapstructure:"semantic_weight"`
	ContextBudget  int     `mapstructure:"context_budget_chars"`
	TopK           int     `mapstructure:"top_k"`
}

// LanguageConfig holds language routing settings.
type LanguageConfig struct {
	Default   string `mapstructure:"default"`
	MinLength int    `mapstructure:"min_length"`
}

// MemoryConfig holds personalization memory settings.
type MemoryConfig struct {
	SessionWindow   int `mapstructure:"session_window"`
	LongTermWindow  int `mapstructure:"long_term_window"`
	WeakThreshold   int `mapstructure:"weak_threshold"`
	StrongThreshold int `mapstructure:"strong_threshold"`
}

// Init reads the YAML file at configPath and unmarshals it into Conf.
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("failed to read config file: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("failed to unmarshal config: %w", err))
	}
}
