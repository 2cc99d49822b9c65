package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port        int    `json:"port"`
	Environment string `json:"environment"`

	// Remote Secretaría API
	APIBaseURL string        `json:"sg_api_base_url"`
	APITimeout time.Duration `json:"sg_api_timeout"`

	// Redis configuration
	RedisURI      string `json:"redis_uri"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`

	// Redis cluster configuration
	RedisClusterEnabled bool     `json:"redis_cluster_enabled"`
	RedisClusterAddrs   []string `json:"redis_cluster_addrs"`

	// Session configuration
	SessionTTL        time.Duration `json:"session_ttl"`
	SessionSigningKey string        `json:"-"`

	// Login throttling, per username
	LoginAttemptsPerMinute int `json:"login_attempts_per_minute"`

	// MongoDB configuration
	MongoURI           string `json:"mongo_uri"`
	MongoDatabase      string `json:"mongo_database"`
	AuditLogCollection string `json:"mongo_audit_log_collection"`

	// Audit logging configuration
	AuditLogsEnabled bool `json:"audit_logs_enabled"`
	AuditWorkerCount int  `json:"audit_worker_count"`
	AuditBufferSize  int  `json:"audit_buffer_size"`

	// Tracing configuration
	TracingEnabled     bool    `json:"tracing_enabled"`
	TracingEndpoint    string  `json:"tracing_endpoint"`
	TracingSampleRatio float64 `json:"tracing_sample_ratio"`

	// Portal rules
	ReviewerRoleThreshold int      `json:"reviewer_role_threshold"`
	CORSAllowOrigins      []string `json:"cors_allow_origins"`
	UploadMaxBytes        int64    `json:"upload_max_bytes"`
}

var (
	AppConfig *Config
)

// LoadConfig loads configuration from environment variables
func LoadConfig() error {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	// The remote API base URL has no sensible default
	apiBaseURL := strings.TrimRight(os.Getenv("SG_API_BASE_URL"), "/")
	if apiBaseURL == "" {
		return fmt.Errorf("SG_API_BASE_URL environment variable is required")
	}

	apiTimeout, err := time.ParseDuration(getEnvOrDefault("SG_API_TIMEOUT", "30s"))
	if err != nil {
		return fmt.Errorf("invalid SG_API_TIMEOUT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	sessionTTL, err := time.ParseDuration(getEnvOrDefault("SESSION_TTL", "8h"))
	if err != nil {
		return fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	signingKey := os.Getenv("SESSION_SIGNING_KEY")
	if signingKey == "" {
		return fmt.Errorf("SESSION_SIGNING_KEY environment variable is required")
	}

	reviewerThreshold, err := strconv.Atoi(getEnvOrDefault("REVIEWER_ROLE_THRESHOLD", "200"))
	if err != nil {
		return fmt.Errorf("invalid REVIEWER_ROLE_THRESHOLD: %w", err)
	}

	uploadMaxBytes, err := strconv.ParseInt(getEnvOrDefault("UPLOAD_MAX_BYTES", "10485760"), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid UPLOAD_MAX_BYTES: %w", err)
	}

	tracingSampleRatio, err := strconv.ParseFloat(getEnvOrDefault("TRACING_SAMPLE_RATIO", "1"), 64)
	if err != nil {
		return fmt.Errorf("invalid TRACING_SAMPLE_RATIO: %w", err)
	}

	redisClusterEnabled := getEnvAsBoolOrDefault("REDIS_CLUSTER_ENABLED", false)
	redisClusterAddrs := splitList(os.Getenv("REDIS_CLUSTER_ADDRS"))
	if redisClusterEnabled && len(redisClusterAddrs) == 0 {
		return fmt.Errorf("REDIS_CLUSTER_ADDRS is required when REDIS_CLUSTER_ENABLED=true")
	}

	AppConfig = &Config{
		// Server configuration
		Port:        port,
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),

		// Remote API
		APIBaseURL: apiBaseURL,
		APITimeout: apiTimeout,

		// Redis configuration
		RedisURI:      getEnvOrDefault("REDIS_URI", "localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		RedisClusterEnabled: redisClusterEnabled,
		RedisClusterAddrs:   redisClusterAddrs,

		// Session configuration
		SessionTTL:        sessionTTL,
		SessionSigningKey: signingKey,

		LoginAttemptsPerMinute: getEnvAsIntOrDefault("LOGIN_ATTEMPTS_PER_MINUTE", 10),

		// MongoDB configuration
		MongoURI:           getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:      getEnvOrDefault("MONGODB_DATABASE", "portal_sg"),
		AuditLogCollection: getEnvOrDefault("MONGODB_AUDIT_LOG_COLLECTION", "audit_logs"),

		// Audit logging configuration
		AuditLogsEnabled: getEnvAsBoolOrDefault("AUDIT_LOGS_ENABLED", true),
		AuditWorkerCount: getEnvAsIntOrDefault("AUDIT_WORKER_COUNT", 2),
		AuditBufferSize:  getEnvAsIntOrDefault("AUDIT_BUFFER_SIZE", 1000),

		// Tracing configuration
		TracingEnabled:     getEnvAsBoolOrDefault("TRACING_ENABLED", false),
		TracingEndpoint:    getEnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),
		TracingSampleRatio: tracingSampleRatio,

		// Portal rules
		ReviewerRoleThreshold: reviewerThreshold,
		CORSAllowOrigins:      splitList(getEnvOrDefault("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		UploadMaxBytes:        uploadMaxBytes,
	}

	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the integer value of an environment variable,
// or the default when unset or unparsable
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvAsBoolOrDefault returns the boolean value of an environment variable,
// or the default when unset or unparsable
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
