package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64
	RateLimitRPS   int
	RateLimitBurst int

	// Patient API
	PatientAPIKey          string
	PatientAPIBaseURL      string
	PatientAPITimeout      time.Duration
	PatientAPIRPS          float64
	PatientAPIBurst        int
	PatientAPITokenURL     string
	PatientAPIClientID     string
	PatientAPIClientSecret string

	// Retry policy
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration

	// Fetch defaults
	FetchDefaultLimit    int
	FetchDefaultMaxPages int

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers           []string
	KafkaGroupID           string
	AssessmentRequestTopic string
	AssessmentResultTopic  string

	// Assessment
	AssessmentStoreEnabled  bool
	AssessmentCacheEnabled  bool
	AssessmentEventsEnabled bool
	AssessmentCacheTTL      time.Duration
	AssessmentRetention     time.Duration
}

// Load reads configuration from the environment. When CONFIG_FILE points at a
// YAML document of KEY: value pairs, those values are used as fallbacks for
// variables that are not set in the environment.
func Load() (*Config, error) {
	src, err := newSource(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:     src.getEnv("SERVER_PORT", "8080"),
		ServerHost:     src.getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    src.getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   src.getDuration("WRITE_TIMEOUT", 5*time.Minute),
		MaxRequestBody: int64(src.getIntEnv("MAX_REQUEST_BODY_BYTES", 1024*1024)),
		RateLimitRPS:   src.getIntEnv("RATE_LIMIT_RPS", 20),
		RateLimitBurst: src.getIntEnv("RATE_LIMIT_BURST", 40),

		PatientAPIKey:          src.getEnv("PATIENT_API_KEY", ""),
		PatientAPIBaseURL:      src.getEnv("PATIENT_API_BASE_URL", "https://assessment.ksensetech.com/api"),
		PatientAPITimeout:      src.getDuration("PATIENT_API_TIMEOUT", 15*time.Second),
		PatientAPIRPS:          src.getFloatEnv("PATIENT_API_RPS", 0),
		PatientAPIBurst:        src.getIntEnv("PATIENT_API_BURST", 1),
		PatientAPITokenURL:     src.getEnv("PATIENT_API_TOKEN_URL", ""),
		PatientAPIClientID:     src.getEnv("PATIENT_API_CLIENT_ID", ""),
		PatientAPIClientSecret: src.getEnv("PATIENT_API_CLIENT_SECRET", ""),

		RetryMaxAttempts: src.getIntEnv("RETRY_MAX_ATTEMPTS", 5),
		RetryBaseDelay:   src.getDuration("RETRY_BASE_DELAY", 300*time.Millisecond),
		RetryMaxDelay:    src.getDuration("RETRY_MAX_DELAY", 4*time.Second),

		FetchDefaultLimit:    src.getIntEnv("FETCH_DEFAULT_LIMIT", 5),
		FetchDefaultMaxPages: src.getIntEnv("FETCH_DEFAULT_MAX_PAGES", 10),

		PostgresHost:     src.getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     src.getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     src.getEnv("POSTGRES_USER", "riskwatch"),
		PostgresPassword: src.getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       src.getEnv("POSTGRES_DB", "riskwatch"),
		PostgresSSLMode:  src.getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     src.getEnv("REDIS_HOST", "localhost"),
		RedisPort:     src.getEnv("REDIS_PORT", "6379"),
		RedisPassword: src.getEnv("REDIS_PASSWORD", ""),
		RedisDB:       src.getIntEnv("REDIS_DB", 0),

		KafkaBrokers:           src.getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:           src.getEnv("KAFKA_GROUP_ID", "riskwatch-assessment"),
		AssessmentRequestTopic: src.getEnv("ASSESSMENT_REQUEST_TOPIC", "assessment.requested"),
		AssessmentResultTopic:  src.getEnv("ASSESSMENT_RESULT_TOPIC", "assessment.results"),

		AssessmentStoreEnabled:  src.getBoolEnv("ASSESSMENT_STORE_ENABLED", false),
		AssessmentCacheEnabled:  src.getBoolEnv("ASSESSMENT_CACHE_ENABLED", false),
		AssessmentEventsEnabled: src.getBoolEnv("ASSESSMENT_EVENTS_ENABLED", false),
		AssessmentCacheTTL:      src.getDuration("ASSESSMENT_CACHE_TTL", 30*time.Minute),
		AssessmentRetention:     src.getDuration("ASSESSMENT_RETENTION", 30*24*time.Hour),
	}, nil
}

// source resolves a key from the environment first and the optional file second.
type source struct {
	file map[string]string
}

func newSource(path string) (*source, error) {
	src := &source{file: map[string]string{}}
	if path == "" {
		return src, nil
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			continue
		case []interface{}:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, fmt.Sprint(item))
			}
			src.file[strings.ToUpper(key)] = strings.Join(parts, ",")
		default:
			src.file[strings.ToUpper(key)] = fmt.Sprint(v)
		}
	}

	return src, nil
}

func (s *source) lookup(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return s.file[key]
}

func (s *source) getEnv(key, defaultValue string) string {
	if value := s.lookup(key); value != "" {
		return value
	}
	return defaultValue
}

func (s *source) getIntEnv(key string, defaultValue int) int {
	if value := s.lookup(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (s *source) getFloatEnv(key string, defaultValue float64) float64 {
	if value := s.lookup(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func (s *source) getBoolEnv(key string, defaultValue bool) bool {
	if value := s.lookup(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func (s *source) getStringSliceEnv(key string, defaultValue []string) []string {
	value := s.lookup(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func (s *source) getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := s.lookup(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
