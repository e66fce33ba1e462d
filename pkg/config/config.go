package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	GigaChat   GigaChatConfig
	Ingest     IngestConfig
	Recurrence RecurrenceConfig
	Forecast   ForecastConfig
	Logger     LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	InsecureSkipVerify bool
}

type IngestConfig struct {
	// MaxBatchSize caps how many raw messages one import call may carry.
	MaxBatchSize int
}

type RecurrenceConfig struct {
	// Tuned thresholds: a group is rejected when any amount (or interval)
	// deviates from its mean by more than this many standard deviations.
	AmountDeviationSigma   float64
	IntervalDeviationSigma float64
	MinOccurrences         int
}

type ForecastConfig struct {
	// LookbackDays bounds how much history feeds the daily averages.
	LookbackDays int
	// BufferLookbackDays bounds the monthly aggregates behind the
	// emergency-buffer recommendation.
	BufferLookbackDays int
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// A missing .env is fine; plain environment variables work for Docker/K8s.

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	maxBatch, _ := strconv.Atoi(getEnv("INGEST_MAX_BATCH_SIZE", "200"))
	amountSigma, _ := strconv.ParseFloat(getEnv("RECURRENCE_AMOUNT_SIGMA", "1.5"), 64)
	intervalSigma, _ := strconv.ParseFloat(getEnv("RECURRENCE_INTERVAL_SIGMA", "1.5"), 64)
	minOccurrences, _ := strconv.Atoi(getEnv("RECURRENCE_MIN_OCCURRENCES", "2"))
	lookbackDays, _ := strconv.Atoi(getEnv("FORECAST_LOOKBACK_DAYS", "30"))
	bufferLookbackDays, _ := strconv.Atoi(getEnv("BUFFER_LOOKBACK_DAYS", "90"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "finpulse"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Ingest: IngestConfig{
			MaxBatchSize: maxBatch,
		},
		Recurrence: RecurrenceConfig{
			AmountDeviationSigma:   amountSigma,
			IntervalDeviationSigma: intervalSigma,
			MinOccurrences:         minOccurrences,
		},
		Forecast: ForecastConfig{
			LookbackDays:       lookbackDays,
			BufferLookbackDays: bufferLookbackDays,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
