package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ridwanfathin/market-receipts-service/internal/extract"
)

// Storage drivers
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Text extractors
const (
	ExtractorNative    = extract.KindNative
	ExtractorPdftotext = extract.KindPdftotext
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port           int
	MaxWorkers     int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
	CORSOrigins    []string

	// Logging
	LogLevel  string
	LogFormat string

	// Persistence
	StorageDriver string
	DataDir       string
	PostgresURL   string

	// Text extraction
	PDFExtractor  string
	PdftotextPath string

	// Archive of uploaded receipts
	ArchiveEnabled    bool
	S3Endpoint        string
	S3AccessKeyID     string
	S3AccessKeySecret string
	S3Bucket          string
	S3Region          string

	// Currency conversion
	BaseCurrency   string
	CurrencyAPIURL string
}

// LoadConfig loads the application configuration from environment variables
func LoadConfig() (*Config, error) {
	// Get the executable directory
	execPath, err := os.Executable()
	if err != nil {
		log.Printf("Warning: Could not determine executable path: %v", err)
	}

	// Determine project root directory
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(execPath)))
	envPath := filepath.Join(projectRoot, ".env")

	// Load .env file if it exists
	if err := godotenv.Load(envPath); err != nil {
		// Try loading from current directory as fallback
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading .env file. Using environment variables.")
		} else {
			log.Println("Loaded environment variables from current directory .env file")
		}
	} else {
		log.Printf("Loaded environment variables from %s", envPath)
	}

	return FromEnv(), nil
}

// FromEnv builds the configuration from the current environment
func FromEnv() *Config {
	config := &Config{
		Port:           getEnvInt("PORT", 8080),
		MaxWorkers:     getEnvInt("MAX_WORKERS", 5),
		ReadTimeout:    getEnvDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getEnvDuration("WRITE_TIMEOUT", 60*time.Second),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		CORSOrigins:    getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		LogLevel:  getEnvString("LOG_LEVEL", "info"),
		LogFormat: getEnvString("LOG_FORMAT", "json"),

		StorageDriver: strings.ToLower(getEnvString("STORAGE_DRIVER", StorageFile)),
		DataDir:       getEnvString("DATA_DIR", "data"),
		PostgresURL:   os.Getenv("POSTGRES_DB_URL"),

		PDFExtractor:  strings.ToLower(getEnvString("PDF_EXTRACTOR", ExtractorNative)),
		PdftotextPath: getEnvString("PDFTOTEXT_PATH", "pdftotext"),

		ArchiveEnabled:    getEnvBool("ARCHIVE_ENABLED", false),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3AccessKeySecret: os.Getenv("S3_ACCESS_KEY_SECRET"),
		S3Bucket:          getEnvString("S3_BUCKET", "receipts"),
		S3Region:          getEnvString("S3_REGION", "us-east-1"),

		BaseCurrency:   strings.ToUpper(getEnvString("BASE_CURRENCY", "BRL")),
		CurrencyAPIURL: getEnvString("CURRENCY_API_URL", "https://api.frankfurter.dev/v1"),
	}

	validateConfig(config)
	return config
}

// validateConfig checks if critical configuration values are set and logs warnings if they're missing
func validateConfig(config *Config) {
	if config.MaxWorkers < 1 {
		log.Printf("Invalid value for MAX_WORKERS: %d, using 1", config.MaxWorkers)
		config.MaxWorkers = 1
	}

	switch config.StorageDriver {
	case StorageFile:
	case StoragePostgres:
		if config.PostgresURL == "" {
			log.Println("Warning: STORAGE_DRIVER is postgres but no POSTGRES_DB_URL provided. Storage will fail.")
		}
	default:
		log.Printf("Unknown STORAGE_DRIVER %q, using %s", config.StorageDriver, StorageFile)
		config.StorageDriver = StorageFile
	}

	switch config.PDFExtractor {
	case ExtractorNative, ExtractorPdftotext:
	default:
		log.Printf("Unknown PDF_EXTRACTOR %q, using %s", config.PDFExtractor, ExtractorNative)
		config.PDFExtractor = ExtractorNative
	}

	if config.ArchiveEnabled && (config.S3Endpoint == "" || config.S3AccessKeyID == "" || config.S3AccessKeySecret == "") {
		log.Println("Warning: ARCHIVE_ENABLED is set but S3 credentials are incomplete. Receipts will not be archived.")
	}
}

// getEnvInt gets an integer from an environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvBool gets a boolean from an environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	valueStr = strings.ToLower(valueStr)
	return valueStr == "true" || valueStr == "1" || valueStr == "yes"
}

// getEnvString gets a string from an environment variable with a default value
func getEnvString(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma-separated environment variable, dropping empty entries
func getEnvList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}

// getEnvDuration accepts either a Go duration ("45s") or a number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default: %s", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}
