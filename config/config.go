package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultCategoryImagesSubDir = "category_images"
)

const (
	defaultCodeLength      = 8
	defaultCodeMaxUses     = 2
	defaultResultsTopN     = 5
	defaultMailQueueSize   = 100
	defaultNumMailWorkers  = 4
	defaultJWTExpiryHours  = 24
	defaultCategoryImgSize = 1200
)

type Config struct {
	// http server
	ListenAddr         string
	CORSAllowedOrigins []string

	// database path
	DatabasePath string

	// media storage configuration
	MediaStoragePath   string // primary root for uploaded assets
	CategoryImagesPath string // full-calculated path for category images

	// maximum size (longest side) of the stored web variant of a category image
	CategoryImageMaxSize int

	// voting code settings
	CodeLength      int
	DefaultCodeUses int

	// results settings
	ResultsTopN int

	// admin auth
	JWTSecret          string
	JWTExpirationHours int

	// invitation delivery (Mailgun)
	MailgunAPIKey   string
	MailgunDomain   string
	MailgunSender   string
	MailgunTemplate string
	VoteBaseURL     string // prefix the code is appended to in invitation mails

	// mail worker settings
	MailQueueSize  int
	NumMailWorkers int
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "voting.db")

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	categoryImagesSubDir := getEnvOrDefault("CATEGORY_IMAGES_SUBDIR", DefaultCategoryImagesSubDir)
	absCategoryImagesPath := filepath.Join(absMediaStorage, categoryImagesSubDir)

	origins := strings.Split(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}

	cfg := Config{
		ListenAddr:           ":" + getEnvOrDefault("PORT", "8080"),
		CORSAllowedOrigins:   origins,
		DatabasePath:         dbPath,
		MediaStoragePath:     absMediaStorage,
		CategoryImagesPath:   absCategoryImagesPath,
		CategoryImageMaxSize: getEnvIntOrDefault("CATEGORY_IMAGE_MAX_SIZE", defaultCategoryImgSize),
		CodeLength:           getEnvIntOrDefault("CODE_LENGTH", defaultCodeLength),
		DefaultCodeUses:      getEnvIntOrDefault("DEFAULT_CODE_MAX_USES", defaultCodeMaxUses),
		ResultsTopN:          getEnvIntOrDefault("RESULTS_TOP_N", defaultResultsTopN),
		JWTSecret:            jwtSecret,
		JWTExpirationHours:   getEnvIntOrDefault("JWT_EXPIRATION_HOURS", defaultJWTExpiryHours),
		MailgunAPIKey:        os.Getenv("MAILGUN_API_KEY"),
		MailgunDomain:        os.Getenv("MAILGUN_DOMAIN"),
		MailgunSender:        os.Getenv("MAILGUN_SENDER"),
		MailgunTemplate:      getEnvOrDefault("MAILGUN_TEMPLATE", "voting-invitation"),
		VoteBaseURL:          getEnvOrDefault("VOTE_BASE_URL", "http://localhost:5173/vote/"),
		MailQueueSize:        getEnvIntOrDefault("MAIL_QUEUE_SIZE", defaultMailQueueSize),
		NumMailWorkers:       getEnvIntOrDefault("NUM_MAIL_WORKERS", defaultNumMailWorkers),
	}

	return cfg, nil
}
