package utils

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Server configuration
	Port        string `yaml:"PORT"`
	LogLevel    string `yaml:"LOG_LEVEL"`
	CORSOrigins string `yaml:"CORS_ORIGINS"`
	Environment string `yaml:"ENVIRONMENT"`

	// Database configuration
	DBDriver   string `yaml:"DB_DRIVER"`
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`

	// JWT
	JWTSecret string `yaml:"JWT_SECRET"`

	// Mailing configuration
	AppURL           string `yaml:"APP_URL"`
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`

	// AWS S3 configuration
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`

	// Gemini API configuration
	GeminiAPIKey        string `yaml:"GEMINI_API_KEY"`
	GeminiModel         string `yaml:"GEMINI_MODEL"`
	GeminiReferenceURIs string `yaml:"GEMINI_REFERENCE_URIS"`

	// Headless CMS
	CMSURL      string `yaml:"CMS_URL"`
	CMSToken    string `yaml:"CMS_TOKEN"`
	CMSCacheTTL string `yaml:"CMS_CACHE_TTL"`

	// Redis (rate limiter storage, CMS cache)
	RedisAddr     string `yaml:"REDIS_ADDR"`
	RedisPassword string `yaml:"REDIS_PASSWORD"`
	RedisDB       string `yaml:"REDIS_DB"`

	// Web push
	VAPIDPublicKey  string `yaml:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `yaml:"VAPID_PRIVATE_KEY"`
	VAPIDSubject    string `yaml:"VAPID_SUBJECT"`

	// Error reporting
	SentryDSN string `yaml:"SENTRY_DSN"`
}

var (
	config     Config
	configOnce sync.Once
)

// LoadConfig reads config.yaml once. Environment variables (and a local .env)
// take precedence over the file.
func LoadConfig() {
	configOnce.Do(func() {
		_ = godotenv.Load()

		file, err := os.ReadFile("config.yaml")
		if err != nil {
			log.Printf("Error reading YAML file: %s\n", err)
		} else if err := yaml.Unmarshal(file, &config); err != nil {
			log.Printf("Error parsing YAML file: %s\n", err)
		}
	})
}

func GetConfig(key string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	switch key {
	case "PORT":
		return orDefault(config.Port, "8080")
	case "LOG_LEVEL":
		return orDefault(config.LogLevel, "info")
	case "CORS_ORIGINS":
		return config.CORSOrigins
	case "ENVIRONMENT":
		return orDefault(config.Environment, "development")
	case "DB_DRIVER":
		return orDefault(config.DBDriver, "postgres")
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "JWT_SECRET":
		return config.JWTSecret
	case "APP_URL":
		return config.AppURL
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	case "GEMINI_API_KEY":
		return config.GeminiAPIKey
	case "GEMINI_MODEL":
		return orDefault(config.GeminiModel, "gemini-2.5-flash")
	case "GEMINI_REFERENCE_URIS":
		return config.GeminiReferenceURIs
	case "CMS_URL":
		return config.CMSURL
	case "CMS_TOKEN":
		return config.CMSToken
	case "CMS_CACHE_TTL":
		return orDefault(config.CMSCacheTTL, "60")
	case "REDIS_ADDR":
		return config.RedisAddr
	case "REDIS_PASSWORD":
		return config.RedisPassword
	case "REDIS_DB":
		return orDefault(config.RedisDB, "0")
	case "VAPID_PUBLIC_KEY":
		return config.VAPIDPublicKey
	case "VAPID_PRIVATE_KEY":
		return config.VAPIDPrivateKey
	case "VAPID_SUBJECT":
		return orDefault(config.VAPIDSubject, "mailto:contato@cultivodobem.com.br")
	case "SENTRY_DSN":
		return config.SentryDSN
	default:
		return ""
	}
}

// GetConfigInt parses an integer setting, falling back to def.
func GetConfigInt(key string, def int) int {
	v := strings.TrimSpace(GetConfig(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// GetConfigList splits a comma separated setting.
func GetConfigList(key string) []string {
	raw := GetConfig(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
