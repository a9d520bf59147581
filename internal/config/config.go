package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Pending store backends selectable through PENDING_STORE.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreDynamo = "dynamo"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	AllowedOrigins []string // CORS allowed origins
	TrustProxy     bool     // honour X-Forwarded-For / X-Real-IP from a fronting proxy

	PendingStore     string
	VerificationTTL  time.Duration
	ExpiredRetention time.Duration // how long an expired record stays readable as "expired"
	SweepInterval    time.Duration

	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	SMTPFrom         string
	SMTPPartnersFrom string
	MailSendTimeout  time.Duration
	OperatorEmail    string
	OperatorPhone    string // optional; enables SMS alerts for builder applications

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	SNSRegion      string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	PendingRegistrations string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "5000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustProxy:     getEnvBool("TRUST_PROXY", false),

		PendingStore:     strings.ToLower(getEnv("PENDING_STORE", StoreMemory)),
		VerificationTTL:  getEnvDuration("VERIFICATION_TTL", 10*time.Minute),
		ExpiredRetention: getEnvDuration("EXPIRED_RETENTION", time.Hour),
		SweepInterval:    getEnvDuration("SWEEP_INTERVAL", time.Minute),

		SMTPHost:         getEnv("SMTP_HOST", "localhost"),
		SMTPPort:         getEnvInt("SMTP_PORT", 1025),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:         getEnv("SMTP_FROM", `"Nebula Forge Security" <no-reply@nebulaforge.sg>`),
		SMTPPartnersFrom: getEnv("SMTP_PARTNERS_FROM", `"Nebula Forge Marketplace" <partners@nebulaforge.sg>`),
		MailSendTimeout:  getEnvDuration("MAIL_SEND_TIMEOUT", 15*time.Second),
		OperatorEmail:    getEnv("OPERATOR_EMAIL", "operator@nebulaforge.sg"),
		OperatorPhone:    getEnv("OPERATOR_PHONE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AWSRegion:      getEnv("AWS_REGION", "ap-southeast-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			PendingRegistrations: getEnv("DYNAMO_TABLE_PENDING_REGISTRATIONS", "pending_registrations"),
		},
		SNSRegion: getEnv("SNS_REGION", "ap-southeast-1"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s", "10m").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
