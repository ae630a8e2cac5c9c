package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port         string   `env:"PORT" envDefault:"4000"`
	Env          string   `env:"APP_ENV" envDefault:"dev"`
	ClientOrigin []string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:3000" envSeparator:","`
	// PublicURL is this API's externally reachable origin, used for local media and dev action links.
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:4000"`
	// TrustedProxies lists the proxy IPs or CIDRs allowed to set X-Forwarded-For. Empty trusts none.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	SMTP           SMTPConfig
	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	MailFrom       string `env:"MAIL_FROM"`
	MailFromName   string `env:"MAIL_FROM_NAME" envDefault:"GlowNexa"`
	ContactTo      string `env:"CONTACT_TO_EMAIL"`

	ContactRateLimit  int           `env:"CONTACT_RATE_LIMIT" envDefault:"6"`
	ContactRateWindow time.Duration `env:"CONTACT_RATE_WINDOW" envDefault:"60s"`
	RedisURL          string        `env:"REDIS_URL"`

	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsJSON string `env:"FIREBASE_CREDENTIALS_JSON"`
	VerifyContinueURL       string `env:"VERIFY_CONTINUE_URL" envDefault:"https://glownexa.vercel.app/login"`
	ResetContinueURL        string `env:"RESET_CONTINUE_URL" envDefault:"https://glownexa.vercel.app/login"`
	JWTSecret               string `env:"JWT_SECRET"`

	DatabaseURL string `env:"DATABASE_URL"`

	Cloudinary    CloudinaryConfig
	MediaStore    string `env:"MEDIA_STORE"`
	LocalMediaDir string `env:"LOCAL_MEDIA_DIR" envDefault:"./data/media"`
	AWSRegion     string `env:"AWS_REGION"`
	S3Bucket      string `env:"S3_BUCKET"`
	S3Prefix      string `env:"S3_PREFIX"`
	S3PublicURL   string `env:"S3_PUBLIC_BASE_URL"`
	SSEKMSKeyID   string `env:"SSE_KMS_KEY_ID"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
}

// SMTPConfig describes the outbound SMTP relay.
type SMTPConfig struct {
	Host   string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	Port   int    `env:"SMTP_PORT" envDefault:"587"`
	Secure bool   `env:"SMTP_SECURE" envDefault:"false"`
	User   string `env:"SMTP_USER"`
	Pass   string `env:"SMTP_PASS"`
}

// CloudinaryConfig holds media hosting credentials. URL takes precedence
// over the individual fields when set.
type CloudinaryConfig struct {
	URL       string `env:"CLOUDINARY_URL"`
	CloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `env:"CLOUDINARY_API_KEY"`
	APISecret string `env:"CLOUDINARY_API_SECRET"`
}

// Enabled reports whether any Cloudinary credentials were supplied.
func (c CloudinaryConfig) Enabled() bool {
	return c.URL != "" || (c.CloudName != "" && c.APIKey != "" && c.APISecret != "")
}

// Load reads configuration from environment variables with sensible defaults.
// Local .env files are loaded first and never override the process environment.
func Load() (Config, error) {
	loadEnvFiles(".env", ".env.local", "cmd/.env")
	return parse(env.Options{})
}

// FromMap builds a Config from an explicit environment, ignoring the process.
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.ClientOrigin = splitAndTrim(strings.Join(cfg.ClientOrigin, ","))
	cfg.TrustedProxies = splitAndTrim(strings.Join(cfg.TrustedProxies, ","))
	cfg.MediaStore = normalizeStoreType(cfg.MediaStore, cfg)
	cfg.PublicURL = strings.TrimRight(strings.TrimSpace(cfg.PublicURL), "/")
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTP.User
	}
	if cfg.ContactRateWindow <= 0 {
		return Config{}, fmt.Errorf("parse config: CONTACT_RATE_WINDOW must be positive")
	}
	return cfg, nil
}

func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		// Missing files are expected outside local development.
		_ = godotenv.Load(path)
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string, cfg Config) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cloudinary":
		return "cloudinary"
	case "s3":
		return "s3"
	case "local":
		return "local"
	}
	switch {
	case cfg.Cloudinary.Enabled():
		return "cloudinary"
	case cfg.S3Bucket != "":
		return "s3"
	default:
		return "local"
	}
}
