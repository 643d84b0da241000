package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Environment string // ENV: production, development, etc.
	Port        string
	LogLevel    string

	MongoURI      string
	MongoDatabase string
	RedisURI      string // empty disables the history cache and Redis rate limiting

	Host           string   // Raw HOST env (e.g. https://api.mindhaven.app)
	AllowedHost    string   // Hostname only for strict host check (production only)
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	TrustProxy     bool     // honour X-Forwarded-For for client IPs

	FirebaseProjectID  string
	FirebaseCertsURL   string
	KeyRefreshSchedule string // cron spec for refreshing identity provider keys

	ResponderURL     string
	ResponderTimeout time.Duration

	GoogleFitBaseURL string
	EncryptionKey    string // base64 32 bytes; seals cached fitness OAuth tokens

	MediaAPIURL string
	MediaAPIKey string

	AffirmationsAPIURL string
	AffirmationsAPIKey string
	AffirmationsListID string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

const defaultCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:8080")

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = bareHost(host)
	}

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" && !containsOrigin(allowedOrigins, u) {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		Environment: env,
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		MongoURI:      getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/mindhaven")),
		MongoDatabase: getEnv("MONGODB_DATABASE", ""),
		RedisURI:      getEnv("REDIS_URI", ""),

		Host:           host,
		AllowedHost:    allowedHost,
		AllowedOrigins: allowedOrigins,
		TrustProxy:     getBool("TRUST_PROXY", false),

		FirebaseProjectID:  getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCertsURL:   getEnv("FIREBASE_CERTS_URL", defaultCertsURL),
		KeyRefreshSchedule: getEnv("KEY_REFRESH_SCHEDULE", "@every 1h"),

		ResponderURL:     getEnv("RESPONDER_URL", "http://localhost:5000"),
		ResponderTimeout: getDuration("RESPONDER_TIMEOUT", 30*time.Second),

		GoogleFitBaseURL: getEnv("GOOGLE_FIT_BASE_URL", "https://www.googleapis.com/fitness/v1"),
		EncryptionKey:    getEnv("ENCRYPTION_KEY", ""),

		MediaAPIURL: getEnv("MEDIA_API_URL", ""),
		MediaAPIKey: getEnv("MEDIA_API_KEY", ""),

		AffirmationsAPIURL: getEnv("AFFIRMATIONS_API_URL", ""),
		AffirmationsAPIKey: getEnv("AFFIRMATIONS_API_KEY", ""),
		AffirmationsListID: getEnv("AFFIRMATIONS_LIST_ID", ""),

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
	}
}

// bareHost strips scheme, path and port from a URL-ish host string.
func bareHost(host string) string {
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// RedisEnabled reports whether a Redis URI was configured.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisURI) != ""
}

// CloudinaryEnabled reports whether all Cloudinary credentials are present.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
