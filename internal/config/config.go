package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type AppConfig struct {
	Port string

	DatabaseURL string

	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	MailFrom         string
	AdminNotifyEmail string

	// Empty means rate-limit counters stay in process memory.
	RedisURL string

	// local | sftp
	UploadBackend      string
	UploadDir          string
	UploadMaxDimension int
	UploadQuality      int

	SFTPHost string
	SFTPPort int
	SFTPUser string
	SFTPPass string
	SFTPRoot string

	JWTSecret string
	JWTExpiry time.Duration

	RateLimitRPS   int
	AllowedOrigins []string
	// CIDRs of reverse proxies whose X-Forwarded-For is believed. Empty means
	// the client address is the TCP peer.
	TrustedProxies []string

	// Development settings
	DevMode bool

	PoolSize        int
	PoolRecycle     time.Duration
	PoolPrePing     bool
	ConnectTimeout  time.Duration
	ApplicationName string
}

func Load() AppConfig {
	cfg := AppConfig{}
	cfg.Port = getenv("PORT", "5000")
	cfg.DatabaseURL = getenv("DATABASE_URL", defaultPgURL())

	cfg.SMTPHost = getenv("SMTP_HOST", "")
	cfg.SMTPPort = getenvInt("SMTP_PORT", 587)
	cfg.SMTPUser = getenv("SMTP_USER", "")
	cfg.SMTPPass = getenv("SMTP_PASS", "")
	cfg.MailFrom = getenv("MAIL_FROM", cfg.SMTPUser)
	cfg.AdminNotifyEmail = getenv("ADMIN_NOTIFY_EMAIL", cfg.SMTPUser)

	cfg.RedisURL = getenv("REDIS_URL", "")

	cfg.UploadBackend = strings.ToLower(getenv("UPLOAD_BACKEND", "local"))
	cfg.UploadDir = getenv("UPLOAD_DIR", "uploads")
	cfg.UploadMaxDimension = getenvInt("UPLOAD_MAX_DIMENSION", 1920)
	cfg.UploadQuality = getenvInt("UPLOAD_QUALITY", 80)

	cfg.SFTPHost = getenv("SFTP_HOST", "")
	cfg.SFTPPort = getenvInt("SFTP_PORT", 22)
	cfg.SFTPUser = getenv("SFTP_USER", "")
	cfg.SFTPPass = getenv("SFTP_PASS", "")
	cfg.SFTPRoot = getenv("SFTP_ROOT", "/uploads")

	cfg.JWTSecret = getenv("JWT_SECRET", "change-this-jwt-secret-in-production")
	cfg.JWTExpiry = time.Duration(getenvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour

	cfg.RateLimitRPS = getenvInt("RATE_LIMIT_RPS", 20)
	cfg.AllowedOrigins = getenvList("ALLOWED_ORIGINS", []string{"*"})
	cfg.TrustedProxies = getenvList("TRUSTED_PROXIES", nil)

	cfg.DevMode = getenvBool("DEV_MODE", false)

	cfg.PoolSize = getenvInt("DB_POOL_SIZE", 25)
	cfg.PoolRecycle = time.Duration(getenvInt("DB_POOL_RECYCLE_SECONDS", 300)) * time.Second
	cfg.PoolPrePing = getenvBool("DB_POOL_PREPING", true)
	cfg.ConnectTimeout = time.Duration(getenvInt("DB_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second
	cfg.ApplicationName = getenv("DB_APPLICATION_NAME", "travel_backend")
	return cfg
}

// MailEnabled reports whether an SMTP relay is configured.
func (c AppConfig) MailEnabled() bool {
	return c.SMTPHost != ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		_, _ = fmt.Sscanf(v, "%d", &n)
		if n != 0 {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func getenvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func defaultPgURL() string {
	user := getenv("POSTGRES_USER", "postgres")
	pass := getenv("POSTGRES_PASSWORD", "postgres")
	host := getenv("POSTGRES_HOST", "localhost")
	port := getenv("POSTGRES_PORT", "5432")
	db := getenv("POSTGRES_DB", "travel")
	return "postgresql://" + user + ":" + pass + "@" + host + ":" + port + "/" + db
}
