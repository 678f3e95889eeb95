// Package config loads runtime configuration from environment variables.
// Required variables are enforced at startup; a missing value is a fatal
// error because the service cannot run in a half-configured state.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	StripeSecretKey     string // Stripe API secret key
	StripeWebhookSecret string // Stripe webhook signing secret

	SiteURL         string // public site origin for checkout redirects
	SiteName        string // display name used on payment pages and emails
	ReferencePrefix string // prefix for booking/order references

	RabbitURL string // AMQP broker URL (optional; emails disabled when empty)

	SMTPHost       string // SMTP server host (optional)
	SMTPPort       int    // SMTP server port
	SMTPUser       string // SMTP username
	SMTPPass       string // SMTP password
	EmailFrom      string // sender address for customer emails
	NotificationTo string // staff inbox for contact form messages
}

// Load reads configuration from the environment.  Required variables are
// enforced by must(); optional integrations (broker, SMTP) default to empty
// and are skipped at wiring time.
func Load() Config {
	return Config{
		Env:  getenv("APP_ENV", "dev"),
		Port: must("APP_PORT"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		StripeSecretKey:     must("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: must("STRIPE_WEBHOOK_SECRET"),

		SiteURL:         must("SITE_URL"),
		SiteName:        getenv("SITE_NAME", "Rutland Farm Park"),
		ReferencePrefix: getenv("REFERENCE_PREFIX", "RFP"),

		RabbitURL: os.Getenv("RABBITMQ_URL"),

		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       envInt("SMTP_PORT", 587),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
		EmailFrom:      os.Getenv("EMAIL_FROM"),
		NotificationTo: os.Getenv("NOTIFICATION_TO"),
	}
}

// must retrieves a required environment variable.  If the variable is unset
// or empty the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
