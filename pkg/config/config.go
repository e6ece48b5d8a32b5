package config

import (
	"strings"

	"github.com/spf13/viper"
)

// App holds runtime configuration derived from env vars or files.
type App struct {
	DatabaseDriver string
	DatabaseURL    string
	KafkaBrokers   string
	KafkaTopic     string
	RedisAddr      string

	APIPort     string
	Environment string
	LogLevel    string
	LogEncoding string
	CORSOrigins []string

	Dispatch Dispatch
	Mail     Mail
}

// Dispatch configures the dispatch engine and its scheduled trigger.
type Dispatch struct {
	Cron            string
	Timezone        string
	Workers         int
	RecipientPolicy string
}

// Mail configures the outbound delivery transport.
type Mail struct {
	Transport    string // smtp | http | log
	From         string
	Subject      string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	RelayURL     string
	TimeoutMs    int
}

var defaults = map[string]any{
	"DATABASE_DRIVER":   "mysql",
	"KAFKA_TOPIC":       "delivery-outcomes",
	"API_PORT":          "8080",
	"ENVIRONMENT":       "production",
	"LOG_LEVEL":         "info",
	"LOG_ENCODING":      "json",
	"CORS_ORIGINS":      "*",
	"DISPATCH_CRON":     "0 8 * * *",
	"DISPATCH_TIMEZONE": "UTC",
	"DISPATCH_WORKERS":  4,
	"RECIPIENT_POLICY":  "linked",
	"MAIL_TRANSPORT":    "log",
	"MAIL_FROM":         "noreply@example.com",
	"MAIL_SUBJECT":      "Event Reminder",
	"SMTP_PORT":         587,
	"MAIL_TIMEOUT_MS":   5000,
}

// FromEnv loads the application configuration from environment variables.
func FromEnv() App {
	return fromViper(newViper())
}

// Load reads the YAML file at path (when non-empty) and applies environment overrides on top.
// File keys use the same names as the environment variables, in any case.
func Load(path string) (App, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return App{}, err
		}
	}
	return fromViper(v), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return v
}

func fromViper(v *viper.Viper) App {
	return App{
		DatabaseDriver: v.GetString("DATABASE_DRIVER"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		KafkaBrokers:   v.GetString("KAFKA_BROKERS"),
		KafkaTopic:     v.GetString("KAFKA_TOPIC"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		APIPort:        v.GetString("API_PORT"),
		Environment:    v.GetString("ENVIRONMENT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogEncoding:    v.GetString("LOG_ENCODING"),
		CORSOrigins:    getCORSOrigins(v.GetString("CORS_ORIGINS")),
		Dispatch: Dispatch{
			Cron:            v.GetString("DISPATCH_CRON"),
			Timezone:        v.GetString("DISPATCH_TIMEZONE"),
			Workers:         v.GetInt("DISPATCH_WORKERS"),
			RecipientPolicy: v.GetString("RECIPIENT_POLICY"),
		},
		Mail: Mail{
			Transport:    v.GetString("MAIL_TRANSPORT"),
			From:         v.GetString("MAIL_FROM"),
			Subject:      v.GetString("MAIL_SUBJECT"),
			SMTPHost:     v.GetString("SMTP_HOST"),
			SMTPPort:     v.GetInt("SMTP_PORT"),
			SMTPUsername: v.GetString("SMTP_USERNAME"),
			SMTPPassword: v.GetString("SMTP_PASSWORD"),
			RelayURL:     v.GetString("MAIL_RELAY_URL"),
			TimeoutMs:    v.GetInt("MAIL_TIMEOUT_MS"),
		},
	}
}

// KafkaBrokerList splits the comma separated broker string.
func (a App) KafkaBrokerList() []string {
	return splitList(a.KafkaBrokers)
}

func getCORSOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}
	return splitList(raw)
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
