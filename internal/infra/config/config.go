package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	Webhook struct {
		URL     string        `envconfig:"WEBHOOK_URL"`
		Timeout time.Duration `envconfig:"WEBHOOK_TIMEOUT" default:"60s"`
	} `envconfig:""`

	Relay struct {
		RemoteURL string        `envconfig:"RELAY_REMOTE_URL"`
		Path      string        `envconfig:"RELAY_PATH" default:"/api/proxy"`
		CORS      bool          `envconfig:"RELAY_CORS" default:"true"`
		Timeout   time.Duration `envconfig:"RELAY_TIMEOUT" default:"30s"`
		MaxBody   int64         `envconfig:"RELAY_MAX_BODY" default:"1048576"`
	} `envconfig:""`

	Telegram struct {
		Token      string `envconfig:"TG_BOT_TOKEN"`
		WebhookURL string `envconfig:"TG_WEBHOOK_URL"`
	} `envconfig:""`

	Wizard struct {
		RestartPolicy              string `envconfig:"WIZARD_RESTART_POLICY" default:"overwrite"`
		AdvanceOnEnrichmentFailure bool   `envconfig:"WIZARD_ADVANCE_ON_ENRICHMENT_FAILURE" default:"true"`
	} `envconfig:""`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string        `envconfig:"REDIS_ADDR"`
	StateTTL  time.Duration `envconfig:"STATE_TTL" default:"24h"`

	Events struct {
		Driver   string `envconfig:"EVENTS_DRIVER" default:"none"`
		RedisKey string `envconfig:"EVENTS_REDIS_KEY" default:"post_submitted"`
		AMQPURL  string `envconfig:"AMQP_URL"`
		Exchange string `envconfig:"AMQP_EXCHANGE" default:"social_posts"`
	} `envconfig:""`

	Web struct {
		AllowedOrigins []string `envconfig:"WEB_ALLOWED_ORIGINS"`
		HistoryLimit   int      `envconfig:"WEB_HISTORY_LIMIT" default:"50"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения. Файл .env, если он есть, читается первым.
func Load() AppConfig {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// Parse читает конфиг и возвращает ошибку вместо завершения процесса.
func Parse() (AppConfig, error) {
	_ = godotenv.Load()
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
