package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	RedisAddr string
	RedisDB   int
	RedisPass string

	// MySQLDSN enables the delivery journal; empty means no journal.
	MySQLDSN string

	// SinkURL is the remote logging webhook; empty means delivery is a
	// warn-and-continue no-op.
	SinkURL       string
	SinkQueueSize int
	SinkRPS       int

	// ReviewPlatformURL is handed to high-rating submitters to open in a new
	// browsing context.
	ReviewPlatformURL string

	// ComplaintForwardURL, when set, forwards low-rating submissions to an
	// external handler; its failure is the only user-visible error.
	ComplaintForwardURL string

	NoticeTTL      time.Duration
	SessionTTL     time.Duration
	HandlerTimeout time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:              env("APP_ENV", "prod"),
		HTTPAddr:            env("HTTP_ADDR", ":8080"),
		MetricsAddr:         env("METRICS_ADDR", ":9100"),
		RedisAddr:           env("REDIS_ADDR", "localhost:6379"),
		RedisPass:           env("REDIS_PASSWORD", ""),
		RedisDB:             atoi("REDIS_DB", 0),
		MySQLDSN:            env("MYSQL_DSN", ""),
		SinkURL:             env("SINK_URL", ""),
		SinkQueueSize:       atoi("SINK_QUEUE_SIZE", 256),
		SinkRPS:             atoi("SINK_RPS", 20),
		ReviewPlatformURL:   env("REVIEW_PLATFORM_URL", ""),
		ComplaintForwardURL: env("COMPLAINT_FORWARD_URL", ""),
		NoticeTTL:           time.Duration(atoi("NOTICE_TTL_SECONDS", 5)) * time.Second,
		SessionTTL:          time.Duration(atoi("SESSION_TTL_SECONDS", 1800)) * time.Second,
		HandlerTimeout:      time.Duration(atoi("HANDLER_TIMEOUT_SECONDS", 15)) * time.Second,
	}
	if c.SinkURL == "" {
		log.Warn().Msg("SINK_URL is empty; deliveries will be skipped")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
