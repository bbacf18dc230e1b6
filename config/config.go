package config

import "github.com/caarlos0/env/v6"

type Config struct {
	Server struct {
		Port         int    `env:"SERVER_PORT" envDefault:"5250"`
		AllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	}

	Database struct {
		Path string `env:"DATABASE_PATH" envDefault:"database/hdb_resale.db"`
	}

	Import struct {
		// Path to the HDB resale CSV drop
		DataFile string `env:"DATA_FILE_PATH" envDefault:"database/data/hdb_resale_data.csv"`

		// Maximum number of records per batch pushed to the queue
		MaxBatchSize int `env:"IMPORT_BATCH_SIZE" envDefault:"1000"`

		// Queue buffer size in batches
		QueueSize int `env:"IMPORT_QUEUE_SIZE" envDefault:"16"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"IMPORT_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"IMPORT_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"IMPORT_RETRY_DELAY" envDefault:"5"`
	}

	Analytics struct {
		// Recent window length for the overall statistics comparison
		RecentWindowMonths int `env:"ANALYTICS_RECENT_MONTHS" envDefault:"12"`
	}

	Telegram struct {
		BotToken  string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID    string `env:"TELEGRAM_CHAT_ID"`
		IsEnabled bool   `env:"TELEGRAM_ENABLED" envDefault:"false"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
