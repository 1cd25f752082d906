package config

import "time"

const (
	RecordsPostgres = "postgres"
	RecordsRedis    = "redis"
	RecordsMemory   = "memory"

	NotifyDirect = "direct"
	NotifyQueue  = "queue"
)

type Alert struct {
	MinPrice           *float64      `env:"ALERT_MIN_PRICE"`
	MaxPrice           *float64      `env:"ALERT_MAX_PRICE"`
	MaxPriceAfterBonus *float64      `env:"ALERT_MAX_PRICE_AFTER_BONUS"`
	MinBonusAmount     *float64      `env:"ALERT_MIN_BONUS_AMOUNT"`
	MinBonusPercent    *float64      `env:"ALERT_MIN_BONUS_PERCENT"`
	RepeatWindow       time.Duration `env:"ALERT_REPEAT_WINDOW" envDefault:"0s"`
	Records            string        `env:"ALERT_RECORDS" envDefault:"postgres" validate:"oneof=postgres redis memory"`
}

type Notify struct {
	Mode       string `env:"NOTIFY_MODE" envDefault:"direct" validate:"oneof=direct queue"`
	BufferSize int    `env:"NOTIFY_BUFFER_SIZE" envDefault:"256" validate:"gte=1"`
	Queue      string `env:"NOTIFY_QUEUE" envDefault:"notifications"`
}
