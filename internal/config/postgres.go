package config

import "time"

// Postgres хранит таблицу offers и, при ALERT_RECORDS=postgres, записи уведомлений.
type Postgres struct {
	DSN             string        `env:"PG_DSN,notEmpty" json:"-"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"5" validate:"gte=0"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"10" validate:"gte=1"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"1m"`
}
