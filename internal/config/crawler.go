package config

import "time"

type Crawler struct {
	URLs           []string      `env:"CRAWLER_URLS,required" envSeparator:"," validate:"min=1,dive,url"`
	Threads        int           `env:"CRAWLER_THREADS" envDefault:"0" validate:"gte=0"`
	Delay          time.Duration `env:"CRAWLER_DELAY" envDefault:"1.8s"`
	ErrorDelay     time.Duration `env:"CRAWLER_ERROR_DELAY" envDefault:"10s"`
	Attempts       int           `env:"CRAWLER_ATTEMPTS" envDefault:"10" validate:"gte=1"`
	BackoffUnit    time.Duration `env:"CRAWLER_BACKOFF_UNIT" envDefault:"1s"`
	RequestTimeout time.Duration `env:"CRAWLER_REQUEST_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	MaxRPS         float64       `env:"CRAWLER_MAX_RPS" envDefault:"0" validate:"gte=0"`
	MaxRedirects   int           `env:"CRAWLER_MAX_REDIRECTS" envDefault:"3" validate:"gte=0"`
	Retention      time.Duration `env:"CRAWLER_RETENTION" envDefault:"24h"`
	CyclePause     time.Duration `env:"CRAWLER_CYCLE_PAUSE" envDefault:"0s"`

	Include          string `env:"CRAWLER_INCLUDE"`
	Exclude          string `env:"CRAWLER_EXCLUDE"`
	BlacklistFile    string `env:"CRAWLER_BLACKLIST_FILE"`
	INNBlacklistFile string `env:"CRAWLER_MERCHANT_INN_BLACKLIST_FILE"`
	AllCards         bool   `env:"CRAWLER_ALL_CARDS"`
	NoCards          bool   `env:"CRAWLER_NO_CARDS"`
	Address          string `env:"CRAWLER_ADDRESS"`
	CookieFile       string `env:"CRAWLER_COOKIE_FILE"`
	CategoriesFile   string `env:"CRAWLER_CATEGORIES_FILE"`
	LogHTTP          bool   `env:"CRAWLER_LOG_HTTP"`
	LogFieldMaxLen   int    `env:"CRAWLER_LOG_FIELD_MAX_LEN" envDefault:"2048"`
}

// ThreadsFor число воркеров: 0 значит по размеру пула.
func (c Crawler) ThreadsFor(poolSize int) int {
	if c.Threads > 0 {
		return c.Threads
	}

	return poolSize
}

type Proxy struct {
	List        []string `env:"PROXY_LIST" envSeparator:","`
	File        string   `env:"PROXY_FILE"`
	AllowDirect bool     `env:"PROXY_ALLOW_DIRECT"`
}
