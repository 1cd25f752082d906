package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"mm_scanner/internal/domain"
	"mm_scanner/internal/domain/service/pricerule"
	"mm_scanner/internal/infrastructure/egress"
	"mm_scanner/pkg/errcodes"
)

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // skip

// Env всё, что читается из окружения.
type Env struct {
	App      App
	Crawler  Crawler
	Proxy    Proxy
	Alert    Alert
	Notify   Notify
	Postgres Postgres
	Redis    Redis
	Bot      Bot
	Server   Server
}

type App struct {
	Name     string `env:"APP_NAME" envDefault:"mm_scanner"`
	Version  string `env:"APP_VERSION" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogJSON  bool   `env:"LOG_JSON"`
}

type Server struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr     string        `env:"METRICS_ADDR" envDefault:":9090"`
	ProbeAddr       string        `env:"PROBE_ADDR" envDefault:":8081"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Config окружение плюс то, что из него вычислено: файлы, регулярки, прокси.
type Config struct {
	Env

	Proxies           []egress.Proxy
	Include           *regexp.Regexp
	Exclude           *regexp.Regexp
	MerchantBlacklist []string
	INNBlacklist      []string
	Cookie            string
	// nil, если файл категорий не задан
	PriceRules *pricerule.Registry
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var e Env

	if err := env.Parse(&e); err != nil {
		return Config{}, domain.WrapError(err, errcodes.ConfigError, "env.Parse")
	}

	return Resolve(e)
}

// Resolve проверяет окружение и подгружает всё, на что оно ссылается.
func Resolve(e Env) (Config, error) {
	if err := validate.Struct(e); err != nil {
		return Config{}, domain.WrapError(err, errcodes.ConfigError, "validate")
	}

	if err := e.check(); err != nil {
		return Config{}, err
	}

	cfg := Config{Env: e}

	var err error

	if cfg.Proxies, err = loadProxies(e.Proxy); err != nil {
		return Config{}, err
	}

	if cfg.Include, err = compileTitleRegex(e.Crawler.Include); err != nil {
		return Config{}, err
	}

	if cfg.Exclude, err = compileTitleRegex(e.Crawler.Exclude); err != nil {
		return Config{}, err
	}

	if cfg.MerchantBlacklist, err = readLines(e.Crawler.BlacklistFile); err != nil {
		return Config{}, err
	}

	if cfg.INNBlacklist, err = readLines(e.Crawler.INNBlacklistFile); err != nil {
		return Config{}, err
	}

	if cfg.Cookie, err = readCookie(e.Crawler.CookieFile); err != nil {
		return Config{}, err
	}

	if e.Crawler.CategoriesFile != "" {
		if cfg.PriceRules, err = pricerule.Load(e.Crawler.CategoriesFile); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

// check связи между переменными, которые теги validate не выражают.
func (e Env) check() error {
	if e.Crawler.AllCards && e.Crawler.NoCards {
		return domain.NewError(errcodes.ConfigError, "CRAWLER_ALL_CARDS and CRAWLER_NO_CARDS are mutually exclusive")
	}

	needRedis := e.Alert.Records == RecordsRedis || e.Notify.Mode == NotifyQueue
	if needRedis && e.Redis.Address == "" {
		return domain.NewError(errcodes.ConfigError, "REDIS_ADDRESS is required for redis alert records or queue notifications")
	}

	return nil
}

// compileTitleRegex совпадение ищется с начала заголовка.
func compileTitleRegex(expr string) (*regexp.Regexp, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil //nolint:nilnil
	}

	re, err := regexp.Compile("^(?:" + expr + ")")
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InvalidRegex, fmt.Sprintf("compile %q", expr))
	}

	return re, nil
}

func correctNewlines(s string) string {
	return strings.NewReplacer(`"`, "", `\n`, "\n").Replace(s)
}
