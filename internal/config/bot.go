package config

type Bot struct {
	Token           string `env:"BOT_TOKEN,required" json:"-"`
	ChatID          int64  `env:"BOT_CHAT_ID,required"`
	ArbitrageChatID int64  `env:"BOT_ARBITRAGE_CHAT_ID"`
	AdminID         int64  `env:"BOT_ADMIN_ID"`
	Debug           bool   `env:"BOT_DEBUG"`
}
