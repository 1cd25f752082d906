package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/zap"

	"mm_scanner/internal/domain/entity"
	"mm_scanner/pkg/logx"
)

// подпись к фото в Telegram ограничена 1024 символами
const maxCaptionLen = 1024

// Chats куда слать уведомления каждого канала.
type Chats struct {
	Default   int64
	Arbitrage int64
}

func (c Chats) For(channel entity.Channel) int64 {
	if channel == entity.ChannelArbitrage && c.Arbitrage != 0 {
		return c.Arbitrage
	}

	return c.Default
}

// NewBot клиент Bot API. Внутренний лог telego идёт в zap, без debug он выключен.
func NewBot(token string, debug bool) (*telego.Bot, error) {
	zl := zap.NewNop()

	if debug {
		var err error

		zl, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("zap.NewDevelopment: %w", err)
		}
	}

	bot, err := telego.NewBot(token, telego.WithLogger(zl.Sugar()))
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return bot, nil
}

type TelegramBot struct {
	bot   *telego.Bot
	chats Chats
}

func NewTelegramBot(bot *telego.Bot, chats Chats) *TelegramBot {
	return &TelegramBot{
		bot:   bot,
		chats: chats,
	}
}

// Run доставляет уведомления из канала до его закрытия.
func (b *TelegramBot) Run(ctx context.Context, notifications <-chan Notification) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-notifications:
			if !ok {
				return nil
			}

			if err := b.Deliver(ctx, n.Offer, n.Hint); err != nil {
				logger(ctx).Error("failed to send offer",
					slog.String(logx.FieldGoodsID, n.Offer.GoodsID), logx.Error(err))
			}
		}
	}
}

// Deliver фото с подписью, если есть картинка; иначе или при ошибке фото обычный текст.
func (b *TelegramBot) Deliver(ctx context.Context, offer entity.Offer, hint entity.ChannelHint) error {
	chatID := b.chats.For(hint.Channel)
	if chatID == 0 {
		return nil
	}

	text := FormatOffer(offer, hint)

	if offer.ImageURL != "" && len([]rune(text)) <= maxCaptionLen {
		photo := tu.Photo(tu.ID(chatID), tu.FileFromURL(offer.ImageURL)).
			WithCaption(text).
			WithParseMode(telego.ModeHTML)

		_, err := b.bot.SendPhoto(ctx, photo)
		if err == nil {
			return nil
		}

		logger(ctx).Warn("send photo failed, falling back to text", logx.Error(err))
	}

	msg := tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeHTML)

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// SendText отправляет простое текстовое сообщение в основной чат.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	if b.chats.Default == 0 {
		return nil
	}

	msg := tu.Message(tu.ID(b.chats.Default), text)

	_, err := b.bot.SendMessage(ctx, msg)

	return err
}
