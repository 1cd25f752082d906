package handler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"mm_scanner/internal/transport/bot/view"
	"mm_scanner/internal/worker"
	"mm_scanner/pkg/logx"
)

const (
	urlsPagePrefix = "urls_page:"
	lastOffers     = 10
)

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.StartMessage)
}

func (h *Handler) OnUnknown(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.UnknownCommand)
}

func (h *Handler) OnStatus(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.Status(h.scanner.Status(), len(h.pool.Snapshot())))
}

func (h *Handler) OnStartScan(ctx *th.Context, msg telego.Message) error {
	err := h.scanner.Start(h.baseCtx)

	switch {
	case errors.Is(err, worker.ErrAlreadyRunning):
		return h.sendHTML(ctx, msg.Chat.ID, view.AlreadyRunning)
	case err != nil:
		return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf("❌ Ошибка запуска сканера: %v", err))
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.ScannerStarted)
}

func (h *Handler) OnStopScan(ctx *th.Context, msg telego.Message) error {
	if !h.scanner.IsRunning() {
		return h.sendHTML(ctx, msg.Chat.ID, view.NotRunning)
	}

	h.scanner.Stop()

	return h.sendHTML(ctx, msg.Chat.ID, view.ScannerStopped)
}

func (h *Handler) OnAddURL(ctx *th.Context, msg telego.Message) error {
	rawURL, ok := commandArg(msg.Text)
	if !ok {
		return h.sendHTML(ctx, msg.Chat.ID, view.AddURLUsage)
	}

	if !IsCatalogURL(rawURL) {
		return h.sendHTML(ctx, msg.Chat.ID, view.InvalidURL)
	}

	if !h.scanner.AddURL(rawURL) {
		return h.sendHTML(ctx, msg.Chat.ID, view.URLExists(rawURL))
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.URLAdded(rawURL))
}

func (h *Handler) OnRemoveURL(ctx *th.Context, msg telego.Message) error {
	rawURL, ok := commandArg(msg.Text)
	if !ok {
		return h.sendHTML(ctx, msg.Chat.ID, view.RemoveURLUsage)
	}

	if !h.scanner.RemoveURL(rawURL) {
		return h.sendHTML(ctx, msg.Chat.ID, view.URLNotFound(rawURL))
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.URLRemoved(rawURL))
}

func (h *Handler) OnURLs(ctx *th.Context, msg telego.Message) error {
	urls := h.scanner.ListURLs()
	text, page := view.URLsPage(urls, 1)

	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:      tu.ID(msg.Chat.ID),
		Text:        text,
		ParseMode:   telego.ModeHTML,
		ReplyMarkup: paginationKeyboard(page, view.TotalPages(len(urls))),
	})

	return err
}

func (h *Handler) OnProxies(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.Proxies(h.pool.Snapshot(), time.Now()))
}

func (h *Handler) OnOffers(ctx *th.Context, msg telego.Message) error {
	offers, err := h.offers.List(ctx, lastOffers, true)
	if err != nil {
		logger(ctx).Error("offers.List", logx.Error(err))
		return h.sendHTML(ctx, msg.Chat.ID, view.OffersError)
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.Offers(offers))
}

// OnURLsPage листание списка URL. Формат данных: "urls_page:<номер>".
func (h *Handler) OnURLsPage(ctx *th.Context, query telego.CallbackQuery) error {
	page, ok := ParsePage(query.Data)
	if !ok {
		return ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID))
	}

	urls := h.scanner.ListURLs()
	text, page := view.URLsPage(urls, page)

	if query.Message != nil {
		_, err := ctx.Bot().EditMessageText(ctx, &telego.EditMessageTextParams{
			ChatID:      tu.ID(query.Message.GetChat().ID),
			MessageID:   query.Message.GetMessageID(),
			Text:        text,
			ParseMode:   telego.ModeHTML,
			ReplyMarkup: paginationKeyboard(page, view.TotalPages(len(urls))),
		})
		// та же страница: Telegram отвечает "message is not modified"
		if err != nil {
			logger(ctx).Debug("edit urls page", logx.Error(err))
		}
	}

	return ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID))
}

func paginationKeyboard(page, totalPages int) *telego.InlineKeyboardMarkup {
	var buttons []telego.InlineKeyboardButton

	if page > 1 {
		buttons = append(buttons, tu.InlineKeyboardButton("⬅️").
			WithCallbackData(fmt.Sprintf("%s%d", urlsPagePrefix, page-1)))
	}

	buttons = append(buttons, tu.InlineKeyboardButton(fmt.Sprintf("%d / %d", page, totalPages)).
		WithCallbackData("noop"))

	if page < totalPages {
		buttons = append(buttons, tu.InlineKeyboardButton("➡️").
			WithCallbackData(fmt.Sprintf("%s%d", urlsPagePrefix, page+1)))
	}

	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(buttons...),
	)
}

// ParsePage номер страницы из callback data.
func ParsePage(data string) (int, bool) {
	var page int

	if _, err := fmt.Sscanf(data, urlsPagePrefix+"%d", &page); err != nil || page < 1 {
		return 0, false
	}

	return page, true
}

// commandArg первый аргумент команды: "/addurl https://..." -> "https://...".
func commandArg(text string) (string, bool) {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return "", false
	}

	return parts[1], true
}

// IsCatalogURL абсолютная ссылка на megamarket.
func IsCatalogURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")

	return host == "megamarket.ru" || strings.HasSuffix(host, ".megamarket.ru")
}

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    tu.ID(chatID),
		Text:      text,
		ParseMode: telego.ModeHTML,
	})

	return err
}
