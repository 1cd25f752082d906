package view

import (
	"fmt"
	"html"
	"strings"
	"time"

	"mm_scanner/internal/domain/entity"
	"mm_scanner/internal/infrastructure/egress"
	"mm_scanner/internal/worker"
)

const URLsPerPage = 10

const StartMessage = `👋 <b>mm_scanner</b>

/status состояние сканера
/startscan запустить обход
/stopscan остановить обход
/urls список URL
/addurl <code>URL</code> добавить URL
/removeurl <code>URL</code> удалить URL
/proxies состояние прокси
/offers последние уведомления`

const (
	AddURLUsage    = "❌ Использование: /addurl <code>URL</code>"
	RemoveURLUsage = "❌ Использование: /removeurl <code>URL</code>"
	InvalidURL     = "❌ Это не похоже на ссылку megamarket"
	ScannerStarted = "🟢 Сканер запущен"
	ScannerStopped = "🔴 Сканер остановлен"
	AlreadyRunning = "⚠️ Сканер уже запущен"
	NotRunning     = "⚠️ Сканер не запущен"
	OffersError    = "❌ Не удалось получить предложения"
	URLsEmpty      = "📋 <b>Список URL пуст</b>\n\nДобавить: /addurl <code>URL</code>"
	OffersEmpty    = "📭 Уведомлений пока нет"
	UnknownCommand = "🤷 Неизвестная команда, список команд: /start"
)

func Status(s worker.Status, proxies int) string {
	state := "🔴 остановлен"
	if s.Running {
		state = "🟢 работает"
	}

	last := "ещё не было"
	if !s.LastCycleAt.IsZero() {
		last = fmt.Sprintf("%s (%s)", s.LastCycleAt.Format(time.DateTime), s.LastTook.Round(time.Second))
	}

	return fmt.Sprintf(`📊 <b>Статус</b>

🔍 <b>Сканер:</b> %s
📦 <b>URL:</b> %d
🌐 <b>Прокси:</b> %d
🔁 <b>Циклов:</b> %d
⏱ <b>Последний цикл:</b> %s`, state, s.URLs, proxies, s.Cycles, last)
}

func URLAdded(rawURL string) string {
	return fmt.Sprintf("✅ Добавлен: <code>%s</code>", html.EscapeString(rawURL))
}

func URLExists(rawURL string) string {
	return fmt.Sprintf("⚠️ Уже в списке: <code>%s</code>", html.EscapeString(rawURL))
}

func URLRemoved(rawURL string) string {
	return fmt.Sprintf("✅ Удалён: <code>%s</code>", html.EscapeString(rawURL))
}

func URLNotFound(rawURL string) string {
	return fmt.Sprintf("⚠️ Не найден: <code>%s</code>", html.EscapeString(rawURL))
}

// TotalPages число страниц списка, минимум одна.
func TotalPages(n int) int {
	return max((n+URLsPerPage-1)/URLsPerPage, 1)
}

// URLsPage страница списка URL; номер страницы приводится к допустимому.
func URLsPage(urls []string, page int) (string, int) {
	if len(urls) == 0 {
		return URLsEmpty, 1
	}

	total := TotalPages(len(urls))
	page = min(max(page, 1), total)

	start := (page - 1) * URLsPerPage
	end := min(start+URLsPerPage, len(urls))

	var sb strings.Builder

	fmt.Fprintf(&sb, "📋 <b>URL (%d)</b> стр. %d/%d\n\n", len(urls), page, total)

	for i, u := range urls[start:end] {
		fmt.Fprintf(&sb, "%d. <code>%s</code>\n", start+i+1, html.EscapeString(u))
	}

	return sb.String(), page
}

func Proxies(states []egress.ProxyState, now time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "🌐 <b>Прокси (%d)</b>\n\n", len(states))

	for _, s := range states {
		mark := "🟢"

		switch {
		case s.Busy:
			mark = "🟡"
		case s.UsableAt.After(now):
			mark = "⏳"
		}

		fmt.Fprintf(&sb, "%s <code>%s</code> ✅%d 🚫%d ❌%d\n",
			mark, html.EscapeString(s.ID), s.Successes, s.RateLimits, s.Failures)
	}

	return sb.String()
}

func Offers(offers []entity.Offer) string {
	if len(offers) == 0 {
		return OffersEmpty
	}

	var sb strings.Builder

	sb.WriteString("🛍 <b>Последние уведомления</b>\n\n")

	for _, o := range offers {
		fmt.Fprintf(&sb, "• <a href=\"%s\">%s</a> %s₽ 🟢%d%%\n",
			html.EscapeString(o.URL), html.EscapeString(o.Title), formatPrice(o.Price), o.BonusPercent())
	}

	return sb.String()
}

func formatPrice(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
