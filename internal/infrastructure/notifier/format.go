package notifier

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"mm_scanner/internal/domain/entity"
)

// FormatOffer HTML-текст уведомления о сделке.
func FormatOffer(offer entity.Offer, hint entity.ChannelHint) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "🛍 <b>Товар:</b> <a href=\"%s\">%s</a>\n", html.EscapeString(offer.URL), html.EscapeString(offer.Title))
	fmt.Fprintf(&sb, "💰 <b>Цена:</b> %s₽\n", money(offer.Price))
	fmt.Fprintf(&sb, "💸 <b>Цена-Бонусы:</b> %s₽\n", money(offer.PriceAfterBonus()))
	fmt.Fprintf(&sb, "🟢 <b>Бонусы:</b> %s\n", money(offer.BonusAmount))
	fmt.Fprintf(&sb, "🔢 <b>Процент Бонусов:</b> %d\n", offer.BonusPercent())

	if profit, ok := hint.Profit(offer); ok {
		fmt.Fprintf(&sb, "💰 <b>Цена перекупа:</b> %s₽\n", money(*hint.ReferencePrice))
		fmt.Fprintf(&sb, "💰 <b>Выгода:</b> %s₽\n", money(profit))

		if hint.RuleStatus != "" {
			fmt.Fprintf(&sb, "🟢 <b>Статус закупки:</b> %s\n", html.EscapeString(hint.RuleStatus))
		}
	}

	available := "?"
	if offer.AvailableQuantity > 0 {
		available = strconv.Itoa(offer.AvailableQuantity)
	}

	fmt.Fprintf(&sb, "✅ <b>Доступно:</b> %s\n", available)

	if offer.DeliveryDate != "" {
		fmt.Fprintf(&sb, "📦 <b>Доставка:</b> %s\n", html.EscapeString(offer.DeliveryDate))
	}

	fmt.Fprintf(&sb, "🛒 <b>Продавец:</b> %s", html.EscapeString(offer.MerchantName))

	if offer.MerchantRating != nil {
		fmt.Fprintf(&sb, " %s⭐", strconv.FormatFloat(*offer.MerchantRating, 'f', -1, 64))
	}

	return sb.String()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
