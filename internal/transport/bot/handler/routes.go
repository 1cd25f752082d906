package handler

import (
	th "github.com/mymmrac/telego/telegohandler"

	"mm_scanner/internal/transport/bot/middleware"
)

func (h *Handler) RegisterRoutes(bh *th.BotHandler, adminID int64) {
	adminGroup := bh.Group(th.AnyMessage())
	adminGroup.Use(middleware.AdminOnly(adminID))

	adminGroup.HandleMessage(h.OnStart, th.CommandEqual("start"))
	adminGroup.HandleMessage(h.OnStatus, th.CommandEqual("status"))
	adminGroup.HandleMessage(h.OnStartScan, th.CommandEqual("startscan"))
	adminGroup.HandleMessage(h.OnStopScan, th.CommandEqual("stopscan"))
	adminGroup.HandleMessage(h.OnURLs, th.CommandEqual("urls"))
	adminGroup.HandleMessage(h.OnAddURL, th.CommandEqual("addurl"))
	adminGroup.HandleMessage(h.OnRemoveURL, th.CommandEqual("removeurl"))
	adminGroup.HandleMessage(h.OnProxies, th.CommandEqual("proxies"))
	adminGroup.HandleMessage(h.OnOffers, th.CommandEqual("offers"))
	adminGroup.HandleMessage(h.OnUnknown, th.AnyCommand())

	cbGroup := bh.Group(th.AnyCallbackQuery())
	cbGroup.Use(middleware.AdminOnly(adminID))

	cbGroup.HandleCallbackQuery(h.OnURLsPage, th.CallbackDataPrefix(urlsPagePrefix))
}
