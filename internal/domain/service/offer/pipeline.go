package offer

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"

	"mm_scanner/internal/domain/entity"
	"mm_scanner/internal/domain/value"
	"mm_scanner/pkg/logx"
)

const (
	innCacheTTL     = 24 * time.Hour
	innCacheCleanup = time.Hour
)

// Статусы предложений для метрик.
const (
	StatusFiltered     = "filtered"
	StatusUnavailable  = "unavailable"
	StatusNotCandidate = "not_candidate"
	StatusBlacklisted  = "blacklisted"
	StatusStored       = "stored"
	StatusDuplicate    = "duplicate"
	StatusError        = "error"
)

type CatalogAPI interface {
	FetchOfferList(ctx context.Context, goodsID string) ([]entity.MerchantOffer, error)
	MerchantINN(ctx context.Context, merchantID string) (string, error)
}

type Gate interface {
	Admit(ctx context.Context, candidate entity.Offer, referencePrice *float64) (bool, error)
}

type Store interface {
	Exists(ctx context.Context, key entity.NotificationKey) (bool, error)
	// Insert false, если ключ уже занят: проверка и вставка атомарны в хранилище.
	Insert(ctx context.Context, offer entity.Offer) (bool, error)
}

// Sink получатель уведомлений. Ошибки доставки остаются внутри Sink.
type Sink interface {
	Publish(ctx context.Context, offer entity.Offer, hint entity.ChannelHint)
}

type PriceRuleEvaluator interface {
	Evaluate(title string, attributes value.Attributes) (*float64, string)
}

type Observer interface {
	ObserveOffer(status string)
	ObserveAlert(channel string)
}

type nopObserver struct{}

func (nopObserver) ObserveOffer(string) {}
func (nopObserver) ObserveAlert(string) {}

type Options struct {
	Include           *regexp.Regexp
	Exclude           *regexp.Regexp
	MerchantBlacklist []string
	INNBlacklist      []string
	AllCards          bool
	NoCards           bool
	MinBonusPercent   *float64
}

type Pipeline struct {
	api      CatalogAPI
	gate     Gate
	store    Store
	sink     Sink
	rules    PriceRuleEvaluator
	observer Observer
	opts     Options
	now      func() time.Time

	merchantBlacklist map[string]struct{}
	innBlacklist      map[string]struct{}
	innCache          *cache.Cache
}

type PipelineOption func(*Pipeline)

func WithObserver(observer Observer) PipelineOption {
	return func(p *Pipeline) {
		if observer != nil {
			p.observer = observer
		}
	}
}

func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.now = now
	}
}

func NewPipeline(
	api CatalogAPI,
	gate Gate,
	store Store,
	sink Sink,
	rules PriceRuleEvaluator,
	opts Options,
	options ...PipelineOption,
) *Pipeline {
	toSet := func(items []string) map[string]struct{} {
		trimmed := lo.Compact(lo.Map(items, func(item string, _ int) string {
			return strings.TrimSpace(item)
		}))

		return lo.SliceToMap(trimmed, func(item string) (string, struct{}) {
			return item, struct{}{}
		})
	}

	p := &Pipeline{
		api:               api,
		gate:              gate,
		store:             store,
		sink:              sink,
		rules:             rules,
		observer:          nopObserver{},
		opts:              opts,
		now:               time.Now,
		merchantBlacklist: toSet(opts.MerchantBlacklist),
		innBlacklist:      toSet(opts.INNBlacklist),
		innCache:          cache.New(innCacheTTL, innCacheCleanup),
	}

	for _, option := range options {
		option(p)
	}

	return p
}

// ProcessPage обрабатывает товары страницы и сообщает, есть ли смысл идти дальше:
// последний товар страницы ещё в наличии.
func (p *Pipeline) ProcessPage(ctx context.Context, listing entity.Listing, page entity.Page) bool {
	for _, item := range page.Items {
		if ctx.Err() != nil {
			break
		}

		p.processItem(ctx, listing, item)
	}

	return page.LastItemAvailable()
}

func (p *Pipeline) processItem(ctx context.Context, listing entity.Listing, item entity.CatalogItem) {
	title := item.Goods.Title

	if !p.titleAllowed(title) {
		p.observer.ObserveOffer(StatusFiltered)
		return
	}

	if !item.IsAvailable {
		p.observer.ObserveOffer(StatusUnavailable)
		return
	}

	ref, status := p.rules.Evaluate(title, item.Goods.Attributes)
	hint := hintFor(ref, status)

	if !p.isCandidate(item.FavoriteOffer, ref) {
		p.observer.ObserveOffer(StatusNotCandidate)
		return
	}

	if !p.expand(listing, item) {
		p.handleOffer(ctx, favoriteToOffer(item, p.now()), hint)
		return
	}

	log := logger(ctx).With(slog.String(logx.FieldGoodsID, item.Goods.GoodsID))
	log.InfoContext(ctx, "fetching offers", slog.String(logx.FieldTitle, title))

	offers, err := p.api.FetchOfferList(ctx, item.Goods.GoodsID)
	if err != nil {
		log.ErrorContext(ctx, "fetch offer list", logx.Error(err))
		p.observer.ObserveOffer(StatusError)

		return
	}

	for _, mo := range offers {
		p.handleOffer(ctx, merchantToOffer(item.Goods, mo, p.now()), hint)
	}
}

// ProcessCard карточка товара: все предложения продавцов без фильтра кандидатов.
func (p *Pipeline) ProcessCard(ctx context.Context, goods entity.Goods, offers []entity.MerchantOffer) {
	ref, status := p.rules.Evaluate(goods.Title, goods.Attributes)
	hint := hintFor(ref, status)

	for _, mo := range offers {
		if ctx.Err() != nil {
			return
		}

		p.handleOffer(ctx, merchantToOffer(goods, mo, p.now()), hint)
	}
}

func (p *Pipeline) titleAllowed(title string) bool {
	if p.opts.Exclude != nil && p.opts.Exclude.MatchString(title) {
		return false
	}

	return p.opts.Include == nil || p.opts.Include.MatchString(title)
}

func (p *Pipeline) isCandidate(fo entity.FavoriteOffer, ref *float64) bool {
	if ref != nil {
		return fo.FinalPrice-fo.BonusAmount < *ref
	}

	if p.opts.MinBonusPercent == nil {
		return true
	}

	return float64(entity.BonusPercent(fo.FinalPrice, fo.BonusAmount)) >= *p.opts.MinBonusPercent
}

func (p *Pipeline) expand(listing entity.Listing, item entity.CatalogItem) bool {
	if p.opts.AllCards {
		return true
	}

	return !p.opts.NoCards &&
		(item.HasOtherOffers || item.OfferCount > 1 || listing.Type == entity.ListingTypeListing)
}

func (p *Pipeline) handleOffer(ctx context.Context, offer entity.Offer, hint entity.ChannelHint) {
	log := logger(ctx).With(
		slog.String(logx.FieldGoodsID, offer.GoodsID),
		slog.String(logx.FieldMerchantID, offer.MerchantID),
	)

	if p.blacklisted(ctx, offer) {
		log.DebugContext(ctx, "merchant skipped: "+offer.MerchantName)
		p.observer.ObserveOffer(StatusBlacklisted)

		return
	}

	admitted, err := p.gate.Admit(ctx, offer, hint.ReferencePrice)
	if err != nil {
		log.ErrorContext(ctx, "gate admit", logx.Error(err))
	}

	offer.Notified = admitted

	p.save(ctx, log, offer)

	if !admitted {
		return
	}

	log.InfoContext(ctx, "deal found",
		slog.String(logx.FieldTitle, offer.Title),
		slog.Float64(logx.FieldPrice, offer.Price),
		slog.String(logx.FieldChannel, string(hint.Channel)),
	)

	p.sink.Publish(ctx, offer, hint)
	p.observer.ObserveAlert(string(hint.Channel))
}

func (p *Pipeline) save(ctx context.Context, log *slog.Logger, offer entity.Offer) {
	exists, err := p.store.Exists(ctx, offer.Key())
	if err != nil {
		log.ErrorContext(ctx, "store exists", logx.Error(err))
		p.observer.ObserveOffer(StatusError)

		return
	}

	if exists {
		p.observer.ObserveOffer(StatusDuplicate)
		return
	}

	inserted, err := p.store.Insert(ctx, offer)
	if err != nil {
		log.ErrorContext(ctx, "store insert", logx.Error(err))
		p.observer.ObserveOffer(StatusError)

		return
	}

	if !inserted {
		p.observer.ObserveOffer(StatusDuplicate)
		return
	}

	p.observer.ObserveOffer(StatusStored)
}

func (p *Pipeline) blacklisted(ctx context.Context, offer entity.Offer) bool {
	if _, ok := p.merchantBlacklist[offer.MerchantName]; ok {
		return true
	}

	if len(p.innBlacklist) == 0 || offer.MerchantID == "" {
		return false
	}

	inn, err := p.merchantINN(ctx, offer.MerchantID)
	if err != nil {
		logger(ctx).WarnContext(ctx, "merchant inn lookup failed",
			slog.String(logx.FieldMerchantID, offer.MerchantID), logx.Error(err))

		return false
	}

	_, ok := p.innBlacklist[inn]

	return ok
}

func (p *Pipeline) merchantINN(ctx context.Context, merchantID string) (string, error) {
	if v, ok := p.innCache.Get(merchantID); ok {
		return v.(string), nil //nolint:forcetypeassert
	}

	inn, err := p.api.MerchantINN(ctx, merchantID)
	if err != nil {
		return "", err
	}

	p.innCache.Set(merchantID, inn, cache.DefaultExpiration)

	return inn, nil
}

func hintFor(ref *float64, status string) entity.ChannelHint {
	if ref == nil {
		return entity.ChannelHint{Channel: entity.ChannelDefault}
	}

	return entity.ChannelHint{
		Channel:        entity.ChannelArbitrage,
		ReferencePrice: ref,
		RuleStatus:     status,
	}
}

func favoriteToOffer(item entity.CatalogItem, now time.Time) entity.Offer {
	fo := item.FavoriteOffer
	date, _, _ := strings.Cut(fo.DeliveryDate, "T")

	return entity.Offer{
		Title:             item.Goods.Title,
		URL:               item.Goods.WebURL,
		ImageURL:          item.Goods.TitleImage,
		Price:             fo.FinalPrice,
		BonusAmount:       fo.BonusAmount,
		AvailableQuantity: fo.AvailableQuantity,
		GoodsID:           item.Goods.GoodsID,
		MerchantID:        fo.MerchantID,
		MerchantName:      fo.MerchantName,
		DeliveryDate:      date,
		ScrapedAt:         now,
	}
}

func merchantToOffer(goods entity.Goods, mo entity.MerchantOffer, now time.Time) entity.Offer {
	return entity.Offer{
		Title:             goods.Title,
		URL:               OfferURL(goods.WebURL, mo.MerchantID),
		ImageURL:          goods.TitleImage,
		Price:             mo.FinalPrice,
		BonusAmount:       mo.BonusAmount,
		AvailableQuantity: mo.AvailableQuantity,
		GoodsID:           goods.GoodsID,
		MerchantID:        mo.MerchantID,
		MerchantName:      mo.MerchantName,
		MerchantRating:    mo.MerchantRating,
		DeliveryDate:      mo.DeliveryDate,
		ScrapedAt:         now,
	}
}

// OfferURL ссылка на предложение конкретного продавца.
func OfferURL(webURL, merchantID string) string {
	return strings.TrimSuffix(webURL, "/") + "_" + merchantID
}
