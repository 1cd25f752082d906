package persistence

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"mm_scanner/internal/domain"
	"mm_scanner/internal/domain/entity"
	"mm_scanner/pkg/errcodes"
)

const offerColumns = `goods_id, merchant_id, price, bonus_amount, title, url, image_url,
	available_quantity, merchant_name, merchant_rating, delivery_date, notified, scraped_at`

type OfferRepository struct {
	db *sqlx.DB
}

func NewOfferRepository(db *sqlx.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// Exists есть ли уже предложение с тем же ключом сделки.
func (r *OfferRepository) Exists(ctx context.Context, key entity.NotificationKey) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM offers
			WHERE goods_id = $1 AND merchant_id = $2 AND price = $3 AND bonus_amount = $4
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, key.GoodsID, key.MerchantID, key.Price, key.BonusAmount); err != nil {
		return false, domain.WrapError(err, errcodes.InternalServerError, "failed to check offer")
	}

	return exists, nil
}

// Insert сохраняет предложение, если ключа сделки ещё нет. false значит,
// что строку с тем же ключом уже вставил кто-то другой.
func (r *OfferRepository) Insert(ctx context.Context, offer entity.Offer) (bool, error) {
	var inserted bool

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO offers (` + offerColumns + `) VALUES (
				:goods_id, :merchant_id, :price, :bonus_amount, :title, :url, :image_url,
				:available_quantity, :merchant_name, :merchant_rating, :delivery_date, :notified, :scraped_at
			)
			ON CONFLICT (goods_id, merchant_id, price, bonus_amount) DO NOTHING`

		res, err := tx.NamedExecContext(ctx, query, fromOffer(offer))
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to insert offer")
		}

		n, err := res.RowsAffected()
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to insert offer")
		}

		inserted = n > 0

		return nil
	})

	return inserted, err
}

// PurgeOlderThan удаляет предложения старше горизонта хранения.
func (r *OfferRepository) PurgeOlderThan(ctx context.Context, d time.Duration) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM offers WHERE scraped_at < $1`, time.Now().Add(-d))
	if err != nil {
		return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to purge offers")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to purge offers")
	}

	return n, nil
}

// List последние предложения, notifiedOnly оставляет только отправленные.
func (r *OfferRepository) List(ctx context.Context, limit int, notifiedOnly bool) ([]entity.Offer, error) {
	query := `SELECT id, ` + offerColumns + ` FROM offers
		WHERE ($1 = FALSE OR notified)
		ORDER BY scraped_at DESC
		LIMIT $2`

	var schemas []offerSchema
	if err := r.db.SelectContext(ctx, &schemas, query, notifiedOnly, limit); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list offers")
	}

	offers := make([]entity.Offer, 0, len(schemas))
	for _, s := range schemas {
		offers = append(offers, s.toDomain())
	}

	return offers, nil
}
