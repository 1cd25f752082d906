package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/samber/lo"

	"mm_scanner/internal/domain"
	"mm_scanner/internal/domain/entity"
	"mm_scanner/pkg/errcodes"
	"mm_scanner/pkg/httpx/reply"
	"mm_scanner/pkg/rest"
)

const (
	defaultOffersLimit = 50
	maxOffersLimit     = 500
)

type offerLister interface {
	List(ctx context.Context, limit int, notifiedOnly bool) ([]entity.Offer, error)
}

type OfferServer struct {
	offers offerLister
}

func NewOfferServer(offers offerLister) OfferServer {
	return OfferServer{offers: offers}
}

// getV1Offers последние сохранённые предложения: ?limit=N&notified=true.
func (s OfferServer) getV1Offers(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	query := r.URL.Query()

	limit := defaultOffersLimit

	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxOffersLimit {
			return domain.NewError(errcodes.ValidationError, fmt.Sprintf("limit must be in 1..%d", maxOffersLimit))
		}

		limit = n
	}

	notifiedOnly := query.Get("notified") == "true"

	offers, err := s.offers.List(ctx, limit, notifiedOnly)
	if err != nil {
		return fmt.Errorf("offers.List: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, lo.Map(offers, func(o entity.Offer, _ int) rest.Offer {
		return newRESTOffer(o)
	}))

	return nil
}
