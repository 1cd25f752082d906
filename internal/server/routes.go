package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mm_scanner/pkg/httpx/reply"
	"mm_scanner/pkg/logx"
	"mm_scanner/pkg/middlewarex"
)

const logFieldMaxLen = 4096

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Get("/proxies", handler(s.getV1Proxies))
			r.Get("/offers", handler(s.getV1Offers))

			r.Route("/scanner", func(r chi.Router) {
				r.Get("/", handler(s.getV1Scanner))
				r.Post("/start", handler(s.postV1ScannerStart))
				r.Post("/stop", handler(s.postV1ScannerStop))
				r.Get("/urls", handler(s.getV1ScannerURLs))
				r.Post("/urls", handler(s.postV1ScannerURLs))
				r.Delete("/urls", handler(s.deleteV1ScannerURLs))
			})
		})
	})
}

// NewRouter chi-роутер с общими middleware.
func NewRouter(s Server, masker logx.SensitiveDataMaskerInterface) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.Recovery,
		middlewarex.AccessLog(masker, logFieldMaxLen),
	)

	s.RegisterRoutes(r)

	return r
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
