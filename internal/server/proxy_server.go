package server

import (
	"net/http"

	"github.com/samber/lo"

	"mm_scanner/internal/infrastructure/egress"
	"mm_scanner/pkg/httpx/reply"
	"mm_scanner/pkg/rest"
)

type proxyPool interface {
	Snapshot() []egress.ProxyState
}

type ProxyServer struct {
	pool proxyPool
}

func NewProxyServer(pool proxyPool) ProxyServer {
	return ProxyServer{pool: pool}
}

func (s ProxyServer) getV1Proxies(w http.ResponseWriter, r *http.Request) error {
	states := lo.Map(s.pool.Snapshot(), func(st egress.ProxyState, _ int) rest.Proxy {
		return newRESTProxy(st)
	})

	reply.JSON(r.Context(), w, http.StatusOK, states)

	return nil
}
