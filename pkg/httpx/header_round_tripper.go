package httpx

import (
	"fmt"
	"net/http"
)

// HeaderRoundTripper проставляет фиксированные заголовки (cookie, user-agent)
// в каждый исходящий запрос, если вызывающий их не задал.
type HeaderRoundTripper struct {
	next    http.RoundTripper
	headers http.Header
}

func NewHeaderRoundTripper(next http.RoundTripper, headers http.Header) HeaderRoundTripper {
	return HeaderRoundTripper{
		next:    next,
		headers: headers.Clone(),
	}
}

func (rt HeaderRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(rt.headers) != 0 {
		req = req.Clone(req.Context())

		for k, v := range rt.headers {
			if req.Header.Get(k) == "" {
				req.Header[k] = v
			}
		}
	}

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("next.RoundTrip: %w", err)
	}

	return resp, nil
}
