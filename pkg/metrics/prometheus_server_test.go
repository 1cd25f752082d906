package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"mm_scanner/pkg/metrics"
)

func TestPrometheusServerHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "mm_test_total"})
	reg.MustRegister(counter)
	counter.Add(3)

	ts := httptest.NewServer(metrics.NewPrometheusServer(":0", reg).Handler())
	t.Cleanup(ts.Close)

	testCases := []struct {
		name       string
		method     string
		path       string
		statusCode int
		contains   string
	}{
		{name: "metrics", method: http.MethodGet, path: "/metrics", statusCode: http.StatusOK, contains: "mm_test_total 3"},
		{name: "unknown path", method: http.MethodGet, path: "/invalid", statusCode: http.StatusNotFound},
		{name: "post is not allowed", method: http.MethodPost, path: "/metrics", statusCode: http.StatusMethodNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			req, err := http.NewRequestWithContext(t.Context(), tc.method, ts.URL+tc.path, http.NoBody)
			rq.NoError(err)

			resp, err := ts.Client().Do(req)
			rq.NoError(err)

			defer resp.Body.Close()

			rq.Equal(tc.statusCode, resp.StatusCode)

			if tc.contains != "" {
				body, err := io.ReadAll(resp.Body)
				rq.NoError(err)
				rq.Contains(string(body), tc.contains)
			}
		})
	}
}

func TestPrometheusServerDefaultGatherer(t *testing.T) {
	rq := require.New(t)

	ts := httptest.NewServer(metrics.NewPrometheusServer(":0", nil).Handler())
	t.Cleanup(ts.Close)

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	rq.NoError(err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Contains(string(body), "go_goroutines")
}
