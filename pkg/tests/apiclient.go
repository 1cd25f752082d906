package tests

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// APIClient JSON-клиент REST API сервиса для тестов.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	logf       func(format string, args ...any)
}

func NewAPIClient(baseURL string, httpClient *http.Client) APIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return APIClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		logf:       log.Printf,
	}
}

// WithLogf направляет дамп запросов, например в t.Logf.
func (a APIClient) WithLogf(logf func(format string, args ...any)) APIClient {
	a.logf = logf

	return a
}

func (a APIClient) Get(ctx context.Context, endpoint string, headers http.Header, dest, errDest any) (*http.Response, error) {
	return a.Do(ctx, http.MethodGet, endpoint, headers, nil, dest, errDest)
}

func (a APIClient) Post(
	ctx context.Context,
	endpoint string,
	headers http.Header,
	request, dest, errDest any,
) (*http.Response, error) {
	return a.Do(ctx, http.MethodPost, endpoint, headers, request, dest, errDest)
}

// PostJSON отправляет тело как есть, для проверки невалидного JSON.
func (a APIClient) PostJSON(
	ctx context.Context,
	endpoint string,
	headers http.Header,
	requestJSON string,
	dest, errDest any,
) (*http.Response, error) {
	return a.send(ctx, http.MethodPost, endpoint, headers, []byte(requestJSON), dest, errDest)
}

func (a APIClient) DeleteWithBody(
	ctx context.Context,
	endpoint string,
	headers http.Header,
	request, dest, errDest any,
) (*http.Response, error) {
	return a.Do(ctx, http.MethodDelete, endpoint, headers, request, dest, errDest)
}

// Do кодирует request в JSON (nil значит без тела) и разбирает ответ: 2xx в
// dest, остальное в errDest.
func (a APIClient) Do(
	ctx context.Context,
	method string,
	endpoint string,
	headers http.Header,
	request, dest, errDest any,
) (*http.Response, error) {
	var body []byte

	if request != nil {
		b, err := json.Marshal(request)
		if err != nil {
			return nil, fmt.Errorf("json.Marshal: %w", err)
		}

		body = b
	}

	return a.send(ctx, method, endpoint, headers, body, dest, errDest)
}

func (a APIClient) send(
	ctx context.Context,
	method string,
	endpoint string,
	headers http.Header,
	body []byte,
	dest, errDest any,
) (*http.Response, error) {
	payload := io.Reader(http.NoBody)
	if body != nil {
		payload = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header[k] = v
	}

	a.logf("request: %s %s", req.Method, req.URL)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpClient.Do: %w", err)
	}

	defer resp.Body.Close()

	if dump, err := httputil.DumpResponse(resp, true); err == nil {
		a.logf("response: %s", dump)
	}

	if err = parseResponse(resp, dest, errDest); err != nil {
		return nil, fmt.Errorf("parseResponse: %w", err)
	}

	return resp, nil
}

func parseResponse(r *http.Response, dest, errDest any) error {
	target, label := errDest, "err destination"
	if r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices {
		target, label = dest, "success destination"
	}

	if target == nil {
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("json.Decode(%s): %w", label, err)
	}

	return nil
}
