package worker

import (
	"slices"
	"strings"
)

// AddURL добавляет URL в список обхода, если его там ещё нет.
func (w *MarketScanner) AddURL(rawURL string) bool {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return false
	}

	w.urlsMu.Lock()
	defer w.urlsMu.Unlock()

	if slices.Contains(w.urls, rawURL) {
		return false
	}

	w.urls = append(w.urls, rawURL)

	return true
}

func (w *MarketScanner) RemoveURL(rawURL string) bool {
	w.urlsMu.Lock()
	defer w.urlsMu.Unlock()

	i := slices.Index(w.urls, strings.TrimSpace(rawURL))
	if i < 0 {
		return false
	}

	w.urls = slices.Delete(w.urls, i, i+1)

	return true
}

// SetURLs заменяет весь список, дубли отбрасываются.
func (w *MarketScanner) SetURLs(urls []string) {
	w.urlsMu.Lock()
	w.urls = nil
	w.urlsMu.Unlock()

	for _, u := range urls {
		w.AddURL(u)
	}
}

// ListURLs копия текущего списка.
func (w *MarketScanner) ListURLs() []string {
	w.urlsMu.Lock()
	defer w.urlsMu.Unlock()

	return slices.Clone(w.urls)
}
