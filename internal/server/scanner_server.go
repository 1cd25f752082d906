package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"mm_scanner/internal/domain"
	"mm_scanner/internal/worker"
	"mm_scanner/pkg/errcodes"
	"mm_scanner/pkg/httpx/reply"
	"mm_scanner/pkg/httpx/req"
	"mm_scanner/pkg/rest"
)

type scanner interface {
	Start(ctx context.Context) error
	Stop()
	IsRunning() bool
	Status() worker.Status
	AddURL(rawURL string) bool
	RemoveURL(rawURL string) bool
	ListURLs() []string
}

type ScannerServer struct {
	scanner scanner
	// контекст приложения: обход не должен жить столько, сколько HTTP-запрос
	baseCtx context.Context //nolint:containedctx
}

func NewScannerServer(baseCtx context.Context, scanner scanner) ScannerServer {
	return ScannerServer{scanner: scanner, baseCtx: baseCtx}
}

func (s ScannerServer) getV1Scanner(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, newRESTStatus(s.scanner.Status()))

	return nil
}

func (s ScannerServer) postV1ScannerStart(w http.ResponseWriter, r *http.Request) error {
	if err := s.scanner.Start(s.baseCtx); err != nil {
		if errors.Is(err, worker.ErrAlreadyRunning) {
			return domain.WrapError(err, errcodes.ScannerRunning, "scanner")
		}

		return fmt.Errorf("scanner.Start: %w", err)
	}

	reply.JSON(r.Context(), w, http.StatusOK, newRESTStatus(s.scanner.Status()))

	return nil
}

func (s ScannerServer) postV1ScannerStop(w http.ResponseWriter, r *http.Request) error {
	if !s.scanner.IsRunning() {
		return domain.NewError(errcodes.ScannerStopped, "scanner is not running")
	}

	s.scanner.Stop()

	reply.JSON(r.Context(), w, http.StatusOK, newRESTStatus(s.scanner.Status()))

	return nil
}

func (s ScannerServer) getV1ScannerURLs(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, rest.URLList{URLs: s.scanner.ListURLs()})

	return nil
}

func (s ScannerServer) postV1ScannerURLs(w http.ResponseWriter, r *http.Request) error {
	var request rest.URLRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	if !s.scanner.AddURL(request.URL) {
		return domain.NewError(errcodes.Conflict, "url already scanned")
	}

	reply.Created(w)

	return nil
}

func (s ScannerServer) deleteV1ScannerURLs(w http.ResponseWriter, r *http.Request) error {
	var request rest.URLRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	if !s.scanner.RemoveURL(request.URL) {
		return domain.NewError(errcodes.NotFound, "url is not scanned")
	}

	reply.OK(w)

	return nil
}
