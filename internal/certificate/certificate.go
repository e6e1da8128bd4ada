package certificate

import (
	"log/slog"

	"certgen/internal/certificate/certid"
	"certgen/internal/certificate/handler"
	"certgen/internal/certificate/metrics"
	"certgen/internal/certificate/service"
	"certgen/internal/certificate/store"
)

// Service exposes certificate issuance and verification.
type Service = service.Service

// Handler wires HTTP endpoints to the certificate service.
type Handler = handler.Handler

// NewService constructs the certificate service with required dependencies.
func NewService(ids *certid.Generator, st store.Store, renderer service.Renderer, trainingPartner, verifyBaseURL string, logger *slog.Logger, m *metrics.Metrics) *Service {
	return service.New(ids, st, renderer, trainingPartner, verifyBaseURL, logger, service.WithMetrics(m))
}

// NewHandler constructs the HTTP handler for certificate routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
