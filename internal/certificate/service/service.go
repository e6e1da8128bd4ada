package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"certgen/internal/certificate/metrics"
	"certgen/internal/certificate/models"
	"certgen/internal/certificate/store"
	dErrors "certgen/pkg/domain-errors"
)

// maxGenerateAttempts bounds collision retries. A collision means the
// 40-bit random component repeated within one day, so more than a couple
// of retries indicates a broken entropy source, not bad luck.
const maxGenerateAttempts = 3

// IDGenerator mints and verifies certificate identifiers.
type IDGenerator interface {
	Generate() (string, error)
	Verify(id string) error
}

// Renderer produces the deliverable document from a finished record.
type Renderer interface {
	Render(ctx context.Context, record *models.CertificateRecord, photo []byte) ([]byte, error)
}

// Service orchestrates certificate issuance and verification.
type Service struct {
	ids      IDGenerator
	store    store.Store
	renderer Renderer

	trainingPartner string
	verifyBaseURL   string

	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs a Service.
func New(ids IDGenerator, st store.Store, renderer Renderer, trainingPartner, verifyBaseURL string, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		ids:             ids,
		store:           st,
		renderer:        renderer,
		trainingPartner: trainingPartner,
		verifyBaseURL:   strings.TrimRight(verifyBaseURL, "/"),
		logger:          logger,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue validates the request, mints an identifier, renders the PDF, and
// records the certificate.
//
// Ordering: the record is inserted only after rendering succeeds, so a
// rendering failure can never leave behind a verifiable identifier for a
// certificate that was never delivered. The cost is that a crash between
// render and insert loses the binding; for an in-process store that window
// is negligible.
func (s *Service) Issue(ctx context.Context, req models.IssueRequest) (*models.IssueResult, error) {
	start := s.now()

	name := strings.TrimSpace(req.LearnerName)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(req.Photo) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "photo is required")
	}

	var lastErr error
	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		id, err := s.ids.Generate()
		if err != nil {
			return nil, fmt.Errorf("generating certificate id: %w", err)
		}

		record, err := models.NewCertificateRecord(
			id, name, strings.TrimSpace(req.CourseName),
			s.trainingPartner, s.verificationURL(id),
			req.ExpiryDate, s.now().UTC(),
		)
		if err != nil {
			return nil, err
		}

		pdf, err := s.renderer.Render(ctx, record, req.Photo)
		if err != nil {
			if s.metrics != nil {
				s.metrics.IssuanceFailures.Inc()
			}
			s.logger.ErrorContext(ctx, "certificate rendering failed",
				"certificate_id", id,
				"error", err,
			)
			return nil, dErrors.New(dErrors.CodeInternal, "failed to render certificate")
		}

		if err := s.store.Put(ctx, record); err != nil {
			if dErrors.HasCode(err, dErrors.CodeConflict) {
				// Regenerate with a fresh random component. The rendered
				// PDF embeds the colliding id and is discarded.
				s.logger.WarnContext(ctx, "certificate id collision, regenerating",
					"certificate_id", id,
					"attempt", attempt,
				)
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("storing certificate record: %w", err)
		}

		if s.metrics != nil {
			s.metrics.CertificatesIssued.Inc()
			s.metrics.ObserveIssue(start)
		}
		s.logger.InfoContext(ctx, "certificate issued",
			"certificate_id", id,
			"learner_name", name,
		)
		return &models.IssueResult{Record: record, PDF: pdf}, nil
	}

	if s.metrics != nil {
		s.metrics.IssuanceFailures.Inc()
	}
	return nil, fmt.Errorf("certificate id generation kept colliding after %d attempts: %w", maxGenerateAttempts, lastErr)
}

// Verify reports whether id belongs to an issued certificate. Forged,
// malformed, and unknown identifiers are all defined negative outcomes,
// not errors; the error return is reserved for internal store failures.
func (s *Service) Verify(ctx context.Context, id string) (*models.VerifyResult, error) {
	if err := s.ids.Verify(id); err != nil {
		if s.metrics != nil {
			s.metrics.VerificationMisses.Inc()
		}
		return &models.VerifyResult{
			Valid:   false,
			Message: "certificate identifier is invalid",
		}, nil
	}

	record, err := s.store.Get(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			if s.metrics != nil {
				s.metrics.VerificationMisses.Inc()
			}
			return &models.VerifyResult{
				Valid:   false,
				Message: "certificate not found",
			}, nil
		}
		return nil, fmt.Errorf("looking up certificate record: %w", err)
	}

	if s.metrics != nil {
		s.metrics.VerificationHits.Inc()
	}
	return &models.VerifyResult{
		Valid:       true,
		Message:     "certificate is valid",
		Certificate: record,
	}, nil
}

func (s *Service) verificationURL(id string) string {
	return s.verifyBaseURL + "/certificates/" + id + "/verify"
}
