package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"certgen/internal/certificate/models"
	"certgen/internal/platform/middleware"
	"certgen/internal/render"
	dErrors "certgen/pkg/domain-errors"
)

// maxUploadBytes caps the multipart form, photo included.
const maxUploadBytes = 10 << 20

// Service defines the certificate operations the HTTP layer depends on.
type Service interface {
	Issue(ctx context.Context, req models.IssueRequest) (*models.IssueResult, error)
	Verify(ctx context.Context, id string) (*models.VerifyResult, error)
}

// Handler is the thin HTTP layer. It validates at the boundary and
// delegates to the certificate service; business logic stays out of here.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a certificate Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register registers the certificate routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/certificates", h.handleIssue)
	r.Get("/certificates/{id}/verify", h.handleVerify)
}

// handleIssue accepts multipart form data carrying the learner name, the
// photo, and optional course/validity fields, and responds with the
// rendered PDF. The minted identifier travels out-of-band in the
// X-Certificate-Id header.
func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "expected multipart form data"))
		return
	}

	name := r.FormValue("name")
	if !govalidator.StringLength(name, "1", "200") {
		writeError(w, dErrors.New(dErrors.CodeValidation, "name is required"))
		return
	}

	photo, err := readPhoto(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := render.PhotoType(photo); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "photo must be a JPEG or PNG image"))
		return
	}

	req := models.IssueRequest{
		LearnerName: name,
		CourseName:  r.FormValue("course"),
		Photo:       photo,
	}

	if until := r.FormValue("valid_until"); until != "" {
		expiry, err := time.Parse("2006-01-02", until)
		if err != nil {
			writeError(w, dErrors.New(dErrors.CodeValidation, "valid_until must be formatted as YYYY-MM-DD"))
			return
		}
		req.ExpiryDate = expiry
	}

	res, err := h.service.Issue(ctx, req)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.ErrorContext(ctx, "certificate issuance failed",
				"request_id", middleware.GetRequestID(ctx),
				"error", err,
			)
		}
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="certificate.pdf"`)
	w.Header().Set("X-Certificate-Id", res.Record.CertificateID)
	w.WriteHeader(http.StatusCreated)
	if _, err := w.Write(res.PDF); err != nil {
		h.logger.ErrorContext(ctx, "failed to write certificate response",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
	}
}

// handleVerify looks up an identifier and reports the verdict. An unknown,
// malformed, or forged identifier is a 404 with valid:false, not an error.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	res, err := h.service.Verify(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "certificate verification failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		writeError(w, dErrors.New(dErrors.CodeInternal, "verification failed"))
		return
	}

	status := http.StatusOK
	if !res.Valid {
		status = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}

// readPhoto extracts the uploaded photo bytes from the multipart form.
func readPhoto(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("photo")
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "photo is required")
	}
	defer file.Close()

	photo, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "could not read photo upload")
	}
	if len(photo) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "photo is required")
	}
	return photo, nil
}

// writeError centralizes domain error translation to HTTP responses so all
// handlers share one JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := err.Error()
	if code == dErrors.CodeInternal {
		// Internal details stay in the logs.
		message = "internal error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
