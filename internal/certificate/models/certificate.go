package models

import (
	"time"

	dErrors "certgen/pkg/domain-errors"
)

// CertificateRecord is the stored metadata for one issued certificate.
//
// Invariants:
//   - CertificateID is unique across the store for the process lifetime
//   - LearnerName is non-empty
//   - Records are write-once: never mutated or deleted after insertion
type CertificateRecord struct {
	CertificateID   string    `json:"certificate_id"`
	LearnerName     string    `json:"learner_name"`
	CourseName      string    `json:"course_name,omitempty"`
	IssueDate       time.Time `json:"issue_date"`
	ExpiryDate      time.Time `json:"expiry_date,omitzero"`
	TrainingPartner string    `json:"training_partner"`
	VerificationURL string    `json:"verification_url"`
	CreatedAt       time.Time `json:"created_at"`
}

// HasExpiry reports whether the certificate carries an expiry date.
// A zero ExpiryDate means "no expiry" and is a valid terminal state.
func (r *CertificateRecord) HasExpiry() bool {
	return !r.ExpiryDate.IsZero()
}

// NewCertificateRecord validates invariants and builds a record.
func NewCertificateRecord(id, learnerName, courseName, trainingPartner, verificationURL string, expiry time.Time, now time.Time) (*CertificateRecord, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeInternal, "certificate id cannot be empty")
	}
	if learnerName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "learner name cannot be empty")
	}
	return &CertificateRecord{
		CertificateID:   id,
		LearnerName:     learnerName,
		CourseName:      courseName,
		IssueDate:       now,
		ExpiryDate:      expiry,
		TrainingPartner: trainingPartner,
		VerificationURL: verificationURL,
		CreatedAt:       now,
	}, nil
}

// IssueRequest carries validated issuance input into the service.
type IssueRequest struct {
	LearnerName string
	CourseName  string
	// Photo is the raw uploaded image (JPEG or PNG).
	Photo []byte
	// ExpiryDate is optional; the zero value means no expiry.
	ExpiryDate time.Time
}

// IssueResult is what a successful issuance hands back to transport.
type IssueResult struct {
	Record *CertificateRecord
	PDF    []byte
}

// VerifyResult is the verification verdict for one identifier.
type VerifyResult struct {
	Valid       bool               `json:"valid"`
	Message     string             `json:"message"`
	Certificate *CertificateRecord `json:"certificate,omitempty"`
}
