package config

import (
	"errors"
	"os"
)

// Server captures process-level configuration for the certificate service.
type Server struct {
	Addr string
	// SigningKey feeds the identifier generator. It is never exposed to
	// clients and must be set before the server will start.
	SigningKey string
	// TrainingPartner is the issuer name printed on every certificate.
	TrainingPartner string
	// VerifyBaseURL is the public base used to derive verification links,
	// e.g. https://certs.example.com.
	VerifyBaseURL string
}

// ErrMissingSigningKey signals a refusal to start without a real secret.
// Issuing with a defaulted key would produce forgeable identifiers.
var ErrMissingSigningKey = errors.New("CERTGEN_SIGNING_KEY must be set")

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	addr := os.Getenv("CERTGEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	signingKey := os.Getenv("CERTGEN_SIGNING_KEY")
	if signingKey == "" {
		return Server{}, ErrMissingSigningKey
	}

	partner := os.Getenv("CERTGEN_TRAINING_PARTNER")
	if partner == "" {
		partner = "Certgen Training"
	}

	verifyBase := os.Getenv("CERTGEN_VERIFY_BASE_URL")
	if verifyBase == "" {
		verifyBase = "http://localhost:8080"
	}

	return Server{
		Addr:            addr,
		SigningKey:      signingKey,
		TrainingPartner: partner,
		VerifyBaseURL:   verifyBase,
	}, nil
}
