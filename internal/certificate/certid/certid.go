// Package certid mints and verifies certificate identifiers.
//
// Identifiers follow a versioned schema so the format can evolve without
// breaking the verifier:
//
//	CERT-1-YYYYMMDD-RRRRRRRR-ssssssssssss
//
// where RRRRRRRR is 40 bits of crypto/rand encoded as unpadded base32 and
// the final component is an HMAC-SHA256 tag over the preceding components,
// truncated to 48 bits and hex encoded. Anyone can parse an identifier;
// only the holder of the signing key can produce or verify the tag.
// Store membership remains the final authority on whether an identifier
// was actually issued.
package certid

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	// Prefix tags every identifier issued by this service.
	Prefix = "CERT"
	// Version is bumped on any breaking schema change.
	Version = "1"

	randomBytes = 5 // 8 base32 chars
	sigBytes    = 6 // 12 hex chars

	dateLayout = "20060102"
)

var (
	// ErrEmptySecret refuses construction without a signing key. Minting
	// unsigned-looking identifiers would defeat tamper evidence.
	ErrEmptySecret = errors.New("certid: signing secret must not be empty")
	// ErrMalformed reports an identifier that does not match the schema.
	ErrMalformed = errors.New("certid: malformed identifier")
	// ErrBadSignature reports a well-formed identifier whose tag does not
	// recompute, i.e. it was tampered with or minted with another key.
	ErrBadSignature = errors.New("certid: signature mismatch")
)

var randomEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ID is the parsed form of an identifier. All fields are the raw string
// components; Signature is lowercase hex.
type ID struct {
	Date      string
	Random    string
	Signature string
}

// String reassembles the canonical identifier.
func (id ID) String() string {
	return strings.Join([]string{Prefix, Version, id.Date, id.Random, id.Signature}, "-")
}

// Generator mints signed identifiers with a server-held secret.
type Generator struct {
	secret []byte
	now    func() time.Time
	random io.Reader
}

// Option customizes a Generator, mainly for tests.
type Option func(*Generator)

// WithClock overrides the time source used for the date component.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithRand overrides the entropy source.
func WithRand(r io.Reader) Option {
	return func(g *Generator) { g.random = r }
}

// New constructs a Generator. An empty secret is a startup error, not a
// silent fallback.
func New(secret string, opts ...Option) (*Generator, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	g := &Generator{
		secret: []byte(secret),
		now:    time.Now,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate mints a fresh identifier. Uniqueness comes from the 40-bit
// random component; the caller still guards against collisions at the
// store boundary.
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, randomBytes)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", fmt.Errorf("certid: reading entropy: %w", err)
	}

	id := ID{
		Date:   g.now().UTC().Format(dateLayout),
		Random: randomEncoding.EncodeToString(buf),
	}
	id.Signature = g.sign(id.Date, id.Random)
	return id.String(), nil
}

// Verify parses s and recomputes its signature. It returns ErrMalformed
// for schema violations and ErrBadSignature for tag mismatches.
func (g *Generator) Verify(s string) error {
	id, err := Parse(s)
	if err != nil {
		return err
	}
	expected := g.sign(id.Date, id.Random)
	if !hmac.Equal([]byte(expected), []byte(id.Signature)) {
		return ErrBadSignature
	}
	return nil
}

// sign computes the truncated lowercase-hex HMAC tag over the unsigned
// components.
func (g *Generator) sign(date, random string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(strings.Join([]string{Prefix, Version, date, random}, "-")))
	return hex.EncodeToString(mac.Sum(nil)[:sigBytes])
}

// Parse splits s into its components, enforcing the schema syntactically.
// It does not check the signature; use Generator.Verify for that.
func Parse(s string) (ID, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 5 || parts[0] != Prefix || parts[1] != Version {
		return ID{}, ErrMalformed
	}
	id := ID{Date: parts[2], Random: parts[3], Signature: parts[4]}

	if _, err := time.Parse(dateLayout, id.Date); err != nil {
		return ID{}, ErrMalformed
	}
	if len(id.Random) != randomEncoding.EncodedLen(randomBytes) || !isBase32(id.Random) {
		return ID{}, ErrMalformed
	}
	if len(id.Signature) != sigBytes*2 || !isLowerHex(id.Signature) {
		return ID{}, ErrMalformed
	}
	return id, nil
}

func isBase32(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= '2' && c <= '7':
		default:
			return false
		}
	}
	return true
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
