package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certgen/internal/certificate/certid"
	"certgen/internal/certificate/models"
	"certgen/internal/certificate/store"
	dErrors "certgen/pkg/domain-errors"
)

// stubRenderer stands in for the PDF collaborator.
type stubRenderer struct {
	out []byte
	err error
}

func (r *stubRenderer) Render(_ context.Context, _ *models.CertificateRecord, _ []byte) ([]byte, error) {
	return r.out, r.err
}

// sequenceGenerator replays a fixed list of identifiers to force collisions.
type sequenceGenerator struct {
	ids []string
	i   int
}

func (g *sequenceGenerator) Generate() (string, error) {
	id := g.ids[g.i%len(g.ids)]
	g.i++
	return id, nil
}

func (g *sequenceGenerator) Verify(string) error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newService(t *testing.T, st store.Store, renderer Renderer) *Service {
	t.Helper()
	gen, err := certid.New("service-test-secret")
	require.NoError(t, err)
	return New(gen, st, renderer, "Acme Academy", "https://certs.acme.test/", testLogger())
}

var photo = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func TestIssue(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path stores record and returns pdf", func(t *testing.T) {
		st := store.NewInMemory()
		svc := newService(t, st, &stubRenderer{out: []byte("%PDF-1.7 fake")})

		res, err := svc.Issue(ctx, models.IssueRequest{
			LearnerName: "Jane Doe",
			CourseName:  "Site Safety Induction",
			Photo:       photo,
		})
		require.NoError(t, err)
		require.NotNil(t, res.Record)
		assert.NotEmpty(t, res.PDF)
		assert.Equal(t, "Jane Doe", res.Record.LearnerName)
		assert.Equal(t, "Acme Academy", res.Record.TrainingPartner)
		assert.Contains(t, res.Record.VerificationURL,
			"https://certs.acme.test/certificates/"+res.Record.CertificateID+"/verify")
		assert.False(t, res.Record.HasExpiry())

		stored, err := st.Get(ctx, res.Record.CertificateID)
		require.NoError(t, err)
		assert.Equal(t, res.Record, stored)
	})

	t.Run("empty name is a validation error with no side effects", func(t *testing.T) {
		st := store.NewInMemory()
		svc := newService(t, st, &stubRenderer{out: []byte("pdf")})

		_, err := svc.Issue(ctx, models.IssueRequest{LearnerName: "   ", Photo: photo})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		n, err := st.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n, "validation failures must not touch the store")
	})

	t.Run("missing photo is a validation error", func(t *testing.T) {
		svc := newService(t, store.NewInMemory(), &stubRenderer{out: []byte("pdf")})
		_, err := svc.Issue(ctx, models.IssueRequest{LearnerName: "Jane Doe"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("render failure leaves no orphaned record", func(t *testing.T) {
		st := store.NewInMemory()
		svc := newService(t, st, &stubRenderer{err: errors.New("font table corrupt")})

		_, err := svc.Issue(ctx, models.IssueRequest{LearnerName: "Jane Doe", Photo: photo})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

		n, err := st.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n, "records are inserted only after rendering succeeds")
	})

	t.Run("collision triggers regeneration", func(t *testing.T) {
		st := store.NewInMemory()
		gen := &sequenceGenerator{ids: []string{
			"CERT-1-20260314-AAAAAAAA-a1b2c3d4e5f6",
			"CERT-1-20260314-AAAAAAAA-a1b2c3d4e5f6", // repeat forces the retry path
			"CERT-1-20260314-BBBBBBBB-a1b2c3d4e5f6",
		}}
		svc := New(gen, st, &stubRenderer{out: []byte("pdf")}, "Acme Academy", "https://certs.acme.test", testLogger())

		first, err := svc.Issue(ctx, models.IssueRequest{LearnerName: "Jane Doe", Photo: photo})
		require.NoError(t, err)
		second, err := svc.Issue(ctx, models.IssueRequest{LearnerName: "John Smith", Photo: photo})
		require.NoError(t, err)

		assert.NotEqual(t, first.Record.CertificateID, second.Record.CertificateID)
		assert.Equal(t, "CERT-1-20260314-BBBBBBBB-a1b2c3d4e5f6", second.Record.CertificateID)
	})

	t.Run("persistent collisions surface a fatal error", func(t *testing.T) {
		st := store.NewInMemory()
		gen := &sequenceGenerator{ids: []string{"CERT-1-20260314-AAAAAAAA-a1b2c3d4e5f6"}}
		svc := New(gen, st, &stubRenderer{out: []byte("pdf")}, "Acme Academy", "https://certs.acme.test", testLogger())

		_, err := svc.Issue(ctx, models.IssueRequest{LearnerName: "Jane Doe", Photo: photo})
		require.NoError(t, err)

		_, err = svc.Issue(ctx, models.IssueRequest{LearnerName: "John Smith", Photo: photo})
		require.Error(t, err)

		n, err := st.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "the original record must never be overwritten")
	})

	t.Run("two back-to-back issues resolve independently", func(t *testing.T) {
		st := store.NewInMemory()
		svc := newService(t, st, &stubRenderer{out: []byte("pdf")})

		a, err := svc.Issue(ctx, models.IssueRequest{LearnerName: "Jane Doe", Photo: photo})
		require.NoError(t, err)
		b, err := svc.Issue(ctx, models.IssueRequest{LearnerName: "John Smith", Photo: photo})
		require.NoError(t, err)

		require.NotEqual(t, a.Record.CertificateID, b.Record.CertificateID)

		ra, err := svc.Verify(ctx, a.Record.CertificateID)
		require.NoError(t, err)
		assert.True(t, ra.Valid)
		assert.Equal(t, "Jane Doe", ra.Certificate.LearnerName)

		rb, err := svc.Verify(ctx, b.Record.CertificateID)
		require.NoError(t, err)
		assert.True(t, rb.Valid)
		assert.Equal(t, "John Smith", rb.Certificate.LearnerName)
	})

	t.Run("expiry date is carried onto the record", func(t *testing.T) {
		st := store.NewInMemory()
		svc := newService(t, st, &stubRenderer{out: []byte("pdf")})

		expiry := time.Date(2027, 3, 14, 0, 0, 0, 0, time.UTC)
		res, err := svc.Issue(ctx, models.IssueRequest{
			LearnerName: "Jane Doe",
			Photo:       photo,
			ExpiryDate:  expiry,
		})
		require.NoError(t, err)
		assert.True(t, res.Record.HasExpiry())
		assert.Equal(t, expiry, res.Record.ExpiryDate)
	})
}

func TestVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("well-formed but never issued is a defined negative", func(t *testing.T) {
		st := store.NewInMemory()
		gen, err := certid.New("service-test-secret")
		require.NoError(t, err)
		svc := New(gen, st, &stubRenderer{out: []byte("pdf")}, "Acme Academy", "https://certs.acme.test", testLogger())

		// Mint a genuine identifier but never store a record for it.
		id, err := gen.Generate()
		require.NoError(t, err)

		res, err := svc.Verify(ctx, id)
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.Nil(t, res.Certificate)
	})

	t.Run("tampered identifier never reaches the store", func(t *testing.T) {
		svc := newService(t, store.NewInMemory(), &stubRenderer{out: []byte("pdf")})

		res, err := svc.Verify(ctx, "CERT-1-20260314-ABCDEFGH-000000000000")
		require.NoError(t, err)
		assert.False(t, res.Valid)
	})

	t.Run("garbage input is a defined negative", func(t *testing.T) {
		svc := newService(t, store.NewInMemory(), &stubRenderer{out: []byte("pdf")})

		res, err := svc.Verify(ctx, "not-a-certificate-id")
		require.NoError(t, err)
		assert.False(t, res.Valid)
	})
}
