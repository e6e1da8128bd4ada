// Package render produces the deliverable credential document. It is a
// thin collaborator: it consumes a finished record plus photo bytes and
// returns PDF bytes, with no knowledge of identifier minting or storage.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"codeberg.org/go-pdf/fpdf"

	"certgen/internal/certificate/models"
)

// ErrUnsupportedImage rejects photo uploads that are neither JPEG nor PNG.
var ErrUnsupportedImage = errors.New("render: photo must be JPEG or PNG")

// PhotoType sniffs the image format from raw bytes and returns the fpdf
// image type tag. Exposed so validation can reject bad uploads before any
// identifier is minted.
func PhotoType(photo []byte) (string, error) {
	switch http.DetectContentType(photo) {
	case "image/jpeg":
		return "JPG", nil
	case "image/png":
		return "PNG", nil
	default:
		return "", ErrUnsupportedImage
	}
}

// PDF renders certificates on a landscape A4 page.
type PDF struct{}

// NewPDF builds the PDF renderer.
func NewPDF() *PDF {
	return &PDF{}
}

const (
	pageW = 297.0 // A4 landscape, mm
	pageH = 210.0

	dateLayout = "2 January 2006"
)

// Render draws the credential document for record with the learner photo
// embedded, plus a QR code pointing at the verification URL.
func (p *PDF) Render(_ context.Context, record *models.CertificateRecord, photo []byte) ([]byte, error) {
	photoType, err := PhotoType(photo)
	if err != nil {
		return nil, err
	}
	qrImg, err := qrPNG(record.VerificationURL, 256)
	if err != nil {
		return nil, err
	}

	doc := fpdf.New(fpdf.OrientationLandscape, fpdf.UnitMillimeter, fpdf.PageSizeA4, "")
	doc.SetTitle("Certificate "+record.CertificateID, true)
	doc.AddPage()

	// Frame
	doc.SetLineWidth(1.2)
	doc.SetDrawColor(30, 60, 120)
	doc.Rect(8, 8, pageW-16, pageH-16, "D")

	// Header
	doc.SetFont("Helvetica", "B", 30)
	doc.SetTextColor(30, 60, 120)
	doc.SetXY(0, 28)
	doc.CellFormat(pageW, 14, "CERTIFICATE OF COMPLETION", "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 13)
	doc.SetTextColor(60, 60, 60)
	doc.SetXY(0, 52)
	doc.CellFormat(pageW, 8, "This is to certify that", "", 1, "C", false, 0, "")

	// Learner
	doc.SetFont("Helvetica", "B", 26)
	doc.SetTextColor(0, 0, 0)
	doc.SetXY(0, 64)
	doc.CellFormat(pageW, 12, record.LearnerName, "", 1, "C", false, 0, "")

	if record.CourseName != "" {
		doc.SetFont("Helvetica", "", 13)
		doc.SetTextColor(60, 60, 60)
		doc.SetXY(0, 82)
		doc.CellFormat(pageW, 8, "has successfully completed", "", 1, "C", false, 0, "")
		doc.SetFont("Helvetica", "B", 17)
		doc.SetTextColor(0, 0, 0)
		doc.SetXY(0, 92)
		doc.CellFormat(pageW, 10, record.CourseName, "", 1, "C", false, 0, "")
	}

	// Dates and issuer
	doc.SetFont("Helvetica", "", 11)
	doc.SetTextColor(60, 60, 60)
	doc.SetXY(0, 112)
	doc.CellFormat(pageW, 6, "Issued on "+record.IssueDate.Format(dateLayout), "", 1, "C", false, 0, "")
	if record.HasExpiry() {
		doc.SetXY(0, 119)
		doc.CellFormat(pageW, 6, "Valid until "+record.ExpiryDate.Format(dateLayout), "", 1, "C", false, 0, "")
	}
	doc.SetXY(0, 130)
	doc.CellFormat(pageW, 6, record.TrainingPartner, "", 1, "C", false, 0, "")

	// Learner photo, top right inside the frame
	photoName := "learner-photo"
	doc.RegisterImageOptionsReader(photoName,
		fpdf.ImageOptions{ImageType: photoType}, bytes.NewReader(photo))
	doc.ImageOptions(photoName, pageW-58, 16, 42, 0, false,
		fpdf.ImageOptions{ImageType: photoType}, 0, "")

	// Verification QR, bottom right
	qrName := "verify-qr"
	doc.RegisterImageOptionsReader(qrName,
		fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrImg))
	doc.ImageOptions(qrName, pageW-48, pageH-48, 32, 32, false,
		fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	// Identifier, bottom left
	doc.SetFont("Courier", "", 9)
	doc.SetTextColor(90, 90, 90)
	doc.SetXY(14, pageH-20)
	doc.CellFormat(0, 5, "Certificate ID: "+record.CertificateID, "", 0, "L", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering certificate pdf: %w", err)
	}
	return buf.Bytes(), nil
}
