package render

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// qrPNG encodes payload as a QR code and returns it as PNG bytes sized
// for embedding into the PDF.
func qrPNG(payload string, sizePx int) ([]byte, error) {
	code, err := qr.Encode(payload, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encoding qr payload: %w", err)
	}
	code, err = barcode.Scale(code, sizePx, sizePx)
	if err != nil {
		return nil, fmt.Errorf("scaling qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return nil, fmt.Errorf("encoding qr png: %w", err)
	}
	return buf.Bytes(), nil
}
