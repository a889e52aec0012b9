package qr

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

// Encoder renders QR codes sized for badge printing.
type Encoder struct {
	size int
}

// NewEncoder creates an encoder; size is the square pixel dimension of the PNG.
func NewEncoder(size int) *Encoder {
	if size <= 0 {
		size = 256
	}
	return &Encoder{size: size}
}

// DataURL encodes content into a QR PNG and returns it as a base64 data URL,
// ready to drop into an <img> src.
func (e *Encoder) DataURL(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, e.size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
