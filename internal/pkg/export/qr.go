package export

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// defaultQRSize is the rendered edge length in pixels
const defaultQRSize = 256

// StudentQR renders a student's login code as a QR PNG
func StudentQR(code string) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("cannot encode empty code")
	}

	png, err := qrcode.Encode(code, qrcode.Medium, defaultQRSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
