package credential

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const defaultQRSize = 256

// QRPNG renders a credential token as a PNG QR code, the form scanners read
// at the gate.
func QRPNG(token string, size int) ([]byte, error) {
	if size <= 0 {
		size = defaultQRSize
	}

	png, err := qrcode.Encode(token, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("could not encode credential QR: %w", err)
	}

	return png, nil
}
