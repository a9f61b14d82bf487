package utils

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// GenerateQRCodePNG encodes content as a square PNG of size pixels.
func GenerateQRCodePNG(content string, size int) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}
