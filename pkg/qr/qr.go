// Package qr renders QR codes for short URLs as data URLs, ready to embed
// in an <img> tag.
package qr

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

const imageSize = 256

// DataURL encodes url as a PNG QR code wrapped in a base64 data URL.
func DataURL(url string) (string, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, imageSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
