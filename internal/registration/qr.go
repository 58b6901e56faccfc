// AngelaMos | 2026
// qr.go

package registration

import (
	"encoding/json"
	"fmt"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	qrDefaultSize = 256
	qrMinSize     = 64
	qrMaxSize     = 1024
)

// qrPayload is the scannable summary encoded into the QR image. Field
// names are part of the wire format road-side verification apps read;
// renaming them needs a version bump of "v".
type qrPayload struct {
	Version     int    `json:"v"`
	PlateNumber string `json:"plate"`
	OwnerName   string `json:"owner"`
	Status      string `json:"status"`
	ExpiryDate  string `json:"expires"`
}

// EncodeQR renders a PNG QR code summarizing the registration. Size is
// clamped to [64, 1024] pixels; zero picks the default.
func EncodeQR(reg *Registration, size int) ([]byte, error) {
	size = clampQRSize(size)

	payload := qrPayload{
		Version:     1,
		PlateNumber: reg.PlateNumber,
		OwnerName:   reg.OwnerName,
		Status:      reg.Status,
		ExpiryDate:  reg.ExpiryDate.UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode qr payload: %w", err)
	}

	png, err := qrcode.Encode(string(data), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}

	return png, nil
}

func clampQRSize(size int) int {
	switch {
	case size == 0:
		return qrDefaultSize
	case size < qrMinSize:
		return qrMinSize
	case size > qrMaxSize:
		return qrMaxSize
	}
	return size
}
