package pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
)

const (
	qrPixels      = 256
	maxPhotoBytes = 5 << 20
)

// qrPNG codifica content como QR (corrección M) en un PNG cuadrado de 8 bits en grises.
func qrPNG(content string) ([]byte, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qr: codificar: %w", err)
	}
	scaled, err := barcode.Scale(code, qrPixels, qrPixels)
	if err != nil {
		return nil, fmt.Errorf("qr: escalar: %w", err)
	}
	b := scaled.Bounds()
	gray := image.NewGray(b)
	draw.Draw(gray, b, scaled, b.Min, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("qr: png: %w", err)
	}
	return buf.Bytes(), nil
}

// loadPhoto resuelve la foto de la parte: data URL en base64 o URL http(s).
func loadPhoto(ctx context.Context, client *http.Client, src string) ([]byte, error) {
	if strings.HasPrefix(src, "data:") {
		comma := strings.IndexByte(src, ',')
		if comma < 0 || !strings.Contains(src[:comma], ";base64") {
			return nil, fmt.Errorf("foto: data URL no soportada")
		}
		data, err := base64.StdEncoding.DecodeString(src[comma+1:])
		if err != nil {
			return nil, fmt.Errorf("foto: %w", err)
		}
		if len(data) > maxPhotoBytes {
			return nil, fmt.Errorf("foto: supera %d bytes", maxPhotoBytes)
		}
		return data, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("foto: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("foto: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("foto: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("foto: %w", err)
	}
	if len(data) > maxPhotoBytes {
		return nil, fmt.Errorf("foto: supera %d bytes", maxPhotoBytes)
	}
	return data, nil
}

// imageExtension tipo de imagen que maroto sabe incrustar; ok=false para cualquier otro.
func imageExtension(data []byte) (extension.Type, bool) {
	switch http.DetectContentType(data) {
	case "image/png":
		return extension.Png, true
	case "image/jpeg":
		return extension.Jpg, true
	}
	return "", false
}
