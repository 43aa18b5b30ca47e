// file: services/media.go
package services

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/microcosm-cc/bluemonday"
	"github.com/skip2/go-qrcode"
)

// MaxCoverSide bounds the longest side of stored cover images.
const MaxCoverSide = 1600

// ResizeCover decodes an uploaded image, applies EXIF orientation, fits it in
// MaxCoverSide and re-encodes it. PNG input stays PNG so transparency survives.
func ResizeCover(r io.Reader) ([]byte, string, error) {
	img, format, err := decodeWithFormat(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > MaxCoverSide || bounds.Dy() > MaxCoverSide {
		img = imaging.Fit(img, MaxCoverSide, MaxCoverSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if format == "png" {
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/png", nil
	}
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/jpeg", nil
}

func decodeWithFormat(r io.Reader) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", err
	}
	return img, format, nil
}

// QRCodePNG renders content as a PNG QR code with medium error correction.
func QRCodePNG(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
	reSpaces     = regexp.MustCompile(`\s+`)
)

// SanitizeHTML strips scripts, event handlers and other unsafe markup from editor output.
func SanitizeHTML(html string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(html))
}

// Excerpt returns the first max runes of html's text content.
func Excerpt(html string, max int) string {
	text := strictPolicy.Sanitize(strings.NewReplacer("<br>", " ", "</p>", " ", "</li>", " ").Replace(html))
	text = strings.TrimSpace(reSpaces.ReplaceAllString(text, " "))
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)[:max]
	return strings.TrimSpace(string(runes)) + "…"
}
