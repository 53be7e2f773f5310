// Package image validates inbound image payloads for the stateless
// image-describe flow.
package image

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"strings"

	// Register decoders for the formats the describe flow accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

const (
	// MaxImageSize is the maximum size of a decoded image payload (10MB).
	MaxImageSize = 10 * 1024 * 1024

	// MaxImageDimension is the maximum allowed width or height.
	MaxImageDimension = 8192
)

var (
	// ErrInvalidBase64 indicates the payload is not valid base64.
	ErrInvalidBase64 = errors.New("image payload is not valid base64")
	// ErrNotAnImage indicates the decoded bytes are not a recognized image format.
	ErrNotAnImage = errors.New("payload is not a recognized image format")
	// ErrImageTooLarge indicates the image exceeds the maximum allowed size.
	ErrImageTooLarge = errors.New("image exceeds maximum size")
	// ErrInvalidDimensions indicates the image dimensions are out of range.
	ErrInvalidDimensions = errors.New("image dimensions out of allowed range")
)

// Payload is a validated inbound image.
type Payload struct {
	// Data is the raw (decoded) image bytes.
	Data []byte
	// Format is the detected image format ("png", "jpeg", "gif").
	Format string
}

// DecodePayload decodes a base64 image payload into validated raw bytes.
//
// An optional data-URI prefix ("data:image/png;base64,") is stripped before
// decoding. The decoded bytes must parse as a PNG, JPEG, or GIF header with
// sane dimensions.
//
// Returns ErrInvalidBase64, ErrNotAnImage, ErrImageTooLarge, or
// ErrInvalidDimensions on failure.
func DecodePayload(encoded string) (*Payload, error) {
	encoded = stripDataURIPrefix(strings.TrimSpace(encoded))
	if encoded == "" {
		return nil, ErrInvalidBase64
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidBase64
	}

	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	// DecodeConfig reads only the header, which validates the format and
	// yields dimensions without decoding whole pixel buffers.
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotAnImage
	}

	if cfg.Width <= 0 || cfg.Height <= 0 ||
		cfg.Width > MaxImageDimension || cfg.Height > MaxImageDimension {
		return nil, ErrInvalidDimensions
	}

	return &Payload{Data: data, Format: format}, nil
}

// stripDataURIPrefix removes a "data:<mediatype>;base64," prefix if present.
// Browsers commonly send canvas exports in this form.
func stripDataURIPrefix(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	idx := strings.Index(s, ",")
	if idx < 0 {
		return s
	}
	return s[idx+1:]
}
