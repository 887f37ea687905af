// Package imaging validates and prepares base64 medication photos for the
// vision model: data-URL stripping, size bounds, format sniffing, quality
// metrics and downscaling.
package imaging

import (
	"bytes"
	"encoding/base64"
	"strings"

	"medagent-tools/errors"
)

const (
	MediaTypeJPEG = "image/jpeg"
	MediaTypePNG  = "image/png"
	MediaTypeWebP = "image/webp"
)

// NormalizeBase64 strips an optional data-URL prefix, removes whitespace
// and restores padding so the payload decodes cleanly.
func NormalizeBase64(data string) (string, error) {
	if strings.HasPrefix(data, "data:") {
		idx := strings.Index(data, ";base64,")
		if idx < 0 {
			return "", errors.NewImageError("invalid data URL format", nil)
		}
		data = data[idx+len(";base64,"):]
	}

	replacer := strings.NewReplacer("\n", "", "\r", "", " ", "")
	data = replacer.Replace(strings.TrimSpace(data))

	if padding := len(data) % 4; padding != 0 {
		data += strings.Repeat("=", 4-padding)
	}

	return data, nil
}

// EstimatedByteSize approximates the decoded size of a base64 payload.
// Base64 text is about a third larger than the bytes it encodes.
func EstimatedByteSize(data string) int {
	return len(data) * 3 / 4
}

// DetectMediaType sniffs the image format from the decoded magic bytes,
// defaulting to JPEG when the format is unrecognized.
func DetectMediaType(decoded []byte) string {
	switch {
	case bytes.HasPrefix(decoded, []byte{0xff, 0xd8, 0xff}):
		return MediaTypeJPEG
	case bytes.HasPrefix(decoded, []byte("\x89PNG\r\n\x1a\n")):
		return MediaTypePNG
	case bytes.HasPrefix(decoded, []byte("RIFF")) && len(decoded) >= 12 && bytes.Equal(decoded[8:12], []byte("WEBP")):
		return MediaTypeWebP
	default:
		return MediaTypeJPEG
	}
}

// FormatFromMediaType returns the bare format token the vision model
// request expects ("jpeg", "png", "webp").
func FormatFromMediaType(mediaType string) string {
	if idx := strings.LastIndex(mediaType, "/"); idx >= 0 {
		return mediaType[idx+1:]
	}
	return mediaType
}

func decodeBase64(data string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, errors.NewImageError("failed to decode base64 image data", err)
	}
	return decoded, nil
}
