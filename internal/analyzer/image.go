package analyzer

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// MaxImageBytes caps the size of an image read from disk.
const MaxImageBytes = 20 << 20

// EncodeImageFile reads a JPEG, PNG or WebP image and returns it as a
// base64 data URI.
func EncodeImageFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxImageBytes {
		return "", fmt.Errorf("image is %d bytes, limit is %d", info.Size(), MaxImageBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	mime := http.DetectContentType(data)
	switch mime {
	case "image/jpeg", "image/png", "image/webp":
	default:
		return "", fmt.Errorf("unsupported image type %s", strings.TrimSpace(mime))
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
