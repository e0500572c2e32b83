package workflow

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrNotImage is returned when a selected file is not an image.
	ErrNotImage = errors.New("file is not an image")
	// ErrEmptyUpload is returned when a selected file has no content.
	ErrEmptyUpload = errors.New("file is empty")
)

// DetectImageType returns the image MIME type of data. Sniffing wins over the
// declared type; the declared type is trusted only when sniffing is
// inconclusive (formats net/http does not recognise, such as HEIC).
func DetectImageType(data []byte, declared string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyUpload
	}
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed, nil
	}
	declared = strings.TrimSpace(strings.ToLower(declared))
	if sniffed == "application/octet-stream" && strings.HasPrefix(declared, "image/") {
		return declared, nil
	}
	return "", ErrNotImage
}

// PreviewURL renders data as a data URL suitable for an <img> src.
func PreviewURL(contentType string, data []byte) string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(contentType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(contentType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}
