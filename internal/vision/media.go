package vision

import (
	"fmt"
	"net/http"
)

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniffing standard (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// UnsupportedMediaError reports an image a classifier will not accept.
type UnsupportedMediaError struct {
	MimeType string
	Size     int
	Reason   string
}

func (e *UnsupportedMediaError) Error() string {
	return fmt.Sprintf("unsupported image (%s, %d bytes): %s", e.MimeType, e.Size, e.Reason)
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// SniffMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func SniffMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// CheckMedia validates image bytes against a backend's limits and returns the
// sniffed MIME type. The declared type is only reported back in errors; the
// bytes decide. maxBytes <= 0 disables the size check.
func CheckMedia(data []byte, declared string, maxBytes int) (string, error) {
	if len(data) == 0 {
		return "", &UnsupportedMediaError{MimeType: declared, Reason: "empty image"}
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return "", &UnsupportedMediaError{
			MimeType: declared,
			Size:     len(data),
			Reason:   fmt.Sprintf("larger than %d bytes", maxBytes),
		}
	}
	mime, ok := SniffMIME(data)
	if !ok {
		return "", &UnsupportedMediaError{MimeType: declared, Size: len(data), Reason: "not a JPEG, PNG, GIF or WebP image"}
	}
	return mime, nil
}
