package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"
	"strings"

	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/Ly-yang/wechat-editor/internal/apperror"
)

// allowedImages maps accepted MIME types to the extension used on disk.
var allowedImages = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// IsAllowedImageType reports whether a declared MIME type is accepted.
func IsAllowedImageType(mime string) bool {
	_, ok := allowedImages[normalizeMIME(mime)]
	return ok
}

// ValidateImage checks an upload three ways: the declared MIME type, the type
// sniffed from the first bytes, and a successful header decode. It returns
// the file extension matching the real content.
func ValidateImage(declared string, data []byte) (string, error) {
	if !IsAllowedImageType(declared) {
		return "", apperror.Unsupported("image", fmt.Sprintf("file type %q is not allowed; use jpeg, png, gif or webp", declared))
	}

	sniffed := normalizeMIME(http.DetectContentType(data))
	ext, ok := allowedImages[sniffed]
	if !ok {
		return "", apperror.Unsupported("image", "file content is not a supported image")
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", apperror.Unsupported("image", "file content is not a readable image")
	}
	return ext, nil
}

func normalizeMIME(mime string) string {
	mime, _, _ = strings.Cut(mime, ";")
	mime = strings.ToLower(strings.TrimSpace(mime))
	if mime == "image/jpg" {
		return "image/jpeg"
	}
	return mime
}
