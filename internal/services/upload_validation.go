package services

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/atelierhaus/backend/internal/collection"
	"github.com/atelierhaus/backend/internal/config"
)

// UploadFile is one incoming multipart file
type UploadFile struct {
	Filename string
	Data     []byte
}

var (
	allowedImageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".svg": true}
	allowedVideoExts = map[string]bool{".mp4": true, ".webm": true, ".mov": true}
)

// classifyUpload sniffs the content type, validates extension and size, and
// maps the file to a media kind. Validation happens before any byte reaches
// the file store.
func classifyUpload(cfg *config.Config, f UploadFile) (collection.Upload, error) {
	mimeType := http.DetectContentType(f.Data)
	ext := strings.ToLower(filepath.Ext(f.Filename))

	switch {
	case strings.HasPrefix(mimeType, "image/") || ext == ".svg":
		if !allowedImageExts[ext] {
			return collection.Upload{}, fmt.Errorf("unsupported image extension: %s", ext)
		}
		if int64(len(f.Data)) > cfg.UploadMaxImageSize {
			return collection.Upload{}, fmt.Errorf("image too large: %d bytes (max: %d)", len(f.Data), cfg.UploadMaxImageSize)
		}
		if ext == ".svg" {
			mimeType = "image/svg+xml"
		}
		return collection.Upload{
			Filename:    f.Filename,
			ContentType: mimeType,
			Data:        f.Data,
			Kind:        collection.KindPhoto,
		}, nil

	case strings.HasPrefix(mimeType, "video/"):
		if !allowedVideoExts[ext] {
			return collection.Upload{}, fmt.Errorf("unsupported video extension: %s", ext)
		}
		if int64(len(f.Data)) > cfg.UploadMaxVideoSize {
			return collection.Upload{}, fmt.Errorf("video too large: %d bytes (max: %d)", len(f.Data), cfg.UploadMaxVideoSize)
		}
		return collection.Upload{
			Filename:    f.Filename,
			ContentType: mimeType,
			Data:        f.Data,
			Kind:        collection.KindVideo,
		}, nil

	default:
		return collection.Upload{}, fmt.Errorf("invalid content type: expected image or video, got %s", mimeType)
	}
}

// classifyLogoUpload is classifyUpload restricted to images, tagged as logo
func classifyLogoUpload(cfg *config.Config, f UploadFile) (collection.Upload, error) {
	up, err := classifyUpload(cfg, f)
	if err != nil {
		return collection.Upload{}, err
	}
	if up.Kind != collection.KindPhoto {
		return collection.Upload{}, fmt.Errorf("logo must be an image, got %s", up.ContentType)
	}
	up.Kind = collection.KindLogo
	return up, nil
}
