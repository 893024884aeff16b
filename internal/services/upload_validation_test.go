package services

import (
	"strings"
	"testing"

	"github.com/atelierhaus/backend/internal/collection"
	"github.com/atelierhaus/backend/internal/config"
)

func testCfg() *config.Config {
	return &config.Config{
		UploadMaxImageSize: 1024,
		UploadMaxVideoSize: 4096,
	}
}

// pngBytes is a minimal payload that http.DetectContentType sniffs as image/png
func pngBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte("\x89PNG\r\n\x1a\n"))
	return data
}

func TestClassifyUploadImage(t *testing.T) {
	up, err := classifyUpload(testCfg(), UploadFile{Filename: "cover.png", Data: pngBytes(64)})
	if err != nil {
		t.Fatalf("classifyUpload: %v", err)
	}
	if up.Kind != collection.KindPhoto {
		t.Errorf("kind = %q, want %q", up.Kind, collection.KindPhoto)
	}
	if up.ContentType != "image/png" {
		t.Errorf("content type = %q, want image/png", up.ContentType)
	}
}

func TestClassifyUploadRejectsWrongExtension(t *testing.T) {
	_, err := classifyUpload(testCfg(), UploadFile{Filename: "cover.bmp", Data: pngBytes(64)})
	if err == nil {
		t.Fatal("expected error for .bmp extension")
	}
}

func TestClassifyUploadRejectsOversizedImage(t *testing.T) {
	_, err := classifyUpload(testCfg(), UploadFile{Filename: "big.png", Data: pngBytes(2048)})
	if err == nil {
		t.Fatal("expected error for oversized image")
	}
	if !strings.Contains(err.Error(), "too large") {
		t.Errorf("error = %v, want size message", err)
	}
}

func TestClassifyUploadRejectsUnknownContent(t *testing.T) {
	_, err := classifyUpload(testCfg(), UploadFile{Filename: "notes.txt", Data: []byte("plain text content")})
	if err == nil {
		t.Fatal("expected error for text content")
	}
}

func TestClassifyUploadSVG(t *testing.T) {
	svg := []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`)
	up, err := classifyUpload(testCfg(), UploadFile{Filename: "logo.svg", Data: svg})
	if err != nil {
		t.Fatalf("classifyUpload: %v", err)
	}
	if up.ContentType != "image/svg+xml" {
		t.Errorf("content type = %q, want image/svg+xml", up.ContentType)
	}
}

func TestClassifyLogoUploadRejectsVideoExtension(t *testing.T) {
	_, err := classifyLogoUpload(testCfg(), UploadFile{Filename: "clip.mp4", Data: pngBytes(64)})
	if err == nil {
		t.Fatal("expected error: logos must be images")
	}
}

func TestClassifyLogoUploadTagsKind(t *testing.T) {
	up, err := classifyLogoUpload(testCfg(), UploadFile{Filename: "partner.png", Data: pngBytes(64)})
	if err != nil {
		t.Fatalf("classifyLogoUpload: %v", err)
	}
	if up.Kind != collection.KindLogo {
		t.Errorf("kind = %q, want %q", up.Kind, collection.KindLogo)
	}
}
