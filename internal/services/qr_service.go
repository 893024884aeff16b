package services

import (
	"bytes"
	"fmt"

	"github.com/atelierhaus/backend/internal/config"
	"github.com/atelierhaus/backend/internal/models"
	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

type QRService struct {
	cfg *config.Config
}

func NewQRService(cfg *config.Config) *QRService { return &QRService{cfg: cfg} }

// GenerateGalleryQRPDF generates an A4 share sheet with a QR code
// pointing at the public gallery page
func (s *QRService) GenerateGalleryQRPDF(item *models.GalleryItem) ([]byte, error) {
	pageURL := fmt.Sprintf("%s/gallery/%s", s.cfg.FrontendURL, item.Slug)
	return s.sharePDF(item.Title, pageURL)
}

// GenerateProjectQRPDF generates an A4 share sheet with a QR code
// pointing at the public project page
func (s *QRService) GenerateProjectQRPDF(project *models.Project) ([]byte, error) {
	pageURL := fmt.Sprintf("%s/projects/%s", s.cfg.FrontendURL, project.Slug)
	return s.sharePDF(project.Title, pageURL)
}

func (s *QRService) sharePDF(title, pageURL string) ([]byte, error) {
	png, err := qrcode.Encode(pageURL, qrcode.Medium, 512)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 6, pageURL, "", "L", false)

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("qr", opt, bytes.NewReader(png))

	// Center the QR on the page, A4 is 210mm wide
	x := (210.0 - 100.0) / 2.0
	y := pdf.GetY() + 10
	pdf.ImageOptions("qr", x, y, 100, 100, false, opt, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
