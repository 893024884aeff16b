package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/atelierhaus/backend/internal/config"
	"github.com/atelierhaus/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GalleryHandler struct {
	galleryService *services.GalleryService
	mediaStore     *services.MediaStore
	storageService *services.StorageService
	qrService      *services.QRService
	auditService   *services.AuditService
	cfg            *config.Config
}

func NewGalleryHandler(galleryService *services.GalleryService, mediaStore *services.MediaStore, storageService *services.StorageService, qrService *services.QRService, auditService *services.AuditService, cfg *config.Config) *GalleryHandler {
	return &GalleryHandler{
		galleryService: galleryService,
		mediaStore:     mediaStore,
		storageService: storageService,
		qrService:      qrService,
		auditService:   auditService,
		cfg:            cfg,
	}
}

func (h *GalleryHandler) audit(c *gin.Context, action string, targetID uuid.UUID, details map[string]interface{}) {
	adminID, ip, ua := adminContext(c)
	if err := h.auditService.LogAction(adminID, action, "gallery_item", targetID, details, ip, ua); err != nil {
		log.Printf("WARN: failed to write audit log for %s: %v", action, err)
	}
}

// CreateItem creates a gallery item
// POST /admin/gallery
func (h *GalleryHandler) CreateItem(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Slug        string `json:"slug"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.galleryService.CreateItem(req.Title, req.Description, req.Slug)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.audit(c, "create_gallery_item", item.ID, map[string]interface{}{"title": item.Title})
	c.JSON(http.StatusCreated, item)
}

// UpdateItem updates gallery item metadata
// PUT /admin/gallery/:id
func (h *GalleryHandler) UpdateItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Slug        *string `json:"slug"`
		Published   *bool   `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.galleryService.UpdateItem(id, services.GalleryItemUpdate{
		Title:       req.Title,
		Description: req.Description,
		Slug:        req.Slug,
		Published:   req.Published,
	})
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "update_gallery_item", item.ID, nil)
	c.JSON(http.StatusOK, item)
}

// GetItem returns one gallery item with its media
// GET /admin/gallery/:id
func (h *GalleryHandler) GetItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	item, err := h.galleryService.GetItem(id)
	if err != nil {
		respondCollectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ListItems returns gallery items with pagination
// GET /admin/gallery
func (h *GalleryHandler) ListItems(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, total, err := h.galleryService.ListItems(limit, offset, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list gallery items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// DeleteItem deletes a gallery item with all its media
// DELETE /admin/gallery/:id
func (h *GalleryHandler) DeleteItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	warnings, err := h.galleryService.DeleteItem(c.Request.Context(), id)
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "delete_gallery_item", id, map[string]interface{}{"cleanup_warnings": len(warnings)})
	c.JSON(http.StatusOK, gin.H{
		"message":  "gallery item deleted",
		"warnings": warnings,
	})
}

// AttachMedia uploads files and attaches them to the item
// POST /admin/gallery/:id/media
// Multipart form: files[] (one or more)
func (h *GalleryHandler) AttachMedia(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	files, err := readMultipartFiles(c, "files[]", h.cfg.UploadMaxBatch)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	col, err := h.galleryService.AttachMedia(c.Request.Context(), id, files)
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "attach_media", id, map[string]interface{}{"count": len(files)})
	c.JSON(http.StatusCreated, collectionJSON(col))
}

// RemoveMedia detaches one media record and deletes its bytes
// DELETE /admin/gallery/:id/media/:mediaId
func (h *GalleryHandler) RemoveMedia(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	mediaID, err := uuid.Parse(c.Param("mediaId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid media id"})
		return
	}

	col, warnings, err := h.galleryService.RemoveMedia(c.Request.Context(), id, mediaID)
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "remove_media", id, map[string]interface{}{"media_id": mediaID})
	resp := collectionJSON(col)
	resp["warnings"] = warnings
	c.JSON(http.StatusOK, resp)
}

// SetPrimaryMedia makes one media record the cover
// PUT /admin/gallery/:id/media/:mediaId/primary
func (h *GalleryHandler) SetPrimaryMedia(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	mediaID, err := uuid.Parse(c.Param("mediaId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid media id"})
		return
	}

	col, err := h.galleryService.SetPrimaryMedia(c.Request.Context(), id, mediaID)
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "set_primary_media", id, map[string]interface{}{"media_id": mediaID})
	c.JSON(http.StatusOK, collectionJSON(col))
}

// ReorderMedia rewrites the media order of the item
// PUT /admin/gallery/:id/media/order
func (h *GalleryHandler) ReorderMedia(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		MediaIDs []uuid.UUID `json:"media_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	col, err := h.galleryService.ReorderMedia(c.Request.Context(), id, req.MediaIDs)
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "reorder_media", id, nil)
	c.JSON(http.StatusOK, collectionJSON(col))
}

// PurgeMedia detaches and deletes all media of the item
// DELETE /admin/gallery/:id/media
func (h *GalleryHandler) PurgeMedia(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	warnings, err := h.galleryService.PurgeMedia(c.Request.Context(), id)
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "purge_media", id, map[string]interface{}{"cleanup_warnings": len(warnings)})
	c.JSON(http.StatusOK, gin.H{
		"message":  "media purged",
		"warnings": warnings,
	})
}

// ShareQRPDF returns a printable share sheet with a QR code for the
// public gallery page
// GET /admin/gallery/:id/qr.pdf
func (h *GalleryHandler) ShareQRPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	item, err := h.galleryService.GetItem(id)
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	pdf, err := h.qrService.GenerateGalleryQRPDF(item)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate PDF"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+item.Slug+"-share.pdf\"")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ServeMedia streams a media file, fetching it from object storage into
// the local cache first when needed
// GET /admin/media/gallery/:mediaId/file
func (h *GalleryHandler) ServeMedia(c *gin.Context) {
	mediaID, err := uuid.Parse(c.Param("mediaId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid media id"})
		return
	}

	row, err := h.galleryService.GetMediaRow(mediaID)
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	path, err := h.mediaStore.LocalFilePath(c.Request.Context(), row.StorageKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch media"})
		return
	}

	if err := h.storageService.ServeFileWithRange(c.Writer, c.Request, path, row.Filename); err != nil {
		log.Printf("WARN: failed to serve media %s: %v", row.StorageKey, err)
	}
}
