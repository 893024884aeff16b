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

type ProjectHandler struct {
	projectService *services.ProjectService
	mediaStore     *services.MediaStore
	storageService *services.StorageService
	qrService      *services.QRService
	auditService   *services.AuditService
	cfg            *config.Config
}

func NewProjectHandler(projectService *services.ProjectService, mediaStore *services.MediaStore, storageService *services.StorageService, qrService *services.QRService, auditService *services.AuditService, cfg *config.Config) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		mediaStore:     mediaStore,
		storageService: storageService,
		qrService:      qrService,
		auditService:   auditService,
		cfg:            cfg,
	}
}

func (h *ProjectHandler) audit(c *gin.Context, action string, targetID uuid.UUID, details map[string]interface{}) {
	adminID, ip, ua := adminContext(c)
	if err := h.auditService.LogAction(adminID, action, "project", targetID, details, ip, ua); err != nil {
		log.Printf("WARN: failed to write audit log for %s: %v", action, err)
	}
}

// CreateProject creates a project
// POST /admin/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Summary     string `json:"summary"`
		Description string `json:"description"`
		Slug        string `json:"slug"`
		Year        int    `json:"year"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projectService.CreateProject(req.Title, req.Summary, req.Description, req.Slug, req.Year)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.audit(c, "create_project", project.ID, map[string]interface{}{"title": project.Title})
	c.JSON(http.StatusCreated, project)
}

// UpdateProject updates project metadata
// PUT /admin/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Summary     *string `json:"summary"`
		Description *string `json:"description"`
		Slug        *string `json:"slug"`
		Year        *int    `json:"year"`
		ExternalURL *string `json:"external_url"`
		Published   *bool   `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projectService.UpdateProject(id, services.ProjectUpdate{
		Title:       req.Title,
		Summary:     req.Summary,
		Description: req.Description,
		Slug:        req.Slug,
		Year:        req.Year,
		ExternalURL: req.ExternalURL,
		Published:   req.Published,
	})
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "update_project", project.ID, nil)
	c.JSON(http.StatusOK, project)
}

// GetProject returns one project with its media
// GET /admin/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	project, err := h.projectService.GetProject(id)
	if err != nil {
		respondCollectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// ListProjects returns projects with pagination
// GET /admin/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	projects, total, err := h.projectService.ListProjects(limit, offset, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// DeleteProject deletes a project with all its media
// DELETE /admin/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	warnings, err := h.projectService.DeleteProject(c.Request.Context(), id)
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "delete_project", id, map[string]interface{}{"cleanup_warnings": len(warnings)})
	c.JSON(http.StatusOK, gin.H{
		"message":  "project deleted",
		"warnings": warnings,
	})
}

// AttachMedia uploads files and attaches them to the project
// POST /admin/projects/:id/media
// Multipart form: files[] (one or more)
func (h *ProjectHandler) AttachMedia(c *gin.Context) {
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

	col, err := h.projectService.AttachMedia(c.Request.Context(), id, files)
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "attach_media", id, map[string]interface{}{"count": len(files)})
	c.JSON(http.StatusCreated, collectionJSON(col))
}

// AttachPartnerLogos uploads partner logos into the project collection
// POST /admin/projects/:id/partner-logos
// Multipart form: files[] (one or more images)
func (h *ProjectHandler) AttachPartnerLogos(c *gin.Context) {
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

	col, err := h.projectService.AttachPartnerLogos(c.Request.Context(), id, files)
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "attach_partner_logos", id, map[string]interface{}{"count": len(files)})
	c.JSON(http.StatusCreated, collectionJSON(col))
}

// RemoveMedia detaches one media record and deletes its bytes
// DELETE /admin/projects/:id/media/:mediaId
func (h *ProjectHandler) RemoveMedia(c *gin.Context) {
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

	col, warnings, err := h.projectService.RemoveMedia(c.Request.Context(), id, mediaID)
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
// PUT /admin/projects/:id/media/:mediaId/primary
func (h *ProjectHandler) SetPrimaryMedia(c *gin.Context) {
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

	col, err := h.projectService.SetPrimaryMedia(c.Request.Context(), id, mediaID)
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "set_primary_media", id, map[string]interface{}{"media_id": mediaID})
	c.JSON(http.StatusOK, collectionJSON(col))
}

// ReorderMedia rewrites the media order of the project
// PUT /admin/projects/:id/media/order
func (h *ProjectHandler) ReorderMedia(c *gin.Context) {
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

	col, err := h.projectService.ReorderMedia(c.Request.Context(), id, req.MediaIDs)
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "reorder_media", id, nil)
	c.JSON(http.StatusOK, collectionJSON(col))
}

// PurgeMedia detaches and deletes all media of the project
// DELETE /admin/projects/:id/media
func (h *ProjectHandler) PurgeMedia(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	warnings, err := h.projectService.PurgeMedia(c.Request.Context(), id)
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
// public project page
// GET /admin/projects/:id/qr.pdf
func (h *ProjectHandler) ShareQRPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	project, err := h.projectService.GetProject(id)
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	pdf, err := h.qrService.GenerateProjectQRPDF(project)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate PDF"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+project.Slug+"-share.pdf\"")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ServeMedia streams a media file, fetching it from object storage into
// the local cache first when needed
// GET /admin/media/projects/:mediaId/file
func (h *ProjectHandler) ServeMedia(c *gin.Context) {
	mediaID, err := uuid.Parse(c.Param("mediaId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid media id"})
		return
	}

	row, err := h.projectService.GetMediaRow(mediaID)
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
