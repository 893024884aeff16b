package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/atelierhaus/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PublicHandler serves the published site content without authentication
type PublicHandler struct {
	galleryService *services.GalleryService
	projectService *services.ProjectService
	pageService    *services.PageService
	teamService    *services.TeamService
	partnerService *services.PartnerService
	mediaStore     *services.MediaStore
	storageService *services.StorageService
}

func NewPublicHandler(galleryService *services.GalleryService, projectService *services.ProjectService, pageService *services.PageService, teamService *services.TeamService, partnerService *services.PartnerService, mediaStore *services.MediaStore, storageService *services.StorageService) *PublicHandler {
	return &PublicHandler{
		galleryService: galleryService,
		projectService: projectService,
		pageService:    pageService,
		teamService:    teamService,
		partnerService: partnerService,
		mediaStore:     mediaStore,
		storageService: storageService,
	}
}

// ListGallery handles GET /gallery
func (h *PublicHandler) ListGallery(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, total, err := h.galleryService.ListItems(limit, offset, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list gallery"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetGalleryItem handles GET /gallery/:slug
func (h *PublicHandler) GetGalleryItem(c *gin.Context) {
	item, err := h.galleryService.GetItemBySlug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "gallery item not found"})
		return
	}
	if !item.Published {
		c.JSON(http.StatusNotFound, gin.H{"error": "gallery item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// ListProjects handles GET /projects
func (h *PublicHandler) ListProjects(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	projects, total, err := h.projectService.ListProjects(limit, offset, true)
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

// GetProject handles GET /projects/:slug
func (h *PublicHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.GetProjectBySlug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	if !project.Published {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, project)
}

// GetPage handles GET /pages/:slug (published pages only)
func (h *PublicHandler) GetPage(c *gin.Context) {
	page, err := h.pageService.GetPageBySlug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListTeam handles GET /team
func (h *PublicHandler) ListTeam(c *gin.Context) {
	members, err := h.teamService.ListMembers(true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list team"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// ListPartners handles GET /partners
func (h *PublicHandler) ListPartners(c *gin.Context) {
	partners, err := h.partnerService.ListPartners(true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list partners"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"partners": partners})
}

// ServeGalleryMedia handles GET /media/gallery/:mediaId/file. Only media
// of published items is served.
func (h *PublicHandler) ServeGalleryMedia(c *gin.Context) {
	mediaID, err := uuid.Parse(c.Param("mediaId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid media id"})
		return
	}

	row, err := h.galleryService.GetMediaRow(mediaID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "media not found"})
		return
	}

	item, err := h.galleryService.GetItem(row.GalleryItemID)
	if err != nil || !item.Published {
		c.JSON(http.StatusNotFound, gin.H{"error": "media not found"})
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

// ServeProjectMedia handles GET /media/projects/:mediaId/file. Only media
// of published projects is served.
func (h *PublicHandler) ServeProjectMedia(c *gin.Context) {
	mediaID, err := uuid.Parse(c.Param("mediaId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid media id"})
		return
	}

	row, err := h.projectService.GetMediaRow(mediaID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "media not found"})
		return
	}

	project, err := h.projectService.GetProject(row.ProjectID)
	if err != nil || !project.Published {
		c.JSON(http.StatusNotFound, gin.H{"error": "media not found"})
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
