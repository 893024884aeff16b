package handlers

import (
	"log"
	"net/http"

	"github.com/atelierhaus/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContentHandler bundles the admin endpoints for pages, team members and
// partners
type ContentHandler struct {
	pageService    *services.PageService
	teamService    *services.TeamService
	partnerService *services.PartnerService
	auditService   *services.AuditService
}

func NewContentHandler(pageService *services.PageService, teamService *services.TeamService, partnerService *services.PartnerService, auditService *services.AuditService) *ContentHandler {
	return &ContentHandler{
		pageService:    pageService,
		teamService:    teamService,
		partnerService: partnerService,
		auditService:   auditService,
	}
}

func (h *ContentHandler) audit(c *gin.Context, action, targetType string, targetID uuid.UUID) {
	adminID, ip, ua := adminContext(c)
	if err := h.auditService.LogAction(adminID, action, targetType, targetID, nil, ip, ua); err != nil {
		log.Printf("WARN: failed to write audit log for %s: %v", action, err)
	}
}

// --- Pages ---

// CreatePage handles POST /admin/pages
func (h *ContentHandler) CreatePage(c *gin.Context) {
	var req struct {
		Slug  string `json:"slug"`
		Title string `json:"title" binding:"required"`
		Body  string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.pageService.CreatePage(req.Slug, req.Title, req.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.audit(c, "create_page", "page", page.ID)
	c.JSON(http.StatusCreated, page)
}

// UpdatePage handles PUT /admin/pages/:id
func (h *ContentHandler) UpdatePage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Slug      *string `json:"slug"`
		Title     *string `json:"title"`
		Body      *string `json:"body"`
		Published *bool   `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.pageService.UpdatePage(id, services.PageUpdate{
		Slug:      req.Slug,
		Title:     req.Title,
		Body:      req.Body,
		Published: req.Published,
	})
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "update_page", "page", page.ID)
	c.JSON(http.StatusOK, page)
}

// ListPages handles GET /admin/pages
func (h *ContentHandler) ListPages(c *gin.Context) {
	pages, err := h.pageService.ListPages(false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list pages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

// GetPage handles GET /admin/pages/:id
func (h *ContentHandler) GetPage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	page, err := h.pageService.GetPage(id)
	if err != nil {
		respondCollectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// DeletePage handles DELETE /admin/pages/:id
func (h *ContentHandler) DeletePage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.pageService.DeletePage(id); err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "delete_page", "page", id)
	c.JSON(http.StatusOK, gin.H{"message": "page deleted"})
}

// --- Team ---

// CreateTeamMember handles POST /admin/team
func (h *ContentHandler) CreateTeamMember(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Role  string `json:"role"`
		Bio   string `json:"bio"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.teamService.CreateMember(req.Name, req.Role, req.Bio, req.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.audit(c, "create_team_member", "team_member", member.ID)
	c.JSON(http.StatusCreated, member)
}

// UpdateTeamMember handles PUT /admin/team/:id
func (h *ContentHandler) UpdateTeamMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Name         *string `json:"name"`
		Role         *string `json:"role"`
		Bio          *string `json:"bio"`
		Email        *string `json:"email"`
		DisplayOrder *int    `json:"display_order"`
		Published    *bool   `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.teamService.UpdateMember(id, services.TeamMemberUpdate{
		Name:         req.Name,
		Role:         req.Role,
		Bio:          req.Bio,
		Email:        req.Email,
		DisplayOrder: req.DisplayOrder,
		Published:    req.Published,
	})
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "update_team_member", "team_member", member.ID)
	c.JSON(http.StatusOK, member)
}

// ListTeamMembers handles GET /admin/team
func (h *ContentHandler) ListTeamMembers(c *gin.Context) {
	members, err := h.teamService.ListMembers(false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list team members"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// SetTeamPhoto handles POST /admin/team/:id/photo
// Multipart form: file (one image)
func (h *ContentHandler) SetTeamPhoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	files, err := readMultipartFiles(c, "file", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.teamService.SetPhoto(c.Request.Context(), id, files[0])
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "set_team_photo", "team_member", member.ID)
	c.JSON(http.StatusOK, member)
}

// DeleteTeamMember handles DELETE /admin/team/:id
func (h *ContentHandler) DeleteTeamMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.teamService.DeleteMember(c.Request.Context(), id); err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "delete_team_member", "team_member", id)
	c.JSON(http.StatusOK, gin.H{"message": "team member deleted"})
}

// --- Partners ---

// CreatePartner handles POST /admin/partners
func (h *ContentHandler) CreatePartner(c *gin.Context) {
	var req struct {
		Name       string `json:"name" binding:"required"`
		WebsiteURL string `json:"website_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	partner, err := h.partnerService.CreatePartner(req.Name, req.WebsiteURL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.audit(c, "create_partner", "partner", partner.ID)
	c.JSON(http.StatusCreated, partner)
}

// UpdatePartner handles PUT /admin/partners/:id
func (h *ContentHandler) UpdatePartner(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Name         *string `json:"name"`
		WebsiteURL   *string `json:"website_url"`
		DisplayOrder *int    `json:"display_order"`
		Published    *bool   `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	partner, err := h.partnerService.UpdatePartner(id, services.PartnerUpdate{
		Name:         req.Name,
		WebsiteURL:   req.WebsiteURL,
		DisplayOrder: req.DisplayOrder,
		Published:    req.Published,
	})
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "update_partner", "partner", partner.ID)
	c.JSON(http.StatusOK, partner)
}

// ListPartners handles GET /admin/partners
func (h *ContentHandler) ListPartners(c *gin.Context) {
	partners, err := h.partnerService.ListPartners(false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list partners"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"partners": partners})
}

// SetPartnerLogo handles POST /admin/partners/:id/logo
// Multipart form: file (one image)
func (h *ContentHandler) SetPartnerLogo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	files, err := readMultipartFiles(c, "file", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	partner, err := h.partnerService.SetLogo(c.Request.Context(), id, files[0])
	if err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "set_partner_logo", "partner", partner.ID)
	c.JSON(http.StatusOK, partner)
}

// DeletePartner handles DELETE /admin/partners/:id
func (h *ContentHandler) DeletePartner(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.partnerService.DeletePartner(c.Request.Context(), id); err != nil {
		respondCollectionError(c, err)
		return
	}

	h.audit(c, "delete_partner", "partner", id)
	c.JSON(http.StatusOK, gin.H{"message": "partner deleted"})
}
