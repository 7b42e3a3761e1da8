package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phani-001/FixMyTown/internal/domain/entity"
	"github.com/phani-001/FixMyTown/internal/domain/repository"
	"github.com/phani-001/FixMyTown/internal/service"
)

type ComplaintHandler struct {
	complaints service.ComplaintService
	storage    service.StorageService
}

func NewComplaintHandler(complaints service.ComplaintService, storage service.StorageService) *ComplaintHandler {
	return &ComplaintHandler{
		complaints: complaints,
		storage:    storage,
	}
}

type createComplaintRequest struct {
	Title              string                   `json:"title" binding:"required"`
	Description        string                   `json:"description"`
	Category           entity.ComplaintCategory `json:"category" binding:"required"`
	Priority           entity.ComplaintPriority `json:"priority"`
	Location           entity.Location          `json:"location"`
	Images             []string                 `json:"images"`
	AssignedDepartment string                   `json:"assignedDepartment"`
}

// Create enregistre un nouveau signalement pour le citoyen authentifié
func (h *ComplaintHandler) Create(c *gin.Context) {
	var req createComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	complaint, err := h.complaints.Create(c.Request.Context(), service.CreateComplaintInput{
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		Priority:           req.Priority,
		Location:           req.Location,
		Images:             req.Images,
		AssignedDepartment: req.AssignedDepartment,
	}, actorFrom(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"complaint": complaint,
	})
}

// List filtre par query params (citizenId, assignedTo, status, category),
// tous optionnels et conjonctifs
func (h *ComplaintHandler) List(c *gin.Context) {
	filter := repository.ComplaintFilter{
		CitizenID:  c.Query("citizenId"),
		AssignedTo: c.Query("assignedTo"),
		Status:     entity.ComplaintStatus(c.Query("status")),
		Category:   entity.ComplaintCategory(c.Query("category")),
	}

	complaints, err := h.complaints.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list complaints"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(complaints),
		"complaints": complaints,
	})
}

func (h *ComplaintHandler) Get(c *gin.Context) {
	complaint, err := h.complaints.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrComplaintNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "complaint not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load complaint"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"complaint": complaint,
	})
}

type updateComplaintRequest struct {
	Title              *string                   `json:"title"`
	Description        *string                   `json:"description"`
	Category           *entity.ComplaintCategory `json:"category"`
	Status             *entity.ComplaintStatus   `json:"status"`
	Priority           *entity.ComplaintPriority `json:"priority"`
	AssignedTo         *string                   `json:"assignedTo"`
	AssignedDepartment *string                   `json:"assignedDepartment"`
	Images             *[]string                 `json:"images"`
	Note               string                    `json:"note"`
	ExpectedRevision   *int64                    `json:"expectedRevision"`
}

// Update : fusion partielle, seuls les champs présents dans le corps changent
func (h *ComplaintHandler) Update(c *gin.Context) {
	var req updateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	complaint, err := h.complaints.Update(c.Request.Context(), c.Param("id"), service.UpdatePatch{
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		Status:             req.Status,
		Priority:           req.Priority,
		AssignedTo:         req.AssignedTo,
		AssignedDepartment: req.AssignedDepartment,
		Images:             req.Images,
		Note:               req.Note,
		ExpectedRevision:   req.ExpectedRevision,
	}, actorFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrComplaintNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "complaint not found"})
		case errors.Is(err, service.ErrRevisionConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "complaint was modified concurrently"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"complaint": complaint,
	})
}

type assignRequest struct {
	AssignedTo         *string `json:"assignedTo"`
	AssignedDepartment *string `json:"assignedDepartment"`
	Note               string  `json:"note"`
}

func (h *ComplaintHandler) Assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	complaint, err := h.complaints.Assign(c.Request.Context(), c.Param("id"), service.AssignInput{
		AssignedTo:         req.AssignedTo,
		AssignedDepartment: req.AssignedDepartment,
		Note:               req.Note,
	}, actorFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrComplaintNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "complaint not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"complaint": complaint,
	})
}

type addCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *ComplaintHandler) AddComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	complaint, err := h.complaints.AddComment(c.Request.Context(), c.Param("id"), req.Text, actorFrom(c))
	if err != nil {
		if errors.Is(err, service.ErrComplaintNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "complaint not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"complaint": complaint,
	})
}

func (h *ComplaintHandler) Delete(c *gin.Context) {
	err := h.complaints.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrComplaintNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "complaint not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete complaint"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetUploadURL fournit l'URL présignée pour téléverser une photo avant de
// créer le signalement
func (h *ComplaintHandler) GetUploadURL(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		return
	}

	fileName := c.Query("file_name")
	if fileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_name query param is required"})
		return
	}

	url, objectName, err := h.storage.GenerateUploadURL(c.Request.Context(), fileName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate upload URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"uploadUrl":  url,
		"objectName": objectName,
	})
}

// actorFrom reconstruit l'acteur depuis les clés posées par le middleware JWT
func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		ID:   c.GetString("userID"),
		Name: c.GetString("userName"),
		Role: entity.UserRole(c.GetString("userRole")),
	}
}
