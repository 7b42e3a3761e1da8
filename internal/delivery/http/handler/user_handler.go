package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phani-001/FixMyTown/internal/domain/entity"
	"github.com/phani-001/FixMyTown/internal/domain/repository"
	"github.com/phani-001/FixMyTown/internal/service"
)

type UserHandler struct {
	users repository.UserRepository
	auth  service.AuthService
}

func NewUserHandler(users repository.UserRepository, auth service.AuthService) *UserHandler {
	return &UserHandler{
		users: users,
		auth:  auth,
	}
}

type createCitizenRequest struct {
	Mobile string `json:"mobile" binding:"required"`
	Name   string `json:"name"`
}

// Create enregistre un citoyen par mobile ; idempotent, renvoie le compte
// existant si le numéro est déjà connu
func (h *UserHandler) Create(c *gin.Context) {
	var req createCitizenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := req.Name
	if name == "" {
		name = "Citizen User"
	}
	user, err := h.users.UpsertCitizen(c.Request.Context(), req.Mobile, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    user,
	})
}

func (h *UserHandler) GetByID(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

func (h *UserHandler) GetByMobile(c *gin.Context) {
	user, err := h.users.GetByMobile(c.Request.Context(), c.Param("mobile"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

// ListStaff alimente le sélecteur d'affectation des chefs de service
func (h *UserHandler) ListStaff(c *gin.Context) {
	staff, err := h.users.ListStaff(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list staff"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(staff),
		"users":   staff,
	})
}

type registerStaffRequest struct {
	Name       string          `json:"name" binding:"required"`
	Username   string          `json:"username" binding:"required"`
	Password   string          `json:"password" binding:"required"`
	Role       entity.UserRole `json:"role" binding:"required"`
	Department string          `json:"department"`
}

// RegisterStaff crée un compte du personnel ; réservé au super admin
func (h *UserHandler) RegisterStaff(c *gin.Context) {
	var req registerStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.RegisterStaff(c.Request.Context(), service.RegisterStaffInput{
		Name:       req.Name,
		Username:   req.Username,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    user,
	})
}
