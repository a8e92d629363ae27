package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/JoaoZanelato/galeria-web/internal/auth"
	"github.com/JoaoZanelato/galeria-web/internal/dto"
	"github.com/JoaoZanelato/galeria-web/internal/models"
	"github.com/JoaoZanelato/galeria-web/pkg/responses"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}

	var existing int64
	if err := h.db.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Registration failed", err.Error()))
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, responses.NewErrorResponse("Registration failed", "username or email already taken"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Registration failed", err.Error()))
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.db.Create(&user).Error; err != nil {
		log.Printf("Failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Registration failed", err.Error()))
		return
	}

	token, err := auth.IssueToken(user.ID, tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Registration failed", err.Error()))
		return
	}

	c.JSON(http.StatusCreated, responses.NewSuccessResponse("User registered successfully", gin.H{
		"user":  user,
		"token": token,
	}))
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}

	var user models.User
	err := h.db.First(&user, "email = ?", req.Email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Login failed", "invalid credentials"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Login failed", err.Error()))
		return
	}

	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Login failed", "invalid credentials"))
		return
	}

	token, err := auth.IssueToken(user.ID, tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Login failed", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Login successful", gin.H{
		"user":  user,
		"token": token,
	}))
}
