package handlers

import (
	"net/http"
	"strings"

	"github.com/arnavshah/timeclock-api/pkg/auth"
	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

type registerRequest struct {
	Username   string          `json:"username" binding:"required,min=3,max=64"`
	Password   string          `json:"password" binding:"required,min=6"`
	EmployeeID string          `json:"employeeId" binding:"required,max=32"`
	Position   models.Position `json:"position" binding:"required,oneof=rider kitchen service cashier manager"`
	FullName   string          `json:"fullName"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a worker account and logs it in
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	user := models.User{
		Username:     strings.TrimSpace(req.Username),
		EmployeeID:   strings.TrimSpace(req.EmployeeID),
		PasswordHash: hash,
		Position:     req.Position,
		FullName:     strings.TrimSpace(req.FullName),
	}
	if err := h.DB.WithContext(c.Request.Context()).Omit(clause.Associations).Create(&user).Error; err != nil {
		h.fail(c, err)
		return
	}

	h.Logger.Printf("Registered user %s (%s)", user.Username, user.Position)
	h.notifyAdminsAsync("New worker registered: " + user.DisplayName() + " (" + string(user.Position) + ", " + user.EmployeeID + ")")
	h.respondWithToken(c, http.StatusCreated, &user)
}

// Login exchanges credentials for an access token
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	var user models.User
	if err := h.DB.WithContext(c.Request.Context()).Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	h.respondWithToken(c, http.StatusOK, &user)
}

func (h *Handler) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := h.Tokens.CreateToken(user)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(status, gin.H{
		"token":      token,
		"userId":     user.ID,
		"position":   user.Position,
		"isAdmin":    user.IsAdmin,
		"username":   user.Username,
		"employeeId": user.EmployeeID,
	})
}
