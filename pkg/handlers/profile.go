package handlers

import (
	"net/http"
	"strings"

	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

type profileRequest struct {
	FullName         *string                  `json:"fullName" binding:"omitempty,max=120"`
	Bio              *string                  `json:"bio" binding:"omitempty,max=1000"`
	Skills           []string                 `json:"skills" binding:"omitempty,max=50,dive,max=50"`
	EmergencyContact *models.EmergencyContact `json:"emergencyContact"`
	PhotoURL         *string                  `json:"photoUrl" binding:"omitempty,max=500"`
	TelegramChatID   *int64                   `json:"telegramChatId"`
}

// GetProfile returns the caller's account and profile
func (h *Handler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// UpdateProfile changes the caller's profile fields. Identity fields stay put.
func (h *Handler) UpdateProfile(c *gin.Context) {
	user := currentUser(c)

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Skills != nil {
		skills := make([]string, 0, len(req.Skills))
		for _, s := range req.Skills {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}
		user.Skills = skills
	}
	if req.EmergencyContact != nil {
		user.EmergencyContact = *req.EmergencyContact
	}
	if req.PhotoURL != nil {
		user.PhotoURL = strings.TrimSpace(*req.PhotoURL)
	}
	if req.TelegramChatID != nil {
		if *req.TelegramChatID == 0 {
			user.TelegramChatID = nil
		} else {
			user.TelegramChatID = req.TelegramChatID
		}
	}

	err := h.DB.WithContext(c.Request.Context()).
		Omit(clause.Associations, "username", "employee_id", "password_hash", "position", "is_admin").
		Save(user).Error
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
