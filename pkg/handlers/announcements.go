package handlers

import (
	"net/http"

	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type announcementRequest struct {
	Title    *string                  `json:"title" binding:"omitempty,max=200"`
	Message  *string                  `json:"message" binding:"omitempty,max=4000"`
	Type     *models.AnnouncementType `json:"type" binding:"omitempty,oneof=info warning urgent event"`
	IsActive *bool                    `json:"isActive"`
}

func (r *announcementRequest) apply(a *models.Announcement) {
	if r.Title != nil {
		a.Title = *r.Title
	}
	if r.Message != nil {
		a.Message = *r.Message
	}
	if r.Type != nil {
		a.Type = *r.Type
	}
}

// ListAnnouncements returns active announcements; admins may ask for all with ?all=true
func (h *Handler) ListAnnouncements(c *gin.Context) {
	q := h.DB.WithContext(c.Request.Context())
	if !(currentUser(c).IsAdmin && c.Query("all") == "true") {
		q = q.Where("is_active = ?", true)
	}

	var list []models.Announcement
	if err := q.Order("created_at desc").Find(&list).Error; err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateAnnouncement publishes an announcement
func (h *Handler) CreateAnnouncement(c *gin.Context) {
	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	a := models.Announcement{CreatedByID: currentUser(c).ID, IsActive: true}
	req.apply(&a)
	if err := a.Validate(); err != nil {
		h.fail(c, err)
		return
	}

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&a).Error; err != nil {
			return err
		}
		if req.IsActive != nil && !*req.IsActive {
			a.IsActive = false
			return tx.Model(&a).Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	if a.IsActive && a.Type == models.AnnouncementUrgent {
		h.notifyAdminsAsync("Urgent announcement published: " + a.Title)
	}
	c.JSON(http.StatusCreated, a)
}

// UpdateAnnouncement edits an announcement
func (h *Handler) UpdateAnnouncement(c *gin.Context) {
	a, ok := h.loadAnnouncement(c)
	if !ok {
		return
	}

	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	req.apply(a)
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if err := a.Validate(); err != nil {
		h.fail(c, err)
		return
	}

	if err := h.DB.WithContext(c.Request.Context()).Save(a).Error; err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// DeleteAnnouncement removes an announcement
func (h *Handler) DeleteAnnouncement(c *gin.Context) {
	a, ok := h.loadAnnouncement(c)
	if !ok {
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).Delete(a).Error; err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Announcement deleted"})
}

func (h *Handler) loadAnnouncement(c *gin.Context) (*models.Announcement, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	var a models.Announcement
	if err := h.DB.WithContext(c.Request.Context()).First(&a, id).Error; err != nil {
		h.fail(c, err)
		return nil, false
	}
	return &a, true
}
