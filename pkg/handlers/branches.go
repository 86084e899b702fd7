package handlers

import (
	"net/http"

	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type branchHoursRequest struct {
	Day    string `json:"day" binding:"required"`
	Open   string `json:"open" binding:"omitempty,hhmm"`
	Close  string `json:"close" binding:"omitempty,hhmm"`
	Closed bool   `json:"closed"`
}

type branchRequest struct {
	Name           *string              `json:"name" binding:"omitempty,max=100"`
	Address        *string              `json:"address"`
	Phone          *string              `json:"phone"`
	MinStaff       *int                 `json:"minStaff" binding:"omitempty,gte=0"`
	MaxStaff       *int                 `json:"maxStaff" binding:"omitempty,gte=0"`
	RequiredSkills []string             `json:"requiredSkills"`
	IsActive       *bool                `json:"isActive"`
	Hours          []branchHoursRequest `json:"hours" binding:"dive"`
}

func (r *branchRequest) apply(b *models.Branch) {
	if r.Name != nil {
		b.Name = *r.Name
	}
	if r.Address != nil {
		b.Address = *r.Address
	}
	if r.Phone != nil {
		b.Phone = *r.Phone
	}
	if r.MinStaff != nil {
		b.MinStaff = *r.MinStaff
	}
	if r.MaxStaff != nil {
		b.MaxStaff = *r.MaxStaff
	}
	if r.RequiredSkills != nil {
		b.RequiredSkills = r.RequiredSkills
	}
}

// hours validates the requested opening hours
func (r *branchRequest) hours(branchID uint) ([]models.BranchHours, error) {
	out := make([]models.BranchHours, 0, len(r.Hours))
	for _, in := range r.Hours {
		bh := models.BranchHours{BranchID: branchID, Day: in.Day, Open: in.Open, Close: in.Close, Closed: in.Closed}
		if err := bh.Validate(); err != nil {
			return nil, err
		}
		out = append(out, bh)
	}
	return out, nil
}

// ListBranches lists active branches; admins may ask for all with ?all=true
func (h *Handler) ListBranches(c *gin.Context) {
	q := h.DB.WithContext(c.Request.Context()).Preload("Hours")
	if !(currentUser(c).IsAdmin && c.Query("all") == "true") {
		q = q.Where("is_active = ?", true)
	}

	var branches []models.Branch
	if err := q.Order("name").Find(&branches).Error; err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, branches)
}

// PublicBranches lists active branches without authentication
func (h *Handler) PublicBranches(c *gin.Context) {
	var branches []models.Branch
	err := h.DB.WithContext(c.Request.Context()).
		Select("id", "name", "address", "phone").
		Where("is_active = ?", true).
		Order("name").
		Find(&branches).Error
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(branches))
	for _, b := range branches {
		out = append(out, gin.H{"id": b.ID, "name": b.Name, "address": b.Address, "phone": b.Phone})
	}
	c.JSON(http.StatusOK, out)
}

// GetBranch returns one branch with its hours
func (h *Handler) GetBranch(c *gin.Context) {
	b, ok := h.loadBranch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, b)
}

// BranchHours returns a branch's opening window for a weekday
func (h *Handler) BranchHours(c *gin.Context) {
	b, ok := h.loadBranch(c)
	if !ok {
		return
	}
	day, valid := models.NormalizeDay(c.Param("day"))
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unknown weekday"})
		return
	}

	hours, found := b.HoursFor(day)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "No hours configured for " + day})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"branchId": b.ID,
		"day":      hours.Day,
		"open":     hours.Open,
		"close":    hours.Close,
		"closed":   hours.Closed,
		"isOpen":   !hours.Closed && b.IsActive,
	})
}

// CreateBranch adds a branch and its hours
func (h *Handler) CreateBranch(c *gin.Context) {
	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	b := models.Branch{IsActive: true}
	req.apply(&b)
	if err := b.Validate(); err != nil {
		h.fail(c, err)
		return
	}
	if _, err := req.hours(0); err != nil {
		h.fail(c, err)
		return
	}

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&b).Error; err != nil {
			return err
		}
		if req.IsActive != nil && !*req.IsActive {
			if err := tx.Model(&b).Update("is_active", false).Error; err != nil {
				return err
			}
		}
		return h.upsertHours(tx, &b, &req)
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.reloadBranch(c, b.ID, http.StatusCreated)
}

// UpdateBranch changes a branch and upserts any hours given
func (h *Handler) UpdateBranch(c *gin.Context) {
	b, ok := h.loadBranch(c)
	if !ok {
		return
	}

	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	req.apply(b)
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
	if err := b.Validate(); err != nil {
		h.fail(c, err)
		return
	}

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(b).Error; err != nil {
			return err
		}
		return h.upsertHours(tx, b, &req)
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.reloadBranch(c, b.ID, http.StatusOK)
}

// DeleteBranch deactivates a branch, or removes it with ?hard=true when no
// schedule references it
func (h *Handler) DeleteBranch(c *gin.Context) {
	b, ok := h.loadBranch(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if c.Query("hard") != "true" {
		if err := h.DB.WithContext(ctx).Model(b).Update("is_active", false).Error; err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Branch deactivated"})
		return
	}

	var refs int64
	if err := h.DB.WithContext(ctx).Model(&models.Schedule{}).Where("branch_id = ?", b.ID).Count(&refs).Error; err != nil {
		h.fail(c, err)
		return
	}
	if refs > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Branch still has schedules; deactivate it instead", "schedules": refs})
		return
	}

	err := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("branch_id = ?", b.ID).Delete(&models.BranchHours{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Branch{}, b.ID).Error
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Branch deleted"})
}

// upsertHours writes one row per weekday given, replacing existing ones
func (h *Handler) upsertHours(tx *gorm.DB, b *models.Branch, req *branchRequest) error {
	if len(req.Hours) == 0 {
		return nil
	}
	hours, err := req.hours(b.ID)
	if err != nil {
		return err
	}

	// Use OnConflict for a single-query upsert (supported by both Postgres and SQLite)
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "branch_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "close", "closed"}),
	}).Create(&hours).Error
}

func (h *Handler) loadBranch(c *gin.Context) (*models.Branch, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}

	var b models.Branch
	if err := h.DB.WithContext(c.Request.Context()).Preload("Hours").First(&b, id).Error; err != nil {
		h.fail(c, err)
		return nil, false
	}
	return &b, true
}

func (h *Handler) reloadBranch(c *gin.Context, id uint, status int) {
	var b models.Branch
	if err := h.DB.WithContext(c.Request.Context()).Preload("Hours").First(&b, id).Error; err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, b)
}
