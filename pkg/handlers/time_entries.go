package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/arnavshah/timeclock-api/pkg/shifttime"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

type timeEntryRequest struct {
	StartTime         time.Time             `json:"startTime" binding:"required"`
	EndTime           time.Time             `json:"endTime" binding:"required"`
	Date              string                `json:"date" binding:"required,isodate"`
	BreakMinutes      int                   `json:"breakMinutes" binding:"gte=0"`
	OvertimeReason    models.OvertimeReason `json:"overtimeReason"`
	ResponsiblePerson string                `json:"responsiblePerson"`
}

func (r *timeEntryRequest) apply(e *models.TimeEntry) {
	e.StartTime = r.StartTime
	e.EndTime = r.EndTime
	e.Date = r.Date
	e.BreakMinutes = r.BreakMinutes
	e.OvertimeReason = r.OvertimeReason
	e.ResponsiblePerson = r.ResponsiblePerson
}

// CreateTimeEntry logs a shift for the caller
func (h *Handler) CreateTimeEntry(c *gin.Context) {
	user := currentUser(c)

	var req timeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	entry := models.TimeEntry{UserID: user.ID, Position: user.Position}
	req.apply(&entry)
	if err := h.DB.WithContext(c.Request.Context()).Omit(clause.Associations).Create(&entry).Error; err != nil {
		h.fail(c, err)
		return
	}

	h.notifyAdminsAsync(h.entryMessage(user, &entry))
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) entryMessage(user *models.User, e *models.TimeEntry) string {
	loc := h.location()
	msg := fmt.Sprintf("New time entry\n%s (%s)\n%s %s-%s, break %d min\nHours: %.1f",
		user.DisplayName(), e.Position, e.Date,
		e.StartTime.In(loc).Format("15:04"), e.EndTime.In(loc).Format("15:04"),
		e.BreakMinutes, e.Hours)

	if e.OvertimeReason != "" || shifttime.IsOvertime(e.Hours, h.overtimeThreshold()) {
		msg += "\nOvertime"
		if e.OvertimeReason != "" {
			msg += ": " + string(e.OvertimeReason)
		}
		if e.ResponsiblePerson != "" {
			msg += " (requested by " + e.ResponsiblePerson + ")"
		}
	}
	return msg
}

func (h *Handler) overtimeThreshold() float64 {
	if h.Config == nil {
		return shifttime.DefaultOvertimeThreshold
	}
	return h.Config.OvertimeThreshold
}

// MyTimeEntries lists the caller's entries, newest first
func (h *Handler) MyTimeEntries(c *gin.Context) {
	user := currentUser(c)

	q := h.DB.WithContext(c.Request.Context()).Where("user_id = ?", user.ID)
	q = dateFilter(q, c.Query("from"), c.Query("to"))

	var entries []models.TimeEntry
	if err := q.Order("date desc, start_time desc").Find(&entries).Error; err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// AllTimeEntries lists every worker's entries for admins
func (h *Handler) AllTimeEntries(c *gin.Context) {
	q := h.DB.WithContext(c.Request.Context()).Preload("User")
	if userID := c.Query("userId"); userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	q = dateFilter(q, c.Query("from"), c.Query("to"))

	var entries []models.TimeEntry
	if err := q.Order("date desc, start_time desc").Find(&entries).Error; err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// UpdateTimeEntry edits one of the caller's recent entries
func (h *Handler) UpdateTimeEntry(c *gin.Context) {
	entry, ok := h.ownedEntry(c)
	if !ok {
		return
	}

	var req timeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	if !h.editable(entry.Date) || !h.editable(req.Date) {
		c.JSON(http.StatusForbidden, gin.H{"message": fmt.Sprintf("Entries can only be edited within %d days", h.Config.EditWindowDays)})
		return
	}

	req.apply(entry)
	if err := h.DB.WithContext(c.Request.Context()).Omit(clause.Associations).Save(entry).Error; err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteTimeEntry removes one of the caller's entries
func (h *Handler) DeleteTimeEntry(c *gin.Context) {
	entry, ok := h.ownedEntry(c)
	if !ok {
		return
	}

	if err := h.DB.WithContext(c.Request.Context()).Delete(entry).Error; err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Time entry deleted"})
}

// ownedEntry loads the :id entry and checks the caller owns it
func (h *Handler) ownedEntry(c *gin.Context) (*models.TimeEntry, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}

	var entry models.TimeEntry
	if err := h.DB.WithContext(c.Request.Context()).First(&entry, id).Error; err != nil {
		h.fail(c, err)
		return nil, false
	}
	if entry.UserID != currentUser(c).ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not your time entry"})
		return nil, false
	}
	return &entry, true
}

// editable reports whether an entry dated date is still inside the edit window
func (h *Handler) editable(date string) bool {
	if h.Config == nil || h.Config.EditWindowDays <= 0 {
		return true
	}
	d, err := models.ParseDate(date)
	if err != nil {
		// malformed dates are rejected by validation
		return true
	}
	age := int(h.today().Sub(d).Hours() / 24)
	return age <= h.Config.EditWindowDays
}
