package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/arnavshah/timeclock-api/pkg/database"
	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/arnavshah/timeclock-api/pkg/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

type scheduleRequest struct {
	BranchID  uint                  `json:"branchId" binding:"required"`
	WorkerID  uint                  `json:"workerId" binding:"required"`
	Date      string                `json:"date" binding:"omitempty,isodate"`
	StartTime string                `json:"startTime" binding:"required,hhmm"`
	EndTime   string                `json:"endTime" binding:"required,hhmm"`
	ShiftType models.ShiftType      `json:"shiftType" binding:"omitempty,oneof=day night"`
	Role      models.Position       `json:"role" binding:"omitempty,oneof=rider kitchen service cashier manager"`
	Status    models.ScheduleStatus `json:"status"`
	Notes     string                `json:"notes" binding:"max=1000"`

	// WorkingDays turns the request into a recurring series
	WorkingDays []string `json:"workingDays"`
}

type scheduleUpdate struct {
	BranchID  *uint                  `json:"branchId"`
	WorkerID  *uint                  `json:"workerId"`
	Date      *string                `json:"date" binding:"omitempty,isodate"`
	StartTime *string                `json:"startTime" binding:"omitempty,hhmm"`
	EndTime   *string                `json:"endTime" binding:"omitempty,hhmm"`
	ShiftType *models.ShiftType      `json:"shiftType" binding:"omitempty,oneof=day night"`
	Role      *models.Position       `json:"role" binding:"omitempty,oneof=rider kitchen service cashier manager"`
	Status    *models.ScheduleStatus `json:"status"`
	Notes     *string                `json:"notes" binding:"omitempty,max=1000"`
}

type conflictQuery struct {
	WorkerID  uint   `form:"workerId" binding:"required"`
	Date      string `form:"date" binding:"required,isodate"`
	StartTime string `form:"startTime" binding:"required,hhmm"`
	EndTime   string `form:"endTime" binding:"required,hhmm"`
	ExcludeID uint   `form:"excludeId"`
}

// ListSchedules lists schedules. Workers only see their own.
func (h *Handler) ListSchedules(c *gin.Context) {
	user := currentUser(c)

	q := h.DB.WithContext(c.Request.Context()).Preload("Branch").Preload("Worker")
	if !user.IsAdmin {
		q = q.Where("worker_id = ?", user.ID)
	} else if workerID := c.Query("workerId"); workerID != "" {
		q = q.Where("worker_id = ?", workerID)
	}
	if branchID := c.Query("branchId"); branchID != "" {
		q = q.Where("branch_id = ?", branchID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	q = dateFilter(q, c.Query("from"), c.Query("to"))

	var schedules []models.Schedule
	if err := q.Order("date, start_time").Find(&schedules).Error; err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, schedules)
}

// GetSchedule returns one schedule to an admin or its worker
func (h *Handler) GetSchedule(c *gin.Context) {
	s, ok := h.loadSchedule(c, true)
	if !ok {
		return
	}
	user := currentUser(c)
	if !user.IsAdmin && s.WorkerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not your schedule"})
		return
	}
	c.JSON(http.StatusOK, s)
}

// CreateSchedule creates one schedule, or a series when workingDays is set
func (h *Handler) CreateSchedule(c *gin.Context) {
	admin := currentUser(c)

	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	worker, branch, ok := h.scheduleRefs(c, req.WorkerID, req.BranchID)
	if !ok {
		return
	}

	tmpl := models.Schedule{
		BranchID:    branch.ID,
		WorkerID:    worker.ID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		ShiftType:   req.ShiftType,
		Role:        req.Role,
		Status:      req.Status,
		Notes:       req.Notes,
		CreatedByID: admin.ID,
	}
	if tmpl.Role == "" {
		tmpl.Role = worker.Position
	}

	if len(req.WorkingDays) > 0 {
		h.createSeries(c, tmpl, req.WorkingDays, worker, branch)
		return
	}
	if req.Date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "date is required"})
		return
	}

	if err := database.SaveSchedule(c.Request.Context(), h.DB, &tmpl); err != nil {
		h.fail(c, err)
		return
	}

	h.notifyAdminsAsync(fmt.Sprintf("Schedule created\n%s at %s\n%s %s-%s (%s)",
		worker.DisplayName(), branch.Name, tmpl.Date, tmpl.StartTime, tmpl.EndTime, tmpl.ShiftType))
	c.JSON(http.StatusCreated, tmpl)
}

// createSeries saves one schedule per matching weekday over the bulk window.
// Each day goes through the conflict guard; failures are logged and counted.
func (h *Handler) createSeries(c *gin.Context, tmpl models.Schedule, workingDays []string, worker *models.User, branch *models.Branch) {
	weekdays, err := scheduler.ParseWeekdays(workingDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	tmpl.SeriesID = uuid.NewString()
	dates := scheduler.RecurringDates(h.today(), h.Config.BulkDays, weekdays)

	created := make([]models.Schedule, 0, len(dates))
	failed := 0
	for _, date := range dates {
		s := tmpl
		s.Date = date
		if len(created) > 0 {
			first := created[0].ID
			s.OriginalScheduleID = &first
		}

		if err := database.SaveSchedule(c.Request.Context(), h.DB, &s); err != nil {
			h.Logger.Printf("Series %s: skipping %s for worker %d: %v", tmpl.SeriesID, date, tmpl.WorkerID, err)
			failed++
			continue
		}
		created = append(created, s)
	}

	h.Logger.Printf("Series %s: %d created, %d failed", tmpl.SeriesID, len(created), failed)
	if len(created) > 0 {
		h.notifyAdminsAsync(fmt.Sprintf("Recurring schedule created\n%s at %s\n%s-%s on %v\n%d shifts over %d days",
			worker.DisplayName(), branch.Name, tmpl.StartTime, tmpl.EndTime, workingDays, len(created), h.Config.BulkDays))
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   fmt.Sprintf("Created %d schedules", len(created)),
		"seriesId":  tmpl.SeriesID,
		"created":   len(created),
		"failed":    failed,
		"schedules": created,
	})
}

// UpdateSchedule changes any field, status included, re-running the conflict guard
func (h *Handler) UpdateSchedule(c *gin.Context) {
	s, ok := h.loadSchedule(c, false)
	if !ok {
		return
	}

	var req scheduleUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	if req.WorkerID != nil || req.BranchID != nil {
		workerID, branchID := s.WorkerID, s.BranchID
		if req.WorkerID != nil {
			workerID = *req.WorkerID
		}
		if req.BranchID != nil {
			branchID = *req.BranchID
		}
		if _, _, ok := h.scheduleRefs(c, workerID, branchID); !ok {
			return
		}
		s.WorkerID, s.BranchID = workerID, branchID
	}
	if req.Date != nil {
		s.Date = *req.Date
	}
	if req.StartTime != nil {
		s.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		s.EndTime = *req.EndTime
	}
	if req.ShiftType != nil {
		s.ShiftType = *req.ShiftType
	}
	if req.Role != nil {
		s.Role = *req.Role
	}
	if req.Status != nil {
		s.Status = *req.Status
	}
	if req.Notes != nil {
		s.Notes = *req.Notes
	}

	if err := database.SaveSchedule(c.Request.Context(), h.DB, s); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// DeleteSchedule removes a schedule
func (h *Handler) DeleteSchedule(c *gin.Context) {
	s, ok := h.loadSchedule(c, false)
	if !ok {
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).Delete(s).Error; err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted"})
}

// ConfirmSchedule lets the worker or an admin confirm a shift
func (h *Handler) ConfirmSchedule(c *gin.Context) {
	s, ok := h.loadSchedule(c, false)
	if !ok {
		return
	}

	user := currentUser(c)
	if !user.IsAdmin && s.WorkerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not your schedule"})
		return
	}
	if s.Status == models.StatusCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cancelled schedules cannot be confirmed"})
		return
	}

	now := h.now()
	s.Status = models.StatusConfirmed
	s.ConfirmedByID = &user.ID
	s.ConfirmedAt = &now
	if err := h.DB.WithContext(c.Request.Context()).Omit(clause.Associations).Save(s).Error; err != nil {
		h.fail(c, err)
		return
	}

	h.notifyAdminsAsync(fmt.Sprintf("Schedule confirmed\n%s confirmed %s %s-%s",
		user.DisplayName(), s.Date, s.StartTime, s.EndTime))
	c.JSON(http.StatusOK, s)
}

// CheckConflicts reports overlapping schedules for a prospective shift.
// Workers may only ask about themselves.
func (h *Handler) CheckConflicts(c *gin.Context) {
	var q conflictQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}
	if user := currentUser(c); !user.IsAdmin && q.WorkerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Workers can only check their own schedules"})
		return
	}

	candidate := models.Schedule{
		ID:        q.ExcludeID,
		WorkerID:  q.WorkerID,
		Date:      q.Date,
		StartTime: q.StartTime,
		EndTime:   q.EndTime,
	}
	conflicts, err := database.FindConflicts(c.Request.Context(), h.DB, &candidate)
	if err != nil {
		h.fail(c, err)
		return
	}
	if conflicts == nil {
		conflicts = []models.Schedule{}
	}

	c.JSON(http.StatusOK, gin.H{
		"hasConflicts": len(conflicts) > 0,
		"conflicts":    conflicts,
	})
}

// WeeklySchedules returns an ISO week's roster with planned hours per worker
func (h *Handler) WeeklySchedules(c *gin.Context) {
	year, err1 := strconv.Atoi(c.Param("year"))
	week, err2 := strconv.Atoi(c.Param("week"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid year or week"})
		return
	}
	from, to, err := scheduler.WeekRange(year, week)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user := currentUser(c)
	q := h.DB.WithContext(c.Request.Context()).Preload("Branch").Preload("Worker").
		Where("date >= ? AND date <= ?", from, to)
	if !user.IsAdmin {
		q = q.Where("worker_id = ?", user.ID)
	}
	if branchID := c.Query("branchId"); branchID != "" {
		q = q.Where("branch_id = ?", branchID)
	}

	var schedules []models.Schedule
	if err := q.Order("date, start_time").Find(&schedules).Error; err != nil {
		h.fail(c, err)
		return
	}

	loads := scheduler.PlannedLoad(schedules)
	c.JSON(http.StatusOK, gin.H{
		"year":          year,
		"week":          week,
		"from":          from,
		"to":            to,
		"schedules":     schedules,
		"load":          loads,
		"fairnessScore": scheduler.FairnessScore(loads),
	})
}

func (h *Handler) loadSchedule(c *gin.Context, preload bool) (*models.Schedule, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}

	q := h.DB.WithContext(c.Request.Context())
	if preload {
		q = q.Preload("Branch").Preload("Worker")
	}
	var s models.Schedule
	if err := q.First(&s, id).Error; err != nil {
		h.fail(c, err)
		return nil, false
	}
	return &s, true
}

// scheduleRefs checks the worker exists and the branch is active
func (h *Handler) scheduleRefs(c *gin.Context, workerID, branchID uint) (*models.User, *models.Branch, bool) {
	ctx := c.Request.Context()

	var worker models.User
	if err := h.DB.WithContext(ctx).First(&worker, workerID).Error; err != nil {
		if database.IsNotFound(err) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "worker not found"})
		} else {
			h.fail(c, err)
		}
		return nil, nil, false
	}

	var branch models.Branch
	if err := h.DB.WithContext(ctx).First(&branch, branchID).Error; err != nil {
		if database.IsNotFound(err) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "branch not found"})
		} else {
			h.fail(c, err)
		}
		return nil, nil, false
	}
	if !branch.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"message": "branch is inactive"})
		return nil, nil, false
	}
	return &worker, &branch, true
}

