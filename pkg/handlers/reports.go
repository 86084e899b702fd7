package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/arnavshah/timeclock-api/pkg/report"
	"github.com/gin-gonic/gin"
)

// MonthSummary returns the caller's totals for a month, the current one by default
func (h *Handler) MonthSummary(c *gin.Context) {
	user := currentUser(c)

	today := h.today()
	year, month := today.Year(), int(today.Month())
	if v, err := strconv.Atoi(c.Query("year")); err == nil {
		year = v
	}
	if v, err := strconv.Atoi(c.Query("month")); err == nil {
		month = v
	}
	if !validPeriod(year, month) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid month or year"})
		return
	}

	sheet, err := h.buildMonthly(c, user, year, month)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":            year,
		"month":           month,
		"totalHours":      sheet.TotalHours,
		"daysWorked":      sheet.DaysWorked,
		"entries":         len(sheet.Lines),
		"overtimeEntries": sheet.OvertimeLines,
	})
}

// MyPDF downloads the caller's monthly timesheet
func (h *Handler) MyPDF(c *gin.Context) {
	h.sendPDF(c, currentUser(c))
}

// WorkerPDF downloads any worker's monthly timesheet
func (h *Handler) WorkerPDF(c *gin.Context) {
	worker, ok := h.worker(c)
	if !ok {
		return
	}
	h.sendPDF(c, worker)
}

// WorkerCSV exports any worker's monthly timesheet as CSV
func (h *Handler) WorkerCSV(c *gin.Context) {
	worker, ok := h.worker(c)
	if !ok {
		return
	}
	year, month, ok := periodParams(c)
	if !ok {
		return
	}

	sheet, err := h.buildMonthly(c, worker, year, month)
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, sheet); err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, sheet.Filename("csv")))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) sendPDF(c *gin.Context, user *models.User) {
	year, month, ok := periodParams(c)
	if !ok {
		return
	}

	sheet, err := h.buildMonthly(c, user, year, month)
	if err != nil {
		h.fail(c, err)
		return
	}

	page, err := report.HTML(sheet)
	if err != nil {
		h.fail(c, err)
		return
	}
	pdf, err := h.Renderer.PDF(c.Request.Context(), page)
	if err != nil {
		h.fail(c, fmt.Errorf("render timesheet pdf: %w", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, sheet.Filename("pdf")))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) buildMonthly(c *gin.Context, user *models.User, year, month int) (*report.Monthly, error) {
	rows, err := h.Reports.MonthlyEntries(c.Request.Context(), user.ID, year, month)
	if err != nil {
		return nil, err
	}
	return report.BuildMonthly(user, year, month, rows, h.overtimeThreshold(), h.location(), h.now()), nil
}

// worker loads the :userId user
func (h *Handler) worker(c *gin.Context) (*models.User, bool) {
	id, ok := paramID(c, "userId")
	if !ok {
		return nil, false
	}
	var user models.User
	if err := h.DB.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
		h.fail(c, err)
		return nil, false
	}
	return &user, true
}

func periodParams(c *gin.Context) (int, int, bool) {
	month, err1 := strconv.Atoi(c.Param("month"))
	year, err2 := strconv.Atoi(c.Param("year"))
	if err1 != nil || err2 != nil || !validPeriod(year, month) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid month or year"})
		return 0, 0, false
	}
	return year, month, true
}

func validPeriod(year, month int) bool {
	return month >= 1 && month <= 12 && year >= 2000 && year <= 9999
}
