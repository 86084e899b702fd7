package report

import (
	"bytes"
	"embed"
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/arnavshah/timeclock-api/pkg/shifttime"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templateFS embed.FS

var titleCaser = cases.Title(language.English)

var timesheetTemplate = template.Must(template.New("timesheet.html").Funcs(template.FuncMap{
	"title": func(s string) string { return titleCaser.String(s) },
	"hours": func(h float64) string { return strconv.FormatFloat(h, 'f', 1, 64) },
}).ParseFS(templateFS, "templates/timesheet.html"))

// Line is one printed row of a timesheet
type Line struct {
	Date              string
	Weekday           string
	Start             string
	End               string
	BreakMinutes      int
	Hours             float64
	Overtime          bool
	OvertimeReason    string
	ResponsiblePerson string
}

// Monthly is a worker's timesheet for one month
type Monthly struct {
	Username      string
	FullName      string
	EmployeeID    string
	Position      string
	Year          int
	Month         time.Month
	Lines         []Line
	TotalHours    float64
	DaysWorked    int
	OvertimeLines int
	GeneratedAt   time.Time
}

// Period formats the month for headings
func (m *Monthly) Period() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// Filename is the download name for the given extension
func (m *Monthly) Filename(ext string) string {
	return fmt.Sprintf("timesheet_%s_%04d-%02d.%s", m.Username, m.Year, int(m.Month), ext)
}

// BuildMonthly turns stored rows into a timesheet. Clock readings are taken in loc.
func BuildMonthly(user *models.User, year, month int, rows []EntryRow, overtimeThreshold float64, loc *time.Location, now time.Time) *Monthly {
	if loc == nil {
		loc = time.UTC
	}
	m := &Monthly{
		Username:    user.Username,
		FullName:    user.FullName,
		EmployeeID:  user.EmployeeID,
		Position:    string(user.Position),
		Year:        year,
		Month:       time.Month(month),
		GeneratedAt: now.In(loc),
	}

	days := make(map[string]bool)
	var total float64
	for _, r := range rows {
		line := Line{
			Date:              r.Date,
			Start:             r.StartTime.In(loc).Format("15:04"),
			End:               r.EndTime.In(loc).Format("15:04"),
			BreakMinutes:      r.BreakMinutes,
			Hours:             r.Hours,
			OvertimeReason:    r.OvertimeReason,
			ResponsiblePerson: r.ResponsiblePerson,
		}
		if d, err := models.ParseDate(r.Date); err == nil {
			line.Weekday = d.Weekday().String()[:3]
		}
		line.Overtime = r.OvertimeReason != "" || shifttime.IsOvertime(r.Hours, overtimeThreshold)
		if line.Overtime {
			m.OvertimeLines++
		}

		total += r.Hours
		days[r.Date] = true
		m.Lines = append(m.Lines, line)
	}

	m.TotalHours = shifttime.Round1(total)
	m.DaysWorked = len(days)
	return m
}

// RenderHTML writes the printable timesheet page
func RenderHTML(w io.Writer, m *Monthly) error {
	return timesheetTemplate.Execute(w, m)
}

// HTML renders the timesheet page to a string
func HTML(m *Monthly) (string, error) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, m); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteCSV exports the timesheet rows followed by a total line
func WriteCSV(w io.Writer, m *Monthly) error {
	writer := csv.NewWriter(w)
	writer.Write([]string{"date", "weekday", "start", "end", "break_minutes", "hours", "overtime_reason", "responsible_person"})

	for _, l := range m.Lines {
		writer.Write([]string{
			l.Date,
			l.Weekday,
			l.Start,
			l.End,
			strconv.Itoa(l.BreakMinutes),
			fmt.Sprintf("%.1f", l.Hours),
			l.OvertimeReason,
			l.ResponsiblePerson,
		})
	}
	writer.Write([]string{"total", "", "", "", "", fmt.Sprintf("%.1f", m.TotalHours), "", ""})
	writer.Flush()
	return writer.Error()
}
