package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"smartattendance/internal/apperr"
	"smartattendance/internal/attendance"
	"smartattendance/internal/reconcile"
	"smartattendance/internal/report"
	"smartattendance/internal/student"
)

// Handler owns the HTTP surface of the attendance backend.
type Handler struct {
	students    *student.Service
	attendance  *attendance.Service
	job         *reconcile.Job
	adminSecret string
}

// New creates a handler wired to the services.
func New(students *student.Service, att *attendance.Service, job *reconcile.Job, adminSecret string) *Handler {
	return &Handler{students: students, attendance: att, job: job, adminSecret: adminSecret}
}

// RegisterRoutes mounts all routes on the engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Smart Attendance Backend Running")
	})

	r.POST("/api/students/register", h.RegisterStudent)

	att := r.Group("/api/attendance")
	att.POST("/mark", h.MarkAttendance)
	att.GET("/", h.ListAttendance)
	att.GET("/summary", h.Summary)
	att.GET("/date/:date", h.ListByDate)
	att.GET("/export/excel", h.ExportExcel)
	att.GET("/:rollNo", h.ListByRoll)
	att.DELETE("/clean-duplicates", h.CleanDuplicates)

	r.POST("/api/admin/send-absentees", h.SendAbsentees)
}

// ---------- Students ----------

type registerRequest struct {
	Name         string `json:"name" binding:"required"`
	RollNo       string `json:"rollNo" binding:"required"`
	Phone        string `json:"phone"`
	StudentEmail string `json:"studentEmail" binding:"required,email"`
	ParentEmail  string `json:"parentEmail"`
}

// RegisterStudent creates a directory entry and returns its QR payload.
func (h *Handler) RegisterStudent(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Name, RollNo and Student Email are required"})
		return
	}

	st, err := h.students.Register(c.Request.Context(), student.RegisterInput{
		Name:         req.Name,
		RollNo:       req.RollNo,
		Phone:        req.Phone,
		StudentEmail: req.StudentEmail,
		ParentEmail:  req.ParentEmail,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Student registered",
		"qrCodeData": st.QRCodeData,
	})
}

// ---------- Attendance ----------

type markRequest struct {
	RollNo string `json:"rollNo" binding:"required"`
}

// MarkAttendance records a presence mark for today, idempotently on the
// common path.
func (h *Handler) MarkAttendance(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "rollNo required"})
		return
	}

	res, err := h.attendance.MarkPresent(c.Request.Context(), req.RollNo)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if res.AlreadyMarked {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Already marked present for today",
			"record":  res.Record,
		})
		return
	}

	body := gin.H{
		"success": true,
		"message": "Marked present",
		"record":  res.Record,
	}
	if res.Student != nil {
		body["student"] = res.Student
	}
	c.JSON(http.StatusOK, body)
}

// ListAttendance returns every mark, newest first.
func (h *Handler) ListAttendance(c *gin.Context) {
	records, err := h.attendance.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, marksOrEmpty(records))
}

// ListByRoll returns all marks for one roll number, newest first.
func (h *Handler) ListByRoll(c *gin.Context) {
	records, err := h.attendance.ListByRoll(c.Request.Context(), c.Param("rollNo"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, marksOrEmpty(records))
}

// ListByDate returns all marks within one calendar day, newest first.
// The date path segment is YYYY-MM-DD interpreted in server local time.
func (h *Handler) ListByDate(c *gin.Context) {
	day, err := time.ParseInLocation("2006-01-02", c.Param("date"), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid date, expected YYYY-MM-DD"})
		return
	}

	records, err := h.attendance.ListByDate(c.Request.Context(), day)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, marksOrEmpty(records))
}

// Summary returns raw mark counts per roll number, ascending by roll number.
func (h *Handler) Summary(c *gin.Context) {
	rows, err := h.attendance.Summary(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if rows == nil {
		rows = []attendance.SummaryRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// CleanDuplicates collapses same-day duplicate marks per student.
func (h *Handler) CleanDuplicates(c *gin.Context) {
	removed, err := h.attendance.CleanDuplicates(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"removed": removed,
		"message": "Removed " + strconv.FormatInt(removed, 10) + " duplicate entries",
	})
}

// ExportExcel streams the full ledger as a spreadsheet attachment, with
// student names joined in.
func (h *Handler) ExportExcel(c *gin.Context) {
	marks, err := h.attendance.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	students, err := h.students.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	data, err := report.AttendanceWorkbook(marks, students)
	if err != nil {
		log.Error().Err(err).Msg("excel export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error exporting Excel"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+report.Filename)
	c.Data(http.StatusOK, report.ContentType, data)
}

// ---------- Admin ----------

type sendAbsenteesRequest struct {
	Secret string `json:"secret"`
}

// SendAbsentees triggers the reconciliation job for today. Guarded by the
// shared admin secret; no emails are attempted on a mismatch.
func (h *Handler) SendAbsentees(c *gin.Context) {
	var req sendAbsenteesRequest
	_ = c.ShouldBindJSON(&req)

	if req.Secret == "" || req.Secret != h.adminSecret {
		h.respondError(c, apperr.NewAuthorizationError("Unauthorized"))
		return
	}

	count, err := h.job.RunForDay(c.Request.Context(), time.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// ---------- helpers ----------

func (h *Handler) respondError(c *gin.Context, err error) {
	var vErr *apperr.ValidationError
	var cErr *apperr.ConflictError
	var aErr *apperr.AuthorizationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": vErr.Error()})
	case errors.As(err, &cErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": cErr.Error()})
	case errors.As(err, &aErr):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": aErr.Error()})
	default:
		// Store failures: generic body, details stay server-side.
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
	}
}

func marksOrEmpty(records []attendance.Mark) []attendance.Mark {
	if records == nil {
		return []attendance.Mark{}
	}
	return records
}
