package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"smartattendance/internal/attendance"
	"smartattendance/internal/mailer"
	"smartattendance/internal/metrics"
	"smartattendance/internal/student"
)

// StudentSource lists the registered students.
type StudentSource interface {
	ListAll(ctx context.Context) ([]student.Student, error)
}

// MarkSource lists the marks within a day window.
type MarkSource interface {
	ListInWindow(ctx context.Context, start, end time.Time) ([]attendance.Mark, error)
}

// Job computes absentees for a calendar day and notifies them by email.
type Job struct {
	students StudentSource
	marks    MarkSource
	mail     mailer.Sender
}

// NewJob creates a reconciliation job.
func NewJob(students StudentSource, marks MarkSource, mail mailer.Sender) *Job {
	return &Job{students: students, marks: marks, mail: mail}
}

// RunForDay finds every student without a mark in day's window and attempts
// an absence email to their student and parent addresses. Each recipient is
// attempted independently; a failed send is logged and never aborts the run.
// The returned count is the number of absentees, regardless of how many
// emails actually went out.
func (j *Job) RunForDay(ctx context.Context, day time.Time) (int, error) {
	start, end := attendance.DayWindow(day)

	students, err := j.students.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	marks, err := j.marks.ListInWindow(ctx, start, end)
	if err != nil {
		return 0, err
	}

	present := make(map[string]struct{}, len(marks))
	for _, m := range marks {
		present[m.RollNo] = struct{}{}
	}

	dateStr := start.Format("1/2/2006")
	var absentees int
	for _, s := range students {
		if _, ok := present[s.RollNo]; ok {
			continue
		}
		absentees++

		subject := fmt.Sprintf("Absence Alert — %s", dateStr)
		text := fmt.Sprintf("Dear %s,\n\nYou were marked ABSENT on %s.\nIf this is a mistake please contact your coordinator.\n\n- Smart Attendance System", s.Name, dateStr)
		html := fmt.Sprintf("<p>Dear %s,</p><p>You were marked <strong>ABSENT</strong> on %s.</p><p>If this is a mistake please contact your coordinator.</p><p>- Smart Attendance System</p>", s.Name, dateStr)

		j.deliver(s.RollNo, s.StudentEmail, subject, text, html)
		j.deliver(s.RollNo, s.ParentEmail, subject, text, html)
	}

	if absentees > 0 {
		metrics.AbsenteesFound.Add(float64(absentees))
	}
	return absentees, nil
}

func (j *Job) deliver(rollNo, to, subject, text, html string) {
	if to == "" {
		return
	}
	if err := j.mail.Send(to, subject, text, html); err != nil {
		metrics.EmailFailures.Inc()
		log.Error().Err(err).Str("rollNo", rollNo).Str("to", to).Msg("absence email failed")
		return
	}
	metrics.EmailsSent.Inc()
}
