package reconcile_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartattendance/internal/attendance"
	"smartattendance/internal/memstore"
	"smartattendance/internal/reconcile"
	"smartattendance/internal/student"
)

type sentMail struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// recordingMailer captures sends and can fail selected recipients.
type recordingMailer struct {
	mu     sync.Mutex
	sent   []sentMail
	failTo map[string]bool
}

func (m *recordingMailer) Send(to, subject, text, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTo[to] {
		return errors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Text: text, HTML: html})
	return nil
}

func setup(t *testing.T) (*memstore.Directory, *memstore.Ledger, *recordingMailer, *reconcile.Job) {
	t.Helper()
	dir := memstore.NewDirectory()
	ledger := memstore.NewLedger()
	mail := &recordingMailer{failTo: map[string]bool{}}
	return dir, ledger, mail, reconcile.NewJob(dir, ledger, mail)
}

func TestRunForDay_AbsenteeCount(t *testing.T) {
	dir, ledger, mail, job := setup(t)
	ctx := context.Background()
	day := time.Date(2024, 3, 11, 17, 0, 0, 0, time.Local)

	for _, s := range []student.Student{
		{Name: "A", RollNo: "A", StudentEmail: "a@example.com"},
		{Name: "B", RollNo: "B", StudentEmail: "b@example.com", ParentEmail: "b.parent@example.com"},
		{Name: "C", RollNo: "C", StudentEmail: "c@example.com"},
	} {
		_, err := dir.Insert(ctx, s)
		require.NoError(t, err)
	}
	_, err := ledger.Insert(ctx, attendance.Mark{RollNo: "A", Date: day.Add(-8 * time.Hour)})
	require.NoError(t, err)

	count, err := job.RunForDay(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// B gets student + parent mail, C gets student mail, A gets nothing.
	require.Len(t, mail.sent, 3)
	tos := make([]string, 0, len(mail.sent))
	for _, s := range mail.sent {
		tos = append(tos, s.To)
	}
	assert.ElementsMatch(t, []string{"b@example.com", "b.parent@example.com", "c@example.com"}, tos)
}

func TestRunForDay_MessageContent(t *testing.T) {
	dir, _, mail, job := setup(t)
	ctx := context.Background()
	day := time.Date(2024, 3, 11, 17, 0, 0, 0, time.Local)

	_, err := dir.Insert(ctx, student.Student{Name: "Asha", RollNo: "R1", StudentEmail: "asha@example.com"})
	require.NoError(t, err)

	_, err = job.RunForDay(ctx, day)
	require.NoError(t, err)

	require.Len(t, mail.sent, 1)
	msg := mail.sent[0]
	assert.Equal(t, "Absence Alert — 3/11/2024", msg.Subject)
	assert.Contains(t, msg.Text, "Dear Asha,")
	assert.Contains(t, msg.Text, "marked ABSENT on 3/11/2024")
	assert.Contains(t, msg.HTML, "<strong>ABSENT</strong>")
}

func TestRunForDay_DeliveryFailureDoesNotAbort(t *testing.T) {
	dir, _, mail, job := setup(t)
	ctx := context.Background()
	day := time.Date(2024, 3, 11, 17, 0, 0, 0, time.Local)

	for _, s := range []student.Student{
		{Name: "B", RollNo: "B", StudentEmail: "b@example.com", ParentEmail: "b.parent@example.com"},
		{Name: "C", RollNo: "C", StudentEmail: "c@example.com"},
	} {
		_, err := dir.Insert(ctx, s)
		require.NoError(t, err)
	}
	mail.failTo["b@example.com"] = true

	count, err := job.RunForDay(ctx, day)
	require.NoError(t, err)

	// Count reflects absentees, not deliveries; remaining recipients still get mail.
	assert.Equal(t, 2, count)
	tos := make([]string, 0, len(mail.sent))
	for _, s := range mail.sent {
		tos = append(tos, s.To)
	}
	assert.ElementsMatch(t, []string{"b.parent@example.com", "c@example.com"}, tos)
}

func TestRunForDay_NoStudents(t *testing.T) {
	_, _, mail, job := setup(t)

	count, err := job.RunForDay(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, mail.sent)
}
