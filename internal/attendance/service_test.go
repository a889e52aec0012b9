package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartattendance/internal/apperr"
	"smartattendance/internal/attendance"
	"smartattendance/internal/memstore"
	"smartattendance/internal/student"
)

func newTestService(t *testing.T) (*attendance.Service, *memstore.Ledger, *memstore.Directory) {
	t.Helper()
	ledger := memstore.NewLedger()
	dir := memstore.NewDirectory()
	return attendance.NewService(ledger, dir), ledger, dir
}

func TestMarkPresent_CreatesOneMark(t *testing.T) {
	svc, ledger, dir := newTestService(t)
	ctx := context.Background()

	_, err := dir.Insert(ctx, student.Student{Name: "Asha", RollNo: "R1", StudentEmail: "asha@example.com"})
	require.NoError(t, err)

	res, err := svc.MarkPresent(ctx, "R1")
	require.NoError(t, err)

	assert.False(t, res.AlreadyMarked)
	assert.Equal(t, "R1", res.Record.RollNo)
	assert.Equal(t, "Present", res.Record.Status)
	require.NotNil(t, res.Student)
	assert.Equal(t, "Asha", res.Student.Name)
	assert.Equal(t, 1, ledger.Len())

	start, end := attendance.DayWindow(time.Now())
	assert.True(t, !res.Record.Date.Before(start) && !res.Record.Date.After(end))
}

func TestMarkPresent_SequentialCallsReturnFirstRecord(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.MarkPresent(ctx, "R1")
	require.NoError(t, err)

	second, err := svc.MarkPresent(ctx, "R1")
	require.NoError(t, err)

	assert.True(t, second.AlreadyMarked)
	assert.Equal(t, first.Record.ID, second.Record.ID)
	assert.Equal(t, 1, ledger.Len())
}

func TestMarkPresent_MissingRollNo(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.MarkPresent(context.Background(), "")

	var vErr *apperr.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestMarkPresent_UnknownStudentIsNotAnError(t *testing.T) {
	svc, _, _ := newTestService(t)

	res, err := svc.MarkPresent(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, res.Student)
	assert.Equal(t, "ghost", res.Record.RollNo)
}

func TestCleanDuplicates(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	ctx := context.Background()

	day := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	var first attendance.Mark
	for i := 0; i < 3; i++ {
		m, err := ledger.Insert(ctx, attendance.Mark{RollNo: "R1", Date: day.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
		if i == 0 {
			first = m
		}
	}
	_, err := ledger.Insert(ctx, attendance.Mark{RollNo: "R2", Date: day})
	require.NoError(t, err)

	removed, err := svc.CleanDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.Equal(t, 2, ledger.Len())

	// The first member of the group survives.
	kept, err := ledger.ListByRoll(ctx, "R1")
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, first.ID, kept[0].ID)

	// Re-running removes nothing.
	removed, err = svc.CleanDuplicates(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestCleanDuplicates_SameDayOfYearDifferentYear(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	ctx := context.Background()

	// Same day-of-year, different years: not duplicates.
	_, err := ledger.Insert(ctx, attendance.Mark{RollNo: "R1", Date: time.Date(2023, 2, 1, 9, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	_, err = ledger.Insert(ctx, attendance.Mark{RollNo: "R1", Date: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	removed, err := svc.CleanDuplicates(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, 2, ledger.Len())
}

func TestSummary(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	ctx := context.Background()

	day1 := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	for _, m := range []attendance.Mark{
		{RollNo: "R2", Date: day1},
		{RollNo: "R1", Date: day1},
		{RollNo: "R1", Date: day2},
	} {
		_, err := ledger.Insert(ctx, m)
		require.NoError(t, err)
	}

	rows, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, attendance.SummaryRow{RollNo: "R1", DaysPresent: 2}, rows[0])
	assert.Equal(t, attendance.SummaryRow{RollNo: "R2", DaysPresent: 1}, rows[1])
}

func TestListByDate(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	ctx := context.Background()

	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local)
	_, err := ledger.Insert(ctx, attendance.Mark{RollNo: "R1", Date: day.Add(9 * time.Hour)})
	require.NoError(t, err)
	_, err = ledger.Insert(ctx, attendance.Mark{RollNo: "R2", Date: day.Add(11 * time.Hour)})
	require.NoError(t, err)
	_, err = ledger.Insert(ctx, attendance.Mark{RollNo: "R3", Date: day.AddDate(0, 0, 1).Add(9 * time.Hour)})
	require.NoError(t, err)

	records, err := svc.ListByDate(ctx, day)
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Newest first.
	assert.Equal(t, "R2", records[0].RollNo)
	assert.Equal(t, "R1", records[1].RollNo)
}

func TestDayWindow(t *testing.T) {
	at := time.Date(2024, 3, 11, 14, 30, 12, 0, time.Local)
	start, end := attendance.DayWindow(at)

	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2024, 3, 11, 23, 59, 59, 999000000, time.Local), end)
}
