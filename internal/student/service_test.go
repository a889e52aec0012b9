package student_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartattendance/internal/apperr"
	"smartattendance/internal/memstore"
	"smartattendance/internal/qr"
	"smartattendance/internal/student"
)

func newTestService(t *testing.T) (*student.Service, *memstore.Directory) {
	t.Helper()
	dir := memstore.NewDirectory()
	return student.NewService(dir, qr.NewEncoder(128)), dir
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService(t)

	st, err := svc.Register(context.Background(), student.RegisterInput{
		Name:         "Asha",
		RollNo:       "R1",
		Phone:        "555-0101",
		StudentEmail: "asha@example.com",
		ParentEmail:  "parent@example.com",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, st.ID)
	assert.Equal(t, "R1", st.RollNo)
	assert.True(t, strings.HasPrefix(st.QRCodeData, "data:image/png;base64,"), "qr payload should be a PNG data URL")
}

func TestRegister_MissingRequiredFields(t *testing.T) {
	svc, dir := newTestService(t)

	for _, in := range []student.RegisterInput{
		{RollNo: "R1", StudentEmail: "a@example.com"},
		{Name: "Asha", StudentEmail: "a@example.com"},
		{Name: "Asha", RollNo: "R1"},
	} {
		_, err := svc.Register(context.Background(), in)
		var vErr *apperr.ValidationError
		require.ErrorAs(t, err, &vErr)
	}
	assert.Zero(t, dir.Len())
}

func TestRegister_DuplicateRollNo(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, student.RegisterInput{Name: "Asha", RollNo: "R1", StudentEmail: "asha@example.com"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, student.RegisterInput{Name: "Binny", RollNo: "R1", StudentEmail: "binny@example.com"})
	var cErr *apperr.ConflictError
	require.ErrorAs(t, err, &cErr)

	// Exactly one student with that roll number remains.
	assert.Equal(t, 1, dir.Len())
	st, err := dir.FindByRoll(ctx, "R1")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "Asha", st.Name)
}
