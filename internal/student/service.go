package student

import (
	"context"

	"smartattendance/internal/apperr"
)

// QREncoder maps a string payload to an image-encoded data URL.
type QREncoder interface {
	DataURL(content string) (string, error)
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Name         string
	RollNo       string
	Phone        string
	StudentEmail string
	ParentEmail  string
}

// Service handles student registration.
type Service struct {
	dir Directory
	qr  QREncoder
}

// NewService creates a service backed by a directory and a QR encoder.
func NewService(dir Directory, qr QREncoder) *Service {
	return &Service{dir: dir, qr: qr}
}

// Register validates input, rejects duplicate roll numbers, generates the QR
// payload for the roll number and stores the student.
//
// The existence check and the insert are separate store calls; two concurrent
// registrations for the same roll number can both pass the check. There is no
// cleanup for duplicate students, so this stays a known limitation.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Student, error) {
	if in.Name == "" || in.RollNo == "" || in.StudentEmail == "" {
		return Student{}, apperr.NewValidationError("Name, RollNo and Student Email are required")
	}

	existing, err := s.dir.FindByRoll(ctx, in.RollNo)
	if err != nil {
		return Student{}, err
	}
	if existing != nil {
		return Student{}, apperr.NewConflictError("Roll No already exists")
	}

	qrData, err := s.qr.DataURL(in.RollNo)
	if err != nil {
		return Student{}, err
	}

	return s.dir.Insert(ctx, Student{
		Name:         in.Name,
		RollNo:       in.RollNo,
		Phone:        in.Phone,
		StudentEmail: in.StudentEmail,
		ParentEmail:  in.ParentEmail,
		QRCodeData:   qrData,
	})
}

// FindByRoll exposes directory lookup for callers joining marks to students.
func (s *Service) FindByRoll(ctx context.Context, rollNo string) (*Student, error) {
	return s.dir.FindByRoll(ctx, rollNo)
}

// ListAll returns the full directory.
func (s *Service) ListAll(ctx context.Context) ([]Student, error) {
	return s.dir.ListAll(ctx)
}
