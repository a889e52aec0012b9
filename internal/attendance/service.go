package attendance

import (
	"context"
	"time"

	"smartattendance/internal/apperr"
	"smartattendance/internal/metrics"
	"smartattendance/internal/student"
)

// DirectoryReader is the slice of the student directory the ledger needs.
type DirectoryReader interface {
	FindByRoll(ctx context.Context, rollNo string) (*student.Student, error)
}

// MarkResult is the outcome of a mark-present call.
type MarkResult struct {
	AlreadyMarked bool
	Record        Mark
	Student       *student.Student
}

// Service coordinates marking, queries and duplicate cleanup.
type Service struct {
	ledger Ledger
	dir    DirectoryReader
}

// NewService creates a service backed by a ledger and a directory.
func NewService(ledger Ledger, dir DirectoryReader) *Service {
	return &Service{ledger: ledger, dir: dir}
}

// MarkPresent records a presence mark for rollNo on the current calendar day.
// If a mark already exists in today's window the existing record is returned
// and nothing is written.
//
// The existence check and the insert are separate store calls; two
// near-simultaneous marks for the same roll number can both pass the check
// and both insert. CleanDuplicates repairs that after the fact.
func (s *Service) MarkPresent(ctx context.Context, rollNo string) (MarkResult, error) {
	if rollNo == "" {
		return MarkResult{}, apperr.NewValidationError("rollNo required")
	}

	start, end := DayWindow(time.Now())
	existing, err := s.ledger.FindInWindow(ctx, rollNo, start, end)
	if err != nil {
		return MarkResult{}, err
	}
	if existing != nil {
		return MarkResult{AlreadyMarked: true, Record: *existing}, nil
	}

	rec, err := s.ledger.Insert(ctx, Mark{RollNo: rollNo, Status: "Present", Date: time.Now()})
	if err != nil {
		return MarkResult{}, err
	}
	metrics.MarksCreated.Inc()

	// A missing student record is not an error; the mark stands on its own.
	st, err := s.dir.FindByRoll(ctx, rollNo)
	if err != nil {
		return MarkResult{}, err
	}
	return MarkResult{Record: rec, Student: st}, nil
}

// ListAll returns every mark, newest first.
func (s *Service) ListAll(ctx context.Context) ([]Mark, error) {
	return s.ledger.ListAll(ctx)
}

// ListByRoll returns all marks for one roll number, newest first.
func (s *Service) ListByRoll(ctx context.Context, rollNo string) ([]Mark, error) {
	return s.ledger.ListByRoll(ctx, rollNo)
}

// ListByDate returns all marks within the calendar day of d, newest first.
func (s *Service) ListByDate(ctx context.Context, d time.Time) ([]Mark, error) {
	start, end := DayWindow(d)
	return s.ledger.ListInWindow(ctx, start, end)
}

// Summary returns raw mark counts per roll number, ascending by roll number.
func (s *Service) Summary(ctx context.Context) ([]SummaryRow, error) {
	return s.ledger.Summary(ctx)
}

// CleanDuplicates collapses every (rollNo, day) group to a single mark and
// returns the number of deleted rows. The retained mark is the first id in
// the group's natural order, which is not guaranteed to be the earliest
// timestamp. Idempotent: a second run with no new marks deletes nothing.
func (s *Service) CleanDuplicates(ctx context.Context) (int64, error) {
	groups, err := s.ledger.DuplicateGroups(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, g := range groups {
		if len(g.IDs) < 2 {
			continue
		}
		n, err := s.ledger.DeleteByIDs(ctx, g.IDs[1:])
		if err != nil {
			return total, err
		}
		total += n
	}
	if total > 0 {
		metrics.DuplicatesRemoved.Add(float64(total))
	}
	return total, nil
}
