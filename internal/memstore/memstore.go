// Package memstore provides in-memory implementations of the directory and
// ledger contracts, used by tests and by local development without MongoDB.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"smartattendance/internal/attendance"
	"smartattendance/internal/student"
)

// Directory is an in-memory student directory.
type Directory struct {
	mu       sync.Mutex
	students []student.Student
	seq      int
}

var _ student.Directory = (*Directory)(nil)

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{}
}

// FindByRoll returns the first student with the given roll number, or nil.
func (d *Directory) FindByRoll(_ context.Context, rollNo string) (*student.Student, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.students {
		if d.students[i].RollNo == rollNo {
			st := d.students[i]
			return &st, nil
		}
	}
	return nil, nil
}

// Insert appends a student, assigning an id when absent.
func (d *Directory) Insert(_ context.Context, st student.Student) (student.Student, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st.ID == "" {
		d.seq++
		st.ID = fmt.Sprintf("student-%d", d.seq)
	}
	d.students = append(d.students, st)
	return st, nil
}

// ListAll returns all students ordered by roll number.
func (d *Directory) ListAll(_ context.Context) ([]student.Student, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]student.Student, len(d.students))
	copy(out, d.students)
	sort.SliceStable(out, func(i, j int) bool { return out[i].RollNo < out[j].RollNo })
	return out, nil
}

// Len reports how many students are stored.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.students)
}

// Ledger is an in-memory attendance ledger. Marks keep insertion order, which
// is also the "natural order" duplicate cleanup sees.
type Ledger struct {
	mu    sync.Mutex
	marks []attendance.Mark
	seq   int
}

var _ attendance.Ledger = (*Ledger)(nil)

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// FindInWindow returns one mark for rollNo within [start, end], or nil.
func (l *Ledger) FindInWindow(_ context.Context, rollNo string, start, end time.Time) (*attendance.Mark, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.marks {
		m := l.marks[i]
		if m.RollNo == rollNo && inWindow(m.Date, start, end) {
			return &m, nil
		}
	}
	return nil, nil
}

// Insert appends a mark, applying the same defaults as the Mongo repository.
func (l *Ledger) Insert(_ context.Context, m attendance.Mark) (attendance.Mark, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m.ID == "" {
		l.seq++
		m.ID = fmt.Sprintf("mark-%d", l.seq)
	}
	if m.Status == "" {
		m.Status = "Present"
	}
	if m.Date.IsZero() {
		m.Date = time.Now()
	}
	l.marks = append(l.marks, m)
	return m, nil
}

// ListAll returns every mark, newest first.
func (l *Ledger) ListAll(_ context.Context) ([]attendance.Mark, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return newestFirst(l.marks, func(attendance.Mark) bool { return true }), nil
}

// ListByRoll returns all marks for one roll number, newest first.
func (l *Ledger) ListByRoll(_ context.Context, rollNo string) ([]attendance.Mark, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return newestFirst(l.marks, func(m attendance.Mark) bool { return m.RollNo == rollNo }), nil
}

// ListInWindow returns all marks within [start, end], newest first.
func (l *Ledger) ListInWindow(_ context.Context, start, end time.Time) ([]attendance.Mark, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return newestFirst(l.marks, func(m attendance.Mark) bool { return inWindow(m.Date, start, end) }), nil
}

// Summary counts marks per roll number, ascending by roll number.
func (l *Ledger) Summary(_ context.Context) ([]attendance.SummaryRow, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	counts := make(map[string]int)
	for _, m := range l.marks {
		counts[m.RollNo]++
	}
	rows := make([]attendance.SummaryRow, 0, len(counts))
	for roll, n := range counts {
		rows = append(rows, attendance.SummaryRow{RollNo: roll, DaysPresent: n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].RollNo < rows[j].RollNo })
	return rows, nil
}

// DuplicateGroups groups marks by (rollNo, UTC day-of-year, year), returning
// groups with more than one member. Ids appear in insertion order.
func (l *Ledger) DuplicateGroups(_ context.Context) ([]attendance.DuplicateGroup, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	type key struct {
		roll string
		day  int
		year int
	}
	order := []key{}
	groups := make(map[key][]string)
	for _, m := range l.marks {
		d := m.Date.UTC()
		k := key{roll: m.RollNo, day: d.YearDay(), year: d.Year()}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], m.ID)
	}

	var out []attendance.DuplicateGroup
	for _, k := range order {
		ids := groups[k]
		if len(ids) < 2 {
			continue
		}
		out = append(out, attendance.DuplicateGroup{RollNo: k.roll, Day: k.day, Year: k.year, IDs: ids})
	}
	return out, nil
}

// DeleteByIDs removes the given marks.
func (l *Ledger) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := l.marks[:0]
	var removed int64
	for _, m := range l.marks {
		if _, gone := drop[m.ID]; gone {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	l.marks = kept
	return removed, nil
}

// Len reports how many marks are stored.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.marks)
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func newestFirst(marks []attendance.Mark, keep func(attendance.Mark) bool) []attendance.Mark {
	var out []attendance.Mark
	for _, m := range marks {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}
