package report

import (
	"github.com/xuri/excelize/v2"

	"smartattendance/internal/attendance"
	"smartattendance/internal/student"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Filename is the attachment name served to download clients.
const Filename = "attendance.xlsx"

const sheet = "Attendance"

// AttendanceWorkbook builds an xlsx workbook with one row per mark, joining
// student names from the directory. Marks without a matching student get the
// name "Unknown".
func AttendanceWorkbook(marks []attendance.Mark, students []student.Student) ([]byte, error) {
	names := make(map[string]string, len(students))
	for _, s := range students {
		names[s.RollNo] = s.Name
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheet)

	for col, h := range []string{"Name", "RollNo", "Status", "Date"} {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, m := range marks {
		name := names[m.RollNo]
		if name == "" {
			name = "Unknown"
		}
		values := []any{name, m.RollNo, m.Status, m.Date.Format("1/2/2006, 3:04:05 PM")}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
