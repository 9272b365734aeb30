package export

import (
	"io"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/hours"
	"github.com/xuri/excelize/v2"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Sheet struct {
	Name  string
	Table Table
}

// HRWorkbook 人事使用的工资报表：考勤明细、技师汇总与月度汇总
func HRWorkbook(technicians []*domain.Technician, entries []*domain.TimeEntry) []Sheet {
	return []Sheet{
		{Name: "Attendance Records", Table: TimesheetTable(entries)},
		{Name: "Payroll Summary", Table: PayrollTable(technicians, entries)},
		{Name: "Monthly Summary", Table: MonthlyTable(entries)},
	}
}

func TimesheetWorkbook(entries []*domain.TimeEntry) []Sheet {
	return []Sheet{
		{Name: "All Entries", Table: TimesheetTable(entries)},
		{Name: "Summary by Technician", Table: TechnicianSummaryTable(entries)},
	}
}

func cellValue(v any) any {
	if f, ok := v.(float64); ok {
		return hours.Round2(f)
	}
	return v
}

// WriteWorkbook 按顺序写入各个工作表，表头加粗并冻结
func WriteWorkbook(w io.Writer, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return err
		}

		header := make([]any, len(sheet.Table.Header))
		for j, h := range sheet.Table.Header {
			header[j] = h
		}
		if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
			return err
		}
		if err := f.SetRowStyle(sheet.Name, 1, 1, bold); err != nil {
			return err
		}
		if err := f.SetPanes(sheet.Name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return err
		}

		for j, row := range sheet.Table.Rows {
			cells := make([]any, len(row))
			for k, v := range row {
				cells[k] = cellValue(v)
			}
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet.Name, cell, &cells); err != nil {
				return err
			}
		}
	}

	_, err = f.WriteTo(w)
	return err
}
