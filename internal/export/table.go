package export

import (
	"sort"
	"strconv"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/hours"
)

// Table 是一张导出表格，单元格为 string、int 或 float64
type Table struct {
	Header []string
	Rows   [][]any
}

// Records 转为纯文本，小时数固定保留两位小数
func (t Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Header)
	for _, row := range t.Rows {
		record := make([]string, len(row))
		for i, cell := range row {
			switch v := cell.(type) {
			case float64:
				record[i] = strconv.FormatFloat(hours.Round2(v), 'f', 2, 64)
			case int:
				record[i] = strconv.Itoa(v)
			case string:
				record[i] = v
			}
		}
		records = append(records, record)
	}
	return records
}

type totals struct {
	entries    int
	hr         float64
	productive float64
	overtime   float64
	weighted   float64
}

func (t *totals) add(e *domain.TimeEntry) {
	t.entries++
	t.hr += e.HRHours
	t.productive += e.ProductiveHours
	t.overtime += e.OvertimeHours
	t.weighted += e.WeightedOvertime
}

// payable 计薪工时加上加权后的加班工时
func (t *totals) payable() float64 {
	return t.hr + t.weighted
}

func sortedEntries(entries []*domain.TimeEntry) []*domain.TimeEntry {
	sorted := make([]*domain.TimeEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].TechnicianName < sorted[j].TechnicianName
	})
	return sorted
}

// TimesheetTable 按日期升序输出每一条工时记录
func TimesheetTable(entries []*domain.TimeEntry) Table {
	t := Table{
		Header: []string{
			"Date",
			"Day",
			"Technician",
			"Job Number",
			"Start Time",
			"End Time",
			"Total Worked Hours",
			"HR Hours",
			"Productive Hours",
			"Overtime Hours",
			"Overtime Rate",
			"Weighted Overtime",
			"Total Payable Hours",
			"Notes",
		},
		Rows: make([][]any, 0, len(entries)),
	}

	for _, e := range sortedEntries(entries) {
		t.Rows = append(t.Rows, []any{
			e.Date,
			e.DayOfWeek,
			e.TechnicianName,
			e.JobNumber,
			e.StartTime,
			e.EndTime,
			e.TotalWorkedHours,
			e.HRHours,
			e.ProductiveHours,
			e.OvertimeHours,
			e.OvertimeRate,
			e.WeightedOvertime,
			e.HRHours + e.WeightedOvertime,
			e.Notes,
		})
	}
	return t
}

// PayrollTable 每个技师一行，出勤天数按不同日期计算
func PayrollTable(technicians []*domain.Technician, entries []*domain.TimeEntry) Table {
	t := Table{
		Header: []string{
			"Employee ID",
			"Technician Name",
			"Department",
			"Days Worked",
			"Total HR Hours",
			"Total Productive Hours",
			"Total Overtime Hours",
			"Total Weighted Overtime",
			"Total Payable Hours",
		},
		Rows: make([][]any, 0, len(technicians)),
	}

	for _, tech := range technicians {
		days := make(map[string]bool)
		var sum totals
		for _, e := range entries {
			if e.TechnicianID != tech.ID {
				continue
			}
			days[e.Date] = true
			sum.add(e)
		}

		department := tech.Department
		if department == "" {
			department = "-"
		}

		t.Rows = append(t.Rows, []any{
			tech.EmployeeID,
			tech.Name,
			department,
			len(days),
			sum.hr,
			sum.productive,
			sum.overtime,
			sum.weighted,
			sum.payable(),
		})
	}
	return t
}

// MonthlyTable 按 YYYY-MM 汇总，出勤天数为不同的 (技师, 日期) 组合数
func MonthlyTable(entries []*domain.TimeEntry) Table {
	t := Table{
		Header: []string{
			"Month",
			"Total Days",
			"Total HR Hours",
			"Total Overtime",
			"Total Weighted OT",
			"Total Payable",
		},
	}

	type techDay struct {
		technicianID int64
		date         string
	}
	sums := make(map[string]*totals)
	days := make(map[string]map[techDay]bool)
	for _, e := range entries {
		if len(e.Date) < 7 {
			continue
		}
		month := e.Date[:7]
		if sums[month] == nil {
			sums[month] = &totals{}
			days[month] = make(map[techDay]bool)
		}
		sums[month].add(e)
		days[month][techDay{e.TechnicianID, e.Date}] = true
	}

	months := make([]string, 0, len(sums))
	for m := range sums {
		months = append(months, m)
	}
	sort.Strings(months)

	t.Rows = make([][]any, 0, len(months))
	for _, m := range months {
		s := sums[m]
		t.Rows = append(t.Rows, []any{m, len(days[m]), s.hr, s.overtime, s.weighted, s.payable()})
	}
	return t
}

// TechnicianSummaryTable 按技师姓名汇总工时记录，只包含有记录的技师
func TechnicianSummaryTable(entries []*domain.TimeEntry) Table {
	t := Table{
		Header: []string{
			"Technician",
			"Total Entries",
			"HR Hours",
			"Productive Hours",
			"Overtime Hours",
			"Weighted Overtime",
		},
	}

	sums := make(map[string]*totals)
	for _, e := range entries {
		if sums[e.TechnicianName] == nil {
			sums[e.TechnicianName] = &totals{}
		}
		sums[e.TechnicianName].add(e)
	}

	names := make([]string, 0, len(sums))
	for name := range sums {
		names = append(names, name)
	}
	sort.Strings(names)

	t.Rows = make([][]any, 0, len(names))
	for _, name := range names {
		s := sums[name]
		t.Rows = append(t.Rows, []any{name, s.entries, s.hr, s.productive, s.overtime, s.weighted})
	}
	return t
}
