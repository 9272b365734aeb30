package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
)

func sampleEntries() []*domain.TimeEntry {
	return []*domain.TimeEntry{
		{
			TechnicianID: 1, TechnicianName: "Wang Wei", Date: "2026-02-03", DayOfWeek: "Tuesday",
			StartTime: "08:00", EndTime: "12:00", JobNumber: "JOB-002",
			TotalWorkedHours: 4, HRHours: 4, ProductiveHours: 3, OvertimeRate: 1.5,
		},
		{
			TechnicianID: 1, TechnicianName: "Wang Wei", Date: "2026-02-02", DayOfWeek: "Monday",
			StartTime: "08:00", EndTime: "17:00", JobNumber: "JOB-001", Notes: "boom, strip",
			TotalWorkedHours: 9, HRHours: 8, ProductiveHours: 7, OvertimeHours: 1, OvertimeRate: 1.5, WeightedOvertime: 1.5,
		},
		{
			TechnicianID: 1, TechnicianName: "Wang Wei", Date: "2026-02-03", DayOfWeek: "Tuesday",
			StartTime: "13:00", EndTime: "17:00", JobNumber: "JOB-003",
			TotalWorkedHours: 4, ProductiveHours: 3, OvertimeRate: 1.5,
		},
	}
}

// 跨月的数据，两名技师
func twoMonthEntries() []*domain.TimeEntry {
	return append(sampleEntries(),
		&domain.TimeEntry{
			TechnicianID: 2, TechnicianName: "Li Na", Date: "2026-02-02", DayOfWeek: "Monday",
			StartTime: "07:00", EndTime: "17:00", JobNumber: "JOB-001",
			TotalWorkedHours: 10, HRHours: 8, ProductiveHours: 7, OvertimeHours: 2, OvertimeRate: 1.5, WeightedOvertime: 3,
		},
		&domain.TimeEntry{
			TechnicianID: 2, TechnicianName: "Li Na", Date: "2026-03-01", DayOfWeek: "Sunday",
			StartTime: "08:00", EndTime: "14:00", JobNumber: "JOB-004",
			TotalWorkedHours: 6, HRHours: 6, ProductiveHours: 5, OvertimeRate: 2,
		},
	)
}

func TestTimesheetTable(t *testing.T) {
	records := TimesheetTable(sampleEntries()).Records()
	require.Len(t, records, 4)
	assert.Equal(t, "Date", records[0][0])
	assert.Equal(t, []string{
		"2026-02-02", "Monday", "Wang Wei", "JOB-001", "08:00", "17:00",
		"9.00", "8.00", "7.00", "1.00", "1.50", "1.50", "9.50", "boom, strip",
	}, records[1])
	assert.Equal(t, "2026-02-03", records[2][0])
}

func TestPayrollTable(t *testing.T) {
	technicians := []*domain.Technician{
		{ID: 1, Name: "Wang Wei", EmployeeID: "E001", Department: "Hydraulics"},
		{ID: 2, Name: "Li Na", EmployeeID: "E002"},
	}

	records := PayrollTable(technicians, sampleEntries()).Records()
	require.Len(t, records, 3)
	assert.Equal(t, []string{"E001", "Wang Wei", "Hydraulics", "2", "12.00", "13.00", "1.00", "1.50", "13.50"}, records[1])
	assert.Equal(t, []string{"E002", "Li Na", "-", "0", "0.00", "0.00", "0.00", "0.00", "0.00"}, records[2])
}

func TestMonthlyTable(t *testing.T) {
	table := MonthlyTable(twoMonthEntries())
	require.Len(t, table.Rows, 2)

	// 二月：王伟 2 天 + 李娜 1 天
	assert.Equal(t, []any{"2026-02", 3, 20.0, 3.0, 4.5, 24.5}, table.Rows[0])
	assert.Equal(t, []any{"2026-03", 1, 6.0, 0.0, 0.0, 6.0}, table.Rows[1])

	assert.Empty(t, MonthlyTable(nil).Rows)
}

func TestTechnicianSummaryTable(t *testing.T) {
	table := TechnicianSummaryTable(twoMonthEntries())
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []any{"Li Na", 2, 14.0, 12.0, 2.0, 3.0}, table.Rows[0])
	assert.Equal(t, []any{"Wang Wei", 3, 12.0, 13.0, 1.0, 1.5}, table.Rows[1])
}

func TestWriteCSVQuotesFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, TimesheetTable(sampleEntries())))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "boom, strip", records[1][13])
}
