package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, sheets []Sheet) *excelize.File {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, sheets))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestHRWorkbook(t *testing.T) {
	technicians := []*domain.Technician{
		{ID: 1, Name: "Wang Wei", EmployeeID: "E001", Department: "Hydraulics"},
		{ID: 2, Name: "Li Na", EmployeeID: "E002"},
	}
	f := openWorkbook(t, HRWorkbook(technicians, twoMonthEntries()))

	assert.Equal(t, []string{"Attendance Records", "Payroll Summary", "Monthly Summary"}, f.GetSheetList())

	attendance, err := f.GetRows("Attendance Records")
	require.NoError(t, err)
	assert.Len(t, attendance, 6)
	assert.Equal(t, "Total Payable Hours", attendance[0][12])

	payroll, err := f.GetRows("Payroll Summary")
	require.NoError(t, err)
	require.Len(t, payroll, 3)
	assert.Equal(t, []string{"E002", "Li Na", "-", "2", "14", "12", "2", "3", "17"}, payroll[2])

	monthly, err := f.GetRows("Monthly Summary")
	require.NoError(t, err)
	require.Len(t, monthly, 3)
	assert.Equal(t, []string{"Month", "Total Days", "Total HR Hours", "Total Overtime", "Total Weighted OT", "Total Payable"}, monthly[0])
	assert.Equal(t, []string{"2026-02", "3", "20", "3", "4.5", "24.5"}, monthly[1])
	assert.Equal(t, []string{"2026-03", "1", "6", "0", "0", "6"}, monthly[2])
}

func TestTimesheetWorkbook(t *testing.T) {
	f := openWorkbook(t, TimesheetWorkbook(sampleEntries()))

	assert.Equal(t, []string{"All Entries", "Summary by Technician"}, f.GetSheetList())

	summary, err := f.GetRows("Summary by Technician")
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, []string{"Wang Wei", "3", "12", "13", "1", "1.5"}, summary[1])
}
