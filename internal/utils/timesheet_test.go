package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/hours"
)

var testTechnician = &domain.Technician{ID: 7, Name: "Wang Wei", EmployeeID: "E00007"}

func TestBuildTimeEntryFirstOfDay(t *testing.T) {
	job := &domain.Job{JobNumber: "JOB-001", AllocatedHours: 40}

	entry, c, err := BuildTimeEntry(hours.DayBased, hours.CapacityClamp, testTechnician, job, TimeEntryInput{
		Date: "2026-02-02", StartTime: "08:00", EndTime: "17:00", Notes: "boom strip",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(7), entry.TechnicianID)
	assert.Equal(t, "Wang Wei", entry.TechnicianName)
	assert.Equal(t, "Monday", entry.DayOfWeek)
	assert.Equal(t, "JOB-001", entry.JobNumber)
	assert.Equal(t, 9.0, entry.TotalWorkedHours)
	assert.Equal(t, 8.0, entry.HRHours)
	assert.Equal(t, 7.0, entry.ProductiveHours)
	assert.Equal(t, 1.0, entry.OvertimeHours)
	assert.Equal(t, 1.5, entry.WeightedOvertime)
	assert.Equal(t, "boom strip", entry.Notes)
	assert.False(t, c.DailyClamped)
	assert.Empty(t, c.Warnings)
}

func TestBuildTimeEntrySubsequentEntry(t *testing.T) {
	job := &domain.Job{JobNumber: "JOB-002", AllocatedHours: 40}
	dayEntries := []*domain.TimeEntry{{JobNumber: "JOB-001", ProductiveHours: 4, HRHours: 5}}

	entry, c, err := BuildTimeEntry(hours.DayBased, hours.CapacityClamp, testTechnician, job, TimeEntryInput{
		Date: "2026-02-02", StartTime: "13:00", EndTime: "18:00",
	}, dayEntries)
	require.NoError(t, err)

	assert.Zero(t, entry.HRHours)
	assert.Zero(t, entry.OvertimeHours)
	assert.Zero(t, entry.WeightedOvertime)
	// 5h - 1h 午休 = 4h，但当天只剩 3h
	assert.Equal(t, 3.0, entry.ProductiveHours)
	assert.True(t, c.DailyClamped)
}

func TestBuildTimeEntryRejections(t *testing.T) {
	job := &domain.Job{JobNumber: "JOB-001", AllocatedHours: 40}

	_, _, err := BuildTimeEntry(hours.DayBased, hours.CapacityClamp, testTechnician, job, TimeEntryInput{
		Date: "2026-02-02", StartTime: "08:00", EndTime: "12:00",
	}, []*domain.TimeEntry{{JobNumber: "JOB-001", ProductiveHours: 2}})
	assert.ErrorIs(t, err, ErrDuplicateJobEntry)

	_, _, err = BuildTimeEntry(hours.DayBased, hours.CapacityClamp, testTechnician, job, TimeEntryInput{
		Date: "2026-02-06", StartTime: "08:00", EndTime: "12:00",
	}, []*domain.TimeEntry{{JobNumber: "JOB-009", ProductiveHours: 6}})
	assert.ErrorIs(t, err, ErrDailyBudgetExhausted)

	_, _, err = BuildTimeEntry(hours.DayBased, hours.CapacityClamp, testTechnician, job, TimeEntryInput{
		Date: "2026-02-02", StartTime: "08:00", EndTime: "08:00",
	}, nil)
	assert.ErrorIs(t, err, hours.ErrZeroLengthShift)
}

func TestBuildTimeEntryJobCapacity(t *testing.T) {
	job := &domain.Job{JobNumber: "JOB-001", AllocatedHours: 10, ConsumedHours: 5}
	in := TimeEntryInput{Date: "2026-02-02", StartTime: "08:00", EndTime: "17:00"}

	entry, c, err := BuildTimeEntry(hours.DayBased, hours.CapacityClamp, testTechnician, job, in, nil)
	require.NoError(t, err)
	assert.Equal(t, 5.0, entry.ProductiveHours)
	assert.True(t, c.JobClamped)
	assert.Len(t, c.Warnings, 1)

	entry, c, err = BuildTimeEntry(hours.DayBased, hours.CapacityAllow, testTechnician, job, in, nil)
	require.NoError(t, err)
	assert.Equal(t, 7.0, entry.ProductiveHours)
	assert.False(t, c.JobClamped)
	assert.Len(t, c.Warnings, 1)

	_, _, err = BuildTimeEntry(hours.DayBased, hours.CapacityReject, testTechnician, job, in, nil)
	assert.ErrorIs(t, err, hours.ErrCapacityExceeded)
}
