package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/hours"
)

func ptr[T any](v T) *T {
	return &v
}

func TestValidateShift(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		start     string
		end       string
		expectErr error
	}{
		{name: "regular", date: "2026-02-02", start: "08:00", end: "17:00"},
		{name: "overnight", date: "2026-02-03", start: "22:00", end: "06:00"},
		{name: "zero length", date: "2026-02-02", start: "08:00", end: "08:00", expectErr: hours.ErrZeroLengthShift},
		{name: "bad clock", date: "2026-02-02", start: "8am", end: "17:00", expectErr: hours.ErrInvalidTime},
		{name: "out of range clock", date: "2026-02-02", start: "08:00", end: "24:30", expectErr: hours.ErrInvalidTime},
		{name: "bad date", date: "02/02/2026", start: "08:00", end: "17:00", expectErr: hours.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateShift(tt.date, tt.start, tt.end)
			if tt.expectErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expectErr)
		})
	}
}

func TestValidateJobDates(t *testing.T) {
	assert.NoError(t, ValidateJobDates(nil, nil))
	assert.NoError(t, ValidateJobDates(ptr("2026-02-02"), ptr("2026-02-20")))
	assert.NoError(t, ValidateJobDates(ptr("2026-02-02"), nil))
	assert.Error(t, ValidateJobDates(ptr("2026-02-21"), ptr("2026-02-20")))
	assert.ErrorIs(t, ValidateJobDates(ptr("2026-2-1"), nil), hours.ErrInvalidDate)
}

func TestValidateAssignment(t *testing.T) {
	one := []domain.JobTechnician{{TechnicianID: 1}}
	two := []domain.JobTechnician{{TechnicianID: 1}, {TechnicianID: 2}}

	assert.NoError(t, ValidateAssignment(domain.AssignmentSingle, one))
	assert.Error(t, ValidateAssignment(domain.AssignmentSingle, two))
	assert.Error(t, ValidateAssignment(domain.AssignmentSingle, nil))
	assert.NoError(t, ValidateAssignment(domain.AssignmentMulti, two))
	assert.Error(t, ValidateAssignment(domain.AssignmentMulti, nil))
	assert.Error(t, ValidateAssignment(domain.AssignmentMulti, []domain.JobTechnician{{TechnicianID: 3}, {TechnicianID: 3}}))
	assert.Error(t, ValidateAssignment(domain.AssignmentMulti, []domain.JobTechnician{{TechnicianID: 3, AllocatedHours: -1}}))
	assert.Error(t, ValidateAssignment("pair", one))
}

func TestValidateJobReport(t *testing.T) {
	assert.NoError(t, ValidateJobReport(&domain.JobReport{WorkCompleted: "stripped boom"}))
	assert.Error(t, ValidateJobReport(&domain.JobReport{HasBottleneck: true}))
	assert.NoError(t, ValidateJobReport(&domain.JobReport{
		HasBottleneck:      true,
		BottleneckCategory: ptr(domain.BottleneckWaitingForParts),
	}))
	assert.Error(t, ValidateJobReport(&domain.JobReport{
		HasBottleneck:      true,
		BottleneckCategory: ptr(domain.BottleneckCategory("weather")),
	}))
}

func TestRomanizeChineseName(t *testing.T) {
	assert.Equal(t, "Wang Xiaoming", RomanizeChineseName("王小明"))
	assert.Equal(t, "Li", RomanizeChineseName("李"))
}

func TestGenerateRandomJob(t *testing.T) {
	technicians := []*domain.Technician{
		{ID: 1, Name: "Wang Wei"},
		{ID: 2, Name: "Li Na"},
		{ID: 3, Name: "Zhang Min"},
	}

	for i := 0; i < 20; i++ {
		job := GenerateRandomJob(technicians)
		require.NoError(t, ValidateAssignment(job.AssignmentKind, job.Technicians))
		require.NoError(t, ValidateJobDates(job.StartDate, job.TargetCompletionDate))
		assert.Equal(t, domain.JobPendingConfirmation, job.Status)
		assert.Greater(t, job.AllocatedHours, 0.0)
	}
}

func TestGenerateRandomShift(t *testing.T) {
	for i := 0; i < 20; i++ {
		start, end := GenerateRandomShift()
		require.NoError(t, ValidateShift("2026-02-02", start, end))
	}
}

func TestRecentWeekdays(t *testing.T) {
	now, err := hours.ParseDate("2026-02-09") // 周一
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-02-06", "2026-02-05", "2026-02-04"}, RecentWeekdays(now, 3))
}
