package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/hours"
)

func TestPerformance(t *testing.T) {
	technicians := []*domain.Technician{
		{ID: 1, Name: "Wang Wei", EmployeeID: "E001"},
		{ID: 2, Name: "Li Na", EmployeeID: "E002"},
	}
	jobs := []*domain.Job{
		{
			JobNumber: "JOB-001", AllocatedHours: 40, ConsumedHours: 50, TotalHoursUtilized: 50,
			Status: domain.JobCompleted, Technicians: []domain.JobTechnician{{TechnicianID: 1}},
		},
		{
			JobNumber: "JOB-002", AllocatedHours: 20, ConsumedHours: 5, BottleneckCount: 1,
			Status: domain.JobInProgress, Technicians: []domain.JobTechnician{{TechnicianID: 1}, {TechnicianID: 2}},
		},
	}
	entries := []*domain.TimeEntry{
		// 周一与周五各一天
		{TechnicianID: 1, Date: "2026-02-02", JobNumber: "JOB-001", HRHours: 8, ProductiveHours: 7},
		{TechnicianID: 1, Date: "2026-02-06", JobNumber: "JOB-001", HRHours: 7, ProductiveHours: 3},
		{TechnicianID: 1, Date: "2026-02-06", JobNumber: "JOB-002", HRHours: 0, ProductiveHours: 3},
		{TechnicianID: 1, Date: "2026-03-02", JobNumber: "JOB-002", HRHours: 8, ProductiveHours: 7},
		{TechnicianID: 2, Date: "2026-02-03", JobNumber: "JOB-002", HRHours: 8, ProductiveHours: 7},
	}

	result := Performance(technicians, jobs, entries, "2026-02", hours.DayBased)
	require.Len(t, result, 2)

	wang := result[0]
	assert.Equal(t, 1, wang.CompletedJobs)
	assert.Equal(t, 1, wang.ActiveJobs)
	assert.Equal(t, 1, wang.JobsWithBottlenecks)
	assert.Equal(t, 40.0, wang.AllocatedHours)
	assert.Equal(t, 50.0, wang.HoursUtilized)
	assert.Equal(t, 80.0, wang.JobEfficiency)
	assert.Equal(t, 13.0, wang.ProductiveHours)
	assert.Equal(t, 15.0, wang.HRHours)
	// 可用生产工时为 7 + 6
	assert.Equal(t, 100.0, wang.Utilization)
	assert.Equal(t, PerformanceAverage, wang.Performance)

	li := result[1]
	assert.Equal(t, 0, li.CompletedJobs)
	assert.Equal(t, 1, li.ActiveJobs)
	assert.Equal(t, 0.0, li.JobEfficiency)
	assert.Equal(t, 100.0, li.Utilization)
	assert.Equal(t, PerformanceNeedsImprovement, li.Performance)
}

func TestCategoryFor(t *testing.T) {
	assert.Equal(t, PerformanceExcellent, CategoryFor(95))
	assert.Equal(t, PerformanceGood, CategoryFor(94.99))
	assert.Equal(t, PerformanceAverage, CategoryFor(70))
	assert.Equal(t, PerformanceNeedsImprovement, CategoryFor(69.9))
}

func TestAtRisk(t *testing.T) {
	jobs := []*domain.Job{
		{JobNumber: "A", Status: domain.JobAtRisk},
		{JobNumber: "B", Status: domain.JobOverAllocated},
		{JobNumber: "C", Status: domain.JobInProgress, BottleneckCount: 2},
		{JobNumber: "D", Status: domain.JobInProgress, BottleneckCount: 1},
		{JobNumber: "E", Status: domain.JobCompleted, BottleneckCount: 4},
	}

	got := AtRisk(jobs)
	numbers := make([]string, 0, len(got))
	for _, j := range got {
		numbers = append(numbers, j.JobNumber)
	}
	assert.Equal(t, []string{"A", "B", "C"}, numbers)
}
