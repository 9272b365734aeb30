package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
)

func entry(jobNumber string, productive float64) *domain.TimeEntry {
	return &domain.TimeEntry{JobNumber: jobNumber, ProductiveHours: productive}
}

func confirmedJob(allocated float64) *domain.Job {
	return &domain.Job{
		JobNumber:      "JOB-001",
		AllocatedHours: allocated,
		Status:         domain.JobActive,
		AssignmentKind: domain.AssignmentSingle,
		Technicians:    []domain.JobTechnician{{TechnicianID: 1, Confirmed: true}},
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name      string
		allocated float64
		entries   []*domain.TimeEntry
		expected  Summary
	}{
		{
			name:      "no entries",
			allocated: 40,
			expected:  Summary{RemainingHours: 40},
		},
		{
			name:      "only matching job numbers count",
			allocated: 40,
			entries:   []*domain.TimeEntry{entry("JOB-001", 7), entry("JOB-002", 6), entry("JOB-001", 3)},
			expected:  Summary{ConsumedHours: 10, RemainingHours: 30, ProgressPercentage: 25},
		},
		{
			name:      "exactly consumed",
			allocated: 14,
			entries:   []*domain.TimeEntry{entry("JOB-001", 7), entry("JOB-001", 7)},
			expected:  Summary{ConsumedHours: 14, RemainingHours: 0, ProgressPercentage: 100},
		},
		{
			name:      "over allocated keeps remaining at zero",
			allocated: 40,
			entries:   []*domain.TimeEntry{entry("JOB-001", 25), entry("JOB-001", 20)},
			expected:  Summary{ConsumedHours: 45, RemainingHours: 0, ProgressPercentage: 100, OverAllocated: true},
		},
		{
			name:      "zero allocation",
			allocated: 0,
			entries:   []*domain.TimeEntry{entry("JOB-001", 2)},
			expected:  Summary{ConsumedHours: 2, RemainingHours: 0, OverAllocated: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate("JOB-001", tt.allocated, tt.entries, nil)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, max(tt.allocated-got.ConsumedHours, 0), got.RemainingHours)
			assert.Equal(t, got.ConsumedHours > tt.allocated, got.OverAllocated)
		})
	}
}

func TestSubtasksProgress(t *testing.T) {
	subtasks := []domain.Subtask{
		{
			ID:             1,
			AllocatedHours: 30,
			ProgressByTechnician: []domain.SubtaskProgress{
				{TechnicianID: 1, ProgressPercentage: 100},
				{TechnicianID: 2, ProgressPercentage: 50},
			},
		},
		{ID: 2, AllocatedHours: 10},
	}

	// (30 × 75 + 10 × 0) / 40
	assert.Equal(t, 56.25, SubtasksProgress(subtasks))

	s := Aggregate("JOB-001", 40, []*domain.TimeEntry{entry("JOB-001", 5)}, subtasks)
	assert.Equal(t, 56.25, s.ProgressPercentage)
	assert.Equal(t, 5.0, s.ConsumedHours)
}

func TestSubtasksProgressEqualWeights(t *testing.T) {
	subtasks := []domain.Subtask{
		{ID: 1, ProgressByTechnician: []domain.SubtaskProgress{{TechnicianID: 1, ProgressPercentage: 80}}},
		{ID: 2, ProgressByTechnician: []domain.SubtaskProgress{{TechnicianID: 1, ProgressPercentage: 140}}},
	}
	assert.Equal(t, 90.0, SubtasksProgress(subtasks))
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(j *domain.Job)
		expected domain.JobStatus
	}{
		{name: "unconfirmed", mutate: func(j *domain.Job) { j.Technicians[0].Confirmed = false }, expected: domain.JobPendingConfirmation},
		{name: "confirmed without hours", mutate: func(j *domain.Job) {}, expected: domain.JobActive},
		{name: "hours logged", mutate: func(j *domain.Job) { j.ConsumedHours = 3 }, expected: domain.JobInProgress},
		{name: "two bottlenecks", mutate: func(j *domain.Job) { j.ConsumedHours = 3; j.BottleneckCount = 2 }, expected: domain.JobAtRisk},
		{name: "over allocated wins over bottlenecks", mutate: func(j *domain.Job) { j.ConsumedHours = 41; j.BottleneckCount = 3 }, expected: domain.JobOverAllocated},
		{name: "unconfirmed but overrun", mutate: func(j *domain.Job) { j.Technicians[0].Confirmed = false; j.ConsumedHours = 41 }, expected: domain.JobOverAllocated},
		{name: "completed is terminal", mutate: func(j *domain.Job) { j.Status = domain.JobCompleted; j.ConsumedHours = 50 }, expected: domain.JobCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := confirmedJob(40)
			tt.mutate(job)
			assert.Equal(t, tt.expected, DeriveStatus(job))
		})
	}
}

func TestApplyAndComplete(t *testing.T) {
	job := confirmedJob(40)
	entries := []*domain.TimeEntry{entry("JOB-001", 7), entry("JOB-001", 6.5)}

	s := Apply(job, entries)
	assert.Equal(t, 13.5, s.ConsumedHours)
	assert.Equal(t, 13.5, job.ConsumedHours)
	assert.Equal(t, 26.5, job.RemainingHours)
	assert.Equal(t, 33.75, job.ProgressPercentage)
	assert.Equal(t, domain.JobInProgress, job.Status)

	Complete(job, time.Date(2026, 2, 20, 15, 0, 0, 0, time.UTC))
	assert.Equal(t, domain.JobCompleted, job.Status)
	assert.Equal(t, 13.5, job.TotalHoursUtilized)
	assert.Equal(t, 100.0, job.ProgressPercentage)
	require.NotNil(t, job.ActualCompletionDate)
	assert.Equal(t, "2026-02-20", *job.ActualCompletionDate)

	// 完成后再次汇总不改变状态与进度
	Apply(job, append(entries, entry("JOB-001", 2)))
	assert.Equal(t, domain.JobCompleted, job.Status)
	assert.Equal(t, 100.0, job.ProgressPercentage)
	assert.Equal(t, 15.5, job.ConsumedHours)
}

func TestRefresh(t *testing.T) {
	job := confirmedJob(10)
	job.ConsumedHours = 4
	job.BottleneckCount = 2
	job.Subtasks = []domain.Subtask{{ID: 1, ProgressByTechnician: []domain.SubtaskProgress{{TechnicianID: 1, ProgressPercentage: 30}}}}

	Refresh(job)
	assert.Equal(t, 6.0, job.RemainingHours)
	assert.Equal(t, 30.0, job.ProgressPercentage)
	assert.Equal(t, domain.JobAtRisk, job.Status)
}

// 已超支的工单改派给尚未确认的技师后仍然是 over_allocated
func TestReassignedAfterOverrunStaysOverAllocated(t *testing.T) {
	job := confirmedJob(10)
	Apply(job, []*domain.TimeEntry{entry("JOB-001", 7), entry("JOB-001", 6)})
	require.Equal(t, 13.0, job.ConsumedHours)
	require.Equal(t, domain.JobOverAllocated, job.Status)

	job.Technicians[0] = domain.JobTechnician{TechnicianID: 9, TechnicianName: "Li Hua", AllocatedHours: 10}
	Refresh(job)

	assert.Equal(t, 0.0, job.RemainingHours)
	assert.Equal(t, domain.JobOverAllocated, job.Status)
	assert.Equal(t, []*domain.Job{job}, AtRisk([]*domain.Job{job}))
}

func TestEfficiency(t *testing.T) {
	assert.Equal(t, 0.0, Efficiency(40, 0))
	assert.Equal(t, 80.0, Efficiency(40, 50))
	assert.Equal(t, 100.0, Efficiency(40, 20))
	assert.Equal(t, 0.0, Efficiency(-5, 20))
}

func TestUtilization(t *testing.T) {
	assert.Equal(t, 0.0, Utilization(10, 0))
	assert.Equal(t, 50.0, Utilization(7, 14))
	assert.Equal(t, 100.0, Utilization(20, 14))
}
