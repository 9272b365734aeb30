package progress

import (
	"strings"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/hours"
)

type PerformanceCategory string

const (
	PerformanceExcellent        PerformanceCategory = "excellent"
	PerformanceGood             PerformanceCategory = "good"
	PerformanceAverage          PerformanceCategory = "average"
	PerformanceNeedsImprovement PerformanceCategory = "needs_improvement"
)

func CategoryFor(efficiency float64) PerformanceCategory {
	switch {
	case efficiency >= 95:
		return PerformanceExcellent
	case efficiency >= 85:
		return PerformanceGood
	case efficiency >= 70:
		return PerformanceAverage
	default:
		return PerformanceNeedsImprovement
	}
}

type TechnicianPerformance struct {
	TechnicianID        int64               `json:"technicianID"`
	TechnicianName      string              `json:"technicianName"`
	EmployeeID          string              `json:"employeeID"`
	CompletedJobs       int                 `json:"completedJobs"`
	ActiveJobs          int                 `json:"activeJobs"`
	JobsWithBottlenecks int                 `json:"jobsWithBottlenecks"`
	AllocatedHours      float64             `json:"allocatedHours"`
	ProductiveHours     float64             `json:"productiveHours"`
	HRHours             float64             `json:"hrHours"`
	HoursUtilized       float64             `json:"hoursUtilized"`
	JobEfficiency       float64             `json:"jobEfficiency"`
	Utilization         float64             `json:"utilization"`
	Performance         PerformanceCategory `json:"performance"`
}

// Performance 计算每个技师的绩效指标。month 形如 2026-02，为空表示不过滤
func Performance(technicians []*domain.Technician, jobs []*domain.Job, entries []*domain.TimeEntry, month string, policy hours.Policy) []TechnicianPerformance {
	result := make([]TechnicianPerformance, 0, len(technicians))

	for _, tech := range technicians {
		p := TechnicianPerformance{
			TechnicianID:   tech.ID,
			TechnicianName: tech.Name,
			EmployeeID:     tech.EmployeeID,
		}

		for _, job := range jobs {
			if !job.IsAssignedTo(tech.ID) {
				continue
			}
			switch job.Status {
			case domain.JobCompleted:
				p.CompletedJobs++
				p.AllocatedHours += job.AllocatedHours
				utilized := job.TotalHoursUtilized
				if utilized == 0 {
					utilized = job.ConsumedHours
				}
				p.HoursUtilized += utilized
			case domain.JobActive, domain.JobInProgress:
				p.ActiveJobs++
			}
			if job.BottleneckCount > 0 {
				p.JobsWithBottlenecks++
			}
		}

		// 可用生产工时只统计有计薪工时的日期
		payrollDays := make(map[string]bool)
		for _, e := range entries {
			if e.TechnicianID != tech.ID || (month != "" && !strings.HasPrefix(e.Date, month)) {
				continue
			}
			p.ProductiveHours += e.ProductiveHours
			p.HRHours += e.HRHours
			if e.HRHours > 0 {
				payrollDays[e.Date] = true
			}
		}

		available := 0.0
		for date := range payrollDays {
			d, err := hours.ParseDate(date)
			if err != nil {
				continue
			}
			available += policy.Budget(d.Weekday()).ProductiveHours
		}

		p.AllocatedHours = hours.Round2(p.AllocatedHours)
		p.ProductiveHours = hours.Round2(p.ProductiveHours)
		p.HRHours = hours.Round2(p.HRHours)
		p.HoursUtilized = hours.Round2(p.HoursUtilized)
		p.JobEfficiency = Efficiency(p.AllocatedHours, p.HoursUtilized)
		p.Utilization = Utilization(p.ProductiveHours, available)
		p.Performance = CategoryFor(p.JobEfficiency)

		result = append(result, p)
	}

	return result
}

// AtRisk 返回有风险、超分配或瓶颈次数达到阈值的未完成工单
func AtRisk(jobs []*domain.Job) []*domain.Job {
	result := make([]*domain.Job, 0)
	for _, job := range jobs {
		if job.IsCompleted() {
			continue
		}
		if job.Status == domain.JobAtRisk || job.Status == domain.JobOverAllocated || job.BottleneckCount >= AtRiskBottleneckCount {
			result = append(result, job)
		}
	}
	return result
}
