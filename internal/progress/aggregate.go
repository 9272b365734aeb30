package progress

import (
	"time"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/hours"
)

// 一个工单累计上报两次及以上瓶颈即视为有风险
const AtRiskBottleneckCount = 2

type Summary struct {
	ConsumedHours      float64 `json:"consumedHours"`
	RemainingHours     float64 `json:"remainingHours"`
	ProgressPercentage float64 `json:"progressPercentage"`
	OverAllocated      bool    `json:"overAllocated"`
}

// Aggregate 根据工单的工时记录与子任务计算已用工时、剩余工时和进度
func Aggregate(jobNumber string, allocated float64, entries []*domain.TimeEntry, subtasks []domain.Subtask) Summary {
	consumed := 0.0
	for _, e := range entries {
		if e.JobNumber == jobNumber {
			consumed += e.ProductiveHours
		}
	}
	consumed = hours.Round2(consumed)

	s := Summary{
		ConsumedHours:  consumed,
		RemainingHours: hours.Round2(max(allocated-consumed, 0)),
		OverAllocated:  consumed > allocated,
	}

	switch {
	case len(subtasks) > 0:
		s.ProgressPercentage = SubtasksProgress(subtasks)
	case allocated > 0:
		s.ProgressPercentage = hours.Round2(min(100, consumed/allocated*100))
	}

	return s
}

// SubtaskProgress 是各技师在该子任务上进度的平均值
func SubtaskProgress(st domain.Subtask) float64 {
	if len(st.ProgressByTechnician) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range st.ProgressByTechnician {
		sum += clampPercent(p.ProgressPercentage)
	}
	return sum / float64(len(st.ProgressByTechnician))
}

// SubtasksProgress 按子任务分配工时加权平均，全部为 0 时等权
func SubtasksProgress(subtasks []domain.Subtask) float64 {
	if len(subtasks) == 0 {
		return 0
	}

	totalWeight := 0.0
	for _, st := range subtasks {
		totalWeight += max(st.AllocatedHours, 0)
	}

	weighted := 0.0
	for _, st := range subtasks {
		w := 1.0
		if totalWeight > 0 {
			w = max(st.AllocatedHours, 0)
		}
		weighted += w * SubtaskProgress(st)
	}

	if totalWeight == 0 {
		totalWeight = float64(len(subtasks))
	}
	return hours.Round2(weighted / totalWeight)
}

// DeriveStatus 根据工时消耗、确认情况和瓶颈次数推导工单状态，completed 为终态
func DeriveStatus(job *domain.Job) domain.JobStatus {
	switch {
	case job.Status == domain.JobCompleted:
		return domain.JobCompleted
	case job.ConsumedHours > job.AllocatedHours:
		// 超出分配工时优先于待确认，改派后也必须保持可见
		return domain.JobOverAllocated
	case !job.HasConfirmedTechnician():
		return domain.JobPendingConfirmation
	case job.BottleneckCount >= AtRiskBottleneckCount:
		return domain.JobAtRisk
	case job.ConsumedHours > 0:
		return domain.JobInProgress
	default:
		return domain.JobActive
	}
}

// Apply 将汇总结果写回工单并重新推导状态
func Apply(job *domain.Job, entries []*domain.TimeEntry) Summary {
	s := Aggregate(job.JobNumber, job.AllocatedHours, entries, job.Subtasks)
	job.ConsumedHours = s.ConsumedHours
	job.RemainingHours = s.RemainingHours
	if job.Status != domain.JobCompleted {
		job.ProgressPercentage = s.ProgressPercentage
	}
	job.Status = DeriveStatus(job)
	return s
}

// Refresh 在不重新读取工时记录的情况下（例如子任务进度或瓶颈变化后）刷新进度与状态
func Refresh(job *domain.Job) {
	job.RemainingHours = hours.Round2(max(job.AllocatedHours-job.ConsumedHours, 0))
	if job.Status != domain.JobCompleted {
		switch {
		case len(job.Subtasks) > 0:
			job.ProgressPercentage = SubtasksProgress(job.Subtasks)
		case job.AllocatedHours > 0:
			job.ProgressPercentage = hours.Round2(min(100, job.ConsumedHours/job.AllocatedHours*100))
		default:
			job.ProgressPercentage = 0
		}
	}
	job.Status = DeriveStatus(job)
}

// Complete 标记工单完成，固定实际使用工时
func Complete(job *domain.Job, now time.Time) {
	completionDate := now.Format(hours.DateLayout)
	job.Status = domain.JobCompleted
	job.TotalHoursUtilized = job.ConsumedHours
	job.ProgressPercentage = 100
	job.ActualCompletionDate = &completionDate
}

// Efficiency = 分配工时 / 实际使用工时 × 100，限制在 [0, 100]
func Efficiency(allocated, utilized float64) float64 {
	if utilized <= 0 {
		return 0
	}
	return hours.Round2(clampPercent(allocated / utilized * 100))
}

// Utilization = 生产工时 / 可用生产工时 × 100，限制在 [0, 100]
func Utilization(productive, available float64) float64 {
	if available <= 0 {
		return 0
	}
	return hours.Round2(clampPercent(productive / available * 100))
}

func clampPercent(x float64) float64 {
	return max(0, min(100, x))
}
