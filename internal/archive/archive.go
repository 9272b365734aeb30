package archive

import (
	"time"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/hours"
)

// Status 是当前归档周期的进度
type Status struct {
	PeriodStart string `json:"periodStart"`
	WorkingDays int    `json:"workingDays"`
	Quota       int    `json:"quota"`
	Due         bool   `json:"due"`
}

// WorkingDays 统计 [anchor, now] 之间（按日历日，包含两端）的周一至周五天数
func WorkingDays(anchor, now time.Time) int {
	start := truncateDay(anchor)
	end := truncateDay(now)

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd >= time.Monday && wd <= time.Friday {
			count++
		}
	}
	return count
}

// Check 判断当前周期是否已满，给定相同的 now 结果不变
func Check(anchor, now time.Time, quota int) Status {
	n := WorkingDays(anchor, now)
	return Status{
		PeriodStart: anchor.Format(hours.DateLayout),
		WorkingDays: n,
		Quota:       quota,
		Due:         n >= quota,
	}
}

// NextAnchor 返回下一个周期的起点：最近一次归档结束日期的后一天，没有归档时使用 fallback
func NextAnchor(latest *domain.MonthlyArchive, fallback time.Time) time.Time {
	if latest == nil {
		return fallback
	}
	end, err := hours.ParseDate(latest.EndDate)
	if err != nil {
		return fallback
	}
	return end.AddDate(0, 0, 1)
}

// Snapshot 汇总周期内全部工时记录，生成月度归档
func Snapshot(technicians []*domain.Technician, entries []*domain.TimeEntry, periodStart, now time.Time, workingDays int) *domain.MonthlyArchive {
	a := &domain.MonthlyArchive{
		MonthYear:          periodStart.Format("January 2006"),
		StartDate:          periodStart.Format(hours.DateLayout),
		EndDate:            now.Format(hours.DateLayout),
		WorkingDays:        int32(workingDays),
		TechniciansSummary: make([]domain.TechnicianArchiveSummary, 0, len(technicians)),
		ArchivedAt:         now,
	}

	byTechnician := make(map[int64]*domain.TechnicianArchiveSummary, len(technicians))
	for _, tech := range technicians {
		a.TechniciansSummary = append(a.TechniciansSummary, domain.TechnicianArchiveSummary{
			TechnicianID:   tech.ID,
			TechnicianName: tech.Name,
		})
	}
	for i := range a.TechniciansSummary {
		byTechnician[a.TechniciansSummary[i].TechnicianID] = &a.TechniciansSummary[i]
	}

	for _, e := range entries {
		a.TotalHRHours += e.HRHours
		a.TotalProductiveHours += e.ProductiveHours
		a.TotalWeightedOvertime += e.WeightedOvertime

		s, ok := byTechnician[e.TechnicianID]
		if !ok {
			continue
		}
		s.HRHours += e.HRHours
		s.ProductiveHours += e.ProductiveHours
		s.WeightedOvertime += e.WeightedOvertime
	}

	a.TotalHRHours = hours.Round2(a.TotalHRHours)
	a.TotalProductiveHours = hours.Round2(a.TotalProductiveHours)
	a.TotalWeightedOvertime = hours.Round2(a.TotalWeightedOvertime)
	for i := range a.TechniciansSummary {
		s := &a.TechniciansSummary[i]
		s.HRHours = hours.Round2(s.HRHours)
		s.ProductiveHours = hours.Round2(s.ProductiveHours)
		s.WeightedOvertime = hours.Round2(s.WeightedOvertime)
	}

	return a
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
