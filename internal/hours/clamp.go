package hours

import "fmt"

// Limits 是提交时已知的剩余容量
type Limits struct {
	LoggedProductiveToday float64 // 技师当天已记录的生产工时
	JobRemainingHours     float64 // 工单剩余分配工时
}

type Clamped struct {
	ProductiveHours float64  `json:"productiveHours"`
	DailyClamped    bool     `json:"dailyClamped"`
	JobClamped      bool     `json:"jobClamped"`
	Warnings        []string `json:"warnings"`
}

// Clamp 将生产工时限制在当天剩余预算与工单剩余工时之内。
// 当天预算在任何策略下都只截断不报错；cp 只决定超出工单剩余工时时的处理方式
func (p Policy) Clamp(b Breakdown, limits Limits, cp CapacityPolicy) (Clamped, error) {
	budget := p.Budgets[b.DayIndex]
	dailyRemaining := max(0, budget.ProductiveHours-limits.LoggedProductiveToday)

	c := Clamped{
		ProductiveHours: min(b.ProductiveHours, b.TotalWorkedHours),
		Warnings:        []string{},
	}

	if c.ProductiveHours > dailyRemaining {
		c.ProductiveHours = dailyRemaining
		c.DailyClamped = true
		c.Warnings = append(c.Warnings, fmt.Sprintf("productive hours limited to the %.2fh left for the day", dailyRemaining))
	}

	jobRemaining := max(0, limits.JobRemainingHours)
	if c.ProductiveHours > jobRemaining {
		switch cp {
		case CapacityReject:
			return Clamped{}, fmt.Errorf("%w: job has only %.2fh remaining", ErrCapacityExceeded, jobRemaining)
		case CapacityClamp:
			c.ProductiveHours = jobRemaining
			c.JobClamped = true
			c.Warnings = append(c.Warnings, fmt.Sprintf("productive hours limited to the %.2fh remaining on the job", jobRemaining))
		case CapacityAllow:
			c.Warnings = append(c.Warnings, fmt.Sprintf("job has only %.2fh remaining, supervisor approval required", jobRemaining))
		}
	}

	c.ProductiveHours = Round2(c.ProductiveHours)
	return c, nil
}
