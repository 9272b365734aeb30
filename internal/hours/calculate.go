package hours

import "time"

type Breakdown struct {
	DayIndex         int     `json:"dayIndex"`
	DayOfWeek        string  `json:"dayOfWeek"`
	TotalWorkedHours float64 `json:"totalWorkedHours"`
	HRHours          float64 `json:"hrHours"`
	ProductiveHours  float64 `json:"productiveHours"`
	OvertimeHours    float64 `json:"overtimeHours"`
	OvertimeRate     float64 `json:"overtimeRate"`
	WeightedOvertime float64 `json:"weightedOvertime"`
}

// Calculate 根据日期和上下班时间计算一条工时记录的各项工时。
// 计薪与加班工时只记在技师当天的第一条记录上，生产工时不受影响
func (p Policy) Calculate(date time.Time, start, end string, firstEntryOfDay bool) (Breakdown, error) {
	minutes, err := WorkedMinutes(start, end)
	if err != nil {
		return Breakdown{}, err
	}

	day := date.Weekday()
	budget := p.Budget(day)
	total := Round2(float64(minutes) / 60)

	payable := min(total, budget.PayrollHours)
	productive := max(0, min(payable-p.LunchDeduction, budget.ProductiveHours))
	overtime := max(0, total-budget.PayrollHours)
	if p.SundayAllOvertime && day == time.Sunday {
		payable = 0
		overtime = total
	}

	rate := OvertimeRate(day)
	b := Breakdown{
		DayIndex:         int(day),
		DayOfWeek:        DayNames[day],
		TotalWorkedHours: total,
		ProductiveHours:  Round2(productive),
		OvertimeRate:     rate,
	}
	if firstEntryOfDay {
		b.HRHours = Round2(payable)
		b.OvertimeHours = Round2(overtime)
		b.WeightedOvertime = Round2(b.OvertimeHours * rate)
	}

	return b, nil
}

// CalculateStrings 与 Calculate 相同，只是日期以 YYYY-MM-DD 字符串传入
func (p Policy) CalculateStrings(date, start, end string, firstEntryOfDay bool) (Breakdown, error) {
	d, err := ParseDate(date)
	if err != nil {
		return Breakdown{}, err
	}
	return p.Calculate(d, start, end, firstEntryOfDay)
}
