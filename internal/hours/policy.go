package hours

import (
	"fmt"
	"time"
)

// DayBudget 是某一天的标准工时预算
type DayBudget struct {
	PayrollHours    float64 `json:"payrollHours"`    // 计薪工时上限（含午休）
	ProductiveHours float64 `json:"productiveHours"` // 可计入工单的生产工时上限
}

// Policy 是一套命名的工时规则。两套规则并存，由配置显式选择
type Policy struct {
	Name              string
	Budgets           [7]DayBudget // 下标为 time.Weekday，0 为周日
	LunchDeduction    float64
	SundayAllOvertime bool // 周日所有工时都按加班计算，计薪工时为 0
}

const (
	PolicyDayBased = "day_based"
	PolicyFlat     = "flat"
)

var DayBased = Policy{
	Name: PolicyDayBased,
	Budgets: [7]DayBudget{
		time.Sunday:    {PayrollHours: 8, ProductiveHours: 7},
		time.Monday:    {PayrollHours: 8, ProductiveHours: 7},
		time.Tuesday:   {PayrollHours: 8, ProductiveHours: 7},
		time.Wednesday: {PayrollHours: 8, ProductiveHours: 7},
		time.Thursday:  {PayrollHours: 8, ProductiveHours: 7},
		time.Friday:    {PayrollHours: 7, ProductiveHours: 6},
		time.Saturday:  {PayrollHours: 8, ProductiveHours: 7},
	},
	LunchDeduction: 1,
}

var Flat = Policy{
	Name: PolicyFlat,
	Budgets: [7]DayBudget{
		{PayrollHours: 8.5, ProductiveHours: 7.5},
		{PayrollHours: 8.5, ProductiveHours: 7.5},
		{PayrollHours: 8.5, ProductiveHours: 7.5},
		{PayrollHours: 8.5, ProductiveHours: 7.5},
		{PayrollHours: 8.5, ProductiveHours: 7.5},
		{PayrollHours: 8.5, ProductiveHours: 7.5},
		{PayrollHours: 8.5, ProductiveHours: 7.5},
	},
	LunchDeduction:    1,
	SundayAllOvertime: true,
}

func PolicyByName(name string) (Policy, error) {
	switch name {
	case PolicyDayBased:
		return DayBased, nil
	case PolicyFlat:
		return Flat, nil
	default:
		return Policy{}, fmt.Errorf("unknown hours policy %q", name)
	}
}

func (p Policy) Budget(day time.Weekday) DayBudget {
	return p.Budgets[day]
}

// OvertimeRate 周日为 2 倍，其余日期（包括周六）为 1.5 倍
func OvertimeRate(day time.Weekday) float64 {
	if day == time.Sunday {
		return 2
	}
	return 1.5
}

type CapacityPolicy string

const (
	CapacityClamp  CapacityPolicy = "clamp"
	CapacityReject CapacityPolicy = "reject"
	CapacityAllow  CapacityPolicy = "allow"
)

func ParseCapacityPolicy(s string) (CapacityPolicy, error) {
	switch cp := CapacityPolicy(s); cp {
	case CapacityClamp, CapacityReject, CapacityAllow:
		return cp, nil
	default:
		return "", fmt.Errorf("unknown capacity policy %q", s)
	}
}
