package hours

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampDailyBudget(t *testing.T) {
	d := date(t, "2026-02-02")
	logged := 0.0

	shifts := [][2]string{{"06:00", "11:00"}, {"11:00", "15:00"}, {"15:00", "19:00"}}
	for i, s := range shifts {
		b, err := DayBased.Calculate(d, s[0], s[1], i == 0)
		require.NoError(t, err)

		c, err := DayBased.Clamp(b, Limits{LoggedProductiveToday: logged, JobRemainingHours: 100}, CapacityClamp)
		require.NoError(t, err)

		logged += c.ProductiveHours
		assert.LessOrEqual(t, logged, 7.0)
	}

	assert.Equal(t, 7.0, logged)
}

func TestClampDailyBudgetExhausted(t *testing.T) {
	b, err := DayBased.CalculateStrings("2026-02-06", "08:00", "17:00", false)
	require.NoError(t, err)

	c, err := DayBased.Clamp(b, Limits{LoggedProductiveToday: 6, JobRemainingHours: 10}, CapacityClamp)
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.ProductiveHours)
	assert.True(t, c.DailyClamped)
	assert.Len(t, c.Warnings, 1)
}

func TestClampNeverExceedsWorkedHours(t *testing.T) {
	p := DayBased
	p.LunchDeduction = 0

	b, err := p.CalculateStrings("2026-02-02", "08:00", "10:30", true)
	require.NoError(t, err)

	c, err := p.Clamp(b, Limits{JobRemainingHours: 40}, CapacityClamp)
	require.NoError(t, err)
	assert.Equal(t, 2.5, c.ProductiveHours)
	assert.False(t, c.DailyClamped)
}

// 工单分配 40 小时，依次提交 25 小时与 20 小时
func TestClampJobAllocation(t *testing.T) {
	wide := Policy{Name: "wide", LunchDeduction: 0}
	for i := range wide.Budgets {
		wide.Budgets[i] = DayBudget{PayrollHours: 25, ProductiveHours: 25}
	}

	first := Breakdown{DayIndex: 1, TotalWorkedHours: 25, ProductiveHours: 25}
	second := Breakdown{DayIndex: 2, TotalWorkedHours: 20, ProductiveHours: 20}

	tests := []struct {
		name       string
		cp         CapacityPolicy
		wantSecond float64
		wantErr    bool
		jobClamped bool
	}{
		{name: "clamp", cp: CapacityClamp, wantSecond: 15, jobClamped: true},
		{name: "allow", cp: CapacityAllow, wantSecond: 20},
		{name: "reject", cp: CapacityReject, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allocated := 40.0

			c1, err := wide.Clamp(first, Limits{JobRemainingHours: allocated}, tt.cp)
			require.NoError(t, err)
			consumed := c1.ProductiveHours

			c2, err := wide.Clamp(second, Limits{JobRemainingHours: allocated - consumed}, tt.cp)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrCapacityExceeded)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantSecond, c2.ProductiveHours)
			assert.Equal(t, tt.jobClamped, c2.JobClamped)
			if tt.cp == CapacityClamp {
				assert.LessOrEqual(t, consumed+c2.ProductiveHours, allocated)
			}
		})
	}
}

// 当天预算与容量策略无关，reject 下同样截断
func TestClampDailyBudgetUnderEveryPolicy(t *testing.T) {
	b, err := DayBased.CalculateStrings("2026-02-02", "08:00", "17:00", false)
	require.NoError(t, err)

	for _, cp := range []CapacityPolicy{CapacityClamp, CapacityReject, CapacityAllow} {
		t.Run(string(cp), func(t *testing.T) {
			c, err := DayBased.Clamp(b, Limits{LoggedProductiveToday: 5, JobRemainingHours: 40}, cp)
			require.NoError(t, err)
			assert.Equal(t, 2.0, c.ProductiveHours)
			assert.True(t, c.DailyClamped)
			assert.False(t, c.JobClamped)
		})
	}
}

func TestClampRejectStillAppliesToJob(t *testing.T) {
	b, err := DayBased.CalculateStrings("2026-02-02", "08:00", "17:00", true)
	require.NoError(t, err)

	// 当天截断到 2 小时后仍超出工单剩余的 1 小时
	_, err = DayBased.Clamp(b, Limits{LoggedProductiveToday: 5, JobRemainingHours: 1}, CapacityReject)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestParseCapacityPolicy(t *testing.T) {
	for _, s := range []string{"clamp", "reject", "allow"} {
		cp, err := ParseCapacityPolicy(s)
		require.NoError(t, err)
		assert.Equal(t, CapacityPolicy(s), cp)
	}

	_, err := ParseCapacityPolicy("ignore")
	assert.Error(t, err)
}
