package hours

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-02-02 是周一
func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestDayBasedBudgets(t *testing.T) {
	for _, day := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday} {
		assert.Equal(t, DayBudget{PayrollHours: 8, ProductiveHours: 7}, DayBased.Budget(day), day.String())
	}
	assert.Equal(t, DayBudget{PayrollHours: 7, ProductiveHours: 6}, DayBased.Budget(time.Friday))
	assert.Equal(t, DayBudget{PayrollHours: 8, ProductiveHours: 7}, DayBased.Budget(time.Saturday))
	assert.Equal(t, DayBudget{PayrollHours: 8, ProductiveHours: 7}, DayBased.Budget(time.Sunday))
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name     string
		policy   Policy
		date     string
		start    string
		end      string
		first    bool
		expected Breakdown
	}{
		{
			name:   "monday full day with overtime",
			policy: DayBased,
			date:   "2026-02-02",
			start:  "08:00",
			end:    "17:00",
			first:  true,
			expected: Breakdown{
				DayIndex: 1, DayOfWeek: "Monday", TotalWorkedHours: 9, HRHours: 8, ProductiveHours: 7,
				OvertimeHours: 1, OvertimeRate: 1.5, WeightedOvertime: 1.5,
			},
		},
		{
			name:   "friday shorter budget",
			policy: DayBased,
			date:   "2026-02-06",
			start:  "07:00",
			end:    "16:30",
			first:  true,
			expected: Breakdown{
				DayIndex: 5, DayOfWeek: "Friday", TotalWorkedHours: 9.5, HRHours: 7, ProductiveHours: 6,
				OvertimeHours: 2.5, OvertimeRate: 1.5, WeightedOvertime: 3.75,
			},
		},
		{
			name:   "sunday follows the day table",
			policy: DayBased,
			date:   "2026-02-08",
			start:  "08:00",
			end:    "14:00",
			first:  true,
			expected: Breakdown{
				DayIndex: 0, DayOfWeek: "Sunday", TotalWorkedHours: 6, HRHours: 6, ProductiveHours: 5,
				OvertimeHours: 0, OvertimeRate: 2, WeightedOvertime: 0,
			},
		},
		{
			name:   "sunday all overtime under flat policy",
			policy: Flat,
			date:   "2026-02-08",
			start:  "08:00",
			end:    "14:00",
			first:  true,
			expected: Breakdown{
				DayIndex: 0, DayOfWeek: "Sunday", TotalWorkedHours: 6, HRHours: 0, ProductiveHours: 5,
				OvertimeHours: 6, OvertimeRate: 2, WeightedOvertime: 12,
			},
		},
		{
			name:   "flat weekday",
			policy: Flat,
			date:   "2026-02-04",
			start:  "07:30",
			end:    "17:00",
			first:  true,
			expected: Breakdown{
				DayIndex: 3, DayOfWeek: "Wednesday", TotalWorkedHours: 9.5, HRHours: 8.5, ProductiveHours: 7.5,
				OvertimeHours: 1, OvertimeRate: 1.5, WeightedOvertime: 1.5,
			},
		},
		{
			name:   "overnight shift wraps past midnight",
			policy: DayBased,
			date:   "2026-02-03",
			start:  "22:00",
			end:    "06:00",
			first:  true,
			expected: Breakdown{
				DayIndex: 2, DayOfWeek: "Tuesday", TotalWorkedHours: 8, HRHours: 8, ProductiveHours: 7,
				OvertimeHours: 0, OvertimeRate: 1.5, WeightedOvertime: 0,
			},
		},
		{
			name:   "subsequent entry carries no payroll fields",
			policy: DayBased,
			date:   "2026-02-02",
			start:  "13:00",
			end:    "17:00",
			first:  false,
			expected: Breakdown{
				DayIndex: 1, DayOfWeek: "Monday", TotalWorkedHours: 4, HRHours: 0, ProductiveHours: 3,
				OvertimeHours: 0, OvertimeRate: 1.5, WeightedOvertime: 0,
			},
		},
		{
			name:   "zero length shift is zero hours",
			policy: DayBased,
			date:   "2026-02-02",
			start:  "08:00",
			end:    "08:00",
			first:  true,
			expected: Breakdown{
				DayIndex: 1, DayOfWeek: "Monday", OvertimeRate: 1.5,
			},
		},
		{
			name:   "saturday rate",
			policy: DayBased,
			date:   "2026-02-07",
			start:  "06:00",
			end:    "16:30",
			first:  true,
			expected: Breakdown{
				DayIndex: 6, DayOfWeek: "Saturday", TotalWorkedHours: 10.5, HRHours: 8, ProductiveHours: 7,
				OvertimeHours: 2.5, OvertimeRate: 1.5, WeightedOvertime: 3.75,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.policy.Calculate(date(t, tt.date), tt.start, tt.end, tt.first)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	d := date(t, "2026-02-05")
	first, err := DayBased.Calculate(d, "06:45", "18:10", true)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := DayBased.Calculate(d, "06:45", "18:10", true)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestWeightedOvertimeMatchesRate(t *testing.T) {
	starts := []string{"05:00", "06:15", "07:40", "20:00"}
	for offset := 0; offset < 7; offset++ {
		d := date(t, "2026-02-01").AddDate(0, 0, offset)
		for _, start := range starts {
			b, err := DayBased.Calculate(d, start, "19:05", true)
			require.NoError(t, err)

			if d.Weekday() == time.Sunday {
				assert.Equal(t, 2.0, b.OvertimeRate)
			} else {
				assert.Equal(t, 1.5, b.OvertimeRate)
			}
			assert.Equal(t, Round2(b.OvertimeHours*b.OvertimeRate), b.WeightedOvertime)
			assert.GreaterOrEqual(t, b.TotalWorkedHours, 0.0)
			assert.Less(t, b.TotalWorkedHours, 24.0)
		}
	}
}

func TestCalculateInvalidTime(t *testing.T) {
	d := date(t, "2026-02-02")

	_, err := DayBased.Calculate(d, "8am", "17:00", true)
	assert.ErrorIs(t, err, ErrInvalidTime)

	_, err = DayBased.Calculate(d, "08:00", "25:00", true)
	assert.ErrorIs(t, err, ErrInvalidTime)

	_, err = DayBased.CalculateStrings("02/02/2026", "08:00", "17:00", true)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("flat")
	require.NoError(t, err)
	assert.Equal(t, Flat, p)

	p, err = PolicyByName("day_based")
	require.NoError(t, err)
	assert.Equal(t, DayBased, p)

	_, err = PolicyByName("weekly")
	assert.Error(t, err)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.33, Round2(20.0/60))
	assert.Equal(t, 0.67, Round2(40.0/60))
	assert.Equal(t, 3.75, Round2(2.5*1.5))
	assert.Equal(t, 0.0, Round2(0))
}
