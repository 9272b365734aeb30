package hours

import (
	"fmt"
	"math"
	"time"
)

const (
	MinutesPerDay = 24 * 60
	DateLayout    = "2006-01-02"
	ClockLayout   = "15:04"
)

var DayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// ParseClock 将 HH:MM 转换为当天零点起的分钟数
func ParseClock(s string) (int, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// WorkedMinutes 计算 start 到 end 的分钟数，跨零点时视为同一个夜班
func WorkedMinutes(start, end string) (int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}

	minutes := e - s
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return minutes, nil
}

// Round2 四舍五入保留两位小数
func Round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
