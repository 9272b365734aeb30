package domain

import "time"

type TimeEntry struct {
	ID               int64     `json:"id"`
	TechnicianID     int64     `json:"technicianID"`
	TechnicianName   string    `json:"technicianName"`
	Date             string    `json:"date"`
	DayOfWeek        string    `json:"dayOfWeek"`
	StartTime        string    `json:"startTime"`
	EndTime          string    `json:"endTime"`
	JobNumber        string    `json:"jobNumber"`
	TotalWorkedHours float64   `json:"totalWorkedHours"`
	HRHours          float64   `json:"hrHours"`
	ProductiveHours  float64   `json:"productiveHours"`
	OvertimeHours    float64   `json:"overtimeHours"`
	OvertimeRate     float64   `json:"overtimeRate"`
	WeightedOvertime float64   `json:"weightedOvertime"`
	Notes            string    `json:"notes"`
	CreatedAt        time.Time `json:"createdAt"`
}
