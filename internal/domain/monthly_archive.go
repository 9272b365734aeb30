package domain

import "time"

type TechnicianArchiveSummary struct {
	TechnicianID     int64   `json:"technicianID"`
	TechnicianName   string  `json:"technicianName"`
	HRHours          float64 `json:"hrHours"`
	ProductiveHours  float64 `json:"productiveHours"`
	WeightedOvertime float64 `json:"weightedOvertime"`
}

type MonthlyArchive struct {
	ID                    int64                      `json:"id"`
	MonthYear             string                     `json:"monthYear"`
	StartDate             string                     `json:"startDate"`
	EndDate               string                     `json:"endDate"`
	WorkingDays           int32                      `json:"workingDays"`
	TotalHRHours          float64                    `json:"totalHRHours"`
	TotalProductiveHours  float64                    `json:"totalProductiveHours"`
	TotalWeightedOvertime float64                    `json:"totalWeightedOvertime"`
	TechniciansSummary    []TechnicianArchiveSummary `json:"techniciansSummary"`
	ArchivedAt            time.Time                  `json:"archivedAt"`
}
