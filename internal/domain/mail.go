package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

const (
	MailTypeJobAlert        = "job_alert"
	MailTypeArchiveCreated  = "archive_created"
	MailTypeJobReassignment = "job_reassignment"
)

type JobAlertMailData struct {
	JobNumber          string  `json:"jobNumber"`
	Description        string  `json:"description"`
	Status             string  `json:"status"`
	AllocatedHours     float64 `json:"allocatedHours"`
	ConsumedHours      float64 `json:"consumedHours"`
	BottleneckCount    int32   `json:"bottleneckCount"`
	ProgressPercentage float64 `json:"progressPercentage"`
}

type ArchiveCreatedMailData struct {
	MonthYear             string  `json:"monthYear"`
	StartDate             string  `json:"startDate"`
	EndDate               string  `json:"endDate"`
	WorkingDays           int32   `json:"workingDays"`
	TotalHRHours          float64 `json:"totalHRHours"`
	TotalProductiveHours  float64 `json:"totalProductiveHours"`
	TotalWeightedOvertime float64 `json:"totalWeightedOvertime"`
	TechnicianCount       int     `json:"technicianCount"`
}

type JobReassignmentMailData struct {
	JobNumber          string `json:"jobNumber"`
	FromTechnicianName string `json:"fromTechnicianName"`
	ToTechnicianName   string `json:"toTechnicianName"`
	Reason             string `json:"reason"`
}
