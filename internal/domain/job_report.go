package domain

import "time"

type BottleneckCategory string

const (
	BottleneckWaitingForParts     BottleneckCategory = "waiting_for_parts"
	BottleneckEquipmentFailure    BottleneckCategory = "equipment_failure"
	BottleneckTechnicalComplexity BottleneckCategory = "technical_complexity"
	BottleneckExternalDependency  BottleneckCategory = "external_dependency"
	BottleneckOther               BottleneckCategory = "other"
)

type JobReport struct {
	ID                    int64               `json:"id"`
	JobNumber             string              `json:"jobNumber"`
	TechnicianID          int64               `json:"technicianID"`
	TechnicianName        string              `json:"technicianName"`
	Date                  string              `json:"date"`
	WorkCompleted         string              `json:"workCompleted"`
	HasBottleneck         bool                `json:"hasBottleneck"`
	BottleneckCategory    *BottleneckCategory `json:"bottleneckCategory"`
	BottleneckDescription *string             `json:"bottleneckDescription"`
	CreatedAt             time.Time           `json:"createdAt"`
}
