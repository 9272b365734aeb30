package domain

import (
	"slices"
	"time"
)

type JobStatus string

const (
	JobPendingConfirmation JobStatus = "pending_confirmation"
	JobActive              JobStatus = "active"
	JobInProgress          JobStatus = "in_progress"
	JobAtRisk              JobStatus = "at_risk"
	JobOverAllocated       JobStatus = "over_allocated"
	JobCompleted           JobStatus = "completed"
)

// AssignmentKind 标识 Technicians 的形态：single 时有且仅有一名技师，multi 时可以有多名
type AssignmentKind string

const (
	AssignmentSingle AssignmentKind = "single"
	AssignmentMulti  AssignmentKind = "multi"
)

type JobTechnician struct {
	TechnicianID   int64      `json:"technicianID"`
	TechnicianName string     `json:"technicianName"`
	AllocatedHours float64    `json:"allocatedHours"`
	Confirmed      bool       `json:"confirmed"`
	ConfirmedAt    *time.Time `json:"confirmedAt"`
}

type SubtaskProgress struct {
	TechnicianID       int64   `json:"technicianID"`
	ProgressPercentage float64 `json:"progressPercentage"`
}

type Subtask struct {
	ID                   int64             `json:"id"`
	Name                 string            `json:"name"`
	AllocatedHours       float64           `json:"allocatedHours"`
	ProgressByTechnician []SubtaskProgress `json:"progressByTechnician"`
}

type ReassignmentRecord struct {
	FromTechnicianID   int64     `json:"fromTechnicianID"`
	FromTechnicianName string    `json:"fromTechnicianName"`
	ToTechnicianID     int64     `json:"toTechnicianID"`
	ToTechnicianName   string    `json:"toTechnicianName"`
	Reason             string    `json:"reason"`
	ReassignedAt       time.Time `json:"reassignedAt"`
}

type Job struct {
	ID                   int64                `json:"id"`
	JobNumber            string               `json:"jobNumber"`
	Description          string               `json:"description"`
	AllocatedHours       float64              `json:"allocatedHours"`
	ConsumedHours        float64              `json:"consumedHours"`
	RemainingHours       float64              `json:"remainingHours"`
	ProgressPercentage   float64              `json:"progressPercentage"`
	Status               JobStatus            `json:"status"`
	BottleneckCount      int32                `json:"bottleneckCount"`
	StartDate            *string              `json:"startDate"`
	TargetCompletionDate *string              `json:"targetCompletionDate"`
	ActualCompletionDate *string              `json:"actualCompletionDate"`
	TotalHoursUtilized   float64              `json:"totalHoursUtilized"`
	AssignmentKind       AssignmentKind       `json:"assignmentKind"`
	Technicians          []JobTechnician      `json:"technicians"`
	Subtasks             []Subtask            `json:"subtasks"`
	ReassignmentHistory  []ReassignmentRecord `json:"reassignmentHistory"`
	CreatedAt            time.Time            `json:"createdAt"`
	Version              int32                `json:"-"`
}

// Assignment 返回某个技师在该工单上的分配记录，不存在时返回 nil
func (j *Job) Assignment(technicianID int64) *JobTechnician {
	for i := range j.Technicians {
		if j.Technicians[i].TechnicianID == technicianID {
			return &j.Technicians[i]
		}
	}
	return nil
}

func (j *Job) TechnicianIDs() []int64 {
	ids := make([]int64, 0, len(j.Technicians))
	for _, t := range j.Technicians {
		ids = append(ids, t.TechnicianID)
	}
	return ids
}

func (j *Job) IsAssignedTo(technicianID int64) bool {
	return slices.Contains(j.TechnicianIDs(), technicianID)
}

func (j *Job) HasConfirmedTechnician() bool {
	for _, t := range j.Technicians {
		if t.Confirmed {
			return true
		}
	}
	return false
}

func (j *Job) IsCompleted() bool {
	return j.Status == JobCompleted
}

func (j *Job) Subtask(id int64) *Subtask {
	for i := range j.Subtasks {
		if j.Subtasks[i].ID == id {
			return &j.Subtasks[i]
		}
	}
	return nil
}
