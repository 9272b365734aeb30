package domain

import "time"

type TechnicianStatus string

const (
	TechnicianActive   TechnicianStatus = "active"
	TechnicianInactive TechnicianStatus = "inactive"
)

type Technician struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	EmployeeID string           `json:"employeeID"`
	Department string           `json:"department"`
	Status     TechnicianStatus `json:"status"`
	CreatedAt  time.Time        `json:"createdAt"`
	Version    int32            `json:"-"`
}

func (t *Technician) IsActive() bool {
	return t.Status == TechnicianActive
}
