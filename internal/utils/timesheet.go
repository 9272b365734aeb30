package utils

import (
	"errors"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/hours"
)

var (
	ErrDailyBudgetExhausted = errors.New("maximum productive hours for this date already logged")
	ErrDuplicateJobEntry    = errors.New("hours already logged for this job on this date")
)

type TimeEntryInput struct {
	Date      string
	StartTime string
	EndTime   string
	Notes     string
}

// BuildTimeEntry 计算一条新的工时记录。dayEntries 是该技师同一天已有的记录，
// job 中的已用工时决定工单剩余容量
func BuildTimeEntry(
	policy hours.Policy,
	cp hours.CapacityPolicy,
	tech *domain.Technician,
	job *domain.Job,
	in TimeEntryInput,
	dayEntries []*domain.TimeEntry,
) (*domain.TimeEntry, hours.Clamped, error) {
	if err := ValidateShift(in.Date, in.StartTime, in.EndTime); err != nil {
		return nil, hours.Clamped{}, err
	}

	date, _ := hours.ParseDate(in.Date)

	logged := 0.0
	for _, e := range dayEntries {
		if e.JobNumber == job.JobNumber {
			return nil, hours.Clamped{}, ErrDuplicateJobEntry
		}
		logged += e.ProductiveHours
	}
	if logged >= policy.Budget(date.Weekday()).ProductiveHours {
		return nil, hours.Clamped{}, ErrDailyBudgetExhausted
	}

	b, err := policy.Calculate(date, in.StartTime, in.EndTime, len(dayEntries) == 0)
	if err != nil {
		return nil, hours.Clamped{}, err
	}

	limits := hours.Limits{
		LoggedProductiveToday: logged,
		JobRemainingHours:     max(job.AllocatedHours-job.ConsumedHours, 0),
	}
	c, err := policy.Clamp(b, limits, cp)
	if err != nil {
		return nil, hours.Clamped{}, err
	}

	entry := &domain.TimeEntry{
		TechnicianID:     tech.ID,
		TechnicianName:   tech.Name,
		Date:             in.Date,
		DayOfWeek:        b.DayOfWeek,
		StartTime:        in.StartTime,
		EndTime:          in.EndTime,
		JobNumber:        job.JobNumber,
		TotalWorkedHours: b.TotalWorkedHours,
		HRHours:          b.HRHours,
		ProductiveHours:  c.ProductiveHours,
		OvertimeHours:    b.OvertimeHours,
		OvertimeRate:     b.OvertimeRate,
		WeightedOvertime: b.WeightedOvertime,
		Notes:            in.Notes,
	}

	return entry, c, nil
}
