package utils

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/hours"
)

// ValidateShift 检查日期与上下班时间格式，并拒绝开始时间等于结束时间的班次
func ValidateShift(date, startTime, endTime string) error {
	if _, err := hours.ParseDate(date); err != nil {
		return err
	}

	minutes, err := hours.WorkedMinutes(startTime, endTime)
	if err != nil {
		return err
	}

	if minutes == 0 {
		return hours.ErrZeroLengthShift
	}

	return nil
}

// ValidateJobDates 检查开始日期不晚于目标完成日期
func ValidateJobDates(startDate, targetDate *string) error {
	var start, target string
	if startDate != nil {
		if _, err := hours.ParseDate(*startDate); err != nil {
			return err
		}
		start = *startDate
	}
	if targetDate != nil {
		if _, err := hours.ParseDate(*targetDate); err != nil {
			return err
		}
		target = *targetDate
	}

	// YYYY-MM-DD 可以直接按字符串比较
	if start != "" && target != "" && start > target {
		return errors.New("start date cannot be after the target completion date")
	}

	return nil
}

// ValidateAssignment 检查分配形态：single 有且仅有一名技师，multi 至少一名，且不能重复
func ValidateAssignment(kind domain.AssignmentKind, technicians []domain.JobTechnician) error {
	switch kind {
	case domain.AssignmentSingle:
		if len(technicians) != 1 {
			return errors.New("a single assignment needs exactly one technician")
		}
	case domain.AssignmentMulti:
		if len(technicians) == 0 {
			return errors.New("a multi assignment needs at least one technician")
		}
	default:
		return fmt.Errorf("unknown assignment kind %q", kind)
	}

	seen := make(map[int64]bool)
	for _, t := range technicians {
		if seen[t.TechnicianID] {
			return fmt.Errorf("technician %d is assigned more than once", t.TechnicianID)
		}
		seen[t.TechnicianID] = true

		if t.AllocatedHours < 0 {
			return fmt.Errorf("allocated hours of technician %d cannot be negative", t.TechnicianID)
		}
	}

	return nil
}

// ValidateJobReport 上报瓶颈时必须给出分类
func ValidateJobReport(report *domain.JobReport) error {
	if !report.HasBottleneck {
		return nil
	}

	if report.BottleneckCategory == nil {
		return errors.New("bottleneck category is required when a bottleneck is reported")
	}

	switch *report.BottleneckCategory {
	case domain.BottleneckWaitingForParts,
		domain.BottleneckEquipmentFailure,
		domain.BottleneckTechnicalComplexity,
		domain.BottleneckExternalDependency,
		domain.BottleneckOther:
		return nil
	default:
		return fmt.Errorf("unknown bottleneck category %q", *report.BottleneckCategory)
	}
}
