package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/hours"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "成",
}

var departments = []string{"Hydraulics", "Electrical", "Drivetrain", "Rig Assembly", "Field Service"}

var jobDescriptions = []string{
	"Boom hydraulic cylinder overhaul",
	"Drill rig electrical harness replacement",
	"Rock drill service",
	"Loader drivetrain inspection",
	"Compressor rebuild",
	"Cabin refit",
}

var subtaskNames = []string{"Strip down", "Inspection", "Parts replacement", "Reassembly", "Testing"}

var digits = "0123456789"

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

// RomanizeChineseName 将中文姓名转成拼音，例如 "王小明" -> "Wang Xiaoming"
func RomanizeChineseName(chineseName string) string {
	syllables := pinyin.LazyConvert(chineseName, nil)
	if len(syllables) == 0 {
		return chineseName
	}

	capitalize := func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	}

	surname := capitalize(syllables[0])
	if len(syllables) == 1 {
		return surname
	}
	return surname + " " + capitalize(strings.Join(syllables[1:], ""))
}

func GenerateRandomDigits(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = digits[rand.Intn(len(digits))]
	}
	return string(b)
}

func GenerateRandomTechnician() *domain.Technician {
	return &domain.Technician{
		Name:       RomanizeChineseName(GenerateRandomChineseName()),
		EmployeeID: "E" + GenerateRandomDigits(5),
		Department: departments[rand.Intn(len(departments))],
		Status:     domain.TechnicianActive,
	}
}

// GenerateRandomJob 随机生成一个工单，从 technicians 中挑选一到三名技师
func GenerateRandomJob(technicians []*domain.Technician) *domain.Job {
	allocated := float64(rand.Intn(9)+1) * 8
	start := time.Now().AddDate(0, 0, -rand.Intn(10)).Format(hours.DateLayout)
	target := time.Now().AddDate(0, 0, rand.Intn(30)+5).Format(hours.DateLayout)

	job := &domain.Job{
		JobNumber:            "JOB-" + GenerateRandomDigits(6),
		Description:          jobDescriptions[rand.Intn(len(jobDescriptions))],
		AllocatedHours:       allocated,
		RemainingHours:       allocated,
		Status:               domain.JobPendingConfirmation,
		StartDate:            &start,
		TargetCompletionDate: &target,
		AssignmentKind:       domain.AssignmentSingle,
		Technicians:          make([]domain.JobTechnician, 0),
		Subtasks:             make([]domain.Subtask, 0),
	}

	n := 1
	if len(technicians) > 1 && rand.Intn(3) == 0 {
		n = min(len(technicians), rand.Intn(2)+2)
		job.AssignmentKind = domain.AssignmentMulti
	}

	for _, i := range rand.Perm(len(technicians))[:min(n, len(technicians))] {
		job.Technicians = append(job.Technicians, domain.JobTechnician{
			TechnicianID:   technicians[i].ID,
			TechnicianName: technicians[i].Name,
			AllocatedHours: hours.Round2(allocated / float64(n)),
		})
	}

	if rand.Intn(2) == 0 {
		for _, name := range subtaskNames[:rand.Intn(len(subtaskNames))+1] {
			job.Subtasks = append(job.Subtasks, domain.Subtask{
				Name:           name,
				AllocatedHours: hours.Round2(allocated / float64(len(subtaskNames))),
			})
		}
	}

	return job
}

// GenerateRandomShift 生成一个早上 06:00-08:59 开始、下午 15:00-17:59 结束的班次
func GenerateRandomShift() (string, string) {
	start := fmt.Sprintf("%02d:%02d", rand.Intn(3)+6, rand.Intn(4)*15)
	end := fmt.Sprintf("%02d:%02d", rand.Intn(3)+15, rand.Intn(4)*15)
	return start, end
}

// RecentWeekdays 返回 now 之前（不含 now）的 n 个周一至周五日期
func RecentWeekdays(now time.Time, n int) []string {
	days := make([]string, 0, n)
	for d := now.AddDate(0, 0, -1); len(days) < n; d = d.AddDate(0, 0, -1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, d.Format(hours.DateLayout))
		}
	}
	return days
}
