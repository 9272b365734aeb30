package seed

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"unicode"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/repository"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/utils"
)

// 花名册的表头，部门可以为空
const (
	HeaderName       = "姓名"
	HeaderEmployeeID = "工号"
	HeaderDepartment = "部门"
)

func hasHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// ParseRoster 读取花名册，中文姓名会转换为拼音，因为技师登录时使用拼音姓名
func ParseRoster(reader io.Reader) ([]*domain.Technician, error) {
	cr := csv.NewReader(reader)
	cr.TrimLeadingSpace = true

	headers, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimPrefix(strings.TrimSpace(headers[i]), "\ufeff")
	}
	for _, required := range []string{HeaderName, HeaderEmployeeID} {
		if !slices.Contains(headers, required) {
			return nil, fmt.Errorf("没有找到列 %s", required)
		}
	}

	technicians := make([]*domain.Technician, 0)
	for {
		row, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		record := make(map[string]string)
		for i, value := range row {
			record[headers[i]] = strings.TrimSpace(value)
		}

		name := record[HeaderName]
		employeeID := record[HeaderEmployeeID]
		if name == "" || employeeID == "" {
			slog.Warn("跳过不完整的记录", "record", record)
			continue
		}
		if hasHan(name) {
			name = utils.RomanizeChineseName(name)
		}

		technicians = append(technicians, &domain.Technician{
			Name:       name,
			EmployeeID: employeeID,
			Department: record[HeaderDepartment],
			Status:     domain.TechnicianActive,
		})
	}

	return technicians, nil
}

// SeedRoster 导入花名册，工号已存在的技师会被跳过
func SeedRoster(r *repository.Repository, path string) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("打开文件失败", "path", path, "error", err)
		return
	}
	defer file.Close()

	technicians, err := ParseRoster(file)
	if err != nil {
		slog.Error("解析花名册失败", "error", err)
		return
	}

	inserted := 0
	for _, tech := range technicians {
		_, err := r.GetTechnicianByEmployeeID(tech.EmployeeID)
		switch {
		case err == nil:
			slog.Info("技师已存在，跳过", "employeeID", tech.EmployeeID)
			continue
		case !errors.Is(err, sql.ErrNoRows):
			slog.Error("获取技师失败", "employeeID", tech.EmployeeID, "error", err)
			continue
		}

		if err := r.CreateTechnician(tech); err != nil {
			slog.Error("插入技师失败", "employeeID", tech.EmployeeID, "error", err)
			continue
		}
		inserted++
	}

	slog.Info("导入花名册完成", "total", len(technicians), "inserted", inserted)
}
