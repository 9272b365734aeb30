package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/export"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/hours"
)

func (h *Handler) exportFilename(prefix, ext string) string {
	return prefix + "-" + h.now().Format(hours.DateLayout) + "." + ext
}

func setAttachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

// writeCSV 头部写出后无法再返回 JSON 错误，只能记录日志
func (h *Handler) writeCSV(w http.ResponseWriter, r *http.Request, filename string, t export.Table) {
	setAttachment(w, "text/csv; charset=utf-8", filename)
	w.WriteHeader(http.StatusOK)

	if err := export.WriteCSV(w, t); err != nil {
		slog.Error("无法写入 CSV", "path", r.URL.Path, "error", err)
	}
}

// writeWorkbook 先在内存中生成完整的工作簿，失败时仍可以返回 JSON 错误
func (h *Handler) writeWorkbook(w http.ResponseWriter, r *http.Request, filename string, sheets []export.Sheet) {
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, sheets); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	setAttachment(w, export.XLSXContentType, filename)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("无法写入工作簿", "path", r.URL.Path, "error", err)
	}
}

func (h *Handler) loadPayrollData() ([]*domain.Technician, []*domain.TimeEntry, error) {
	technicians, err := h.repository.GetAllTechnicians()
	if err != nil {
		return nil, nil, err
	}
	entries, err := h.repository.GetAllTimeEntries()
	if err != nil {
		return nil, nil, err
	}
	return technicians, entries, nil
}

func (h *Handler) ExportTimesheet(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repository.GetAllTimeEntries()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeCSV(w, r, h.exportFilename("timesheet", "csv"), export.TimesheetTable(entries))
}

func (h *Handler) ExportTimesheetWorkbook(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repository.GetAllTimeEntries()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeWorkbook(w, r, h.exportFilename("timesheet", "xlsx"), export.TimesheetWorkbook(entries))
}

func (h *Handler) ExportPayroll(w http.ResponseWriter, r *http.Request) {
	technicians, entries, err := h.loadPayrollData()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeCSV(w, r, h.exportFilename("payroll", "csv"), export.PayrollTable(technicians, entries))
}

// ExportPayrollWorkbook 人事工资报表，包含考勤明细、技师汇总与月度汇总三个工作表
func (h *Handler) ExportPayrollWorkbook(w http.ResponseWriter, r *http.Request) {
	technicians, entries, err := h.loadPayrollData()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeWorkbook(w, r, h.exportFilename("hr-payroll", "xlsx"), export.HRWorkbook(technicians, entries))
}
