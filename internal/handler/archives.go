package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/archive"
)

// currentPeriodStart 上一次归档的结束日期的次日，没有归档时使用配置中的起始日期
func (h *Handler) currentPeriodStart() (time.Time, error) {
	latest, err := h.repository.GetLatestArchive()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return h.archiveAnchor, nil
		}
		return time.Time{}, err
	}
	return archive.NextAnchor(latest, h.archiveAnchor), nil
}

func (h *Handler) GetArchiveStatus(w http.ResponseWriter, r *http.Request) {
	anchor, err := h.currentPeriodStart()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "archive status retrieved", archive.Check(anchor, h.now(), h.config.Archive.WorkingDays))
}

func (h *Handler) GetAllArchives(w http.ResponseWriter, r *http.Request) {
	archives, err := h.repository.GetAllArchives()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "archives retrieved", archives)
}

// CreateArchive 生成月度归档并清空当期的工时记录与工作报告。
// 周期未满时需要 force=true
func (h *Handler) CreateArchive(w http.ResponseWriter, r *http.Request) {
	anchor, err := h.currentPeriodStart()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	now := h.now()
	status := archive.Check(anchor, now, h.config.Archive.WorkingDays)
	if !status.Due && r.URL.Query().Get("force") != "true" {
		h.errorResponse(w, r, "period not complete")
		return
	}

	technicians, err := h.repository.GetAllTechnicians()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	entries, err := h.repository.GetAllTimeEntries()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	a := archive.Snapshot(technicians, entries, anchor, now, status.WorkingDays)
	if err := h.repository.CreateArchive(a); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.notifyArchiveCreated(a)

	h.successResponse(w, r, "archive created", a)
}
