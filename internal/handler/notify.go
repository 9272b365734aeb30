package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
)

// publishMail 将邮件放入消息队列。此时数据已经提交，发送失败只记录日志
func (h *Handler) publishMail(msg domain.MailMessage) {
	mailData, err := json.Marshal(msg)
	if err != nil {
		slog.Error("无法序列化邮件", "type", msg.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.Queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         mailData,
		},
	); err != nil {
		slog.Error("无法发送邮件到消息队列", "type", msg.Type, "to", msg.To, "error", err)
	}
}

// isAlertStatus 进入这些状态时需要通知主管
func isAlertStatus(status domain.JobStatus) bool {
	return status == domain.JobAtRisk || status == domain.JobOverAllocated
}

// notifyJobAlert 只在状态刚刚变为告警状态时发送
func (h *Handler) notifyJobAlert(before domain.JobStatus, job *domain.Job) {
	if before == job.Status || !isAlertStatus(job.Status) {
		return
	}

	h.publishMail(domain.MailMessage{
		Type: domain.MailTypeJobAlert,
		To:   h.config.Notify.SupervisorEmail,
		Data: domain.JobAlertMailData{
			JobNumber:          job.JobNumber,
			Description:        job.Description,
			Status:             string(job.Status),
			AllocatedHours:     job.AllocatedHours,
			ConsumedHours:      job.ConsumedHours,
			BottleneckCount:    job.BottleneckCount,
			ProgressPercentage: job.ProgressPercentage,
		},
	})
}

func (h *Handler) notifyArchiveCreated(a *domain.MonthlyArchive) {
	data := domain.ArchiveCreatedMailData{
		MonthYear:             a.MonthYear,
		StartDate:             a.StartDate,
		EndDate:               a.EndDate,
		WorkingDays:           a.WorkingDays,
		TotalHRHours:          a.TotalHRHours,
		TotalProductiveHours:  a.TotalProductiveHours,
		TotalWeightedOvertime: a.TotalWeightedOvertime,
		TechnicianCount:       len(a.TechniciansSummary),
	}

	for _, to := range []string{h.config.Notify.HREmail, h.config.Notify.SupervisorEmail} {
		h.publishMail(domain.MailMessage{
			Type: domain.MailTypeArchiveCreated,
			To:   to,
			Data: data,
		})
	}
}

func (h *Handler) notifyReassignment(job *domain.Job, record *domain.ReassignmentRecord) {
	h.publishMail(domain.MailMessage{
		Type: domain.MailTypeJobReassignment,
		To:   h.config.Notify.SupervisorEmail,
		Data: domain.JobReassignmentMailData{
			JobNumber:          job.JobNumber,
			FromTechnicianName: record.FromTechnicianName,
			ToTechnicianName:   record.ToTechnicianName,
			Reason:             record.Reason,
		},
	})
}
