package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/config"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/hours"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	policy        hours.Policy
	capacity      hours.CapacityPolicy
	archiveAnchor time.Time
	now           func() time.Time

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	// 工时规则在启动时确定，运行期间不可更改
	policy, err := hours.PolicyByName(cfg.Hours.Policy)
	if err != nil {
		return nil, err
	}
	capacity, err := hours.ParseCapacityPolicy(cfg.Hours.CapacityPolicy)
	if err != nil {
		return nil, err
	}
	anchor, err := hours.ParseDate(cfg.Archive.AnchorDate)
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		policy:        policy,
		capacity:      capacity,
		archiveAnchor: anchor,
		now:           time.Now,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	supervisorOnly := h.RequiredRole([]domain.Role{domain.RoleSupervisor})
	technicianOnly := h.RequiredRole([]domain.Role{domain.RoleTechnician})

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/technician/login", h.TechnicianLogin)
		r.Post("/supervisor/login", h.SupervisorLogin)
		r.With(h.auth).Post("/logout", h.Logout)
		r.With(h.auth).Get("/me", h.GetMe)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/technicians", func(r chi.Router) {
			r.Get("/", h.GetAllTechnicians)
			r.With(supervisorOnly).Post("/", h.CreateTechnician)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.technicianInfo)
				r.Get("/", h.GetTechnician)
				r.With(supervisorOnly).Patch("/", h.UpdateTechnician)
				r.With(supervisorOnly).Delete("/", h.DeleteTechnician)
			})
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", h.GetAllJobs)
			r.With(supervisorOnly).Post("/", h.CreateJob)
			r.With(supervisorOnly).Get("/at-risk", h.GetAtRiskJobs)
			r.Route("/{jobNumber}", func(r chi.Router) {
				r.Use(h.jobInfo)
				r.Use(h.jobAccess)
				r.Get("/", h.GetJob)
				r.With(supervisorOnly).Patch("/", h.UpdateJob)
				r.With(supervisorOnly).Delete("/", h.DeleteJob)
				r.With(technicianOnly, h.currentTechnician).Post("/confirm", h.ConfirmJob)
				r.Post("/complete", h.CompleteJob)
				r.With(supervisorOnly).Post("/reassign", h.ReassignJob)
				r.With(supervisorOnly).Post("/technicians", h.AddJobTechnician)
				r.With(supervisorOnly).Post("/subtasks", h.CreateSubtask)
				r.With(technicianOnly).Put("/subtasks/{subtaskID}/progress", h.UpdateSubtaskProgress)
			})
		})

		r.Route("/time-entries", func(r chi.Router) {
			r.Post("/preview", h.PreviewTimeEntry)
			r.With(technicianOnly, h.currentTechnician).Post("/", h.SubmitTimeEntry)
			r.Get("/", h.GetTimeEntries)
			r.With(supervisorOnly).Delete("/{id}", h.DeleteTimeEntry)
		})

		r.With(supervisorOnly).Get("/job-reports", h.GetAllJobReports)

		r.Route("/archives", func(r chi.Router) {
			r.Use(supervisorOnly)
			r.Get("/status", h.GetArchiveStatus)
			r.Get("/", h.GetAllArchives)
			r.Post("/", h.CreateArchive)
		})

		r.With(supervisorOnly).Get("/reports/performance", h.GetPerformanceReport)

		r.Route("/exports", func(r chi.Router) {
			r.Use(supervisorOnly)
			r.Get("/timesheet.csv", h.ExportTimesheet)
			r.Get("/timesheet.xlsx", h.ExportTimesheetWorkbook)
			r.Get("/payroll.csv", h.ExportPayroll)
			r.Get("/payroll.xlsx", h.ExportPayrollWorkbook)
		})
	})
}
