package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/config"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/hours"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/progress"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/repository"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/seed"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var days int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机技师, 2: 插入随机工单, 3: 为已有工单插入随机工时记录, 4: 导入花名册)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.IntVar(&days, "days", 5, "随机工时记录覆盖最近多少个工作日")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的技师数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			if err := repo.CreateTechnician(utils.GenerateRandomTechnician()); err != nil {
				slog.Error("无法插入技师", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("插入技师成功", slog.Int("count", cnt))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的工单数量")
			return
		}

		technicians, err := repo.GetAllTechnicians()
		if err != nil {
			slog.Error("无法获取技师", slog.String("error", err.Error()))
			return
		}
		active := make([]*domain.Technician, 0, len(technicians))
		for _, t := range technicians {
			if t.IsActive() {
				active = append(active, t)
			}
		}
		if len(active) == 0 {
			slog.Error("没有在职的技师，请先执行 op=1 或 op=4")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			job := utils.GenerateRandomJob(active)
			progress.Refresh(job)
			if err := repo.CreateJob(job); err != nil {
				slog.Error("无法插入工单", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("插入工单成功", slog.Int("count", cnt))
	case 3:
		if days <= 0 {
			slog.Error("请输入合法的天数")
			return
		}
		seedTimeEntries(cfg, repo, days)
	case 4:
		seed.SeedRoster(repo, cfg.Seed.RosterPath)
	default:
		slog.Error("指定的操作非法")
	}
}

// seedTimeEntries 为每个未完成的工单自动确认分配并在最近几个工作日内随机记录工时，
// 与 api 使用同一套计算与截断规则
func seedTimeEntries(cfg *config.Config, repo *repository.Repository, days int) {
	policy, err := hours.PolicyByName(cfg.Hours.Policy)
	if err != nil {
		slog.Error("工时规则配置错误", slog.String("error", err.Error()))
		return
	}
	capacity, err := hours.ParseCapacityPolicy(cfg.Hours.CapacityPolicy)
	if err != nil {
		slog.Error("工时规则配置错误", slog.String("error", err.Error()))
		return
	}

	jobs, err := repo.GetAllJobs()
	if err != nil {
		slog.Error("无法获取工单", slog.String("error", err.Error()))
		return
	}

	now := time.Now()
	dates := utils.RecentWeekdays(now, days)
	cnt := 0

	for _, job := range jobs {
		if job.IsCompleted() {
			continue
		}

		for i := range job.Technicians {
			jt := &job.Technicians[i]
			if !jt.Confirmed {
				jt.Confirmed = true
				jt.ConfirmedAt = &now
				progress.Refresh(job)
				if err := repo.ConfirmJobAssignment(job, jt.TechnicianID, now); err != nil {
					slog.Error("无法确认工单", slog.String("job", job.JobNumber), slog.String("error", err.Error()))
					continue
				}
			}

			tech, err := repo.GetTechnicianByID(jt.TechnicianID)
			if err != nil {
				slog.Error("无法获取技师", slog.Int64("technician_id", jt.TechnicianID), slog.String("error", err.Error()))
				continue
			}

			for _, date := range dates {
				dayEntries, err := repo.GetTimeEntriesByTechnicianAndDate(tech.ID, date)
				if err != nil {
					slog.Error("无法获取工时记录", slog.String("error", err.Error()))
					continue
				}

				start, end := utils.GenerateRandomShift()
				entry, _, err := utils.BuildTimeEntry(policy, capacity, tech, job, utils.TimeEntryInput{
					Date:      date,
					StartTime: start,
					EndTime:   end,
				}, dayEntries)
				if err != nil {
					slog.Debug("跳过工时记录", slog.String("job", job.JobNumber), slog.String("date", date), slog.String("reason", err.Error()))
					continue
				}

				jobEntries, err := repo.GetTimeEntriesByJobNumber(job.JobNumber)
				if err != nil {
					slog.Error("无法获取工时记录", slog.String("error", err.Error()))
					continue
				}
				progress.Apply(job, append(jobEntries, entry))

				if err := repo.SubmitTimeEntry(entry, nil, job); err != nil {
					slog.Error("无法插入工时记录", slog.String("error", err.Error()))
					continue
				}
				cnt++
			}
		}
	}

	slog.Info("插入工时记录成功", slog.Int("count", cnt))
}
