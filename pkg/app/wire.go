package app

import (
	"fmt"
	"log/slog"

	"github.com/flemzord/bacbot/internal/config"
	"github.com/flemzord/bacbot/internal/core"
	"github.com/flemzord/bacbot/internal/cron"
	"github.com/flemzord/bacbot/internal/gateway"
	"github.com/flemzord/bacbot/internal/predict"
	"github.com/flemzord/bacbot/internal/relay"
	"github.com/flemzord/bacbot/modules/channel/telegram"
	"github.com/flemzord/bacbot/modules/store/sqlite"
)

// Bot is the assembled application.
type Bot struct {
	App       *core.App
	Engine    *predict.Engine
	Relay     *relay.Relay
	Telegram  *telegram.Telegram
	Scheduler *cron.Scheduler
	Gateway   *gateway.Gateway
	Metrics   *gateway.Metrics
}

// Build constructs every module and adds them to a core.App in start
// order: store, relay, telegram, cron, gateway. Stopping runs in reverse,
// so polling ends before the relay drains its inbox and the store closes
// last.
func Build(cfg *config.Config, logger *slog.Logger) (*Bot, error) {
	appCtx := core.NewAppContext(logger, cfg)
	application := core.NewApp(appCtx)
	metrics := gateway.NewMetrics()

	var (
		store    predict.Store
		checkers []gateway.HealthChecker
	)
	if cfg.Persistent() {
		db := sqlite.New("")
		if err := application.Add(db); err != nil {
			return nil, err
		}
		store = db.Store()
		checkers = append(checkers, db)
	} else {
		logger.Warn("predictions are kept in memory only", "data_dir", cfg.DataDir)
		store = predict.NewMemoryStore()
	}

	engine := predict.NewEngine(store, predict.Config{
		Offset:   cfg.PredictionOffset,
		Attempts: cfg.PredictionAttempts,
	})

	tg := telegram.New()
	rl, err := relay.New(relay.Config{
		Engine:         engine,
		Sender:         tg,
		SourceChats:    cfg.SourceChannels(),
		PredictionChat: cfg.PredictionChannelID.Int64(),
		AdminID:        cfg.AdminID,
		PendingTTL:     cfg.PendingTTL,
		Recorder:       metrics,
		Logger:         logger.With("module", string(relay.ModuleID)),
	})
	if err != nil {
		application.Abort()
		return nil, err
	}
	tg.SetInbox(rl.Submit)
	checkers = append(checkers, tg)

	scheduler, err := newScheduler(cfg, logger, rl, store)
	if err != nil {
		application.Abort()
		return nil, err
	}

	gw := gateway.New(metrics, checkers...)

	if err := application.Add(rl, tg, scheduler, gw); err != nil {
		return nil, err
	}

	return &Bot{
		App:       application,
		Engine:    engine,
		Relay:     rl,
		Telegram:  tg,
		Scheduler: scheduler,
		Gateway:   gw,
		Metrics:   metrics,
	}, nil
}

func newScheduler(cfg *config.Config, logger *slog.Logger, rl *relay.Relay, store predict.Store) (*cron.Scheduler, error) {
	jobLogger := logger.With("module", string(cron.ModuleID))
	s := cron.NewScheduler(jobLogger)

	jobs := []cron.Job{
		&cron.ExpirePendingJob{Expirer: rl, Logger: jobLogger},
		&cron.PruneHistoryJob{Store: store, Retention: cfg.Retention, Logger: jobLogger},
	}
	if cfg.AdminID != 0 {
		jobs = append(jobs, &cron.DailyReportJob{
			Reporter:     rl,
			Logger:       jobLogger,
			ScheduleExpr: cfg.ReportSchedule,
		})
	}
	for _, j := range jobs {
		if err := s.RegisterJob(j); err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}
	return s, nil
}
