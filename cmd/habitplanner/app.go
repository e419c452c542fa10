package main

import (
	"fmt"
	"log/slog"
	"os"

	"gorm.io/gorm"

	"habit-planner/internal/bizday"
	"habit-planner/internal/config"
	"habit-planner/internal/logging"
	"habit-planner/internal/repository"
	"habit-planner/internal/service"
)

// app wires configuration, storage and services for every subcommand.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *gorm.DB
	clock    *bizday.Resolver
	backlog  *service.BacklogService
	daily    *service.DailyService
	routines *service.RoutineService
	sprints  *service.SprintService
	digest   *service.DigestService
}

func newApp(path string) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	store := repository.NewStore(db)
	clock := bizday.NewResolver(nil)
	backlog := service.NewBacklogService(store, clock, logger)
	daily := service.NewDailyService(store, clock, backlog, logger)
	sprints := service.NewSprintService(store, clock, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		clock:    clock,
		backlog:  backlog,
		daily:    daily,
		routines: service.NewRoutineService(store, clock, logger),
		sprints:  sprints,
		digest:   service.NewDigestService(store, clock, daily, sprints),
	}, nil
}

func (a *app) Close() {
	sqlDB, err := a.db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		a.logger.Warn("close db", "err", err)
	}
}
