package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"notesbot/internal/bot"
	"notesbot/internal/config"
	"notesbot/internal/logger"
	"notesbot/internal/repository"
	"notesbot/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync(zlog)

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("open database", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	categorySvc := service.NewCategoryService(categoryRepo)
	noteSvc := service.NewNoteService(noteRepo, categoryRepo)
	reminderSvc := service.NewReminderService(reminderRepo, zlog)
	digestSvc := service.NewDigestService(reminderRepo, noteRepo)

	loc := cfg.Location()

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, reminderSvc, noteSvc, categorySvc, digestSvc, loc, zlog)
	if err != nil {
		zlog.Fatal("create bot", zap.Error(err))
	}

	dispatcher := service.NewReminderDispatcher(reminderRepo, telegramBot, cfg.PollInterval, zlog)
	go func() {
		if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zlog.Error("dispatcher stopped", zap.Error(err))
		}
	}()

	if cfg.DigestTime != "" {
		scheduler := service.NewSchedulerService(loc)
		if _, err := scheduler.ScheduleDaily(cfg.DigestTime, func() {
			if err := telegramBot.SendDailyDigests(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zlog.Error("daily digest", zap.Error(err))
			}
		}); err != nil {
			zlog.Fatal("schedule digest", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	zlog.Info("notes bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zlog.Fatal("bot stopped", zap.Error(err))
	}
	zlog.Info("shutdown complete")
}
