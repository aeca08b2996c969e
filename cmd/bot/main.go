package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Spok95/lms-bot/internal/apiclient"
	"github.com/Spok95/lms-bot/internal/app"
	"github.com/Spok95/lms-bot/internal/config"
	"github.com/Spok95/lms-bot/internal/db"
	"github.com/Spok95/lms-bot/internal/jobs"
	"github.com/Spok95/lms-bot/internal/lms"
	"github.com/Spok95/lms-bot/internal/logging"
	"github.com/Spok95/lms-bot/internal/observability"
	"github.com/Spok95/lms-bot/internal/redisstore"
	"github.com/Spok95/lms-bot/internal/session"
)

var release = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer lg.Closer()
	logger := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, release)
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := apiclient.New(apiclient.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Logger:  logger.Named("api"),
	}, nil)

	var (
		database *sql.DB
		rdb      *redis.Client
		stores   session.StoreFactory
		chats    func(ctx context.Context) ([]int64, error)
		reminded jobs.ReminderLog
	)
	switch cfg.SessionBackend {
	case config.BackendPostgres:
		database, err = db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db connect failed", zap.Error(err))
		}
		defer func() { _ = database.Close() }()
		if err := db.Migrate(ctx, database); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
		stores = db.SessionStores(database)
		chats = func(ctx context.Context) ([]int64, error) { return db.SessionChats(ctx, database) }
		reminded = jobs.DBReminderLog(database)
	case config.BackendRedis:
		rdb, err = redisstore.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Fatal("redis connect failed", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		stores = redisstore.Stores(rdb, cfg.SessionTTL)
		chats = func(ctx context.Context) ([]int64, error) { return redisstore.Chats(ctx, rdb) }
		reminded = redisstore.NewReminderLog(rdb, jobs.ReminderRetention)
	default:
		logger.Warn("sessions are kept in memory and will not survive a restart")
		stores = session.MemoryStores()
	}
	sessions := session.NewManager(api, stores, logger.Named("session"))

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("telegram init failed", zap.Error(err))
	}
	bot.Debug = cfg.Env != "prod"
	logger.Info("bot started", zap.String("username", bot.Self.UserName), zap.String("backend", cfg.SessionBackend))

	a := app.New(app.Options{
		Bot:      bot,
		Sessions: sessions,
		Location: cfg.Location,
		Logger:   logger,
	})

	app.StartHTTP(ctx, cfg.HTTPAddr, database, lms.New(api).Admin, logger)

	runner := jobs.New(ctx, logger.Named("jobs"))
	if reminded != nil {
		reminders := &jobs.DeadlineReminders{
			Sessions: sessions,
			Chats:    chats,
			Reminded: reminded,
			Bot:      bot,
			Observe:  a.Observe,
			Location: cfg.Location,
			Logger:   logger.Named("reminders"),
		}
		runner.Every(cfg.ReminderInterval, "deadline_reminders", reminders.Run)
	} else {
		logger.Info("deadline reminders disabled: sessions are not persisted")
	}
	// в redis отметки истекают сами
	if database != nil {
		runner.Every(24*time.Hour, "prune_reminders", jobs.PruneReminders(database, logger))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		bot.StopReceivingUpdates()
	}()

	a.Run(ctx, updates)
	logger.Info("shutdown complete")
}
