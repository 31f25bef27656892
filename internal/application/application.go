package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/psds-microservice/report-service/internal/archive"
	"github.com/psds-microservice/report-service/internal/bot"
	"github.com/psds-microservice/report-service/internal/config"
	"github.com/psds-microservice/report-service/internal/dashboard"
	"github.com/psds-microservice/report-service/internal/database"
	"github.com/psds-microservice/report-service/internal/handler"
	"github.com/psds-microservice/report-service/internal/intake"
	"github.com/psds-microservice/report-service/internal/kafka"
	"github.com/psds-microservice/report-service/internal/relay"
	"github.com/psds-microservice/report-service/internal/router"
	"github.com/psds-microservice/report-service/internal/searchindex"
	"github.com/psds-microservice/report-service/internal/service"
	"github.com/psds-microservice/report-service/internal/transport"
	"github.com/psds-microservice/report-service/internal/transport/telegram"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App — сервис отчётов: HTTP API и, в режиме ботов, клиентский и админский Telegram-боты.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	db      *gorm.DB
	httpSrv *http.Server
	events  *kafka.Producer
	bots    []runner
	onStart []func(ctx context.Context)
}

type runner struct {
	bot     *telegram.Bot
	handler transport.Handler
}

type storage struct {
	db       *gorm.DB
	reports  *service.ReportService
	admins   *service.AdminService
	settings *service.SettingsService
}

func openStorage(cfg *config.Config, log *slog.Logger) (*storage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.DB.Driver == config.DriverPostgres {
		if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return &storage{
		db:       db,
		reports:  service.NewReportService(db, cfg.Intake.ReportIDPrefix),
		admins:   service.NewAdminService(log, db, cfg.Telegram.InitialAdminID, cfg.AdminCacheTTL),
		settings: service.NewSettingsService(db),
	}, nil
}

func ping(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// snapshotOnly отдаёт панель для HTTP без Telegram (режим api).
type snapshotOnly struct{ reports *service.ReportService }

func (s snapshotOnly) Snapshot(ctx context.Context) (dashboard.Snapshot, error) {
	total, err := s.reports.CountAll(ctx)
	if err != nil {
		return dashboard.Snapshot{}, err
	}
	attention, err := s.reports.Attention(ctx)
	if err != nil {
		return dashboard.Snapshot{}, err
	}
	return dashboard.Snapshot{Total: total, Attention: attention}, nil
}

// NewAPI создаёт приложение только с HTTP API (без ботов).
func NewAPI(cfg *config.Config, log *slog.Logger) (*App, error) {
	st, err := openStorage(cfg, log)
	if err != nil {
		return nil, err
	}
	h := router.New(log, handler.NewReportHandler(st.reports, snapshotOnly{st.reports}), ping(st.db))
	return &App{cfg: cfg, log: log, db: st.db, httpSrv: newHTTPServer(cfg, h)}, nil
}

// NewBots создаёт полное приложение: оба бота, панель, диалоги и HTTP API.
func NewBots(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	if err := cfg.ValidateBots(); err != nil {
		return nil, err
	}
	st, err := openStorage(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := st.admins.EnsureInitial(ctx); err != nil {
		return nil, err
	}

	clientBot, err := telegram.New("client", cfg.Telegram.ClientToken, log)
	if err != nil {
		return nil, err
	}
	adminBot, err := telegram.New("admin", cfg.Telegram.AdminToken, log)
	if err != nil {
		return nil, err
	}

	events := kafka.NewProducer(log, cfg.KafkaBrokers, cfg.KafkaTopicReport)
	search := searchindex.NewClient(log, cfg.SearchServiceURL)
	archiver, err := newArchiver(ctx, cfg, clientBot)
	if err != nil {
		return nil, err
	}

	dash := dashboard.New(log, adminBot, st.reports, st.settings, cfg.Telegram.ManagersGroupID, adminBot.Username())
	finalizer := intake.NewFinalizer(log, st.reports, archiver, events, search)
	machine := intake.NewMachine(log, clientBot, finalizer, dash, nil, cfg.Intake.MediaQuietPeriod)
	bridge := relay.NewBridge(log, relay.NewRegistry(), st.reports, machine, dash, clientBot, adminBot,
		relay.WithMenus(intake.NewReportKeyboard(), bot.MainMenu()),
		relay.WithEvents(events),
		relay.WithIndexer(search),
	)
	machine.SetRelay(bridge)

	adminHandler := bot.NewAdminHandler(log, bot.AdminDeps{
		Messenger: adminBot,
		Files:     clientBot,
		Roster:    st.admins,
		Reports:   st.reports,
		Relay:     bridge,
		Dashboard: dash,
		Group:     cfg.Telegram.ManagersGroupID,
		BotName:   adminBot.Username(),
	})

	h := router.New(log, handler.NewReportHandler(st.reports, dash), ping(st.db))
	return &App{
		cfg:     cfg,
		log:     log,
		db:      st.db,
		httpSrv: newHTTPServer(cfg, h),
		events:  events,
		bots: []runner{
			{bot: clientBot, handler: bot.NewClientHandler(log, machine)},
			{bot: adminBot, handler: adminHandler},
		},
		onStart: []func(ctx context.Context){dash.Refresh},
	}, nil
}

func newArchiver(ctx context.Context, cfg *config.Config, files transport.Transport) (intake.Archiver, error) {
	switch cfg.Archive.Backend {
	case config.ArchiveChannel:
		return archive.NewChannel(files, cfg.Telegram.StorageChannelID), nil
	case config.ArchiveS3:
		client, err := archive.NewS3Client(ctx, cfg.Archive.AWSRegion, cfg.Archive.EndpointURL)
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		return archive.NewS3(client, files, cfg.Archive.S3Bucket), nil
	default:
		return archive.Nop{}, nil
	}
}

// Run запускает HTTP сервер и ботов, блокируется до отмены ctx или первой ошибки.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("http server listening", "addr", a.httpSrv.Addr, "swagger", "/swagger", "metrics", "/metrics")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})
	for _, r := range a.bots {
		g.Go(func() error { return r.bot.Run(ctx, r.handler) })
	}
	for _, fn := range a.onStart {
		fn(ctx)
	}

	err := g.Wait()
	a.close()
	return err
}

func (a *App) close() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.log.Warn("kafka close", "error", err)
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	a.log.Info("stopped")
}
