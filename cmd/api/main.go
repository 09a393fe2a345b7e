package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/Zachary2562/recordables-ticketquest/internal/api/http"
	"github.com/Zachary2562/recordables-ticketquest/internal/api/http/handlers"
	"github.com/Zachary2562/recordables-ticketquest/internal/auth"
	"github.com/Zachary2562/recordables-ticketquest/internal/config"
	"github.com/Zachary2562/recordables-ticketquest/internal/events"
	"github.com/Zachary2562/recordables-ticketquest/internal/observability"
	"github.com/Zachary2562/recordables-ticketquest/internal/persistence"
	"github.com/Zachary2562/recordables-ticketquest/internal/repository"
	"github.com/Zachary2562/recordables-ticketquest/internal/service"
	"github.com/Zachary2562/recordables-ticketquest/internal/storage"
	"github.com/Zachary2562/recordables-ticketquest/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	transactor := persistence.NewTransactor(pool)

	ticketRepo := repository.NewTicketRepository(pool)
	postRepo := repository.NewPostRepository(pool)
	uploadRepo := repository.NewUploadRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool)
	actionRepo := repository.NewActionRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	groupRepo := repository.NewGroupRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	priorityRepo := repository.NewPriorityRepository(pool)
	statusRepo := repository.NewStatusRepository(pool)

	attachments, err := storage.NewDiskStore(cfg.Helpdesk.UploadDir, cfg.Helpdesk.AllowedExtensions)
	if err != nil {
		logger.Fatal("failed to prepare upload storage", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	prefs := service.NewSortPreferences(redis.Client)
	queryService := service.NewTicketQueryService(ticketRepo, postRepo, prefs, cfg.Helpdesk)
	exportService := service.NewExportService(queryService, cfg.Helpdesk, logger)
	attachmentService := service.NewAttachmentService(uploadRepo, attachments)

	replyDeps := service.ReplyDependencies{
		TicketRepo:       ticketRepo,
		PostRepo:         postRepo,
		UploadRepo:       uploadRepo,
		SubscriptionRepo: subscriptionRepo,
		ActionRepo:       actionRepo,
		UserRepo:         userRepo,
		StatusRepo:       statusRepo,
		PriorityRepo:     priorityRepo,
		Attachments:      attachments,
		Transactor:       transactor,
		Dispatcher:       dispatcher,
	}
	replyService := service.NewReplyService(replyDeps, cfg.Helpdesk)
	commandService := service.NewTicketCommandService(replyDeps, categoryRepo, cfg.Helpdesk)
	adminService := service.NewAdminService(ticketRepo, departmentRepo, categoryRepo, priorityRepo, statusRepo)
	userService := service.NewUserService(userRepo, groupRepo)
	authService := service.NewAuthService(cfg.Auth, userRepo)

	var transport service.MailTransport = service.NewLoggingMailTransport(cfg.Mail, logger)
	notificationService := service.NewNotificationService(subscriptionRepo, userRepo, transport, logger)
	worker.StartNotificationWorker(notificationService, dispatcher)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	rateLimiter := httptransport.NewRateLimiter(cfg.App.RateLimitPerSecond, cfg.App.RateLimitBurst)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(queryService, replyService, commandService, exportService, attachmentService),
		Users:          handlers.NewUsersHandler(authService, userService),
		Admin:          handlers.NewAdminHandler(adminService, userService),
		AuthMiddleware: authMiddleware,
		RateLimiter:    rateLimiter,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
