package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/asventura96/testcenter/internal/config"
	"github.com/asventura96/testcenter/internal/database"
	"github.com/asventura96/testcenter/internal/handler"
	"github.com/asventura96/testcenter/internal/logger"
	"github.com/asventura96/testcenter/internal/middleware"
	"github.com/asventura96/testcenter/internal/repository"
	"github.com/asventura96/testcenter/internal/service"
	"github.com/asventura96/testcenter/internal/utils"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "testcenter",
	Short:         "Certification test center back office",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()

		var err error
		log, err = logger.New(cfg.Log.Level, cfg.IsDevelopment())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations, seed the admin account and start the HTTP API",
	RunE:  runServe,
}

// @title           Test Center API
// @version         1.0
// @description     Back office API of a certification test center: certifiers, certifications, clients, test centers and exams.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, loadDataCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// database
	db, err := database.Connect(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, cfg.App.MigrationsPath, log); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := database.NewSeeder(db, log).SeedAdminUser(ctx); err != nil {
		log.Warn("seed failed", zap.Error(err))
	}

	// optional backends
	examDeps := service.ExamServiceDeps{
		Exams:          repository.NewExamRepository(db),
		Certifications: repository.NewCertificationRepository(db),
		TestCenters:    repository.NewTestCenterRepository(db),
		Clients:        repository.NewClientRepository(db),
	}
	if cfg.MinIO.Enabled {
		storage, err := utils.NewStorageService(ctx, &cfg.MinIO)
		if err != nil {
			return fmt.Errorf("failed to connect to MinIO: %w", err)
		}
		examDeps.Store = storage
		log.Info("ticket archive enabled", zap.String("bucket", cfg.MinIO.Bucket))
	}

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.App.TrustedProxies)
	if err != nil {
		return err
	}

	var loginLimiter middleware.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, login attempts will not be limited until it recovers", zap.Error(err))
		}
		loginLimiter = middleware.NewRedisLimiter(rdb, "login:", cfg.Redis.LoginLimit, cfg.Redis.LoginWindow)
	}

	// services
	certifierRepo := repository.NewCertifierRepository(db)

	authService := service.NewAuthService(repository.NewUserRepository(db), &cfg.JWT)
	certifierService := service.NewCertifierService(certifierRepo)
	certificationService := service.NewCertificationService(examDeps.Certifications, certifierRepo, log)
	clientService := service.NewClientService(examDeps.Clients)
	testCenterService := service.NewTestCenterService(examDeps.TestCenters)
	examService := service.NewExamService(examDeps, &cfg.App, log)

	registry := service.NewDeleteRegistry(certifierService, certificationService, clientService, testCenterService, examService)

	// http
	router := handler.NewRouter(handler.Handlers{
		Auth:          handler.NewAuthHandler(authService, log),
		Certifier:     handler.NewCertifierHandler(certifierService, log),
		Certification: handler.NewCertificationHandler(certificationService, log),
		Client:        handler.NewClientHandler(clientService, log),
		TestCenter:    handler.NewTestCenterHandler(testCenterService, log),
		Exam:          handler.NewExamHandler(examService, log),
		Record:        handler.NewRecordHandler(registry, log),
	}, cfg.JWT.Secret, loginLimiter, trustedProxies, log)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", zap.String("port", cfg.App.Port), zap.String("env", cfg.App.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
