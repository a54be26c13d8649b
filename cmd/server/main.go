// Package main provides the entry point for the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/datajpa/internal/audit"
	"github.com/festy23/datajpa/internal/config"
	"github.com/festy23/datajpa/internal/database/database"
	"github.com/festy23/datajpa/internal/database/migrate"
	"github.com/festy23/datajpa/internal/health"
	itemModel "github.com/festy23/datajpa/internal/item/model"
	memberModel "github.com/festy23/datajpa/internal/member/model"
	memberRepository "github.com/festy23/datajpa/internal/member/repository"
	memberRouter "github.com/festy23/datajpa/internal/member/router"
	memberService "github.com/festy23/datajpa/internal/member/service"
	"github.com/festy23/datajpa/internal/middleware"
	"github.com/festy23/datajpa/internal/persistence"
	"github.com/festy23/datajpa/internal/persistence/query"
	teamModel "github.com/festy23/datajpa/internal/team/model"
	teamRouter "github.com/festy23/datajpa/internal/team/router"
	"github.com/festy23/datajpa/pkg/logger"
)

// models lists the entities whose tables the server needs.
var models = []any{&teamModel.Team{}, &memberModel.Member{}, &itemModel.Item{}}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}

	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	sugar, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = sugar.Sync() }()

	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, sugar); err != nil {
		sugar.Fatalw("server stopped with error", "error", err)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) error {
	db, err := database.New(logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warnw("failed to close database", "error", err)
		}
	}()

	if err := migrate.Apply(db, models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	registry, err := memberRepository.DefaultRegistry()
	if err != nil {
		return fmt.Errorf("failed to load named queries: %w", err)
	}
	if err := registry.Validate(ctx, db); err != nil {
		return fmt.Errorf("failed to validate named queries: %w", err)
	}

	manager := persistence.NewManager(db, audit.NewStamper(auditorFor(cfg.Audit)), logger)
	router, members := newRouter(cfg, db, manager, registry, logger)

	if cfg.SeedMemberCount > 0 {
		if err := members.Seed(ctx, cfg.SeedMemberCount); err != nil {
			return err
		}
	}

	srv := cfg.Server.HTTPServer(router)

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("starting server", "address", srv.Addr, "driver", db.Dialector.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Infow("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// auditorFor resolves actors from the request header first, then from the
// configured default actor, then as a random UUID per write.
func auditorFor(cfg config.AuditConfig) audit.AuditorAware {
	fallback := audit.RandomAuditor()
	if cfg.DefaultActor != "" {
		fallback = audit.FixedAuditor(cfg.DefaultActor)
	}
	return audit.ContextAuditor(fallback)
}

func newRouter(
	cfg config.Config,
	db *gorm.DB,
	manager *persistence.Manager,
	registry *query.Registry,
	logger *zap.SugaredLogger,
) (*gin.Engine, memberService.Service) {
	r := gin.New()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Actor(cfg.Audit.ActorHeader))

	r.GET("/health", health.New(db, logger).Check)
	teamRouter.RegisterRoutes(r, manager, logger)
	members := memberRouter.RegisterRoutes(r, manager, registry, logger)
	return r, members
}
