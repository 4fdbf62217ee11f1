package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/parking-console/internal/config"
	"github.com/iliyamo/parking-console/internal/console"
	"github.com/iliyamo/parking-console/internal/database"
	"github.com/iliyamo/parking-console/internal/handler"
	"github.com/iliyamo/parking-console/internal/logger"
	"github.com/iliyamo/parking-console/internal/middleware"
	"github.com/iliyamo/parking-console/internal/model"
	"github.com/iliyamo/parking-console/internal/procedure"
	"github.com/iliyamo/parking-console/internal/queue"
	"github.com/iliyamo/parking-console/internal/repository"
	"github.com/iliyamo/parking-console/internal/router"
	"github.com/iliyamo/parking-console/internal/store"
	"github.com/iliyamo/parking-console/internal/view"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.InitLogger(cfg.LogLevel)

	db, err := database.Open(database.Settings{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		PingTimeout: cfg.DBTimeout,
	})
	if err != nil {
		log.WithErr(err).Fatal("database unavailable")
	}
	defer db.Close()

	gw := store.NewGateway(db, log)
	if cfg.ProcedureMode == config.ProcedureModeInline {
		procedure.NewService(procedure.Rates{
			model.UserStudent: model.Rupees(cfg.RatePerHourStudent),
			model.UserFaculty: model.Rupees(cfg.RatePerHourFaculty),
			model.UserStaff:   model.Rupees(cfg.RatePerHourStaff),
		}).Register(gw)
	}
	log.WithField("mode", cfg.ProcedureMode).Info("reservation procedures")
	if ignored := cfg.IgnoredRateVars(); len(ignored) > 0 {
		log.WithField("vars", ignored).Warn("billing rates come from sp_ReleaseReservation in database mode; these variables are ignored")
	}

	deps := console.Deps{
		Spaces:       repository.NewSpaceRepo(gw),
		Users:        repository.NewUserRepo(gw),
		Reservations: repository.NewReservationRepo(gw),
		Payments:     repository.NewPaymentRepo(gw),
		Log:          log,
	}
	if cfg.AuditEnabled {
		deps.Audit = queue.NewPublisher(cfg.AMQPURL, log)
	}

	renderer, err := view.New()
	if err != nil {
		log.WithErr(err).Fatal("templates")
	}
	if !cfg.AuthEnabled() {
		log.WithOperator(cfg.Operator).Warn("CONSOLE_PASSWORD_HASH is empty; sign-in disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), config.NewRedisClient(), log)
	session := middleware.SessionAuth(cfg.JWTSecret, cfg.AuthEnabled(), cfg.Operator)

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, log), limiter)
	router.RegisterConsole(e, handler.NewConsoleHandler(console.New(deps)), session, limiter)

	addr := ":" + cfg.Port
	go func() {
		log.WithField("addr", addr).WithField("env", cfg.Env).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithErr(err).Fatal("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithErr(err).Warn("shutdown")
	}
}
