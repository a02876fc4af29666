package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"carfixer/backend/internal/auth"
	"carfixer/backend/internal/config"
	"carfixer/backend/internal/domain"
	"carfixer/backend/internal/jobs"
	"carfixer/backend/internal/notify"
	"carfixer/backend/internal/service/appointments"
	"carfixer/backend/internal/store/postgres"
	grpcTransport "carfixer/backend/internal/transport/grpc"
	"carfixer/backend/internal/transport/httpapi"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "carfixer-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "carfixer-server"),
	)
	slog.SetDefault(log)

	log.Info("starting",
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("grpc_addr", cfg.GRPCAddr),
		slog.String("log_level", cfg.LogLevel),
		slog.String("timezone", cfg.Booking.Timezone),
	)

	cal, err := domain.NewCalendar(cfg.Booking.Timezone, cfg.Booking.AllowSameDay)
	if err != nil {
		log.Error("calendar setup failed", slog.Any("err", err))
		os.Exit(1)
	}
	sessions, err := auth.NewSessions(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	if err != nil {
		log.Error("session setup failed", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		os.Exit(1)
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	if cfg.DBAutoMigrate {
		if err := postgres.Migrate(context.Background(), db); err != nil {
			log.Error("migration failed", slog.Any("err", err))
			os.Exit(1)
		}
		log.Info("migrations applied")
	}

	var verifier auth.Verifier
	if cfg.Admin.PasswordHash != "" {
		verifier, err = auth.NewStaticVerifier(cfg.Admin.Username, cfg.Admin.PasswordHash)
		if err != nil {
			log.Error("admin credentials invalid", slog.Any("err", err))
			os.Exit(1)
		}
	} else {
		log.Info("admin.password_hash not set; checking credentials against the admins table")
		verifier = postgres.NewAdminRepo(db)
	}

	repo := postgres.NewAppointmentRepo(db)
	svc := appointments.NewService(repo, cal, cfg.Booking.Capacity)

	limiter := auth.NewRateLimiter(cfg.Auth.LoginRPS, cfg.Auth.LoginBurst)
	defer limiter.Close()

	httpServer := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewHandler(httpapi.Options{
			Service:        svc,
			Verifier:       verifier,
			Sessions:       sessions,
			LoginLimiter:   limiter,
			Log:            log,
			RequestTimeout: cfg.HTTPRequestTimeout,
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Ping:           db.PingContext,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(grpcTransport.TimeoutInterceptor(cfg.GRPCRequestTimeout)),
	)
	grpcTransport.RegisterBookingServiceServer(grpcServer, grpcTransport.NewBookingServer(svc, log))
	healthServer := health.NewServer()
	healthServer.SetServingStatus(grpcTransport.BookingServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	var scheduler *jobs.Scheduler
	if cfg.Reminders.Enabled {
		var notifier notify.Notifier
		if cfg.Twilio.Enabled() {
			notifier = notify.NewTwilio(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber, log)
		} else {
			log.Warn("twilio not configured; reminders will only be logged")
			notifier = notify.NewLogNotifier(log)
		}
		reminders := jobs.NewReminderJob(repo, notifier, cal, log)

		scheduler = jobs.NewScheduler(cal.Location, 10*time.Minute, log)
		err := scheduler.Add(cfg.Reminders.Schedule, "reminders", func(ctx context.Context) error {
			_, err := reminders.Run(ctx)
			return err
		})
		if err != nil {
			log.Error("reminder schedule invalid", slog.Any("err", err), slog.String("schedule", cfg.Reminders.Schedule))
			os.Exit(1)
		}
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	if scheduler != nil {
		scheduler.Start()
		log.Info("reminders scheduled", slog.String("schedule", cfg.Reminders.Schedule))
	}

	log.Info("servers started", slog.String("http_addr", cfg.HTTPAddr), slog.String("grpc_addr", cfg.GRPCAddr))

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("server stopped with error", slog.Any("err", err))
			exitCode = 1
		}
	}

	healthServer.Shutdown()
	shutdown(log, httpServer, grpcServer, scheduler, cfg.ShutdownTimeout)
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func shutdown(log *slog.Logger, hs *http.Server, gs *grpc.Server, sched *jobs.Scheduler, timeout time.Duration) {
	log.Info("shutting down", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := hs.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown failed", slog.Any("err", err))
	}

	if sched != nil {
		if err := sched.Stop(ctx); err != nil {
			log.Warn("scheduler stop timed out", slog.Any("err", err))
		}
	}

	done := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-ctx.Done():
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		gs.Stop()
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
