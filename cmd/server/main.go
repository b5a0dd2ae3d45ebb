package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"biblio/backend/internal/access"
	"biblio/backend/internal/audit"
	auditrepo "biblio/backend/internal/audit/repository"
	"biblio/backend/internal/config"
	"biblio/backend/internal/db"
	"biblio/backend/internal/identity/service"
	"biblio/backend/internal/otp"
	otprepo "biblio/backend/internal/otp/repository"
	platformrepo "biblio/backend/internal/platformsettings/repository"
	"biblio/backend/internal/security"
	"biblio/backend/internal/server"
	"biblio/backend/internal/server/interceptors"
	"biblio/backend/internal/session"
	sessionrepo "biblio/backend/internal/session/repository"
	oteltelemetry "biblio/backend/internal/telemetry/otel"
	userrepo "biblio/backend/internal/user/repository"
)

// auditRetention bounds how long per-RPC audit rows are kept.
const auditRetention = 90 * 24 * time.Hour

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sqlDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer sqlDB.Close()

	providers, err := oteltelemetry.NewProviders(ctx, cfg.OTLPEndpoint, "biblio-backend", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	users := userrepo.NewPostgresRepository(sqlDB)
	sessions := sessionrepo.NewPostgresRepository(sqlDB)
	codes := otprepo.NewPostgresRepository(sqlDB)
	auditLogs := auditrepo.NewPostgresRepository(sqlDB)
	settings := platformrepo.NewPostgresRepository(sqlDB)

	tokens, err := security.NewTokenProvider(
		[]byte(cfg.TokenSecret), cfg.TokenIssuer,
		cfg.AccessTTL(), cfg.RefreshTTL(), cfg.MailTokenTTL(),
	)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	registry := session.NewRegistry(sessions)
	store := otp.NewStore(codes, cfg.OTPDigits, cfg.OTPTTL())
	verifier := service.NewVerifier(tokens, registry, users)

	auditLogger := audit.Combine(
		audit.NewLogger(auditLogs, interceptors.ClientIP),
		oteltelemetry.NewAuditEmitter(providers.LoggerProvider),
	)

	evaluator := access.NewOPAEvaluator()
	if err := evaluator.HealthCheck(ctx); err != nil {
		log.Fatalf("access policy: %v", err)
	}

	s, hs := server.New(server.Deps{
		Auth:     verifier,
		Settings: settings,
		Access:   evaluator,
		Audit:    auditLogger,
	})

	if interval := cfg.SweepInterval(); interval > 0 {
		go sweep(ctx, interval, registry, store, auditLogs)
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := s.Serve(lis); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()
	server.Ready(hs)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down gRPC server...")
	s.GracefulStop()
	log.Println("gRPC server stopped")
}

// sweep periodically purges expired sessions, expired one-time codes, and
// audit rows past retention. Failures are logged and retried next tick.
func sweep(ctx context.Context, interval time.Duration, registry *session.Registry, store *otp.Store, auditLogs auditrepo.Repository) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := registry.SweepExpired(ctx); err != nil {
				log.Printf("sweep sessions: %v", err)
			} else if n > 0 {
				log.Printf("sweep: closed %d expired sessions", n)
			}
			if n, err := store.SweepExpired(ctx); err != nil {
				log.Printf("sweep codes: %v", err)
			} else if n > 0 {
				log.Printf("sweep: deleted %d expired codes", n)
			}
			if n, err := auditLogs.DeleteOlderThan(ctx, time.Now().Add(-auditRetention)); err != nil {
				log.Printf("sweep audit: %v", err)
			} else if n > 0 {
				log.Printf("sweep: deleted %d old audit rows", n)
			}
		}
	}
}
