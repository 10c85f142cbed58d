package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"factoryflow/quote-service/internal/config"
	"factoryflow/quote-service/internal/db"
	"factoryflow/quote-service/internal/grpcserver"
	"factoryflow/quote-service/internal/jobstore"
	"factoryflow/quote-service/internal/quote"
	"factoryflow/quote-service/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and gRPC APIs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Stores ──────────────────────────────────────────────────────────────
	a, err := openApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	var status quote.StatusSource
	if a.pool == nil {
		log.Println("[quote-service] DATABASE_URL not set — running in demo mode")
		status = scheduler.Fixed{DemoMode: true, Reason: jobstore.MsgDemoMode, CheckedAt: time.Now().UTC()}
	} else {
		if err := db.PingPostgres(ctx, a.pool, cfg.RemoteTimeout); err != nil {
			log.Printf("[quote-service] %v — quotes will be saved locally until it is reachable", err)
		} else {
			log.Println("[quote-service] PostgreSQL connected ✓")
		}

		var setup scheduler.SetupFunc
		if cfg.AutoSetupDB {
			setup = func(ctx context.Context) error {
				return jobstore.Setup(ctx, a.pool, cfg.JobsTable, cfg.PolicyRole)
			}
		}
		sched := scheduler.New(a.jobs, cfg.JobsTable, cfg.ProbeInterval, setup)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
		status = sched
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      quote.NewRouter(quote.NewHandler(a.svc, status)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("[quote-service] v%s HTTP listening on :%s", quote.Version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[quote-service] HTTP server error: %v", err)
		}
	}()

	// ── gRPC server ──────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	gsrv := grpc.NewServer()
	grpcserver.Register(gsrv, grpcserver.NewServer(a.svc))

	go func() {
		log.Printf("[quote-service] gRPC listening on :%s", cfg.GRPCPort)
		if err := gsrv.Serve(lis); err != nil {
			log.Fatalf("[quote-service] gRPC server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[quote-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[quote-service] Shutdown error: %v", err)
	}
	gsrv.GracefulStop()
	log.Println("[quote-service] Stopped.")
	return nil
}
