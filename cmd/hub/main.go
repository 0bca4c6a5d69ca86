package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskhub/auth"
	"taskhub/contract"
	"taskhub/gateway"
	"taskhub/infrastructure/backplane"
	"taskhub/infrastructure/health"
	"taskhub/infrastructure/sqlstore"
	"taskhub/repositories"
	"taskhub/runtime"
	"taskhub/runtime/workers"
	"taskhub/services"
	"taskhub/transport/ws"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and owns their lifecycle, so deferred cleanups
// always execute before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. External store adapters
	directory, memberships, closeStore, err := openStore(config, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// 3. Hub state and the components driving it
	hub := runtime.NewHub(log)
	authenticator := auth.NewAuthenticator(auth.NewTokenManager(config.JWTSecret, config.JWTIssuer), directory)
	gw := gateway.New(log, hub, authenticator, runtime.NewMembershipResolver(memberships), config.JoinTimeout)
	publisher := services.NewPublisher(log, hub.Router)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Supervised background workers
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewReporterWorker(log, hub, config.ReportInterval))
	if config.BackplaneRedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: config.BackplaneRedisAddr})
		defer func() { _ = rdb.Close() }()
		nodeID := uuid.NewString()
		forwarded := hub.Router.EnableForwarding(config.BackplaneBufferSize)
		sup.Add(backplane.NewRelay(log, rdb, hub.Router, forwarded, config.BackplaneChannel, nodeID))
		log.Info("Backplane enabled", "addr", config.BackplaneRedisAddr, "node", nodeID)
	}
	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx)
	}()

	// 6. Admin gRPC health server
	adminAddress := fmt.Sprintf("%s:%d", config.Host, config.AdminPort)
	adminListener, err := net.Listen("tcp", adminAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", adminAddress, err)
	}
	healthServer := health.New(log)

	// 7. HTTP & websocket server
	server := ws.NewServer(log, hub, gw, publisher, authenticator, ws.Options{
		BufferSize:     config.ConnectionBufferSize,
		WriteTimeout:   config.WriteTimeout,
		AllowedOrigins: config.Origins(),
		InternalToken:  config.InternalToken,
	})
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:              address,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	// Use an error channel to capture Serve() issues
	errChan := make(chan error, 2)
	go func() {
		if err := healthServer.Serve(adminListener); err != nil {
			errChan <- fmt.Errorf("gRPC health server error: %w", err)
		}
	}()
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	healthServer.SetServing(true)

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		healthServer.Stop()
		sup.Stop()
		return err
	}

	// 9. Final Cleanup
	healthServer.SetServing(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	healthServer.Stop()
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")
	return nil
}

// openStore returns the directory and membership adapters selected by STORE_DRIVER.
func openStore(config Config, log *slog.Logger) (contract.IUserDirectory, contract.IMembershipStore, func(), error) {
	switch config.StoreDriver {
	case "sqlite":
		store, err := sqlstore.Open(config.SQLitePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("sqlite opening failed: %w", err)
		}
		return store, store, func() {
			log.Info("Closing SQLite...")
			_ = store.Close()
		}, nil
	case "badger", "":
		db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		return repositories.NewUserRepository(db), repositories.NewMembershipRepository(db), func() {
			log.Info("Closing BadgerDB...")
			_ = db.Close()
		}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", config.StoreDriver)
	}
}
