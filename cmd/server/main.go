package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/stride-app/stride-server/internal/api"
	"github.com/stride-app/stride-server/internal/config"
	"github.com/stride-app/stride-server/internal/database"
	"github.com/stride-app/stride-server/internal/server"
	"github.com/stride-app/stride-server/internal/stats"
	"github.com/stride-app/stride-server/internal/token"
)

const defaultSigningKey = "c1Y0gIqbQ5wzLUDhL9bUKPUhwaxKhpi/SaI6PtgB+MgU="

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

// envOr lets container deployments feed flags through the environment; a
// .env file is honored when present.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var (
	addr           string
	dsn            string
	signingKey     string
	migrationsDir  string
	allowedOrigins stringSliceFlag
)

func main() {
	// .env is optional; flags read the environment for their defaults
	_ = godotenv.Load()

	flag.StringVar(&addr, "addr", envOr("STRIDE_ADDR", "localhost:8000"), "server address")
	flag.StringVar(&dsn, "dsn", envOr("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable"), "database connection string")
	flag.StringVar(&signingKey, "signing-key", envOr("STRIDE_SIGNING_KEY", defaultSigningKey), "base64 encoded signing key")
	flag.StringVar(&migrationsDir, "migrations", envOr("STRIDE_MIGRATIONS", "db/migrations"), "schema migrations directory")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	logger := log.New(os.Stderr, "[stride] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dsn, signingKey, migrationsDir, allowedOrigins)
	if err != nil {
		logger.Fatal("config:", err)
	}

	dbConn, err := database.NewPgStrideRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}

	if err := dbConn.Migrate(cfg.MigrationsDir); err != nil {
		logger.Fatal("migrate:", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Fatal("db close:", err)
		}
	}()

	tokens := token.NewManager(cfg.SigningKey, cfg.TokenTTL)

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	chatServer, err := server.NewChatServer(logger, dbConn, tokens, statsUpdater)
	if err != nil {
		logger.Fatal("new chat server:", err)
	}

	srv := api.NewStrideApp(mux, logger, chatServer, dbConn, tokens, statsUpdater, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down chat server...")
	if err := chatServer.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("chat server shutdown:", err)
	}

	logger.Println("shutdown complete")
}
