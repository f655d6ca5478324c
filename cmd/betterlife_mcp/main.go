// Package main runs the betterlife MCP server over stdio, reading the same
// storage the service is configured with.
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"time"

	"github.com/2beens/betterlife/internal"
	"github.com/2beens/betterlife/internal/config"
	betterlifemcp "github.com/2beens/betterlife/internal/mcp"
	"github.com/2beens/betterlife/internal/telemetry/metrics"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	envFile := flag.String("env-file", ".env", "optional file with secrets as env vars")
	flag.Parse()

	// stdout is the MCP transport
	log.SetOutput(os.Stderr)

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Errorf("load env file [%s]: %s", *envFile, err)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	// reads must see what the service writes
	cfg.CacheSizeMB = 0

	ctx := context.Background()
	storage, err := internal.OpenStorage(ctx, internal.StorageParams{
		Config:           cfg,
		RedisPassword:    os.Getenv("BETTERLIFE_REDIS_PASS"),
		PostgresPassword: os.Getenv("BETTERLIFE_PG_PASS"),
	})
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer storage.Close()

	services := internal.NewServices(storage.Store, metrics.NewManager("betterlife", "mcp", prometheus.NewRegistry()))
	server := betterlifemcp.NewServer(services.Macros, services.Planner, services.Reporter, time.Now)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}
