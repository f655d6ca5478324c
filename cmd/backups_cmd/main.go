// Command backups_cmd writes one export document per registered user into a
// backup directory. The documents can be fed back through /data/import.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/betterlife/internal"
	"github.com/2beens/betterlife/internal/auth"
	"github.com/2beens/betterlife/internal/config"
	"github.com/2beens/betterlife/internal/logging"
	"github.com/2beens/betterlife/internal/telemetry/metrics"
	"github.com/2beens/betterlife/internal/transfer"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	backupDir := flag.String("dir", "./backups", "directory for the backup files")
	logsPath := flag.String("logs-path", "", "backup logs file path (empty for stdout)")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}
	// always read straight from the backend
	cfg.CacheSizeMB = 0

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   *logsPath,
		LogToStdout:   *logsPath == "",
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
		Environment:   cfg.Environment,
	})

	log.Println("starting data backup ...")

	ctx := context.Background()
	storage, err := internal.OpenStorage(ctx, internal.StorageParams{
		Config:           cfg,
		RedisPassword:    os.Getenv("BETTERLIFE_REDIS_PASS"),
		PostgresPassword: os.Getenv("BETTERLIFE_PG_PASS"),
	})
	if err != nil {
		log.Fatalf("open storage: %s", err)
	}
	defer storage.Close()

	metricsManager := metrics.NewManager("betterlife", "backup", prometheus.NewRegistry())
	b := &backup{
		users:    auth.NewAuthService(auth.DefaultTTL, storage.Store),
		exporter: transfer.NewService(storage.Store, metricsManager),
		dir:      *backupDir,
		now:      time.Now,
	}

	written, err := b.run(ctx)
	if err != nil {
		log.Errorf("backup finished with errors: %s", err)
	}
	log.Infof("backup done, %d user files written to [%s]", written, *backupDir)
	if err != nil {
		os.Exit(1)
	}
}
