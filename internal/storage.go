package internal

import (
	"context"
	"fmt"
	"net"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/betterlife/internal/config"
	"github.com/2beens/betterlife/internal/db"
	"github.com/2beens/betterlife/internal/kvstore"
)

type StorageParams struct {
	Config           *config.Config
	RedisPassword    string
	PostgresPassword string
	TracingEnabled   bool
}

// Storage is the opened persistence layer. RedisClient is set whenever redis
// is reachable by config, also when postgres holds the data (rate limiting).
type Storage struct {
	Store       kvstore.Store
	RedisClient *redis.Client
	DBPool      *pgxpool.Pool
	SQLite      *kvstore.SQLiteStore
	Collectors  []prometheus.Collector
}

func OpenStorage(ctx context.Context, params StorageParams) (*Storage, error) {
	cfg := params.Config
	s := &Storage{}

	if cfg.RedisHost != "" && cfg.StorageBackend != config.StorageMemory {
		s.RedisClient = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})

		rdbStatus := s.RedisClient.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
	}

	switch cfg.StorageBackend {
	case config.StorageRedis:
		s.Store = kvstore.NewRedisStore(s.RedisClient)
	case config.StoragePostgres:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         cfg.PostgresUser,
			DBPassword:     params.PostgresPassword,
			TracingEnabled: params.TracingEnabled,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}
		s.DBPool = dbPool

		pgStore := kvstore.NewPostgresStore(dbPool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("ensure kv schema: %w", err)
		}
		s.Store = pgStore
		s.Collectors = append(s.Collectors, pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
	case config.StorageSQLite:
		sqliteStore, err := kvstore.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		s.SQLite = sqliteStore
		s.Store = sqliteStore
	case config.StorageMemory:
		log.Warnln("using in-memory storage, data is lost on restart")
		s.Store = kvstore.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}

	if cfg.CacheSizeMB > 0 {
		s.Store = kvstore.NewCachedStore(s.Store, cfg.CacheSizeMB)
	}

	log.Infof("storage backend: %s (cache %d MB)", cfg.StorageBackend, cfg.CacheSizeMB)
	return s, nil
}

func (s *Storage) Close() {
	if s.RedisClient != nil {
		if err := s.RedisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.DBPool != nil {
		log.Debugln("closing db pool ...")
		s.DBPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if s.SQLite != nil {
		if err := s.SQLite.Close(); err != nil {
			log.Errorf("failed to close sqlite store: %s", err)
		}
	}
}
