package main

import (
	"fmt"
	"log"
	"time"

	"goshortlink/cache/cacher"
	"goshortlink/cache/inmemory"
	"goshortlink/cache/redis"
	"goshortlink/config"
	"goshortlink/logger"
	"goshortlink/maintenance"
	"goshortlink/repository"
	"goshortlink/server"
	"goshortlink/shortener"

	"go.uber.org/zap"
)

const (
	defaultClearInterval = 24 * time.Hour
	schedulerRunTimeout  = time.Minute
)

var (
	env       config.Env
	db        repository.Repository
	zaplogger *zap.Logger
)

func main() {
	var err error
	zaplogger, err = logger.New()
	if err != nil {
		log.Fatalf("failed to initialize logger: %s", err)
	}

	env, err = config.Process()
	if err != nil {
		log.Fatalf("failed to process env: %s", err)
	}

	db, err = repository.NewPGRepo(env.DBPort, env.DBHost, env.DBUser, env.DBName, env.DBPassword)
	if err != nil {
		log.Fatalf("failed to connect db: %s", err)
	}

	cacheTTL := time.Duration(env.CacheTTLSecs) * time.Second
	var cache cacher.Engine
	switch env.CacheEngine {
	case "inmemory":
		cache = inmemory.New(cacheTTL, defaultClearInterval)
	default:
		cache = redis.New(env.CacheHost, env.CachePort)
	}

	svc := shortener.New(db, cache, zaplogger, env.RedirectOrigin, cacheTTL)
	jobs := maintenance.NewJobs(db, cache, zaplogger, cacheTTL)

	scheduler, err := maintenance.NewScheduler(jobs, env.CleanupSpec, schedulerRunTimeout, zaplogger)
	if err != nil {
		log.Fatalf("failed to schedule cleanup: %s", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	r := server.NewRouter(db, cache, svc, jobs, zaplogger, env.PreloadLimit)
	r.Run(fmt.Sprintf(":%d", env.AppPort))
}
