package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Env struct {
	AppPort        int    `envconfig:"APP_PORT"    default:"8080"`
	DBHost         string `envconfig:"DB_HOST"     default:"localhost"`
	DBPort         int    `envconfig:"DB_PORT"     default:"5432"`
	DBName         string `envconfig:"DB_NAME"     default:"shortlink"`
	DBUser         string `envconfig:"DB_USER"     default:"shortlink"`
	DBPassword     string `envconfig:"DB_PASSWORD" default:"shortlink"`
	CacheEngine    string `envconfig:"CACHE_ENGINE" default:"redis"` // redis | inmemory
	CacheHost      string `envconfig:"CACHE_HOST"  default:"localhost"`
	CachePort      int    `envconfig:"CACHE_PORT"  default:"6379"`
	CacheTTLSecs   int    `envconfig:"CACHE_TTL_SECONDS" default:"3600"`
	RedirectOrigin string `envconfig:"REDIRECT_ORIGIN"  default:"http://localhost:8080"`
	CleanupSpec    string `envconfig:"CLEANUP_SPEC" default:"@hourly"`
	PreloadLimit   int    `envconfig:"PRELOAD_LIMIT" default:"100"`
}

func Process() (env Env, err error) {
	err = envconfig.Process("", &env)
	return
}
