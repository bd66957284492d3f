package main

import (
	"flag"
	"fmt"
	"strconv"
	"time"
)

// Config is the server's runtime configuration.
type Config struct {
	Port          int
	DBPath        string
	RedisAddr     string // empty: in-process cache
	CacheTTL      time.Duration
	RecalcEvery   time.Duration
	DisableRecalc bool
}

// loadConfig parses flags. A flag left unset falls back to its environment
// variable, then to the default.
func loadConfig(args []string, getenv func(string) string) (Config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	port := fs.Int("port", 8080, "HTTP server port (env APR_PORT)")
	dbPath := fs.String("db", "apr.db", "SQLite database path, or :memory: (env APR_DB)")
	redisAddr := fs.String("redis", "", "Redis address for the result cache (env APR_REDIS_ADDR)")
	cacheTTL := fs.Duration("cache-ttl", 24*time.Hour, "Redis cache entry TTL")
	recalc := fs.Duration("recalc-interval", time.Minute, "How often to calculate new or edited loans")
	noRecalc := fs.Bool("no-recalc", false, "Disable background recalculation")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := Config{
		Port:          *port,
		DBPath:        *dbPath,
		RedisAddr:     *redisAddr,
		CacheTTL:      *cacheTTL,
		RecalcEvery:   *recalc,
		DisableRecalc: *noRecalc,
	}

	if v := getenv("APR_PORT"); v != "" && !set["port"] {
		p, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("APR_PORT: %w", err)
		}
		cfg.Port = p
	}
	if v := getenv("APR_DB"); v != "" && !set["db"] {
		cfg.DBPath = v
	}
	if v := getenv("APR_REDIS_ADDR"); v != "" && !set["redis"] {
		cfg.RedisAddr = v
	}

	return cfg, nil
}
