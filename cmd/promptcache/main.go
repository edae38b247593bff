// Command promptcache is a thin operational tool for a configured cache
// backend: inspect size and shared stats, clear entries, or run a file
// sweep. Backend selection and endpoints come from the config file and
// environment, not from flags.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"dev.helix.promptcache/internal/cache"
	"dev.helix.promptcache/internal/config"
)

func main() {
	configPath := flag.String("config", os.Getenv("PROMPTCACHE_CONFIG"), "path to YAML config")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: promptcache [-config file] stats|size|clear|sweep")
		os.Exit(2)
	}

	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(flag.Arg(0), *configPath, logger); err != nil {
		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(command, configPath string, logger *zap.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	store, err := cache.NewStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch command {
	case "size":
		n, err := store.Size(ctx)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil

	case "clear":
		if err := store.Clear(ctx); err != nil {
			return err
		}
		logger.Info("cache cleared", zap.String("backend", cfg.Backend))
		return nil

	case "sweep":
		fs, ok := store.(*cache.FileStore)
		if !ok {
			return fmt.Errorf("sweep applies to the file backend, not %q", cfg.Backend)
		}
		removed, err := fs.Sweep(ctx)
		if err != nil {
			return err
		}
		logger.Info("sweep complete", zap.Int("removed", removed))
		return nil

	case "stats":
		rs, ok := store.(*cache.RedisStore)
		if !ok {
			return fmt.Errorf("shared stats live in the distributed backend, not %q", cfg.Backend)
		}
		snap, err := cache.NewRedisRecorder(rs.Client(), cfg.Redis.KeyPrefix, logger).Snapshot(ctx)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
