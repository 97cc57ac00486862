package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/internal/server"
	"github.com/matzehuels/forcegraph/pkg/cache"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// serveCommand creates the serve command for running the layout HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr          string
		noCache       bool
		redisAddr     string
		redisPassword string
		redisDB       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout HTTP API",
		Long: `Run the layout HTTP API.

The server exposes POST /api/layout for one-shot layout requests and
POST /api/layout/stream for NDJSON streaming of force simulation ticks.

Layouts are cached on the local filesystem by default. With --redis-addr
the cache moves to Redis so multiple server instances share results.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache, redisAddr, redisPassword, redisDB)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable layout caching")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "redis address for a shared layout cache (e.g. localhost:6379)")
	cmd.Flags().StringVar(&redisPassword, "redis-password", "", "redis password")
	cmd.Flags().IntVar(&redisDB, "redis-db", 0, "redis database number")

	return cmd
}

// runServe builds the cache and runner, then serves until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, addr string, noCache bool, redisAddr, redisPassword string, redisDB int) error {
	logger := loggerFromContext(ctx)

	cch, err := c.newServeCache(ctx, noCache, redisAddr, redisPassword, redisDB)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(cch, nil, logger)
	defer runner.Close()

	backend := "file"
	switch {
	case noCache:
		backend = "disabled"
	case redisAddr != "":
		backend = "redis " + redisAddr
	}
	printKeyValue("Address", addr)
	printKeyValue("Cache", backend)

	return server.New(runner, logger).ListenAndServe(ctx, addr)
}

// newServeCache picks the cache backend for the server: redis when an
// address is given, otherwise the local file cache.
func (c *CLI) newServeCache(ctx context.Context, noCache bool, redisAddr, redisPassword string, redisDB int) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", redisAddr, err)
		}
		c.Logger.Info("using redis cache", "addr", redisAddr, "db", redisDB)
		return rc, nil
	}
	return newCache(false)
}
