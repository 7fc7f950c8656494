package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/ripple"
	"github.com/aretw0/ripple/internal/cli"
	"github.com/aretw0/ripple/internal/metrics"
	api "github.com/aretw0/ripple/pkg/adapters/http"
	"github.com/aretw0/ripple/pkg/adapters/memory"
	"github.com/aretw0/ripple/pkg/adapters/redis"
	"github.com/aretw0/ripple/pkg/ports"
	"github.com/aretw0/ripple/pkg/session"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the session server. Each session owns a graph and a traversal engine;
frames are streamed over SSE and WebSocket. When a Redis address is configured,
frames are fanned out through Redis pub/sub so any replica can stream them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		remote, _ := cmd.Flags().GetBool("remote-sessions")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		var bus ports.FrameBus
		if cfg.Redis.Addr != "" {
			rb := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
				redis.WithPrefix(cfg.Redis.Channel+":"),
				redis.WithLogger(logger),
			)
			defer rb.Close()
			if err := rb.Ping(sigCtx); err != nil {
				return fmt.Errorf("redis unreachable at %s: %w", cfg.Redis.Addr, err)
			}
			logger.Info("Using Redis frame bus", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
			bus = rb
		} else {
			bus = memory.NewBus(memory.WithLogger(logger))
		}

		sessions := session.NewManager(bus,
			session.WithLogger(logger),
			session.WithRemoteSessions(remote),
			session.WithWorkspaceOptions(
				ripple.WithLogger(logger),
				ripple.WithTiming(cfg.Animation.StepPeriod, cfg.Animation.SubDelay),
				ripple.WithLifecycleHooks(metrics.Hooks()),
			),
		)

		g, ctx := errgroup.WithContext(sigCtx)
		srv := &http.Server{
			Addr: cfg.Server.Addr,
			Handler: api.NewHandler(sessions,
				api.WithLogger(logger),
				api.WithMetricsPath(cfg.Server.MetricsPath),
				api.WithOriginPatterns(cfg.Server.OriginPatterns...),
				api.WithHeartbeat(cfg.Server.Heartbeat),
			),
			ReadHeaderTimeout: 10 * time.Second,
			// Streams end when the server starts shutting down.
			BaseContext: func(net.Listener) context.Context { return ctx },
		}

		g.Go(func() error {
			logger.Info("Ripple server listening", "addr", srv.Addr, "version", strings.TrimSpace(ripple.Version))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			logger.Info("Start shutdown...", "signal", sigCtx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			sessions.Close(shutdownCtx)
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			logger.Info("Ripple server stopped gracefully")
			return nil
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().String("redis-addr", "", "Redis address for frame fan-out (overrides redis.addr)")
	serveCmd.Flags().Duration("step-period", 0, "Time between traversal steps")
	serveCmd.Flags().Duration("sub-delay", 0, "Delay between a visit and its expansion")
	serveCmd.Flags().StringSlice("origin", nil, "Origin patterns allowed to open WebSocket streams (overrides server.origin_patterns)")
	serveCmd.Flags().Duration("heartbeat", 0, "Interval between SSE keep-alive comments")
	serveCmd.Flags().Bool("remote-sessions", false, "Stream sessions owned by other replicas through the bus")
}
