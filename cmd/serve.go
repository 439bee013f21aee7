package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ai-advisor/server/internal/advisor/cache"
	"github.com/ai-advisor/server/internal/advisor/graph"
	"github.com/ai-advisor/server/internal/advisor/graph/nodes"
	"github.com/ai-advisor/server/internal/advisor/model"
	"github.com/ai-advisor/server/internal/config"
	"github.com/ai-advisor/server/internal/health"
	"github.com/ai-advisor/server/internal/server"
	logx "github.com/ai-advisor/server/pkg/logger"
)

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the advisor HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg *config.AppConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checker := health.NewChecker()
	checker.Register(health.ComponentHTTP)
	checker.Register(health.ComponentAdvisor)
	checker.Register(health.ComponentCache)
	readiness := health.NewReadinessChecker()

	replyCache, rdb := buildReplyCache(ctx, cfg, checker)
	if rdb != nil {
		defer rdb.Close()
	}
	advisor := buildAdvisorRunner(ctx, cfg, replyCache, checker)

	apiKeyConfigured := cfg.APIKeyConfigured()
	logx.Info().
		Bool("api_key_configured", apiKeyConfigured).
		Strs("components", checker.Components()).
		Msg("advisor server configured")

	httpServer := server.New(server.Options{
		Addr:             cfg.Server.Addr,
		ReadTimeout:      cfg.Server.ReadTimeout,
		WriteTimeout:     cfg.Server.WriteTimeout,
		IdleTimeout:      cfg.Server.IdleTimeout,
		CORSOrigins:      cfg.Server.CORSOrigins,
		MaxBodyBytes:     cfg.Server.MaxBodyBytes,
		APIKeyConfigured: apiKeyConfigured,
		Advisor:          advisor,
		Checker:          checker,
		Readiness:        readiness,
	})

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ln, err := net.Listen("tcp", cfg.Server.Addr)
		if err != nil {
			return fmt.Errorf("http listen: %w", err)
		}
		checker.SetStatus(health.ComponentHTTP, health.StatusUp)
		readiness.SetReady(true)
		logx.Info().Str("addr", ln.Addr().String()).Msg("http server starting")

		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		readiness.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logx.Info().Msg("shutting down http server")
		return httpServer.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if err != nil && errors.Is(err, context.Canceled) {
		err = nil
	}
	if err == nil {
		logx.Info().Msg("shutdown complete")
	}
	return err
}

// buildReplyCache connects to Redis when configured. A failed connection
// leaves caching off and marks the cache component degraded.
func buildReplyCache(ctx context.Context, cfg *config.AppConfig, checker *health.Checker) (model.ReplyCache, *goredis.Client) {
	if !cfg.Redis.Enabled() {
		checker.SetStatus(health.ComponentCache, health.StatusDisabled)
		return nil, nil
	}

	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		logx.Warn().Err(err).Msg("redis unavailable, reply cache disabled")
		checker.SetStatus(health.ComponentCache, health.StatusDegraded)
		return nil, nil
	}
	checker.SetStatus(health.ComponentCache, health.StatusUp)
	logx.Info().Dur("ttl", cfg.Cache.TTL).Msg("reply cache enabled")
	return cache.NewRedisReplyCache(rdb, cfg.Cache.TTL), rdb
}

// buildAdvisorRunner returns nil when no API key is configured or the model
// cannot be constructed; the ask endpoint then answers 503.
func buildAdvisorRunner(ctx context.Context, cfg *config.AppConfig, replyCache model.ReplyCache, checker *health.Checker) graph.Runner {
	if !cfg.APIKeyConfigured() {
		logx.Warn().Msg("GEMINI_API_KEY not set, advisor disabled")
		checker.SetStatus(health.ComponentAdvisor, health.StatusDisabled)
		return nil
	}

	chatModel, err := nodes.NewChatModel(ctx, nodes.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		ModelConfig: &cfg.Advisor,
	})
	if err != nil {
		logx.Error().Err(err).Msg("advisor model unavailable")
		checker.SetStatus(health.ComponentAdvisor, health.StatusDegraded)
		return nil
	}

	runner, err := graph.BuildAdvisor(ctx, graph.Config{
		ChatModel:  chatModel,
		ModelName:  cfg.Advisor.Model,
		Prompt:     cfg.Prompt,
		MaxHistory: cfg.Advisor.MaxHistory,
		Cache:      replyCache,
	})
	if err != nil {
		logx.Error().Err(err).Msg("failed to build advisor chain")
		checker.SetStatus(health.ComponentAdvisor, health.StatusDegraded)
		return nil
	}
	checker.SetStatus(health.ComponentAdvisor, health.StatusUp)
	logx.Info().Str("model", cfg.Advisor.Model).Msg("advisor ready")
	return runner
}
