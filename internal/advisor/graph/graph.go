package graph

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	"github.com/ai-advisor/server/internal/advisor/graph/nodes"
	"github.com/ai-advisor/server/internal/advisor/graph/observers"
	advisormodel "github.com/ai-advisor/server/internal/advisor/model"
	errx "github.com/ai-advisor/server/internal/core/error"
	"github.com/ai-advisor/server/internal/metrics"
	logx "github.com/ai-advisor/server/pkg/logger"
)

// Runner answers advisor questions.
type Runner interface {
	Ask(ctx context.Context, in advisormodel.AskInput) (*advisormodel.AskResult, error)
}

// Config holds everything needed to compose the advisor chain.
type Config struct {
	ChatModel  model.BaseChatModel
	ModelName  string
	Prompt     advisormodel.AdvisorPromptConfig
	MaxHistory int

	// Cache is optional; nil disables reply caching.
	Cache advisormodel.ReplyCache

	// Now is used to date the system prompt; defaults to time.Now.
	Now func() time.Time
}

type advisorRunner struct {
	runnable compose.Runnable[advisormodel.AskInput, *advisormodel.AskResult]
	cache    advisormodel.ReplyCache
	model    string
}

// BuildAdvisor compiles the advisor chain:
// InputConverter -> AdvisorChatModel -> ReplyParser.
func BuildAdvisor(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ChatModel == nil {
		return nil, fmt.Errorf("chat model is nil")
	}

	chain := compose.NewChain[advisormodel.AskInput, *advisormodel.AskResult](
		compose.WithGenLocalState(func(ctx context.Context) *advisormodel.AppState {
			return &advisormodel.AppState{}
		}),
	)
	chain.
		AppendLambda(
			nodes.NewInputConverterNode(cfg.Prompt, cfg.MaxHistory, cfg.Now),
			compose.WithNodeName(nodes.NodeInputConverter),
			compose.WithStatePreHandler(nodes.NewInputConverterPreHandler(cfg.ModelName)),
		).
		AppendChatModel(
			cfg.ChatModel,
			compose.WithNodeName(nodes.NodeAdvisorChatModel),
			compose.WithStatePostHandler(nodes.NewAdvisorChatModelPostHandler(cfg.ModelName)),
		).
		AppendLambda(
			nodes.NewReplyParserNode(),
			compose.WithNodeName(nodes.NodeReplyParser),
		)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling advisor chain")
		return nil, fmt.Errorf("error compiling advisor chain: %w", err)
	}

	logx.Debug().Str("model", cfg.ModelName).Bool("cache", cfg.Cache != nil).Msg("Advisor chain built successfully")
	return &advisorRunner{runnable: runnable, cache: cfg.Cache, model: cfg.ModelName}, nil
}

func (r *advisorRunner) Ask(ctx context.Context, in advisormodel.AskInput) (*advisormodel.AskResult, error) {
	start := time.Now()
	defer func() { metrics.AskDuration.Observe(time.Since(start).Seconds()) }()

	in.Question = strings.TrimSpace(in.Question)
	if in.Question == "" {
		return nil, errx.BadRequest(nil, "question is required")
	}
	if in.ConversationID == "" {
		in.ConversationID = uuid.NewString()
	}

	key := CacheKey(r.model, in)
	if cached, ok := r.lookup(ctx, key); ok {
		cached.ConversationID = in.ConversationID
		cached.Cached = true
		cached.CostUSD = 0
		return cached, nil
	}

	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", in.ConversationID).Msg("advisor invocation failed")
		return nil, errx.WrapModel(err)
	}
	if out == nil {
		return nil, errx.WrapModel(fmt.Errorf("advisor returned no result"))
	}
	metrics.LLMCostUSD.WithLabelValues(r.model).Add(out.CostUSD)

	r.store(ctx, key, out)
	return out, nil
}

// lookup consults the cache. Cache failures are logged and treated as misses.
func (r *advisorRunner) lookup(ctx context.Context, key string) (*advisormodel.AskResult, bool) {
	if r.cache == nil {
		return nil, false
	}
	res, ok, err := r.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		logx.Warn().Err(err).Str("key", key).Msg("reply cache lookup failed")
		return nil, false
	case !ok || res == nil:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	default:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return res, true
	}
}

func (r *advisorRunner) store(ctx context.Context, key string, res *advisormodel.AskResult) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Put(ctx, key, res); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("reply cache store failed")
	}
}

// CacheKey fingerprints the model, history and question. The conversation id
// is excluded so identical exchanges share a cached reply.
func CacheKey(modelName string, in advisormodel.AskInput) string {
	h := sha256.New()
	write := func(parts ...string) {
		for _, p := range parts {
			fmt.Fprintf(h, "%d:%s", len(p), p)
		}
	}
	write(modelName)
	for _, m := range nodes.ToSchemaMessages(in.History) {
		write(string(m.Role), m.Content)
	}
	write("question", strings.TrimSpace(in.Question))
	return hex.EncodeToString(h.Sum(nil))
}
