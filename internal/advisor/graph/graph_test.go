package graph

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	advisormodel "github.com/ai-advisor/server/internal/advisor/model"
	errx "github.com/ai-advisor/server/internal/core/error"
	"github.com/ai-advisor/server/internal/visualization"
)

type fakeChatModel struct {
	mu     sync.Mutex
	reply  *schema.Message
	err    error
	inputs [][]*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (f *fakeChatModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

type memoryCache struct {
	mu     sync.Mutex
	items  map[string]advisormodel.AskResult
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string]advisormodel.AskResult{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) (*advisormodel.AskResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	res, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	return &res, true, nil
}

func (c *memoryCache) Put(ctx context.Context, key string, result *advisormodel.AskResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = *result
	return nil
}

const chartReply = `{"answer": "Revenue grew in February.", "visualizations": [
	{"type": "chart", "chartType": "radar", "data": [{"m": "Jan", "v": 1}, {"m": "Feb", "v": 2}], "xKey": "m", "yKeys": ["v"], "height": "tall"},
	{"type": "timeline", "headers": ["a", 1]}
]}`

func replyMessage(content string) *schema.Message {
	msg := schema.AssistantMessage(content, nil)
	msg.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{
		PromptTokens:     1000,
		CompletionTokens: 500,
		TotalTokens:      1500,
	}}
	return msg
}

func buildRunner(t *testing.T, fake *fakeChatModel, cache advisormodel.ReplyCache, maxHistory int) Runner {
	t.Helper()
	runner, err := BuildAdvisor(context.Background(), Config{
		ChatModel:  fake,
		ModelName:  "gemini-2.5-flash",
		Prompt:     advisormodel.AdvisorPromptConfig{AdvisorName: "Ledger", Domain: "finance"},
		MaxHistory: maxHistory,
		Cache:      cache,
		Now:        func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return runner
}

func TestBuildAdvisor_NilModel(t *testing.T) {
	_, err := BuildAdvisor(context.Background(), Config{})
	assert.Error(t, err)
}

func TestAsk_NormalizesVisualizations(t *testing.T) {
	fake := &fakeChatModel{reply: replyMessage(chartReply)}
	runner := buildRunner(t, fake, nil, 10)

	res, err := runner.Ask(context.Background(), advisormodel.AskInput{
		ConversationID: "conv-1",
		Question:       "  How is revenue?  ",
		History: []advisormodel.ChatMessage{
			{Role: advisormodel.RoleUser, Content: "hello"},
			{Role: advisormodel.RoleAssistant, Content: "hi, how can I help?"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "conv-1", res.ConversationID)
	assert.Equal(t, "Revenue grew in February.", res.Answer)
	assert.False(t, res.Cached)
	assert.Equal(t, "gemini-2.5-flash", res.Model)
	assert.InDelta(t, 0.30*1000/1e6+2.50*500/1e6, res.CostUSD, 1e-12)

	require.Len(t, res.Visualizations, 2)
	chart := res.Visualizations[0]
	assert.Equal(t, visualization.KindChart, chart.Kind)
	assert.Equal(t, visualization.SeriesLine, chart.SeriesKind)
	assert.Len(t, chart.Rows, 2)
	require.NotNil(t, chart.XField)
	assert.Equal(t, "m", *chart.XField)
	assert.Equal(t, []string{"v"}, chart.YFields)
	assert.Nil(t, chart.HeightHint)

	table := res.Visualizations[1]
	assert.Equal(t, visualization.KindTable, table.Kind)
	assert.Nil(t, table.ColumnHeaders)

	require.Len(t, res.RawVisualizations, 2)
	assert.Equal(t, "radar", res.RawVisualizations[0]["chartType"])
	assert.Equal(t, "timeline", res.RawVisualizations[1]["type"])
	assert.Equal(t, []any{"a", 1.0}, res.RawVisualizations[1]["headers"])

	require.Equal(t, 1, fake.calls())
	input := fake.inputs[0]
	require.Len(t, input, 4)
	assert.Equal(t, schema.System, input[0].Role)
	assert.Contains(t, input[0].Content, "You are Ledger")
	assert.Equal(t, "hello", input[1].Content)
	assert.Equal(t, schema.Assistant, input[2].Role)
	assert.Equal(t, schema.User, input[3].Role)
	assert.Equal(t, "How is revenue?", input[3].Content)
}

func TestAsk_PlainTextReply(t *testing.T) {
	fake := &fakeChatModel{reply: schema.AssistantMessage("No data needed.", nil)}
	runner := buildRunner(t, fake, nil, 0)

	res, err := runner.Ask(context.Background(), advisormodel.AskInput{ConversationID: "c", Question: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "No data needed.", res.Answer)
	assert.NotNil(t, res.Visualizations)
	assert.Empty(t, res.Visualizations)
	assert.Empty(t, res.RawVisualizations)
	assert.Zero(t, res.CostUSD)
}

func TestAsk_TrimsHistory(t *testing.T) {
	fake := &fakeChatModel{reply: replyMessage(`{"answer":"ok"}`)}
	runner := buildRunner(t, fake, nil, 2)

	history := []advisormodel.ChatMessage{
		{Role: advisormodel.RoleUser, Content: "1"},
		{Role: advisormodel.RoleAssistant, Content: "2"},
		{Role: advisormodel.RoleUser, Content: "3"},
		{Role: advisormodel.RoleAssistant, Content: "4"},
	}
	_, err := runner.Ask(context.Background(), advisormodel.AskInput{ConversationID: "c", Question: "5", History: history})
	require.NoError(t, err)

	input := fake.inputs[0]
	require.Len(t, input, 4)
	assert.Equal(t, "3", input[1].Content)
	assert.Equal(t, "4", input[2].Content)
	assert.Equal(t, "5", input[3].Content)
}

func TestAsk_RequiresQuestion(t *testing.T) {
	fake := &fakeChatModel{reply: replyMessage(`{"answer":"ok"}`)}
	runner := buildRunner(t, fake, nil, 0)

	_, err := runner.Ask(context.Background(), advisormodel.AskInput{Question: "   "})
	status, msg := errx.StatusOf(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "question is required", msg)
	assert.Zero(t, fake.calls())
}

func TestAsk_GeneratesConversationID(t *testing.T) {
	fake := &fakeChatModel{reply: replyMessage(`{"answer":"ok"}`)}
	runner := buildRunner(t, fake, nil, 0)

	res, err := runner.Ask(context.Background(), advisormodel.AskInput{Question: "hi"})
	require.NoError(t, err)
	_, err = uuid.Parse(res.ConversationID)
	assert.NoError(t, err)
}

func TestAsk_ModelError(t *testing.T) {
	fake := &fakeChatModel{err: errors.New("quota exceeded")}
	runner := buildRunner(t, fake, nil, 0)

	_, err := runner.Ask(context.Background(), advisormodel.AskInput{Question: "hi"})
	require.Error(t, err)
	status, msg := errx.StatusOf(err)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, errx.ModelErrorMessage, msg)
}

func TestAsk_UsesCache(t *testing.T) {
	fake := &fakeChatModel{reply: replyMessage(chartReply)}
	cache := newMemoryCache()
	runner := buildRunner(t, fake, cache, 0)

	first, err := runner.Ask(context.Background(), advisormodel.AskInput{ConversationID: "a", Question: "revenue?"})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := runner.Ask(context.Background(), advisormodel.AskInput{ConversationID: "b", Question: "revenue?"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "b", second.ConversationID)
	assert.Zero(t, second.CostUSD)
	assert.Equal(t, first.Visualizations, second.Visualizations)
	assert.Equal(t, 1, fake.calls())
}

func TestAsk_CacheErrorIsAMiss(t *testing.T) {
	fake := &fakeChatModel{reply: replyMessage(`{"answer":"ok"}`)}
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	runner := buildRunner(t, fake, cache, 0)

	res, err := runner.Ask(context.Background(), advisormodel.AskInput{Question: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Answer)
	assert.Equal(t, 1, fake.calls())
}

func TestCacheKey(t *testing.T) {
	base := advisormodel.AskInput{ConversationID: "a", Question: "q"}
	other := advisormodel.AskInput{ConversationID: "b", Question: " q "}
	assert.Equal(t, CacheKey("m", base), CacheKey("m", other))
	assert.NotEqual(t, CacheKey("m", base), CacheKey("n", base))

	withHistory := base
	withHistory.History = []advisormodel.ChatMessage{{Role: advisormodel.RoleUser, Content: "earlier"}}
	assert.NotEqual(t, CacheKey("m", base), CacheKey("m", withHistory))
}
