package observers

import (
	"strings"
	"testing"
	"unicode/utf8"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestClip_KeepsShortContent(t *testing.T) {
	assert.Equal(t, "hello", clip("  hello \n"))
	assert.Equal(t, "", clip(""))
}

func TestClip_CutsOnRuneBoundary(t *testing.T) {
	s := strings.Repeat("ก", maxLoggedContent+10)
	got := clip(s)

	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, maxLoggedContent, utf8.RuneCountInString(strings.TrimSuffix(got, "...")))
}

func TestClip_ExactLimitUnchanged(t *testing.T) {
	s := strings.Repeat("é", maxLoggedContent)
	assert.Equal(t, s, clip(s))
}

func TestLastUserContent(t *testing.T) {
	msgs := []*schema.Message{
		schema.SystemMessage("rules"),
		schema.UserMessage("first"),
		schema.AssistantMessage("reply", nil),
		nil,
		schema.UserMessage("  second  "),
		schema.AssistantMessage("later", nil),
	}
	assert.Equal(t, "second", lastUserContent(msgs))
	assert.Equal(t, "", lastUserContent([]*schema.Message{schema.SystemMessage("x")}))
	assert.Equal(t, "", lastUserContent(nil))
}

func TestNodeName(t *testing.T) {
	assert.Equal(t, "", nodeName(nil))
	assert.Equal(t, "AdvisorChatModel", nodeName(&einocb.RunInfo{Name: "AdvisorChatModel", Type: "Gemini"}))
	assert.Equal(t, "Gemini", nodeName(&einocb.RunInfo{Type: "Gemini"}))
}

func TestNewAllCallbacks(t *testing.T) {
	assert.NotNil(t, NewAllCallbacks())
}
