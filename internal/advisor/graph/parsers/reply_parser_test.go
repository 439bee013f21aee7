package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply_JSON(t *testing.T) {
	resp, err := ParseReply(`{"answer": " Revenue grew. ", "visualizations": [{"type": "chart"}]}`)
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew.", resp.Answer)
	require.NotNil(t, resp.Raw)
	assert.Len(t, resp.Raw["visualizations"], 1)
	assert.Equal(t, "json", resp.ParsingMetadata["format"])
	assert.NotContains(t, resp.ParsingMetadata, "parsing_errors")
}

func TestParseReply_FencedJSON(t *testing.T) {
	content := "```json\n{\"answer\": \"ok\", \"visualizations\": []}\n```"
	resp, err := ParseReply(content)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Answer)
	assert.NotNil(t, resp.Raw)
}

func TestParseReply_JSONWithProse(t *testing.T) {
	resp, err := ParseReply("Here you go:\n{\"answer\": \"done\"}\nThanks")
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Answer)
}

func TestParseReply_PlainText(t *testing.T) {
	resp, err := ParseReply("  Just a sentence.  ")
	require.NoError(t, err)
	assert.Equal(t, "Just a sentence.", resp.Answer)
	assert.Nil(t, resp.Raw)
	assert.Equal(t, "text", resp.ParsingMetadata["format"])
}

func TestParseReply_BrokenJSONFallsBackToText(t *testing.T) {
	resp, err := ParseReply(`{"answer": "unterminated`)
	require.NoError(t, err)
	assert.Equal(t, `{"answer": "unterminated`, resp.Answer)
	assert.Nil(t, resp.Raw)
	assert.NotEmpty(t, resp.ParsingMetadata["parsing_errors"])
}

func TestParseReply_AnswerWrongType(t *testing.T) {
	resp, err := ParseReply(`{"answer": 42, "visualizations": []}`)
	require.NoError(t, err)
	assert.Empty(t, resp.Answer)
	assert.NotNil(t, resp.Raw)
	assert.Equal(t, []string{"answer: not a string"}, resp.ParsingMetadata["parsing_errors"])
}

func TestParseReply_Truncates(t *testing.T) {
	resp, err := ParseReply(strings.Repeat("a", maxContentLen+10))
	require.NoError(t, err)
	assert.Len(t, resp.Answer, maxContentLen)
	assert.Equal(t, true, resp.ParsingMetadata["truncated"])
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, "plain", stripFence("plain"))
}
