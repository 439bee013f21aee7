package parsers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/ai-advisor/server/internal/advisor/model"
	errx "github.com/ai-advisor/server/internal/core/error"
	logx "github.com/ai-advisor/server/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 256 * 1024 // 256KB
	maxErrSnippet = 200        // limit error snippet size
)

const answerField = "answer"

// ParseReply turns the advisor model output into a ReplyPayload.
//
// The model is asked for a JSON object {"answer": ..., "visualizations": [...]},
// optionally wrapped in a markdown code fence. Output without a JSON object is
// treated as a plain-text answer with no visualizations. Problems are recorded
// in ParsingMetadata["parsing_errors"] rather than returned.
func ParseReply(content string) (resp *model.ReplyPayload, err error) {
	// panic safety
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "reply_parser").Msgf("panic recovered: %v", r)
			err = errx.New(fmt.Errorf("reply parser panic"), http.StatusInternalServerError, errx.SystemErrorMessage)
			resp = nil
		}
	}()

	resp = &model.ReplyPayload{
		ParsingMetadata: map[string]any{},
	}
	addErr := func(msg string) {
		v, _ := resp.ParsingMetadata["parsing_errors"].([]string)
		resp.ParsingMetadata["parsing_errors"] = append(v, msg)
	}

	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "reply_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
		resp.ParsingMetadata["truncated"] = true
	}
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "�")
		addErr("invalid utf8 replaced")
	}

	text := strings.TrimSpace(content)
	body := stripFence(text)

	obj, ok := findObject(body)
	if !ok {
		resp.Answer = text
		resp.ParsingMetadata["format"] = "text"
		if strings.Contains(body, "{") {
			addErr(fmt.Sprintf("no json object: %s", safeSnippet(body)))
		}
		return resp, nil
	}

	resp.Raw = obj
	resp.ParsingMetadata["format"] = "json"
	switch a := obj[answerField].(type) {
	case string:
		resp.Answer = strings.TrimSpace(a)
	case nil:
		addErr("answer: missing")
	default:
		addErr("answer: not a string")
	}
	return resp, nil
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// findObject decodes the outermost {...} span of s.
func findObject(s string) (map[string]any, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s[start:end+1]), &m); err != nil {
		return nil, false
	}
	return m, m != nil
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
