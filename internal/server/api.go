package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ai-advisor/server/internal/advisor/graph"
	"github.com/ai-advisor/server/internal/advisor/model"
	errx "github.com/ai-advisor/server/internal/core/error"
	"github.com/ai-advisor/server/internal/metrics"
	"github.com/ai-advisor/server/internal/visualization"
	logx "github.com/ai-advisor/server/pkg/logger"
)

// APIHandler returns a chi router with the advisor REST API.
//
//	GET  /validate-key               : whether a model API key is configured
//	POST /visualizations/normalize   : normalize one visualization or a response payload
//	POST /visualizations/extract     : passthrough extraction of a response payload
//	POST /advisor/ask                : ask the advisor a question
//	POST /conversations/summaries    : conversation list rows, most recent first
func APIHandler(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Get("/validate-key", validateKey(opts.APIKeyConfigured))
	r.Post("/visualizations/normalize", normalizeVisualizations(opts.MaxBodyBytes))
	r.Post("/visualizations/extract", extractVisualizations(opts.MaxBodyBytes))
	r.Post("/advisor/ask", ask(opts.Advisor, opts.MaxBodyBytes))
	r.Post("/conversations/summaries", summarizeConversations(opts.MaxBodyBytes))

	return r
}

func validateKey(configured bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"configured": configured})
	}
}

func normalizeVisualizations(maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload any
		if err := decodeBody(w, r, maxBody, &payload); err != nil {
			writeError(w, err)
			return
		}

		if obj, ok := payload.(map[string]any); ok {
			if _, ok := obj["visualizations"]; ok {
				descriptors := visualization.NormalizeAll(payload)
				countKinds(descriptors)
				writeJSON(w, http.StatusOK, map[string]any{"visualizations": descriptors})
				return
			}
		}
		d := visualization.Normalize(payload)
		countKinds([]visualization.Descriptor{d})
		writeJSON(w, http.StatusOK, map[string]any{"visualization": d})
	}
}

func extractVisualizations(maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload any
		if err := decodeBody(w, r, maxBody, &payload); err != nil {
			writeError(w, err)
			return
		}
		items := visualization.Extract(payload)
		metrics.VisualizationsExtracted.Add(float64(len(items)))
		writeJSON(w, http.StatusOK, map[string]any{"visualizations": items})
	}
}

func ask(runner graph.Runner, maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if runner == nil {
			writeError(w, errx.Unavailable(nil, errx.AdvisorUnavailableMessage))
			return
		}
		var in model.AskInput
		if err := decodeBody(w, r, maxBody, &in); err != nil {
			writeError(w, err)
			return
		}

		res, err := runner.Ask(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		countKinds(res.Visualizations)
		writeJSON(w, http.StatusOK, res)
	}
}

type summariesRequest struct {
	Conversations []model.Conversation `json:"conversations"`
}

func summarizeConversations(maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req summariesRequest
		if err := decodeBody(w, r, maxBody, &req); err != nil {
			writeError(w, err)
			return
		}
		summaries := make([]model.ConversationSummary, 0, len(req.Conversations))
		for _, c := range req.Conversations {
			summaries = append(summaries, c.Summary())
		}
		model.SortSummaries(summaries)
		writeJSON(w, http.StatusOK, map[string]any{
			"conversations": summaries,
			"count":         len(summaries),
		})
	}
}

func countKinds(descriptors []visualization.Descriptor) {
	for _, d := range descriptors {
		metrics.VisualizationsNormalized.WithLabelValues(d.Kind.String()).Inc()
	}
}

// decodeBody decodes a size-limited JSON body into v. Syntax errors map to
// 400 and oversize bodies to 413.
func decodeBody(w http.ResponseWriter, r *http.Request, maxBody int64, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBody)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errx.New(err, http.StatusRequestEntityTooLarge, "request body too large")
		}
		if errors.Is(err, io.EOF) {
			return errx.BadRequest(err, "request body is empty")
		}
		return errx.BadRequest(err, "invalid JSON: "+err.Error())
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errx.BadRequest(err, "invalid JSON: trailing data")
	}
	return nil
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := errx.StatusOf(err)
	if status >= http.StatusInternalServerError {
		logx.Error().Err(err).Int("status", status).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Warn().Err(err).Msg("failed to encode response")
	}
}
