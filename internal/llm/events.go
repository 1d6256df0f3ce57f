package llm

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/examforge/examforge/internal/store"
)

// RecordEvents logs every call and appends it to repo as a request event
// (prompt, completion, tokens, latency, outcome). A nil repo keeps only the
// log line. A failed append never fails the call.
func RecordEvents(backend string, repo store.EventRepo) Middleware {
	return func(next Provider) Provider {
		return wrapped{next: next, complete: func(ctx context.Context, req Request) (*Completion, error) {
			start := time.Now()
			c, err := next.Complete(ctx, req)

			ev := store.LLMRequestEventData{
				Provider:    backend,
				Model:       next.Model(),
				Purpose:     cmp.Or(PurposeFrom(ctx), "unlabelled"),
				LatencyMs:   time.Since(start).Milliseconds(),
				Success:     err == nil,
				RequestBody: transcript(req),
			}
			if c != nil {
				ev.Model = cmp.Or(c.Model, ev.Model)
				ev.InputTokens = c.Usage.InputTokens
				ev.OutputTokens = c.Usage.OutputTokens
				ev.ResponseBody = c.Text
			}
			log := slog.With("provider", backend, "model", ev.Model, "purpose", ev.Purpose, "latency_ms", ev.LatencyMs)
			if err != nil {
				ev.ErrorMessage = err.Error()
				ev.ResponseBody = rejectedText(err)
				log.WarnContext(ctx, "completion failed", "error", err)
			} else {
				log.DebugContext(ctx, "completion", "input_tokens", ev.InputTokens, "output_tokens", ev.OutputTokens)
			}

			if repo != nil {
				if aerr := repo.AppendLLMRequest(ctx, ev); aerr != nil {
					slog.WarnContext(ctx, "record completion event", "error", aerr)
				}
			}
			return c, err
		}}
	}
}

// transcript renders a request the way it is shown by `examforge llm view`.
func transcript(req Request) string {
	var b strings.Builder
	section := func(title, body string) {
		b.WriteString("[" + title + "]\n")
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	if req.System != "" {
		section("system", req.System)
	}
	section("prompt", req.Prompt)
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			section("schema "+req.Schema.Name, string(def))
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// rejectedText recovers the model output carried by a rejection error.
func rejectedText(err error) string {
	var (
		mismatch *ErrSchemaMismatch
		trunc    *ErrTruncated
	)
	switch {
	case errors.As(err, &mismatch):
		return mismatch.Content
	case errors.As(err, &trunc):
		return trunc.Content
	}
	return ""
}
