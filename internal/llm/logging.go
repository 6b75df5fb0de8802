package llm

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LoggingProvider is a decorator that logs every LLM request.
type LoggingProvider struct {
	inner    Provider
	provider string
	log      logrus.FieldLogger
}

// WithLogging wraps a Provider with request logging. A nil logger discards.
func WithLogging(p Provider, provider string, log logrus.FieldLogger) Provider {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &LoggingProvider{inner: p, provider: provider, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	requestID := uuid.NewString()

	entry := l.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"provider":   l.provider,
		"model":      l.inner.ModelID(),
		"purpose":    PurposeFrom(ctx),
	})
	entry.WithFields(requestFields(req)).Debug("LLM request")

	resp, err := l.inner.Generate(ctx, req)

	entry = entry.WithField("latency_ms", time.Since(start).Milliseconds())

	if err != nil {
		entry.WithError(err).Warn("LLM request failed")
		return nil, err
	}

	fields := logrus.Fields{
		"input_tokens":  resp.Usage.InputTokens,
		"output_tokens": resp.Usage.OutputTokens,
		"stop_reason":   resp.StopReason,
	}
	if resp.Model != "" {
		fields["model"] = resp.Model
	}
	if cost := LookupCost(resp.Model); cost != nil {
		fields["cost_usd"] = cost.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}
	entry.WithFields(fields).Info("LLM request completed")

	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// requestFields summarizes the request without dumping image payloads.
func requestFields(req Request) logrus.Fields {
	var textLen, images, imageBytes int
	for _, m := range req.Messages {
		textLen += len(m.Text())
		for _, img := range m.Images() {
			images++
			imageBytes += len(img.Data)
		}
	}
	return logrus.Fields{
		"messages":    len(req.Messages),
		"prompt_len":  textLen,
		"images":      images,
		"image_bytes": imageBytes,
	}
}
