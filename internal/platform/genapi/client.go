package genapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/studyhub-backend/internal/platform/envutil"
	"github.com/yungbote/studyhub-backend/internal/platform/httpx"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

const (
	EndpointProcessPdf     = "handleProcessPdf"
	EndpointProcessBrief   = "handleProcessBrief"
	EndpointProcessQuiz    = "handleProcessQuiz"
	EndpointEvaluateAnswer = "evaluateAnswer"
)

// Client calls the external generation endpoints. Generation calls are never retried
// here: a timeout is handed back so the caller can reconcile against the store.
type Client interface {
	ProcessPdf(ctx context.Context, req ProcessRequest) (*FlashcardResult, error)
	ProcessBrief(ctx context.Context, req ProcessRequest) (*BriefResult, error)
	ProcessQuiz(ctx context.Context, req QuizRequest) error
	EvaluateAnswer(ctx context.Context, req EvaluateRequest) (*Evaluation, error)
}

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL:    envutil.String("GENERATION_BASE_URL", ""),
		APIKey:     envutil.String("GENERATION_API_KEY", ""),
		Timeout:    time.Duration(envutil.Int("GENERATION_TIMEOUT_SECONDS", 120)) * time.Second,
		MaxRetries: envutil.Int("GENERATION_MAX_RETRIES", 2),
	}
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	tracer     trace.Tracer
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("missing GENERATION_BASE_URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &client{
		log:        log.With("client", "GenerationAPI"),
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		tracer:     otel.Tracer("studyhub/genapi"),
	}, nil
}

func (c *client) ProcessPdf(ctx context.Context, req ProcessRequest) (*FlashcardResult, error) {
	var out FlashcardResult
	if err := c.call(ctx, EndpointProcessPdf, req, &out, 0); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) ProcessBrief(ctx context.Context, req ProcessRequest) (*BriefResult, error) {
	var out BriefResult
	if err := c.call(ctx, EndpointProcessBrief, req, &out, 0); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) ProcessQuiz(ctx context.Context, req QuizRequest) error {
	return c.call(ctx, EndpointProcessQuiz, req, nil, 0)
}

func (c *client) EvaluateAnswer(ctx context.Context, req EvaluateRequest) (*Evaluation, error) {
	var out Evaluation
	if err := c.call(ctx, EndpointEvaluateAnswer, req, &out, c.maxRetries); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) call(ctx context.Context, endpoint string, body any, out any, maxRetries int) error {
	ctx, span := c.tracer.Start(ctx, "genapi."+endpoint, trace.WithAttributes(attribute.String("genapi.endpoint", endpoint)))
	defer span.End()

	err := c.doWithRetry(ctx, endpoint, body, out, maxRetries)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("genapi.timeout", httpx.IsTimeout(err)))
	}
	return err
}

func (c *client) doOnce(ctx context.Context, endpoint string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, &buf)
	if err != nil {
		return nil, nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &HTTPError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

var retryBackoff = httpx.Backoff{Base: time.Second, Max: 10 * time.Second, Jitter: 0.2}

func (c *client) doWithRetry(ctx context.Context, endpoint string, body any, out any, maxRetries int) error {
	start := time.Now()

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		resp, raw, err := c.doOnce(ctx, endpoint, body)
		if err == nil {
			c.log.Debug("generation endpoint ok", "endpoint", endpoint, "duration_ms", time.Since(start).Milliseconds())
			return decode(endpoint, raw, out)
		}
		if attempt == maxRetries || !httpx.IsRetryable(err) {
			c.log.Debug("generation endpoint failed", "endpoint", endpoint, "error", err, "duration_ms", time.Since(start).Milliseconds())
			return err
		}

		sleepFor := retryBackoff.Delay(attempt, resp)
		c.log.Warn("generation request retrying",
			"endpoint", endpoint,
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		timer := time.NewTimer(sleepFor)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("unreachable retry loop")
}

func decode(endpoint string, raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		if out == nil {
			return nil
		}
		return &RemoteJobError{Endpoint: endpoint, Message: "empty response"}
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Success != nil && !*env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return &RemoteJobError{Endpoint: endpoint, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s decode error: %w", endpoint, err)
	}
	return nil
}
