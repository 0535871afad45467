package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/educator-assistant-backend/internal/observability"
	"github.com/yungbote/educator-assistant-backend/internal/platform/ctxutil"
	"github.com/yungbote/educator-assistant-backend/internal/platform/envutil"
	"github.com/yungbote/educator-assistant-backend/internal/platform/httpx"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

// Message is one conversation turn. Role is "user" or "model".
type Message struct {
	Role string
	Text string
}

// Client generates chat completions with the Gemini generateContent API.
type Client interface {
	Chat(ctx context.Context, system string, history []Message) (string, error)
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	Temperature float64
	MaxTokens   int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:      envutil.String("GEMINI_API_KEY", ""),
		Model:       envutil.String("GEMINI_MODEL", "gemini-1.5-flash"),
		BaseURL:     envutil.String("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		Timeout:     envutil.Duration("GEMINI_TIMEOUT", 60*time.Second),
		MaxRetries:  envutil.Int("GEMINI_MAX_RETRIES", 2),
		Temperature: envutil.Float("GEMINI_TEMPERATURE", 0.3),
		MaxTokens:   envutil.Int("GEMINI_MAX_OUTPUT_TOKENS", 1024),
	}
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &client{
		log:        log.With("client", "GeminiClient", "model", cfg.Model),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata,omitempty"`
}

type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if len(msg) > 1000 {
		msg = msg[:1000] + "..."
	}
	if e.Status != "" {
		return fmt.Sprintf("gemini http %d %s: %s", e.StatusCode, e.Status, msg)
	}
	return fmt.Sprintf("gemini http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int { return e.StatusCode }

func (c *client) Chat(ctx context.Context, system string, history []Message) (string, error) {
	ctx = ctxutil.Default(ctx)
	if len(history) == 0 {
		return "", fmt.Errorf("gemini: at least one message required")
	}

	req := generateRequest{
		GenerationConfig: &generationConfig{MaxOutputTokens: c.cfg.MaxTokens},
	}
	if c.cfg.Temperature > 0 {
		t := c.cfg.Temperature
		req.GenerationConfig.Temperature = &t
	}
	if s := strings.TrimSpace(system); s != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: s}}}
	}
	for _, m := range history {
		role := "user"
		if m.Role == "model" || m.Role == "assistant" {
			role = "model"
		}
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		req.Contents = append(req.Contents, content{Role: role, Parts: []part{{Text: m.Text}}})
	}

	start := time.Now()
	out, err := c.generate(ctx, req)
	if err != nil {
		observability.ObserveLLMCall(c.cfg.Model, err, time.Since(start), 0, 0)
		return "", err
	}

	var sb strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	in, outTok := 0, 0
	if out.UsageMetadata != nil {
		in, outTok = out.UsageMetadata.PromptTokenCount, out.UsageMetadata.CandidatesTokenCount
	}
	if text == "" {
		err = errors.New("gemini: empty response")
	}
	observability.ObserveLLMCall(c.cfg.Model, err, time.Since(start), in, outTok)
	if err != nil {
		return "", err
	}
	c.log.Debug("gemini chat completed",
		"contents", len(req.Contents),
		"response_len", len(text),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

func (c *client) generate(ctx context.Context, req generateRequest) (*generateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}
	url := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)

	backoff := 500 * time.Millisecond
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		resp, out, err := c.doOnce(ctx, url, body)
		if err == nil {
			return out, nil
		}
		if !httpx.IsRetryableError(err) || attempt == c.cfg.MaxRetries {
			return nil, err
		}
		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 8*time.Second))
		c.log.Warn("Gemini request retrying",
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.SleepContext(ctx, sleepFor); err != nil {
			return nil, err
		}
		backoff *= 2
	}
	return nil, errors.New("unreachable retry loop")
}

func (c *client) doOnce(ctx context.Context, url string, body []byte) (*http.Response, *generateResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode != http.StatusOK {
		he := &HTTPError{StatusCode: resp.StatusCode, Message: string(raw)}
		var eb apiErrorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error.Message != "" {
			he.Message = eb.Error.Message
			he.Status = eb.Error.Status
		}
		return resp, nil, he
	}
	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return resp, nil, fmt.Errorf("gemini: decode response: %w", err)
	}
	return resp, &out, nil
}
