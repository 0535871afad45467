package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "educator",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "educator",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	llmCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "educator",
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "LLM API calls by model and status.",
		},
		[]string{"model", "status"},
	)

	llmCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "educator",
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "LLM API call latency.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	llmTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "educator",
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Tokens reported by the LLM API.",
		},
		[]string{"model", "direction"},
	)

	assistantTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "educator",
			Subsystem: "assistant",
			Name:      "turns_total",
			Help:      "Assistant turns by intent, classifier source and outcome.",
		},
		[]string{"intent", "source", "outcome"},
	)

	bulkMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "educator",
			Subsystem: "communications",
			Name:      "messages_total",
			Help:      "Per-recipient bulk messages by channel and result.",
		},
		[]string{"channel", "result"},
	)
)

func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func ObserveLLMCall(model string, err error, elapsed time.Duration, inputTokens, outputTokens int) {
	status := "success"
	if err != nil {
		status = "error"
	}
	llmCallsTotal.WithLabelValues(model, status).Inc()
	llmCallDuration.WithLabelValues(model).Observe(elapsed.Seconds())
	if inputTokens > 0 {
		llmTokensTotal.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		llmTokensTotal.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

func ObserveAssistantTurn(intent, source, outcome string) {
	assistantTurnsTotal.WithLabelValues(intent, source, outcome).Inc()
}

func ObserveBulkMessage(channel string, ok bool) {
	result := "sent"
	if !ok {
		result = "failed"
	}
	bulkMessagesTotal.WithLabelValues(channel, result).Inc()
}
