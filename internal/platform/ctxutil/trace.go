package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type traceDataKey struct{}

// TraceData correlates logs, responses and spans for one request.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields returns the trace, request and educator ids carried by ctx as
// logger key/value pairs. Empty ids are omitted.
func LogFields(ctx context.Context) []interface{} {
	var kv []interface{}
	if td := GetTraceData(ctx); td != nil {
		if td.TraceID != "" {
			kv = append(kv, "trace_id", td.TraceID)
		}
		if td.RequestID != "" {
			kv = append(kv, "request_id", td.RequestID)
		}
	}
	if rd := GetRequestData(ctx); rd != nil && rd.EducatorID != uuid.Nil {
		kv = append(kv, "educator_id", rd.EducatorID.String())
		if rd.Demo {
			kv = append(kv, "demo", true)
		}
	}
	return kv
}
