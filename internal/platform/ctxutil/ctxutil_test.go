package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLogFields(t *testing.T) {
	assert.Empty(t, LogFields(context.Background()))
	assert.Empty(t, LogFields(nil))

	id := uuid.New()
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t-1"})
	ctx = WithRequestData(ctx, &RequestData{EducatorID: id, Demo: true})

	assert.Equal(t, []interface{}{"trace_id", "t-1", "educator_id", id.String(), "demo", true}, LogFields(ctx))
	assert.Equal(t, id, EducatorID(ctx))
	assert.Equal(t, uuid.Nil, EducatorID(context.Background()))
}
