package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVs(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"password", "hunter2",
		"educator_id", "7b0c1f9e-0000-0000-0000-000000000001",
		"path", "/api/v1/students",
		"dangling",
	})

	assert.Equal(t, "[REDACTED]", out[1])
	hashed, ok := out[3].(string)
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(hashed, "hash:"))
	assert.Equal(t, "/api/v1/students", out[5])
	assert.Equal(t, "dangling", out[6])
}

func TestLooksLikeJWT(t *testing.T) {
	assert.True(t, looksLikeJWT("eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTYifQ.sig"))
	assert.False(t, looksLikeJWT("not.a.jwt"))
	assert.False(t, looksLikeJWT("plain"))
}

type slots map[string]string

func TestSanitizeNestedValues(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		check func(t *testing.T, got interface{})
	}{
		{
			name: "named string map",
			value: slots{
				"recipient": "Ana Lopez",
				"content":   "bring your textbook",
				"email":     "guardian@example.com",
				"datetime":  "2026-10-16T15:00:00Z",
			},
			check: func(t *testing.T, got interface{}) {
				m, ok := got.(map[string]interface{})
				assert.True(t, ok)
				assert.True(t, strings.HasPrefix(m["recipient"].(string), "hash:"))
				assert.Equal(t, "[19 chars]", m["content"])
				assert.Equal(t, "[REDACTED]", m["email"])
				assert.Equal(t, "2026-10-16T15:00:00Z", m["datetime"])
			},
		},
		{
			name: "map inside slice",
			value: []interface{}{
				map[string]interface{}{"student_id": "s-1", "body": "hi"},
				"eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTYifQ.sig",
			},
			check: func(t *testing.T, got interface{}) {
				list, ok := got.([]interface{})
				assert.True(t, ok)
				assert.Len(t, list, 2)
				inner := list[0].(map[string]interface{})
				assert.True(t, strings.HasPrefix(inner["student_id"].(string), "hash:"))
				assert.Equal(t, "[2 chars]", inner["body"])
				assert.Equal(t, "[REDACTED]", list[1])
			},
		},
		{
			name:  "non string keys untouched",
			value: map[int]string{1: "guardian@example.com"},
			check: func(t *testing.T, got interface{}) {
				assert.Equal(t, map[int]string{1: "guardian@example.com"}, got)
			},
		},
		{
			name:  "bytes untouched",
			value: []byte("raw"),
			check: func(t *testing.T, got interface{}) {
				assert.Equal(t, []byte("raw"), got)
			},
		},
		{
			name:  "nil slots",
			value: slots(nil),
			check: func(t *testing.T, got interface{}) {
				m, ok := got.(map[string]interface{})
				assert.True(t, ok)
				assert.Empty(t, m)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := sanitizeKVs([]interface{}{"slots", tc.value})
			assert.Equal(t, "slots", out[0])
			tc.check(t, out[1])
		})
	}
}

func TestSanitizeDepthLimit(t *testing.T) {
	var v interface{} = map[string]interface{}{"password": "x"}
	for i := 0; i < maxSanitizeDepth+1; i++ {
		v = []interface{}{v}
	}
	out := sanitizeKVs([]interface{}{"nested", v})

	cur := out[1]
	for i := 0; i < maxSanitizeDepth; i++ {
		list, ok := cur.([]interface{})
		assert.True(t, ok)
		cur = list[0]
	}
	// Past the limit the value is passed through as-is.
	raw, ok := cur.([]interface{})
	assert.True(t, ok)
	assert.Equal(t, map[string]interface{}{"password": "x"}, raw[0])
}
