package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/educator-assistant-backend/internal/platform/apierr"
)

func TestRespondAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody APIError
	}{
		{"not found", apierr.NotFound("student"), http.StatusNotFound, APIError{Message: "student not found", Code: "not_found"}},
		{"wrapped conflict", errors.Join(errors.New("ctx"), apierr.Conflict("email_taken", errors.New("taken"))), http.StatusConflict, APIError{Message: "taken", Code: "email_taken"}},
		{"internal hides detail", apierr.Internal(errors.New("db exploded")), http.StatusInternalServerError, APIError{Message: "internal server error", Code: "internal"}},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, APIError{Message: "internal server error", Code: "internal"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondAPIError(c, tc.err)

			assert.Equal(t, tc.wantCode, rec.Code)
			var env ErrorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, tc.wantBody, env.Error)
		})
	}
}
