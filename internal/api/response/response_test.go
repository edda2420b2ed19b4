package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	handler(c)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestResponses(t *testing.T) {
	tests := []struct {
		name        string
		handler     gin.HandlerFunc
		wantStatus  int
		wantSuccess bool
		wantExtras  map[string]any
	}{
		{
			name:        "success",
			handler:     func(c *gin.Context) { SuccessResponse(c, gin.H{"id": "g1"}) },
			wantStatus:  http.StatusOK,
			wantSuccess: true,
			wantExtras:  map[string]any{"id": "g1"},
		},
		{
			name:        "content",
			handler:     func(c *gin.Context) { SuccessResponseContent(c, "ok") },
			wantStatus:  http.StatusOK,
			wantSuccess: true,
			wantExtras:  map[string]any{"content": "ok"},
		},
		{
			name:        "created",
			handler:     func(c *gin.Context) { CreatedResponse(c, gin.H{"id": "g2"}) },
			wantStatus:  http.StatusCreated,
			wantSuccess: true,
			wantExtras:  map[string]any{"id": "g2"},
		},
		{
			name:        "error",
			handler:     func(c *gin.Context) { ErrorResponse(c, http.StatusConflict, "cell already occupied") },
			wantStatus:  http.StatusConflict,
			wantSuccess: false,
			wantExtras:  map[string]any{"message": "cell already occupied"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := record(t, tt.handler)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantSuccess, body["success"])
			assert.EqualValues(t, tt.wantStatus, body["code"])
			assert.Equal(t, tt.wantExtras, body["extras"])
		})
	}
}
