package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task_backend/internal/platform/apperr"
)

type sampleRequest struct {
	Title       string  `json:"title" binding:"max=5"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=10"`
	Done        *bool   `json:"done,omitempty"`
}

func newContext(body string, limit int64) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if limit > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, limit)
	}
	c.Request = req
	return c
}

func TestJSON(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		limit    int64
		wantKind apperr.Kind
		wantMsg  string
	}{
		{name: "valid body", body: `{"title":"abc","done":true}`},
		{name: "empty body", body: ``},
		{name: "malformed json", body: `{"title":`, wantKind: apperr.KindValidation, wantMsg: "invalid JSON body"},
		{name: "unknown field", body: `{"title":"a","owner":"x"}`, wantKind: apperr.KindValidation, wantMsg: `unknown field "owner"`},
		{name: "trailing data", body: `{"title":"a"} {}`, wantKind: apperr.KindValidation, wantMsg: "invalid JSON body"},
		{name: "wrong type", body: `{"done":"yes"}`, wantKind: apperr.KindValidation, wantMsg: "done has an invalid type"},
		{name: "too long title", body: `{"title":"abcdef"}`, wantKind: apperr.KindValidation, wantMsg: "title must be at most 5 characters"},
		{name: "multibyte title counts runes", body: `{"title":"日本語です"}`},
		{name: "body over limit", body: `{"title":"` + strings.Repeat("a", 64) + `"}`, limit: 16, wantKind: apperr.KindTooLarge, wantMsg: "request body too large"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req sampleRequest
			err := JSON(newContext(tc.body, tc.limit), &req)

			if tc.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.wantKind, apperr.KindOf(err))
			var ae *apperr.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tc.wantMsg, ae.Message)
		})
	}
}

func TestJSON_PointerFieldsDistinguishAbsentFromZero(t *testing.T) {
	var req sampleRequest
	require.NoError(t, JSON(newContext(`{"done":false,"description":""}`, 0), &req))

	require.NotNil(t, req.Done)
	assert.False(t, *req.Done)
	require.NotNil(t, req.Description)
	assert.Equal(t, "", *req.Description)
}

func TestStruct_RequiredMessage(t *testing.T) {
	type withRequired struct {
		Name string `json:"name" binding:"required"`
	}

	err := Struct(&withRequired{})

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "name is required", ae.Message)
}
