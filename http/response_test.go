package http_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	filecrud "github.com/Yashchauhan008/file-crud"
	filecrudhttp "github.com/Yashchauhan008/file-crud/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "validation",
			err:         fmt.Errorf("create resource: %w", filecrud.ErrValidation),
			wantStatus:  http.StatusBadRequest,
			wantCode:    filecrudhttp.CodeValidation,
			wantMessage: "Invalid request",
		},
		{
			name:        "operational validation",
			err:         filecrud.Operational(fmt.Errorf("%w: title required", filecrud.ErrValidation), "title required"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    filecrudhttp.CodeValidation,
			wantMessage: "title required",
		},
		{
			name:        "not found",
			err:         fmt.Errorf("get resource abc: %w", filecrud.ErrNotFound),
			wantStatus:  http.StatusNotFound,
			wantCode:    filecrudhttp.CodeNotFound,
			wantMessage: "Resource not found",
		},
		{
			name:        "upstream hides cause",
			err:         fmt.Errorf("list resources: %w: %w", filecrud.ErrUpstream, errors.New("dial tcp 10.0.0.1:27017: refused")),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    filecrudhttp.CodeUpstream,
			wantMessage: "Storage service error",
		},
		{
			name:        "operational upstream",
			err:         filecrud.Operational(fmt.Errorf("%w: bucket gone", filecrud.ErrUpstream), "Blob storage is unavailable"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    filecrudhttp.CodeUpstream,
			wantMessage: "Blob storage is unavailable",
		},
		{
			name:        "canceled",
			err:         fmt.Errorf("list resources: %w", context.Canceled),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    filecrudhttp.CodeInternal,
			wantMessage: "Request canceled",
		},
		{
			name:        "unknown",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    filecrudhttp.CodeInternal,
			wantMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			filecrudhttp.HandleError(rec, tt.err, false)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantCode, env.Error)
			assert.Equal(t, tt.wantMessage, env.Message)
			assert.Empty(t, env.Stack)
		})
	}
}

func TestHandleError_Stack(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("delete resource abc: %w: %w", filecrud.ErrUpstream, cause)

	rec := httptest.NewRecorder()
	filecrudhttp.HandleError(rec, err, true)

	env := decodeEnvelope(t, rec)
	lines := strings.Split(env.Stack, "\n")
	assert.Equal(t, []string{
		"delete resource abc: upstream store error: connection reset",
		"  upstream store error",
		"  connection reset",
	}, lines)
}

func TestHandleError_StackFollowsSingleWraps(t *testing.T) {
	err := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", filecrud.ErrNotFound))

	rec := httptest.NewRecorder()
	filecrudhttp.HandleError(rec, err, true)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, "outer: inner: not found\ninner: not found\nnot found", env.Stack)
}

func TestHandler_StackOnlyOutsideProduction(t *testing.T) {
	tests := []struct {
		env       filecrud.Env
		wantStack bool
	}{
		{filecrud.EnvDevelopment, true},
		{filecrud.EnvProduction, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.env), func(t *testing.T) {
			router, service := newTestHandler(t, filecrudhttp.HandlerConfig{Env: tt.env})
			service.On("Get", mock.Anything, "abc").
				Return(filecrud.Resource{}, fmt.Errorf("get resource abc: %w", filecrud.ErrNotFound))

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/resources/abc", nil))

			env := decodeEnvelope(t, rec)
			if tt.wantStack {
				assert.Contains(t, env.Stack, "get resource abc: not found")
			} else {
				assert.Empty(t, env.Stack)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	err := filecrudhttp.WriteJSON(rec, http.StatusCreated, filecrudhttp.Response{Success: true, Message: "made"})

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"made"}`, rec.Body.String())
}
