package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrorCode(CodedErrorf(http.StatusBadRequest, "bad")))
	assert.Equal(t, http.StatusServiceUnavailable, ErrorCode(fmt.Errorf("wrapped: %w", CodedError(http.StatusServiceUnavailable, errors.New("down")))))
	assert.Equal(t, http.StatusInternalServerError, ErrorCode(errors.New("plain")))
}

func TestRestHandlerErrors(t *testing.T) {
	h := RestHandler(func(r *http.Request) (any, error) {
		return nil, errors.New("uncoded failure")
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"uncoded failure"}`, rec.Body.String())
}

func TestRestHandlerUnserializable(t *testing.T) {
	h := RestHandler(func(r *http.Request) (any, error) {
		return map[string]any{"ch": make(chan int)}, nil
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "error serializing response body")
}

func TestPartFilename(t *testing.T) {
	name, ok := partFilename(`form-data; name="file"; filename="leaf.jpg"`)
	assert.True(t, ok)
	assert.Equal(t, "leaf.jpg", name)

	name, ok = partFilename(`form-data; name="file"; filename=""`)
	assert.True(t, ok)
	assert.Equal(t, "", name)

	_, ok = partFilename(`form-data; name="file"`)
	assert.False(t, ok)
}

func TestIsFalsy(t *testing.T) {
	for _, v := range []any{nil, false, "", []any{}} {
		assert.True(t, isFalsy(v), "%#v", v)
	}
	for _, v := range []any{true, "x", []any{1}, map[string]any{}} {
		assert.False(t, isFalsy(v), "%#v", v)
	}
}
