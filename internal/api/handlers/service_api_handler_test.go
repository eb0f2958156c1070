package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ddhiman-alt/nearpaws/internal/email"
)

type MockEmailStore struct {
	mock.Mock
}

func (m *MockEmailStore) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return redis.NewStringResult(args.String(0), args.Error(1))
}

func (m *MockEmailStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return redis.NewIntResult(int64(args.Int(0)), args.Error(1))
}

func newServiceRouter(rdb MockEmailReader, shutdown chan struct{}) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewServiceApiHandler(rdb, shutdown)
	h.pollInterval = time.Millisecond
	r := gin.New()
	r.POST("/api", h.HandleRequest)
	return r
}

func call(t *testing.T, r *gin.Engine, body string) (int, JsonApiResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp JsonApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestServiceApi_Shutdown(t *testing.T) {
	shutdown := make(chan struct{}, 1)
	r := newServiceRouter(nil, shutdown)

	code, resp := call(t, r, `{"method":"shutdown"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
	assert.Len(t, shutdown, 1)

	// A second call does not block on the full channel.
	code, _ = call(t, r, `{"method":"shutdown"}`)
	assert.Equal(t, http.StatusOK, code)
}

func TestServiceApi_UnknownMethodAndBadBody(t *testing.T) {
	r := newServiceRouter(nil, make(chan struct{}, 1))

	code, resp := call(t, r, `{"method":"dropDatabase"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Unknown service method: dropDatabase", resp.Error)

	code, resp = call(t, r, `not json`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)
}

func TestServiceApi_GetTestEmail(t *testing.T) {
	store := new(MockEmailStore)
	r := newServiceRouter(store, make(chan struct{}, 1))
	key := email.MockEmailKey("Ana@Example.com", "adoption_requested")

	stored, err := json.Marshal(email.MockEmail{To: "ana@example.com", Subject: "New adoption request", Template: "adoption_requested"})
	require.NoError(t, err)
	store.On("Get", mock.Anything, key).Return("", redis.Nil).Once()
	store.On("Get", mock.Anything, key).Return(string(stored), nil).Once()
	store.On("Del", mock.Anything, []string{key}).Return(1, nil).Once()

	code, resp := call(t, r, `{"method":"getTestEmail","arguments":["adoption_requested","Ana@Example.com"]}`)
	require.Equal(t, http.StatusOK, code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "New adoption request", data["subject"])
	store.AssertExpectations(t)
}

func TestServiceApi_GetTestEmail_NotFound(t *testing.T) {
	store := new(MockEmailStore)
	r := newServiceRouter(store, make(chan struct{}, 1))
	store.On("Get", mock.Anything, mock.Anything).Return("", redis.Nil)

	code, resp := call(t, r, `{"method":"getTestEmail","arguments":["adoption_accepted","bo@example.com"]}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, resp.Error, "mockemail:bo@example.com:adoption_accepted")
	store.AssertNumberOfCalls(t, "Get", testEmailPolls)
}

func TestServiceApi_GetTestEmail_BadArguments(t *testing.T) {
	r := newServiceRouter(new(MockEmailStore), make(chan struct{}, 1))

	code, resp := call(t, r, `{"method":"getTestEmail","arguments":["only-one"]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Error, "[template, email]")
}
