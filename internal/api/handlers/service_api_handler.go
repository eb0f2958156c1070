package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/ddhiman-alt/nearpaws/internal/api/middleware"
	"github.com/ddhiman-alt/nearpaws/internal/email"
	"github.com/ddhiman-alt/nearpaws/internal/logging"
)

// JsonApiRequest is a call to the internal service API.
type JsonApiRequest struct {
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// JsonApiResponse defines the structure for JSON API responses.
type JsonApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ApiError struct {
	Status  int
	Message string
}

func (e *ApiError) Error() string {
	return e.Message
}

func NewApiError(status int, message string) *ApiError {
	return &ApiError{Status: status, Message: message}
}

type apiMethodFunc func(c *gin.Context, args json.RawMessage) (any, *ApiError)

// MockEmailReader is the subset of *redis.Client getTestEmail needs.
type MockEmailReader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

const (
	testEmailPolls        = 10
	testEmailPollInterval = 200 * time.Millisecond
	testEmailTimeout      = 5 * time.Second
)

// ServiceApiHandler serves the service port used by operators and e2e tests.
type ServiceApiHandler struct {
	rdb          MockEmailReader
	shutdownChan chan<- struct{}
	pollInterval time.Duration
	methods      map[string]apiMethodFunc
}

func NewServiceApiHandler(rdb MockEmailReader, shutdownChan chan<- struct{}) *ServiceApiHandler {
	h := &ServiceApiHandler{
		rdb:          rdb,
		shutdownChan: shutdownChan,
		pollInterval: testEmailPollInterval,
	}
	h.methods = map[string]apiMethodFunc{
		"ping":         h.ping,
		"shutdown":     h.shutdown,
		"getTestEmail": h.getTestEmail,
	}
	return h
}

// HandleRequest dispatches POST /api by method name.
func (h *ServiceApiHandler) HandleRequest(c *gin.Context) {
	var req JsonApiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, JsonApiResponse{Error: "Invalid request format"})
		return
	}

	handlerFunc, ok := h.methods[req.Method]
	if !ok {
		c.JSON(http.StatusNotFound, JsonApiResponse{Error: fmt.Sprintf("Unknown service method: %s", req.Method)})
		return
	}

	result, apiErr := handlerFunc(c, req.Arguments)
	if apiErr != nil {
		c.JSON(apiErr.Status, JsonApiResponse{Error: apiErr.Message})
		return
	}
	c.JSON(http.StatusOK, JsonApiResponse{Success: true, Data: result})
}

func (h *ServiceApiHandler) ping(*gin.Context, json.RawMessage) (any, *ApiError) {
	return "pong", nil
}

func (h *ServiceApiHandler) shutdown(c *gin.Context, _ json.RawMessage) (any, *ApiError) {
	logger := middleware.LoggerFrom(c)
	logger.Info("shutdown requested via service API")
	select {
	case h.shutdownChan <- struct{}{}:
	default:
		logger.Warn("shutdown already in progress")
	}
	return "Shutdown initiated", nil
}

// getTestEmail takes [template, email] and returns the stored mock email,
// polling briefly since delivery runs in the background worker. The key is
// deleted once read.
func (h *ServiceApiHandler) getTestEmail(c *gin.Context, args json.RawMessage) (any, *ApiError) {
	var params []string
	if err := json.Unmarshal(args, &params); err != nil || len(params) != 2 {
		return nil, NewApiError(http.StatusBadRequest, "Invalid arguments: expected JSON array [template, email]")
	}
	if h.rdb == nil {
		return nil, NewApiError(http.StatusServiceUnavailable, "Redis is not configured")
	}
	key := email.MockEmailKey(params[1], params[0])

	ctx, cancel := context.WithTimeout(c.Request.Context(), testEmailTimeout)
	defer cancel()

	for i := 0; i < testEmailPolls; i++ {
		raw, err := h.rdb.Get(ctx, key).Result()
		if err == nil {
			h.rdb.Del(ctx, key)
			var stored email.MockEmail
			if err := json.Unmarshal([]byte(raw), &stored); err != nil {
				middleware.LoggerFrom(c).Error("failed to decode stored email", "key", key, logging.Err(err))
				return nil, NewApiError(http.StatusInternalServerError, "Failed to parse stored email data")
			}
			return stored, nil
		}
		if !errors.Is(err, redis.Nil) {
			middleware.LoggerFrom(c).Error("failed to read stored email", "key", key, logging.Err(err))
			return nil, NewApiError(http.StatusInternalServerError, "Redis error")
		}

		select {
		case <-ctx.Done():
			return nil, NewApiError(http.StatusNotFound, fmt.Sprintf("Test email not found in Redis for key %s", key))
		case <-time.After(h.pollInterval):
		}
	}
	return nil, NewApiError(http.StatusNotFound, fmt.Sprintf("Test email not found in Redis for key %s", key))
}
