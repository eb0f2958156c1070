package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	mockEmailKeyPrefix = "mockemail"
	mockEmailTTL       = 5 * time.Minute
	unknownTemplate    = "unknown"
)

// redisSetter is the subset of *redis.Client the mock sender needs.
type redisSetter interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisSender stores messages in Redis instead of sending them
// (MOCK_SERVICES=true). The service API reads them back by recipient and
// template.
type RedisSender struct {
	client      redisSetter
	fromAddress string
}

func NewRedisSender(client redisSetter, fromAddress string) Sender {
	return &RedisSender{client: client, fromAddress: fromAddress}
}

// MockEmailKey is the Redis key of the last message to "to" rendered from template.
func MockEmailKey(to, template string) string {
	return fmt.Sprintf("%s:%s:%s", mockEmailKeyPrefix, strings.ToLower(to), template)
}

// MockEmail is the stored form of a message.
type MockEmail struct {
	To       string `json:"to"`
	From     string `json:"from"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Template string `json:"template"`
	SentAt   string `json:"sent_at"`
}

// parseMessage splits the template header and the body out of a raw message.
func parseMessage(rawMessage []byte) (template, body string) {
	msg, err := mail.ReadMessage(bytes.NewReader(rawMessage))
	if err != nil {
		return unknownTemplate, string(rawMessage)
	}
	template = msg.Header.Get(TemplateHeader)
	if template == "" {
		template = unknownTemplate
	}
	b, err := io.ReadAll(msg.Body)
	if err != nil {
		return template, string(rawMessage)
	}
	return template, strings.TrimRight(string(b), "\r\n")
}

func (s *RedisSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	primaryTo := ""
	if len(to) > 0 {
		primaryTo = to[0]
	}
	template, body := parseMessage(rawMessage)

	data, err := json.Marshal(MockEmail{
		To:       strings.Join(to, ", "),
		From:     s.fromAddress,
		Subject:  subject,
		Body:     body,
		Template: template,
		SentAt:   time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email data: %w", err)
	}

	key := MockEmailKey(primaryTo, template)
	if err := s.client.Set(ctx, key, data, mockEmailTTL).Err(); err != nil {
		return fmt.Errorf("failed to store email in Redis key '%s': %w", key, err)
	}

	slog.DebugContext(ctx, "mock email stored in redis", "key", key, "ttl", mockEmailTTL, "subject", subject)
	return nil
}
