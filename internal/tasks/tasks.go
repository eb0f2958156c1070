package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ddhiman-alt/nearpaws/internal/config"
	"github.com/ddhiman-alt/nearpaws/internal/email"
	"github.com/ddhiman-alt/nearpaws/internal/logging"
)

// TaskType defines the type of a background task.
const (
	TypeEmailDelivery = "email:deliver"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"

	emailMaxRetry = 5
)

// --- Task Client (Enqueuing tasks) ---

func redisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

func NewClient(cfg *config.Config) *asynq.Client {
	return asynq.NewClient(redisOpt(cfg))
}

// EmailTaskPayload is the payload of TypeEmailDelivery.
type EmailTaskPayload struct {
	To       string            `json:"to"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data"`
}

// NewEmailDeliveryTask builds an email task for one of the built-in templates.
func NewEmailDeliveryTask(payload EmailTaskPayload) (*asynq.Task, error) {
	if !KnownTemplate(payload.Template) {
		return nil, fmt.Errorf("unknown email template %q", payload.Template)
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal email task payload: %w", err)
	}
	return asynq.NewTask(TypeEmailDelivery, b, asynq.MaxRetry(emailMaxRetry), asynq.Queue(QueueDefault)), nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor holds the dependencies of the task handlers.
type TaskProcessor struct {
	cfg         *config.Config
	emailSender email.Sender
	now         func() time.Time
}

func NewTaskProcessor(cfg *config.Config, emailSender email.Sender) *TaskProcessor {
	return &TaskProcessor{
		cfg:         cfg,
		emailSender: emailSender,
		now:         time.Now,
	}
}

// SetupServer builds the worker server and its mux. The caller runs it.
func SetupServer(cfg *config.Config, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
			Logger:   newAsynqLogger(slog.Default()),
			LogLevel: asynq.InfoLevel,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				slog.ErrorContext(ctx, "task failed", "type", task.Type(), "payload", string(task.Payload()), logging.Err(err))
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmailDelivery, processor.HandleEmailDeliveryTask)
	slog.Info("registered background task handlers", "types", []string{TypeEmailDelivery})

	return srv, mux
}

// --- Task Handlers ---

// HandleEmailDeliveryTask renders the payload's template and hands the
// message to the email sender. Malformed payloads are not retried.
func (p *TaskProcessor) HandleEmailDeliveryTask(ctx context.Context, t *asynq.Task) error {
	var payload EmailTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email task payload: %v: %w", err, asynq.SkipRetry)
	}
	if strings.TrimSpace(payload.To) == "" {
		return fmt.Errorf("email task has no recipient: %w", asynq.SkipRetry)
	}

	data := make(map[string]string, len(payload.Data)+1)
	data["appName"] = p.cfg.AppName
	for k, v := range payload.Data {
		data[k] = v
	}

	subject, body, err := render(payload.Template, data)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	raw := p.buildMessage(payload.To, payload.Template, subject, body)
	if err := p.emailSender.Send(ctx, []string{payload.To}, subject, raw); err != nil {
		slog.WarnContext(ctx, "email delivery failed, will retry", "to", payload.To, "template", payload.Template, logging.Err(err))
		return err
	}

	slog.InfoContext(ctx, "email task processed", "to", payload.To, "template", payload.Template)
	return nil
}

func (p *TaskProcessor) buildMessage(to, templateName, subject, body string) []byte {
	from := p.cfg.SmtpFromAddress
	if from == "" {
		from = "noreply@nearpaws.com"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "To: %s\r\n", to)
	fmt.Fprintf(&sb, "From: %s\r\n", from)
	fmt.Fprintf(&sb, "Subject: %s\r\n", subject)
	fmt.Fprintf(&sb, "Date: %s\r\n", p.now().Format(time.RFC1123Z))
	fmt.Fprintf(&sb, "%s: %s\r\n", email.TemplateHeader, templateName)
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(sb.String())
}
