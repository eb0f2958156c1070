package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/store"
	"github.com/ddhiman-alt/nearpaws/internal/tasks"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EmailNotifier turns adoption events into email tasks. The owner hears about
// new and withdrawn requests, the requester about decisions.
type EmailNotifier struct {
	users    store.UserStore
	enqueuer Enqueuer
}

func NewEmailNotifier(users store.UserStore, enqueuer Enqueuer) *EmailNotifier {
	return &EmailNotifier{users: users, enqueuer: enqueuer}
}

var eventTemplates = map[EventType]string{
	AdoptionRequested: tasks.TemplateAdoptionRequested,
	AdoptionAccepted:  tasks.TemplateAdoptionAccepted,
	AdoptionRejected:  tasks.TemplateAdoptionRejected,
	AdoptionWithdrawn: tasks.TemplateAdoptionWithdrawn,
}

func (n *EmailNotifier) name(ctx context.Context, id primitive.ObjectID) string {
	u, err := n.users.FindByID(ctx, id)
	if err != nil {
		return ""
	}
	return u.Name
}

// Handle is a Bus Handler.
func (n *EmailNotifier) Handle(ctx context.Context, e Event) error {
	template, ok := eventTemplates[e.Type]
	if !ok {
		return nil
	}

	recipientID := e.OwnerID
	if e.Type == AdoptionAccepted || e.Type == AdoptionRejected {
		recipientID = e.RequesterID
	}
	recipient, err := n.users.FindByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("recipient %s of %s no longer exists", recipientID.Hex(), e.Type)
		}
		return fmt.Errorf("failed to load recipient of %s: %w", e.Type, err)
	}

	data := map[string]string{
		"recipientName": recipient.Name,
		"petName":       e.PetName,
		"message":       e.Message,
	}
	if recipientID == e.OwnerID {
		data["ownerName"] = recipient.Name
		data["requesterName"] = n.name(ctx, e.RequesterID)
	} else {
		data["requesterName"] = recipient.Name
		data["ownerName"] = n.name(ctx, e.OwnerID)
	}

	task, err := tasks.NewEmailDeliveryTask(tasks.EmailTaskPayload{
		To:       recipient.Email,
		Template: template,
		Data:     data,
	})
	if err != nil {
		return err
	}
	if _, err := n.enqueuer.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue %s email: %w", e.Type, err)
	}
	return nil
}
