package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/store/memstore"
	"github.com/ddhiman-alt/nearpaws/internal/tasks"
)

func quietBus(buf *bytes.Buffer) *Bus {
	return NewBus(slog.New(slog.NewTextHandler(buf, nil)))
}

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := quietBus(&bytes.Buffer{})
	var got []string
	bus.Subscribe(func(context.Context, Event) error { got = append(got, "first"); return nil })
	bus.Subscribe(func(context.Context, Event) error { got = append(got, "second"); return nil })
	bus.Subscribe(func(context.Context, Event) error { got = append(got, "third"); return nil })

	bus.Publish(context.Background(), Event{Type: AdoptionRequested})
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := quietBus(&bytes.Buffer{})
	calls := 0
	unsubscribe := bus.Subscribe(func(context.Context, Event) error { calls++; return nil })
	keep := bus.Subscribe(func(context.Context, Event) error { return nil })
	defer keep()

	bus.Publish(context.Background(), Event{})
	unsubscribe()
	unsubscribe()
	bus.Publish(context.Background(), Event{})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, bus.Len())
}

func TestBus_SubscriberFailureIsIsolated(t *testing.T) {
	var logs bytes.Buffer
	bus := quietBus(&logs)
	reached := false
	bus.Subscribe(func(context.Context, Event) error { return errors.New("redis down") })
	bus.Subscribe(func(context.Context, Event) error { panic("boom") })
	bus.Subscribe(func(context.Context, Event) error { reached = true; return nil })

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), Event{Type: AdoptionAccepted, RequestID: primitive.NewObjectID()})
	})
	assert.True(t, reached)
	assert.Contains(t, logs.String(), "redis down")
	assert.Contains(t, logs.String(), "subscriber panicked: boom")
}

func TestBus_ConcurrentSubscribeAndPublish(t *testing.T) {
	bus := quietBus(&bytes.Buffer{})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unsub := bus.Subscribe(func(context.Context, Event) error { return nil })
			unsub()
		}()
		go func() {
			defer wg.Done()
			bus.Publish(context.Background(), Event{})
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, bus.Len())
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "1"}, nil
}

func notifierFixture(t *testing.T) (*EmailNotifier, *fakeEnqueuer, *models.User, *models.User) {
	t.Helper()
	stores := memstore.New()
	owner := &models.User{Name: "Priya", Email: "priya@example.com"}
	requester := &models.User{Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, stores.Users.Insert(context.Background(), owner))
	require.NoError(t, stores.Users.Insert(context.Background(), requester))

	enq := &fakeEnqueuer{}
	return NewEmailNotifier(stores.Users, enq), enq, owner, requester
}

func decodePayload(t *testing.T, task *asynq.Task) tasks.EmailTaskPayload {
	t.Helper()
	var p tasks.EmailTaskPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	return p
}

func TestEmailNotifier_RoutesRecipients(t *testing.T) {
	tests := []struct {
		event        EventType
		wantTo       string
		wantTemplate string
	}{
		{AdoptionRequested, "priya@example.com", tasks.TemplateAdoptionRequested},
		{AdoptionWithdrawn, "priya@example.com", tasks.TemplateAdoptionWithdrawn},
		{AdoptionAccepted, "asha@example.com", tasks.TemplateAdoptionAccepted},
		{AdoptionRejected, "asha@example.com", tasks.TemplateAdoptionRejected},
	}
	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			n, enq, owner, requester := notifierFixture(t)
			err := n.Handle(context.Background(), Event{
				Type:        tt.event,
				PetName:     "Milo",
				OwnerID:     owner.ID,
				RequesterID: requester.ID,
			})
			require.NoError(t, err)
			require.Len(t, enq.tasks, 1)

			p := decodePayload(t, enq.tasks[0])
			assert.Equal(t, tt.wantTo, p.To)
			assert.Equal(t, tt.wantTemplate, p.Template)
			assert.Equal(t, "Milo", p.Data["petName"])
			assert.Equal(t, "Priya", p.Data["ownerName"])
			assert.Equal(t, "Asha", p.Data["requesterName"])
		})
	}
}

func TestEmailNotifier_Errors(t *testing.T) {
	n, enq, owner, _ := notifierFixture(t)

	err := n.Handle(context.Background(), Event{Type: AdoptionAccepted, OwnerID: owner.ID, RequesterID: primitive.NewObjectID()})
	assert.ErrorContains(t, err, "no longer exists")

	enq.err = errors.New("redis: connection refused")
	err = n.Handle(context.Background(), Event{Type: AdoptionRequested, OwnerID: owner.ID})
	assert.ErrorIs(t, err, enq.err)

	assert.NoError(t, n.Handle(context.Background(), Event{Type: "adoption.unknown"}))
}

type fakePubSub struct {
	channel string
	message interface{}
	err     error
}

func (f *fakePubSub) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel, f.message = channel, message
	return redis.NewIntResult(1, f.err)
}

func TestRedisPublisher_PublishesJSON(t *testing.T) {
	rdb := &fakePubSub{}
	p := NewRedisPublisher(rdb, "nearpaws:adoption-events")
	e := Event{Type: AdoptionAccepted, RequestID: primitive.NewObjectID(), PetName: "Milo", At: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}

	require.NoError(t, p.Handle(context.Background(), e))
	assert.Equal(t, "nearpaws:adoption-events", rdb.channel)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(rdb.message.([]byte), &decoded))
	assert.Equal(t, "adoption.accepted", decoded["type"])
	assert.Equal(t, e.RequestID.Hex(), decoded["requestId"])

	rdb.err = errors.New("publish failed")
	assert.Error(t, p.Handle(context.Background(), e))
}
