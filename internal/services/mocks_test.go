package services

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/notify"
	"github.com/ddhiman-alt/nearpaws/internal/search"
	"github.com/ddhiman-alt/nearpaws/internal/store"
)

// --- Mocks ---

type MockPetStore struct {
	mock.Mock
}

func (m *MockPetStore) Insert(ctx context.Context, pet *models.Pet) error {
	return m.Called(ctx, pet).Error(0)
}

func (m *MockPetStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Pet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pet), args.Error(1)
}

func (m *MockPetStore) FindResultByID(ctx context.Context, id primitive.ObjectID) (*models.PetResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PetResult), args.Error(1)
}

func (m *MockPetStore) Replace(ctx context.Context, pet *models.Pet) error {
	return m.Called(ctx, pet).Error(0)
}

func (m *MockPetStore) SetStatus(ctx context.Context, id primitive.ObjectID, status models.PetStatus, now time.Time) (*models.Pet, error) {
	args := m.Called(ctx, id, status, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pet), args.Error(1)
}

func (m *MockPetStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPetStore) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Pet, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Pet), args.Error(1)
}

func (m *MockPetStore) List(ctx context.Context, q search.ListQuery) (*store.PetPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.PetPage), args.Error(1)
}

func (m *MockPetStore) Nearby(ctx context.Context, q search.NearbyQuery) (*store.PetPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.PetPage), args.Error(1)
}

func (m *MockPetStore) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockAdoptionStore struct {
	mock.Mock
}

func (m *MockAdoptionStore) Insert(ctx context.Context, req *models.AdoptionRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockAdoptionStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdoptionRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdoptionRequest), args.Error(1)
}

func (m *MockAdoptionStore) FindDetailByID(ctx context.Context, id primitive.ObjectID) (*models.AdoptionRequestDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdoptionRequestDetail), args.Error(1)
}

func (m *MockAdoptionStore) Exists(ctx context.Context, petID, requesterID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, petID, requesterID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdoptionStore) SetStatus(ctx context.Context, id primitive.ObjectID, status models.AdoptionStatus, now time.Time) (*models.AdoptionRequest, error) {
	args := m.Called(ctx, id, status, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdoptionRequest), args.Error(1)
}

func (m *MockAdoptionStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAdoptionStore) ListReceived(ctx context.Context, ownerID primitive.ObjectID) ([]models.AdoptionRequestDetail, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdoptionRequestDetail), args.Error(1)
}

func (m *MockAdoptionStore) ListSent(ctx context.Context, requesterID primitive.ObjectID) ([]models.AdoptionRequestDetail, error) {
	args := m.Called(ctx, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdoptionRequestDetail), args.Error(1)
}

func (m *MockAdoptionStore) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e notify.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []notify.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notify.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
