package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/search"
	"github.com/ddhiman-alt/nearpaws/internal/services"
)

// --- Mocks ---

type MockPetService struct {
	mock.Mock
}

func (m *MockPetService) CreatePet(ctx context.Context, ownerID primitive.ObjectID, in services.PetInput) (*models.Pet, error) {
	args := m.Called(ctx, ownerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pet), args.Error(1)
}

func (m *MockPetService) ListPets(ctx context.Context, q search.ListQuery) (*services.PetSearchResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PetSearchResult), args.Error(1)
}

func (m *MockPetService) NearbyPets(ctx context.Context, q search.NearbyQuery) (*services.PetSearchResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PetSearchResult), args.Error(1)
}

func (m *MockPetService) GetPet(ctx context.Context, petID string) (*models.PetResult, error) {
	args := m.Called(ctx, petID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PetResult), args.Error(1)
}

func (m *MockPetService) UpdatePet(ctx context.Context, petID string, userID primitive.ObjectID, in services.PetInput) (*models.Pet, error) {
	args := m.Called(ctx, petID, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pet), args.Error(1)
}

func (m *MockPetService) DeletePet(ctx context.Context, petID string, userID primitive.ObjectID) error {
	return m.Called(ctx, petID, userID).Error(0)
}

func (m *MockPetService) MyPets(ctx context.Context, userID primitive.ObjectID) ([]models.Pet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Pet), args.Error(1)
}

func (m *MockPetService) UpdatePetStatus(ctx context.Context, petID string, userID primitive.ObjectID, status string) (*models.Pet, error) {
	args := m.Called(ctx, petID, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pet), args.Error(1)
}

type MockAdoptionService struct {
	mock.Mock
}

func (m *MockAdoptionService) CreateRequest(ctx context.Context, requesterID primitive.ObjectID, petID, message string) (*models.AdoptionRequestDetail, error) {
	args := m.Called(ctx, requesterID, petID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdoptionRequestDetail), args.Error(1)
}

func (m *MockAdoptionService) ReceivedRequests(ctx context.Context, ownerID primitive.ObjectID) ([]models.AdoptionRequestDetail, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdoptionRequestDetail), args.Error(1)
}

func (m *MockAdoptionService) SentRequests(ctx context.Context, requesterID primitive.ObjectID) ([]models.AdoptionRequestDetail, error) {
	args := m.Called(ctx, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdoptionRequestDetail), args.Error(1)
}

func (m *MockAdoptionService) UpdateRequestStatus(ctx context.Context, requestID string, userID primitive.ObjectID, status string) (*models.AdoptionRequestDetail, error) {
	args := m.Called(ctx, requestID, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdoptionRequestDetail), args.Error(1)
}

func (m *MockAdoptionService) WithdrawRequest(ctx context.Context, requestID string, userID primitive.ObjectID) error {
	return m.Called(ctx, requestID, userID).Error(0)
}
