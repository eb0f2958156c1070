package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/apperror"
	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/search"
	"github.com/ddhiman-alt/nearpaws/internal/store"
	"github.com/ddhiman-alt/nearpaws/internal/store/memstore"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func validInput() PetInput {
	return PetInput{
		Name:        ptr("  Milo "),
		Species:     ptr("Dog"),
		Age:         &models.Age{Value: 2, Unit: "years"},
		Description: ptr("Friendly and house trained"),
		Location: &LocationInput{
			Latitude:  ptr(12.9716),
			Longitude: ptr(77.5946),
			Address:   "Indiranagar",
			City:      "Bangalore",
		},
	}
}

func newTestPetService(pets store.PetStore, buf *bytes.Buffer) *petService {
	svc := NewPetService(pets, testLogger(buf)).(*petService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestCreatePet_AppliesDefaults(t *testing.T) {
	stores := memstore.New()
	svc := newTestPetService(stores.Pets, &bytes.Buffer{})
	owner := primitive.NewObjectID()

	pet, err := svc.CreatePet(context.Background(), owner, validInput())
	require.NoError(t, err)

	assert.Equal(t, "Milo", pet.Name)
	assert.Equal(t, "dog", pet.Species)
	assert.Equal(t, models.DefaultBreed, pet.Breed)
	assert.Equal(t, models.DefaultGender, pet.Gender)
	assert.Equal(t, models.DefaultSize, pet.Size)
	assert.Equal(t, models.PetStatusAvailable, pet.Status)
	assert.Equal(t, owner, pet.Owner)
	assert.Equal(t, fixedNow, pet.CreatedAt)
	assert.Equal(t, []float64{77.5946, 12.9716}, pet.Location.Coordinates)
	assert.NotEmpty(t, pet.Location.Geohash)

	stored, err := stores.Pets.FindByID(context.Background(), pet.ID)
	require.NoError(t, err)
	assert.Equal(t, pet.Name, stored.Name)
}

func TestCreatePet_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PetInput)
		field  string
	}{
		{"missing name", func(in *PetInput) { in.Name = ptr("   ") }, "name"},
		{"bad species", func(in *PetInput) { in.Species = ptr("dragon") }, "species"},
		{"missing location", func(in *PetInput) { in.Location = nil }, "location"},
		{"half location", func(in *PetInput) { in.Location.Longitude = nil }, "location"},
		{"out of range", func(in *PetInput) { in.Location.Latitude = ptr(91.0) }, "location"},
		{"missing age", func(in *PetInput) { in.Age = nil }, "age.value"},
		{"fee without reason", func(in *PetInput) { in.AdoptionFee = ptr(50.0) }, "adoptionFeeReason"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestPetService(memstore.New().Pets, &bytes.Buffer{})
			in := validInput()
			tt.mutate(&in)

			_, err := svc.CreatePet(context.Background(), primitive.NewObjectID(), in)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrValidation)
			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestGetPet_NotFound(t *testing.T) {
	svc := newTestPetService(memstore.New().Pets, &bytes.Buffer{})

	for _, id := range []string{"not-an-id", primitive.NewObjectID().Hex()} {
		_, err := svc.GetPet(context.Background(), id)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.EqualError(t, err, "Pet not found")
	}
}

func TestUpdatePet_OwnerOnlyAndPartial(t *testing.T) {
	stores := memstore.New()
	svc := newTestPetService(stores.Pets, &bytes.Buffer{})
	owner := primitive.NewObjectID()
	pet, err := svc.CreatePet(context.Background(), owner, validInput())
	require.NoError(t, err)

	_, err = svc.UpdatePet(context.Background(), pet.ID.Hex(), primitive.NewObjectID(), PetInput{Name: ptr("Stolen")})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.EqualError(t, err, "Not authorized to update this pet")

	svc.now = func() time.Time { return fixedNow.Add(time.Hour) }
	updated, err := svc.UpdatePet(context.Background(), pet.ID.Hex(), owner, PetInput{Color: ptr("brown"), Size: ptr("LARGE")})
	require.NoError(t, err)
	assert.Equal(t, "Milo", updated.Name, "unset fields are kept")
	assert.Equal(t, "brown", updated.Color)
	assert.Equal(t, "large", updated.Size)
	assert.Equal(t, fixedNow, updated.CreatedAt)
	assert.Equal(t, fixedNow.Add(time.Hour), updated.UpdatedAt)
	assert.Equal(t, owner, updated.Owner)

	_, err = svc.UpdatePet(context.Background(), pet.ID.Hex(), owner, PetInput{Gender: ptr("robot")})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestDeletePet(t *testing.T) {
	stores := memstore.New()
	svc := newTestPetService(stores.Pets, &bytes.Buffer{})
	owner := primitive.NewObjectID()
	pet, err := svc.CreatePet(context.Background(), owner, validInput())
	require.NoError(t, err)

	err = svc.DeletePet(context.Background(), pet.ID.Hex(), primitive.NewObjectID())
	assert.EqualError(t, err, "Not authorized to delete this pet")

	require.NoError(t, svc.DeletePet(context.Background(), pet.ID.Hex(), owner))
	assert.ErrorIs(t, svc.DeletePet(context.Background(), pet.ID.Hex(), owner), apperror.ErrNotFound)
}

func TestUpdatePetStatus(t *testing.T) {
	stores := memstore.New()
	svc := newTestPetService(stores.Pets, &bytes.Buffer{})
	owner := primitive.NewObjectID()
	pet, err := svc.CreatePet(context.Background(), owner, validInput())
	require.NoError(t, err)

	_, err = svc.UpdatePetStatus(context.Background(), pet.ID.Hex(), owner, "sold")
	assert.EqualError(t, err, "Invalid status")

	// Status is checked before the pet is looked up.
	_, err = svc.UpdatePetStatus(context.Background(), "bogus", owner, "sold")
	assert.EqualError(t, err, "Invalid status")

	_, err = svc.UpdatePetStatus(context.Background(), pet.ID.Hex(), primitive.NewObjectID(), "adopted")
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	updated, err := svc.UpdatePetStatus(context.Background(), pet.ID.Hex(), owner, "adopted")
	require.NoError(t, err)
	assert.Equal(t, models.PetStatusAdopted, updated.Status)
}

func TestMyPets_NewestFirst(t *testing.T) {
	stores := memstore.New()
	svc := newTestPetService(stores.Pets, &bytes.Buffer{})
	owner := primitive.NewObjectID()

	first, err := svc.CreatePet(context.Background(), owner, validInput())
	require.NoError(t, err)
	svc.now = func() time.Time { return fixedNow.Add(time.Minute) }
	second, err := svc.CreatePet(context.Background(), owner, validInput())
	require.NoError(t, err)
	_, err = svc.CreatePet(context.Background(), primitive.NewObjectID(), validInput())
	require.NoError(t, err)

	pets, err := svc.MyPets(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, pets, 2)
	assert.Equal(t, second.ID, pets[0].ID)
	assert.Equal(t, first.ID, pets[1].ID)
}

func nearbyQuery() search.NearbyQuery {
	return search.NearbyQuery{
		Filter:     search.Filter{Status: models.PetStatusAvailable, Species: "dog"},
		Pagination: search.Pagination{Page: 2, Limit: 12},
		Center:     search.Point{Lat: 12.95, Lng: 77.70},
		RadiusKm:   ptr(25.0),
		Order:      search.OrderFarthest,
	}
}

func TestNearbyPets_Ranked(t *testing.T) {
	pets := new(MockPetStore)
	svc := newTestPetService(pets, &bytes.Buffer{})
	q := nearbyQuery()
	page := &store.PetPage{Items: []models.PetResult{{DistanceInKm: ptr(1.5)}}, Total: 13}
	pets.On("Nearby", mock.Anything, q).Return(page, nil)

	res, err := svc.NearbyPets(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Equal(t, int64(13), res.Total)
	assert.Equal(t, 2, res.TotalPages())
	pets.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestNearbyPets_FallsBackToPlainListing(t *testing.T) {
	pets := new(MockPetStore)
	var logs bytes.Buffer
	svc := newTestPetService(pets, &logs)
	q := nearbyQuery()

	pets.On("Nearby", mock.Anything, q).Return(nil, store.ErrGeoUnavailable)
	pets.On("List", mock.Anything, search.ListQuery{
		Filter:     q.Filter,
		Pagination: q.Pagination,
		Sort:       search.SortNewest,
	}).Return(&store.PetPage{Items: []models.PetResult{{}, {}}, Total: 14}, nil)

	res, err := svc.NearbyPets(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, int64(14), res.Total)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, q.Pagination, res.Pagination)
	assert.Contains(t, logs.String(), "level=WARN")
	pets.AssertExpectations(t)
}

func TestNearbyPets_FallbackFailureIsAnError(t *testing.T) {
	pets := new(MockPetStore)
	svc := newTestPetService(pets, &bytes.Buffer{})
	q := nearbyQuery()
	listErr := errors.New("connection reset")

	pets.On("Nearby", mock.Anything, q).Return(nil, errors.New("geo failed"))
	pets.On("List", mock.Anything, mock.Anything).Return(nil, listErr)

	_, err := svc.NearbyPets(context.Background(), q)
	require.Error(t, err)
	assert.ErrorIs(t, err, listErr)
	_, isApp := apperror.MessageOf(err)
	assert.False(t, isApp, "fallback failure maps to a server error")
}

func TestNearbyPets_CancelledContextDoesNotFallBack(t *testing.T) {
	pets := new(MockPetStore)
	svc := newTestPetService(pets, &bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pets.On("Nearby", mock.Anything, mock.Anything).Return(nil, context.Canceled)

	_, err := svc.NearbyPets(ctx, nearbyQuery())
	assert.ErrorIs(t, err, context.Canceled)
	pets.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestNearbyPets_MemoryStoreEndToEnd(t *testing.T) {
	db := memstore.NewDB()
	stores := db.Stores()
	svc := newTestPetService(stores.Pets, &bytes.Buffer{})
	owner := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		lat, lng := search.Destination(12.95, 77.70, float64(5*(i+1)), 90)
		in := validInput()
		in.Location.Latitude, in.Location.Longitude = ptr(lat), ptr(lng)
		_, err := svc.CreatePet(context.Background(), owner, in)
		require.NoError(t, err)
	}
	q := search.NearbyQuery{
		Filter:     search.Filter{Status: models.PetStatusAvailable},
		Pagination: search.Pagination{Page: 1, Limit: 12},
		Center:     search.Point{Lat: 12.95, Lng: 77.70},
		RadiusKm:   ptr(10.0),
	}

	res, err := svc.NearbyPets(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, 5.0, *res.Items[0].DistanceInKm)

	db.SetGeoIndex(false)
	res, err = svc.NearbyPets(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, int64(3), res.Total, "the fallback ignores the radius")
	assert.Nil(t, res.Items[0].DistanceInKm)
}
