package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/apperror"
	"github.com/ddhiman-alt/nearpaws/internal/logging"
	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/search"
	"github.com/ddhiman-alt/nearpaws/internal/store"
)

// IPetService defines the listing operations.
type IPetService interface {
	CreatePet(ctx context.Context, ownerID primitive.ObjectID, in PetInput) (*models.Pet, error)
	ListPets(ctx context.Context, q search.ListQuery) (*PetSearchResult, error)
	NearbyPets(ctx context.Context, q search.NearbyQuery) (*PetSearchResult, error)
	GetPet(ctx context.Context, petID string) (*models.PetResult, error)
	UpdatePet(ctx context.Context, petID string, userID primitive.ObjectID, in PetInput) (*models.Pet, error)
	DeletePet(ctx context.Context, petID string, userID primitive.ObjectID) error
	MyPets(ctx context.Context, userID primitive.ObjectID) ([]models.Pet, error)
	UpdatePetStatus(ctx context.Context, petID string, userID primitive.ObjectID, status string) (*models.Pet, error)
}

// LocationInput is the location as clients send it.
type LocationInput struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
}

// PetInput is a create body or a partial update. Nil fields are left alone
// on update and defaulted on create.
type PetInput struct {
	Name              *string            `json:"name"`
	Species           *string            `json:"species"`
	Breed             *string            `json:"breed"`
	Age               *models.Age        `json:"age"`
	Gender            *string            `json:"gender"`
	Size              *string            `json:"size"`
	Color             *string            `json:"color"`
	Description       *string            `json:"description"`
	HealthInfo        *models.HealthInfo `json:"healthInfo"`
	Location          *LocationInput     `json:"location"`
	Images            []string           `json:"images"`
	AdoptionFee       *float64           `json:"adoptionFee"`
	AdoptionFeeReason *string            `json:"adoptionFeeReason"`
	Status            *string            `json:"status"`
	ContactPreference *string            `json:"contactPreference"`
}

// PetSearchResult is one page of a listing query.
type PetSearchResult struct {
	Items      []models.PetResult
	Total      int64
	Pagination search.Pagination
	// Degraded is set when a nearby search was answered by the plain listing.
	Degraded bool
}

func (r *PetSearchResult) TotalPages() int {
	return r.Pagination.TotalPages(r.Total)
}

var (
	errPetNotFound        = apperror.NotFound("Pet")
	errPetUpdateForbidden = apperror.Forbidden("Not authorized to update this pet")
	errPetDeleteForbidden = apperror.Forbidden("Not authorized to delete this pet")
)

type petService struct {
	pets   store.PetStore
	logger *slog.Logger
	now    func() time.Time
}

func NewPetService(pets store.PetStore, logger *slog.Logger) IPetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &petService{pets: pets, logger: logger, now: time.Now}
}

// parsePetID maps malformed ids onto "Pet not found".
func parsePetID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, errPetNotFound
	}
	return oid, nil
}

func (s *petService) mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return errPetNotFound
	}
	return err
}

// apply copies the set fields of in onto p.
func (in PetInput) apply(p *models.Pet) error {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Species != nil {
		p.Species = *in.Species
	}
	if in.Breed != nil {
		p.Breed = *in.Breed
	}
	if in.Age != nil {
		p.Age = *in.Age
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.Size != nil {
		p.Size = *in.Size
	}
	if in.Color != nil {
		p.Color = *in.Color
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.HealthInfo != nil {
		p.HealthInfo = *in.HealthInfo
	}
	if in.Images != nil {
		p.Images = append([]string{}, in.Images...)
	}
	if in.AdoptionFee != nil {
		p.AdoptionFee = *in.AdoptionFee
	}
	if in.AdoptionFeeReason != nil {
		p.AdoptionFeeReason = *in.AdoptionFeeReason
	}
	if in.Status != nil {
		p.Status = models.PetStatus(strings.ToLower(strings.TrimSpace(*in.Status)))
	}
	if in.ContactPreference != nil {
		p.ContactPreference = *in.ContactPreference
	}
	if in.Location != nil {
		loc, err := in.Location.toLocation()
		if err != nil {
			return err
		}
		p.Location = loc
	}
	return nil
}

func (l LocationInput) toLocation() (models.Location, error) {
	if l.Latitude == nil || l.Longitude == nil {
		return models.Location{}, apperror.ValidationFailed("location", "Latitude and longitude are required")
	}
	return models.NewLocation(*l.Latitude, *l.Longitude, strings.TrimSpace(l.Address), strings.TrimSpace(l.City)), nil
}

func (s *petService) CreatePet(ctx context.Context, ownerID primitive.ObjectID, in PetInput) (*models.Pet, error) {
	if in.Location == nil {
		return nil, apperror.ValidationFailed("location", "Latitude and longitude are required")
	}
	if in.Age == nil {
		return nil, apperror.ValidationFailed("age.value", "Age is required")
	}

	pet := &models.Pet{Base: models.NewBase(s.now()), Owner: ownerID}
	if err := in.apply(pet); err != nil {
		return nil, err
	}
	pet.Normalize()
	if err := pet.Validate(); err != nil {
		return nil, err
	}

	if err := s.pets.Insert(ctx, pet); err != nil {
		return nil, fmt.Errorf("failed to create pet for owner %s: %w", ownerID.Hex(), err)
	}
	s.logger.InfoContext(ctx, "pet created", "pet_id", pet.ID.Hex(), "owner_id", ownerID.Hex(), "species", pet.Species)
	return pet, nil
}

func (s *petService) ListPets(ctx context.Context, q search.ListQuery) (*PetSearchResult, error) {
	page, err := s.pets.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}
	return &PetSearchResult{Items: page.Items, Total: page.Total, Pagination: q.Pagination}, nil
}

// NearbyPets ranks by distance. When the geospatial query fails the same
// filter and page are served newest first and the result is marked degraded.
func (s *petService) NearbyPets(ctx context.Context, q search.NearbyQuery) (*PetSearchResult, error) {
	page, err := s.pets.Nearby(ctx, q)
	if err == nil {
		return &PetSearchResult{Items: page.Items, Total: page.Total, Pagination: q.Pagination}, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("nearby search aborted: %w", err)
	}

	s.logger.WarnContext(ctx, "nearby search failed, serving plain listing",
		"lat", q.Center.Lat,
		"lng", q.Center.Lng,
		logging.Err(err),
	)

	fallback := q.Fallback()
	page, ferr := s.pets.List(ctx, fallback)
	if ferr != nil {
		return nil, fmt.Errorf("nearby fallback failed: %w", errors.Join(err, ferr))
	}
	return &PetSearchResult{Items: page.Items, Total: page.Total, Pagination: fallback.Pagination, Degraded: true}, nil
}

func (s *petService) GetPet(ctx context.Context, petID string) (*models.PetResult, error) {
	id, err := parsePetID(petID)
	if err != nil {
		return nil, err
	}
	pet, err := s.pets.FindResultByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	return pet, nil
}

// ownedPet loads the pet and checks that userID owns it.
func (s *petService) ownedPet(ctx context.Context, petID string, userID primitive.ObjectID, forbidden error) (*models.Pet, error) {
	id, err := parsePetID(petID)
	if err != nil {
		return nil, err
	}
	pet, err := s.pets.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if pet.Owner != userID {
		return nil, forbidden
	}
	return pet, nil
}

func (s *petService) UpdatePet(ctx context.Context, petID string, userID primitive.ObjectID, in PetInput) (*models.Pet, error) {
	pet, err := s.ownedPet(ctx, petID, userID, errPetUpdateForbidden)
	if err != nil {
		return nil, err
	}

	if err := in.apply(pet); err != nil {
		return nil, err
	}
	pet.Normalize()
	if err := pet.Validate(); err != nil {
		return nil, err
	}
	pet.Touch(s.now())

	if err := s.pets.Replace(ctx, pet); err != nil {
		return nil, s.mapStoreErr(err)
	}
	return pet, nil
}

func (s *petService) DeletePet(ctx context.Context, petID string, userID primitive.ObjectID) error {
	pet, err := s.ownedPet(ctx, petID, userID, errPetDeleteForbidden)
	if err != nil {
		return err
	}
	if err := s.pets.Delete(ctx, pet.ID); err != nil {
		return s.mapStoreErr(err)
	}
	s.logger.InfoContext(ctx, "pet deleted", "pet_id", pet.ID.Hex(), "owner_id", userID.Hex())
	return nil
}

func (s *petService) MyPets(ctx context.Context, userID primitive.ObjectID) ([]models.Pet, error) {
	pets, err := s.pets.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pets of %s: %w", userID.Hex(), err)
	}
	return pets, nil
}

// UpdatePetStatus validates the status before looking the pet up.
func (s *petService) UpdatePetStatus(ctx context.Context, petID string, userID primitive.ObjectID, status string) (*models.Pet, error) {
	st := models.PetStatus(status)
	if !st.Valid() {
		return nil, apperror.ValidationFailed("status", "Invalid status")
	}
	pet, err := s.ownedPet(ctx, petID, userID, errPetUpdateForbidden)
	if err != nil {
		return nil, err
	}
	updated, err := s.pets.SetStatus(ctx, pet.ID, st, s.now())
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	return updated, nil
}
