package models

import (
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/apperror"
)

// PetStatus is the lifecycle state of a listing.
type PetStatus string

const (
	PetStatusAvailable PetStatus = "available"
	PetStatusPending   PetStatus = "pending"
	PetStatusAdopted   PetStatus = "adopted"
)

func (s PetStatus) Valid() bool {
	switch s {
	case PetStatusAvailable, PetStatusPending, PetStatusAdopted:
		return true
	}
	return false
}

var (
	SpeciesValues           = []string{"dog", "cat", "bird", "rabbit", "hamster", "fish", "turtle", "other"}
	GenderValues            = []string{"male", "female", "unknown"}
	SizeValues              = []string{"small", "medium", "large", "extra-large"}
	AgeUnitValues           = []string{"days", "weeks", "months", "years"}
	ContactPreferenceValues = []string{"email", "phone", "both"}
)

const (
	DefaultBreed             = "Mixed/Unknown"
	DefaultAgeUnit           = "months"
	DefaultGender            = "unknown"
	DefaultSize              = "medium"
	DefaultContactPreference = "both"

	MaxPetNameLength     = 50
	MaxDescriptionLength = 1000
	MaxFeeReasonLength   = 500
	MaxPetImages         = 5
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

type Age struct {
	Value float64 `bson:"value" json:"value"`
	Unit  string  `bson:"unit" json:"unit"`
}

type HealthInfo struct {
	Vaccinated       bool   `bson:"vaccinated" json:"vaccinated"`
	Neutered         bool   `bson:"neutered" json:"neutered"`
	HealthConditions string `bson:"healthConditions,omitempty" json:"healthConditions,omitempty"`
}

// Pet is a listing of an animal available for adoption.
type Pet struct {
	Base              `bson:",inline"`
	Name              string             `bson:"name" json:"name"`
	Species           string             `bson:"species" json:"species"`
	Breed             string             `bson:"breed" json:"breed"`
	Age               Age                `bson:"age" json:"age"`
	Gender            string             `bson:"gender" json:"gender"`
	Size              string             `bson:"size" json:"size"`
	Color             string             `bson:"color,omitempty" json:"color,omitempty"`
	Description       string             `bson:"description" json:"description"`
	HealthInfo        HealthInfo         `bson:"healthInfo" json:"healthInfo"`
	Location          Location           `bson:"location" json:"location"`
	Images            []string           `bson:"images" json:"images"`
	AdoptionFee       float64            `bson:"adoptionFee" json:"adoptionFee"`
	AdoptionFeeReason string             `bson:"adoptionFeeReason,omitempty" json:"adoptionFeeReason,omitempty"`
	Status            PetStatus          `bson:"status" json:"status"`
	Owner             primitive.ObjectID `bson:"owner" json:"owner"`
	ContactPreference string             `bson:"contactPreference" json:"contactPreference"`
}

// Normalize trims free text, lowercases enum fields and fills defaults.
func (p *Pet) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Species = strings.ToLower(strings.TrimSpace(p.Species))
	p.Breed = strings.TrimSpace(p.Breed)
	if p.Breed == "" {
		p.Breed = DefaultBreed
	}
	p.Age.Unit = strings.ToLower(strings.TrimSpace(p.Age.Unit))
	if p.Age.Unit == "" {
		p.Age.Unit = DefaultAgeUnit
	}
	p.Gender = strings.ToLower(strings.TrimSpace(p.Gender))
	if p.Gender == "" {
		p.Gender = DefaultGender
	}
	p.Size = strings.ToLower(strings.TrimSpace(p.Size))
	if p.Size == "" {
		p.Size = DefaultSize
	}
	p.Color = strings.TrimSpace(p.Color)
	p.Description = strings.TrimSpace(p.Description)
	p.AdoptionFeeReason = strings.TrimSpace(p.AdoptionFeeReason)
	if p.Status == "" {
		p.Status = PetStatusAvailable
	}
	p.ContactPreference = strings.ToLower(strings.TrimSpace(p.ContactPreference))
	if p.ContactPreference == "" {
		p.ContactPreference = DefaultContactPreference
	}
	if p.Images == nil {
		p.Images = []string{}
	}
}

// Validate checks the invariants of a normalized pet.
func (p *Pet) Validate() error {
	switch {
	case p.Name == "":
		return apperror.ValidationFailed("name", "Pet name is required")
	case utf8.RuneCountInString(p.Name) > MaxPetNameLength:
		return apperror.ValidationFailed("name", "Name cannot exceed 50 characters")
	case p.Species == "":
		return apperror.ValidationFailed("species", "Species is required")
	case !oneOf(p.Species, SpeciesValues):
		return apperror.ValidationFailed("species", "Invalid species")
	case p.Age.Value < 0:
		return apperror.ValidationFailed("age.value", "Age is required")
	case !oneOf(p.Age.Unit, AgeUnitValues):
		return apperror.ValidationFailed("age.unit", "Invalid age unit")
	case !oneOf(p.Gender, GenderValues):
		return apperror.ValidationFailed("gender", "Invalid gender")
	case !oneOf(p.Size, SizeValues):
		return apperror.ValidationFailed("size", "Invalid size")
	case p.Description == "":
		return apperror.ValidationFailed("description", "Description is required")
	case utf8.RuneCountInString(p.Description) > MaxDescriptionLength:
		return apperror.ValidationFailed("description", "Description cannot exceed 1000 characters")
	case len(p.Images) > MaxPetImages:
		return apperror.ValidationFailed("images", "A pet can have at most 5 images")
	case p.AdoptionFee < 0:
		return apperror.ValidationFailed("adoptionFee", "Adoption fee cannot be negative")
	case p.AdoptionFee > 0 && p.AdoptionFeeReason == "":
		return apperror.ValidationFailed("adoptionFeeReason", "Please explain the adoption fee")
	case utf8.RuneCountInString(p.AdoptionFeeReason) > MaxFeeReasonLength:
		return apperror.ValidationFailed("adoptionFeeReason", "Fee reason cannot exceed 500 characters")
	case !p.Status.Valid():
		return apperror.ValidationFailed("status", "Invalid status")
	case !oneOf(p.ContactPreference, ContactPreferenceValues):
		return apperror.ValidationFailed("contactPreference", "Invalid contact preference")
	}

	lat, lng, ok := p.Location.LatLng()
	if !ok {
		return apperror.ValidationFailed("location", "Latitude and longitude are required")
	}
	if !ValidCoordinates(lat, lng) {
		return apperror.ValidationFailed("location", "Coordinates out of range")
	}
	return nil
}

// OwnerSummary is the reduced owner view joined onto listings.
type OwnerSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Phone    string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Location *Location          `bson:"location,omitempty" json:"location,omitempty"`
}

// PetResult is a listing as returned by search and detail reads. Distance
// fields are only set on the geospatial path.
type PetResult struct {
	Pet          `bson:",inline"`
	OwnerInfo    *OwnerSummary `bson:"ownerInfo,omitempty" json:"owner"`
	Distance     *float64      `bson:"distance,omitempty" json:"-"`
	DistanceInKm *float64      `bson:"distanceInKm,omitempty" json:"distanceInKm,omitempty"`
}

// PetSummary is the pet view joined onto adoption requests.
type PetSummary struct {
	ID      primitive.ObjectID `bson:"_id" json:"_id"`
	Name    string             `bson:"name" json:"name"`
	Species string             `bson:"species" json:"species"`
	Breed   string             `bson:"breed" json:"breed"`
	Images  []string           `bson:"images" json:"images"`
	Status  PetStatus          `bson:"status" json:"status"`
}

func (p *Pet) Summary() *PetSummary {
	return &PetSummary{
		ID:      p.ID,
		Name:    p.Name,
		Species: p.Species,
		Breed:   p.Breed,
		Images:  p.Images,
		Status:  p.Status,
	}
}
