// Package store defines the persistence ports the services depend on. The
// Mongo implementation lives in mongostore; memstore keeps everything in
// process for tests and local runs without a database.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/search"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
	// ErrGeoUnavailable is returned by Nearby when the backend cannot run
	// spherical queries, e.g. the 2dsphere index is missing.
	ErrGeoUnavailable = errors.New("store: geospatial query unavailable")
)

// PetPage is one page of listings plus the count of every match.
type PetPage struct {
	Items []models.PetResult
	Total int64
}

type PetStore interface {
	Insert(ctx context.Context, pet *models.Pet) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Pet, error)
	// FindResultByID returns the pet with its owner joined, owner location included.
	FindResultByID(ctx context.Context, id primitive.ObjectID) (*models.PetResult, error)
	Replace(ctx context.Context, pet *models.Pet) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.PetStatus, now time.Time) (*models.Pet, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Pet, error)
	List(ctx context.Context, q search.ListQuery) (*PetPage, error)
	Nearby(ctx context.Context, q search.NearbyQuery) (*PetPage, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type AdoptionStore interface {
	// Insert returns ErrDuplicate when the (pet, requester) pair already exists.
	Insert(ctx context.Context, req *models.AdoptionRequest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdoptionRequest, error)
	FindDetailByID(ctx context.Context, id primitive.ObjectID) (*models.AdoptionRequestDetail, error)
	Exists(ctx context.Context, petID, requesterID primitive.ObjectID) (bool, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.AdoptionStatus, now time.Time) (*models.AdoptionRequest, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListReceived(ctx context.Context, ownerID primitive.ObjectID) ([]models.AdoptionRequestDetail, error)
	ListSent(ctx context.Context, requesterID primitive.ObjectID) ([]models.AdoptionRequestDetail, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// Stores bundles one implementation of each port.
type Stores struct {
	Pets      PetStore
	Users     UserStore
	Adoptions AdoptionStore
}
