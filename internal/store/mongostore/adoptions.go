package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ddhiman-alt/nearpaws/internal/db"
	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/store"
)

type adoptionStore struct {
	coll *mongo.Collection
}

func NewAdoptionStore(database *mongo.Database) store.AdoptionStore {
	return &adoptionStore{coll: database.Collection(db.AdoptionRequestsCollection)}
}

// Insert relies on the unique (pet, requester) index to reject repeats.
func (s *adoptionStore) Insert(ctx context.Context, req *models.AdoptionRequest) error {
	req.GenIDIfEmpty()
	if _, err := s.coll.InsertOne(ctx, req); err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("failed to insert adoption request: %w", err)
	}
	return nil
}

func (s *adoptionStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdoptionRequest, error) {
	var req models.AdoptionRequest
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find adoption request %s: %w", id.Hex(), err)
	}
	return &req, nil
}

func (s *adoptionStore) details(ctx context.Context, filter bson.M) ([]models.AdoptionRequestDetail, error) {
	cursor, err := s.coll.Aggregate(ctx, requestDetailPipeline(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to load adoption requests: %w", err)
	}
	details := []models.AdoptionRequestDetail{}
	if err := cursor.All(ctx, &details); err != nil {
		return nil, fmt.Errorf("failed to decode adoption requests: %w", err)
	}
	return details, nil
}

func (s *adoptionStore) FindDetailByID(ctx context.Context, id primitive.ObjectID) (*models.AdoptionRequestDetail, error) {
	details, err := s.details(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, store.ErrNotFound
	}
	return &details[0], nil
}

func (s *adoptionStore) Exists(ctx context.Context, petID, requesterID primitive.ObjectID) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"pet": petID, "requester": requesterID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check adoption request: %w", err)
	}
	return n > 0, nil
}

func (s *adoptionStore) SetStatus(ctx context.Context, id primitive.ObjectID, status models.AdoptionStatus, now time.Time) (*models.AdoptionRequest, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": now.UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var req models.AdoptionRequest
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to set status of adoption request %s: %w", id.Hex(), err)
	}
	return &req, nil
}

func (s *adoptionStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete adoption request %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *adoptionStore) ListReceived(ctx context.Context, ownerID primitive.ObjectID) ([]models.AdoptionRequestDetail, error) {
	return s.details(ctx, bson.M{"owner": ownerID})
}

func (s *adoptionStore) ListSent(ctx context.Context, requesterID primitive.ObjectID) ([]models.AdoptionRequestDetail, error) {
	return s.details(ctx, bson.M{"requester": requesterID})
}

func (s *adoptionStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete adoption requests: %w", err)
	}
	return res.DeletedCount, nil
}
