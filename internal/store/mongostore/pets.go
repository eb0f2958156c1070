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
	"golang.org/x/sync/errgroup"

	"github.com/ddhiman-alt/nearpaws/internal/db"
	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/search"
	"github.com/ddhiman-alt/nearpaws/internal/store"
)

type petStore struct {
	coll *mongo.Collection
}

func NewPetStore(database *mongo.Database) store.PetStore {
	return &petStore{coll: database.Collection(db.PetsCollection)}
}

func (s *petStore) Insert(ctx context.Context, pet *models.Pet) error {
	pet.GenIDIfEmpty()
	if _, err := s.coll.InsertOne(ctx, pet); err != nil {
		return fmt.Errorf("failed to insert pet: %w", err)
	}
	return nil
}

func (s *petStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Pet, error) {
	var pet models.Pet
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&pet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find pet %s: %w", id.Hex(), err)
	}
	return &pet, nil
}

func (s *petStore) FindResultByID(ctx context.Context, id primitive.ObjectID) (*models.PetResult, error) {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": id}}}}
	pipeline = append(pipeline, userLookup("owner", "ownerInfo", true)...)

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to load pet %s: %w", id.Hex(), err)
	}
	var results []models.PetResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode pet %s: %w", id.Hex(), err)
	}
	if len(results) == 0 {
		return nil, store.ErrNotFound
	}
	return &results[0], nil
}

func (s *petStore) Replace(ctx context.Context, pet *models.Pet) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": pet.ID}, pet)
	if err != nil {
		return fmt.Errorf("failed to update pet %s: %w", pet.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *petStore) SetStatus(ctx context.Context, id primitive.ObjectID, status models.PetStatus, now time.Time) (*models.Pet, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": now.UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var pet models.Pet
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&pet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to set status of pet %s: %w", id.Hex(), err)
	}
	return &pet, nil
}

func (s *petStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete pet %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *petStore) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Pet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{"owner": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find pets of owner %s: %w", ownerID.Hex(), err)
	}
	pets := []models.Pet{}
	if err := cursor.All(ctx, &pets); err != nil {
		return nil, fmt.Errorf("failed to decode pets of owner %s: %w", ownerID.Hex(), err)
	}
	return pets, nil
}

// List runs the page and the count concurrently over the same filter.
func (s *petStore) List(ctx context.Context, q search.ListQuery) (*store.PetPage, error) {
	page := &store.PetPage{Items: []models.PetResult{}}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cursor, err := s.coll.Aggregate(gctx, listPipeline(q))
		if err != nil {
			return fmt.Errorf("failed to list pets: %w", err)
		}
		return cursor.All(gctx, &page.Items)
	})
	g.Go(func() error {
		total, err := s.coll.CountDocuments(gctx, listFilter(q))
		if err != nil {
			return fmt.Errorf("failed to count pets: %w", err)
		}
		page.Total = total
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *petStore) Nearby(ctx context.Context, q search.NearbyQuery) (*store.PetPage, error) {
	pagePipeline, countPipeline := nearbyPipelines(q)
	page := &store.PetPage{Items: []models.PetResult{}}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cursor, err := s.coll.Aggregate(gctx, pagePipeline)
		if err != nil {
			return fmt.Errorf("failed to run nearby search: %w", err)
		}
		return cursor.All(gctx, &page.Items)
	})
	g.Go(func() error {
		cursor, err := s.coll.Aggregate(gctx, countPipeline)
		if err != nil {
			return fmt.Errorf("failed to count nearby pets: %w", err)
		}
		var counts []struct {
			Total int64 `bson:"total"`
		}
		if err := cursor.All(gctx, &counts); err != nil {
			return fmt.Errorf("failed to decode nearby count: %w", err)
		}
		if len(counts) > 0 {
			page.Total = counts[0].Total
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if db.IsMongoGeoIndexError(err) {
			return nil, fmt.Errorf("%w: %v", store.ErrGeoUnavailable, err)
		}
		return nil, err
	}
	return page, nil
}

func (s *petStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete pets: %w", err)
	}
	return res.DeletedCount, nil
}
