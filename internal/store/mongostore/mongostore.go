// Package mongostore implements the store ports on MongoDB. Nearby search
// runs a $geoNear aggregation and needs the 2dsphere index on pets.location.
package mongostore

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ddhiman-alt/nearpaws/internal/store"
)

func New(database *mongo.Database) store.Stores {
	return store.Stores{
		Pets:      NewPetStore(database),
		Users:     NewUserStore(database),
		Adoptions: NewAdoptionStore(database),
	}
}
