// Package memstore keeps pets, users and adoption requests in process. It
// mirrors the Mongo store closely enough to back the service tests and local
// runs without a database: the (pet, requester) and email uniqueness are
// emulated and nearby search ranks by Haversine distance.
package memstore

import (
	"bytes"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/search"
	"github.com/ddhiman-alt/nearpaws/internal/store"
)

type requestKey struct {
	pet       primitive.ObjectID
	requester primitive.ObjectID
}

// DB is the shared backing state of the three stores.
type DB struct {
	mu       sync.RWMutex
	pets     map[primitive.ObjectID]models.Pet
	users    map[primitive.ObjectID]models.User
	requests map[primitive.ObjectID]models.AdoptionRequest
	pairs    map[requestKey]primitive.ObjectID
	geoIndex bool
}

func NewDB() *DB {
	return &DB{
		pets:     make(map[primitive.ObjectID]models.Pet),
		users:    make(map[primitive.ObjectID]models.User),
		requests: make(map[primitive.ObjectID]models.AdoptionRequest),
		pairs:    make(map[requestKey]primitive.ObjectID),
		geoIndex: true,
	}
}

// New returns the stores of a fresh, empty database.
func New() store.Stores {
	return NewDB().Stores()
}

func (d *DB) Stores() store.Stores {
	return store.Stores{
		Pets:      &petStore{db: d},
		Users:     &userStore{db: d},
		Adoptions: &adoptionStore{db: d},
	}
}

// SetGeoIndex toggles nearby search. With the index off Nearby fails with
// store.ErrGeoUnavailable, like a Mongo deployment missing its 2dsphere index.
func (d *DB) SetGeoIndex(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.geoIndex = enabled
}

func idLess(a, b primitive.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}

func cloneLocation(l models.Location) models.Location {
	if l.Coordinates != nil {
		l.Coordinates = append([]float64{}, l.Coordinates...)
	}
	return l
}

func clonePet(p models.Pet) models.Pet {
	p.Images = cloneStrings(p.Images)
	p.Location = cloneLocation(p.Location)
	return p
}

func cloneUser(u models.User) models.User {
	if u.Location != nil {
		loc := cloneLocation(*u.Location)
		u.Location = &loc
	}
	return u
}

// ownerSummary must be called with d.mu held.
func (d *DB) ownerSummary(id primitive.ObjectID, withLocation bool) *models.OwnerSummary {
	u, ok := d.users[id]
	if !ok {
		return nil
	}
	u = cloneUser(u)
	return u.Summary(withLocation)
}

func paginate[T any](items []T, p search.Pagination) []T {
	start := p.Skip()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
