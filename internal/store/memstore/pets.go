package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/search"
	"github.com/ddhiman-alt/nearpaws/internal/store"
)

type petStore struct {
	db *DB
}

func (s *petStore) Insert(_ context.Context, pet *models.Pet) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	pet.GenIDIfEmpty()
	if _, exists := s.db.pets[pet.ID]; exists {
		return store.ErrDuplicate
	}
	s.db.pets[pet.ID] = clonePet(*pet)
	return nil
}

func (s *petStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Pet, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	p, ok := s.db.pets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p = clonePet(p)
	return &p, nil
}

func (s *petStore) FindResultByID(_ context.Context, id primitive.ObjectID) (*models.PetResult, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	p, ok := s.db.pets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &models.PetResult{
		Pet:       clonePet(p),
		OwnerInfo: s.db.ownerSummary(p.Owner, true),
	}, nil
}

func (s *petStore) Replace(_ context.Context, pet *models.Pet) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.pets[pet.ID]; !ok {
		return store.ErrNotFound
	}
	s.db.pets[pet.ID] = clonePet(*pet)
	return nil
}

func (s *petStore) SetStatus(_ context.Context, id primitive.ObjectID, status models.PetStatus, now time.Time) (*models.Pet, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.pets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = now.UTC().Truncate(time.Millisecond)
	s.db.pets[id] = p
	p = clonePet(p)
	return &p, nil
}

func (s *petStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.pets[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.db.pets, id)
	return nil
}

func newestFirst(a, b *models.Pet) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return idLess(a.ID, b.ID)
}

func (s *petStore) FindByOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.Pet, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	pets := []models.Pet{}
	for _, p := range s.db.pets {
		if p.Owner == ownerID {
			pets = append(pets, clonePet(p))
		}
	}
	sort.Slice(pets, func(i, j int) bool { return newestFirst(&pets[i], &pets[j]) })
	return pets, nil
}

// compareField orders two pets on a listing sort field, ascending.
func compareField(a, b *models.Pet, field string) int {
	switch field {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "adoptionFee":
		switch {
		case a.AdoptionFee < b.AdoptionFee:
			return -1
		case a.AdoptionFee > b.AdoptionFee:
			return 1
		}
		return 0
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func (s *petStore) List(_ context.Context, q search.ListQuery) (*store.PetPage, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	matches := []models.Pet{}
	for _, p := range s.db.pets {
		if !q.Filter.Matches(&p) {
			continue
		}
		if q.Geo != nil {
			lat, lng, ok := p.Location.LatLng()
			if !ok || !q.Geo.Contains(lat, lng) {
				continue
			}
		}
		matches = append(matches, p)
	}

	sort.Slice(matches, func(i, j int) bool {
		c := compareField(&matches[i], &matches[j], q.Sort.Field)
		if q.Sort.Desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return idLess(matches[i].ID, matches[j].ID)
	})

	page := &store.PetPage{Total: int64(len(matches)), Items: []models.PetResult{}}
	for _, p := range paginate(matches, q.Pagination) {
		page.Items = append(page.Items, models.PetResult{
			Pet:       clonePet(p),
			OwnerInfo: s.db.ownerSummary(p.Owner, false),
		})
	}
	return page, nil
}

type ranked struct {
	pet    models.Pet
	meters float64
}

func (s *petStore) Nearby(_ context.Context, q search.NearbyQuery) (*store.PetPage, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	if !s.db.geoIndex {
		return nil, store.ErrGeoUnavailable
	}

	matches := []ranked{}
	for _, p := range s.db.pets {
		if !q.Filter.Matches(&p) {
			continue
		}
		lat, lng, ok := p.Location.LatLng()
		if !ok {
			continue
		}
		d := search.HaversineMeters(q.Center.Lat, q.Center.Lng, lat, lng)
		if q.RadiusKm != nil && !search.WithinMeters(d, *q.RadiusKm) {
			continue
		}
		matches = append(matches, ranked{pet: p, meters: d})
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := &matches[i], &matches[j]
		var c int
		switch q.Order {
		case search.OrderFarthest:
			c = compareFloat(b.meters, a.meters)
		case search.OrderNewest:
			c = b.pet.CreatedAt.Compare(a.pet.CreatedAt)
		case search.OrderOldest:
			c = a.pet.CreatedAt.Compare(b.pet.CreatedAt)
		default:
			c = compareFloat(a.meters, b.meters)
		}
		if c != 0 {
			return c < 0
		}
		return idLess(a.pet.ID, b.pet.ID)
	})

	page := &store.PetPage{Total: int64(len(matches)), Items: []models.PetResult{}}
	for _, m := range paginate(matches, q.Pagination) {
		meters := m.meters
		km := search.RoundKm(meters)
		page.Items = append(page.Items, models.PetResult{
			Pet:          clonePet(m.pet),
			OwnerInfo:    s.db.ownerSummary(m.pet.Owner, false),
			Distance:     &meters,
			DistanceInKm: &km,
		})
	}
	return page, nil
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (s *petStore) DeleteAll(_ context.Context) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	n := int64(len(s.db.pets))
	s.db.pets = make(map[primitive.ObjectID]models.Pet)
	return n, nil
}
