package memstore

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/store"
)

type adoptionStore struct {
	db *DB
}

func (s *adoptionStore) Insert(_ context.Context, req *models.AdoptionRequest) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	req.GenIDIfEmpty()
	key := requestKey{pet: req.Pet, requester: req.Requester}
	if _, exists := s.db.pairs[key]; exists {
		return store.ErrDuplicate
	}
	if _, exists := s.db.requests[req.ID]; exists {
		return store.ErrDuplicate
	}
	s.db.requests[req.ID] = *req
	s.db.pairs[key] = req.ID
	return nil
}

func (s *adoptionStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.AdoptionRequest, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	r, ok := s.db.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

// detail must be called with d.mu held.
func (d *DB) detail(r models.AdoptionRequest) models.AdoptionRequestDetail {
	out := models.AdoptionRequestDetail{
		Base:          r.Base,
		PetID:         r.Pet,
		RequesterID:   r.Requester,
		OwnerID:       r.Owner,
		Message:       r.Message,
		Status:        r.Status,
		RequesterInfo: d.ownerSummary(r.Requester, true),
		OwnerInfo:     d.ownerSummary(r.Owner, false),
	}
	if p, ok := d.pets[r.Pet]; ok {
		p = clonePet(p)
		out.PetInfo = p.Summary()
	}
	return out
}

func (s *adoptionStore) FindDetailByID(_ context.Context, id primitive.ObjectID) (*models.AdoptionRequestDetail, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	r, ok := s.db.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	detail := s.db.detail(r)
	return &detail, nil
}

func (s *adoptionStore) Exists(_ context.Context, petID, requesterID primitive.ObjectID) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	_, ok := s.db.pairs[requestKey{pet: petID, requester: requesterID}]
	return ok, nil
}

func (s *adoptionStore) SetStatus(_ context.Context, id primitive.ObjectID, status models.AdoptionStatus, now time.Time) (*models.AdoptionRequest, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	r, ok := s.db.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = now.UTC().Truncate(time.Millisecond)
	s.db.requests[id] = r
	return &r, nil
}

func (s *adoptionStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	r, ok := s.db.requests[id]
	if !ok {
		return store.ErrNotFound
	}
	delete(s.db.requests, id)
	delete(s.db.pairs, requestKey{pet: r.Pet, requester: r.Requester})
	return nil
}

func (s *adoptionStore) list(match func(models.AdoptionRequest) bool) []models.AdoptionRequestDetail {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := []models.AdoptionRequestDetail{}
	for _, r := range s.db.requests {
		if match(r) {
			out = append(out, s.db.detail(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return idLess(out[j].ID, out[i].ID)
	})
	return out
}

func (s *adoptionStore) ListReceived(_ context.Context, ownerID primitive.ObjectID) ([]models.AdoptionRequestDetail, error) {
	return s.list(func(r models.AdoptionRequest) bool { return r.Owner == ownerID }), nil
}

func (s *adoptionStore) ListSent(_ context.Context, requesterID primitive.ObjectID) ([]models.AdoptionRequestDetail, error) {
	return s.list(func(r models.AdoptionRequest) bool { return r.Requester == requesterID }), nil
}

func (s *adoptionStore) DeleteAll(_ context.Context) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	n := int64(len(s.db.requests))
	s.db.requests = make(map[primitive.ObjectID]models.AdoptionRequest)
	s.db.pairs = make(map[requestKey]primitive.ObjectID)
	return n, nil
}
