package memstore

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/store"
)

type userStore struct {
	db *DB
}

func (s *userStore) Insert(_ context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user.GenIDIfEmpty()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range s.db.users {
		if u.ID == user.ID || u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	s.db.users[user.ID] = cloneUser(*user)
	return nil
}

func (s *userStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

func (s *userStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.db.users {
		if u.Email == email {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *userStore) DeleteAll(_ context.Context) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	n := int64(len(s.db.users))
	s.db.users = make(map[primitive.ObjectID]models.User)
	return n, nil
}
