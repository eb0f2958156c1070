// Package seed resets the database to the demo data set: one shelter account
// in Bangalore and listings placed on rings of known distance around it, so
// nearby searches have predictable answers.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ddhiman-alt/nearpaws/internal/auth"
	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/search"
	"github.com/ddhiman-alt/nearpaws/internal/services"
	"github.com/ddhiman-alt/nearpaws/internal/store"
)

// Result is what a seed run created.
type Result struct {
	User  *models.User
	Pets  []models.Pet
	Token string
}

type Seeder struct {
	stores    store.Stores
	users     services.IUserService
	jwtSecret string
	jwtTTL    time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewSeeder(stores store.Stores, jwtSecret string, jwtTTL time.Duration, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		stores:    stores,
		users:     services.NewUserService(stores.Users, logger),
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Location returns where the i-th listing of the data set is placed.
func Location(i int) models.Location {
	r := rings[pets[i].ring%len(rings)]
	p := r.places[i%len(r.places)]
	lat, lng := search.Destination(BaseLat, BaseLng, r.km, p.bearing)
	return models.NewLocation(lat, lng, p.address, p.city)
}

// Run wipes users, pets and adoption requests and inserts the data set.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	if err := s.clear(ctx); err != nil {
		return nil, err
	}

	lat, lng := BaseLat, BaseLng
	user, err := s.users.CreateUser(ctx, services.UserInput{
		Name:     ShelterName,
		Email:    ShelterEmail,
		Password: ShelterPassword,
		Phone:    ShelterPhone,
		Location: &services.LocationInput{Latitude: &lat, Longitude: &lng, Address: ShelterAddress, City: ShelterCity},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create seed user: %w", err)
	}

	created := make([]models.Pet, 0, len(pets))
	for i, ps := range pets {
		pet := ps.listing()
		pet.Base = models.NewBase(s.now())
		pet.Owner = user.ID
		pet.Location = Location(i)
		pet.Normalize()
		if err := pet.Validate(); err != nil {
			return nil, fmt.Errorf("seed pet %s is invalid: %w", pet.Name, err)
		}
		if err := s.stores.Pets.Insert(ctx, &pet); err != nil {
			return nil, fmt.Errorf("failed to insert seed pet %s: %w", pet.Name, err)
		}
		created = append(created, pet)
	}

	token, err := auth.GenerateJWT(user.ID, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to mint seed token: %w", err)
	}

	s.logSummary(user, created)
	return &Result{User: user, Pets: created, Token: token}, nil
}

func (s *Seeder) clear(ctx context.Context) error {
	for name, deleteAll := range map[string]func(context.Context) (int64, error){
		"users":            s.stores.Users.DeleteAll,
		"pets":             s.stores.Pets.DeleteAll,
		"adoptionrequests": s.stores.Adoptions.DeleteAll,
	} {
		n, err := deleteAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear %s: %w", name, err)
		}
		s.logger.Info("cleared collection", "collection", name, "deleted", n)
	}
	return nil
}

func (s *Seeder) logSummary(user *models.User, created []models.Pet) {
	bySpecies := map[string]int{}
	byCity := map[string]int{}
	for _, p := range created {
		bySpecies[p.Species]++
		byCity[p.Location.City]++
	}
	s.logger.Info("database seeded",
		"user", user.Email,
		"city", ShelterCity,
		"pets", len(created),
	)
	for _, k := range sortedKeys(bySpecies) {
		s.logger.Info("pets by species", "species", k, "count", bySpecies[k])
	}
	for _, k := range sortedKeys(byCity) {
		s.logger.Info("pets by city", "city", k, "count", byCity[k])
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
